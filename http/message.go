package http

import "github.com/indigo-web/h2tp/kv"

type (
	Headers = *kv.Storage
	Vars    = *kv.Storage
)

// Message is what requests and responses have in common. It's allocated once per
// connection and cleared between requests, so neither its strings nor its body may be
// retained after the handler returns. Copy them if needed.
type Message struct {
	// StartLine holds the tokens of the first line: method, target and version for requests,
	// version, status code and reason for responses.
	StartLine [3]string
	// Headers of requests always have lowercased keys. Headers of responses are left as set.
	Headers Headers
	// Body is a buffer reused across messages of the same connection.
	Body []byte
}

func newMessage(headers Headers) Message {
	if headers == nil {
		headers = kv.New()
	}

	return Message{Headers: headers}
}

// Clear resets the message, keeping all the allocated buffers for the next use.
func (m *Message) Clear() {
	m.StartLine = [3]string{}
	m.Headers.Clear()
	m.Body = m.Body[:0]
}
