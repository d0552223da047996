package http1

import (
	"errors"
	"io"

	"github.com/indigo-web/h2tp/http/status"
)

// Kind classifies errors returned by the Parser.
type Kind uint8

const (
	// KindTransport means the connection itself failed: a read error, a timeout in the
	// middle of a message or a stream ended unexpectedly.
	KindTransport Kind = iota
	// KindEndOfStream means the peer is gone between messages. Nothing is wrong with that.
	KindEndOfStream
	// KindMalformed means the peer sent something that isn't HTTP/1.x.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindEndOfStream:
		return "end of stream"
	case KindMalformed:
		return "malformed message"
	default:
		return "unknown"
	}
}

func Classify(err error) Kind {
	if errors.Is(err, io.EOF) {
		return KindEndOfStream
	}

	var httpErr status.HTTPError
	if errors.As(err, &httpErr) {
		return KindMalformed
	}

	return KindTransport
}
