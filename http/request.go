package http

import (
	"context"
	"net"
	"strings"

	"github.com/indigo-web/h2tp/http/cookie"
	"github.com/indigo-web/h2tp/http/method"
	"github.com/indigo-web/h2tp/http/proto"
	"github.com/indigo-web/h2tp/http/url"
	"github.com/indigo-web/h2tp/kv"
	"github.com/indigo-web/utils/strcomp"
	json "github.com/json-iterator/go"
)

var zeroContext = context.Background()

// Environment contains a fixed set of contextual values which are useful in specific cases.
type Environment struct {
	// AllowedMethods is the value of the Allow header, set when the resource exists but
	// doesn't support the requested method.
	AllowedMethods string
	// Encryption is the TLS version (as in crypto/tls) the connection is secured with. Zero
	// for plain connections.
	Encryption uint16
}

// Request represents HTTP request
type Request struct {
	Message
	// Vars are dynamic routing segments.
	Vars Vars
	// Remote holds the remote address. Please note that this is generally not a good parameter to identify
	// a user, because there might be proxies in the middle.
	Remote net.Addr
	// Ctx is user-managed context which lives as long as the connection does and is never automatically
	// cleared.
	Ctx context.Context
	Env Environment

	url       url.URL
	urlErr    error
	urlParsed bool
	jar       *kv.Storage
}

func NewRequest(headers Headers, remote net.Addr) *Request {
	return &Request{
		Message: newMessage(headers),
		Vars:    kv.New(),
		Remote:  remote,
		Ctx:     zeroContext,
	}
}

// Method returns the request method. Methods not known to h2tp are method.Unknown, the
// original token is available via MethodString.
func (r *Request) Method() method.Method {
	return method.Parse(r.StartLine[0])
}

func (r *Request) MethodString() string {
	return r.StartLine[0]
}

// Target is the raw request target, as it came on the request line.
func (r *Request) Target() string {
	return r.StartLine[1]
}

func (r *Request) Version() string {
	return r.StartLine[2]
}

func (r *Request) Protocol() proto.Protocol {
	return proto.FromString(r.StartLine[2])
}

// URL returns the parsed request target. It's parsed on the first call only.
func (r *Request) URL() (*url.URL, error) {
	if !r.urlParsed {
		r.url, r.urlErr = url.Parse(r.StartLine[1])
		r.urlParsed = true
	}

	return &r.url, r.urlErr
}

// Path returns the raw path of the request target. An empty string is returned if the target
// isn't a valid URL.
func (r *Request) Path() string {
	u, err := r.URL()
	if err != nil {
		return ""
	}

	return u.Path()
}

// Query returns decoded query parameters.
func (r *Request) Query() (*kv.Storage, error) {
	u, err := r.URL()
	if err != nil {
		return nil, err
	}

	return u.Query()
}

// Cookies returns the cookies sent by the client. The jar is reused between requests, so
// it must not be retained after the handler returned.
func (r *Request) Cookies() (*kv.Storage, error) {
	if r.jar == nil {
		r.jar = kv.New()
	}

	r.jar.Clear()

	// RFC 6265, 5.4 prohibits splitting cookies into multiple headers, however some
	// user-agents still do so
	for _, value := range r.Headers.Values("cookie") {
		if err := cookie.Parse(r.jar, value); err != nil {
			return nil, err
		}
	}

	return r.jar, nil
}

// JSON decodes the body into the model.
func (r *Request) JSON(model any) error {
	iterator := json.ConfigDefault.BorrowIterator(r.Body)
	iterator.ReadVal(model)
	err := iterator.Error
	json.ConfigDefault.ReturnIterator(iterator)

	return err
}

// KeepAlive tells whether the client is willing to send more requests over the connection.
// HTTP/1.1 connections are persistent unless closed explicitly, HTTP/1.0 ones only if asked.
func (r *Request) KeepAlive() bool {
	switch r.Protocol() {
	case proto.HTTP11:
		return !r.connectionHas("close")
	case proto.HTTP10:
		return r.connectionHas("keep-alive")
	default:
		return false
	}
}

func (r *Request) connectionHas(token string) bool {
	for _, value := range r.Headers.Values("connection") {
		for len(value) > 0 {
			var option string
			option, value, _ = strings.Cut(value, ",")
			if strcomp.EqualFold(strings.TrimSpace(option), token) {
				return true
			}
		}
	}

	return false
}

// Clear resets the request for the next use.
func (r *Request) Clear() {
	r.Message.Clear()
	r.Vars.Clear()
	r.Env = Environment{Encryption: r.Env.Encryption}
	r.url, r.urlErr, r.urlParsed = url.URL{}, nil, false
}
