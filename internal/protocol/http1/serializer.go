package http1

import (
	"slices"
	"strconv"
	"strings"

	"github.com/indigo-web/h2tp/config"
	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/http/method"
	"github.com/indigo-web/h2tp/http/proto"
	"github.com/indigo-web/h2tp/transport"
	"github.com/indigo-web/utils/strcomp"
)

type defaultHeader struct {
	key string
	// full is the complete field line, including the trailing CRLF
	full string
}

// Serializer renders responses into a single buffer, which is then written at once.
type Serializer struct {
	cfg            *config.Config
	client         transport.Client
	buff           []byte
	defaultHeaders []defaultHeader
}

func NewSerializer(cfg *config.Config, client transport.Client) *Serializer {
	return &Serializer{
		cfg:            cfg,
		client:         client,
		buff:           make([]byte, 0, cfg.NET.WriteBufferSize.Default),
		defaultHeaders: preprocessDefaultHeaders(cfg.Headers.Default),
	}
}

// preprocessDefaultHeaders renders the default headers once, sorted by key so the output is
// stable.
func preprocessDefaultHeaders(headers map[string]string) []defaultHeader {
	processed := make([]defaultHeader, 0, len(headers))
	for key, value := range headers {
		processed = append(processed, defaultHeader{
			key:  key,
			full: key + ": " + value + crlf,
		})
	}

	slices.SortFunc(processed, func(a, b defaultHeader) int {
		return strings.Compare(a.key, b.key)
	})

	return processed
}

// Write serializes the response to the request and writes it out. The connection: close
// header is added if closeConn is set. Otherwise HTTP/1.0 responses are marked with
// connection: keep-alive, as the connection is closed by default there.
func (s *Serializer) Write(request *http.Request, response *http.Response, closeConn bool) error {
	s.appendProtocol(request.Protocol())
	s.appendStatus(response)
	s.appendDefaultHeaders(response)

	for key, value := range response.Headers.Iter() {
		if strcomp.EqualFold(key, "content-length") {
			// the actual length is always computed from the body
			continue
		}

		s.appendHeader(key, value)
	}

	s.appendContentLength(len(response.Body))
	switch {
	case closeConn:
		s.appendHeader("Connection", "close")
	case request.Protocol() == proto.HTTP10:
		s.appendHeader("Connection", "keep-alive")
	}

	s.crlf()

	if request.Method() != method.HEAD {
		s.buff = append(s.buff, response.Body...)
	}

	_, err := s.client.Write(s.buff)
	s.cleanup()

	return err
}

func (s *Serializer) appendProtocol(protocol proto.Protocol) {
	if protocol != proto.HTTP10 {
		protocol = proto.HTTP11
	}

	s.buff = append(s.buff, protocol.String()...)
	s.sp()
}

func (s *Serializer) appendStatus(response *http.Response) {
	s.buff = strconv.AppendUint(s.buff, uint64(response.StatusCode()), 10)
	s.sp()
	s.buff = append(s.buff, response.Reason()...)
	s.crlf()
}

func (s *Serializer) appendDefaultHeaders(response *http.Response) {
outer:
	for _, header := range s.defaultHeaders {
		for key := range response.Headers.Keys() {
			if strcomp.EqualFold(key, header.key) {
				continue outer
			}
		}

		s.buff = append(s.buff, header.full...)
	}
}

// appendHeader writes a complete header field line.
func (s *Serializer) appendHeader(key, value string) {
	s.buff = append(s.buff, key...)
	s.colonsp()
	s.buff = append(s.buff, value...)
	s.crlf()
}

func (s *Serializer) appendContentLength(value int) {
	s.buff = append(s.buff, "Content-Length: "...)
	s.buff = strconv.AppendUint(s.buff, uint64(value), 10)
	s.crlf()
}

func (s *Serializer) sp() {
	s.buff = append(s.buff, ' ')
}

func (s *Serializer) colonsp() {
	s.buff = append(s.buff, ':', ' ')
}

const crlf = "\r\n"

func (s *Serializer) crlf() {
	s.buff = append(s.buff, crlf...)
}

// cleanup empties the buffer, shrinking it back if some enormous response made it grow
// beyond the limit.
func (s *Serializer) cleanup() {
	if cap(s.buff) > s.cfg.NET.WriteBufferSize.Maximal {
		s.buff = make([]byte, 0, s.cfg.NET.WriteBufferSize.Default)
		return
	}

	s.buff = s.buff[:0]
}
