package http1

import (
	"errors"
	"io"
	"net"
	"strings"

	"github.com/indigo-web/h2tp/config"
	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/http/proto"
	"github.com/indigo-web/h2tp/http/status"
	"github.com/indigo-web/h2tp/transport"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

type parserState uint8

const (
	eMethod parserState = iota + 1
	eTarget
	eVersion
	eVersionLF
	eHeaderKey
	eHeaderValue
	eHeaderValueLF
	eHeadersEndLF
)

// Parser reads requests off the client one by one. Strings of the parsed request alias the
// parser's own buffers, which are reused by the next call to Parse. A failed Parse leaves
// the parser in an undefined state, so the connection must not be served any further.
type Parser struct {
	state         parserState
	cfg           *config.Config
	client        transport.Client
	requestLine   []byte
	tokenStart    int
	headers       []byte
	keyStart      int
	keyEnd        int
	headersNumber int
	chunked       chunkedDecoder
}

func NewParser(cfg *config.Config, client transport.Client) *Parser {
	return &Parser{
		state:       eMethod,
		cfg:         cfg,
		client:      client,
		requestLine: make([]byte, 0, cfg.URI.RequestLineSize.Default),
		headers:     make([]byte, 0, cfg.Headers.Space.Default),
	}
}

// Parse fills the request with the next message from the client, including its body. Bytes
// following the message stay in the client's window, so pipelined requests are picked up by
// the next call.
//
// io.EOF is returned if the stream ended cleanly, that is, before the first byte of a new
// message. If it ended in the middle of one, io.ErrUnexpectedEOF is returned instead.
// Protocol violations are reported as status.HTTPError.
func (p *Parser) Parse(request *http.Request) error {
	p.reset()
	started := false

	for {
		if err := p.client.Refill(); err != nil {
			return readError(err, started)
		}

		data := p.client.Peek()
		started = true
		done, extra, err := p.head(request, data)
		if err != nil {
			return err
		}

		p.client.Take(len(data) - len(extra))
		if done {
			break
		}
	}

	return p.body(request)
}

func (p *Parser) reset() {
	p.state = eMethod
	p.requestLine = p.requestLine[:0]
	p.tokenStart = 0
	p.headers = p.headers[:0]
	p.keyStart, p.keyEnd = 0, 0
	p.headersNumber = 0
	p.chunked.reset()
}

// head parses the request line and the header section. extra is the part of data following
// the header section, nil if all of data was consumed.
func (p *Parser) head(request *http.Request, data []byte) (done bool, extra []byte, err error) {
	requestLineCfg := p.cfg.URI.RequestLineSize
	headersCfg := p.cfg.Headers

	switch p.state {
	case eMethod:
		goto method
	case eTarget:
		goto target
	case eVersion:
		goto version
	case eVersionLF:
		goto versionLF
	case eHeaderKey:
		goto headerKey
	case eHeaderValue:
		goto headerValue
	case eHeaderValueLF:
		goto headerValueLF
	case eHeadersEndLF:
		goto headersEndLF
	default:
		panic("unreachable code")
	}

method:
	for i := 0; i < len(data); i++ {
		switch char := data[i]; {
		case char == ' ':
			if len(p.requestLine)+i > requestLineCfg.Maximal {
				return true, nil, status.ErrURITooLong
			}

			p.requestLine = append(p.requestLine, data[:i]...)
			if len(p.requestLine) == 0 {
				return true, nil, status.ErrBadStartLine
			}

			request.StartLine[0] = uf.B2S(p.requestLine)
			p.tokenStart = len(p.requestLine)
			data = data[i+1:]
			goto target
		case char <= ' ' || char >= 0x7F:
			// control characters, non-ASCII bytes and line terminators aren't tchars
			return true, nil, status.ErrBadStartLine
		}
	}

	if len(p.requestLine)+len(data) > requestLineCfg.Maximal {
		return true, nil, status.ErrURITooLong
	}

	p.requestLine = append(p.requestLine, data...)
	p.state = eMethod
	return false, nil, nil

target:
	for i := 0; i < len(data); i++ {
		switch char := data[i]; {
		case char == ' ':
			if len(p.requestLine)+i > requestLineCfg.Maximal {
				return true, nil, status.ErrURITooLong
			}

			p.requestLine = append(p.requestLine, data[:i]...)
			if len(p.requestLine) == p.tokenStart {
				return true, nil, status.ErrBadStartLine
			}

			request.StartLine[1] = uf.B2S(p.requestLine[p.tokenStart:])
			p.tokenStart = len(p.requestLine)
			data = data[i+1:]
			goto version
		case isProhibitedChar(char):
			return true, nil, status.ErrBadStartLine
		}
	}

	if len(p.requestLine)+len(data) > requestLineCfg.Maximal {
		return true, nil, status.ErrURITooLong
	}

	p.requestLine = append(p.requestLine, data...)
	p.state = eTarget
	return false, nil, nil

version:
	for i := 0; i < len(data); i++ {
		switch char := data[i]; {
		case char == '\r':
			p.requestLine = append(p.requestLine, data[:i]...)
			request.StartLine[2] = uf.B2S(p.requestLine[p.tokenStart:])
			if proto.FromString(request.StartLine[2]) == proto.Unknown {
				return true, nil, status.ErrHTTPVersionNotSupported
			}

			data = data[i+1:]
			goto versionLF
		case isProhibitedChar(char):
			return true, nil, status.ErrBadStartLine
		}
	}

	if len(p.requestLine)+len(data) > requestLineCfg.Maximal {
		return true, nil, status.ErrHTTPVersionNotSupported
	}

	p.requestLine = append(p.requestLine, data...)
	p.state = eVersion
	return false, nil, nil

versionLF:
	if len(data) == 0 {
		p.state = eVersionLF
		return false, nil, nil
	}

	if data[0] != '\n' {
		return true, nil, status.ErrBadStartLine
	}

	data = data[1:]
	goto headerKey

headerKey:
	for i := 0; i < len(data); i++ {
		switch char := data[i]; char {
		case ':':
			if len(p.headers)+i > headersCfg.Space.Maximal {
				return true, nil, status.ErrHeaderFieldsTooLarge
			}

			p.headers = append(p.headers, data[:i]...)
			p.keyEnd = len(p.headers)
			if p.keyEnd == p.keyStart {
				return true, nil, status.ErrBadHeader
			}

			data = data[i+1:]
			goto headerValue
		case '\r':
			if i > 0 || len(p.headers) > p.keyStart {
				// a field line without a colon
				return true, nil, status.ErrBadHeader
			}

			data = data[i+1:]
			goto headersEndLF
		default:
			if isProhibitedChar(char) {
				return true, nil, status.ErrBadHeader
			}
		}
	}

	if len(p.headers)+len(data) > headersCfg.Space.Maximal {
		return true, nil, status.ErrHeaderFieldsTooLarge
	}

	p.headers = append(p.headers, data...)
	p.state = eHeaderKey
	return false, nil, nil

headerValue:
	for i := 0; i < len(data); i++ {
		switch char := data[i]; char {
		case '\r':
			if len(p.headers)+i > headersCfg.Space.Maximal {
				return true, nil, status.ErrHeaderFieldsTooLarge
			}

			p.headers = append(p.headers, data[:i]...)
			data = data[i+1:]
			goto headerValueLF
		case '\n':
			return true, nil, status.ErrBadHeader
		}
	}

	if len(p.headers)+len(data) > headersCfg.Space.Maximal {
		return true, nil, status.ErrHeaderFieldsTooLarge
	}

	p.headers = append(p.headers, data...)
	p.state = eHeaderValue
	return false, nil, nil

headerValueLF:
	{
		if len(data) == 0 {
			p.state = eHeaderValueLF
			return false, nil, nil
		}

		if data[0] != '\n' {
			return true, nil, status.ErrBadHeader
		}

		if p.headersNumber++; p.headersNumber > headersCfg.Number.Maximal {
			return true, nil, status.ErrTooManyHeaders
		}

		key := trim(p.headers[p.keyStart:p.keyEnd])
		if len(key) == 0 {
			return true, nil, status.ErrBadHeader
		}

		toLower(key)
		value := trim(p.headers[p.keyEnd:])
		request.Headers.Add(uf.B2S(key), uf.B2S(value))
		p.keyStart = len(p.headers)
		data = data[1:]
		goto headerKey
	}

headersEndLF:
	if len(data) == 0 {
		p.state = eHeadersEndLF
		return false, nil, nil
	}

	if data[0] != '\n' {
		return true, nil, status.ErrBadHeader
	}

	p.state = eMethod
	return true, data[1:], nil
}

// body reads the whole request body, framed either by content-length or by the chunked
// transfer coding. Requests carrying neither have no body.
func (p *Parser) body(request *http.Request) error {
	contentLength, hasLength, err := p.contentLength(request)
	if err != nil {
		return err
	}

	chunked := isChunked(request.Headers.Values("transfer-encoding"))

	switch {
	case hasLength && chunked:
		// such a request is either malformed or an attempt to smuggle a request
		return status.ErrBadRequest
	case hasLength:
		return p.sizedBody(request, contentLength)
	case chunked:
		return p.chunkedBody(request)
	default:
		return nil
	}
}

func (p *Parser) contentLength(request *http.Request) (length uint64, found bool, err error) {
	values := request.Headers.Values("content-length")
	if len(values) == 0 {
		return 0, false, nil
	}

	for i, value := range values {
		n, ok := parseUint(value)
		if !ok || (i > 0 && n != length) {
			return 0, false, status.ErrBadContentLength
		}

		length = n
	}

	if length > p.cfg.Body.MaxSize {
		return 0, false, status.ErrBodyTooLarge
	}

	return length, true, nil
}

func (p *Parser) sizedBody(request *http.Request, length uint64) error {
	if length == 0 {
		return nil
	}

	for left := int(length); left > 0; {
		if err := p.client.Refill(); err != nil {
			return readError(err, true)
		}

		piece := p.client.Take(left)
		request.Body = append(request.Body, piece...)
		left -= len(piece)
	}

	return nil
}

func (p *Parser) chunkedBody(request *http.Request) error {
	for {
		if err := p.client.Refill(); err != nil {
			return readError(err, true)
		}

		data := p.client.Peek()
		for len(data) > 0 {
			chunk, extra, err := p.chunked.Parse(data)
			request.Body = append(request.Body, chunk...)
			p.client.Take(len(data) - len(extra))

			switch {
			case err == io.EOF:
				return nil
			case err != nil:
				return err
			case uint64(len(request.Body)) > p.cfg.Body.MaxSize:
				return status.ErrBodyTooLarge
			}

			data = extra
		}
	}
}

// readError tells a cleanly closed stream from the one broken in the middle of a message.
// An idle connection, timed out waiting for the next request, counts as cleanly closed.
func readError(err error, started bool) error {
	if !started && (errors.Is(err, io.EOF) || isTimeout(err)) {
		return io.EOF
	}

	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isChunked(transferEncodings []string) bool {
	for _, value := range transferEncodings {
		for len(value) > 0 {
			var coding string
			coding, value, _ = strings.Cut(value, ",")
			if strcomp.EqualFold(strings.TrimSpace(coding), "chunked") {
				return true
			}
		}
	}

	return false
}

// maxLengthDigits keeps parsed lengths far from overflowing, as no body could be that large
// anyway.
const maxLengthDigits = 18

// parseUint parses a non-empty string of decimal digits.
func parseUint(str string) (n uint64, ok bool) {
	if len(str) == 0 || len(str) > maxLengthDigits {
		return 0, false
	}

	for i := 0; i < len(str); i++ {
		char := str[i] - '0'
		if char > 9 {
			return 0, false
		}

		n = n*10 + uint64(char)
	}

	return n, true
}

func trim(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}

	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}

	return b
}

func toLower(b []byte) {
	for i, char := range b {
		if char >= 'A' && char <= 'Z' {
			b[i] = char | 0x20
		}
	}
}

// isProhibitedChar reports control characters, which are allowed neither in the request
// line nor in header field names.
func isProhibitedChar(c byte) bool {
	return c < 0x20 || c == 0x7F
}
