package config

import (
	"time"
)

type (
	HeadersNumber struct {
		Default, Maximal int
	}

	HeadersSpace struct {
		Default, Maximal int
	}

	URIRequestLineSize struct {
		Default, Maximal int
	}

	NETWriteBufferSize struct {
		Default, Maximal int
	}
)

type (
	URI struct {
		// RequestLineSize bounds the buffer storing method, target and version of a request.
		// Exceeding the maximal boundary results in status.ErrURITooLong.
		RequestLineSize URIRequestLineSize
	}

	Headers struct {
		// Number is responsible for headers storage size.
		// Default value is an initial number of preallocated seats.
		// Maximal value is maximum number of header field lines allowed to be presented
		Number HeadersNumber
		// Space limits the amount of memory occupied by request header keys and values.
		Space HeadersSpace
		// Default headers are headers to be included into every response implicitly, unless
		// explicitly overridden.
		Default map[string]string `test:"nullable"`
	}

	Body struct {
		// MaxSize describes the maximal size of a body, that can be processed. Requests with
		// larger bodies are rejected with status.ErrBodyTooLarge.
		MaxSize uint64
		// BufferPrealloc is the initial capacity of the per-connection body buffer.
		BufferPrealloc int
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, it'll be closed.
		ReadTimeout time.Duration
		// WriteBufferSize stores the HTTP response, which is going to be transmitted.
		// The buffer grows to contain the whole response, but is shrunk back to the default
		// size if a response exceeded the maximal one.
		WriteBufferSize NETWriteBufferSize
		// HandshakeTimeout limits the time a transport security handshake may take.
		HandshakeTimeout time.Duration
		// ShutdownTimeout is the default amount of time the server waits for connections to
		// drain, if the shutdown signal doesn't carry its own.
		ShutdownTimeout time.Duration
		// ShutdownPollInterval controls how often the number of live connections is checked
		// during the graceful shutdown.
		ShutdownPollInterval time.Duration
	}
)

// Config holds settings used across various parts of h2tp, mainly restrictions, limitations
// and pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	URI     URI
	Headers Headers
	Body    Body
	NET     NET
}

// Default returns default config. Those are initially well-balanced, however maximal defaults
// are pretty permitting.
func Default() *Config {
	return &Config{
		URI: URI{
			RequestLineSize: URIRequestLineSize{
				Default: 1 * 1024,
				// allow at most 16kb of request line, which is effectively pretty much tolerant,
				// considering most web-entities limit it to 4-8kb.
				Maximal: 16 * 1024,
			},
		},
		Headers: Headers{
			Number: HeadersNumber{
				Default: 10,
				Maximal: 100,
			},
			Space: HeadersSpace{
				Default: 1 * 1024,  // 1kb for headers must be fairly enough in most cases.
				Maximal: 64 * 1024, // However, there also might be extremely long cookies.
			},
			Default: make(map[string]string),
		},
		Body: Body{
			MaxSize:        512 * 1024 * 1024, // 512 megabytes
			BufferPrealloc: 1024,
		},
		NET: NET{
			ReadBufferSize: 4 * 1024,
			ReadTimeout:    90 * time.Second,
			WriteBufferSize: NETWriteBufferSize{
				Default: 2 * 1024,
				Maximal: 64 * 1024,
			},
			HandshakeTimeout:     10 * time.Second,
			ShutdownTimeout:      5 * time.Second,
			ShutdownPollInterval: 100 * time.Millisecond,
		},
	}
}
