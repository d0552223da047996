package http1

import (
	"crypto/tls"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/indigo-web/h2tp/config"
	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/kv"
	"github.com/indigo-web/h2tp/transport"
)

// Logger is the only thing h2tp requires from a logger. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// wakeDeadline is a moment long gone. Setting it as a read deadline makes a blocked read
// return immediately.
var wakeDeadline = time.Unix(1, 0)

// Conn serves HTTP/1.x requests of a single connection sequentially.
type Conn struct {
	client     transport.Client
	parser     *Parser
	serializer *Serializer
	request    *http.Request
	response   *http.Response
	logger     Logger
	draining   *atomic.Bool
	// idle is set while waiting for the first byte of the next request.
	idle atomic.Bool
}

// NewConn returns a Conn. The draining flag is shared with the server: once it's set, the
// connection finishes the request in progress, if any, and quits.
func NewConn(cfg *config.Config, client transport.Client, draining *atomic.Bool, logger Logger) *Conn {
	request := http.NewRequest(kv.NewPrealloc(cfg.Headers.Number.Default), client.Remote())
	request.Body = make([]byte, 0, cfg.Body.BufferPrealloc)

	if tlsConn, ok := client.Conn().(*tls.Conn); ok {
		request.Env.Encryption = tlsConn.ConnectionState().Version
	}

	return &Conn{
		client:     client,
		parser:     NewParser(cfg, client),
		serializer: NewSerializer(cfg, client),
		request:    request,
		response:   http.NewResponse(),
		logger:     logger,
		draining:   draining,
	}
}

// Serve runs the request-response loop until the peer leaves, something goes wrong or the
// server starts draining. The connection isn't closed by Serve.
func (c *Conn) Serve(h http.Handler) {
	request, response := c.request, c.response

	for {
		c.idle.Store(true)
		if c.draining.Load() {
			return
		}

		// wait for the next request. The parser won't read again as long as there's
		// something in the window.
		err := c.client.Refill()
		c.idle.Store(false)
		if err != nil {
			c.onReadError(readError(err, false))
			return
		}

		if err = c.parser.Parse(request); err != nil {
			c.onReadError(err)
			return
		}

		if err = c.handle(h); err != nil {
			c.logger.Printf("h2tp: %s: %s %s: %v", c.client.Remote(), request.MethodString(), request.Target(), err)
			response.Clear()
			response.Error(err)
		}

		closeConn := c.draining.Load() || !request.KeepAlive()
		if err = c.serializer.Write(request, response, closeConn); err != nil {
			c.logger.Printf("h2tp: %s: write: %v", c.client.Remote(), err)
			return
		}

		if closeConn {
			return
		}

		request.Clear()
		response.Clear()
	}
}

func (c *Conn) onReadError(err error) {
	if kind := Classify(err); kind != KindEndOfStream {
		c.logger.Printf("h2tp: %s: %s: %v", c.client.Remote(), kind, err)
	}
}

func (c *Conn) handle(h http.Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return h.Handle(c.request, c.response)
}

// Idle tells whether the connection is waiting for a new request.
func (c *Conn) Idle() bool {
	return c.idle.Load()
}

// Wake interrupts the connection if it's idle, making it notice the draining. A request
// arriving at the same moment might be interrupted as well, in which case the connection
// is closed without a response.
func (c *Conn) Wake() {
	if c.idle.Load() {
		_ = c.client.Conn().SetReadDeadline(wakeDeadline)
	}
}
