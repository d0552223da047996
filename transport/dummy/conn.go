// Package dummy provides in-memory net.Conn implementations for tests and benchmarks.
package dummy

import (
	"io"
	"net"
	"sync"
	"time"
)

// Conn replays the chunks it was initialised with, one chunk per Read, and reports io.EOF
// afterwards, unless Loop is set. Everything written is accumulated and can be inspected
// via Written.
type Conn struct {
	mu      sync.Mutex
	chunks  [][]byte
	pointer int
	partial []byte
	loop    bool
	nop     bool
	closed  bool
	written []byte
	remote  net.Addr
}

func NewConn(chunks ...[]byte) *Conn {
	return &Conn{
		chunks: chunks,
		remote: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321},
	}
}

// Loop makes the connection start over when the chunks are exhausted. Used mainly for
// benchmarking.
func (c *Conn) Loop() *Conn {
	c.loop = true
	return c
}

// Nop discards everything written.
func (c *Conn) Nop() *Conn {
	c.nop = true
	return c
}

func (c *Conn) Read(b []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, net.ErrClosed
	}

	if len(c.partial) == 0 {
		if c.pointer >= len(c.chunks) {
			if !c.loop || len(c.chunks) == 0 {
				return 0, io.EOF
			}

			c.pointer = 0
		}

		c.partial = c.chunks[c.pointer]
		c.pointer++
	}

	n = copy(b, c.partial)
	c.partial = c.partial[n:]
	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, net.ErrClosed
	}

	if !c.nop {
		c.written = append(c.written, b...)
	}

	return len(b), nil
}

// Written returns a copy of everything written so far.
func (c *Conn) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return string(c.written)
}

func (c *Conn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	return nil
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

func (c *Conn) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 80}
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.remote
}

func (c *Conn) SetDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetReadDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}
