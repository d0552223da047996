package transport

import (
	"io"
	"net"
	"time"

	"github.com/indigo-web/h2tp/internal/timer"
)

// Client is a window over the connection's read buffer. Bytes of the last read stay in the
// window until consumed via Take, and the connection is read again only when the window is
// empty.
type Client interface {
	// Refill reads from the connection if, and only if, the window is empty. A read of zero
	// bytes is reported as io.EOF.
	Refill() error
	// Peek returns the unconsumed part of the window without consuming it.
	Peek() []byte
	// Take consumes and returns at most n bytes of the window.
	Take(n int) []byte
	Write([]byte) (int, error)
	Conn() net.Conn
	Remote() net.Addr
	Close() error
}

type client struct {
	conn net.Conn
	buff []byte
	// size is the number of bytes got by the last read, remains is the number of them
	// which are not consumed yet. remains <= size always holds.
	size, remains int
	timeout       time.Duration
}

func NewClient(conn net.Conn, timeout time.Duration, buff []byte) Client {
	return &client{
		buff:    buff[:cap(buff)],
		conn:    conn,
		timeout: timeout,
	}
}

func (c *client) Refill() error {
	if c.remains > 0 {
		return nil
	}

	if err := c.conn.SetReadDeadline(timer.Deadline(c.timeout)); err != nil {
		return err
	}

	n, err := c.conn.Read(c.buff)
	c.size, c.remains = n, n
	if n > 0 {
		// the error, if any, is going to be returned by the next read anyway
		return nil
	}

	if err == nil {
		err = io.EOF
	}

	return err
}

func (c *client) Peek() []byte {
	return c.buff[c.size-c.remains : c.size]
}

func (c *client) Take(n int) []byte {
	n = min(n, c.remains)
	offset := c.size - c.remains
	c.remains -= n

	return c.buff[offset : offset+n]
}

// Conn unwraps the underlying net.Conn.
func (c *client) Conn() net.Conn {
	return c.conn
}

// Write writes data into the underlying connection.
func (c *client) Write(b []byte) (int, error) {
	return c.conn.Write(b)
}

// Remote returns the remote address of the connection.
func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *client) Close() error {
	return c.conn.Close()
}
