package transport

import (
	"errors"
	"net"

	"github.com/indigo-web/h2tp/internal/address"
)

// TCP is a bound listener. Accepting runs in its own goroutine and feeds a channel, so the
// server is able to wait for a connection and a shutdown signal at once.
type TCP struct {
	l net.Listener
}

// Bind starts listening on the address. An address consisting of a port only is bound to
// all the IPv4 interfaces.
func Bind(addr string) (*TCP, error) {
	l, err := net.Listen("tcp", address.Normalize(addr))
	if err != nil {
		return nil, err
	}

	return &TCP{l: l}, nil
}

// Accept accepts connections into the channel until the listener is closed, in which
// case nil is returned. Connections accepted after stop was closed are closed right away.
func (t *TCP) Accept(conns chan<- net.Conn, stop <-chan struct{}) error {
	for {
		conn, err := t.l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			return err
		}

		select {
		case conns <- conn:
		case <-stop:
			_ = conn.Close()
			return nil
		}
	}
}

// Addr returns the actual address the listener is bound to. Comes handy when binding to
// the port zero.
func (t *TCP) Addr() net.Addr {
	return t.l.Addr()
}

// Close stops listening. Accept returns after that.
func (t *TCP) Close() error {
	return t.l.Close()
}
