package h2tp

import (
	"context"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indigo-web/h2tp/config"
	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/internal/protocol/http1"
	"github.com/indigo-web/h2tp/transport"
)

// Logger is the only thing h2tp requires from a logger. *log.Logger satisfies it.
type Logger = http1.Logger

// Server serves HTTP/1.x over TCP, optionally secured. Its lifecycle goes through running,
// draining and stopped states: Listen runs it, Shutdown makes it drain and stop. A Server
// must not be reused after it stopped.
type Server struct {
	cfg      *config.Config
	security transport.Security
	logger   Logger
	onStart  func(net.Addr)

	// signal carries the budget the server has to drain the connections in.
	signal   chan time.Duration
	finished chan struct{}
	drained  atomic.Bool

	alive    atomic.Int64
	draining atomic.Bool
	conns    sync.Map
}

// New returns a new Server with default config.
func New() *Server {
	return &Server{
		cfg:      config.Default(),
		logger:   log.Default(),
		signal:   make(chan time.Duration, 1),
		finished: make(chan struct{}),
	}
}

// Tune replaces default config.
func (s *Server) Tune(cfg *config.Config) *Server {
	s.cfg = cfg
	return s
}

// Secure makes every accepted connection go through the handshake first. Connections which
// failed it are closed silently.
func (s *Server) Secure(security transport.Security) *Server {
	s.security = security
	return s
}

// Logger replaces log.Default() as the destination of connection errors.
func (s *Server) Logger(logger Logger) *Server {
	s.logger = logger
	return s
}

// OnStart calls the callback with the actual address the server is bound to, right before
// it starts accepting connections.
func (s *Server) OnStart(cb func(net.Addr)) *Server {
	s.onStart = cb
	return s
}

// Listen binds the address and serves the connections with the handler until shut down.
// It returns nil after a shutdown, even if not all the connections managed to drain.
func (s *Server) Listen(addr string, h http.Handler) error {
	tcp, err := transport.Bind(addr)
	if err != nil {
		return err
	}

	conns := make(chan net.Conn)
	stop := make(chan struct{})
	acceptErr := make(chan error, 1)

	go func() {
		acceptErr <- tcp.Accept(conns, stop)
	}()

	if s.onStart != nil {
		s.onStart(tcp.Addr())
	}

	for {
		select {
		case conn := <-conns:
			s.spawn(conn, h)
		case err = <-acceptErr:
			close(stop)
			_ = tcp.Close()
			s.draining.Store(true)
			s.drained.Store(s.drain(s.cfg.NET.ShutdownTimeout))
			close(s.finished)
			return err
		case budget := <-s.signal:
			close(stop)
			s.draining.Store(true)
			_ = tcp.Close()
			s.drained.Store(s.drain(budget))
			close(s.finished)
			return nil
		}
	}
}

func (s *Server) spawn(conn net.Conn, h http.Handler) {
	s.alive.Add(1)

	go func() {
		defer s.alive.Add(-1)
		s.serve(conn, h)
	}()
}

func (s *Server) serve(conn net.Conn, h http.Handler) {
	if s.security != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.NET.HandshakeTimeout)
		secured, err := s.security.Handshake(ctx, conn)
		cancel()
		if err != nil {
			_ = conn.Close()
			return
		}

		conn = secured
	}

	client := transport.NewClient(conn, s.cfg.NET.ReadTimeout, make([]byte, s.cfg.NET.ReadBufferSize))
	c := http1.NewConn(s.cfg, client, &s.draining, s.logger)
	s.conns.Store(c, struct{}{})
	c.Serve(h)
	s.conns.Delete(c)
	_ = client.Close()
}

// drain waits for live connections to finish, waking the idle ones on every poll. Returns
// whether all of them managed to within the budget.
func (s *Server) drain(budget time.Duration) bool {
	if budget <= 0 {
		budget = s.cfg.NET.ShutdownTimeout
	}

	timeout := time.NewTimer(budget)
	defer timeout.Stop()
	ticker := time.NewTicker(s.cfg.NET.ShutdownPollInterval)
	defer ticker.Stop()

	for {
		// an idle connection might be woken up before it started the read, in which case
		// the deadline is just re-armed. So wake them on every tick.
		s.conns.Range(func(key, _ any) bool {
			key.(*http1.Conn).Wake()
			return true
		})

		if s.alive.Load() == 0 {
			return true
		}

		select {
		case <-ticker.C:
		case <-timeout.C:
			return s.alive.Load() == 0
		}
	}
}

// Shutdowner returns a handle to shut the server down. It may be obtained before Listen.
func (s *Server) Shutdowner() Shutdowner {
	return Shutdowner{
		signal:   s.signal,
		finished: s.finished,
		drained:  &s.drained,
	}
}

// Alive returns the number of connections being served at the moment.
func (s *Server) Alive() int64 {
	return s.alive.Load()
}

// Draining tells whether the server stopped accepting new connections.
func (s *Server) Draining() bool {
	return s.draining.Load()
}
