package h2tp

import (
	"sync/atomic"
	"time"
)

// Shutdowner stops a server gracefully. It's safe to copy and to use from multiple
// goroutines.
type Shutdowner struct {
	signal   chan<- time.Duration
	finished <-chan struct{}
	drained  *atomic.Bool
}

// Shutdown stops accepting new connections and lets the live ones finish their current
// requests. It blocks until either all of them are closed or the timeout elapses. The same
// timeout bounds how long the server itself keeps waiting. A timeout of zero makes both
// rely on config.NET.ShutdownTimeout.
//
// Returns true only if every connection was closed in time. Connections which weren't are
// left running, but won't take new requests.
func (s Shutdowner) Shutdown(timeout time.Duration) bool {
	select {
	case s.signal <- timeout:
	default:
		// already signalled
	}

	if timeout <= 0 {
		<-s.finished
		return s.drained.Load()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.finished:
		return s.drained.Load()
	case <-timer.C:
		return false
	}
}
