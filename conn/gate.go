package conn

import (
	"context"
	"sync"
)

// readinessGate hands "the process handle is published" over from the supervisor goroutine to the caller of
// Start. A new gate is created for every attempt and it can only be opened once, so nothing carries over
// between Start/Stop cycles.
type readinessGate struct {
	once  sync.Once
	ready chan struct{}
}

func newReadinessGate() *readinessGate {
	return &readinessGate{ready: make(chan struct{})}
}

// signal opens the gate. Calling it more than once is a no-op.
func (g *readinessGate) signal() {
	g.once.Do(func() {
		close(g.ready)
	})
}

// wait blocks until signal was called. It returns immediately if that already happened.
func (g *readinessGate) wait() {
	<-g.ready
}

// waitContext is wait with a deadline.
func (g *readinessGate) waitContext(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *readinessGate) isOpen() bool {
	select {
	case <-g.ready:
		return true
	default:
		return false
	}
}
