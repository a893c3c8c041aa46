package internal

import (
	"context"
	"sync"
)

// ConnectionManager runs an initialization function until it succeeds once.
// Concurrent callers share a single in-flight attempt. A failed attempt is
// not cached, so a transient token failure does not disable the client for
// the rest of the process.
type ConnectionManager struct {
	mu       sync.Mutex
	done     bool
	err      error
	calls    int
	inflight *attempt
}

type attempt struct {
	finished chan struct{}
	err      error
}

// NewConnectionManager creates a new ConnectionManager instance ready for use.
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{}
}

// Initialize runs fn unless a previous call already succeeded. Callers that
// arrive while fn is running wait for it and then observe its result, or
// return early with their own context's error.
func (cm *ConnectionManager) Initialize(ctx context.Context, fn func(context.Context) error) error {
	cm.mu.Lock()
	if cm.done {
		cm.mu.Unlock()
		return nil
	}
	if err := ctx.Err(); err != nil {
		cm.mu.Unlock()
		return err
	}
	if a := cm.inflight; a != nil {
		cm.mu.Unlock()
		select {
		case <-a.finished:
			return a.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	a := &attempt{finished: make(chan struct{})}
	cm.inflight = a
	cm.calls++
	cm.mu.Unlock()

	a.err = fn(ctx)

	cm.mu.Lock()
	cm.err = a.err
	cm.done = a.err == nil
	cm.inflight = nil
	cm.mu.Unlock()
	close(a.finished)
	return a.err
}

// Error returns the error from the most recent initialization attempt.
func (cm *ConnectionManager) Error() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.err
}

// IsInitialized reports whether an initialization attempt has succeeded.
func (cm *ConnectionManager) IsInitialized() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.done
}

// Attempts returns how many times the initialization function has run.
func (cm *ConnectionManager) Attempts() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.calls
}
