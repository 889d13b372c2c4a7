package core

// run_limiter.go serializes runs over the holiday document.
//
// A run owns the in-memory document from open to save, and every run writes
// the same output file, so at most one may be active. The limiter is a
// one-slot semaphore: the HTTP API uses TryAcquire and answers 429 when the
// slot is taken, while the scheduler and CLI wait up to maxWait with Acquire.
//
// WaitForDrain supports graceful shutdown by blocking until the active run
// completes.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRunInProgress is returned when another run holds the document and the
// wait timeout expires (or when not waiting at all).
var ErrRunInProgress = errors.New("run already in progress")

// DefaultRunWaitTime is how long Acquire waits for the slot by default.
const DefaultRunWaitTime = time.Minute

// RunLimiter admits one run at a time.
type RunLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	holder string
	since  time.Time
}

// NewRunLimiter creates a limiter whose Acquire waits at most maxWait.
func NewRunLimiter(maxWait time.Duration) *RunLimiter {
	if maxWait <= 0 {
		maxWait = DefaultRunWaitTime
	}
	return &RunLimiter{
		semaphore: make(chan struct{}, 1),
		maxWait:   maxWait,
	}
}

// Acquire waits for the slot on behalf of runID.
// Returns nil on success, ErrRunInProgress if the wait times out.
// The caller MUST call Release() when the run completes (use defer).
func (l *RunLimiter) Acquire(ctx context.Context, runID string) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.hold(runID)
		return nil

	case <-waitCtx.Done():
		// Check if original context was cancelled vs timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrRunInProgress
	}
}

// TryAcquire takes the slot for runID without blocking.
func (l *RunLimiter) TryAcquire(runID string) bool {
	select {
	case l.semaphore <- struct{}{}:
		l.hold(runID)
		return true
	default:
		return false
	}
}

func (l *RunLimiter) hold(runID string) {
	l.mu.Lock()
	l.holder = runID
	l.since = time.Now()
	l.mu.Unlock()
}

// Release frees the slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *RunLimiter) Release() {
	l.mu.Lock()
	l.holder = ""
	l.since = time.Time{}
	l.mu.Unlock()

	<-l.semaphore
}

// Active returns the ID of the run holding the slot, or "".
func (l *RunLimiter) Active() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.holder
}

// Busy reports whether a run holds the slot.
func (l *RunLimiter) Busy() bool {
	return len(l.semaphore) > 0
}

// WaitForDrain blocks until no run is active or ctx is cancelled.
func (l *RunLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !l.Busy() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunLimiterStatus is a snapshot of the limiter's state.
type RunLimiterStatus struct {
	Busy     bool      `json:"busy"`
	ActiveID string    `json:"active_run_id,omitempty"`
	Since    time.Time `json:"since,omitzero"`
}

// Status returns the current limiter state for monitoring.
func (l *RunLimiter) Status() RunLimiterStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return RunLimiterStatus{
		Busy:     len(l.semaphore) > 0,
		ActiveID: l.holder,
		Since:    l.since,
	}
}
