package chat

import (
	"context"
	"time"
)

// Backoff returns the delay before the given 1-based retry attempt. Delays
// grow linearly: attempt 1 waits base, attempt 2 waits 2*base, and so on.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return base * time.Duration(attempt)
}

// AttemptState tracks where a bounded retry stands.
type AttemptState int

const (
	StateIdle AttemptState = iota
	StateAttempting
	StateSucceeded
	StateExhausted
)

// Attempt is the bookkeeping for one bounded-retry operation. It is a plain
// state machine with no I/O of its own: callers Begin it, report each outcome
// through Record, and sleep for Delay between failed tries.
type Attempt struct {
	State   AttemptState
	N       int
	Max     int
	Base    time.Duration
	LastErr error
}

func NewAttempt(max int, base time.Duration) *Attempt {
	return &Attempt{State: StateIdle, Max: max, Base: base}
}

// Begin moves to the next try. It returns false once the budget is spent or
// the attempt already finished.
func (a *Attempt) Begin() bool {
	switch a.State {
	case StateSucceeded, StateExhausted:
		return false
	}
	if a.N >= a.Max {
		a.State = StateExhausted
		return false
	}
	a.N++
	a.State = StateAttempting
	return true
}

// Record feeds the outcome of the current try back into the machine.
func (a *Attempt) Record(err error) {
	if err == nil {
		a.State = StateSucceeded
		return
	}
	a.LastErr = err
	if a.N >= a.Max || isPermanent(err) {
		a.State = StateExhausted
		return
	}
	a.State = StateIdle
}

// Delay is how long to wait before the next try after the current failure.
func (a *Attempt) Delay() time.Duration {
	return Backoff(a.Base, a.N)
}

// retry drives an Attempt over fn until it succeeds or exhausts its budget.
func retry(ctx context.Context, maxAttempts int, base time.Duration, fn func() error) error {
	a := NewAttempt(maxAttempts, base)
	for a.Begin() {
		a.Record(fn())
		switch a.State {
		case StateSucceeded:
			return nil
		case StateExhausted:
			return a.LastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.Delay()):
		}
	}
	return a.LastErr
}
