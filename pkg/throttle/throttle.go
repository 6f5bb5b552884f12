// Package throttle provides a leading-edge rate limiter for high-frequency
// input such as pointer motion.
package throttle

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// Limiter lets a call through when the current time has reached
// nextAllowedCallAt, then pushes nextAllowedCallAt out by the interval.
// Calls in between are suppressed; the most recent one is kept so it can
// be flushed when the burst ends.
type Limiter struct {
	interval          time.Duration
	nextAllowedCallAt time.Time
	pending           func()
	clock             Clock
	mu                sync.Mutex
}

// New creates a limiter. A zero or negative interval lets every call through.
func New(interval time.Duration, clock Clock) *Limiter {
	if clock == nil {
		clock = time.Now
	}
	return &Limiter{interval: interval, clock: clock}
}

// NewPerSecond creates a limiter firing at most hz times per second.
func NewPerSecond(hz float64, clock Clock) *Limiter {
	if hz <= 0 {
		return New(0, clock)
	}
	return New(time.Duration(float64(time.Second)/hz), clock)
}

// Allow reports whether a call may run now and, if so, reserves the slot.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowLocked()
}

func (l *Limiter) allowLocked() bool {
	now := l.clock()
	if now.Before(l.nextAllowedCallAt) {
		return false
	}
	l.nextAllowedCallAt = now.Add(l.interval)
	return true
}

// Do runs fn immediately if allowed. Otherwise fn replaces any previously
// suppressed call and the method returns false.
func (l *Limiter) Do(fn func()) bool {
	l.mu.Lock()
	if !l.allowLocked() {
		l.pending = fn
		l.mu.Unlock()
		return false
	}
	l.pending = nil
	l.mu.Unlock()
	fn()
	return true
}

// Flush runs the last suppressed call, if any, regardless of the interval.
func (l *Limiter) Flush() bool {
	l.mu.Lock()
	fn := l.pending
	l.pending = nil
	l.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Reset forgets the reserved slot and any suppressed call.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextAllowedCallAt = time.Time{}
	l.pending = nil
}

// NextAllowedCallAt returns when the next call will be let through.
func (l *Limiter) NextAllowedCallAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextAllowedCallAt
}
