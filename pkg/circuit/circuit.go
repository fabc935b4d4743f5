// Package circuit provides a circuit breaker for calls to a failing dependency.
package circuit

import (
	"errors"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is healthy and requests flow normally.
	StateClosed State = iota
	// StateOpen means the circuit has tripped and requests fail fast.
	StateOpen
	// StateHalfOpen means the cooldown elapsed and a single probe is allowed
	// to test recovery.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned by Allow when the circuit rejects the call.
var ErrOpen = errors.New("circuit breaker is open")

// StateChange represents a circuit breaker state transition.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker tracks consecutive failures against a single dependency.
//
// It starts closed. After FailureThreshold consecutive failures it opens and
// rejects calls without touching the dependency. Once the cooldown window
// elapses it moves to half-open and admits exactly one probe call: a probe
// success closes the circuit, a probe failure reopens it with a fresh
// cooldown.
//
// The zero time source is time.Now, whose values carry a monotonic clock
// reading, so cooldown measurement is immune to wall-clock adjustments.
// All methods are safe for concurrent use.
type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failureCount     int
	failureThreshold int
	cooldown         time.Duration
	openedAt         time.Time
	probing          bool
	now              func() time.Time
}

// Option configures a Breaker instance.
type Option func(*Breaker)

// WithFailureThreshold sets the number of consecutive failures to open the circuit.
// Default is 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithCooldown sets how long the circuit stays open before admitting a probe.
// Default is 30s.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithClock injects a time source. Tests use this to simulate the cooldown
// window elapsing.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a circuit breaker with the given name and options.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 5,
		cooldown:         30 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Name returns the circuit breaker's name for logging/metrics.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may proceed. It returns ErrOpen when the
// circuit is open and the cooldown has not elapsed, or when a half-open
// probe is already in flight. When the cooldown has elapsed it transitions
// to half-open and admits the caller as the single probe.
//
// Every admitted call must be settled with RecordSuccess, RecordFailure, or
// RecordNeutral.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return ErrOpen
		}
		b.state = StateHalfOpen
		b.probing = true
		return nil
	default: // StateHalfOpen
		if b.probing {
			return ErrOpen
		}
		b.probing = true
		return nil
	}
}

// RecordSuccess records a successful call. A success in half-open closes the
// circuit; in any state the consecutive-failure counter resets.
func (b *Breaker) RecordSuccess() (change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		change.Closed = true
	}
	b.state = StateClosed
	b.failureCount = 0
	b.probing = false
	return change
}

// RecordFailure records a failed call. A failure in half-open reopens the
// circuit immediately; in closed, reaching the failure threshold opens it.
// The open timestamp comes from the breaker's monotonic time source.
func (b *Breaker) RecordFailure() (change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++

	switch b.state {
	case StateHalfOpen:
		b.state = StateOpen
		b.openedAt = b.now()
		b.probing = false
		change.Opened = true
	case StateClosed:
		if b.failureCount >= b.failureThreshold {
			b.state = StateOpen
			b.openedAt = b.now()
			change.Opened = true
		}
	}
	return change
}

// RecordNeutral settles an admitted call whose failure says nothing about the
// dependency's availability, such as a request the dependency answered but
// rejected. The consecutive-failure count is left untouched. In half-open the
// dependency evidently responded, so the circuit closes and the probe slot is
// released.
func (b *Breaker) RecordNeutral() (change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.state = StateClosed
		b.failureCount = 0
		change.Closed = true
	}
	b.probing = false
	return change
}

// Reset forces the breaker back to closed with zero counts. Used by the
// admin endpoint when operators know the upstream has recovered.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failureCount = 0
	b.probing = false
}
