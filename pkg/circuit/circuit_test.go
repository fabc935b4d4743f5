package circuit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestBreakerStartsClosed(t *testing.T) {
	b := New("riskshield")
	assert.Equal(t, StateClosed, b.State())
	assert.NoError(t, b.Allow())
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := New("riskshield", WithFailureThreshold(5))

	for i := 0; i < 4; i++ {
		require.NoError(t, b.Allow())
		change := b.RecordFailure()
		assert.False(t, change.Opened, "failure %d should not open", i+1)
	}

	require.NoError(t, b.Allow())
	change := b.RecordFailure()
	assert.True(t, change.Opened)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrOpen)
}

func TestBreakerSuccessResetsCounter(t *testing.T) {
	b := New("riskshield", WithFailureThreshold(3))

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()

	// Counter was reset by the success, so only two consecutive failures.
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	t.Run("probe allowed after cooldown, success closes", func(t *testing.T) {
		clock := newFakeClock()
		b := New("riskshield", WithFailureThreshold(1), WithCooldown(30*time.Second), WithClock(clock.Now))

		b.RecordFailure()
		require.Equal(t, StateOpen, b.State())
		require.ErrorIs(t, b.Allow(), ErrOpen)

		clock.Advance(29 * time.Second)
		require.ErrorIs(t, b.Allow(), ErrOpen)

		clock.Advance(time.Second)
		require.NoError(t, b.Allow())
		require.Equal(t, StateHalfOpen, b.State())

		change := b.RecordSuccess()
		assert.True(t, change.Closed)
		assert.Equal(t, StateClosed, b.State())
		assert.NoError(t, b.Allow())
	})

	t.Run("probe failure reopens with fresh cooldown", func(t *testing.T) {
		clock := newFakeClock()
		b := New("riskshield", WithFailureThreshold(1), WithCooldown(30*time.Second), WithClock(clock.Now))

		b.RecordFailure()
		clock.Advance(30 * time.Second)
		require.NoError(t, b.Allow())

		change := b.RecordFailure()
		assert.True(t, change.Opened)
		assert.Equal(t, StateOpen, b.State())

		// Old cooldown does not carry over.
		clock.Advance(15 * time.Second)
		assert.ErrorIs(t, b.Allow(), ErrOpen)
		clock.Advance(15 * time.Second)
		assert.NoError(t, b.Allow())
	})

	t.Run("only one probe admitted while half-open", func(t *testing.T) {
		clock := newFakeClock()
		b := New("riskshield", WithFailureThreshold(1), WithCooldown(time.Second), WithClock(clock.Now))

		b.RecordFailure()
		clock.Advance(time.Second)

		require.NoError(t, b.Allow())
		assert.ErrorIs(t, b.Allow(), ErrOpen)
		assert.ErrorIs(t, b.Allow(), ErrOpen)
	})
}

func TestBreakerNeutralOutcome(t *testing.T) {
	t.Run("leaves the failure count untouched", func(t *testing.T) {
		b := New("riskshield", WithFailureThreshold(3))

		b.RecordFailure()
		b.RecordFailure()
		b.RecordNeutral()
		b.RecordNeutral()
		require.Equal(t, StateClosed, b.State())

		// Two failures are still on the books, so one more opens the circuit.
		change := b.RecordFailure()
		assert.True(t, change.Opened)
		assert.Equal(t, StateOpen, b.State())
	})

	t.Run("closes the circuit from half-open and releases the probe slot", func(t *testing.T) {
		clock := newFakeClock()
		b := New("riskshield", WithFailureThreshold(1), WithCooldown(30*time.Second), WithClock(clock.Now))

		b.RecordFailure()
		clock.Advance(30 * time.Second)
		require.NoError(t, b.Allow())
		require.Equal(t, StateHalfOpen, b.State())

		change := b.RecordNeutral()
		assert.True(t, change.Closed)
		assert.Equal(t, StateClosed, b.State())
		assert.NoError(t, b.Allow())
	})
}

func TestBreakerReset(t *testing.T) {
	b := New("riskshield", WithFailureThreshold(1))
	b.RecordFailure()
	require.Equal(t, StateOpen, b.State())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.NoError(t, b.Allow())
}

func TestBreakerConcurrentFailures(t *testing.T) {
	b := New("riskshield", WithFailureThreshold(5))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordFailure()
		}()
	}
	wg.Wait()

	// 50 concurrent failures must land in exactly one open circuit,
	// not a torn state.
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrOpen)
}
