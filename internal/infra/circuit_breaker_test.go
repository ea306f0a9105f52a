package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRelayDown = errors.New("relay down")

// newTestBreaker returns a breaker on a manual clock.
func newTestBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *time.Time) {
	cb := NewCircuitBreaker(cfg)
	clock := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return clock }
	return cb, &clock
}

func fail(cb *CircuitBreaker) error    { return cb.Execute(func() error { return errRelayDown }) }
func succeed(cb *CircuitBreaker) error { return cb.Execute(func() error { return nil }) }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 3})

	require.ErrorIs(t, fail(cb), errRelayDown)
	require.ErrorIs(t, fail(cb), errRelayDown)
	assert.Equal(t, CBClosed, cb.State())

	require.ErrorIs(t, fail(cb), errRelayDown)
	assert.Equal(t, CBOpen, cb.State())

	// Open breaker fast-fails without invoking fn
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerSuccessResetsFailureRun(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 3})

	require.Error(t, fail(cb))
	require.Error(t, fail(cb))
	require.NoError(t, succeed(cb))
	require.Error(t, fail(cb))
	require.Error(t, fail(cb))
	assert.Equal(t, CBClosed, cb.State())
}

func TestBreakerProbesAfterTimeoutAndCloses(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		OpenTimeout:      time.Minute,
	})

	require.Error(t, fail(cb))
	assert.Equal(t, CBOpen, cb.State())

	*clock = clock.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, succeed(cb))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, succeed(cb))
	assert.Equal(t, CBClosed, cb.State())
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
	})

	require.Error(t, fail(cb))
	*clock = clock.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())

	require.ErrorIs(t, fail(cb), errRelayDown)
	assert.Equal(t, CBOpen, cb.State())

	// The open window restarts from the failed probe
	require.ErrorIs(t, cb.Execute(func() error { return nil }), ErrCircuitOpen)
	*clock = clock.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())
}

func TestBreakerDefaultsApplied(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	assert.Equal(t, 5, cb.cfg.FailureThreshold)
	assert.Equal(t, 2, cb.cfg.SuccessThreshold)
	assert.Equal(t, 60*time.Second, cb.cfg.OpenTimeout)
}
