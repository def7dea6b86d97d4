package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := &CircuitBreaker{timeout: time.Minute, threshold: 3, state: CircuitClosed}

	assert.True(t, cb.Allow())
	cb.RecordFailure()
	cb.RecordFailure()
	assert.True(t, cb.Allow())
	cb.RecordFailure()
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	cb := &CircuitBreaker{timeout: 10 * time.Millisecond, threshold: 1, state: CircuitClosed}

	cb.RecordFailure()
	assert.False(t, cb.Allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.state)

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.state)
	assert.True(t, cb.Allow())
}
