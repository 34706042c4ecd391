package services

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestRetryAfter(t *testing.T) {
	now := time.Now()
	window := time.Hour

	// Oldest message 20 minutes ago: the sender waits the remaining 40.
	got := retryAfter(now.Add(-20*time.Minute), now, window)
	assert.Equal(t, 40*time.Minute, got)

	// Window boundary: a message exactly one window old is free immediately.
	assert.Equal(t, time.Duration(0), retryAfter(now.Add(-window), now, window))

	// Already aged out: never negative.
	assert.Equal(t, time.Duration(0), retryAfter(now.Add(-2*window), now, window))
}

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, isSerializationFailure(&pq.Error{Code: pgSerializationFailure}))
	assert.False(t, isSerializationFailure(&pq.Error{Code: pgUniqueViolation}))
	assert.False(t, isSerializationFailure(assert.AnError))
	assert.False(t, isSerializationFailure(nil))
}
