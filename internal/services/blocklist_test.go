package services

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapBlockInsertError(t *testing.T) {
	dup := &pq.Error{Code: pgUniqueViolation}
	assert.Equal(t, ErrAlreadyBlocked, mapBlockInsertError(dup))

	// Wrapped duplicates still map; callers compare against the sentinel.
	assert.Equal(t, ErrAlreadyBlocked, mapBlockInsertError(fmt.Errorf("insert block: %w", dup)))

	// Anything else passes through untouched.
	other := &pq.Error{Code: pgSerializationFailure}
	assert.Equal(t, other, mapBlockInsertError(other))
	assert.Equal(t, assert.AnError, mapBlockInsertError(assert.AnError))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: pgUniqueViolation}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: pgSerializationFailure}))
	assert.False(t, isUniqueViolation(assert.AnError))
	assert.False(t, isUniqueViolation(nil))
}
