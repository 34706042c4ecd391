package services

import "errors"

// Sentinel errors shared by the abuse-control services. Handlers map these to
// HTTP status codes; raw store errors never cross that boundary.
var (
	// ErrNotFound means the referenced row does not exist (or is not visible
	// to the caller).
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller does not own the referenced resource.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyBlocked means the (recipient, identity) pair already has a
	// block entry. Produced by the store-level unique constraint, so
	// concurrent duplicate adds yield exactly one row and one conflict.
	ErrAlreadyBlocked = errors.New("sender already blocked")
)
