package lifecycle

import "errors"

var (
	// ErrNotFound covers both a missing record and a record owned by
	// someone else, so non-owners can't probe for existence.
	ErrNotFound = errors.New("file not found")

	// ErrForbidden means a storage path outside the caller's prefix
	ErrForbidden = errors.New("storage path does not belong to caller")

	ErrInvalid = errors.New("invalid input")
)
