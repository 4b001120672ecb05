package store

import "errors"

var (
	// ErrNotFound is returned when a referenced row doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique constraint would be violated
	ErrAlreadyExists = errors.New("already exists")

	// ErrStoreUnavailable is returned when the database can't be reached or
	// the unit of work ran out of time
	ErrStoreUnavailable = errors.New("store unavailable")
)
