package storage

import "errors"

var (
	// ErrNotFound means no record has the requested key.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey means an insert hit an existing key. Stores are append-only,
	// so the whole batch is rejected.
	ErrDuplicateKey = errors.New("duplicate key: stores are append-only")

	// ErrInvalidInput means a record failed validation before reaching the backend.
	ErrInvalidInput = errors.New("invalid input")
)
