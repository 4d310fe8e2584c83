package sqlite

import "errors"

// Common errors returned by storage operations
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateDigest = errors.New("duplicate secret digest")
	ErrInvalidInput    = errors.New("invalid input")
	ErrStorageClosed   = errors.New("storage is closed")
)
