package storage

import "errors"

var (
	// ErrNotFound is returned when a user or bill does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique record already exists.
	ErrConflict = errors.New("already exists")
)
