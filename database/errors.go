package database

import "errors"

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a compare-and-set update lost to a concurrent writer.
	ErrConflict = errors.New("concurrent modification")
	// ErrDuplicate is returned when a unique key already exists.
	ErrDuplicate = errors.New("duplicate key")
)
