package repository

import "errors"

var (
	// ErrConflict is returned when a conditional update matched no row.
	ErrConflict = errors.New("row changed concurrently")
	// ErrDuplicate is returned when an insert hits a unique index.
	ErrDuplicate = errors.New("duplicate row")
)
