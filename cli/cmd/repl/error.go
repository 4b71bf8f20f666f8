package repl

import "errors"

var (
	// ErrOutOfBounds is returned for a history index outside the stored entries.
	ErrOutOfBounds = errors.New("history index out of range")
	// ErrEditDeclined is returned when the user refuses to re-edit a failed buffer.
	ErrEditDeclined = errors.New("edit declined")
)
