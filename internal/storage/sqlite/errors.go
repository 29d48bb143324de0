package sqlite

import "errors"

var (
	// ErrEmptyKey indicates a blank record key.
	ErrEmptyKey = errors.New("empty key")
	// ErrEmptyPath indicates a blank database path.
	ErrEmptyPath = errors.New("db path cannot be empty")
)
