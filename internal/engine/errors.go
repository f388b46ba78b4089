package engine

import "errors"

// Errors returned by document operations.
var (
	// ErrLineOutOfRange indicates a line number outside the document.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrBinary indicates a file that is not text.
	ErrBinary = errors.New("binary file")

	// ErrEmptyQuery indicates a search for the empty string.
	ErrEmptyQuery = errors.New("empty search query")
)
