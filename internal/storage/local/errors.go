package local

import "errors"

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidID is returned for IDs that cannot be used as file names
	ErrInvalidID = errors.New("invalid document id")
)
