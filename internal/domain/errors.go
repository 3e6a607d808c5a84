package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by the engine,
// the loaders and the services to communicate failure conditions.
// -----------------------------------------------------------------------------

// Exercise errors
var (
	// ErrExerciseNotFound is returned for an unknown exercise identity
	ErrExerciseNotFound = errors.New("exercise not found")
	// ErrSourceFetch is fatal to a generation call
	ErrSourceFetch = errors.New("source fetch failed")
	// ErrSpecFetch is never fatal; generation continues without protected identifiers
	ErrSpecFetch = errors.New("spec fetch failed")
	// ErrBlankIntegrity marks a candidate whose text no longer matches the source
	ErrBlankIntegrity = errors.New("blank integrity mismatch")
)

// Session errors
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionCompleted = errors.New("session completed")
	ErrIndexOutOfRange  = errors.New("exercise index out of range")
)

// General errors
var (
	ErrInvalidInput = errors.New("invalid input")
)
