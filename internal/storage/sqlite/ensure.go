package sqlite

import "github.com/felixgeelhaar/trainer/internal/session"

// Ensure SQLite stores implement the session interfaces.
var (
	_ session.Store     = (*SessionStore)(nil)
	_ session.Publisher = (*EventLog)(nil)
)
