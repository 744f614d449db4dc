package session

import (
	"context"
)

// Store keeps page state per session id.
type Store interface {
	// Get returns a copy of the state for id, or a fresh state when none exists.
	Get(ctx context.Context, id string) (*State, error)
	// Update loads the state for id, applies fn while holding the session's lock
	// and persists the result even when fn fails, so notices and drafts survive
	// a rejected transition. fn's error is returned as is.
	Update(ctx context.Context, id string, fn func(*State) error) (*State, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
