package storage

import (
	"context"

	"github.com/novelterm/aetheria/pkg/state"
)

// Storage persists the full game session as a single opaque blob. The
// session is read and replaced as a whole unit; there are no partial
// updates across collections.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveSession writes the serialized session under the fixed save slot.
	SaveSession(ctx context.Context, s *state.Session) error

	// LoadSession reads the saved session. A missing or corrupt blob
	// returns (nil, nil) so callers fall through to world initialization.
	LoadSession(ctx context.Context) (*state.Session, error)

	// DeleteSession removes the save slot (hard reset).
	DeleteSession(ctx context.Context) error
}
