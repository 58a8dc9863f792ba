package domain

import (
	"context"

	"github.com/google/uuid"
)

// SnapshotRepository defines the interface for persisting a session's statements
type SnapshotRepository interface {
	// Save replaces the stored statements of a session
	Save(ctx context.Context, sessionID uuid.UUID, tables Tables) error

	// Get retrieves the stored statements of a session
	// Returns an error wrapping ErrSessionNotFound if nothing is stored
	Get(ctx context.Context, sessionID uuid.UUID) (Tables, error)

	// Delete removes the stored statements of a session
	Delete(ctx context.Context, sessionID uuid.UUID) error
}
