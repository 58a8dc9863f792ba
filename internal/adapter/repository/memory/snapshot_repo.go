package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
)

// snapshotRepository implements domain.SnapshotRepository in process memory
type snapshotRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]domain.Tables
}

// NewSnapshotRepository creates a new in-memory snapshot repository
func NewSnapshotRepository() domain.SnapshotRepository {
	return &snapshotRepository{sessions: make(map[uuid.UUID]domain.Tables)}
}

// Save stores a copy of the tables, replacing anything stored for the session
func (r *snapshotRepository) Save(ctx context.Context, sessionID uuid.UUID, tables domain.Tables) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = tables.Clone()
	return nil
}

// Get returns a copy of the stored tables
func (r *snapshotRepository) Get(ctx context.Context, sessionID uuid.UUID) (domain.Tables, error) {
	if err := ctx.Err(); err != nil {
		return domain.Tables{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	tables, ok := r.sessions[sessionID]
	if !ok {
		return domain.Tables{}, fmt.Errorf("session %s: %w", sessionID, domain.ErrSessionNotFound)
	}
	return tables.Clone(), nil
}

// Delete removes the session; deleting an unknown session is not an error
func (r *snapshotRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}
