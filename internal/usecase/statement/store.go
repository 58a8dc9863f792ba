package statement

import (
	"sync"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/seeder"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/summary"
)

// state is swapped as a whole; it is never modified after construction
type state struct {
	snapshot   *domain.Snapshot
	summary    domain.MetricsSummary
	summaryErr error
}

func newState(tables domain.Tables) (*state, error) {
	snap, err := domain.NewSnapshot(tables)
	if err != nil {
		return nil, err
	}
	m, summaryErr := summary.Summarize(snap)
	return &state{snapshot: snap, summary: m, summaryErr: summaryErr}, nil
}

// Store holds the statements of one session
// Load and Reset replace the whole state; readers always see a consistent
// snapshot together with the summary computed from it
type Store struct {
	mu      sync.RWMutex
	current *state
}

// NewStore creates a store holding the given statements
func NewStore(tables domain.Tables) (*Store, error) {
	st, err := newState(tables)
	if err != nil {
		return nil, err
	}
	return &Store{current: st}, nil
}

// NewBaselineStore creates a store holding the baseline dataset
func NewBaselineStore() *Store {
	st, err := newState(seeder.BaselineTables())
	if err != nil {
		// The baseline dataset is static and always valid
		panic(err)
	}
	return &Store{current: st}
}

// Load replaces all three statements at once
// On error the previous statements stay in place
func (s *Store) Load(tables domain.Tables) error {
	st, err := newState(tables)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = st
	s.mu.Unlock()

	return nil
}

// Reset restores the baseline dataset
func (s *Store) Reset() error {
	return s.Load(seeder.BaselineTables())
}

// Snapshot returns the current statements
func (s *Store) Snapshot() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.snapshot
}

// Periods returns the ordered periods of the current statements
func (s *Store) Periods() []domain.Period {
	return s.Snapshot().Periods()
}

// Summary returns the summary computed when the statements were loaded
func (s *Store) Summary() (domain.MetricsSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.summary, s.current.summaryErr
}

// View returns the snapshot and its summary as one consistent pair
func (s *Store) View() (*domain.Snapshot, domain.MetricsSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.snapshot, s.current.summary, s.current.summaryErr
}
