package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/advisor"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/growth"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/ratio"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/seeder"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/statement"
)

// Session is the application context of one dashboard user
// It owns its statement store and chat transcript; nothing is shared across sessions.
// The transcript lives in memory only and is lost on close and on idle eviction.
type Session struct {
	ID    uuid.UUID
	store *statement.Store

	// writeMu serializes persist-then-swap so the repository and the store never diverge
	writeMu sync.Mutex
	closed  bool

	mu       sync.Mutex
	history  []domain.ChatMessage
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionService manages session lifecycles and answers metric queries
type SessionService struct {
	Repo   domain.SnapshotRepository
	Router *advisor.Router

	seeder *seeder.BaselineSeeder
	log    zerolog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewSessionService creates a new SessionService instance
func NewSessionService(repo domain.SnapshotRepository, router *advisor.Router, log zerolog.Logger) *SessionService {
	return &SessionService{
		Repo:     repo,
		Router:   router,
		seeder:   seeder.NewBaselineSeeder(repo),
		log:      log.With().Str("component", "session_service").Logger(),
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Open starts a new session holding the baseline dataset
func (s *SessionService) Open(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()

	tables, err := s.seeder.Seed(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}

	store, err := statement.NewStore(tables)
	if err != nil {
		return uuid.Nil, err
	}

	s.register(id, store)
	s.log.Info().Str("session_id", id.String()).Msg("Session opened")

	return id, nil
}

// Resume makes a previously opened session active again
// Sessions evicted for inactivity are restored from the repository
func (s *SessionService) Resume(ctx context.Context, id uuid.UUID) error {
	if sess, err := s.get(id); err == nil {
		sess.touch(s.now())
		return nil
	}

	tables, err := s.Repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to resume session %s: %w", id, err)
	}

	store, err := statement.NewStore(tables)
	if err != nil {
		return fmt.Errorf("failed to resume session %s: %w", id, err)
	}

	s.register(id, store)
	s.log.Info().Str("session_id", id.String()).Msg("Session resumed")

	return nil
}

// Close discards the session and its stored statements
// If the repository delete fails the session stays open
func (s *SessionService) Close(ctx context.Context, id uuid.UUID) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}

	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if sess.closed {
		return fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete statements of session %s: %w", id, err)
	}
	sess.closed = true

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	s.log.Info().Str("session_id", id.String()).Msg("Session closed")
	return nil
}

// Load replaces the session's statements
// The tables are validated and persisted before the in-memory store is swapped
func (s *SessionService) Load(ctx context.Context, id uuid.UUID, tables domain.Tables) (domain.MetricsSummary, error) {
	sess, err := s.get(id)
	if err != nil {
		return domain.MetricsSummary{}, err
	}

	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if sess.closed {
		return domain.MetricsSummary{}, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}

	snap, err := domain.NewSnapshot(tables)
	if err != nil {
		return domain.MetricsSummary{}, err
	}

	if err := s.Repo.Save(ctx, id, snap.Tables()); err != nil {
		return domain.MetricsSummary{}, fmt.Errorf("failed to save statements: %w", err)
	}

	if err := sess.store.Load(tables); err != nil {
		return domain.MetricsSummary{}, err
	}
	// Still under writeMu: this is the state just swapped in
	m, summaryErr := sess.store.Summary()

	s.log.Info().
		Str("session_id", id.String()).
		Int("periods", len(snap.Periods())).
		Msg("Statements loaded")

	if issues := domain.CheckConsistency(snap); len(issues) > 0 {
		s.log.Warn().
			Str("session_id", id.String()).
			Int("inconsistencies", len(issues)).
			Str("first", issues[0].String()).
			Msg("Loaded statements violate accounting identities")
	}

	return m, summaryErr
}

// Reset restores the baseline dataset for the session
func (s *SessionService) Reset(ctx context.Context, id uuid.UUID) (domain.MetricsSummary, error) {
	sess, err := s.get(id)
	if err != nil {
		return domain.MetricsSummary{}, err
	}

	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if sess.closed {
		return domain.MetricsSummary{}, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}

	if err := s.Repo.Save(ctx, id, seeder.BaselineTables()); err != nil {
		return domain.MetricsSummary{}, fmt.Errorf("failed to save statements: %w", err)
	}
	if err := sess.store.Reset(); err != nil {
		return domain.MetricsSummary{}, err
	}

	s.log.Info().Str("session_id", id.String()).Msg("Statements reset to baseline")

	return sess.store.Summary()
}

// Summary returns the headline metrics of the session
func (s *SessionService) Summary(id uuid.UUID) (domain.MetricsSummary, error) {
	sess, err := s.get(id)
	if err != nil {
		return domain.MetricsSummary{}, err
	}
	return sess.store.Summary()
}

// Statements returns a copy of the session's statements
func (s *SessionService) Statements(id uuid.UUID) (domain.Tables, error) {
	sess, err := s.get(id)
	if err != nil {
		return domain.Tables{}, err
	}
	return sess.store.Snapshot().Tables(), nil
}

// Consistency reports the accounting identities the session's statements violate
func (s *SessionService) Consistency(id uuid.UUID) ([]domain.Inconsistency, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return domain.CheckConsistency(sess.store.Snapshot()), nil
}

// Periods returns the ordered periods of the session's statements
func (s *SessionService) Periods(id uuid.UUID) ([]domain.Period, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return sess.store.Periods(), nil
}

// Ratios computes the ratios of one period
// A nil period selects the latest one; an empty category selects every category
func (s *SessionService) Ratios(id uuid.UUID, period *domain.Period, category domain.RatioCategory) (domain.Period, domain.RatioSet, error) {
	sess, err := s.get(id)
	if err != nil {
		return domain.Period{}, nil, err
	}

	snap := sess.store.Snapshot()
	p, err := resolvePeriod(snap, period)
	if err != nil {
		return domain.Period{}, nil, err
	}

	if category == "" {
		set, err := ratio.All(snap, p)
		return p, set, err
	}
	set, err := ratio.ByCategory(snap, p, category)
	return p, set, err
}

// RatioTable computes a ratio category for every period
func (s *SessionService) RatioTable(id uuid.UUID, category domain.RatioCategory) ([]ratio.Row, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return ratio.Table(sess.store.Snapshot(), category)
}

// ExpenseBreakdown expresses expenses as a share of revenue for one period
func (s *SessionService) ExpenseBreakdown(id uuid.UUID, period *domain.Period) (domain.Period, map[domain.LineItem]decimal.Decimal, error) {
	sess, err := s.get(id)
	if err != nil {
		return domain.Period{}, nil, err
	}

	snap := sess.store.Snapshot()
	p, err := resolvePeriod(snap, period)
	if err != nil {
		return domain.Period{}, nil, err
	}

	breakdown, err := ratio.ExpenseBreakdown(snap, p)
	return p, breakdown, err
}

// Growth computes the period-over-period growth of a line item
func (s *SessionService) Growth(id uuid.UUID, kind domain.StatementKind, item domain.LineItem) ([]growth.Delta, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return growth.LineItem(sess.store.Snapshot(), kind, item)
}

// GrowthAnalysis computes the growth table of the tracked metrics
func (s *SessionService) GrowthAnalysis(id uuid.UUID) (*growth.Analysis, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return growth.Analyze(sess.store.Snapshot())
}

// CumulativeCashFlow returns the running total of net cash flow
func (s *SessionService) CumulativeCashFlow(id uuid.UUID) ([]growth.Point, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	series, err := growth.Series(sess.store.Snapshot(), domain.StatementCashFlow, domain.NetCashFlow)
	if err != nil {
		return nil, err
	}
	return growth.Cumulative(series), nil
}

// Ask routes a chat query and records both sides of the exchange
func (s *SessionService) Ask(ctx context.Context, id uuid.UUID, query string) (domain.ChatMessage, error) {
	if strings.TrimSpace(query) == "" {
		return domain.ChatMessage{}, domain.ErrEmptyQuery
	}

	sess, err := s.get(id)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	snap, m, err := sess.store.View()
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("failed to answer query: %w", err)
	}

	rule := s.Router.Match(query)
	text, err := rule.Respond(advisor.Input{Summary: m, Snapshot: snap})
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("failed to answer query with rule %s: %w", rule.Name, err)
	}

	now := s.now()
	question := domain.ChatMessage{ID: uuid.New(), Role: domain.ChatRoleUser, Content: query, CreatedAt: now}
	answer := domain.ChatMessage{ID: uuid.New(), Role: domain.ChatRoleAssistant, Content: text, Rule: rule.Name, CreatedAt: now}

	sess.mu.Lock()
	sess.history = append(sess.history, question, answer)
	sess.mu.Unlock()

	s.log.Debug().
		Str("session_id", id.String()).
		Str("rule", rule.Name).
		Msg("Chat query answered")

	return answer, nil
}

// History returns the chat transcript of the session, oldest first
func (s *SessionService) History(id uuid.UUID) ([]domain.ChatMessage, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]domain.ChatMessage, len(sess.history))
	copy(out, sess.history)
	return out, nil
}

// EvictIdle drops in-memory sessions not used for maxIdle
// Their statements stay in the repository so they can be resumed; chat history does not
func (s *SessionService) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}

	if evicted > 0 {
		s.log.Info().Int("evicted", evicted).Int("active", len(s.sessions)).Msg("Idle sessions evicted")
	}
	return evicted
}

// Active returns the number of in-memory sessions
func (s *SessionService) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionService) register(id uuid.UUID, store *statement.Store) {
	sess := &Session{ID: id, store: store, lastSeen: s.now()}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
}

func (s *SessionService) get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}

	sess.touch(s.now())
	return sess, nil
}

func resolvePeriod(snap *domain.Snapshot, period *domain.Period) (domain.Period, error) {
	if period != nil {
		return *period, nil
	}
	latest, ok := snap.Latest()
	if !ok {
		return domain.Period{}, &domain.LookupError{Statement: domain.StatementIncome, Item: domain.Revenue}
	}
	return latest, nil
}
