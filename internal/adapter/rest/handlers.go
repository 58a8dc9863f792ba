package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/simaogato/virtualcfo-backend/internal/adapter/presenter"
	"github.com/simaogato/virtualcfo-backend/internal/domain"
)

// maxBodyBytes bounds statement uploads and chat queries
const maxBodyBytes = 1 << 20

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"service":  "virtualcfo",
		"sessions": s.sessions.Active(),
	})
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessions.Open(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	m, err := s.sessions.Summary(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session_id": id.String(),
		"summary":    presenter.Summary(m),
	})
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	if err := s.sessions.Resume(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"session_id": id.String()})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	if err := s.sessions.Close(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	m, err := s.sessions.Summary(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, presenter.Summary(m))
}

// handleRatios returns one period's ratios; uncomputable ratios are listed under "errors"
func (s *Server) handleRatios(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	period, err := optionalPeriod(r)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	var category domain.RatioCategory
	if raw := r.URL.Query().Get("category"); raw != "" {
		if category, err = domain.ParseRatioCategory(raw); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}

	p, set, err := s.sessions.Ratios(id, period, category)
	if err != nil && (len(set) == 0 || !presenter.IsPartial(err)) {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, presenter.Ratios(p, set, err))
}

func (s *Server) handleRatioTable(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	category, err := domain.ParseRatioCategory(r.URL.Query().Get("category"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	rows, err := s.sessions.RatioTable(id, category)
	if err != nil && !presenter.IsPartial(err) {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, presenter.RatioTable(category, rows, err))
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	period, err := optionalPeriod(r)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	p, shares, err := s.sessions.ExpenseBreakdown(id, period)
	if err != nil && (len(shares) == 0 || !presenter.IsPartial(err)) {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, presenter.Breakdown(p, shares, err))
}

func (s *Server) handleGrowth(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	kind := domain.StatementIncome
	if raw := r.URL.Query().Get("statement"); raw != "" {
		var err error
		if kind, err = domain.ParseStatementKind(raw); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}

	item := domain.LineItem(r.URL.Query().Get("item"))
	if item == "" {
		item = domain.Revenue
	}

	deltas, err := s.sessions.Growth(id, kind, item)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, presenter.Growth(kind, item, deltas))
}

func (s *Server) handleGrowthAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	analysis, err := s.sessions.GrowthAnalysis(id)
	if err != nil && (analysis == nil || !presenter.IsPartial(err)) {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, presenter.Analysis(analysis, err))
}

func (s *Server) handleCumulativeCashFlow(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	series, err := s.sessions.CumulativeCashFlow(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"item":   string(domain.NetCashFlow),
		"series": presenter.Series(series),
	})
}

func (s *Server) handleGetStatements(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	tables, err := s.sessions.Statements(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	periods, err := s.sessions.Periods(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"periods":    presenter.Periods(periods),
		"statements": presenter.Tables(tables),
	})
}

// handleLoadStatements replaces the session's statements with the request body
// A dataset too short for a summary is still loaded; the response lists why the summary is missing
// Body: {"income": {"2024-Q1": {"Revenue": 100000}}, "balance": {...}, "cashflow": {...}}
func (s *Server) handleLoadStatements(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	var raw map[string]interface{}
	if err := decodeJSON(w, r, &raw); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tables, err := presenter.ParseTables(raw)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	m, err := s.sessions.Load(r.Context(), id, tables)
	if err != nil && !presenter.IsPartial(err) {
		s.writeDomainError(w, err)
		return
	}

	periods, perr := s.sessions.Periods(id)
	if perr != nil {
		s.writeDomainError(w, perr)
		return
	}

	issues, perr := s.sessions.Consistency(id)
	if perr != nil {
		s.writeDomainError(w, perr)
		return
	}

	s.writeJSON(w, http.StatusOK, presenter.Loaded(periods, issues, m, err))
}

// handleConsistency lists the accounting identities the statements violate
func (s *Server) handleConsistency(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	issues, err := s.sessions.Consistency(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"consistent":      len(issues) == 0,
		"inconsistencies": presenter.Inconsistencies(issues),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	m, err := s.sessions.Reset(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, presenter.Summary(m))
}

type askRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	answer, err := s.sessions.Ask(r.Context(), id, req.Query)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, presenter.Message(answer))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	history, err := s.sessions.History(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"messages": presenter.History(history)})
}

// sessionID parses the session path parameter, writing a 400 when malformed
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid session id: %v", err))
		return uuid.Nil, false
	}
	return id, true
}

func optionalPeriod(r *http.Request) (*domain.Period, error) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return nil, nil
	}
	p, err := domain.ParsePeriod(raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeDomainError maps domain errors to HTTP status codes
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("Request failed")
	}
	s.writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrPeriodMismatch),
		errors.Is(err, domain.ErrUnorderedSeries):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrLookup),
		errors.Is(err, domain.ErrDivision),
		errors.Is(err, domain.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
