package grpc

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/virtualcfo-backend/internal/adapter/presenter"
	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/session"
)

// Server implements the MetricsService gRPC server
type Server struct {
	SessionService *session.SessionService
}

// NewServer creates a new gRPC server instance
func NewServer(sessionService *session.SessionService) *Server {
	return &Server{SessionService: sessionService}
}

// OpenSession handles the OpenSession RPC
// A request carrying a session_id resumes that session instead of opening a new one
func (s *Server) OpenSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if raw := stringField(req, "session_id"); raw != "" {
		sessionID, err := uuid.Parse(raw)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid session_id format: %v", err)
		}
		if err := s.SessionService.Resume(ctx, sessionID); err != nil {
			return nil, mapError(err)
		}
		return newStruct(map[string]interface{}{"session_id": sessionID.String(), "resumed": true})
	}

	sessionID, err := s.SessionService.Open(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{"session_id": sessionID.String(), "resumed": false})
}

// CloseSession handles the CloseSession RPC
func (s *Server) CloseSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, err := parseSessionID(req)
	if err != nil {
		return nil, err
	}

	if err := s.SessionService.Close(ctx, sessionID); err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{"session_id": sessionID.String(), "closed": true})
}

// GetSummary handles the GetSummary RPC
func (s *Server) GetSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, err := parseSessionID(req)
	if err != nil {
		return nil, err
	}

	m, err := s.SessionService.Summary(sessionID)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(presenter.Summary(m))
}

// GetRatios handles the GetRatios RPC
// Ratios that could not be computed are listed under "errors" next to the others
func (s *Server) GetRatios(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, err := parseSessionID(req)
	if err != nil {
		return nil, err
	}

	var period *domain.Period
	if raw := stringField(req, "period"); raw != "" {
		p, err := domain.ParsePeriod(raw)
		if err != nil {
			return nil, mapError(err)
		}
		period = &p
	}

	var category domain.RatioCategory
	if raw := stringField(req, "category"); raw != "" {
		category, err = domain.ParseRatioCategory(raw)
		if err != nil {
			return nil, mapError(err)
		}
	}

	p, set, err := s.SessionService.Ratios(sessionID, period, category)
	if err != nil && (len(set) == 0 || !presenter.IsPartial(err)) {
		return nil, mapError(err)
	}

	return newStruct(presenter.Ratios(p, set, err))
}

// GetGrowth handles the GetGrowth RPC
func (s *Server) GetGrowth(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, err := parseSessionID(req)
	if err != nil {
		return nil, err
	}

	kind := domain.StatementIncome
	if raw := stringField(req, "statement"); raw != "" {
		kind, err = domain.ParseStatementKind(raw)
		if err != nil {
			return nil, mapError(err)
		}
	}

	item := domain.LineItem(stringField(req, "item"))
	if item == "" {
		item = domain.Revenue
	}

	deltas, err := s.SessionService.Growth(sessionID, kind, item)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(presenter.Growth(kind, item, deltas))
}

// LoadStatements handles the LoadStatements RPC
func (s *Server) LoadStatements(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, err := parseSessionID(req)
	if err != nil {
		return nil, err
	}

	raw, ok := req.GetFields()["statements"]
	if !ok || raw.GetStructValue() == nil {
		return nil, status.Error(codes.InvalidArgument, "statements object is required")
	}

	tables, err := presenter.ParseTables(raw.GetStructValue().AsMap())
	if err != nil {
		return nil, mapError(err)
	}

	m, err := s.SessionService.Load(ctx, sessionID, tables)
	if err != nil && !presenter.IsPartial(err) {
		return nil, mapError(err)
	}

	periods, perr := s.SessionService.Periods(sessionID)
	if perr != nil {
		return nil, mapError(perr)
	}

	issues, perr := s.SessionService.Consistency(sessionID)
	if perr != nil {
		return nil, mapError(perr)
	}

	return newStruct(presenter.Loaded(periods, issues, m, err))
}

// ResetStatements handles the ResetStatements RPC
func (s *Server) ResetStatements(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, err := parseSessionID(req)
	if err != nil {
		return nil, err
	}

	m, err := s.SessionService.Reset(ctx, sessionID)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(presenter.Summary(m))
}

// Ask handles the Ask RPC
func (s *Server) Ask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID, err := parseSessionID(req)
	if err != nil {
		return nil, err
	}

	answer, err := s.SessionService.Ask(ctx, sessionID, stringField(req, "query"))
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(presenter.Message(answer))
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func parseSessionID(req *structpb.Struct) (uuid.UUID, error) {
	sessionID, err := uuid.Parse(stringField(req, "session_id"))
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid session_id format: %v", err)
	}
	return sessionID, nil
}

func newStruct(payload map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return status.Errorf(codes.NotFound, "%s", err)
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrPeriodMismatch),
		errors.Is(err, domain.ErrUnorderedSeries):
		return status.Errorf(codes.InvalidArgument, "%s", err)
	case errors.Is(err, domain.ErrLookup),
		errors.Is(err, domain.ErrDivision),
		errors.Is(err, domain.ErrInsufficientData):
		return status.Errorf(codes.FailedPrecondition, "%s", err)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", err)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", err)
	default:
		// Default to Internal error for unknown errors
		return status.Errorf(codes.Internal, "%s", err)
	}
}
