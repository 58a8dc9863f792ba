package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/virtualcfo-backend/internal/adapter/repository/memory"
	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/advisor"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/session"
)

const testToken = "test-token"

// newTestClient starts the metrics service on an in-memory listener
func newTestClient(t *testing.T) *MetricsServiceClient {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	sessions := session.NewSessionService(memory.NewSnapshotRepository(), advisor.NewDefaultRouter(), zerolog.Nop())

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		LoggingInterceptor(zerolog.Nop()),
		AuthInterceptor(testToken),
	))
	RegisterMetricsServiceServer(srv, NewServer(sessions))

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewMetricsServiceClient(conn)
}

func authContext() context.Context {
	return metadata.NewOutgoingContext(context.Background(), metadata.Pairs("authorization", testToken))
}

func mustStruct(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func openTestSession(t *testing.T, client *MetricsServiceClient) string {
	t.Helper()
	resp, err := client.Call(authContext(), "OpenSession", mustStruct(t, nil))
	require.NoError(t, err)
	id := resp.GetFields()["session_id"].GetStringValue()
	require.NotEmpty(t, id)
	return id
}

func TestServer_RequiresToken(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Call(context.Background(), "OpenSession", mustStruct(t, nil))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestServer_SummaryAndRatios(t *testing.T) {
	client := newTestClient(t)
	id := openTestSession(t, client)

	summary, err := client.Call(authContext(), "GetSummary", mustStruct(t, map[string]interface{}{"session_id": id}))
	require.NoError(t, err)
	assert.Equal(t, "2024-Q4", summary.GetFields()["latest_period"].GetStringValue())
	assert.Equal(t, "20", summary.GetFields()["revenue_growth"].GetStringValue())

	ratios, err := client.Call(authContext(), "GetRatios", mustStruct(t, map[string]interface{}{
		"session_id": id,
		"period":     "2024-Q4",
		"category":   "liquidity",
	}))
	require.NoError(t, err)
	set := ratios.GetFields()["ratios"].GetStructValue().GetFields()
	assert.Equal(t, "2.25", set[string(domain.RatioQuick)].GetStringValue())
	assert.Equal(t, "130000", set[string(domain.RatioWorkingCapital)].GetStringValue())
	assert.NotContains(t, set, string(domain.RatioNetMargin))
}

func TestServer_GetGrowth(t *testing.T) {
	client := newTestClient(t)
	id := openTestSession(t, client)

	resp, err := client.Call(authContext(), "GetGrowth", mustStruct(t, map[string]interface{}{
		"session_id": id,
		"statement":  "income",
		"item":       "Revenue",
	}))
	require.NoError(t, err)

	deltas := resp.GetFields()["growth"].GetListValue().GetValues()
	require.Len(t, deltas, 4)
	first := deltas[0].GetStructValue().GetFields()
	_, isNull := first["growth"].GetKind().(*structpb.Value_NullValue)
	assert.True(t, isNull)
	assert.Equal(t, "20", deltas[1].GetStructValue().GetFields()["growth"].GetStringValue())

	// Statement and item default to income Revenue
	resp, err = client.Call(authContext(), "GetGrowth", mustStruct(t, map[string]interface{}{
		"session_id": id,
	}))
	require.NoError(t, err)
	assert.Equal(t, "Revenue", resp.GetFields()["item"].GetStringValue())
	assert.Len(t, resp.GetFields()["growth"].GetListValue().GetValues(), 4)
}

func TestServer_LoadAndReset(t *testing.T) {
	client := newTestClient(t)
	id := openTestSession(t, client)

	statements := map[string]interface{}{
		"income": map[string]interface{}{
			"2025-Q1": map[string]interface{}{"Revenue": 200.0, "Gross Profit": 80.0, "Net Income": 20.0},
			"2025-Q2": map[string]interface{}{"Revenue": 250.0, "Gross Profit": 100.0, "Net Income": 30.0},
		},
		"balance": map[string]interface{}{
			"2025-Q1": map[string]interface{}{"Current Assets": 100.0, "Current Liabilities": 50.0, "Total Liabilities": 60.0, "Equity": 120.0},
			"2025-Q2": map[string]interface{}{"Current Assets": 120.0, "Current Liabilities": 60.0, "Total Liabilities": 60.0, "Equity": 150.0},
		},
		"cashflow": map[string]interface{}{
			"2025-Q1": map[string]interface{}{},
			"2025-Q2": map[string]interface{}{},
		},
	}

	loaded, err := client.Call(authContext(), "LoadStatements", mustStruct(t, map[string]interface{}{
		"session_id": id,
		"statements": statements,
	}))
	require.NoError(t, err)
	summary := loaded.GetFields()["summary"].GetStructValue().GetFields()
	assert.Equal(t, "2025-Q2", summary["latest_period"].GetStringValue())
	assert.Equal(t, "25", summary["revenue_growth"].GetStringValue())

	reset, err := client.Call(authContext(), "ResetStatements", mustStruct(t, map[string]interface{}{"session_id": id}))
	require.NoError(t, err)
	assert.Equal(t, "2024-Q4", reset.GetFields()["latest_period"].GetStringValue())
}

func TestServer_LoadMismatchedPeriods(t *testing.T) {
	client := newTestClient(t)
	id := openTestSession(t, client)

	_, err := client.Call(authContext(), "LoadStatements", mustStruct(t, map[string]interface{}{
		"session_id": id,
		"statements": map[string]interface{}{
			"income":   map[string]interface{}{"2025-Q1": map[string]interface{}{"Revenue": 1.0}},
			"balance":  map[string]interface{}{},
			"cashflow": map[string]interface{}{},
		},
	}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_Ask(t *testing.T) {
	client := newTestClient(t)
	id := openTestSession(t, client)

	resp, err := client.Call(authContext(), "Ask", mustStruct(t, map[string]interface{}{
		"session_id": id,
		"query":      "Should we take on more debt?",
	}))
	require.NoError(t, err)
	assert.Equal(t, advisor.RuleDebt, resp.GetFields()["rule"].GetStringValue())
	assert.Equal(t, "assistant", resp.GetFields()["role"].GetStringValue())

	_, err = client.Call(authContext(), "Ask", mustStruct(t, map[string]interface{}{"session_id": id, "query": ""}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_SessionErrors(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Call(authContext(), "GetSummary", mustStruct(t, map[string]interface{}{"session_id": "not-a-uuid"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Call(authContext(), "GetSummary", mustStruct(t, map[string]interface{}{"session_id": uuid.NewString()}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	id := openTestSession(t, client)
	_, err = client.Call(authContext(), "CloseSession", mustStruct(t, map[string]interface{}{"session_id": id}))
	require.NoError(t, err)

	_, err = client.Call(authContext(), "GetSummary", mustStruct(t, map[string]interface{}{"session_id": id}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_ResumeSession(t *testing.T) {
	client := newTestClient(t)
	id := openTestSession(t, client)

	resp, err := client.Call(authContext(), "OpenSession", mustStruct(t, map[string]interface{}{"session_id": id}))
	require.NoError(t, err)
	assert.Equal(t, id, resp.GetFields()["session_id"].GetStringValue())
	assert.True(t, resp.GetFields()["resumed"].GetBoolValue())
}

func TestMapError(t *testing.T) {
	q1 := domain.Period{Year: 2024, Quarter: 1}

	tests := []struct {
		name     string
		err      error
		expected codes.Code
	}{
		{"Session Not Found", domain.ErrSessionNotFound, codes.NotFound},
		{"Invalid Argument", domain.ErrInvalidArgument, codes.InvalidArgument},
		{"Empty Query", domain.ErrEmptyQuery, codes.InvalidArgument},
		{"Period Mismatch", domain.ErrPeriodMismatch, codes.InvalidArgument},
		{"Lookup", &domain.LookupError{Statement: domain.StatementIncome, Period: q1, Item: domain.Revenue}, codes.FailedPrecondition},
		{"Division", &domain.DivisionError{Metric: "m", Period: q1, Denominator: "d"}, codes.FailedPrecondition},
		{"Insufficient Data", domain.ErrInsufficientData, codes.FailedPrecondition},
		{"Unknown", errors.New("boom"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, status.Code(mapError(tt.err)))
		})
	}

	assert.NoError(t, mapError(nil))
}
