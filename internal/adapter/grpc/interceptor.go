package grpc

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token from request metadata.
// If the token is missing or invalid, it returns status.Unauthenticated.
// If valid, it calls the handler with the original context.
func AuthInterceptor(validToken string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		if authHeaders[0] != validToken {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(ctx, req)
	}
}

// LoggingInterceptor logs every unary call with its status code and duration
// Server side failures are logged at error level, caller mistakes at warn level
func LoggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	log = log.With().Str("component", "grpc").Logger()

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		var event *zerolog.Event
		switch code {
		case codes.OK:
			event = log.Info()
		case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
			event = log.Error().Err(err)
		default:
			event = log.Warn().Err(err)
		}

		event.
			Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("duration_ms", time.Since(start)).
			Msg("gRPC request")

		return resp, err
	}
}
