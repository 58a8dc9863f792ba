package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/virtualcfo-backend/internal/adapter/grpc"
	"github.com/simaogato/virtualcfo-backend/internal/adapter/repository/memory"
	"github.com/simaogato/virtualcfo-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/virtualcfo-backend/internal/adapter/rest"
	"github.com/simaogato/virtualcfo-backend/internal/config"
	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"github.com/simaogato/virtualcfo-backend/internal/logger"
	"github.com/simaogato/virtualcfo-backend/internal/scheduler"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/advisor"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	// 1. Setup Repository
	repo, closeRepo, err := setupRepository(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up repository")
	}
	defer closeRepo()

	// 2. Initialize Services (Use Cases)
	sessionService := session.NewSessionService(repo, advisor.NewDefaultRouter(), log)

	// 3. Schedule idle session eviction
	sched := scheduler.New(log)
	sweep := scheduler.NewSessionSweepJob(sessionService, cfg.SessionIdleTimeout, log)
	if err := sched.AddJob(cfg.SessionSweepSchedule, sweep); err != nil {
		log.Fatal().Err(err).Msg("Failed to register session sweep job")
	}
	sched.Start()

	// 4. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)
	grpcadapter.RegisterMetricsServiceServer(grpcServer, grpcadapter.NewServer(sessionService))
	reflection.Register(grpcServer)

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", grpcAddr).Msg("Failed to listen")
	}

	go func() {
		log.Info().Str("addr", grpcAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// 5. Start HTTP Server
	httpServer := rest.New(rest.Config{
		Port:           cfg.HTTPPort,
		APIToken:       cfg.APIToken,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log,
		Sessions:       sessionService,
	})

	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to serve HTTP server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(log, grpcServer, httpServer, sched)
}

// setupRepository picks Postgres when DB_ENABLED is set and the in-memory repository otherwise
func setupRepository(cfg *config.Config, log zerolog.Logger) (domain.SnapshotRepository, func(), error) {
	if !cfg.DBEnabled {
		log.Info().Msg("Persistence disabled, using in-memory repository")
		return memory.NewSnapshotRepository(), func() {}, nil
	}

	// Add 2-second delay to ensure Postgres is up (Simple retry)
	time.Sleep(2 * time.Second)

	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	log.Info().Msg("Connected to Postgres, statements will be persisted")

	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
	return postgres.NewSnapshotRepository(db), closeDB, nil
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(log zerolog.Logger, grpcServer *grpclib.Server, httpServer *rest.Server, sched *scheduler.Scheduler) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	grpcServer.GracefulStop()
	log.Info().Msg("Servers stopped")
}
