package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/simaogato/virtualcfo-backend/internal/usecase/session"
)

// Config holds server configuration
type Config struct {
	Port           int
	APIToken       string
	AllowedOrigins []string
	Log            zerolog.Logger
	Sessions       *session.SessionService
}

// Server represents the HTTP server of the dashboard API
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	sessions *session.SessionService
	token    string
	port     int
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "http").Logger(),
		sessions: cfg.Sessions,
		token:    cfg.APIToken,
		port:     cfg.Port,
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(allowedOrigins []string) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/sessions", s.handleOpenSession)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Delete("/", s.handleCloseSession)
			r.Post("/resume", s.handleResumeSession)

			r.Get("/summary", s.handleSummary)

			r.Get("/ratios", s.handleRatios)
			r.Get("/ratios/table", s.handleRatioTable)
			r.Get("/breakdown", s.handleBreakdown)

			r.Get("/growth", s.handleGrowth)
			r.Get("/growth/analysis", s.handleGrowthAnalysis)
			r.Get("/cashflow/cumulative", s.handleCumulativeCashFlow)

			r.Get("/statements", s.handleGetStatements)
			r.Put("/statements", s.handleLoadStatements)
			r.Get("/statements/checks", s.handleConsistency)
			r.Post("/reset", s.handleReset)

			r.Get("/chat", s.handleHistory)
			r.Post("/chat", s.handleAsk)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

// authMiddleware accepts "Authorization: <token>" or "Authorization: Bearer <token>"
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		if strings.TrimPrefix(header, "Bearer ") != s.token {
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
