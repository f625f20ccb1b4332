// Package server provides the HTTP API and web UI of the ATS resume builder.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/ats-resume-builder/internal/optimize"
	"github.com/jonathan/ats-resume-builder/internal/server/ratelimit"
	"github.com/jonathan/ats-resume-builder/internal/types"
)

// Version is reported by GET /api.
const Version = "1.0.0"

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

//go:embed web
var webFS embed.FS

// Optimizer runs a resume optimization.
type Optimizer interface {
	Optimize(ctx context.Context, req types.OptimizeRequest) (*optimize.Result, error)
}

// History reads recorded runs.
type History interface {
	ListRuns(ctx context.Context, limit int) ([]types.RunSummary, error)
	GetRun(ctx context.Context, id uuid.UUID) (*types.RunDetail, error)
}

// ExportStore uploads rendered exports.
type ExportStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (*types.StoredExport, error)
}

// Options configures a Server. Optimizer is required; History and Storage
// enable their endpoints when set.
type Options struct {
	Port        int
	CORSOrigins []string
	RateLimit   *ratelimit.Config
	Optimizer   Optimizer
	History     History
	Storage     ExportStore
	Now         func() time.Time
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	optimizer   Optimizer
	history     History
	storage     ExportStore
	rateLimiter *ratelimit.Limiter
	cors        *originMatcher
	now         func() time.Time
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Optimizer == nil {
		return nil, errors.New("server: optimizer is required")
	}

	s := &Server{
		optimizer:   opts.Optimizer,
		history:     opts.History,
		storage:     opts.Storage,
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
		cors:        newOriginMatcher(opts.CORSOrigins),
		now:         opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}

	web, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, fmt.Errorf("failed to load web assets: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/optimize-resume", s.handleOptimize)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api", s.handleInfo)
	mux.HandleFunc("POST /api/extract-text", s.handleExtract)
	mux.HandleFunc("POST /api/export/{format}", s.handleExport)
	mux.HandleFunc("GET /api/history", s.handleListHistory)
	mux.HandleFunc("GET /api/history/{id}", s.handleGetHistory)
	mux.Handle("GET /", http.FileServerFS(web))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.withRequestID(s.withLogging(s.withCORS(s.withRateLimit(s.withBodyLimit(mux))))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      300 * time.Second, // LLM calls can take minutes
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until ctx is done or SIGINT/SIGTERM arrives, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// Close stops background work without serving.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}
