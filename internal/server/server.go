// Package server implements the jsontree HTTP API.
//
// Stateless routes compile or search a document sent in the request body.
// Session routes keep the editor state (input, graph, query, message and
// theme) in a [session.Store] so that a browser front end can drive the same
// actions the terminal viewer offers. Requests for one session are
// serialized; requests for different sessions run concurrently.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/jsontree/pkg/pipeline"
	"github.com/matzehuels/jsontree/pkg/session"
)

// Defaults applied by New.
const (
	DefaultAddr            = ":8080"
	DefaultCleanupInterval = 10 * time.Minute
	shutdownTimeout        = 10 * time.Second
)

// Config configures the server.
type Config struct {
	Addr           string
	AllowedOrigins []string
	SessionTTL     time.Duration
	MaxInputSize   int
	MaxDepth       int

	// CleanupInterval is how often expired sessions are purged. Zero means
	// DefaultCleanupInterval; negative disables the purge loop.
	CleanupInterval time.Duration
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	store  session.Store
	logger *log.Logger
	locks  *keyedMutex
	router chi.Router
}

// New creates a server. A nil store means a MemoryStore; a nil logger
// discards output.
func New(cfg Config, runner *pipeline.Runner, store session.Store, logger *log.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if store == nil {
		store = session.NewMemoryStore()
	}

	s := &Server{
		cfg:    cfg,
		runner: runner,
		store:  store,
		logger: logger,
		locks:  newKeyedMutex(),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/legend", s.handleLegend)
		r.Post("/graph", s.handleGraph)
		r.Post("/search", s.handleSearch)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/input", s.handleSetInput)
			r.Post("/generate", s.handleGenerate)
			r.Post("/search", s.handleSessionSearch)
			r.Delete("/search", s.handleClearSearch)
			r.Post("/clear", s.handleClear)
			r.Put("/theme", s.handleSetTheme)
			r.Get("/export", s.handleExport)
		})
	})
	return r
}

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.AllowedOrigins) == 0 {
		return []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	return s.cfg.AllowedOrigins
}

// Run serves until ctx is cancelled, then shuts down gracefully.
// Expired sessions are purged in the background.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if s.cfg.CleanupInterval > 0 {
		g.Go(func() error {
			s.cleanupLoop(ctx)
			return nil
		})
	}
	return g.Wait()
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.store.Cleanup(ctx); err != nil {
				s.logger.Warn("session cleanup failed", "error", err)
			}
		}
	}
}
