// Package server exposes the partitioning pipeline over HTTP.
//
// Routes:
//
//	POST /v1/partition   run the pipeline on a graph
//	GET  /healthz        liveness probe
//	GET  /version        build information
//
// Every response carries an X-Request-ID header; a client-supplied one is
// kept, otherwise a UUID is generated.
package server

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/linepart/pkg/balance"
	"github.com/matzehuels/linepart/pkg/pipeline"
)

// Defaults for [Config].
const (
	DefaultAddr           = ":8080"
	DefaultMaxBodyBytes   = 8 << 20
	DefaultRequestTimeout = 2 * time.Minute
	DefaultMaxVertices    = balance.DefaultMaxVertices
	shutdownTimeout       = 10 * time.Second
)

// Config configures the HTTP server.
type Config struct {
	Addr           string
	MaxBodyBytes   int64
	RequestTimeout time.Duration

	// MaxVertices caps the graph size and the DP line length of a request.
	// Client max_vertices values above it, or not positive, are replaced.
	MaxVertices int
	// MaxWorkers caps the DP goroutines of a request. Zero means GOMAXPROCS.
	MaxWorkers int
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxVertices <= 0 {
		c.MaxVertices = DefaultMaxVertices
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = runtime.GOMAXPROCS(0)
	}
}

// limit bounds the resource options a client controls.
func (c *Config) limit(opts *pipeline.Options) {
	if opts.MaxVertices <= 0 || opts.MaxVertices > c.MaxVertices {
		opts.MaxVertices = c.MaxVertices
	}
	if opts.Workers <= 0 || opts.Workers > c.MaxWorkers {
		opts.Workers = c.MaxWorkers
	}
}

// Server serves the pipeline API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
	router chi.Router
}

// New creates a server that runs requests through runner.
func New(runner *pipeline.Runner, logger *log.Logger, cfg Config) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, logger: logger, cfg: cfg}
	s.router = s.routes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/partition", s.handlePartition)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	return r
}
