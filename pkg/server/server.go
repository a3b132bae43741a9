// Package server exposes diagram generation over HTTP.
//
// Routes:
//
//	GET  /healthz                 liveness and build information
//	POST /v1/diagrams/{type}      JSON catalog in, diagram out
//
// {type} is models, controllers or states. The format query parameter picks
// dot (default), svg or xmi; xmi answers 501 Not Implemented. Walker and
// emitter switches are taken from query parameters named like the JSON
// fields of [pipeline.Options], for example ?inheritance=true&filter=Post*.
//
// All requests share one [pipeline.Runner]; each request builds its own
// graph. Concurrent identical SVG renders are collapsed into one.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/classgraph/pkg/pipeline"
)

// DefaultMaxBodyBytes limits catalog uploads.
const DefaultMaxBodyBytes = 8 << 20

// Config configures a [Server].
type Config struct {
	Logger *log.Logger

	// MaxBodyBytes limits the request body. Zero uses DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// Defaults are applied to every request before query parameters.
	Defaults pipeline.Options

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	cfg      Config
	renders  singleflight.Group
	router   chi.Router
	started  time.Time
	shutdown time.Duration
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = runner.Logger
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		runner:   runner,
		logger:   cfg.Logger,
		cfg:      cfg,
		started:  time.Now(),
		shutdown: 10 * time.Second,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/diagrams/{type}", s.handleDiagram)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed")
	})
	return r
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
