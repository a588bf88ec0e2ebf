// Package server exposes the task repository as a JSON API for a dashboard
// front end.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"buildboard/internal/repository"
	"buildboard/internal/roster"
)

// Server serves the JSON API.
type Server struct {
	tasks  *repository.Repository
	roster *roster.Roster
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock overrides the time source used for report figures.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New returns a server over the task repository and roster.
func New(tasks *repository.Repository, r *roster.Roster, opts ...Option) *Server {
	s := &Server{
		tasks:  tasks,
		roster: r,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed API with CORS and request logging.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(requestLogger(s.logger))
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(r.Context(), w, s.logger, errNotFound("not found"))
		})

		r.Get("/tasks", s.handle(s.listTasks))
		r.Post("/tasks", s.handle(s.createTask))
		r.Route("/tasks/{id}", func(r chi.Router) {
			r.Get("/", s.handle(s.getTask))
			r.Put("/", s.handle(s.updateTask))
			r.Post("/allocate", s.handle(s.allocateTask))
			r.Get("/availability", s.handle(s.availability))
			r.Get("/hours", s.handle(s.hours))
		})
		r.Get("/reports/summary", s.handle(s.summary))
		r.Get("/roster", s.handle(s.getRoster))
	})

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(r)
}

// ShutdownTimeout bounds the drain of in-flight requests after ctx is done.
const ShutdownTimeout = 5 * time.Second

// ListenAndServe serves on addr until ctx is done, then drains in-flight
// requests. ctx is the base context of every request.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
