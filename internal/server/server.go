// package server contains middleware & handlers for the media ingestion web service
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytingest/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Route binds one method and path pattern to a handler func.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Handler groups related routes so an implementation owns its route definitions.
type Handler interface {
	Routes() []Route
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers every route of a Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Waiter is anything in-flight work can be drained from before exit.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Server runs the HTTP API and drains background jobs on shutdown.
type Server struct {
	http            *http.Server
	jobs            Waiter
	shutdownTimeout time.Duration
	logger          *log.Logger
}

// ServerOpts configures a [Server]. Jobs may be nil.
type ServerOpts struct {
	Addr            string
	Router          Router
	Jobs            Waiter
	ShutdownTimeout time.Duration
	Logger          *log.Logger
}

// NewServer creates a [Server] that is not yet listening.
func NewServer(opts ServerOpts) *Server {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}
	return &Server{
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           opts.Router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		jobs:            opts.Jobs,
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          opts.Logger,
	}
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
//
// On shutdown it stops accepting requests, then waits for dispatched jobs, sharing one timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("graceful shutdown failed", "error", err)
		_ = s.http.Close()
	}

	if s.jobs != nil {
		if err := s.jobs.Wait(shutdownCtx); err != nil {
			s.logger.Warn("background jobs still running at exit", "error", err)
		}
	}

	s.logger.Info("server stopped")
	return nil
}
