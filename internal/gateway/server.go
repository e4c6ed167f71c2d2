package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/maeumssi/maeumssi/internal/shared/logger"
)

const shutdownGrace = 20 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	port       string
	log        *slog.Logger
	onShutdown []func()
}

func NewServer(port string, handler http.Handler, log *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		port: port,
		log:  logger.OrDiscard(log),
	}
}

// OnShutdown registers fn to run after the listener closes, e.g. to drop
// websocket connections that Shutdown does not track.
func (s *Server) OnShutdown(fn func()) {
	s.onShutdown = append(s.onShutdown, fn)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.log.Info("server starting", "port", s.port)
		serverErrors <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		s.log.Info("server shutting down", "cause", context.Cause(ctx))

		for _, fn := range s.onShutdown {
			fn()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.httpServer.Close()
			return fmt.Errorf("could not gracefully shutdown server: %w", err)
		}
		if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		s.log.Info("server stopped gracefully")
	}

	return nil
}

// Handler returns the root handler, including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
