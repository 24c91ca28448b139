package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DropBy-app/dropby/api"
	"github.com/DropBy-app/dropby/api/middleware"
	"github.com/DropBy-app/dropby/config"
	"github.com/DropBy-app/dropby/logger"
	"github.com/DropBy-app/dropby/tasks/board"
)

// Server wraps http.Server with graceful shutdown capabilities
type Server struct {
	httpServer *http.Server
	config     *config.Config
	logger     *logger.Logger
}

// dependencies contains all the dependencies needed to create a server
type dependencies struct {
	board  board.Board
	config *config.Config
	logger *logger.Logger
}

// New creates a new server with all HTTP configuration
func New(b board.Board, cfg *config.Config, lg *logger.Logger) *Server {
	deps := &dependencies{
		board:  b,
		config: cfg,
		logger: lg,
	}

	handler := newRouter(deps)

	return &Server{
		httpServer: &http.Server{
			Addr:    cfg.Address(),
			Handler: handler,
			// Compose calls wait on the text service, so writes get its budget on top.
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15*time.Second + cfg.AITimeout,
			IdleTimeout:  60 * time.Second,
		},
		config: cfg,
		logger: lg,
	}
}

// Handler exposes the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// newRouter creates and configures the HTTP router with all routes and middleware
func newRouter(deps *dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /tasks", api.NewListTasksHandler(deps.board, deps.logger))
	mux.HandleFunc("GET /tasks/completed", api.NewListCompletedHandler(deps.board, deps.logger))
	mux.HandleFunc("POST /tasks", api.NewCreateTaskHandler(deps.board, deps.logger))
	mux.HandleFunc("POST /tasks/{id}/complete", api.NewCompleteTaskHandler(deps.board, deps.logger))
	mux.HandleFunc("POST /compose", api.NewComposeHandler(deps.board, deps.logger))
	mux.HandleFunc("GET /health", api.NewHealthHandler(deps.config, deps.logger))

	return applyMiddleware(mux, deps.logger)
}

// applyMiddleware wraps the handler with all necessary middleware
func applyMiddleware(handler http.Handler, lg *logger.Logger) http.Handler {
	// Apply middleware in reverse order (last applied = first executed)
	wrapped := handler

	wrapped = middleware.LoggingMiddleware(lg)(wrapped)
	wrapped = middleware.RequestID(wrapped)

	return wrapped
}

// Start starts the server and blocks until an interrupt, then shuts down.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.Run(ctx)
}

// Run serves until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("Server starting", map[string]any{
			"address":       s.config.Address(),
			"store_backend": s.config.StoreBackend,
			"composer":      s.config.ComposerEnabled(),
		})

		if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed to start", map[string]any{
				"error": err.Error(),
			})
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	return s.shutdown()
}

// shutdown gracefully shuts down the server
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})

		return err
	}

	s.logger.Info("Server shutdown complete")
	return nil
}
