// Package api provides the HTTP REST surface of the supportbot backend.
//
// Endpoints:
//
//	POST /ingest                  upload a PDF into the tenant's index
//	GET  /ingest/documents        list the tenant's ingested documents
//	POST /chat/                   answer a question with RAG
//	PUT  /api/chatbot/config/     store tenant model configuration (admin)
//	GET  /api/chatbot/config/     read tenant model configuration (admin)
//	GET  /health                  liveness probe
//	GET  /ready                   readiness probe (database ping)
//
// File structure:
//   - server.go: server setup and lifecycle
//   - middleware.go: recovery, CORS, request logging
//   - response.go: JSON helpers and the error-code mapping
//   - auth.go: request authentication (stubbed)
//   - ingest.go, chat.go, botconfig.go, health.go: handlers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/awaqi/supportbot/internal/log"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8000"

	// ShutdownTimeout is the maximum wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against Slowloris-style clients.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout covers reading the entire request, including a 10 MiB
	// PDF upload on a slow link.
	ReadTimeout = 60 * time.Second

	// WriteTimeout covers the response; model calls dominate it.
	WriteTimeout = 2 * time.Minute

	// IdleTimeout bounds keep-alive connections.
	IdleTimeout = 2 * time.Minute
)

// Server is the HTTP server for the backend API.
type Server struct {
	mux         *http.ServeMux
	corsOrigins []string
	logger      log.Logger

	health  *HealthHandler
	ingest  *IngestHandler
	chat    *ChatHandler
	botconf *BotConfigHandler
}

// NewServer creates a server with all routes registered.
func NewServer(health *HealthHandler, ingest *IngestHandler, chat *ChatHandler, botconf *BotConfigHandler, corsOrigins []string, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNop()
	}

	mux := http.NewServeMux()
	s := &Server{
		mux:         mux,
		corsOrigins: corsOrigins,
		logger:      logger,
		health:      health,
		ingest:      ingest,
		chat:        chat,
		botconf:     botconf,
	}

	s.health.RegisterRoutes(mux)
	s.ingest.RegisterRoutes(mux)
	s.chat.RegisterRoutes(mux)
	s.botconf.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Order: recovery → CORS → logging → mux.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		corsMiddleware(s.corsOrigins),
		loggingMiddleware(s.logger))
}

// Run starts the server and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
