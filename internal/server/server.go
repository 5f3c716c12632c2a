package server

import (
	"context"
	"net/http"
	"time"

	"gbit-go/internal/gbit"
)

// Server wraps the HTTP server hosting the snapshot API.
type Server struct {
	httpServer *http.Server
	logger     gbit.Logger
}

// NewServer creates a Server listening on addr with the API routes mounted.
func NewServer(addr string, h *Handler, logger gbit.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           Routes(h),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Routes builds the API route table for a Handler.
func Routes(h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /commit", h.Commit)
	mux.HandleFunc("GET /repos/{owner}", h.ListRepositories)
	mux.HandleFunc("GET /repos/{owner}/{repo}/files", h.ListFiles)
	mux.HandleFunc("GET /repos/{owner}/{repo}/file/{path...}", h.ReadFile)
	mux.HandleFunc("GET /repos/{owner}/{repo}/clone", h.Clone)
	mux.HandleFunc("DELETE /repos/{owner}/{repo}", h.Delete)
	mux.HandleFunc("GET /search", h.Search)
	mux.HandleFunc("GET /healthz", h.Health)
	return mux
}

// ListenAndServe starts serving. Blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
