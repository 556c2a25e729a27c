package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rmoliv/powerfit/internal/config"
)

// Server is the HTTP host for the sizing API.
type Server struct {
	handler *Handler
	httpSrv *http.Server
}

// New builds the server: API routes wrapped in logging and metrics
// middleware, plus the Prometheus exposition endpoint.
func New(cfg config.Config, h *Handler) *Server {
	mux := http.NewServeMux()
	for _, rt := range h.Routes() {
		mux.HandleFunc(rt.Method+" "+rt.Path,
			logRequest(instrument(h.metrics, rt.Path, rt.Handler)))
	}
	mux.Handle("GET /metrics", h.metrics.Handler())

	return &Server{
		handler: h,
		httpSrv: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      mux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Addr returns the bind address.
func (s *Server) Addr() string {
	return s.httpSrv.Addr
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
