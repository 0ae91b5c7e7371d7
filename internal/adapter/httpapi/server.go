// Package httpapi exposes the search pipeline over HTTP.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/qvkare/mirror-search/internal/infra/config"
	"github.com/qvkare/mirror-search/internal/infra/middleware"
	"github.com/qvkare/mirror-search/internal/usecase"
)

// Server wraps the HTTP server lifecycle around the search handlers.
type Server struct {
	server *http.Server
	logger *slog.Logger
	addr   string

	// Actual bound address (set after Start)
	boundAddr string

	// Lifecycle management for rate limiter cleanup goroutine
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer builds the routing table and middleware chain. Call Start to
// begin serving.
func NewServer(cfg config.ServerConfig, orch *usecase.Orchestrator, anonDefault bool, logger *slog.Logger) *Server {
	s := &Server{
		addr:   cfg.Addr,
		logger: logger,
	}

	h := newHandler(orch, anonDefault, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/search", h.handleSearch)
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/llm-status", h.handleLLMStatus)
	mux.HandleFunc("/", h.handleRoot)

	s.ctx, s.cancel = context.WithCancel(context.Background())

	chain := middleware.SecurityHeaders(
		middleware.RateLimitWithConfig(s.ctx, middleware.RateLimitConfig{
			RequestsPerMin: cfg.RateLimitPerMin,
			BurstSize:      cfg.RateLimitBurst,
			TrustedProxies: cfg.TrustedProxies,
		})(middleware.RequestID(mux)),
	)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           chain,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return s
}

// Start begins serving. Non-blocking (serves in a goroutine).
func (s *Server) Start(ctx context.Context) error {
	s.server.BaseContext = func(_ net.Listener) context.Context { return ctx }

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.boundAddr = ln.Addr().String()

	go func() {
		s.logger.Info("http server started", "addr", s.boundAddr)
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the actual bound address, useful when Addr was ":0".
func (s *Server) Addr() string { return s.boundAddr }

// Stop gracefully shuts down the server and the rate limiter goroutine.
func (s *Server) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.server.Shutdown(ctx)
}
