// Package server implements the HTTP server that exposes the
// question-answering service via a small JSON API.
// The server is started by the `askbot serve` CLI command.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seniordev0204/chatbot-go/internal/logging"
)

// New constructs a Server from the provided answer service and config.
func New(svc answerer, cfg *Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("server: answer service must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// WriteTimeout must cover the full embed + retrieve + generate chain.
		cfg.WriteTimeout = 2 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}

	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}

	s := &Server{
		answerer:     svc,
		cfg:          cfg,
		log:          log,
		pingers:      cfg.Pingers,
		history:      cfg.History,
		probeTimeout: probeTimeout,
	}

	var metricsHandler http.Handler
	if cfg.Registry != nil {
		s.metrics = newServerMetrics(cfg.Registry)
		metricsHandler = promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})
	} else {
		s.metrics = newServerMetrics(prometheus.DefaultRegisterer)
		metricsHandler = promhttp.Handler()
	}

	rl := newRateLimiter(cfg.RateLimit, cfg.RateBurst, log)
	s.rl = rl

	if cfg.APIKey == "" {
		log.Warn("server: ASKBOT_API_KEY not set — API authentication is disabled")
	}

	// protect wraps a handler in auth then rate limiting.
	protect := func(name string, h http.HandlerFunc) http.Handler {
		return s.instrument(name, authMiddleware(cfg.APIKey, rl.middleware(h)))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /ask", protect("ask", s.handleAsk))
	mux.Handle("GET /api/history", protect("history", s.handleHistory))
	mux.Handle("GET /api/health", s.instrument("health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /api/ready", s.instrument("ready", http.HandlerFunc(s.handleReady)))
	mux.Handle("GET /metrics", metricsHandler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      accessLog(log, corsMiddleware(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	// The eviction sweep lives exactly as long as the serving loop.
	go s.rl.evictLoop(ctx)

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server: listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}
