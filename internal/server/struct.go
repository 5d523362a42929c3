package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/seniordev0204/chatbot-go/internal/answer"
	"github.com/seniordev0204/chatbot-go/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on POST /ask and GET /api/history.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// History is the optional exchange store backing GET /api/history.
	// If nil, the endpoint responds 404.
	History store.ExchangeStore
	// Registry is the Prometheus registry used for server metrics and the
	// GET /metrics endpoint. If nil, the default registry is used. Tests
	// inject a fresh registry to stay hermetic.
	Registry *prometheus.Registry
}

// answerer is the interface handleAsk calls to produce a reply.
// *answer.Service satisfies it; tests inject a fake.
type answerer interface {
	// Answer runs the retrieve-then-generate pipeline for one question.
	Answer(ctx context.Context, question string) (*answer.Response, error)
}

// Server is the HTTP server that exposes the question-answering service.
type Server struct {
	// answerer produces replies for POST /ask; set to the answer service in
	// production, overridden by a fake in tests.
	answerer answerer
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// history backs GET /api/history; nil when persistence is disabled.
	history store.ExchangeStore
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// rl enforces the per-IP limit; its eviction sweep runs from Start.
	rl *rateLimiter
	// probeTimeout caps each dependency probe during a readiness check.
	probeTimeout time.Duration
}

// askRequest is the JSON body for POST /ask.
type askRequest struct {
	// Question is the user's question text.
	Question string `json:"question"`
}

// askResponse is the JSON response for POST /ask.
type askResponse struct {
	// Question is the original question, echoed back verbatim.
	Question string `json:"question"`
	// Answer is the generated answer text.
	Answer string `json:"answer"`
}

// errorResponse is the JSON body returned for any failed request.
type errorResponse struct {
	// Error is the human-readable failure reason.
	Error string `json:"error"`
}

// historyResponse is the JSON response for GET /api/history.
type historyResponse struct {
	// Exchanges lists previously answered questions, newest-first.
	Exchanges []store.Exchange `json:"exchanges"`
}
