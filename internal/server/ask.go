package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/seniordev0204/chatbot-go/internal/logging"
	"github.com/seniordev0204/chatbot-go/internal/rag"
	"github.com/seniordev0204/chatbot-go/internal/store"
)

// defaultHistoryLimit is the number of exchanges returned by GET /api/history
// when no limit parameter is given; maxHistoryLimit caps the parameter.
const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// handleAsk handles POST /ask. It decodes the question, runs the full
// retrieve-then-generate pipeline, and returns the question/answer pair.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.askRequestsTotal.WithLabelValues(outcomeInvalid).Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	resp, err := s.answerer.Answer(r.Context(), req.Question)
	elapsed := time.Since(start)

	if err != nil {
		outcome, status := classifyAskError(err)
		s.metrics.askRequestsTotal.WithLabelValues(outcome).Inc()
		s.metrics.askDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
		log.Error("ask failed",
			slog.String("outcome", outcome),
			slog.Duration("duration", elapsed),
			slog.Any("error", err),
		)
		writeError(w, status, err.Error())
		return
	}

	s.metrics.askRequestsTotal.WithLabelValues(outcomeOK).Inc()
	s.metrics.askDurationSeconds.WithLabelValues(outcomeOK).Observe(elapsed.Seconds())

	writeJSON(w, http.StatusOK, askResponse{
		Question: resp.Question,
		Answer:   resp.Answer,
	})
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHistory handles GET /api/history. It returns previously answered
// questions newest-first. The optional limit query parameter bounds the
// result size.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history persistence is disabled")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	exchanges, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("history query failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if exchanges == nil {
		exchanges = []store.Exchange{}
	}

	writeJSON(w, http.StatusOK, historyResponse{Exchanges: exchanges})
}

// classifyAskError maps a pipeline error onto a metric outcome label and an
// HTTP status code.
func classifyAskError(err error) (outcome string, status int) {
	switch {
	case errors.Is(err, rag.ErrInvalidInput):
		return outcomeInvalid, http.StatusBadRequest
	case errors.Is(err, rag.ErrUpstreamTimeout):
		return outcomeTimeout, http.StatusGatewayTimeout
	case errors.Is(err, rag.ErrUpstreamUnavailable):
		return outcomeUnavailable, http.StatusBadGateway
	default:
		return outcomeError, http.StatusInternalServerError
	}
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
