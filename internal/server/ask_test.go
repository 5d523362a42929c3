package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/seniordev0204/chatbot-go/internal/answer"
	"github.com/seniordev0204/chatbot-go/internal/rag"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// okHandler is a trivial downstream handler for middleware tests.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// fakeAnswerer is a test double for the answerer interface.
type fakeAnswerer struct {
	// resp is returned on success.
	resp *answer.Response
	// err is returned instead of resp when non-nil.
	err error
	// calls counts Answer invocations.
	calls int
	// gotQuestion records the last question received.
	gotQuestion string
}

func (f *fakeAnswerer) Answer(_ context.Context, question string) (*answer.Response, error) {
	f.calls++
	f.gotQuestion = question
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &answer.Response{Question: question, Answer: "fake answer"}, nil
}

// newTestServer builds a *Server wired to a default fakeAnswerer, a fresh
// Prometheus registry, and a discard logger.
func newTestServer() *Server {
	return newTestServerWith(&fakeAnswerer{})
}

// newTestServerWith builds a *Server around the given fake.
func newTestServerWith(fake *fakeAnswerer) *Server {
	s, err := New(fake, &Config{
		Logger:   slog.New(slog.DiscardHandler),
		Registry: prometheus.NewRegistry(),
	})
	if err != nil {
		panic(err)
	}
	return s
}

// postAsk performs a POST /ask against the server's full handler chain.
func postAsk(s *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)
	return w
}

// ---------------------------------------------------------------------------
// POST /ask
// ---------------------------------------------------------------------------

// TestHandleAsk_OK verifies the happy path returns 200 with the question
// echoed and the generated answer.
func TestHandleAsk_OK(t *testing.T) {
	t.Parallel()

	fake := &fakeAnswerer{resp: &answer.Response{Question: "what is Go?", Answer: "a language"}}
	s := newTestServerWith(fake)

	w := postAsk(s, `{"question": "what is Go?"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", w.Code, w.Body.String())
	}
	var resp askResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Question != "what is Go?" {
		t.Errorf("question: got %q", resp.Question)
	}
	if resp.Answer != "a language" {
		t.Errorf("answer: got %q", resp.Answer)
	}
	if fake.gotQuestion != "what is Go?" {
		t.Errorf("service received %q", fake.gotQuestion)
	}
}

// TestHandleAsk_MalformedBody verifies that invalid JSON is rejected with 400
// before the answer service is called.
func TestHandleAsk_MalformedBody(t *testing.T) {
	t.Parallel()

	fake := &fakeAnswerer{}
	s := newTestServerWith(fake)

	w := postAsk(s, `{"question": `)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if fake.calls != 0 {
		t.Errorf("answer service called %d times for malformed body", fake.calls)
	}
}

// TestHandleAsk_ErrorMapping verifies the error taxonomy maps onto the
// documented HTTP status codes.
func TestHandleAsk_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", rag.ErrInvalidInput, http.StatusBadRequest},
		{"upstream timeout", rag.ErrUpstreamTimeout, http.StatusGatewayTimeout},
		{"upstream unavailable", rag.ErrUpstreamUnavailable, http.StatusBadGateway},
		{"unclassified", errors.New("surprise"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServerWith(&fakeAnswerer{err: tc.err})

			w := postAsk(s, `{"question": "hello"}`)

			if w.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d — body: %s", tc.wantStatus, w.Code, w.Body.String())
			}
			var resp errorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Error == "" {
				t.Error("expected non-empty error message")
			}
		})
	}
}

// TestHandleAsk_MethodNotAllowed verifies GET /ask is rejected by the mux.
func TestHandleAsk_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/ask", nil)
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// CORS
// ---------------------------------------------------------------------------

// TestCORS_EchoesOriginWithCredentials verifies a cross-origin response
// echoes the caller's origin and allows credentials, since "*" is rejected
// by browsers on credentialed requests.
func TestCORS_EchoesOriginWithCredentials(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Errorf("Access-Control-Allow-Origin: got %q, want the request origin", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials: got %q, want true", got)
	}
	if got := w.Header().Values("Vary"); !slices.Contains(got, "Origin") {
		t.Errorf("Vary: got %v, want Origin included", got)
	}
}

// TestCORS_WildcardWithoutOrigin verifies non-browser requests, which carry
// no Origin header, still get the wildcard.
func TestCORS_WildcardWithoutOrigin(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin: got %q, want *", got)
	}
}

// TestCORS_PreflightReflectsRequest verifies a preflight for an arbitrary
// method and custom header is granted by reflection, not from a fixed list.
func TestCORS_PreflightReflectsRequest(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	req.Header.Set("Access-Control-Request-Headers", "X-Custom-Header")
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodDelete) {
		t.Errorf("Access-Control-Allow-Methods: got %q, want %q reflected", got, http.MethodDelete)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "X-Custom-Header") {
		t.Errorf("Access-Control-Allow-Headers: got %q, want X-Custom-Header reflected", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials: got %q, want true", got)
	}
}

// TestCORS_PreflightDefaultsToAny verifies a preflight that names no method
// or headers is granted everything.
func TestCORS_PreflightDefaultsToAny(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "*" {
		t.Errorf("Access-Control-Allow-Methods: got %q, want *", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "*" {
		t.Errorf("Access-Control-Allow-Headers: got %q, want *", got)
	}
}
