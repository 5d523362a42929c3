package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seniordev0204/chatbot-go/internal/rag"
)

// newFakeOpenAI starts an httptest server that mimics the OpenAI embeddings
// endpoint, returning one fixed vector per input in reverse index order to
// exercise the index-based reassembly.
func newFakeOpenAI(t *testing.T, status int, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	if handler == nil {
		handler = func(w http.ResponseWriter, r *http.Request) {
			var req openaiEmbedRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			resp := openaiEmbedResponse{}
			for i := len(req.Input) - 1; i >= 0; i-- {
				resp.Data = append(resp.Data, struct {
					Embedding []float32 `json:"embedding"`
					Index     int       `json:"index"`
				}{Embedding: []float32{float32(i), 1}, Index: i})
			}
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(resp)
		}
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIEmbedder_ReordersByIndex(t *testing.T) {
	t.Parallel()

	srv := newFakeOpenAI(t, http.StatusOK, nil)
	e := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: srv.URL, APIKey: "k", Model: "text-embedding-ada-002"})

	got, err := e.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 embeddings, got %d", len(got))
	}
	for i, v := range got {
		if v[0] != float32(i) {
			t.Errorf("embedding %d not placed by index: got %v", i, v)
		}
	}
}

func TestOpenAIEmbedder_AuthFailureIsUpstream(t *testing.T) {
	t.Parallel()

	srv := newFakeOpenAI(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	})
	e := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: srv.URL, APIKey: "wrong", Model: "m"})

	_, err := e.Embed(context.Background(), []string{"a"})
	if !errors.Is(err, rag.ErrUpstreamUnavailable) {
		t.Errorf("401 should surface as ErrUpstreamUnavailable, got %v", err)
	}
}

func TestOpenAIEmbedder_BadRequestIsInvalidInput(t *testing.T) {
	t.Parallel()

	srv := newFakeOpenAI(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"input is empty"}}`))
	})
	e := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"})

	_, err := e.Embed(context.Background(), []string{""})
	if !errors.Is(err, rag.ErrInvalidInput) {
		t.Errorf("400 should surface as ErrInvalidInput, got %v", err)
	}
}

func TestOpenAIEmbedder_NonJSONErrorBody(t *testing.T) {
	t.Parallel()

	// Proxies and gateways answer with HTML pages; the status code still
	// decides the classification.
	srv := newFakeOpenAI(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("<html><body>Bad Request</body></html>"))
	})
	e := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"})

	_, err := e.Embed(context.Background(), []string{"a"})
	if !errors.Is(err, rag.ErrInvalidInput) {
		t.Errorf("400 with non-JSON body should surface as ErrInvalidInput, got %v", err)
	}

	srv2 := newFakeOpenAI(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html><body>502 Bad Gateway</body></html>"))
	})
	e2 := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: srv2.URL, APIKey: "k", Model: "m"})

	_, err = e2.Embed(context.Background(), []string{"a"})
	if !errors.Is(err, rag.ErrUpstreamUnavailable) {
		t.Errorf("502 with non-JSON body should surface as ErrUpstreamUnavailable, got %v", err)
	}
}

func TestOpenAIEmbedder_CountMismatchRejected(t *testing.T) {
	t.Parallel()

	srv := newFakeOpenAI(t, 0, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1],"index":0}]}`))
	})
	e := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"})

	_, err := e.Embed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, rag.ErrUpstreamUnavailable) {
		t.Errorf("short response should surface as ErrUpstreamUnavailable, got %v", err)
	}
}

func TestOpenAIEmbedder_UnreachableHost(t *testing.T) {
	t.Parallel()

	e := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: "http://127.0.0.1:1", APIKey: "k", Model: "m"})

	_, err := e.Embed(context.Background(), []string{"a"})
	if !errors.Is(err, rag.ErrUpstreamUnavailable) {
		t.Errorf("connection failure should surface as ErrUpstreamUnavailable, got %v", err)
	}
}
