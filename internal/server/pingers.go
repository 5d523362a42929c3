package server

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/seniordev0204/chatbot-go/internal/rag"
)

// StorePinger probes the vector store through its Ping method. It satisfies
// the Pinger interface and is used by GET /api/ready.
type StorePinger struct {
	// store is the vector store to probe.
	store rag.VectorStore
}

// NewStorePinger constructs a StorePinger for the given vector store.
func NewStorePinger(s rag.VectorStore) *StorePinger {
	return &StorePinger{store: s}
}

// Name returns the dependency label used in readiness responses.
func (p *StorePinger) Name() string { return "qdrant" }

// Ping delegates to the store's native health check.
func (p *StorePinger) Ping(ctx context.Context) error {
	if err := p.store.Ping(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// LLMPinger probes an LLM backend by sending a minimal generate request.
// It satisfies the Pinger interface and is used by GET /api/ready.
// Each probe consumes a handful of tokens, so /api/ready should not be
// polled aggressively when this pinger is registered.
type LLMPinger struct {
	// model is the chat model to probe.
	model model.ToolCallingChatModel
	// name identifies the backend in readiness responses (e.g. "openai").
	name string
}

// NewLLMPinger constructs an LLMPinger for the given model and backend name.
func NewLLMPinger(m model.ToolCallingChatModel, name string) *LLMPinger {
	return &LLMPinger{model: m, name: name}
}

// Name returns the backend label used in readiness responses.
func (p *LLMPinger) Name() string { return p.name }

// Ping sends a single-word generate request to the backend.
func (p *LLMPinger) Ping(ctx context.Context) error {
	msgs := []*schema.Message{
		schema.UserMessage("ping"),
	}
	resp, err := p.model.Generate(ctx, msgs)
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}
	if resp == nil {
		return fmt.Errorf("generate returned nil response")
	}
	return nil
}
