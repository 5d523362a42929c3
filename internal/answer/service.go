// Package answer implements the question-answering service: it embeds the
// incoming question, retrieves the most similar stored Q/A pairs from the
// vector store, assembles the generation prompt, and asks the chat model for
// the final answer. The three upstream calls are strictly sequential — each
// depends on the previous result — and every call runs under a bounded
// per-call timeout.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/seniordev0204/chatbot-go/internal/budget"
	"github.com/seniordev0204/chatbot-go/internal/logging"
	"github.com/seniordev0204/chatbot-go/internal/rag"
	"github.com/seniordev0204/chatbot-go/internal/store"
)

// defaultTopK is the number of similar Q/A pairs retrieved per question.
const defaultTopK = 4

// defaultCallTimeout bounds each individual upstream call (embed, query,
// generate). Expiry surfaces as rag.ErrUpstreamTimeout.
const defaultCallTimeout = 30 * time.Second

// generator is the interface Answer calls to produce the final reply.
// Any eino chat model satisfies it; tests inject a fake.
type generator interface {
	// Generate sends the message list to the model and returns its reply.
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Response is the caller-visible result of one answered question.
type Response struct {
	// Question is the original question text, echoed back verbatim.
	Question string `json:"question"`

	// Answer is the generated answer text.
	Answer string `json:"answer"`
}

// Config holds the dependencies required to construct a Service.
type Config struct {
	// Embedder converts the question into its embedding.
	Embedder rag.Embedder

	// Store performs the similarity search.
	Store rag.VectorStore

	// ChatModel is the LLM backend constructed by the provider factory.
	ChatModel model.ToolCallingChatModel

	// Namespace is the vector store partition queried for context.
	Namespace string

	// TopK is the number of similar pairs retrieved per question.
	// Defaults to 4 if zero.
	TopK int

	// CallTimeout bounds each upstream call. Defaults to 30s if zero.
	CallTimeout time.Duration

	// History is the optional exchange log. If nil, answered questions are
	// not recorded. Log failures never fail the request.
	History store.ExchangeStore

	// MaxPromptTokens is the estimated token budget for the assembled
	// prompt. Lowest-ranked matches are dropped to fit. Defaults to
	// budget.DefaultMaxPromptTokens if zero.
	MaxPromptTokens int
}

// Service answers questions using retrieval-augmented generation. It holds
// no per-request state: every Answer call is independent, with no memory of
// prior questions.
type Service struct {
	embedder  rag.Embedder
	store     rag.VectorStore
	generator generator

	namespace       string
	topK            int
	callTimeout     time.Duration
	history         store.ExchangeStore
	maxPromptTokens int
}

// New constructs a Service from the provided Config.
func New(cfg *Config) (*Service, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("answer: embedder must not be nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("answer: store must not be nil")
	}
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("answer: chat model must not be nil")
	}
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("%w: answer: namespace must not be empty", rag.ErrConfiguration)
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	maxTokens := cfg.MaxPromptTokens
	if maxTokens <= 0 {
		maxTokens = budget.DefaultMaxPromptTokens
	}

	return &Service{
		embedder:        cfg.Embedder,
		store:           cfg.Store,
		generator:       cfg.ChatModel,
		namespace:       cfg.Namespace,
		topK:            topK,
		callTimeout:     timeout,
		history:         cfg.History,
		maxPromptTokens: maxTokens,
	}, nil
}

// Answer runs the full retrieve-then-generate pipeline for one question.
// An empty question fails with rag.ErrInvalidInput before any upstream call.
// Any upstream failure aborts the request — there is no partial-result
// fallback, and retrieval failure means the generator is never invoked.
func (s *Service) Answer(ctx context.Context, question string) (*Response, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", rag.ErrInvalidInput)
	}

	log := logging.FromContext(ctx)

	vector, err := s.embed(ctx, question)
	if err != nil {
		return nil, err
	}

	matches, err := s.retrieve(ctx, vector)
	if err != nil {
		return nil, err
	}
	log.Debug("retrieved context", slog.Int("matches", len(matches)))

	before := len(matches)
	matches = budget.TrimMatches(matches, question, s.maxPromptTokens)
	if dropped := before - len(matches); dropped > 0 {
		log.Warn("budget: dropped lowest-ranked matches to fit prompt budget",
			slog.Int("dropped", dropped),
			slog.Int("retained", len(matches)),
			slog.Int("max_tokens", s.maxPromptTokens),
		)
	}

	prompt := rag.BuildPrompt(matches, question)

	answerText, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if s.history != nil {
		if err := s.history.Append(ctx, question, answerText); err != nil {
			log.Warn("history: failed to record exchange", slog.Any("error", err))
		}
	}

	return &Response{Question: question, Answer: answerText}, nil
}

// embed converts the question into its embedding under the call timeout.
func (s *Service) embed(ctx context.Context, question string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	vectors, err := s.embedder.Embed(callCtx, []string{question})
	if err != nil {
		return nil, classify(err, "embedding question")
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: embedder returned no vector for question", rag.ErrUpstreamUnavailable)
	}
	return vectors[0], nil
}

// retrieve queries the vector store for the nearest stored pairs.
func (s *Service) retrieve(ctx context.Context, vector []float32) ([]rag.Match, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	matches, err := s.store.Query(callCtx, s.namespace, vector, s.topK)
	if err != nil {
		return nil, classify(err, "querying vector store")
	}
	return matches, nil
}

// generate sends the two-message conversation (system role + assembled
// prompt) to the chat model and returns the reply text.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	msgs := []*schema.Message{
		schema.SystemMessage(rag.SystemPrompt),
		schema.UserMessage(prompt),
	}

	reply, err := s.generator.Generate(callCtx, msgs)
	if err != nil {
		return "", classify(err, "generating answer")
	}
	if reply == nil {
		return "", fmt.Errorf("%w: generation returned nil message", rag.ErrUpstreamUnavailable)
	}
	return reply.Content, nil
}

// classify maps an upstream failure onto the error taxonomy. Errors already
// carrying a taxonomy sentinel pass through unchanged; deadline expiry
// becomes ErrUpstreamTimeout; everything else becomes ErrUpstreamUnavailable.
func classify(err error, op string) error {
	switch {
	case errors.Is(err, rag.ErrInvalidInput),
		errors.Is(err, rag.ErrUpstreamUnavailable),
		errors.Is(err, rag.ErrUpstreamTimeout):
		return fmt.Errorf("answer: %s: %w", op, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: answer: %s: %v", rag.ErrUpstreamTimeout, op, err)
	default:
		return fmt.Errorf("%w: answer: %s: %v", rag.ErrUpstreamUnavailable, op, err)
	}
}
