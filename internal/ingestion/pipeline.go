package ingestion

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/seniordev0204/chatbot-go/internal/rag"
)

// Pipeline orchestrates the embed → upsert flow for a set of Q/A records.
type Pipeline struct {
	// embedder converts question text into dense vector embeddings.
	embedder rag.Embedder

	// store persists the embedded records.
	store rag.VectorStore

	// namespace is the vector store partition the records land in.
	namespace string
}

// NewPipeline constructs a Pipeline from the provided dependencies.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, namespace string) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	if namespace == "" {
		return nil, fmt.Errorf("%w: ingestion: namespace must not be empty", rag.ErrConfiguration)
	}
	return &Pipeline{embedder: embedder, store: store, namespace: namespace}, nil
}

// Ingest embeds and stores all records sequentially, in input order. Each
// record gets a freshly generated UUID, so re-running the pipeline over the
// same file produces new vectors rather than overwriting the previous run.
//
// Processing stops at the first failure: records before the failing one are
// already persisted and stay persisted, records after it are never attempted.
// The returned error is a *rag.IngestionError carrying the zero-based index
// of the record that failed. Progress is reported via the optional progress
// callback.
func (p *Pipeline) Ingest(ctx context.Context, records []rag.Record, progress func(msg string)) error {
	if progress == nil {
		progress = func(string) {}
	}

	for i, rec := range records {
		vectors, err := p.embedder.Embed(ctx, []string{rec.Question})
		if err != nil {
			return &rag.IngestionError{Index: i, Err: fmt.Errorf("embedding question: %w", err)}
		}
		if len(vectors) == 0 {
			return &rag.IngestionError{Index: i, Err: fmt.Errorf("%w: embedder returned no vector", rag.ErrUpstreamUnavailable)}
		}

		q, a := rec.Question, rec.Answer
		entry := rag.Entry{
			ID:     uuid.NewString(),
			Vector: vectors[0],
			Metadata: rag.Metadata{
				Question: &q,
				Answer:   &a,
			},
		}

		if err := p.store.Upsert(ctx, p.namespace, []rag.Entry{entry}); err != nil {
			return &rag.IngestionError{Index: i, Err: fmt.Errorf("upserting vector: %w", err)}
		}

		progress(fmt.Sprintf("ingested record %d/%d (id %s)", i+1, len(records), entry.ID))
	}

	return nil
}
