// Package rag defines the domain types and contracts for the Q&A
// retrieval pipeline: embedding, vector storage, and prompt assembly.
// Concrete implementations (Qdrant, the HTTP embedders) satisfy these
// interfaces so the answer service never depends on a specific backend.
package rag

import (
	"context"
)

// Record is a question/answer pair as read from the ingestion input file.
type Record struct {
	// Question is the text that gets embedded and matched against.
	Question string `json:"question"`

	// Answer is the canonical answer stored alongside the question.
	Answer string `json:"answer"`
}

// Metadata is the payload stored with every vector entry and returned with
// every query match. Both fields are optional on the read path — older
// writers may have omitted one — so consumers must substitute placeholders
// rather than fail.
type Metadata struct {
	// Question is the stored question text, if present.
	Question *string

	// Answer is the stored answer text, if present.
	Answer *string
}

// Entry is the unit of storage: an id, its embedding, and the Q/A metadata.
type Entry struct {
	// ID is the unique identifier for this entry, generated at ingestion time.
	ID string

	// Vector is the embedding of the entry's question.
	Vector []float32

	// Metadata carries the question and answer texts.
	Metadata Metadata
}

// Match is a single similarity-query result. Matches are ordered by
// descending similarity; Score is the store's similarity value.
type Match struct {
	// ID is the matched entry's identifier.
	ID string

	// Score is the similarity score assigned by the store.
	Score float32

	// Metadata carries the matched question and answer, either of which
	// may be absent.
	Metadata Metadata
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore is the interface for persisting and searching Q/A embeddings.
// A namespace is a logical partition within the store's index; entries in
// one namespace are invisible to queries against another.
// Implementations must be safe to call from multiple goroutines.
type VectorStore interface {
	// Upsert stores or overwrites the given entries in the namespace.
	Upsert(ctx context.Context, namespace string, entries []Entry) error

	// Query returns up to topK entries in the namespace nearest to vector,
	// ordered by descending similarity. An empty namespace yields an empty
	// result, not an error.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
