package rag

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the failure taxonomy of the pipeline. Callers
// classify failures with errors.Is; concrete clients wrap these with
// backend-specific detail.
var (
	// ErrInvalidInput marks a caller-supplied question or record that is
	// empty or malformed. The HTTP layer maps it to 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable marks an embedding, vector-store, or generation
	// provider that is unreachable, rate-limited, or erroring. The HTTP
	// layer maps it to 502.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUpstreamTimeout marks an upstream call that exceeded its deadline.
	// The HTTP layer maps it to 504.
	ErrUpstreamTimeout = errors.New("upstream timeout")

	// ErrConfiguration marks missing credentials or index settings detected
	// at startup. Startup aborts rather than proceeding with nil clients.
	ErrConfiguration = errors.New("configuration error")
)

// IngestionError reports the position of the record that failed during a
// batch load. Records before Index were ingested successfully and remain in
// the store — the vector store offers no transaction semantics to roll them
// back.
type IngestionError struct {
	// Index is the zero-based position of the failed record.
	Index int

	// Err is the underlying embedding or upsert failure.
	Err error
}

// Error implements the error interface.
func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed at record %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying failure so errors.Is sees through to the
// upstream sentinel.
func (e *IngestionError) Unwrap() error {
	return e.Err
}
