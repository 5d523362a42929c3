// Package ingestion implements the one-shot knowledge-base loading pipeline.
// It reads question/answer records from a JSON file, embeds each question,
// and upserts the resulting vectors (with the pair stored as payload) into
// the vector store. The pipeline is invoked by the `askbot ingest` CLI
// command.
package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/seniordev0204/chatbot-go/internal/rag"
)

// LoadRecords reads question/answer records from a JSON file. The file must
// contain a top-level array of objects with "question" and "answer" fields.
// Records with an empty or whitespace-only question or answer are rejected
// up front, before any upstream call is made.
func LoadRecords(path string) ([]rag.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingestion: reading %s: %w", path, err)
	}

	var records []rag.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: ingestion: parsing %s: %v", rag.ErrInvalidInput, path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: ingestion: %s contains no records", rag.ErrInvalidInput, path)
	}

	for i, r := range records {
		if strings.TrimSpace(r.Question) == "" {
			return nil, fmt.Errorf("%w: ingestion: record %d has an empty question", rag.ErrInvalidInput, i)
		}
		if strings.TrimSpace(r.Answer) == "" {
			return nil, fmt.Errorf("%w: ingestion: record %d has an empty answer", rag.ErrInvalidInput, i)
		}
	}

	return records, nil
}
