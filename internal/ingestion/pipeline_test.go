package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/seniordev0204/chatbot-go/internal/rag"
)

// ─── fakes ──────────────────────────────────────────────────────────────────

type fakeEmbedder struct {
	calls  int
	failAt int // fail on the Nth call (1-based); 0 means never
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return nil, errors.New("embedder down")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.5}
	}
	return out, nil
}

type fakeVectorStore struct {
	upserts []rag.Entry
	failAt  int // fail on the Nth Upsert call (1-based); 0 means never
	calls   int
}

func (f *fakeVectorStore) Upsert(_ context.Context, _ string, entries []rag.Entry) error {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return errors.New("store down")
	}
	f.upserts = append(f.upserts, entries...)
	return nil
}

func (f *fakeVectorStore) Query(_ context.Context, _ string, _ []float32, _ int) ([]rag.Match, error) {
	return nil, errors.New("unexpected query")
}

func (f *fakeVectorStore) Ping(_ context.Context) error { return nil }
func (f *fakeVectorStore) Close() error                 { return nil }

func records(n int) []rag.Record {
	out := make([]rag.Record, n)
	for i := range out {
		out[i] = rag.Record{Question: "q", Answer: "a"}
	}
	return out
}

// ─── pipeline tests ─────────────────────────────────────────────────────────

func Test_Ingest_EveryRecordGetsDistinctID(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{}
	vs := &fakeVectorStore{}
	p, err := NewPipeline(emb, vs, "ns")
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	if err := p.Ingest(context.Background(), records(5), nil); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(vs.upserts) != 5 {
		t.Fatalf("want 5 upserted entries, got %d", len(vs.upserts))
	}
	seen := make(map[string]bool)
	for _, e := range vs.upserts {
		if e.ID == "" {
			t.Error("entry has empty id")
		}
		if seen[e.ID] {
			t.Errorf("duplicate id %s", e.ID)
		}
		seen[e.ID] = true
	}
}

func Test_Ingest_ReIngestionProducesNewIDs(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{}
	vs := &fakeVectorStore{}
	p, err := NewPipeline(emb, vs, "ns")
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	recs := records(3)
	if err := p.Ingest(context.Background(), recs, nil); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	if err := p.Ingest(context.Background(), recs, nil); err != nil {
		t.Fatalf("second Ingest: %v", err)
	}

	if len(vs.upserts) != 6 {
		t.Fatalf("want 6 entries after double ingest, got %d", len(vs.upserts))
	}
	seen := make(map[string]bool)
	for _, e := range vs.upserts {
		if seen[e.ID] {
			t.Errorf("re-ingestion reused id %s", e.ID)
		}
		seen[e.ID] = true
	}
}

func Test_Ingest_StoresQuestionAndAnswerAsPayload(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{}
	vs := &fakeVectorStore{}
	p, _ := NewPipeline(emb, vs, "ns")

	recs := []rag.Record{{Question: "what is Go?", Answer: "a language"}}
	if err := p.Ingest(context.Background(), recs, nil); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	got := vs.upserts[0].Metadata
	if got.Question == nil || *got.Question != "what is Go?" {
		t.Errorf("question payload: %v", got.Question)
	}
	if got.Answer == nil || *got.Answer != "a language" {
		t.Errorf("answer payload: %v", got.Answer)
	}
}

func Test_Ingest_FailureStopsAndReportsIndex(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{failAt: 3} // third record's embedding fails
	vs := &fakeVectorStore{}
	p, _ := NewPipeline(emb, vs, "ns")

	err := p.Ingest(context.Background(), records(5), nil)
	var ierr *rag.IngestionError
	if !errors.As(err, &ierr) {
		t.Fatalf("want *rag.IngestionError, got %v", err)
	}
	if ierr.Index != 2 {
		t.Errorf("failing index: got %d, want 2", ierr.Index)
	}
	// Records before the failure stay persisted; none after it are attempted.
	if len(vs.upserts) != 2 {
		t.Errorf("want 2 persisted entries, got %d", len(vs.upserts))
	}
}

func Test_Ingest_UpsertFailureReportsIndex(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{}
	vs := &fakeVectorStore{failAt: 1}
	p, _ := NewPipeline(emb, vs, "ns")

	err := p.Ingest(context.Background(), records(2), nil)
	var ierr *rag.IngestionError
	if !errors.As(err, &ierr) {
		t.Fatalf("want *rag.IngestionError, got %v", err)
	}
	if ierr.Index != 0 {
		t.Errorf("failing index: got %d, want 0", ierr.Index)
	}
}

// ─── record loading tests ───────────────────────────────────────────────────

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func Test_LoadRecords_Valid(t *testing.T) {
	t.Parallel()
	path := writeTempJSON(t, `[
		{"question": "q1", "answer": "a1"},
		{"question": "q2", "answer": "a2"}
	]`)

	recs, err := LoadRecords(path)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(recs) != 2 || recs[0].Question != "q1" || recs[1].Answer != "a2" {
		t.Errorf("unexpected records: %+v", recs)
	}
}

func Test_LoadRecords_RejectsEmptyFields(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		body string
	}{
		{"empty question", `[{"question": "", "answer": "a"}]`},
		{"whitespace question", `[{"question": "  ", "answer": "a"}]`},
		{"empty answer", `[{"question": "q", "answer": ""}]`},
		{"empty array", `[]`},
		{"malformed json", `{"not": "an array"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeTempJSON(t, tc.body)
			if _, err := LoadRecords(path); !errors.Is(err, rag.ErrInvalidInput) {
				t.Errorf("want ErrInvalidInput, got %v", err)
			}
		})
	}
}

func Test_LoadRecords_MissingFile(t *testing.T) {
	t.Parallel()
	if _, err := LoadRecords(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("want error for missing file, got nil")
	}
}
