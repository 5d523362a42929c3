package rag

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// namespaceField is the payload key that partitions entries within the
// collection. Queries always filter on it, so entries in one namespace are
// invisible to queries against another.
const namespaceField = "namespace"

// Payload keys for the stored Q/A metadata.
const (
	questionField = "question"
	answerField   = "answer"
)

// QdrantConfig holds connection parameters for a Qdrant vector store instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the Qdrant collection acting as the index.
	Collection string

	// VectorSize is the dimensionality of the embeddings stored in this collection.
	VectorSize uint64

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantStore implements VectorStore backed by a Qdrant instance. Namespaces
// are realised as a keyword payload field inside a single collection, so one
// collection serves every namespace under the same index name.
type QdrantStore struct {
	client *qdrant.Client
	cfg    *QdrantConfig
}

// NewQdrantStore creates a new QdrantStore, ensuring the target collection
// exists (creating it if necessary), and returns a ready-to-use VectorStore.
func NewQdrantStore(ctx context.Context, cfg *QdrantConfig) (*QdrantStore, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("%w: qdrant collection name must not be empty", ErrConfiguration)
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	store := &QdrantStore{client: client, cfg: cfg}
	if err := store.ensureCollection(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the Qdrant collection if it does not already exist.
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("%w: qdrant collection check: %v", ErrUpstreamUnavailable, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: qdrant create collection %q: %v", ErrUpstreamUnavailable, s.cfg.Collection, err)
	}

	return nil
}

// Upsert stores or overwrites the given entries in the namespace. Each
// entry's vector must be pre-computed; this method never calls the Embedder.
func (s *QdrantStore) Upsert(ctx context.Context, namespace string, entries []Entry) error {
	points := make([]*qdrant.PointStruct, 0, len(entries))
	for _, e := range entries {
		payload := map[string]interface{}{
			namespaceField: namespace,
		}
		if e.Metadata.Question != nil {
			payload[questionField] = *e.Metadata.Question
		}
		if e.Metadata.Answer != nil {
			payload[answerField] = *e.Metadata.Answer
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(e.ID),
			Vectors: qdrant.NewVectors(e.Vector...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.Collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("%w: qdrant upsert: %v", ErrUpstreamUnavailable, err)
	}

	return nil
}

// Query performs a cosine similarity search within the namespace and returns
// the top-k results, best match first. Raw vectors are not requested — only
// the payload is needed downstream.
func (s *QdrantStore) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error) {
	limit := uint64(topK)
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(namespaceField, namespace),
			},
		},
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant query: %v", ErrUpstreamUnavailable, err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		m := Match{
			ID:    r.Id.GetUuid(),
			Score: r.Score,
		}
		if p := r.Payload; p != nil {
			if v, ok := p[questionField]; ok {
				q := v.GetStringValue()
				m.Metadata.Question = &q
			}
			if v, ok := p[answerField]; ok {
				a := v.GetStringValue()
				m.Metadata.Answer = &a
			}
		}
		matches = append(matches, m)
	}

	return matches, nil
}

// Ping calls the Qdrant HealthCheck RPC.
func (s *QdrantStore) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: qdrant health check: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}
