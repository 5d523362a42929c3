package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/seniordev0204/chatbot-go/internal/embedder"
	"github.com/seniordev0204/chatbot-go/internal/rag"
	"github.com/seniordev0204/chatbot-go/internal/store"
)

// Default knowledge-base location when no QDRANT_COLLECTION / QA_NAMESPACE
// overrides are given.
const (
	defaultCollection = "home-task-chatbot"
	defaultNamespace  = "home-task-namespace"
)

// newEmbedder validates the embedding configuration and constructs the
// embedder selected by EMBEDDING_PROVIDER.
func newEmbedder(log *slog.Logger) (rag.Embedder, error) {
	if err := embedder.Validate(log); err != nil {
		return nil, err
	}
	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}
	log.Info("embedder initialised", slog.String("provider", embedder.Backend()))
	return emb, nil
}

// newVectorStore connects to Qdrant using the QDRANT_* environment variables
// and ensures the collection exists with the embedder's vector size.
func newVectorStore(ctx context.Context, log *slog.Logger) (*rag.QdrantStore, error) {
	host := getEnvOrDefault("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnvOrDefault("QDRANT_COLLECTION", defaultCollection)
	vectorSize := uint64(embedder.DefaultDimensions(embedder.Backend())) //nolint:gosec // dimensions are bounded

	qs, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
		Host:       host,
		Port:       port,
		Collection: collection,
		VectorSize: vectorSize,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
	}
	log.Info("qdrant store ready",
		slog.String("host", host),
		slog.Int("port", port),
		slog.String("collection", collection),
	)
	return qs, nil
}

// namespace returns the payload partition used for Q/A pairs.
func namespace() string {
	return getEnvOrDefault("QA_NAMESPACE", defaultNamespace)
}

// openHistory opens the exchange history store. ASKBOT_HISTORY_DB overrides
// the default path (~/.askbot/history.db); set to "disabled" to turn
// persistence off. Failures disable history rather than aborting startup.
func openHistory(log *slog.Logger) (store.ExchangeStore, func()) {
	dbPath := os.Getenv("ASKBOT_HISTORY_DB")
	if dbPath == "disabled" {
		log.Info("history: disabled via ASKBOT_HISTORY_DB=disabled")
		return nil, func() {}
	}
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil, func() {}
		}
		dbPath = p
	}

	hs, err := store.Open(dbPath)
	if err != nil {
		log.Warn("history: failed to open store, disabling", slog.Any("error", err))
		return nil, func() {}
	}
	log.Info("history: store opened", slog.String("path", dbPath))
	return hs, func() { _ = hs.Close() }
}

// getEnvOrDefault returns the env var value or fallback when unset.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the env var parsed as int, or fallback when unset or
// unparsable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
