package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/seniordev0204/chatbot-go/internal/ingestion"
	"github.com/seniordev0204/chatbot-go/internal/logging"
)

// NewIngestCmd constructs the `askbot ingest` command, which loads Q/A
// records from a JSON file into the vector store.
func NewIngestCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load question/answer records into the vector store",
		Long: `Embed and index question/answer records into the Qdrant vector store.

The input file must contain a JSON array of objects with "question" and
"answer" fields. Every record gets a freshly generated UUID, so re-running
the command adds new vectors rather than overwriting earlier runs.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: home-task-chatbot)
  QA_NAMESPACE         Payload partition for the records (default: home-task-namespace)
  QDRANT_API_KEY       Optional API key for authenticated clusters
  EMBEDDING_PROVIDER   Embedding backend: openai, azure, ollama (default: openai)
  EMBEDDING_*          Provider-specific overrides (see README)

Examples:
  askbot ingest --file questions.json
  QA_NAMESPACE=staging askbot ingest --file fixtures/faq.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			records, err := ingestion.LoadRecords(file)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			log.Info("records loaded", slog.String("file", file), slog.Int("count", len(records)))

			emb, err := newEmbedder(log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			vectorStore, err := newVectorStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer vectorStore.Close()

			pipeline, err := ingestion.NewPipeline(emb, vectorStore, namespace())
			if err != nil {
				return fmt.Errorf("ingest: failed to create pipeline: %w", err)
			}

			log.Info("starting ingestion",
				slog.Int("records", len(records)),
				slog.String("namespace", namespace()),
			)

			if err := pipeline.Ingest(ctx, records, func(msg string) {
				log.Info(msg)
			}); err != nil {
				return fmt.Errorf("ingest: pipeline failed: %w", err)
			}

			log.Info("ingestion complete", slog.Int("records", len(records)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the JSON records file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
