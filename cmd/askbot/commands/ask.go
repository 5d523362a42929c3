package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seniordev0204/chatbot-go/internal/answer"
	"github.com/seniordev0204/chatbot-go/internal/logging"
	"github.com/seniordev0204/chatbot-go/internal/provider"
)

// NewAskCmd constructs the `askbot ask` command, which answers a single
// question from the command line and prints the reply to stdout.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the chatbot a question",
		Long: `Ask a single question against the stored knowledge base.

The question is embedded, matched against the most similar stored Q/A pairs,
and answered by the configured LLM using those pairs as context.

Examples:
  askbot ask "what is your return policy?"
  askbot ask what payment methods do you accept`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			emb, err := newEmbedder(log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			vectorStore, err := newVectorStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer vectorStore.Close()

			svc, err := answer.New(&answer.Config{
				Embedder:  emb,
				Store:     vectorStore,
				ChatModel: chatModel,
				Namespace: namespace(),
			})
			if err != nil {
				return fmt.Errorf("ask: failed to initialise answer service: %w", err)
			}

			resp, err := svc.Answer(ctx, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			fmt.Println(resp.Answer)
			return nil
		},
	}

	return cmd
}
