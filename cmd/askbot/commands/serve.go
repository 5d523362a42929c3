package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/seniordev0204/chatbot-go/internal/answer"
	"github.com/seniordev0204/chatbot-go/internal/logging"
	"github.com/seniordev0204/chatbot-go/internal/provider"
	"github.com/seniordev0204/chatbot-go/internal/server"
	"github.com/seniordev0204/chatbot-go/internal/tracing"
)

// NewServeCmd constructs the `askbot serve` command, which starts the HTTP
// API server.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the askbot HTTP API server",
		Long: `Start the askbot HTTP server on localhost.

The server exposes POST /ask for question answering, plus health, readiness,
history, and Prometheus metrics endpoints.

Examples:
  askbot serve
  askbot serve --port 9090
  MODEL_PROVIDER=azure askbot serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			providerCfg := provider.ConfigFromEnv()
			chatModel, err := provider.New(ctx, providerCfg)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}
			log.Info("provider initialised", slog.String("provider", string(providerCfg.Backend)))

			emb, err := newEmbedder(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			vectorStore, err := newVectorStore(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer vectorStore.Close()

			historyStore, closeHistory := openHistory(log)
			defer closeHistory()

			svc, err := answer.New(&answer.Config{
				Embedder:  emb,
				Store:     vectorStore,
				ChatModel: chatModel,
				Namespace: namespace(),
				History:   historyStore,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to initialise answer service: %w", err)
			}

			pingers := []server.Pinger{
				server.NewStorePinger(vectorStore),
				server.NewLLMPinger(chatModel, string(providerCfg.Backend)),
			}

			srv, err := server.New(svc, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				APIKey:  os.Getenv("ASKBOT_API_KEY"),
				History: historyStore,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
