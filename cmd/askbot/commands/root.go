// Package commands defines all Cobra CLI commands for the askbot binary.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seniordev0204/chatbot-go/internal/audit"
	"github.com/seniordev0204/chatbot-go/internal/config"
	"github.com/seniordev0204/chatbot-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "askbot",
		Short: "askbot — a retrieval-augmented Q/A chatbot service",
		Long: `askbot answers questions using a knowledge base of question/answer pairs
stored in a Qdrant vector database.

Each question is embedded, matched against the most similar stored pairs,
and answered by an LLM that receives those pairs as context.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.askbot/config.yaml).
See 'askbot --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Load .env first so its values participate in the env layer.
			// A missing file is not an error.
			_ = godotenv.Load()

			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.askbot/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewServeCmd(),
		NewIngestCmd(),
		NewVersionCmd(),
	)

	return root
}
