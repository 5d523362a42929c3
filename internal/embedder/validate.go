package embedder

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/seniordev0204/chatbot-go/internal/rag"
)

// knownChatModelFragments contains name fragments that identify
// chat/completion models which are NOT suitable for embedding. If
// EMBEDDING_MODEL matches any of these, a warning is emitted so the operator
// knows they may have misconfigured the pipeline.
var knownChatModelFragments = []string{
	"gpt-4",
	"gpt-3.5",
	"gpt-35",
	"o1",
	"o3",
	"llama3",
	"llama2",
	"llama-3",
	"llama-2",
	"mistral",
	"mixtral",
	"gemma",
	"claude",
	"deepseek",
	"qwen",
}

// looksLikeChatModel returns true when the model name resembles a known
// chat/completion model rather than a dedicated embedding model.
func looksLikeChatModel(model string) bool {
	lower := strings.ToLower(model)
	for _, fragment := range knownChatModelFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Validate checks that the embedding configuration resolvable from the
// environment is usable, without constructing a client or issuing a request.
// Call it at startup so operators get a clear rag.ErrConfiguration rather
// than a cryptic failure on the first embed call. It also warns when
// EMBEDDING_MODEL looks like a chat model.
func Validate(log *slog.Logger) error {
	switch backend := Backend(); backend {
	case "openai":
		if os.Getenv("EMBEDDING_API_KEY") == "" && os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("%w: embedder: no OpenAI API key found — set OPENAI_API_KEY or EMBEDDING_API_KEY", rag.ErrConfiguration)
		}

	case "azure":
		if os.Getenv("EMBEDDING_API_KEY") == "" && os.Getenv("AZURE_OPENAI_API_KEY") == "" {
			return fmt.Errorf("%w: embedder: no Azure API key found — set AZURE_OPENAI_API_KEY or EMBEDDING_API_KEY", rag.ErrConfiguration)
		}
		if os.Getenv("EMBEDDING_ENDPOINT") == "" && os.Getenv("AZURE_OPENAI_ENDPOINT") == "" {
			return fmt.Errorf("%w: embedder: no Azure endpoint found — set AZURE_OPENAI_ENDPOINT or EMBEDDING_ENDPOINT", rag.ErrConfiguration)
		}

	case "ollama":
		// No credentials required.

	default:
		return fmt.Errorf("%w: embedder: unknown backend %q — valid values: openai, azure, ollama", rag.ErrConfiguration, backend)
	}

	if model := os.Getenv("EMBEDDING_MODEL"); model != "" && looksLikeChatModel(model) {
		log.Warn("embedder: EMBEDDING_MODEL looks like a chat model, not an embedding model — "+
			"this will likely produce poor or broken embeddings",
			slog.String("model", model),
			slog.String("hint", "use a dedicated embedding model e.g. text-embedding-ada-002, nomic-embed-text"),
		)
	}

	return nil
}
