// Package provider defines the configuration and factory for selecting and
// constructing the LLM chat backend at runtime.
// Supported backends: OpenAI, Azure OpenAI, Ollama, AWS Bedrock, Google Gemini.
package provider

import (
	"fmt"

	"github.com/seniordev0204/chatbot-go/internal/rag"
)

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendBedrock selects AWS Bedrock.
	BackendBedrock Backend = "bedrock"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
)

// ProviderOpenAI holds OpenAI-specific settings.
type ProviderOpenAI struct {
	// APIKey is the OpenAI API key.
	APIKey string
	// Model is the chat model name (e.g. "gpt-4").
	Model string
}

// ProviderAzureOpenAI holds Azure OpenAI-specific settings.
type ProviderAzureOpenAI struct {
	// APIKey is the Azure OpenAI API key.
	APIKey string
	// Endpoint is the Azure OpenAI resource endpoint.
	Endpoint string
	// Deployment is the Azure OpenAI deployment name.
	Deployment string
	// APIVersion is the Azure OpenAI REST API version.
	APIVersion string
}

// ProviderOllama holds Ollama-specific settings.
type ProviderOllama struct {
	// Host is the Ollama API endpoint.
	Host string
	// Model is the Ollama model name.
	Model string
}

// ProviderBedrock holds AWS Bedrock-specific settings.
type ProviderBedrock struct {
	// APIKey is the Bedrock-compatible runtime credential.
	APIKey string
	// BaseURL is the Bedrock-compatible runtime endpoint.
	BaseURL string
	// ModelID is the Bedrock model identifier.
	ModelID string
}

// ProviderGemini holds Google Gemini-specific settings.
type ProviderGemini struct {
	// APIKey is the Google API key.
	APIKey string
	// Model is the Gemini model name.
	Model string
}

// SharedTuning holds generation parameters common to every backend.
type SharedTuning struct {
	// MaxTokens caps the number of tokens the model may generate per response.
	MaxTokens int
	// Temperature controls response randomness (0.0–1.0).
	Temperature float32
}

// Config holds all provider-level configuration resolved from environment
// variables or explicit caller-supplied values.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	// OpenAI holds OpenAI-specific settings.
	OpenAI ProviderOpenAI
	// AzureOpenAI holds Azure OpenAI-specific settings.
	AzureOpenAI ProviderAzureOpenAI
	// Ollama holds Ollama-specific settings.
	Ollama ProviderOllama
	// Bedrock holds AWS Bedrock-specific settings.
	Bedrock ProviderBedrock
	// Gemini holds Google Gemini-specific settings.
	Gemini ProviderGemini

	// Tuning holds shared generation parameters.
	Tuning SharedTuning
}

// Validate checks that the selected backend has every required field set.
// Errors wrap rag.ErrConfiguration so startup can fail fast with a clear
// message naming the missing env var.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: provider: OPENAI_API_KEY is required for openai backend", rag.ErrConfiguration)
		}
		if c.OpenAI.Model == "" {
			return fmt.Errorf("%w: provider: OPENAI_MODEL is required for openai backend", rag.ErrConfiguration)
		}
	case BackendAzure:
		if c.AzureOpenAI.APIKey == "" {
			return fmt.Errorf("%w: provider: AZURE_OPENAI_API_KEY is required for azure backend", rag.ErrConfiguration)
		}
		if c.AzureOpenAI.Endpoint == "" {
			return fmt.Errorf("%w: provider: AZURE_OPENAI_ENDPOINT is required for azure backend", rag.ErrConfiguration)
		}
		if c.AzureOpenAI.Deployment == "" {
			return fmt.Errorf("%w: provider: AZURE_OPENAI_DEPLOYMENT is required for azure backend", rag.ErrConfiguration)
		}
	case BackendOllama:
		if c.Ollama.Model == "" {
			return fmt.Errorf("%w: provider: OLLAMA_MODEL is required for ollama backend", rag.ErrConfiguration)
		}
	case BackendBedrock:
		if c.Bedrock.ModelID == "" {
			return fmt.Errorf("%w: provider: BEDROCK_MODEL_ID is required for bedrock backend", rag.ErrConfiguration)
		}
	case BackendGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("%w: provider: GOOGLE_API_KEY is required for gemini backend", rag.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: provider: unknown backend %q — valid values: openai, azure, ollama, bedrock, gemini", rag.ErrConfiguration, c.Backend)
	}
	return nil
}
