// Package tracing wires optional Langfuse observability into the eino
// callback chain so embedding and generation calls show up as traces.
package tracing

import (
	"os"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"

	"github.com/seniordev0204/chatbot-go/internal/version"
)

// Setup builds the Langfuse callback handler when LANGFUSE_PUBLIC_KEY and
// LANGFUSE_SECRET_KEY are present. LANGFUSE_HOST selects a self-hosted
// instance; Langfuse Cloud is the default. Traces carry the askbot service
// name and build version so runs from different releases stay apart.
// The returned flush function must run before process exit or queued traces
// are dropped. All three return values are zero when tracing is off.
func Setup() (callbacks.Handler, func(), bool) {
	publicKey := os.Getenv("LANGFUSE_PUBLIC_KEY")
	secretKey := os.Getenv("LANGFUSE_SECRET_KEY")
	if publicKey == "" || secretKey == "" {
		return nil, nil, false
	}

	host := os.Getenv("LANGFUSE_HOST")
	if host == "" {
		host = "https://cloud.langfuse.com"
	}

	handler, flush := langfuse.NewLangfuseHandler(&langfuse.Config{
		Host:      host,
		PublicKey: publicKey,
		SecretKey: secretKey,
		Name:      "askbot",
		Release:   version.Version,
	})

	return handler, flush, true
}
