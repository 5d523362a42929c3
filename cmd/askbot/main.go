// Command askbot is the entry point for the Q/A chatbot service.
// It provides a CLI interface (via Cobra) for serving the HTTP API,
// asking one-shot questions, and loading the knowledge base.
package main

import (
	"fmt"
	"os"

	"github.com/seniordev0204/chatbot-go/cmd/askbot/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
