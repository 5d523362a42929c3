// Package budget provides token budget estimation and prompt trimming.
// Because the service supports multiple LLM backends with different
// tokenizers, it uses a conservative character-based heuristic:
// 1 token ≈ 4 characters (English prose). This deliberately under-estimates
// token counts to leave headroom for model-specific overhead.
package budget

import (
	"github.com/seniordev0204/chatbot-go/internal/rag"
)

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English; using 3 would be
	// more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxPromptTokens is the default budget for the assembled prompt.
	// Conservative enough to fit within 8k-context models while leaving room
	// for the output. With the default four retrieved pairs this budget only
	// triggers on pathologically long stored answers.
	DefaultMaxPromptTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// TrimMatches drops lowest-ranked matches until the prompt built from the
// remainder fits within maxTokens. Matches arrive ordered by descending
// similarity, so trimming removes from the tail — the least relevant context
// goes first.
//
// The question itself is never dropped: if even a context-free prompt
// exceeds the budget, the empty match slice is returned and the caller
// proceeds with the bare question.
func TrimMatches(matches []rag.Match, question string, maxTokens int) []rag.Match {
	for len(matches) > 0 {
		if Estimate(rag.BuildPrompt(matches, question)) <= maxTokens {
			break
		}
		matches = matches[:len(matches)-1]
	}
	return matches
}
