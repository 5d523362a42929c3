package rag

import (
	"fmt"
	"strings"
)

// SystemPrompt is the system message sent with every generation request.
const SystemPrompt = "You are a helpful assistant."

// Placeholders substituted when a match's metadata lacks a field.
const (
	UnknownQuestion = "Unknown question"
	UnknownAnswer   = "Unknown answer"
)

// promptPreamble opens every prompt, ahead of the retrieved Q/A pairs.
const promptPreamble = "You are a helpful assistant. Below is relevant information from a database:\n\n"

// promptInstruction closes every prompt, after the user's question.
const promptInstruction = "Provide a concise and accurate response."

// BuildPrompt assembles the generation prompt from the retrieved matches and
// the user's question. It is pure and deterministic: a fixed preamble, one
// numbered Q/A pair per match in input order (1-indexed), the user question,
// and a fixed closing instruction. Missing metadata fields render as the
// Unknown placeholders. With no matches the prompt still carries the
// preamble and the question, just without numbered pairs.
func BuildPrompt(matches []Match, question string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)

	for i, m := range matches {
		q := UnknownQuestion
		if m.Metadata.Question != nil {
			q = *m.Metadata.Question
		}
		a := UnknownAnswer
		if m.Metadata.Answer != nil {
			a = *m.Metadata.Answer
		}
		fmt.Fprintf(&b, "%d. Q: %s\n   A: %s\n\n", i+1, q, a)
	}

	b.WriteString("Using the above information, answer the following question:\n")
	fmt.Fprintf(&b, "Q: %s\n\n", question)
	b.WriteString(promptInstruction)

	return b.String()
}
