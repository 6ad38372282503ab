// Package llm defines the answer-generation collaborator that turns
// retrieved context into prose.
package llm

import "context"

// Prompt is a single-turn generation request.
type Prompt struct {
	// System is the fixed instruction template.
	System string
	// Context holds the numbered context blocks; it may be empty.
	Context string
	// User is the caller's question.
	User        string
	Temperature float64
	MaxTokens   int
}

// Generator produces a free-text reply for a prompt. The reply is opaque
// to the caller.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// SystemMessage joins the instruction and the context the way chat models
// receive them.
func (p Prompt) SystemMessage() string {
	return p.System + "\n\nCONTEXT:\n" + p.Context
}
