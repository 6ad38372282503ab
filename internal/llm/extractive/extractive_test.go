package extractive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/llm"
)

func TestGenerate_QuotesMatchingSentence(t *testing.T) {
	g := New(2)
	answer, err := g.Generate(context.Background(), llm.Prompt{
		Context: "[1] SOURCE: faq.txt (chunk 0)\nOur hospital locations are in Nassau and Suffolk county. Parking is free.\n\n---\n\n[2] SOURCE: hours.txt (chunk 0)\nVisiting hours are nine to five.",
		User:    "What are the hospital locations?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Our hospital locations are in Nassau and Suffolk county.", answer)
}

func TestGenerate_EmptyContextDeclines(t *testing.T) {
	answer, err := New(0).Generate(context.Background(), llm.Prompt{User: "What is the mission?"})
	require.NoError(t, err)
	assert.Equal(t, NoAnswer, answer)
	assert.Equal(t, "extractive", New(1).Name())
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(1).Generate(ctx, llm.Prompt{Context: "text.", User: "text"})
	assert.ErrorIs(t, err, context.Canceled)
}
