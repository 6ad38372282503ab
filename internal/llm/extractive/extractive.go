// Package extractive answers from the retrieved context without a language
// model by quoting the sentences that best match the question.
package extractive

import (
	"context"
	"regexp"
	"strings"

	"docqa/internal/llm"
	"docqa/internal/summarizer"
)

// NoAnswer is returned when the context does not cover the question.
const NoAnswer = "I don't know based on the provided materials."

var (
	_ llm.Generator = (*Generator)(nil)

	blockHeaderRe = regexp.MustCompile(`(?m)^\[\d+\] SOURCE: .*$`)
	separatorRe   = regexp.MustCompile(`(?m)^---$`)
)

// Generator is an offline llm.Generator.
type Generator struct {
	summarizer   *summarizer.FrequencySummarizer
	maxSentences int
}

// New creates an extractive generator quoting at most maxSentences sentences.
func New(maxSentences int) *Generator {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	return &Generator{summarizer: summarizer.NewFrequencySummarizer(), maxSentences: maxSentences}
}

func (g *Generator) Name() string { return "extractive" }

// Generate quotes the context sentences sharing terms with the question.
func (g *Generator) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body := blockHeaderRe.ReplaceAllString(prompt.Context, "")
	body = separatorRe.ReplaceAllString(body, "")
	picked := g.summarizer.Summarize(body, prompt.User, g.maxSentences)
	if len(picked) == 0 {
		return NoAnswer, nil
	}
	return strings.Join(picked, " "), nil
}
