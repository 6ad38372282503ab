package chunker

import (
	"regexp"
	"strings"

	"docqa/internal/domain"
)

// Default window geometry, in characters.
const (
	DefaultMaxChars = 900
	DefaultOverlap  = 120
)

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// WindowChunker splits text into fixed-size character windows with overlap.
type WindowChunker struct {
	maxChars int
	overlap  int
}

// NewWindowChunker creates a chunker. Invalid geometry is corrected so that
// 0 <= overlap < maxChars always holds.
func NewWindowChunker(maxChars, overlap int) *WindowChunker {
	maxChars, overlap = geometry(maxChars, overlap)
	return &WindowChunker{maxChars: maxChars, overlap: overlap}
}

func geometry(maxChars, overlap int) (int, int) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChars {
		overlap = maxChars - 1
	}
	return maxChars, overlap
}

// Chunk splits the document and numbers the windows from zero.
func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	parts := Split(document.Content, c.maxChars, c.overlap)
	if len(parts) == 0 {
		return nil, nil
	}
	chunks := make([]domain.Chunk, 0, len(parts))
	for i, text := range parts {
		chunks = append(chunks, domain.Chunk{
			Source:  document.Name,
			ChunkID: i,
			Text:    text,
		})
	}
	return chunks, nil
}

// Normalize unifies line breaks, collapses long blank runs to a single blank
// line and trims the document.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Split normalizes text and slides a maxChars window across it, stepping
// back by overlap characters after each window. Positions are counted in
// runes. Windows that are empty after trimming are dropped.
func Split(text string, maxChars, overlap int) []string {
	maxChars, overlap = geometry(maxChars, overlap)
	runes := []rune(Normalize(text))
	n := len(runes)
	if n == 0 {
		return nil
	}
	var out []string
	start := 0
	for start < n {
		end := min(n, start+maxChars)
		if window := strings.TrimSpace(string(runes[start:end])); window != "" {
			out = append(out, window)
		}
		if end >= n {
			break
		}
		start = max(0, end-overlap)
	}
	return out
}
