// Package index holds the immutable retrieval snapshot: chunks, the fitted
// TF-IDF model, and the chunk-by-vector matrix.
package index

import (
	"errors"
	"fmt"
	"strings"

	"docqa/internal/domain"
	"docqa/internal/embedding/tfidf"
	"docqa/internal/vectorstore"
	"docqa/internal/vectorstore/memory"
)

// QueryOptions are the optional retrieval parameters.
type QueryOptions struct {
	// TopK is the requested number of results; it is clamped to
	// [1, candidate count].
	TopK int
	// SourceContains restricts candidates to chunks whose source contains
	// this substring, case-insensitively. A filter matching nothing is ignored.
	SourceContains string
}

// Index is a read-only snapshot. The zero-chunk index has no model and no
// matrix, and every query against it returns no results.
type Index struct {
	chunks     []domain.Chunk
	vectorizer *tfidf.Vectorizer
	matrix     vectorstore.Storage
}

// Empty returns the empty index.
func Empty() *Index { return &Index{} }

// Build fits the vector space over chunks and materializes one row per chunk.
// An empty or degenerate corpus yields the empty index.
func Build(chunks []domain.Chunk, opts tfidf.Options) (*Index, error) {
	if len(chunks) == 0 {
		return Empty(), nil
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectorizer, rows, err := tfidf.Fit(texts, opts)
	if errors.Is(err, tfidf.ErrEmptyVocabulary) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("fit vectorizer: %w", err)
	}
	store := memory.NewStorage()
	if err := store.Init(vectorizer.Dimension()); err != nil {
		return nil, fmt.Errorf("init matrix: %w", err)
	}
	if err := store.Upsert(chunks, rows); err != nil {
		return nil, fmt.Errorf("fill matrix: %w", err)
	}
	return &Index{
		chunks:     append([]domain.Chunk(nil), chunks...),
		vectorizer: vectorizer,
		matrix:     store,
	}, nil
}

// IsEmpty reports whether the snapshot has nothing to search.
func (x *Index) IsEmpty() bool {
	return x == nil || x.vectorizer == nil || x.matrix == nil || len(x.chunks) == 0
}

// Len returns the number of chunks.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.chunks)
}

// Sources returns the number of chunks per source, in corpus order.
func (x *Index) Sources() []SourceStat {
	if x == nil {
		return nil
	}
	var out []SourceStat
	for _, ch := range x.chunks {
		if n := len(out); n > 0 && out[n-1].Source == ch.Source {
			out[n-1].Chunks++
			continue
		}
		out = append(out, SourceStat{Source: ch.Source, Chunks: 1})
	}
	return out
}

// SourceStat summarizes one indexed document.
type SourceStat struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
}

// Query ranks chunks against text by cosine similarity. Results are ordered
// by descending score; ties keep corpus order.
func (x *Index) Query(text string, opts QueryOptions) ([]domain.SearchResult, error) {
	if x.IsEmpty() {
		return nil, nil
	}
	q := strings.TrimSpace(text)
	if q == "" {
		return nil, nil
	}

	candidates := x.candidates(opts.SourceContains)
	n := len(x.chunks)
	if candidates != nil {
		n = len(candidates)
	}
	topK := max(1, min(opts.TopK, n))

	results, err := x.matrix.Search(x.vectorizer.Transform(q), candidates, topK)
	if err != nil {
		return nil, fmt.Errorf("search matrix: %w", err)
	}
	return results, nil
}

// candidates returns the rows whose source matches filter, or nil for the
// whole corpus when there is no filter or nothing matches.
func (x *Index) candidates(filter string) []int {
	if filter == "" {
		return nil
	}
	f := strings.ToLower(filter)
	var rows []int
	for i, ch := range x.chunks {
		if strings.Contains(strings.ToLower(ch.Source), f) {
			rows = append(rows, i)
		}
	}
	return rows
}
