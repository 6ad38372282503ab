package index

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"docqa/internal/domain"
	"docqa/internal/embedding/tfidf"
)

// ChunkLoader produces the chunks of a corpus directory.
type ChunkLoader interface {
	Load(dir string) ([]domain.Chunk, error)
}

// Holder publishes the current snapshot. Rebuild constructs a complete new
// index before swapping it in, so readers never see a partial index.
type Holder struct {
	current atomic.Pointer[Index]
	loader  ChunkLoader
	opts    tfidf.Options
	log     *slog.Logger
}

// NewHolder creates a holder serving the empty index until the first Rebuild.
func NewHolder(loader ChunkLoader, opts tfidf.Options, log *slog.Logger) *Holder {
	if log == nil {
		log = slog.Default()
	}
	h := &Holder{loader: loader, opts: opts, log: log}
	h.current.Store(Empty())
	return h
}

// Current returns the snapshot in effect.
func (h *Holder) Current() *Index { return h.current.Load() }

// Rebuild loads dir, builds a fresh index and atomically replaces the
// current one. On error the previous snapshot stays in place.
func (h *Holder) Rebuild(dir string) (*Index, error) {
	start := time.Now()
	chunks, err := h.loader.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	idx, err := Build(chunks, h.opts)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	h.current.Store(idx)
	dim := 0
	if !idx.IsEmpty() {
		dim = idx.vectorizer.Dimension()
	}
	h.log.Info("index built",
		"dir", dir,
		"chunks", idx.Len(),
		"vocabulary", dim,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return idx, nil
}

// Query runs against the current snapshot.
func (h *Holder) Query(text string, opts QueryOptions) ([]domain.SearchResult, error) {
	return h.Current().Query(text, opts)
}
