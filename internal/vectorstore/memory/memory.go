package memory

import (
	"errors"
	"sort"
	"sync"

	"docqa/internal/domain"
)

// Storage is an in-memory chunk-by-vector matrix scored by brute-force
// cosine similarity. Row i holds the vector of chunk i.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   []domain.Vector
	chunks    []domain.Chunk
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

func (s *Storage) Upsert(chunks []domain.Chunk, vectors []domain.Vector) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if n := len(v.Indices); n > 0 && v.Indices[n-1] >= s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Len returns the number of rows.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

// Search scores the candidate rows against vector and returns the topK best.
// A nil candidates slice means every row. Ties keep candidate order.
func (s *Storage) Search(vector domain.Vector, candidates []int, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if candidates == nil {
		candidates = make([]int, len(s.vectors))
		for i := range candidates {
			candidates[i] = i
		}
	}
	if topK <= 0 {
		topK = 5
	}
	qnorm := vector.Norm()
	scores := make([]float64, len(candidates))
	for k, row := range candidates {
		if row < 0 || row >= len(s.vectors) {
			return nil, errors.New("candidate row out of range")
		}
		scores[k] = cosine(vector, qnorm, s.vectors[row])
	}
	order := argsortDesc(scores)
	if topK > len(order) {
		topK = len(order)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, k := range order[:topK] {
		results = append(results, domain.SearchResult{Chunk: s.chunks[candidates[k]], Score: scores[k]})
	}
	return results, nil
}

func cosine(q domain.Vector, qnorm float64, row domain.Vector) float64 {
	rnorm := row.Norm()
	if qnorm == 0 || rnorm == 0 {
		return 0
	}
	sim := q.Dot(row) / (qnorm * rnorm)
	// Rounding can push a perfect match slightly outside [0, 1].
	return min(1, max(0, sim))
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}
