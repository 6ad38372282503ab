package vectorstore

import "docqa/internal/domain"

// Storage holds one vector per chunk and supports similarity search over a
// subset of its rows.
type Storage interface {
	Init(dimension int) error
	Upsert(chunks []domain.Chunk, vectors []domain.Vector) error
	Search(vector domain.Vector, candidates []int, topK int) ([]domain.SearchResult, error)
	Len() int
}
