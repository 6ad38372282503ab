package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func vec(pairs ...float64) domain.Vector {
	var v domain.Vector
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Indices = append(v.Indices, int(pairs[i]))
		v.Values = append(v.Values, pairs[i+1])
	}
	return v
}

func newStore(t *testing.T) *Storage {
	t.Helper()
	s := NewStorage()
	require.NoError(t, s.Init(4))
	chunks := []domain.Chunk{
		{Source: "a.txt", ChunkID: 0, Text: "a0"},
		{Source: "a.txt", ChunkID: 1, Text: "a1"},
		{Source: "b.txt", ChunkID: 0, Text: "b0"},
	}
	vectors := []domain.Vector{
		vec(0, 1),
		vec(1, 1),
		vec(0, 1),
	}
	require.NoError(t, s.Upsert(chunks, vectors))
	return s
}

func TestStorage_InitRejectsInvalidDimension(t *testing.T) {
	assert.Error(t, NewStorage().Init(0))
}

func TestStorage_UpsertValidation(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	assert.Error(t, s.Upsert([]domain.Chunk{{}}, nil))
	assert.Error(t, s.Upsert([]domain.Chunk{{}}, []domain.Vector{vec(5, 1)}))
	assert.Equal(t, 0, s.Len())
}

func TestStorage_SearchRanksStably(t *testing.T) {
	s := newStore(t)
	res, err := s.Search(vec(0, 1), nil, 3)
	require.NoError(t, err)
	require.Len(t, res, 3)

	// a.txt#0 and b.txt#0 tie at 1.0; corpus order decides.
	assert.Equal(t, "a0", res[0].Chunk.Text)
	assert.Equal(t, "b0", res[1].Chunk.Text)
	assert.Equal(t, "a1", res[2].Chunk.Text)
	assert.InDelta(t, 1.0, res[0].Score, 1e-12)
	assert.Equal(t, 0.0, res[2].Score)
}

func TestStorage_SearchCandidates(t *testing.T) {
	s := newStore(t)
	res, err := s.Search(vec(1, 1), []int{2, 1}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "a1", res[0].Chunk.Text)

	_, err = s.Search(vec(1, 1), []int{7}, 1)
	assert.Error(t, err)
}

func TestStorage_ZeroQueryScoresZero(t *testing.T) {
	s := newStore(t)
	res, err := s.Search(domain.Vector{}, nil, 10)
	require.NoError(t, err)
	require.Len(t, res, 3)
	for _, r := range res {
		assert.Equal(t, 0.0, r.Score)
	}
}
