package index

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/chunker"
	"docqa/internal/corpus"
	"docqa/internal/domain"
	"docqa/internal/embedding/tfidf"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleChunks() []domain.Chunk {
	return []domain.Chunk{
		{Source: "faq.txt", ChunkID: 0, Text: "Our hospital locations are in Nassau and Suffolk county."},
		{Source: "faq.txt", ChunkID: 1, Text: "Visiting hours are from nine to five every day."},
		{Source: "mission.txt", ChunkID: 0, Text: "Our mission is to provide compassionate care to every patient."},
		{Source: "billing.txt", ChunkID: 0, Text: "Billing questions can be answered by the billing office."},
		{Source: "mychart.txt", ChunkID: 0, Text: "MyChart lets patients view results and message their care team."},
	}
}

func build(t *testing.T, chunks []domain.Chunk) *Index {
	t.Helper()
	idx, err := Build(chunks, tfidf.Options{})
	require.NoError(t, err)
	return idx
}

func TestBuild_EmptyCorpus(t *testing.T) {
	idx := build(t, nil)
	assert.True(t, idx.IsEmpty())
	res, err := idx.Query("anything at all", QueryOptions{TopK: 3})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestBuild_DegenerateCorpusIsEmpty(t *testing.T) {
	idx := build(t, []domain.Chunk{{Source: "stop.txt", Text: "the and of a"}})
	assert.True(t, idx.IsEmpty())
}

func TestQuery_BlankText(t *testing.T) {
	idx := build(t, sampleChunks())
	res, err := idx.Query("   ", QueryOptions{TopK: 2})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestQuery_HospitalLocations(t *testing.T) {
	idx := build(t, []domain.Chunk{
		{Source: "faq.txt", ChunkID: 0, Text: "Our hospital locations are in Nassau and Suffolk county."},
	})
	res, err := idx.Query("What are the hospital locations?", QueryOptions{TopK: 2})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "faq.txt", res[0].Chunk.Source)
	assert.Contains(t, res[0].Chunk.Text, "Nassau")
	assert.Greater(t, res[0].Score, 0.5)
	assert.LessOrEqual(t, res[0].Score, 1.0)
}

func TestQuery_TopKClamped(t *testing.T) {
	idx := build(t, sampleChunks()[:2])
	res, err := idx.Query("hospital", QueryOptions{TopK: 5})
	require.NoError(t, err)
	assert.Len(t, res, 2)

	res, err = idx.Query("hospital", QueryOptions{TopK: 0})
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestQuery_RankedDescending(t *testing.T) {
	idx := build(t, sampleChunks())
	res, err := idx.Query("billing office questions", QueryOptions{TopK: 5})
	require.NoError(t, err)
	require.Len(t, res, 5)
	assert.Equal(t, "billing.txt", res[0].Chunk.Source)
	for i := 1; i < len(res); i++ {
		assert.GreaterOrEqual(t, res[i-1].Score, res[i].Score)
	}
}

func TestQuery_ZeroVectorKeepsCorpusOrder(t *testing.T) {
	chunks := sampleChunks()
	idx := build(t, chunks)
	res, err := idx.Query("zebra quokka", QueryOptions{TopK: 5})
	require.NoError(t, err)
	require.Len(t, res, 5)
	for i, r := range res {
		assert.Equal(t, 0.0, r.Score)
		assert.Equal(t, chunks[i], r.Chunk)
	}
}

func TestQuery_Deterministic(t *testing.T) {
	first, err := build(t, sampleChunks()).Query("care for patients", QueryOptions{TopK: 4})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := build(t, sampleChunks()).Query("care for patients", QueryOptions{TopK: 4})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestQuery_TopKPrefix(t *testing.T) {
	idx := build(t, sampleChunks())
	for _, filter := range []string{"", "faq", "nomatch"} {
		all, err := idx.Query("patient care hours", QueryOptions{TopK: 5, SourceContains: filter})
		require.NoError(t, err)
		for k := 1; k < len(all); k++ {
			part, err := idx.Query("patient care hours", QueryOptions{TopK: k, SourceContains: filter})
			require.NoError(t, err)
			assert.Equal(t, all[:k], part, "filter=%q k=%d", filter, k)
		}
	}
}

func TestQuery_SourceFilter(t *testing.T) {
	idx := build(t, sampleChunks())
	res, err := idx.Query("hospital care", QueryOptions{TopK: 5, SourceContains: "FAQ"})
	require.NoError(t, err)
	require.Len(t, res, 2)
	for _, r := range res {
		assert.Equal(t, "faq.txt", r.Chunk.Source)
	}
}

func TestQuery_FilterMissFallsBackToWholeCorpus(t *testing.T) {
	idx := build(t, sampleChunks())
	unfiltered, err := idx.Query("hospital care", QueryOptions{TopK: 3})
	require.NoError(t, err)
	filtered, err := idx.Query("hospital care", QueryOptions{TopK: 3, SourceContains: "does-not-exist"})
	require.NoError(t, err)
	assert.Equal(t, unfiltered, filtered)
}

func TestSources(t *testing.T) {
	idx := build(t, sampleChunks())
	assert.Equal(t, []SourceStat{
		{Source: "faq.txt", Chunks: 2},
		{Source: "mission.txt", Chunks: 1},
		{Source: "billing.txt", Chunks: 1},
		{Source: "mychart.txt", Chunks: 1},
	}, idx.Sources())
}

type failingLoader struct{}

func (failingLoader) Load(string) ([]domain.Chunk, error) { return nil, errors.New("boom") }

func TestHolder_RebuildSwapsSnapshot(t *testing.T) {
	dir := t.TempDir()
	loader := corpus.NewLoader(chunker.NewWindowChunker(900, 120), nil, quietLogger())
	h := NewHolder(loader, tfidf.Options{}, quietLogger())
	assert.True(t, h.Current().IsEmpty())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "faq.txt"),
		[]byte("Our hospital locations are in Nassau and Suffolk county."), 0o644))
	before := h.Current()
	idx, err := h.Rebuild(dir)
	require.NoError(t, err)
	assert.Same(t, idx, h.Current())
	assert.True(t, before.IsEmpty(), "old snapshot must stay untouched")
	assert.Equal(t, 1, h.Current().Len())

	res, err := h.Query("hospital locations", QueryOptions{TopK: 2})
	require.NoError(t, err)
	require.Len(t, res, 1)
}

func TestHolder_RebuildFailureKeepsPrevious(t *testing.T) {
	h := NewHolder(failingLoader{}, tfidf.Options{}, quietLogger())
	prev := h.Current()
	_, err := h.Rebuild("anywhere")
	assert.Error(t, err)
	assert.Same(t, prev, h.Current())
}
