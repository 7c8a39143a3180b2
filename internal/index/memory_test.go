package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/n-vangala/interview-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChunk(transcriptID string, idx int, content string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		TranscriptID: transcriptID,
		UserID:       "u1",
		ChunkIndex:   idx,
		Content:      content,
		Embedding:    embedding,
		CreatedAt:    time.Unix(1700000000, 0).UTC(),
	}
}

func newTestIndex(t *testing.T) *Memory {
	idx, err := NewMemory(3, NewFileStore(filepath.Join(t.TempDir(), "index.gob")))
	require.NoError(t, err)
	return idx
}

func TestMemorySearchOrdersByDescendingSimilarity(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Insert(ctx, []domain.Chunk{
		testChunk("t1", 0, "pricing feedback", []float32{1, 0, 0}),
		testChunk("t2", 0, "onboarding feedback", []float32{0, 1, 0}),
		testChunk("t3", 0, "mixed feedback", []float32{1, 1, 0}),
	}))

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "t1", results[0].Chunk.TranscriptID)
	assert.Equal(t, "t3", results[1].Chunk.TranscriptID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemorySearchEmptyIndex(t *testing.T) {
	idx := newTestIndex(t)

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemorySearchValidation(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	_, err := idx.Search(ctx, []float32{1, 0, 0}, 0)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = idx.Search(ctx, []float32{1, 0}, 5)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMemoryInsertRejectsWrongDimension(t *testing.T) {
	idx := newTestIndex(t)

	err := idx.Insert(context.Background(), []domain.Chunk{
		testChunk("t1", 0, "bad", []float32{1, 0}),
	})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 0, idx.Len())
}

func TestMemoryDeleteByTranscript(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Insert(ctx, []domain.Chunk{
		testChunk("t1", 0, "a", []float32{1, 0, 0}),
		testChunk("t1", 1, "b", []float32{0, 1, 0}),
		testChunk("t2", 0, "c", []float32{0, 0, 1}),
	}))

	removed, err := idx.DeleteByTranscript(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// No entry for t1 survives, whatever the query.
	results, err := idx.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "t1", r.Chunk.TranscriptID)
	}
}

func TestMemoryDeleteUnknownTranscriptIsNoOp(t *testing.T) {
	idx := newTestIndex(t)

	removed, err := idx.DeleteByTranscript(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestMemoryPersistLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "index.gob"))

	idx, err := NewMemory(3, store)
	require.NoError(t, err)
	require.NoError(t, idx.Insert(ctx, []domain.Chunk{
		testChunk("t1", 0, "pricing page confused me", []float32{0.9, 0.1, 0}),
		testChunk("t2", 0, "love the onboarding flow", []float32{0.1, 0.9, 0}),
	}))
	require.NoError(t, idx.Persist(ctx))

	loaded, err := LoadMemory(ctx, 3, store)
	require.NoError(t, err)
	require.Equal(t, idx.Len(), loaded.Len())

	query := []float32{1, 0, 0}
	want, err := idx.Search(ctx, query, 5)
	require.NoError(t, err)
	got, err := loaded.Search(ctx, query, 5)
	require.NoError(t, err)

	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, want[i].Chunk.TranscriptID, got[i].Chunk.TranscriptID)
		assert.Equal(t, want[i].Chunk.Content, got[i].Chunk.Content)
		assert.InDelta(t, want[i].Score, got[i].Score, 1e-6)
	}
}

func TestLoadMemoryNoSnapshotReturnsEmptyIndex(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.gob"))

	idx, err := LoadMemory(context.Background(), 3, store)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
}

func TestLoadMemoryRejectsDimensionChange(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "index.gob"))

	idx, err := NewMemory(3, store)
	require.NoError(t, err)
	require.NoError(t, idx.Insert(ctx, []domain.Chunk{testChunk("t1", 0, "a", []float32{1, 0, 0})}))
	require.NoError(t, idx.Persist(ctx))

	_, err = LoadMemory(ctx, 4, store)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFallbackStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	primary := NewFileStore(filepath.Join(dir, "primary.gob"))
	mirror := NewFileStore(filepath.Join(dir, "mirror.gob"))
	store := NewFallbackStore(primary, mirror)

	require.NoError(t, store.Save(ctx, []byte("snapshot")))

	// Both copies written.
	data, err := primary.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot"), data)
	data, err = mirror.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot"), data)

	// Load falls back to the mirror when the primary is gone.
	lost := NewFileStore(filepath.Join(dir, "lost.gob"))
	data, err = NewFallbackStore(lost, mirror).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot"), data)
}
