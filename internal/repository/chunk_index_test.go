//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n-vangala/interview-insights/internal/domain"
	"github.com/n-vangala/interview-insights/internal/index"
	"github.com/n-vangala/interview-insights/internal/testutil"
)

const embeddingDim = 1536

// unitVector returns a 1536-dim unit vector pointing along the given axis.
func unitVector(axis int) []float32 {
	v := make([]float32, embeddingDim)
	v[axis] = 1
	return v
}

func seedTranscript(ctx context.Context, t *testing.T, repo *TranscriptRepository, userID string, createdAt time.Time) *domain.Transcript {
	t.Helper()
	transcript := newTranscript(userID, createdAt)
	require.NoError(t, repo.Create(ctx, transcript))
	return transcript
}

func TestChunkIndex_InsertAndSearch(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	transcripts := NewTranscriptRepository(pool)
	idx := NewChunkIndex(pool)
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	a := seedTranscript(ctx, t, transcripts, "user-1", createdAt)
	b := seedTranscript(ctx, t, transcripts, "user-2", createdAt)

	require.NoError(t, idx.Insert(ctx, []domain.Chunk{
		{TranscriptID: a.ID, UserID: "user-1", ChunkIndex: 0, Content: "pricing concerns", Embedding: unitVector(0), CreatedAt: createdAt},
		{TranscriptID: a.ID, UserID: "user-1", ChunkIndex: 1, Content: "onboarding friction", Embedding: unitVector(1), CreatedAt: createdAt},
		{TranscriptID: b.ID, UserID: "user-2", ChunkIndex: 0, Content: "feature requests", Embedding: unitVector(2), CreatedAt: createdAt},
	}))

	results, err := idx.Search(ctx, unitVector(0), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "pricing concerns", results[0].Chunk.Content)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
	assert.Greater(t, results[0].Score, results[1].Score)

	t.Run("invalid k", func(t *testing.T) {
		_, err := idx.Search(ctx, unitVector(0), 0)
		assert.ErrorIs(t, err, index.ErrInvalidK)
	})
}

func TestChunkIndex_DeleteByTranscript(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	transcripts := NewTranscriptRepository(pool)
	idx := NewChunkIndex(pool)
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	a := seedTranscript(ctx, t, transcripts, "user-1", createdAt)
	b := seedTranscript(ctx, t, transcripts, "user-2", createdAt)

	require.NoError(t, idx.Insert(ctx, []domain.Chunk{
		{TranscriptID: a.ID, UserID: "user-1", ChunkIndex: 0, Content: "first", Embedding: unitVector(0), CreatedAt: createdAt},
		{TranscriptID: a.ID, UserID: "user-1", ChunkIndex: 1, Content: "second", Embedding: unitVector(1), CreatedAt: createdAt},
		{TranscriptID: b.ID, UserID: "user-2", ChunkIndex: 0, Content: "third", Embedding: unitVector(2), CreatedAt: createdAt},
	}))

	removed, err := idx.DeleteByTranscript(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	results, err := idx.Search(ctx, unitVector(0), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, b.ID, results[0].Chunk.TranscriptID)

	t.Run("idempotent", func(t *testing.T) {
		removed, err := idx.DeleteByTranscript(ctx, a.ID)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}

func TestChunkIndex_CascadeOnTranscriptDelete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	transcripts := NewTranscriptRepository(pool)
	idx := NewChunkIndex(pool)
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	a := seedTranscript(ctx, t, transcripts, "user-1", createdAt)
	require.NoError(t, idx.Insert(ctx, []domain.Chunk{
		{TranscriptID: a.ID, UserID: "user-1", ChunkIndex: 0, Content: "only chunk", Embedding: unitVector(0), CreatedAt: createdAt},
	}))

	require.NoError(t, transcripts.DeleteOwned(ctx, a.ID, "user-1"))

	results, err := idx.Search(ctx, unitVector(0), 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
