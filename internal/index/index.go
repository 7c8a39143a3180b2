// Package index provides the nearest-neighbor search structure over
// transcript chunks: an in-process brute-force cosine index with snapshot
// persistence, plus the interface a Postgres/pgvector implementation
// satisfies as well.
package index

import (
	"context"
	"errors"

	"github.com/n-vangala/interview-insights/internal/domain"
)

// SearchResult pairs a chunk with its similarity to the query vector.
type SearchResult struct {
	Chunk domain.Chunk
	Score float32
}

var (
	// ErrDimensionMismatch is returned when a vector does not match the
	// dimension the index was created with. Mixing embedding models in one
	// index is rejected rather than left undefined.
	ErrDimensionMismatch = errors.New("vector dimension does not match index dimension")

	// ErrInvalidK is returned when search is called with k < 1.
	ErrInvalidK = errors.New("k must be at least 1")
)

// Index is the searchable set of transcript chunks.
//
// Implementations must serialize mutations (Insert, DeleteByTranscript,
// Persist) against each other; Search may run concurrently with other
// searches but not with a mutation.
type Index interface {
	// Insert makes the given chunks immediately searchable. It does not
	// itself persist to durable storage; callers follow every successful
	// mutation with Persist.
	Insert(ctx context.Context, chunks []domain.Chunk) error

	// DeleteByTranscript removes every entry whose TranscriptID matches and
	// returns the number removed. Deleting an unknown transcript is a no-op
	// returning 0, not an error.
	DeleteByTranscript(ctx context.Context, transcriptID string) (int, error)

	// Search returns up to k chunks ordered by descending cosine similarity
	// to the query vector. An empty index yields an empty result.
	Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error)

	// Persist durably serializes the index so a later load reconstructs
	// identical search behavior. Implementations whose writes are already
	// durable may make this a no-op.
	Persist(ctx context.Context) error
}
