package domain

import "time"

// Chunk is an embedded slice of a transcript held in the vector index.
// Chunks are derived data: a transcript's chunk set is replaced wholesale
// on re-ingestion, never patched. Identity is (TranscriptID, ChunkIndex).
type Chunk struct {
	TranscriptID string
	UserID       string
	ChunkIndex   int
	Content      string
	Embedding    []float32
	CreatedAt    time.Time
}
