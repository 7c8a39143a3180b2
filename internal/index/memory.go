package index

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/n-vangala/interview-insights/internal/domain"
)

// Memory is a brute-force cosine-similarity index held in process memory
// and persisted as a gob snapshot through a SnapshotStore.
//
// A RWMutex serializes mutations while allowing concurrent searches. The
// zero-entry state is valid and searchable; no placeholder documents are
// ever inserted.
type Memory struct {
	mu        sync.RWMutex
	dimension int
	chunks    []domain.Chunk
	store     SnapshotStore
}

// snapshot is the gob-encoded durable form of a Memory index.
type snapshot struct {
	Dimension int
	Chunks    []domain.Chunk
}

// NewMemory creates an empty index for vectors of the given dimension.
func NewMemory(dimension int, store SnapshotStore) (*Memory, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid index dimension %d", dimension)
	}
	return &Memory{dimension: dimension, store: store}, nil
}

// LoadMemory reconstructs an index from the store's snapshot, or returns an
// empty index when no snapshot exists yet (first boot).
func LoadMemory(ctx context.Context, dimension int, store SnapshotStore) (*Memory, error) {
	idx, err := NewMemory(dimension, store)
	if err != nil {
		return nil, err
	}

	data, err := store.Load(ctx)
	if err != nil {
		if err == ErrSnapshotNotFound {
			return idx, nil
		}
		return nil, fmt.Errorf("failed to load index snapshot: %w", err)
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode index snapshot: %w", err)
	}
	if snap.Dimension != dimension {
		return nil, fmt.Errorf("snapshot dimension %d does not match configured dimension %d: %w",
			snap.Dimension, dimension, ErrDimensionMismatch)
	}

	idx.chunks = snap.Chunks
	return idx, nil
}

// Insert implements Index.
func (m *Memory) Insert(ctx context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) != m.dimension {
			return fmt.Errorf("chunk %s/%d has dimension %d: %w",
				c.TranscriptID, c.ChunkIndex, len(c.Embedding), ErrDimensionMismatch)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
	return nil
}

// DeleteByTranscript implements Index.
func (m *Memory) DeleteByTranscript(ctx context.Context, transcriptID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.chunks[:0]
	removed := 0
	for _, c := range m.chunks {
		if c.TranscriptID == transcriptID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	m.chunks = kept
	return removed, nil
}

// Search implements Index.
func (m *Memory) Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	if len(vector) != m.dimension {
		return nil, fmt.Errorf("query vector has dimension %d: %w", len(vector), ErrDimensionMismatch)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]SearchResult, 0, len(m.chunks))
	for _, c := range m.chunks {
		results = append(results, SearchResult{
			Chunk: c,
			Score: cosineSimilarity(vector, c.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Persist implements Index. The snapshot is encoded under the read lock so
// a concurrent mutation cannot produce a torn snapshot.
func (m *Memory) Persist(ctx context.Context) error {
	m.mu.RLock()
	snap := snapshot{Dimension: m.dimension, Chunks: m.chunks}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snap)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode index snapshot: %w", err)
	}

	if err := m.store.Save(ctx, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to save index snapshot: %w", err)
	}
	return nil
}

// Len returns the number of entries currently searchable.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
