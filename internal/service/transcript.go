package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/n-vangala/interview-insights/internal/domain"
	"github.com/n-vangala/interview-insights/internal/index"
	"github.com/n-vangala/interview-insights/internal/telemetry"
)

// TranscriptRepository defines the record-store interface for transcripts.
type TranscriptRepository interface {
	Create(ctx context.Context, t *domain.Transcript) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Transcript, error)
	DeleteOwned(ctx context.Context, transcriptID, userID string) error
	MarkIndexed(ctx context.Context, transcriptID string, indexedAt time.Time) error
	ListUnindexed(ctx context.Context, limit int) ([]*domain.Transcript, error)
	ListAll(ctx context.Context) ([]*domain.Transcript, error)
}

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// TranscriptService owns the ingestion and deletion paths: record-store
// writes, chunking, embedding, vector-index updates and persistence.
type TranscriptService struct {
	repo     TranscriptRepository
	embed    EmbeddingClient
	idx      index.Index
	chunkCfg ChunkConfig
	now      func() time.Time
}

// NewTranscriptService creates a new TranscriptService instance
func NewTranscriptService(repo TranscriptRepository, embed EmbeddingClient, idx index.Index, chunkCfg ChunkConfig) *TranscriptService {
	if chunkCfg.ChunkSize <= 0 {
		chunkCfg = DefaultChunkConfig()
	}
	return &TranscriptService{
		repo:     repo,
		embed:    embed,
		idx:      idx,
		chunkCfg: chunkCfg,
		now:      time.Now,
	}
}

// Ingest stores a transcript and makes its chunks searchable. The record
// row is written first; if chunking, embedding or indexing then fails, the
// row is kept with a nil IndexedAt and the error is surfaced — the reindex
// worker retries such transcripts until the index catches up.
func (s *TranscriptService) Ingest(ctx context.Context, userID, text string) (*domain.Transcript, error) {
	ctx, span := telemetry.StartSpan(ctx, "TranscriptService.Ingest", telemetry.SpanAttributes{
		UserID:    userID,
		Operation: "ingest",
	})
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrEmptyUserID
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyTranscript
	}

	createdAt := s.now().UTC()
	transcript := &domain.Transcript{
		ID:        domain.NewTranscriptID(userID, createdAt),
		UserID:    userID,
		Text:      text,
		CreatedAt: createdAt,
	}

	if err := s.repo.Create(ctx, transcript); err != nil {
		if !errors.Is(err, domain.ErrTranscriptAlreadyExists) {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "record store operation failed", err)
		}
		// Same user uploading twice within a second: disambiguate the id.
		transcript.ID = fmt.Sprintf("%s_%s", transcript.ID, uuid.NewString()[:8])
		if err := s.repo.Create(ctx, transcript); err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "record store operation failed", err)
		}
	}

	if err := s.indexTranscript(ctx, transcript); err != nil {
		span.SetError(err)
		return nil, err
	}

	return transcript, nil
}

// indexTranscript replaces the transcript's chunk set in the vector index,
// persists the index, and marks the transcript indexed. Replacement rather
// than append keeps a retried ingestion from duplicating entries.
func (s *TranscriptService) indexTranscript(ctx context.Context, t *domain.Transcript) error {
	pieces := splitText(t.Text, s.chunkCfg)
	if len(pieces) == 0 {
		return domain.ErrEmptyTranscript
	}

	createdAt := s.now().UTC()
	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		embedding, err := s.embed.GenerateEmbedding(ctx, piece)
		if err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "embedding generation failed", err)
		}
		chunks = append(chunks, domain.Chunk{
			TranscriptID: t.ID,
			UserID:       t.UserID,
			ChunkIndex:   i,
			Content:      piece,
			Embedding:    embedding,
			CreatedAt:    createdAt,
		})
	}

	if _, err := s.idx.DeleteByTranscript(ctx, t.ID); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "vector index persistence failed", err)
	}
	if err := s.idx.Insert(ctx, chunks); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "vector index persistence failed", err)
	}
	if err := s.idx.Persist(ctx); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "vector index persistence failed", err)
	}

	if err := s.repo.MarkIndexed(ctx, t.ID, createdAt); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "record store operation failed", err)
	}
	t.IndexedAt = &createdAt
	return nil
}

// List returns the user's transcripts ordered by creation date descending.
func (s *TranscriptService) List(ctx context.Context, userID string) ([]*domain.Transcript, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrEmptyUserID
	}
	transcripts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "record store operation failed", err)
	}
	return transcripts, nil
}

// Delete removes a transcript owned by userID from both stores: the record
// row first, then every matching vector-index entry. If the index update
// fails after the row delete, the error is surfaced and captured; the
// reindex command repairs the index from the record store.
func (s *TranscriptService) Delete(ctx context.Context, userID, transcriptID string) error {
	ctx, span := telemetry.StartSpan(ctx, "TranscriptService.Delete", telemetry.SpanAttributes{
		UserID:       userID,
		TranscriptID: transcriptID,
		Operation:    "delete",
	})
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return domain.ErrEmptyUserID
	}
	if strings.TrimSpace(transcriptID) == "" {
		return domain.ErrMissingTranscriptID
	}

	if err := s.repo.DeleteOwned(ctx, transcriptID, userID); err != nil {
		if errors.Is(err, domain.ErrTranscriptNotFound) {
			return err
		}
		return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "record store operation failed", err)
	}

	removed, err := s.idx.DeleteByTranscript(ctx, transcriptID)
	if err == nil {
		err = s.idx.Persist(ctx)
	}
	if err != nil {
		wrapped := domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "vector index persistence failed", err)
		span.SetError(wrapped)
		telemetry.CaptureError(ctx, wrapped)
		return wrapped
	}

	log.Printf("deleted transcript %s (%d index entries removed)", transcriptID, removed)
	return nil
}

// ReindexPending retries transcripts whose chunks never made it into the
// vector index. Called periodically by the background worker; individual
// failures are logged and retried on the next tick.
func (s *TranscriptService) ReindexPending(ctx context.Context) error {
	pending, err := s.repo.ListUnindexed(ctx, 10)
	if err != nil {
		return fmt.Errorf("failed to list unindexed transcripts: %w", err)
	}

	for _, t := range pending {
		if err := s.indexTranscript(ctx, t); err != nil {
			log.Printf("reindex of transcript %s failed: %v", t.ID, err)
			telemetry.CaptureError(ctx, err)
			continue
		}
		log.Printf("reindexed transcript %s", t.ID)
	}
	return nil
}

// RebuildIndex recomputes the whole vector index from the record store's
// transcripts. This is the repair path for index/record-store drift after a
// partial failure or a lost snapshot.
func (s *TranscriptService) RebuildIndex(ctx context.Context) (int, error) {
	transcripts, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "record store operation failed", err)
	}

	rebuilt := 0
	for _, t := range transcripts {
		if err := s.indexTranscript(ctx, t); err != nil {
			return rebuilt, fmt.Errorf("failed to rebuild transcript %s: %w", t.ID, err)
		}
		rebuilt++
	}
	return rebuilt, nil
}
