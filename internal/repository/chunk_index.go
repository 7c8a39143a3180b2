package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/n-vangala/interview-insights/internal/domain"
	"github.com/n-vangala/interview-insights/internal/index"
)

// ChunkIndex is a Postgres-backed vector index over transcript chunks,
// using pgvector cosine distance. Rows are durable as written, so Persist
// is a no-op.
type ChunkIndex struct {
	db dbtx
}

func NewChunkIndex(pool *pgxpool.Pool) *ChunkIndex {
	return &ChunkIndex{db: pool}
}

// Insert implements index.Index.
func (r *ChunkIndex) Insert(ctx context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		_, err := r.db.Exec(ctx,
			`INSERT INTO transcript_chunks
				(transcript_id, user_id, chunk_index, content, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.TranscriptID,
			c.UserID,
			c.ChunkIndex,
			c.Content,
			pgvector.NewVector(c.Embedding),
			c.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteByTranscript implements index.Index.
func (r *ChunkIndex) DeleteByTranscript(ctx context.Context, transcriptID string) (int, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM transcript_chunks WHERE transcript_id = $1`,
		transcriptID,
	)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Search implements index.Index. The <=> operator is cosine distance, so
// similarity is 1 - distance and ordering by distance ascending yields the
// most similar chunks first.
func (r *ChunkIndex) Search(ctx context.Context, vector []float32, k int) ([]index.SearchResult, error) {
	if k < 1 {
		return nil, index.ErrInvalidK
	}

	vec := pgvector.NewVector(vector)
	rows, err := r.db.Query(ctx,
		`SELECT transcript_id, user_id, chunk_index, content, created_at,
		        1 - (embedding <=> $1) AS score
		 FROM transcript_chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]index.SearchResult, 0, k)
	for rows.Next() {
		var r index.SearchResult
		if err := rows.Scan(
			&r.Chunk.TranscriptID,
			&r.Chunk.UserID,
			&r.Chunk.ChunkIndex,
			&r.Chunk.Content,
			&r.Chunk.CreatedAt,
			&r.Score,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Persist implements index.Index.
func (r *ChunkIndex) Persist(ctx context.Context) error {
	return nil
}
