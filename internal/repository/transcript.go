package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/n-vangala/interview-insights/internal/domain"
)

// TranscriptRepository persists transcript records in Postgres.
type TranscriptRepository struct {
	db dbtx
}

func NewTranscriptRepository(pool *pgxpool.Pool) *TranscriptRepository {
	return &TranscriptRepository{db: pool}
}

func NewTranscriptRepositoryWithTx(tx pgx.Tx) *TranscriptRepository {
	return &TranscriptRepository{db: tx}
}

func (r *TranscriptRepository) Create(ctx context.Context, t *domain.Transcript) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO transcripts (id, user_id, text, created_at, indexed_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.UserID, t.Text, t.CreatedAt, t.IndexedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTranscriptAlreadyExists
		}
		return err
	}
	return nil
}

// GetOwned returns the transcript only when it belongs to userID. A row
// owned by another user looks identical to a missing row.
func (r *TranscriptRepository) GetOwned(ctx context.Context, transcriptID, userID string) (*domain.Transcript, error) {
	var t domain.Transcript
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, text, created_at, indexed_at
		 FROM transcripts WHERE id = $1 AND user_id = $2`,
		transcriptID, userID,
	).Scan(&t.ID, &t.UserID, &t.Text, &t.CreatedAt, &t.IndexedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTranscriptNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByUser returns the user's transcripts, newest first. The text column
// is omitted; listings only need identity and dates.
func (r *TranscriptRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Transcript, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, created_at, indexed_at
		 FROM transcripts WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transcripts := make([]*domain.Transcript, 0)
	for rows.Next() {
		var t domain.Transcript
		if err := rows.Scan(&t.ID, &t.UserID, &t.CreatedAt, &t.IndexedAt); err != nil {
			return nil, err
		}
		transcripts = append(transcripts, &t)
	}
	return transcripts, rows.Err()
}

// DeleteOwned deletes the transcript if it belongs to userID. Chunk rows go
// with it via ON DELETE CASCADE.
func (r *TranscriptRepository) DeleteOwned(ctx context.Context, transcriptID, userID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM transcripts WHERE id = $1 AND user_id = $2`,
		transcriptID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTranscriptNotFound
	}
	return nil
}

func (r *TranscriptRepository) MarkIndexed(ctx context.Context, transcriptID string, indexedAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE transcripts SET indexed_at = $2 WHERE id = $1`,
		transcriptID, indexedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTranscriptNotFound
	}
	return nil
}

// ListUnindexed returns transcripts whose chunks never reached the vector
// index, oldest first so retries drain in upload order.
func (r *TranscriptRepository) ListUnindexed(ctx context.Context, limit int) ([]*domain.Transcript, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, text, created_at, indexed_at
		 FROM transcripts WHERE indexed_at IS NULL ORDER BY created_at ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTranscriptRows(rows)
}

// ListAll returns every transcript with its full text, for index rebuilds.
func (r *TranscriptRepository) ListAll(ctx context.Context) ([]*domain.Transcript, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, text, created_at, indexed_at
		 FROM transcripts ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTranscriptRows(rows)
}

func scanTranscriptRows(rows pgx.Rows) ([]*domain.Transcript, error) {
	transcripts := make([]*domain.Transcript, 0)
	for rows.Next() {
		var t domain.Transcript
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.CreatedAt, &t.IndexedAt); err != nil {
			return nil, err
		}
		transcripts = append(transcripts, &t)
	}
	return transcripts, rows.Err()
}
