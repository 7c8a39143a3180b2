package domain

import (
	"fmt"
	"strings"
	"time"
)

// Transcript is a raw interview transcript owned by a single user.
// Transcripts are immutable after ingestion; updating means deleting and
// re-uploading.
type Transcript struct {
	ID        string
	UserID    string
	Text      string
	CreatedAt time.Time

	// IndexedAt is nil while the transcript's chunks have not yet been
	// written to the vector index. The reindex worker picks these up.
	IndexedAt *time.Time
}

// NewTranscriptID builds a transcript identifier from the owning user and
// the creation time, e.g. "u1_1700000000".
func NewTranscriptID(userID string, createdAt time.Time) string {
	return fmt.Sprintf("%s_%d", userID, createdAt.Unix())
}

// Validate checks the fields required before a transcript can be stored.
func (t *Transcript) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingTranscriptID
	}
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyTranscript
	}
	return nil
}

// Indexed reports whether the transcript's chunks are in the vector index.
func (t *Transcript) Indexed() bool {
	return t.IndexedAt != nil
}
