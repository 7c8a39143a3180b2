package jobs

import (
	"context"
	"fmt"
)

// Reindexer defines the interface for retrying unindexed transcripts
type Reindexer interface {
	ReindexPending(ctx context.Context) error
}

// ReindexWorker drains transcripts whose chunks never reached the vector
// index, typically after an embedding or persistence failure during upload.
type ReindexWorker struct {
	reindexer Reindexer
}

// NewReindexWorker creates a new ReindexWorker instance
func NewReindexWorker(reindexer Reindexer) *ReindexWorker {
	return &ReindexWorker{reindexer: reindexer}
}

// ProcessJobs implements the JobProcessor interface
func (w *ReindexWorker) ProcessJobs(ctx context.Context) error {
	if err := w.reindexer.ReindexPending(ctx); err != nil {
		return fmt.Errorf("reindex pass failed: %w", err)
	}
	return nil
}
