package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/n-vangala/interview-insights/internal/config"
	"github.com/n-vangala/interview-insights/internal/database"
	"github.com/n-vangala/interview-insights/internal/openai"
	"github.com/n-vangala/interview-insights/internal/repository"
	"github.com/n-vangala/interview-insights/internal/service"
)

// ReindexCmd returns the reindex command
func ReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the vector index from stored transcripts",
		Long: "Re-chunk and re-embed every transcript in the record store and rewrite " +
			"the vector index. Use after a lost snapshot or suspected index drift.",
		RunE: runReindex,
	}
}

func runReindex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("INSIGHTS_OPENAI_API_KEY is required")
	}

	pool, err := database.NewPool(ctx, database.Config{DSN: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	llm := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      openai.EmbeddingModel(cfg.EmbeddingModel),
		ChatModel:           cfg.ChatModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})

	idx, err := buildIndex(ctx, cfg, pool)
	if err != nil {
		return fmt.Errorf("failed to build vector index: %w", err)
	}

	svc := service.NewTranscriptService(repository.NewTranscriptRepository(pool), llm, idx, service.ChunkConfig{
		ChunkSize: cfg.ChunkSize,
		Overlap:   cfg.ChunkOverlap,
	})

	rebuilt, err := svc.RebuildIndex(ctx)
	if err != nil {
		return fmt.Errorf("rebuild failed after %d transcripts: %w", rebuilt, err)
	}

	log.Printf("rebuilt index from %d transcripts", rebuilt)
	return nil
}
