package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/n-vangala/interview-insights/internal/api/handlers"
	"github.com/n-vangala/interview-insights/internal/config"
	"github.com/n-vangala/interview-insights/internal/database"
	"github.com/n-vangala/interview-insights/internal/index"
	"github.com/n-vangala/interview-insights/internal/jobs"
	"github.com/n-vangala/interview-insights/internal/openai"
	"github.com/n-vangala/interview-insights/internal/repository"
	"github.com/n-vangala/interview-insights/internal/server"
	"github.com/n-vangala/interview-insights/internal/service"
	"github.com/n-vangala/interview-insights/internal/storage"
	"github.com/n-vangala/interview-insights/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the interview-insights API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{DSN: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("INSIGHTS_OPENAI_API_KEY is required")
	}
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

	transcriptRepo := repository.NewTranscriptRepository(pool)
	transcriptSvc := service.NewTranscriptService(transcriptRepo, llm, idx, service.ChunkConfig{
		ChunkSize: cfg.ChunkSize,
		Overlap:   cfg.ChunkOverlap,
	})
	querySvc := service.NewQueryService(llm, llm, idx, cfg.RetrieveK)

	reindexInterval, err := time.ParseDuration(cfg.ReindexInterval)
	if err != nil {
		return fmt.Errorf("invalid reindex interval %q: %w", cfg.ReindexInterval, err)
	}
	reindexWorker := jobs.NewWorker(jobs.NewReindexWorker(transcriptSvc), reindexInterval)
	go reindexWorker.Start(ctx)
	log.Println("reindex worker started")

	router := server.NewRouter(server.RouterConfig{
		TranscriptHandler: handlers.NewTranscriptHandler(transcriptSvc),
		QueryHandler:      handlers.NewQueryHandler(querySvc),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	reindexWorker.Stop()

	// Flush the in-memory index before exit so nothing since the last
	// request-path persist is lost.
	if err := idx.Persist(ctx); err != nil {
		log.Printf("final index persist failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// buildIndex constructs the vector index named by INSIGHTS_INDEX_BACKEND.
// The memory backend loads its snapshot from disk, mirrored to S3 when
// configured; the postgres backend queries pgvector directly.
func buildIndex(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (index.Index, error) {
	switch cfg.IndexBackend {
	case config.IndexBackendPostgres:
		log.Println("using postgres vector index")
		return repository.NewChunkIndex(pool), nil

	case config.IndexBackendMemory:
		var store index.SnapshotStore = index.NewFileStore(cfg.IndexPath)
		if cfg.HasS3() {
			s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
				Endpoint:        cfg.S3Endpoint,
				Region:          cfg.S3Region,
				AccessKeyID:     cfg.S3AccessKey,
				SecretAccessKey: cfg.S3SecretKey,
				Bucket:          cfg.S3Bucket,
				UsePathStyle:    true,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create S3 client: %w", err)
			}
			if err := s3Client.EnsureBucket(ctx); err != nil {
				return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
			}
			log.Printf("S3 snapshot mirror '%s' ready", cfg.S3Bucket)
			store = index.NewFallbackStore(store, s3Client)
		}

		idx, err := index.LoadMemory(ctx, cfg.EmbeddingDimensions, store)
		if err != nil {
			return nil, err
		}
		log.Printf("memory vector index loaded (%d entries)", idx.Len())
		return idx, nil

	default:
		return nil, fmt.Errorf("unknown index backend %q", cfg.IndexBackend)
	}
}

func runMigrations(databaseURL string) error {
	// golang-migrate needs a database/sql connection
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else {
		log.Printf("migrations: at version %d", version)
	}

	return nil
}
