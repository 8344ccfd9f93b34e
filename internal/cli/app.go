package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/sitelens/sitelens/internal/config"
	"github.com/sitelens/sitelens/internal/database"
	"github.com/sitelens/sitelens/internal/domain"
	"github.com/sitelens/sitelens/internal/index"
	"github.com/sitelens/sitelens/internal/openai"
	"github.com/sitelens/sitelens/internal/service"
	"github.com/sitelens/sitelens/internal/source"
)

// App bundles the wired collaborators shared by every command: config,
// embedding client, index backend and the two services on top of them.
type App struct {
	Config    *config.Config
	Retrieval *config.RetrievalConfig
	Logger    zerolog.Logger
	Embedder  *openai.Client
	Index     index.Index
	Ingest    *service.IngestService
	Search    *service.RetrievalService

	pool *pgxpool.Pool
}

// BuildApp loads configuration and wires the full service graph. When migrate
// is true and the pgvector backend is selected, pending schema migrations are
// applied first.
func BuildApp(ctx context.Context, migrateDB bool) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	retrieval, err := config.LoadRetrieval(cfg.RetrievalConfigPath)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Debug)

	if !cfg.HasOpenAI() {
		return nil, domain.NewConfigurationError("OPENAI_API_KEY is required")
	}
	embedder := openai.NewClient(cfg.OpenAIAPIKey)

	app := &App{
		Config:    cfg,
		Retrieval: retrieval,
		Logger:    logger,
		Embedder:  embedder,
	}

	if err := app.buildIndex(ctx, migrateDB); err != nil {
		return nil, err
	}

	sources, err := app.buildSources(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Ingest = service.NewIngestService(sources, embedder, app.Index, retrieval, logger)
	app.Search = service.NewRetrievalService(embedder, app.Index, retrieval, logger)

	return app, nil
}

// Close releases pooled resources. Safe to call on a partially built app.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func (a *App) buildIndex(ctx context.Context, migrateDB bool) error {
	switch a.Retrieval.Index.Backend {
	case config.IndexBackendPGVector:
		if !a.Config.HasDatabase() {
			return domain.NewConfigurationError("DATABASE_URL is required for the pgvector backend")
		}
		pool, err := database.NewPool(ctx, database.Config{URL: a.Config.DatabaseURL})
		if err != nil {
			return domain.NewIndexUnavailable(err)
		}
		a.pool = pool
		if migrateDB {
			if err := runMigrations(a.Config.DatabaseURL, a.Logger); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		a.Index = index.NewPGVector(pool)

	case config.IndexBackendQdrant:
		if !a.Config.HasQdrant() {
			return domain.NewConfigurationError("QDRANT_URL is required for the qdrant backend")
		}
		qdrant := index.NewQdrant(index.QdrantConfig{
			URL:        a.Config.QdrantURL,
			APIKey:     a.Config.QdrantAPIKey,
			Collection: a.Retrieval.Index.Collection,
		})
		if err := qdrant.EnsureCollection(ctx, a.Embedder.Dimensions()); err != nil {
			return err
		}
		a.Index = qdrant

	default:
		a.Index = index.NewMemory()
	}
	return nil
}

func (a *App) buildSources(ctx context.Context) ([]source.Source, error) {
	var sources []source.Source
	for _, src := range a.Retrieval.Sources {
		switch {
		case src.Dir != "":
			sources = append(sources, source.NewFS(src.Dir, src.MetadataDir, src.PDFDerived))
		case src.S3Prefix != "":
			if !a.Config.HasS3() {
				return nil, domain.NewConfigurationError("S3 credentials are required for s3_prefix sources")
			}
			s3src, err := source.NewS3(ctx, source.S3Config{
				Endpoint:        a.Config.S3Endpoint,
				Region:          a.Config.S3Region,
				AccessKeyID:     a.Config.S3AccessKey,
				SecretAccessKey: a.Config.S3SecretKey,
				Bucket:          a.Config.S3Bucket,
				UsePathStyle:    true,
			}, src.S3Prefix, src.PDFDerived)
			if err != nil {
				return nil, err
			}
			sources = append(sources, s3src)
		}
	}
	return sources, nil
}

func runMigrations(databaseURL string, logger zerolog.Logger) error {
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
		logger.Info().Msg("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else {
		logger.Info().Uint("version", version).Msg("migrations: database is up to date")
	}

	return nil
}
