package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lucianareynaud/biogpt/internal/annotation"
	"github.com/lucianareynaud/biogpt/internal/api"
	"github.com/lucianareynaud/biogpt/internal/classify"
	"github.com/lucianareynaud/biogpt/internal/config"
	"github.com/lucianareynaud/biogpt/internal/database"
	"github.com/lucianareynaud/biogpt/internal/domain"
	"github.com/lucianareynaud/biogpt/internal/ingest"
	"github.com/lucianareynaud/biogpt/internal/pipeline"
	"github.com/lucianareynaud/biogpt/internal/rag"
	"github.com/lucianareynaud/biogpt/internal/repository"
	"github.com/lucianareynaud/biogpt/pkg/llm"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := config.NewLogger(cfg.Logging)
	logger.WithField("environment", cfg.Environment).Info("Starting biogpt server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	annotations, err := annotation.NewSQLiteStore(cfg.Annotation.Path, cfg.Annotation.CacheSize, logger)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to open annotation store")
	}
	defer annotations.Close()

	results, cleanup, err := buildResultStore(ctx, cfg, logger)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to open result store")
	}
	defer cleanup()

	runs, err := buildRunStore(ctx, cfg, logger)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to connect run store")
	}

	language := classify.Language(cfg.Pipeline.Language)

	orchestrator := pipeline.NewOrchestrator(logger, pipeline.Config{
		Parser:      ingest.NewParser(logger),
		Classifier:  classify.NewClassifier(logger),
		Annotations: annotations,
		Results:     results,
		Runs:        runs,
		BatchSize:   cfg.Pipeline.BatchSize,
		Language:    language,
	})

	generator := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     cfg.LLM.Timeout,
		MaxRetries:  cfg.LLM.MaxRetries,
		Temperature: cfg.LLM.Temperature,
		RateLimit:   cfg.LLM.RateLimit,
	}, logger)

	chat := rag.NewEngine(results, annotations, generator, language, logger)

	server := api.NewServer(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		UploadsDir:   cfg.Uploads.Dir,
		Debug:        cfg.Logging.Level == "debug",
	}, orchestrator, chat, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, draining connections")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithField("error", err.Error()).Fatal("Server failed")
	}
	logger.Info("Server stopped")
}

func buildResultStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (domain.ResultStore, func(), error) {
	switch cfg.Database.Backend {
	case "postgres":
		dbCfg := database.Config{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			Database:    cfg.Database.Database,
			Username:    cfg.Database.Username,
			Password:    cfg.Database.Password,
			SSLMode:     cfg.Database.SSLMode,
			MaxConns:    cfg.Database.MaxConns,
			MinConns:    cfg.Database.MinConns,
			MaxConnLife: cfg.Database.MaxConnLifetime,
			MaxConnIdle: cfg.Database.MaxConnIdleTime,
		}

		migrator, err := database.NewMigrator(dbCfg.URL(), cfg.Database.MigrationsPath, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := migrator.Up(); err != nil {
			migrator.Close()
			return nil, nil, err
		}
		migrator.Close()

		db, err := database.Connect(ctx, dbCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewPostgresResultStore(db.Pool, logger)
		return store, func() { store.Close() }, nil

	default:
		store, err := repository.NewSQLiteResultStore(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
}

func buildRunStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (domain.RunStore, error) {
	if cfg.RunStore.Backend != "redis" {
		return pipeline.NewMemoryRunStore(), nil
	}

	opts, err := redis.ParseURL(cfg.RunStore.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	logger.WithField("addr", opts.Addr).Info("Run store backed by Redis")
	return pipeline.NewRedisRunStore(client, cfg.RunStore.TTL), nil
}
