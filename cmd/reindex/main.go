package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"busline/internal/config"
	"busline/internal/database"
	"busline/internal/logger"
	"busline/internal/models"
	"busline/internal/repository"
	"busline/internal/search"
)

// JourneySource - источник рейсов для переиндексации
type JourneySource interface {
	ListAll(ctx context.Context) ([]models.Journey, error)
}

// JourneyIndex - индекс, в который копируются рейсы
type JourneyIndex interface {
	IndexJourney(ctx context.Context, j *models.Journey) error
	Refresh(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

func main() {
	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "Overall reindex timeout")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Starting journey reindex", "index", cfg.Elasticsearch.Index)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	es, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	if err := reindex(ctx, repository.NewJourneyRepository(db), es); err != nil {
		logger.Fatal("Reindex failed", "error", err)
	}

	slog.Info("Reindex completed successfully")
}

func reindex(ctx context.Context, source JourneySource, index JourneyIndex) error {
	start := time.Now()

	// Step 1: все рейсы из Postgres
	journeys, err := source.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list journeys: %w", err)
	}
	slog.Info("Loaded journeys from database", "count", len(journeys))

	// Step 2: документы перезаписываются по id
	for i := range journeys {
		if err := index.IndexJourney(ctx, &journeys[i]); err != nil {
			return fmt.Errorf("failed to index journey %s: %w", journeys[i].ID, err)
		}
	}

	// Step 3: делаем документы видимыми для поиска
	if err := index.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to refresh index: %w", err)
	}

	count, err := index.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	if count < int64(len(journeys)) {
		return fmt.Errorf("index holds %d documents, expected at least %d", count, len(journeys))
	}

	slog.Info("Journeys indexed", "count", len(journeys), "documents", count, "duration", time.Since(start))
	return nil
}
