package main

import (
	"context"
	"flag"
	"os"
	"time"

	"safebites-be/internal/config"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/repository/unitofwork"
	"safebites-be/internal/service"
	"safebites-be/pkg/database"
	"safebites-be/pkg/embedding"
	"safebites-be/pkg/vectorindex"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

func main() {
	restaurant := flag.String("restaurant", "", "only re-embed dishes of this restaurant id")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	db, err := database.NewGormDB(database.GormConfig{
		Driver:     cfg.Database.Driver,
		DSN:        cfg.Database.Connection,
		SQLitePath: cfg.Database.SQLitePath,
	})
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	uowFactory := unitofwork.NewRepositoryFactory(db)

	embeddingProvider, err := embedding.NewEmbeddingProvider(ctx, embedding.Config{
		Provider: cfg.Ai.EmbeddingProvider,
		Model:    cfg.Ai.EmbeddingModel,
		BaseURL:  cfg.Ai.OllamaBaseURL,
		APIKey:   cfg.Keys.OpenAI,
	})
	if err != nil {
		color.Red("Failed to initialize embedding provider: %v", err)
		os.Exit(1)
	}

	var index vectorindex.Index
	if cfg.Vector.Backend == "pgvector" && database.IsPostgres(db) {
		index = vectorindex.NewPgvectorIndex(uowFactory)
	} else {
		chromemIndex, err := vectorindex.NewChromemIndex(cfg.Vector.StorePath, vectorindex.EmbeddingFunc(embeddingProvider))
		if err != nil {
			color.Red("Failed to open vector index: %v", err)
			os.Exit(1)
		}
		index = chromemIndex
	}

	indexService := service.NewIndexService(uowFactory, index, embeddingProvider, logger.NewZapLogger(cfg.App.LogFilePath, false))
	start := time.Now()

	if *restaurant == "" {
		color.Cyan("Rebuilding the whole vector index (%s)...", cfg.Vector.Backend)
		n, err := indexService.Rebuild(ctx)
		if err != nil {
			color.Red("Rebuild failed after %d dishes: %v", n, err)
			os.Exit(1)
		}
		color.Green("Indexed %d dishes in %s", n, time.Since(start).Round(time.Millisecond))
		return
	}

	restaurantId, err := uuid.Parse(*restaurant)
	if err != nil {
		color.Red("Invalid restaurant id: %v", err)
		os.Exit(1)
	}
	color.Cyan("Re-embedding dishes of restaurant %s...", restaurantId)
	n, err := indexService.ReindexRestaurant(ctx, restaurantId)
	if err != nil {
		color.Red("Indexing failed: %v", err)
		os.Exit(1)
	}
	color.Green("Indexed %d dishes in %s", n, time.Since(start).Round(time.Millisecond))
}
