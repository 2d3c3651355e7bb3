package main

import (
	"context"
	"flag"
	"os"

	"github.com/pageza/chefai/backend/config"
	"github.com/pageza/chefai/backend/internal/database"
	"github.com/pageza/chefai/backend/internal/logging"
	"github.com/pageza/chefai/backend/internal/seed"
	"github.com/pageza/chefai/backend/internal/server"
	"github.com/pageza/chefai/backend/internal/service"
)

func main() {
	file := flag.String("file", "", "YAML corpus to load instead of the built-in one")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx := context.Background()

	inputs, err := loadCorpus(*file)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load corpus")
	}

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Seeding talks to Gemini directly; the embedding cache only helps the running server
	embedder, closer, err := server.NewEmbedder(ctx, cfg, nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create embedder")
	}
	if closer != nil {
		defer closer.Close()
	}

	recipes := service.NewRecipeService(db, embedder, logging.With("recipes"))
	created, err := seed.NewSeeder(db, recipes, logging.With("seed")).Run(ctx, inputs)
	if err != nil {
		logging.Fatal().Err(err).Int("created", created).Msg("seeding failed")
	}
	logging.Info().Int("created", created).Msg("done")
}

func loadCorpus(path string) ([]service.CreateRecipeInput, error) {
	if path == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.Parse(data)
}
