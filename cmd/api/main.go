package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chefai/backend/config"
	"github.com/pageza/chefai/backend/internal/database"
	"github.com/pageza/chefai/backend/internal/logging"
	"github.com/pageza/chefai/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build server")
	}
	if err := srv.Run(ctx); err != nil {
		logging.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logging.Info().Msg("server stopped")
}
