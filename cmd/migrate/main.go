package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pageza/chefai/backend/config"
	"github.com/pageza/chefai/backend/internal/database"
	"github.com/pageza/chefai/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	version := flag.Bool("version", false, "Print the applied schema version")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}

	switch {
	case *version:
		v, err := database.MigrationVersion(db)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to read schema version")
		}
		fmt.Fprintln(os.Stdout, v)
	case *rollback:
		if err := database.RollbackMigration(db); err != nil {
			logging.Fatal().Err(err).Msg("rollback failed")
		}
		logging.Info().Msg("rolled back last migration")
	default:
		if err := database.RunMigrations(db); err != nil {
			logging.Fatal().Err(err).Msg("migration failed")
		}
		logging.Info().Msg("migrations applied")
	}
}
