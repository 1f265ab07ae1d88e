// Package main provides a CLI tool for running the wallet schema migrations.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/config"
	"github.com/bimakw/wallet-ranker/internal/infrastructure/database"
	"github.com/bimakw/wallet-ranker/internal/logger"
)

func main() {
	action := flag.String("action", "up", "Migration action: up, down, version")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	defer log.Sync()

	databaseURL := cfg.Database.URL()

	switch *action {
	case "up":
		if err := database.RunMigrations(databaseURL, log); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}

	case "down":
		if err := database.RollbackMigrations(databaseURL); err != nil {
			log.Fatal("Rollback failed", zap.Error(err))
		}
		log.Info("Rolled back one migration")

	case "version":
		version, dirty, err := database.MigrationVersion(databaseURL)
		if err != nil {
			log.Fatal("Failed to read schema version", zap.Error(err))
		}
		log.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))

	default:
		log.Fatal("Unknown action", zap.String("action", *action))
	}
}
