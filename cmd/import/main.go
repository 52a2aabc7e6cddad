package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/devtrail/devtrail-backend/internal/config"
	"github.com/devtrail/devtrail-backend/internal/db"
	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/repos"
	"github.com/devtrail/devtrail-backend/internal/services"
)

// Imports the roadmap catalog from a directory of JSON files. Reruns are
// safe: roadmaps that already exist are skipped.
func main() {
	var dir string
	flag.StringVar(&dir, "dir", "", "catalog directory (default: ROADMAP_DATA_DIR)")
	flag.Parse()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	if dir == "" {
		dir = cfg.RoadmapDataDir
	}

	dbService, err := db.NewFromEnv(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Fatal("Auto migration failed", "error", err)
	}
	gdb := dbService.DB()

	roadmapRepo := repos.NewRoadmapRepo(gdb, log)
	roadmapNodeRepo := repos.NewRoadmapNodeRepo(gdb, log)
	importer := services.NewImporterService(gdb, log, roadmapRepo, roadmapNodeRepo)

	result, err := importer.ImportCatalog(context.Background(), dir)
	if err != nil {
		log.Fatal("Import failed", "error", err)
	}
	log.Info("Import complete", "imported", result.Imported, "skipped", result.Skipped)
}
