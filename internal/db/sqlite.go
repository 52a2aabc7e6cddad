package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/utils"
)

func NewSqliteService(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "SqliteService")

	path := utils.GetEnv("SQLITE_PATH", "devtrail.db", log)

	serviceLog.Info("Opening sqlite database...", "path", path)
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		serviceLog.Error("Failed to open sqlite database", "error", err)
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := gdb.Exec(`PRAGMA foreign_keys = ON;`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
	}

	return &Service{db: gdb, log: serviceLog}, nil
}
