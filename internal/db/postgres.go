package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/types"
	"github.com/devtrail/devtrail-backend/internal/utils"
)

// Service is the handle every caller gets regardless of which relational
// backend is active; components only ever see the *gorm.DB it exposes.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "devtrail", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &Service{db: gdb, log: serviceLog}, nil
}

// NewFromEnv picks the backend from DB_DRIVER (postgres|sqlite).
func NewFromEnv(log *logger.Logger) (*Service, error) {
	driver := utils.GetEnv("DB_DRIVER", "postgres", log)
	switch driver {
	case "sqlite":
		return NewSqliteService(log)
	default:
		return NewPostgresService(log)
	}
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Roadmap{},
		&types.RoadmapNode{},
		&types.UserProgress{},
		&types.Comment{},
		&types.RoadmapVersion{},
		&types.CustomRoadmap{},
		&types.CustomRoadmapNode{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
