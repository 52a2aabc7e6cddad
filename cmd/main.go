package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/devtrail/devtrail-backend/internal/config"
	"github.com/devtrail/devtrail-backend/internal/db"
	"github.com/devtrail/devtrail-backend/internal/handlers"
	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/middleware"
	"github.com/devtrail/devtrail-backend/internal/observability"
	"github.com/devtrail/devtrail-backend/internal/repos"
	"github.com/devtrail/devtrail-backend/internal/server"
	"github.com/devtrail/devtrail-backend/internal/services"
)

func main() {
	// Logger
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

	// Config
	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "devtrail-backend",
		Environment: os.Getenv("ENVIRONMENT"),
		Version:     os.Getenv("VERSION"),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(ctx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	// Database
	dbService, err := db.NewFromEnv(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Fatal("Auto migration failed", "error", err)
	}
	gdb := dbService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(gdb, log)
	userTokenRepo := repos.NewUserTokenRepo(gdb, log)
	roadmapRepo := repos.NewRoadmapRepo(gdb, log)
	roadmapNodeRepo := repos.NewRoadmapNodeRepo(gdb, log)
	userProgressRepo := repos.NewUserProgressRepo(gdb, log)
	commentRepo := repos.NewCommentRepo(gdb, log)
	roadmapVersionRepo := repos.NewRoadmapVersionRepo(gdb, log)
	customRoadmapRepo := repos.NewCustomRoadmapRepo(gdb, log)
	customRoadmapNodeRepo := repos.NewCustomRoadmapNodeRepo(gdb, log)

	// Services
	log.Info("Setting up services from main...")
	authService := services.NewAuthService(
		gdb,
		log,
		userRepo,
		userTokenRepo,
		cfg.JWTSecretKey,
		time.Duration(cfg.AccessTokenTTL)*time.Second,
		time.Duration(cfg.RefreshTokenTTL)*time.Second,
	)
	userService := services.NewUserService(gdb, log, userRepo)
	roadmapService := services.NewRoadmapService(gdb, log, roadmapRepo, roadmapNodeRepo, userProgressRepo)
	progressService := services.NewProgressService(gdb, log, roadmapRepo, roadmapNodeRepo, userProgressRepo)
	recommendationService := services.NewRecommendationService(gdb, log, roadmapRepo, userProgressRepo)
	commentService := services.NewCommentService(gdb, log, commentRepo, roadmapRepo, userRepo)
	versionService := services.NewVersionService(gdb, log, roadmapRepo, roadmapNodeRepo, roadmapVersionRepo)
	customService := services.NewCustomRoadmapService(gdb, log, roadmapRepo, roadmapNodeRepo, customRoadmapRepo, customRoadmapNodeRepo)
	importerService := services.NewImporterService(gdb, log, roadmapRepo, roadmapNodeRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, progressService)
	roadmapHandler := handlers.NewRoadmapHandler(roadmapService, recommendationService)
	progressHandler := handlers.NewProgressHandler(progressService)
	versionHandler := handlers.NewVersionHandler(versionService)
	customHandler := handlers.NewCustomRoadmapHandler(customService)
	commentHandler := handlers.NewCommentHandler(commentService)
	importHandler := handlers.NewImportHandler(importerService, cfg.RoadmapDataDir)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AllowOrigins:    cfg.AllowOrigins,
		AuthMiddleware:  authMiddleware,
		AuthHandler:     authHandler,
		UserHandler:     userHandler,
		RoadmapHandler:  roadmapHandler,
		ProgressHandler: progressHandler,
		VersionHandler:  versionHandler,
		CustomHandler:   customHandler,
		CommentHandler:  commentHandler,
		ImportHandler:   importHandler,
	})

	log.Info("Server listening", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server failed", "error", err)
	}
}
