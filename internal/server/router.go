package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/devtrail/devtrail-backend/internal/handlers"
	"github.com/devtrail/devtrail-backend/internal/middleware"
)

type RouterConfig struct {
	AllowOrigins   []string
	AuthMiddleware *middleware.AuthMiddleware

	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	RoadmapHandler  *handlers.RoadmapHandler
	ProgressHandler *handlers.ProgressHandler
	VersionHandler  *handlers.VersionHandler
	CustomHandler   *handlers.CustomRoadmapHandler
	CommentHandler  *handlers.CommentHandler
	ImportHandler   *handlers.ImportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware("devtrail-backend"))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.POST("/auth/register", cfg.AuthHandler.Register)
	api.POST("/auth/login", cfg.AuthHandler.Login)
	api.POST("/auth/refresh", cfg.AuthHandler.Refresh)

	api.GET("/roadmaps", cfg.RoadmapHandler.List)
	api.GET("/roadmaps/search", cfg.RoadmapHandler.Search)
	api.GET("/roadmaps/:roadmap_id", cfg.RoadmapHandler.Get)
	// Node pages mark per-user completion when a principal is present.
	api.GET("/roadmaps/:roadmap_id/nodes", cfg.AuthMiddleware.OptionalAuth(), cfg.RoadmapHandler.ListNodes)
	api.GET("/roadmaps/:roadmap_id/related", cfg.RoadmapHandler.Related)
	api.GET("/roadmaps/:roadmap_id/comments", cfg.CommentHandler.List)

	// Custom roadmap detail is public-or-owner; OptionalAuth supplies the
	// principal when one is present.
	api.GET("/custom/:roadmap_id", cfg.AuthMiddleware.OptionalAuth(), cfg.CustomHandler.Get)

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/auth/logout", cfg.AuthHandler.Logout)

	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.GET("/user/dashboard", cfg.UserHandler.GetDashboard)
	protected.GET("/user/progress", cfg.ProgressHandler.GetProgress)
	protected.GET("/user/progress/:roadmap_id", cfg.ProgressHandler.GetRoadmapProgress)
	protected.GET("/user/recommendations", cfg.RoadmapHandler.Recommendations)

	protected.POST("/roadmaps/:roadmap_id/progress/:node_id", cfg.ProgressHandler.SetProgress)
	protected.POST("/roadmaps/:roadmap_id/comments", cfg.CommentHandler.Add)
	protected.POST("/roadmaps/:roadmap_id/clone", cfg.CustomHandler.Clone)

	protected.GET("/custom", cfg.CustomHandler.List)
	protected.POST("/custom", cfg.CustomHandler.Create)
	protected.PUT("/custom/:roadmap_id", cfg.CustomHandler.Update)
	protected.DELETE("/custom/:roadmap_id", cfg.CustomHandler.Delete)
	protected.POST("/custom/:roadmap_id/nodes", cfg.CustomHandler.AddNode)
	protected.PUT("/custom/:roadmap_id/nodes/reorder", cfg.CustomHandler.ReorderNodes)
	protected.PUT("/custom/:roadmap_id/nodes/:node_id", cfg.CustomHandler.UpdateNode)
	protected.DELETE("/custom/:roadmap_id/nodes/:node_id", cfg.CustomHandler.DeleteNode)
	protected.POST("/custom/:roadmap_id/nodes/:node_id/links", cfg.CustomHandler.AddLink)
	protected.DELETE("/custom/:roadmap_id/nodes/:node_id/links/:link_index", cfg.CustomHandler.DeleteLink)

	// ===============
	// || Admin     ||
	// ===============
	admin := protected.Group("/")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())

	admin.GET("/roadmaps/:roadmap_id/versions", cfg.VersionHandler.List)
	admin.POST("/roadmaps/:roadmap_id/versions", cfg.VersionHandler.Create)
	admin.GET("/roadmaps/:roadmap_id/versions/:version_number", cfg.VersionHandler.Get)
	admin.POST("/roadmaps/:roadmap_id/versions/:version_number/restore", cfg.VersionHandler.Restore)
	admin.POST("/roadmaps/import", cfg.ImportHandler.Run)

	return router
}
