package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware())

	healthController := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", healthController.Status)

	importController := NewImportController(cfg.Importer, cfg.AuditService, cfg.TaskClient, cfg.SpoolDir, cfg.MaxUploadBytes)
	eventsController := NewEventsController(cfg.Hub)
	resourceController := NewResourceSpreadController(cfg.SpreadRepo)
	craftController := NewCraftSpreadController(cfg.SpreadRepo)
	revisionController := NewRevisionController(cfg.SpreadRepo)
	auditController := NewAuditController(cfg.AuditRepo)

	api := router.Group("/api")
	{
		api.POST("/import/upload", importController.Upload)
		api.GET("/import/events/:fileKey", eventsController.Stream)

		api.GET("/resource-spreads", resourceController.List)
		api.GET("/craft-spreads", craftController.List)
		api.GET("/revisions", revisionController.List)

		api.GET("/audit", auditController.List)
		api.GET("/audit/:fileKey", auditController.ByFileKey)
	}

	return router
}
