package http

import (
	"github.com/gin-gonic/gin"

	"github.com/pricemarkup/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		imports := v1.Group("/import")
		{
			imports.POST("/file", handler.ImportFile)
			imports.POST("/text", handler.ImportText)
			imports.POST("/image", handler.ImportImage)
			imports.POST("/url", handler.ImportURL)
		}

		catalog := v1.Group("/catalog")
		{
			catalog.GET("", handler.GetCatalog)
			catalog.POST("", handler.CreateProduct)
			catalog.PUT("/:id", handler.UpdateProduct)
			catalog.DELETE("/:id", handler.DeleteProduct)
			catalog.DELETE("", handler.ClearCatalog)
		}

		settings := v1.Group("/settings")
		{
			settings.GET("", handler.GetSettings)
			settings.PUT("", handler.UpdateSettings)
		}

		lists := v1.Group("/lists")
		{
			lists.GET("", handler.ListSaved)
			lists.POST("", handler.SaveList)
			lists.POST("/:id/restore", handler.RestoreList)
			lists.DELETE("/:id", handler.DeleteList)
			lists.DELETE("", handler.ClearLists)
		}

		v1.GET("/export/text", handler.ExportText)
	}

	return router
}
