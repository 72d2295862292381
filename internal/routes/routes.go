package routes

import (
	"net/http"

	"curator/internal/config"
	"curator/internal/controllers"
	"curator/internal/middleware"
	"curator/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter wires the curation API. Routes are matched by method and path
// prefix; anything unmatched is handed to the static file server.
func SetupRouter(st store.Store, cfg *config.Config, log *zap.Logger) *gin.Engine {
	curationController := &controllers.CurationController{
		Store:      st,
		Log:        log,
		SyncImages: cfg.SyncImages,
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(log), gin.Recovery())

	if cfg.AuthEnabled {
		router.Use(middleware.BearerAuth(cfg.AuthSecret))
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	api := router.Group("/api")
	{
		api.POST("/setup", curationController.Setup)
		api.GET("/status", curationController.Status)

		// GET /api/images?status=&search=&limit=
		api.GET("/images", curationController.ListImages)
		api.GET("/images/*rest", curationController.ListImages)

		// POST /api/upload with a JSON array body
		api.POST("/upload", curationController.Upload)
		api.POST("/upload/*rest", curationController.Upload)

		// PUT /api/images/:id with {status} or {data}
		api.PUT("/images", curationController.UpdateImage)
		api.PUT("/images/*rest", curationController.UpdateImage)
	}

	router.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.StaticDir))))

	return router
}
