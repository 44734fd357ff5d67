package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatlearn/internal/config"
	"chatlearn/internal/dialog"
)

func SetupRouter(cfg *config.Config, reg *dialog.Registry, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))

	r.GET("/health", healthHandler)
	r.GET("/config", configHandler(cfg, reg))
	r.GET("/actions", actionsHandler)

	// "latest" resolves through the registry to the default service.
	r.POST("/webhooks/dialog/:serviceName", DialogHandler(reg))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Endpoint not found"})
	})
	return r
}
