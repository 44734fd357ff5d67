package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatlearn/internal/config"
	"chatlearn/internal/dialog"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(cfg *config.Config, reg *dialog.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"host": cfg.Server.Host,
				"port": cfg.Server.Port,
			},
			"databases": cfg.Databases,
			"dialog": gin.H{
				"defaultService": cfg.Dialog.DefaultService,
				"services":       reg.Services(),
			},
		})
	}
}

// GET /actions
func actionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"actions": dialog.Actions()})
}
