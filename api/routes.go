package api

import (
	"github.com/gin-gonic/gin"
)

// Config holds application configuration
type Config struct {
	Port            string
	MaxUploadSize   int64
	MattingEndpoint string
	Workers         int
}

func SetupRoutes(r *gin.Engine, config *Config) {
	apiGroup := r.Group("/api/sheet")
	{
		apiGroup.POST("/split", func(c *gin.Context) { HandleSplit(c, config) })
		apiGroup.POST("/icons", func(c *gin.Context) { HandleIcons(c, config) })
	}
}
