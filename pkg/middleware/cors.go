package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/docshield/docshield/pkg/configs"
)

// CORSMiddleware CORS中间件.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", "X-Share-Password")

	config.AllowWebSockets = true
	config.AllowFiles = true

	if cfg.Debug || cfg.PublicURL == "" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = []string{cfg.PublicURL}
	}

	return cors.New(config)
}
