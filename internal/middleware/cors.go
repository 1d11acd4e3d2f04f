package middleware

import (
	"net/http"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/config"

	"github.com/gin-gonic/gin"
)

func CORS() gin.HandlerFunc {
	cfg := config.GetConfig()

	allowed := make(map[string]bool, len(cfg.Server.CORSOrigins))
	for _, origin := range cfg.Server.CORSOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
