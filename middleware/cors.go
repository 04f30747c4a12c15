package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the web console origin (CORS_ORIGINS, comma separated;
// "*" in development).
func CORSMiddleware() gin.HandlerFunc {
	allowed := strings.Split(os.Getenv("CORS_ORIGINS"), ",")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowOrigin := ""
		for _, o := range allowed {
			o = strings.TrimSpace(o)
			if o == "*" || o == origin {
				allowOrigin = o
				break
			}
		}
		if allowOrigin == "" && os.Getenv("ENVIRONMENT") != "production" {
			allowOrigin = "*"
		}

		if allowOrigin != "" {
			c.Header("Access-Control-Allow-Origin", allowOrigin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
