package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl marks responses as publicly cacheable, usually static assets.
func CacheControl(maxAge time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d, immutable", int(maxAge.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}

// NoStore keeps per-faculty API responses out of shared caches.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "private, no-store")
		c.Next()
	}
}
