package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
)

// RequestLogger 用 zap 记录请求，替代 gin.Logger
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		switch {
		case status >= 500:
			logger.Error("%s %s %d %s", c.Request.Method, path, status, latency)
		case status >= 400:
			logger.Warn("%s %s %d %s", c.Request.Method, path, status, latency)
		default:
			logger.Debug("%s %s %d %s", c.Request.Method, path, status, latency)
		}
	}
}
