package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"heat-dispatch/internal/logger"
)

// Logger writes one structured line per request.
func Logger(log logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.NopLogger{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]any{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		if c.Writer.Status() >= 500 {
			log.Errorf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
			return
		}
		log.Infow("request", fields)
	}
}
