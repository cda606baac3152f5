package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggerMiddleware emits one structured line per request after the handler
// chain finishes. Every line carries the active trace ID; authenticated
// requests also carry the resolved user and role, so shopper, seller and
// admin traffic can be told apart in the logs.
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.String("trace_id", GetTraceID(c.Request.Context())),
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user-agent", c.Request.UserAgent()),
		}
		if p, ok := GetPrincipal(c); ok {
			fields = append(fields,
				zap.Int("user_id", p.UserID),
				zap.String("role", string(p.Role)))
		}

		logger.Info("HTTP Request", fields...)
	}
}
