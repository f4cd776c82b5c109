package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mathgen-backend/internal/shared/telemetry"
)

// Context keys handlers may set so the request log carries domain ids.
const (
	ProblemSetIDKey   = "problemSetId"
	GeneratedSetIDKey = "generatedSetId"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if id := c.GetString(ProblemSetIDKey); id != "" {
			fields["problem_set_id"] = id
		}
		if id := c.GetString(GeneratedSetIDKey); id != "" {
			fields["generated_set_id"] = id
		}
		telemetry.Info("request.complete", fields)
	}
}
