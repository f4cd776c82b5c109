package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mathgen-backend/internal/shared/telemetry"
)

// ErrorBody is the error object of every failed API response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps ErrorBody as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// context keys copied into error logs when a handler has set them
var contextFields = map[string]string{
	"requestId":      "request_id",
	"userId":         "user_id",
	"problemSetId":   "problem_set_id",
	"generatedSetId": "generated_set_id",
}

// Error aborts the request with the error envelope. Server faults log at error level, client faults at warn.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":  status,
		"code":    code,
		"message": message,
		"path":    c.Request.URL.Path,
		"method":  c.Request.Method,
	}
	for key, field := range contextFields {
		if v := c.GetString(key); v != "" {
			fields[field] = v
		}
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.client_error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}
