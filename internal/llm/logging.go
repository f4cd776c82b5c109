package llm

import (
	"errors"
	"time"

	"mathgen-backend/internal/shared/metrics"
	"mathgen-backend/internal/shared/telemetry"
)

// LogCall records a finished backend call in the structured log and the provider metrics.
func LogCall(name Name, model string, start time.Time, usage Usage, err error) {
	fields := map[string]any{
		"provider":      string(name),
		"model":         model,
		"duration_ms":   time.Since(start).Milliseconds(),
		"input_tokens":  usage.InputTokens,
		"output_tokens": usage.OutputTokens,
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if errors.Is(err, ErrNotConfigured) {
			outcome = "not_configured"
		}
		fields["error"] = err
		telemetry.Warn("llm.call", fields)
	} else {
		telemetry.Info("llm.call", fields)
	}
	metrics.ProviderCalls.WithLabelValues(string(name), outcome).Inc()
}
