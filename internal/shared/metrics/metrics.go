package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mathgen"

var (
	// GenerationsStarted counts pipeline runs by provider and difficulty.
	GenerationsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_started_total",
		Help:      "Total generation pipeline runs started.",
	}, []string{"provider", "difficulty"})

	// GenerationsFailed counts pipeline runs that aborted, by failing stage.
	GenerationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_failed_total",
		Help:      "Total generation pipeline runs that failed.",
	}, []string{"provider", "stage"})

	// GenerationsCompleted counts pipeline runs that produced both artifacts.
	GenerationsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_completed_total",
		Help:      "Total generation pipeline runs completed.",
	}, []string{"provider"})

	// StageDuration observes the wall time of each pipeline stage.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of generation pipeline stages.",
		Buckets:   []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"stage"})

	// ProviderCalls counts provider executions by outcome.
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_calls_total",
		Help:      "Total LLM provider calls.",
	}, []string{"provider", "outcome"})

	// ProgressSubscribers tracks open progress streams.
	ProgressSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "progress_subscribers",
		Help:      "Open server-sent event progress streams.",
	})

	// JanitorRemoved counts stale work directories removed by the janitor.
	JanitorRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "janitor_removed_total",
		Help:      "Stale work directories removed.",
	})

	// PanicsRecovered counts handler panics turned into 500 responses.
	PanicsRecovered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "panics_recovered_total",
		Help:      "Handler panics recovered by middleware.",
	})
)

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
