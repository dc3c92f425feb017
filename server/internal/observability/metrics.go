package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Completion results used as the "result" label.
const (
	CompletionOK            = "ok"
	CompletionEmpty         = "empty"
	CompletionUpstreamError = "upstream_error"
	CompletionCanceled      = "canceled"
)

var (
	// HTTP metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lmchat_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lmchat_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Completion metrics
	completionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lmchat_completions_total",
			Help: "Total number of completion streams by result",
		},
		[]string{"result"},
	)

	completionTokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lmchat_completion_tokens_total",
			Help: "Total number of tokens relayed to clients",
		},
	)

	activeStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lmchat_active_streams",
			Help: "Number of completion streams in flight",
		},
	)

	initOnce sync.Once
)

// InitMetrics registers the collectors with the default registry.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			completionsTotal,
			completionTokensTotal,
			activeStreams,
		)
	})
}

// MetricsHandler returns an HTTP handler for Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records HTTP request metrics.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCompletion records the outcome of one completion stream.
func RecordCompletion(result string, tokens int) {
	completionsTotal.WithLabelValues(result).Inc()
	completionTokensTotal.Add(float64(tokens))
}

// StreamStarted increments the in-flight stream gauge; call the returned func when done.
func StreamStarted() func() {
	activeStreams.Inc()
	return activeStreams.Dec
}
