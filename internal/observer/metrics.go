package observer

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gitlab.com/timkado/api/lead-console/internal/apperrors"
)

var (
	metricsEnabled = true // Flag to control metric collection

	// Labels for backend API calls
	apiCallLabels = []string{"operation", "status"}
	// Labels for the console's own HTTP surface
	httpLabels = []string{"route", "method", "status"}

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_console_api_requests_total",
			Help: "Total number of requests issued to the lead backend, labeled by operation and status.",
		},
		apiCallLabels,
	)
	APIRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lead_console_api_request_duration_seconds",
			Help:    "Histogram of lead backend request durations.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
		},
		apiCallLabels,
	)
	APIRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_console_api_retries_total",
			Help: "Total number of retried backend reads, labeled by operation.",
		},
		[]string{"operation"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_console_http_requests_total",
			Help: "Total number of dashboard requests served, labeled by route pattern.",
		},
		httpLabels,
	)
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lead_console_http_request_duration_seconds",
			Help:    "Histogram of dashboard request durations.",
			Buckets: prometheus.DefBuckets,
		},
		httpLabels,
	)
)

// Conversation aggregator metrics
var (
	conversationLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_console_conversation_loads_total",
			Help: "Total number of conversation loads, labeled by outcome (ready, errored, stale).",
		},
		[]string{"outcome"},
	)
	conversationSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_console_conversation_sends_total",
			Help: "Total number of reply sends, labeled by outcome (sent, skipped, failed).",
		},
		[]string{"outcome"},
	)
	conversationRegistrySize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lead_console_conversation_registry_size",
		Help: "Current number of conversation aggregators held in memory.",
	})
)

// Bulk status worker pool metrics
var (
	bulkStatusTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_console_bulk_status_tasks_total",
			Help: "Total number of bulk status tasks, labeled by final status.",
		},
		[]string{"status"},
	)
	bulkStatusDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lead_console_bulk_status_duration_seconds",
		Help:    "Histogram of whole bulk status update durations.",
		Buckets: prometheus.DefBuckets,
	})
)

// InitMetrics toggles metric collection. Metrics are registered by promauto
// at package init, so this only flips the collection flag.
func InitMetrics(enabled bool) {
	metricsEnabled = enabled
}

// Enabled reports whether metric collection is on.
func Enabled() bool {
	return metricsEnabled
}

// ObserveAPIRequest records one backend call. statusCode is 0 when the request
// never produced a response.
func ObserveAPIRequest(operation string, statusCode int, duration time.Duration) {
	if !metricsEnabled {
		return
	}
	status := statusLabel(statusCode)
	APIRequestsTotal.WithLabelValues(operation, status).Inc()
	APIRequestDurationSeconds.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// IncAPIRetry increments the retry counter for a backend operation.
func IncAPIRetry(operation string) {
	if !metricsEnabled {
		return
	}
	APIRetriesTotal.WithLabelValues(operation).Inc()
}

// ObserveHTTPRequest records one request served to the dashboard.
func ObserveHTTPRequest(route, method string, statusCode int, duration time.Duration) {
	if !metricsEnabled {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	status := statusLabel(statusCode)
	HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(route, method, status).Observe(duration.Seconds())
}

// IncConversationLoad increments the load counter for the given outcome.
func IncConversationLoad(outcome string) {
	if !metricsEnabled {
		return
	}
	conversationLoadsTotal.WithLabelValues(outcome).Inc()
}

// IncConversationSend increments the send counter for the given outcome.
func IncConversationSend(outcome string) {
	if !metricsEnabled {
		return
	}
	conversationSendsTotal.WithLabelValues(outcome).Inc()
}

// SetConversationRegistrySize sets the number of cached aggregators.
func SetConversationRegistrySize(n int) {
	if !metricsEnabled {
		return
	}
	conversationRegistrySize.Set(float64(n))
}

// IncBulkStatusTask increments the bulk status task counter for a final status.
func IncBulkStatusTask(status string) {
	if !metricsEnabled {
		return
	}
	bulkStatusTasksTotal.WithLabelValues(status).Inc()
}

// ObserveBulkStatusDuration records the time a whole bulk update took.
func ObserveBulkStatusDuration(duration time.Duration) {
	if !metricsEnabled {
		return
	}
	bulkStatusDurationSeconds.Observe(duration.Seconds())
}

// ErrorCategory maps an error to a low-cardinality label.
func ErrorCategory(err error) string {
	switch {
	case err == nil:
		return "none"
	case apperrors.IsValidationError(err), apperrors.IsBadRequestError(err):
		return "validation"
	case apperrors.IsNotFoundError(err):
		return "not_found"
	case apperrors.IsConflictError(err):
		return "conflict"
	case apperrors.IsTimeoutError(err):
		return "timeout"
	case apperrors.IsTransportError(err):
		return "transport"
	case apperrors.IsFatal(err):
		return "decode"
	default:
		return "upstream"
	}
}

// statusLabel keeps status labels to a fixed set.
func statusLabel(code int) string {
	if code <= 0 {
		return "transport_error"
	}
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code)
}
