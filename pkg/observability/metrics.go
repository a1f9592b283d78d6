// Package observability exposes Prometheus metrics for the ingestion
// pipeline and the HTTP surface.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SourcesIngested counts workbook sources by final status.
	SourcesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finledger_sources_ingested_total",
			Help: "Total number of ingested workbook sources",
		},
		[]string{"status"},
	)

	// SheetsClassified counts sheets by detected type.
	SheetsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finledger_sheets_classified_total",
			Help: "Total number of classified sheets",
		},
		[]string{"type"},
	)

	// TransactionsExtracted counts extracted transactions.
	TransactionsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "finledger_transactions_extracted_total",
			Help: "Total number of transactions extracted from journals",
		},
	)

	// Resolutions counts counterparty resolution outcomes.
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finledger_counterparty_resolutions_total",
			Help: "Total number of counterparty resolution attempts by outcome",
		},
		[]string{"outcome"},
	)

	// RequestsTotal tracks HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finledger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "code"},
	)

	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finledger_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

// Resolution outcome labels.
const (
	OutcomeMatched  = "matched"
	OutcomeFallback = "fallback"
	OutcomeNotFound = "not_found"
	OutcomeEmpty    = "empty"
)

// NewMetricsMiddleware wraps an HTTP handler with request counting and
// duration tracking.
func NewMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		RequestsTotal.WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
