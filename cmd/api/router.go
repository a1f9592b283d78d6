package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"github.com/vloginova/finledger/pkg/middleware"
	"github.com/vloginova/finledger/pkg/observability"
)

// SetupRouter configures all routes and returns the HTTP handler.
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	h := deps.IngestHandler
	mux.HandleFunc("POST /v1/sources", h.UploadSource)
	mux.HandleFunc("GET /v1/sources", h.ListSources)
	mux.HandleFunc("DELETE /v1/sources/{id}", h.DeleteSource)
	mux.HandleFunc("POST /v1/sources/{id}/references", h.AddManualReferences)
	mux.HandleFunc("GET /v1/transactions", h.ListTransactions)
	mux.HandleFunc("GET /v1/report", h.Report)
	mux.HandleFunc("GET /v1/articles", h.ListArticles)
	mux.HandleFunc("GET /v1/counterparties", h.ListCounterparties)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var handler http.Handler = mux
	handler = observability.NewMetricsMiddleware(handler)

	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		handler = middleware.NewRateLimit(limiter)(handler)
	}

	tracer := otel.GetTracerProvider().Tracer("finledger/api")
	handler = middleware.NewTracing(tracer)(handler)
	handler = middleware.NewRequestID(handler)

	corsOptions := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}
	if len(deps.Config.Server.CORSOrigins) > 0 {
		corsOptions.AllowedOrigins = deps.Config.Server.CORSOrigins
	}
	handler = cors.New(corsOptions).Handler(handler)

	return handler
}
