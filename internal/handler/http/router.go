package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/health"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/middleware"
)

// NewRouter creates a chi router with all stock synchronization routes registered.
func NewRouter(
	fulfillment FulfillmentService,
	settings SettingsService,
	stock StockReader,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("stocksync"))
	r.Use(middleware.Tracing("stocksync"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	orderHandler := NewOrderHandler(fulfillment, logger)
	settingsHandler := NewSettingsHandler(settings, logger)
	stockHandler := NewStockHandler(stock, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Status transitions
		r.Post("/orders/{orderID}/status", orderHandler.UpdateStatus)
		r.Post("/orders/status", orderHandler.BulkUpdateStatus)

		// Role status configuration
		r.Get("/settings/stock", settingsHandler.GetSettings)
		r.Put("/settings/stock", settingsHandler.UpdateSettings)

		// Stock read side
		r.Get("/products/{productID}/stock", stockHandler.GetStock)
		r.Get("/products/{productID}/movements", stockHandler.ListMovements)
	})

	return r
}
