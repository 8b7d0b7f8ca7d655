package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/lens-lookup-service/internal/delivery/http/handler"
	"github.com/user/lens-lookup-service/internal/delivery/http/middleware"
	"github.com/user/lens-lookup-service/pkg/metrics"
)

// New wires the routes. gatherer backs /metrics; pass prometheus.DefaultGatherer
// in production.
func New(h *handler.Handler, logger *zap.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)

	r.Get("/api/health", h.HandleHealthCheck)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Post("/search", h.HandleSearch)
	r.Post("/release-session", h.HandleReleaseSession)
	r.Post("/close-browser", h.HandleReleaseSession)

	return r
}
