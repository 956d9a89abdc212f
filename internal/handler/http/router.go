package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/minicart/internal/render"
	"github.com/utafrali/minicart/internal/store"
	"github.com/utafrali/minicart/pkg/health"
	"github.com/utafrali/minicart/pkg/middleware"
)

// ServiceName labels metrics and spans emitted by the router.
const ServiceName = "minicart"

// RouterConfig carries the dependencies of NewRouter.
type RouterConfig struct {
	Store       *store.CartStore
	Formatter   render.Formatter
	Health      *health.Handler
	Logger      *slog.Logger
	CORSOrigins []string
}

// NewRouter creates a chi router with the shop page, the JSON API and the
// operational endpoints registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName, "/health", "/metrics"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(LimitBody)

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Shop page
	page := NewPageHandler(cfg.Store, cfg.Formatter, logger)
	r.Get("/", page.Index)
	r.Post("/cart/add", page.Add)
	r.Post("/cart/remove", page.Remove)

	// JSON API
	cartHandler := NewCartHandler(cfg.Store, cfg.Formatter, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/catalog", cartHandler.ListCatalog)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Delete("/items/{name}", cartHandler.RemoveItem)
			r.Post("/items/{name}/increment", cartHandler.IncrementItem)
		})
	})

	return r
}
