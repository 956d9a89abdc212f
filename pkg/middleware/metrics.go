package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by route pattern and status.",
	}, []string{"service", "method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "method", "path", "status"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "HTTP response body size in bytes.",
		Buckets: prometheus.ExponentialBuckets(64, 4, 7),
	}, []string{"service", "method", "path"})

	httpRequestsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "HTTP requests currently being served.",
	}, []string{"service"})
)

// PrometheusMetrics records request count, latency and response size per chi
// route pattern. Unrouted requests share the "unknown" path label.
func PrometheusMetrics(serviceName string) func(next http.Handler) http.Handler {
	inFlight := httpRequestsInFlight.WithLabelValues(serviceName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			inFlight.Inc()
			defer inFlight.Dec()

			sw := capture(w)
			next.ServeHTTP(sw, r)

			path := routePattern(r)
			if path == "" {
				path = "unknown"
			}
			status := strconv.Itoa(sw.status)

			httpRequestsTotal.WithLabelValues(serviceName, r.Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(serviceName, r.Method, path, status).Observe(time.Since(start).Seconds())
			httpResponseSize.WithLabelValues(serviceName, r.Method, path).Observe(float64(sw.size))
		})
	}
}
