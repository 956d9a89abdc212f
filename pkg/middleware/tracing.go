package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request, continuing any W3C trace context
// sent by the client and returning it in the response headers. Paths under
// skipPrefixes (health probes, /metrics) are not traced.
func Tracing(serviceName string, skipPrefixes ...string) func(http.Handler) http.Handler {
	tracer := otel.Tracer("github.com/utafrali/minicart/" + serviceName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasAnyPrefix(r.URL.Path, skipPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			propagator := otel.GetTextMapPropagator()
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(requestAttributes(r)...),
			)
			defer span.End()
			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			sw := capture(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			// chi fills in the pattern only once routing is done.
			if pattern := routePattern(r); pattern != "" {
				span.SetName(r.Method + " " + pattern)
				span.SetAttributes(semconv.HTTPRoute(pattern))
			}
			span.SetAttributes(semconv.HTTPStatusCode(sw.status))
			if sw.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(sw.status))
			}
		})
	}
}

func requestAttributes(r *http.Request) []attribute.KeyValue {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	} else if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return []attribute.KeyValue{
		semconv.HTTPMethod(r.Method),
		semconv.HTTPTarget(r.URL.RequestURI()),
		semconv.HTTPScheme(scheme),
		semconv.UserAgentOriginal(r.UserAgent()),
		attribute.String("http.client_ip", r.RemoteAddr),
	}
}
