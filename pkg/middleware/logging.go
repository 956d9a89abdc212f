package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/minicart/pkg/logger"
)

// CorrelationIDHeader carries the request correlation ID in both directions.
const CorrelationIDHeader = "X-Correlation-ID"

// RequestLogging tags every request with a correlation ID, echoed back in
// CorrelationIDHeader, and writes one access log line when it completes.
// Server errors log at error level and client errors at warn.
func RequestLogging(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := correlationID(r)
			ctx := logger.WithCorrelationID(r.Context(), id)
			w.Header().Set(CorrelationIDHeader, id)

			sw := capture(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", sw.size),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.String("correlation_id", id),
			}
			if pattern := routePattern(r); pattern != "" {
				attrs = append(attrs, slog.String("route", pattern))
			}
			l.LogAttrs(ctx, accessLevel(sw.status), "http request", attrs...)
		})
	}
}

func correlationID(r *http.Request) string {
	if id := r.Header.Get(CorrelationIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

func accessLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
