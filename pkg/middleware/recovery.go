package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/utafrali/minicart/pkg/httputil"
	"github.com/utafrali/minicart/pkg/logger"
)

// Recovery turns a handler panic into a 500 in the standard error envelope.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				ctx := r.Context()
				logger.WithContext(ctx, l).ErrorContext(ctx, "panic recovered",
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				httputil.WriteJSON(w, http.StatusInternalServerError, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:      "INTERNAL_ERROR",
						Message:   "an internal error occurred",
						RequestID: logger.CorrelationIDFromContext(ctx),
					},
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
