package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/paramstore/internal/api/shared"
	"github.com/phrazzld/paramstore/internal/platform/logger"
)

// NewTraceMiddleware tags each request with a trace id. The id is echoed in
// the X-Trace-ID header, and handlers find a logger carrying it in the
// request context.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String(logger.TraceIDKey, traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			w.Header().Set("X-Trace-ID", traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
