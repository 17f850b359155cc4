// logging.go: журнал входящих запросов консоли (slog).
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cwxsss/inquisition-panel/internal/apiclient"
)

// RequestLogger пишет по записи на запрос. Уровень: 5xx → ERROR,
// 4xx → WARN, иначе INFO; пробы health и /metrics → DEBUG.
// Ставится после RequestID, чтобы в записи был request_id.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "http"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)

			next.ServeHTTP(rec, r)

			area := areaOf(r.URL.Path)
			level := slog.LevelInfo
			switch {
			case rec.status >= 500:
				level = slog.LevelError
			case rec.status >= 400:
				level = slog.LevelWarn
			case area == "health" || area == "static":
				level = slog.LevelDebug
			}
			if !logger.Enabled(r.Context(), level) {
				return
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("route", routeOf(r)),
				slog.String("area", area),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", rec.written),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("request_id", apiclient.RequestIDFromContext(r.Context())),
			}
			if loc := rec.Header().Get("Location"); loc != "" {
				attrs = append(attrs, slog.String("location", loc))
			}
			logger.LogAttrs(r.Context(), level, "HTTP запрос", attrs...)
		})
	}
}
