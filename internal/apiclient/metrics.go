// metrics.go: Prometheus-метрики вызовов бэкенда 云控.
// Регистрирует метрики: ip_backend_requests_total, ip_backend_request_duration_seconds.
package apiclient

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ip_backend_requests_total",
			Help: "Общее количество запросов к бэкенду 云控 по исходу",
		},
		[]string{"endpoint", "outcome"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ip_backend_request_duration_seconds",
			Help:    "Длительность запросов к бэкенду 云控 в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// observe записывает метрики одного вызова.
// Строка запроса в лейбл не попадает.
func observe(endpoint string, outcome Outcome, d time.Duration) {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	backendRequestsTotal.WithLabelValues(endpoint, outcome.String()).Inc()
	backendRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RequestIDHeader: заголовок сквозного идентификатора запроса.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// WithRequestID сохраняет идентификатор запроса в контексте;
// клиент передаёт его бэкенду в заголовке X-Request-Id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext извлекает идентификатор запроса ("" если нет).
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
