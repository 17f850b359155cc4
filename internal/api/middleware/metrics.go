// metrics.go содержит метрики входящих запросов: ip_http_requests_total,
// ip_http_request_duration_seconds. Лейбл route содержит шаблон маршрута chi.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ip_http_requests_total",
			Help: "Запросы к консоли по разделу, маршруту и статусу",
		},
		[]string{"area", "method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ip_http_request_duration_seconds",
			Help: "Длительность обработки запросов консоли",
			// Страницы ждут бэкенд 云控: верхние корзины до таймаута клиента
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"area", "method", "route"},
	)
)

// MetricsMiddleware считает запросы и их длительность. Поток
// /events/backend не измеряется по длительности: он живёт минуты.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)

			next.ServeHTTP(rec, r)

			area, route := areaOf(r.URL.Path), routeOf(r)
			httpRequestsTotal.WithLabelValues(area, r.Method, route, strconv.Itoa(rec.status)).Inc()
			if route != "/events/backend" {
				httpRequestDuration.WithLabelValues(area, r.Method, route).Observe(time.Since(start).Seconds())
			}
		})
	}
}
