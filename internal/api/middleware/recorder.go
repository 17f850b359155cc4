package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// statusRecorder запоминает статус и размер ответа. Один экземпляр
// на запрос используется и логированием, и метриками.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap нужен http.ResponseController (Flush и SetWriteDeadline в SSE).
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// record оборачивает w, если он ещё не обёрнут внешним middleware.
func record(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// routeOf возвращает шаблон маршрута chi ("/admin/users/{id}/start").
// Для несовпавших путей возвращает нормализованный путь.
func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" && p != "/*" {
			return p
		}
	}
	return normalizePath(r.URL.Path)
}

// areaOf определяет раздел консоли по первому сегменту пути: user, admin,
// prouser, api, static, health; остальное считается public.
func areaOf(path string) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	switch seg {
	case "user", "admin", "prouser", "api", "static", "health":
		return seg
	case "metrics":
		return "health"
	}
	return "public"
}

// normalizePath сводит пути к шаблонам, чтобы число значений
// лейбла route оставалось ограниченным.
//
//	/admin/users/42/start → /admin/users/{id}/start
//	/api/showAccount      → /api/{endpoint}
//	/static/app.css       → /static/*
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/"):
		return "/api/{endpoint}"
	case strings.HasPrefix(path, "/static/"):
		return "/static/*"
	case strings.HasPrefix(path, "/lang/"):
		return "/lang/{code}"
	}

	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s != "" && isDigits(s) {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
