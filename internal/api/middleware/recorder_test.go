package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestAreaOf(t *testing.T) {
	tests := map[string]string{
		"/admin/users":      "admin",
		"/user":             "user",
		"/prouser/cdk":      "prouser",
		"/api/showAccount":  "api",
		"/health/ready":     "health",
		"/metrics":          "health",
		"/static/css/a.css": "static",
		"/":                 "public",
		"/lang/en":          "public",
		"/events/backend":   "public",
	}
	for in, want := range tests {
		if got := areaOf(in); got != want {
			t.Errorf("areaOf(%q) = %q, ожидается %q", in, got, want)
		}
	}
}

// TestRequestLogger_RoutePattern: после маршрутизации chi в записи
// журнала шаблон маршрута, а не конкретный id.
func TestRequestLogger_RoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := chi.NewRouter()
	r.Use(RequestLogger(logger))
	r.Post("/admin/users/{id}/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin/users/42/start", nil))

	line := buf.String()
	for _, want := range []string{"route=/admin/users/{id}/start", "area=admin", "status=303", "location=/admin/users", "component=http"} {
		if !strings.Contains(line, want) {
			t.Errorf("в записи нет %q: %s", want, line)
		}
	}
}

func TestRequestLogger_ProbesAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if buf.Len() != 0 {
		t.Errorf("проба health записана на уровне INFO: %s", buf.String())
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/user/dashboard", nil))
	if !strings.Contains(buf.String(), "level=INFO") {
		t.Errorf("запрос страницы не записан: %q", buf.String())
	}
}

func TestRecord_ReusesWrapper(t *testing.T) {
	rec := record(httptest.NewRecorder())
	if again := record(rec); again != rec {
		t.Error("повторная обёртка должна возвращать тот же recorder")
	}
	_, _ = rec.Write([]byte("abc"))
	if rec.status != http.StatusOK || rec.written != 3 {
		t.Errorf("status=%d written=%d", rec.status, rec.written)
	}
}
