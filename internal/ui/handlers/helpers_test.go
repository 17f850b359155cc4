package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/backend"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/ui/auth"
	uimiddleware "github.com/cwxsss/inquisition-panel/internal/ui/middleware"
	"github.com/cwxsss/inquisition-panel/internal/ui/pages"
)

const testToken = "tok-0123456789abcdef"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// call: запрос, полученный mock-бэкендом.
type call struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
	Body   map[string]any
}

// fakeBackend отвечает вместо 云控 по пути запроса и ведёт журнал вызовов.
type fakeBackend struct {
	t      *testing.T
	srv    *httptest.Server
	mu     sync.Mutex
	routes map[string]string
	calls  []call
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{t: t, routes: map[string]string{}}
	fb.srv = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.srv.Close)
	return fb
}

// reply задаёт тело ответа на путь.
func (fb *fakeBackend) reply(path, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[path] = body
}

// ok: ответ code 200 с data.
func (fb *fakeBackend) ok(path, data string) {
	fb.reply(path, `{"code":200,"msg":"ok","data":`+data+`}`)
}

// fail: прикладная ошибка с code и msg.
func (fb *fakeBackend) fail(path string, code int, msg string) {
	body, _ := json.Marshal(map[string]any{"code": code, "msg": msg, "data": nil})
	fb.reply(path, string(body))
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	c := call{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Auth: r.Header.Get("Authorization")}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &c.Body)
	}

	fb.mu.Lock()
	fb.calls = append(fb.calls, c)
	body, ok := fb.routes[r.URL.Path]
	fb.mu.Unlock()

	if !ok {
		body = `{"code":200,"msg":"ok","data":null}`
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

// called возвращает вызовы пути.
func (fb *fakeBackend) called(path string) []call {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var out []call
	for _, c := range fb.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// total: число всех вызовов.
func (fb *fakeBackend) total() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.calls)
}

// fakeAudit запоминает записи журнала.
type fakeAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
	enabled bool
}

func (a *fakeAudit) Record(_ context.Context, e model.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *fakeAudit) Recent(context.Context, int) ([]model.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.AuditEntry(nil), a.entries...), nil
}

func (a *fakeAudit) Enabled() bool { return a.enabled }

func (a *fakeAudit) last(t *testing.T) model.AuditEntry {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		t.Fatal("журнал аудита пуст")
	}
	return a.entries[len(a.entries)-1]
}

// env: окружение теста обработчиков.
type env struct {
	backend *fakeBackend
	audit   *fakeAudit
	flash   *FlashStore
	deps    Deps
}

func newEnv(t *testing.T) *env {
	t.Helper()
	fb := newFakeBackend(t)
	audit := &fakeAudit{}
	flash := NewFlashStore("test-secret", false, testLogger())
	client := apiclient.New(fb.srv.URL, time.Second, testLogger())
	return &env{
		backend: fb,
		audit:   audit,
		flash:   flash,
		deps:    Deps{API: backend.New(client), Audit: audit, Flash: flash, Logger: testLogger()},
	}
}

// request создаёт запрос с сессией роли r (пустой token, без входа).
func request(t *testing.T, method, target string, form url.Values, token string, r role.Role) *http.Request {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	m := auth.NewManager(auth.NewMemoryStorage())
	m.Hydrate()
	if token != "" {
		if err := m.Login(token, r); err != nil {
			t.Fatalf("Login: %v", err)
		}
	}
	return req.WithContext(uimiddleware.WithSession(req.Context(), m))
}

// withID добавляет параметр маршрута {id}.
func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// popFlash читает flash, установленный ответом rec.
func popFlash(t *testing.T, store *FlashStore, rec *httptest.ResponseRecorder) *pages.Flash {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.Name == FlashCookieName && c.MaxAge > 0 {
			req.AddCookie(c)
		}
	}
	return store.Pop(httptest.NewRecorder(), req)
}

// expectRedirect проверяет 303 на location.
func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("статус = %d, ожидается 303; тело: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("Location = %q, ожидается %q", got, location)
	}
}

// expectFlash проверяет заголовок отложенного уведомления.
func expectFlash(t *testing.T, store *FlashStore, rec *httptest.ResponseRecorder, kind, title string) *pages.Flash {
	t.Helper()
	f := popFlash(t, store, rec)
	if f == nil {
		t.Fatalf("flash не установлен, ожидается %q", title)
	}
	if f.Kind != kind || f.Title != title {
		t.Errorf("flash = %+v, ожидается %s/%q", *f, kind, title)
	}
	return f
}
