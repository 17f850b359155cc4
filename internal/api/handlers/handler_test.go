package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cwxsss/inquisition-panel/internal/api/middleware"
	"github.com/cwxsss/inquisition-panel/internal/apiclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// seenRequest: запрос, дошедший до фейкового бэкенда.
type seenRequest struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

// newProxy поднимает фейковый бэкенд и роутер с прокси, как в сервере.
func newProxy(t *testing.T, reply string) (http.Handler, *[]seenRequest) {
	t.Helper()
	seen := &[]seenRequest{}
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := seenRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &req.body)
		}
		*seen = append(*seen, req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(backendSrv.Close)

	return proxyRouter(apiclient.New(backendSrv.URL, 5*time.Second, testLogger())), seen
}

func proxyRouter(client *apiclient.Client) http.Handler {
	proxy := NewProxyHandler(client, testLogger())
	r := chi.NewRouter()
	r.With(middleware.RequireBearer(proxy.IsPublic)).Handle("/api/{endpoint}", proxy)
	return r
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("ответ не JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestProxy_ForwardsEnvelope(t *testing.T) {
	h, seen := newProxy(t, `{"code":200,"msg":"ok","data":{"newUserNum":3}}`)

	req := httptest.NewRequest(http.MethodGet, "/api/getStatistics", nil)
	req.Header.Set("Authorization", "Bearer tok-0123456789")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if body["code"] != float64(200) || data["newUserNum"] != float64(3) {
		t.Errorf("тело = %v", body)
	}
	if len(*seen) != 1 || (*seen)[0].path != "/getStatistics" || (*seen)[0].auth != "Bearer tok-0123456789" {
		t.Errorf("запрос к бэкенду = %+v", *seen)
	}
}

func TestProxy_AppFailurePassesThrough(t *testing.T) {
	h, _ := newProxy(t, `{"code":500,"msg":"账号已存在","data":null}`)

	req := httptest.NewRequest(http.MethodPost, "/api/addAccount", strings.NewReader(`{"account":"a"}`))
	req.Header.Set("Authorization", "Bearer tok-0123456789")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, прикладная ошибка отдаётся с 200", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body["code"] != float64(500) || body["msg"] != "账号已存在" {
		t.Errorf("тело = %v", body)
	}
}

func TestProxy_Unauthorized(t *testing.T) {
	h, seen := newProxy(t, `{"code":200,"msg":"","data":null}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/showLockTaskList", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("статус = %d, ожидается 401", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["code"] != float64(401) || body["msg"] != "未授权" || body["data"] != nil {
		t.Errorf("тело = %v", body)
	}
	if len(*seen) != 0 {
		t.Error("запрос без токена дошёл до бэкенда")
	}
}

func TestProxy_LoginIsPublic(t *testing.T) {
	h, seen := newProxy(t, `{"code":200,"msg":"","data":{"token":"tok-0123456789"}}`)

	req := httptest.NewRequest(http.MethodPost, "/api/userLogin", strings.NewReader(`{"account":"138","password":"x"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d", rec.Code)
	}
	if len(*seen) != 1 || (*seen)[0].auth != "" || (*seen)[0].body["account"] != "138" {
		t.Errorf("запрос к бэкенду = %+v", *seen)
	}
}

func TestProxy_TransportFailure(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()
	h := proxyRouter(apiclient.New(url, time.Second, testLogger()))

	req := httptest.NewRequest(http.MethodGet, "/api/showLog", nil)
	req.Header.Set("Authorization", "Bearer tok-0123456789")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("статус = %d, ожидается 500", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body["code"] != float64(500) || body["msg"] != "服务器错误" {
		t.Errorf("тело = %v", body)
	}
}

func TestProxy_UnknownAndMethod(t *testing.T) {
	h, seen := newProxy(t, `{"code":200,"msg":"","data":null}`)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"вне белого списка", http.MethodGet, "/api/dropDatabase", http.StatusNotFound},
		{"неверный метод", http.MethodGet, "/api/delAccount", http.StatusMethodNotAllowed},
		{"POST на GET-эндпоинт", http.MethodPost, "/api/showLog", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			req.Header.Set("Authorization", "Bearer tok-0123456789")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("статус = %d, ожидается %d", rec.Code, tt.want)
			}
		})
	}
	if len(*seen) != 0 {
		t.Errorf("отклонённые запросы дошли до бэкенда: %+v", *seen)
	}
}

func TestProxy_BadJSON(t *testing.T) {
	h, seen := newProxy(t, `{"code":200,"msg":"","data":null}`)

	req := httptest.NewRequest(http.MethodPost, "/api/useCDK", strings.NewReader(`{"cdk":`))
	req.Header.Set("Authorization", "Bearer tok-0123456789")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, ожидается 400", rec.Code)
	}
	if len(*seen) != 0 {
		t.Error("некорректное тело отправлено бэкенду")
	}
}

func TestProxy_UpdateAccountDefaults(t *testing.T) {
	h, seen := newProxy(t, `{"code":200,"msg":"","data":null}`)

	req := httptest.NewRequest(http.MethodPost, "/api/updateAccount",
		strings.NewReader(`{"id":9007199254740993,"name":"n","config":null,"active":{"a":1}}`))
	req.Header.Set("Authorization", "Bearer tok-0123456789")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if len(*seen) != 1 {
		t.Fatalf("запросов к бэкенду = %d", len(*seen))
	}
	body := (*seen)[0].body
	for _, key := range []string{"config", "notice"} {
		if m, ok := body[key].(map[string]any); !ok || len(m) != 0 {
			t.Errorf("%s = %v, ожидается {}", key, body[key])
		}
	}
	if active, _ := body["active"].(map[string]any); active["a"] != float64(1) {
		t.Errorf("active = %v", body["active"])
	}
}

func TestProxy_UpdateAccountKeepsLargeIDs(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/updateAccount",
		strings.NewReader(`{"id":9007199254740993}`))
	data, err := readBody(req, "updateAccount")
	if err != nil {
		t.Fatalf("readBody: %v", err)
	}
	if !strings.Contains(string(data), `"id":9007199254740993`) {
		t.Errorf("id искажён: %s", data)
	}
}

func TestProxy_ShowAccountQuery(t *testing.T) {
	h, seen := newProxy(t, `{"code":200,"msg":"","data":{"current":1,"page":0,"total":0,"records":[]}}`)

	req := httptest.NewRequest(http.MethodGet, "/api/showAccount?taskType=rogue&freeze=&expired=all", nil)
	req.Header.Set("Authorization", "Bearer tok-0123456789")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(*seen) != 1 {
		t.Fatalf("запросов к бэкенду = %d", len(*seen))
	}
	if got := (*seen)[0].query; got != "current=1&size=10&taskType=rogue" {
		t.Errorf("query = %q", got)
	}
}

func TestEndpointsWhitelist(t *testing.T) {
	for _, name := range []string{"userLogin", "showAccount", "updateAccount", "getSubUserList", "useCDK"} {
		if !Known(name) {
			t.Errorf("%s отсутствует в белом списке", name)
		}
	}
	for name, ep := range endpoints {
		if ep.public && !strings.HasSuffix(name, "Login") {
			t.Errorf("%s открыт без токена", name)
		}
	}
}
