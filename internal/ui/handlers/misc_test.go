package handlers

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cwxsss/inquisition-panel/internal/accountconfig"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/ui/i18n"
	"github.com/cwxsss/inquisition-panel/internal/ui/pages"
)

type staticStatus struct{ online, known bool }

func (s staticStatus) BackendOnline() (bool, bool) { return s.online, s.known }

func TestHandleBackendStatus_StreamsEvents(t *testing.T) {
	h := NewEventsHandler(staticStatus{online: true, known: true}, 20*time.Millisecond, testLogger())
	srv := httptest.NewServer(http.HandlerFunc(h.HandleBackendStatus))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("запрос SSE: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	// Первое событие приходит сразу, второе по тикеру
	sc := bufio.NewScanner(resp.Body)
	events := 0
	for sc.Scan() && events < 2 {
		line := sc.Text()
		if line == "event: backend-status" {
			if !sc.Scan() {
				break
			}
			if data := sc.Text(); data != `data: {"online":true,"known":true}` {
				t.Errorf("data = %q", data)
			}
			events++
		}
	}
	if events < 2 {
		t.Errorf("получено событий %d, ожидается не меньше 2", events)
	}
}

func TestHandleBackendStatus_NilStatus(t *testing.T) {
	h := NewEventsHandler(nil, 0, testLogger())
	if h.interval != DefaultEventsInterval {
		t.Errorf("interval = %v, ожидается %v", h.interval, DefaultEventsInterval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events/backend", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	cancel()
	h.HandleBackendStatus(rec, req)

	if !strings.Contains(rec.Body.String(), `data: {"online":false,"known":false}`) {
		t.Errorf("тело = %q", rec.Body.String())
	}
}

func TestHandleSetLanguage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		target   string
		referer  string
		wantLang string
		wantLoc  string
	}{
		{"en и next", "en", "/lang/en?next=/admin/users", "", "en", "/admin/users"},
		{"неизвестный код", "fr", "/lang/fr", "", "zh", "/"},
		{"внешний next", "en", "/lang/en?next=//evil.example", "", "en", "/"},
		{"referer", "zh", "/lang/zh", "http://example.com/user/logs?current=2", "zh", "/user/logs?current=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("code", tt.code)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rec := httptest.NewRecorder()
			HandleSetLanguage(rec, req)

			expectRedirect(t, rec, tt.wantLoc)
			var lang string
			for _, c := range rec.Result().Cookies() {
				if c.Name == i18n.LangCookieName {
					lang = c.Value
				}
			}
			if lang != tt.wantLang {
				t.Errorf("cookie lang = %q, ожидается %q", lang, tt.wantLang)
			}
		})
	}
}

func TestFlashStore_RoundTrip(t *testing.T) {
	store := NewFlashStore("secret", false, testLogger())
	rec := httptest.NewRecorder()
	store.Set(rec, pages.Flash{Kind: pages.FlashError, Title: "操作失败", Text: "原因"})

	f := popFlash(t, store, rec)
	if f == nil || f.Title != "操作失败" || f.Text != "原因" {
		t.Fatalf("flash = %+v", f)
	}

	// Cookie с чужой подписью отбрасывается
	other := NewFlashStore("other", false, testLogger())
	if got := popFlash(t, other, rec); got != nil {
		t.Errorf("чужая cookie принята: %+v", got)
	}

	// Pop удаляет cookie
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	out := httptest.NewRecorder()
	store.Pop(out, req)
	cookies := out.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("cookie не удалена: %+v", cookies)
	}
}

func TestFlashStore_Nil(t *testing.T) {
	var store *FlashStore
	rec := httptest.NewRecorder()
	store.Set(rec, pages.Flash{Title: "x"})
	if store.Pop(rec, httptest.NewRequest(http.MethodGet, "/", nil)) != nil {
		t.Error("nil-хранилище вернуло уведомление")
	}
}

func TestBackTo(t *testing.T) {
	tests := []struct {
		referer string
		want    string
	}{
		{"", "/def"},
		{"http://example.com/admin/users?current=2", "/admin/users?current=2"},
		{"http://evil.example/admin/users", "/def"},
		{"/local/path", "/local/path"},
		{"javascript:alert(1)", "/def"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		if tt.referer != "" {
			req.Header.Set("Referer", tt.referer)
		}
		if got := backTo(req, "/def"); got != tt.want {
			t.Errorf("backTo(%q) = %q, ожидается %q", tt.referer, got, tt.want)
		}
	}
}

func TestFilterAgents(t *testing.T) {
	agents := []model.ProUser{{Username: "Alpha"}, {Username: "beta"}, {Username: "alphabet"}}
	if got := filterAgents(agents, " ALPHA "); len(got) != 2 {
		t.Errorf("найдено %d, ожидается 2", len(got))
	}
	if got := filterAgents(agents, ""); len(got) != 3 {
		t.Errorf("пустой фильтр отбросил записи: %d", len(got))
	}
}

func TestFilterDevices(t *testing.T) {
	devices := []model.Device{
		{DeviceName: "emu-1", DeviceToken: "AAA"},
		{DeviceName: "emu-2", DeviceToken: "bbb"},
	}
	if got := filterDevices(devices, "aaa"); len(got) != 1 || got[0].DeviceName != "emu-1" {
		t.Errorf("поиск по токену = %+v", got)
	}
	if got := filterDevices(devices, "EMU"); len(got) != 2 {
		t.Errorf("поиск по имени = %+v", got)
	}
}

func TestFilterCDKs(t *testing.T) {
	cdks := []model.CDK{
		{CDK: "AAA-1", Type: model.CDKDaily, Param: 30, IsAgent: 0, Used: 0},
		{CDK: "BBB-2", Type: model.CDKRogue, Param: 7, IsAgent: 1, Agent: 4, Used: 1},
		{CDK: "CCC-3", Type: model.CDKDaily, Param: 7, IsAgent: 1, Agent: 5, Used: 0},
	}
	tests := []struct {
		name   string
		filter pages.CDKFilter
		want   []string
	}{
		{"без фильтров", pages.CDKFilter{Type: "all"}, []string{"AAA-1", "BBB-2", "CCC-3"}},
		{"тип", pages.CDKFilter{Type: model.CDKDaily}, []string{"AAA-1", "CCC-3"}},
		{"подстрока кода", pages.CDKFilter{CDK: "bbb"}, []string{"BBB-2"}},
		{"агентские", pages.CDKFilter{IsAgent: "1"}, []string{"BBB-2", "CCC-3"}},
		{"агент 5", pages.CDKFilter{Agent: "5"}, []string{"CCC-3"}},
		{"неиспользованные", pages.CDKFilter{Used: "0"}, []string{"AAA-1", "CCC-3"}},
		{"параметр", pages.CDKFilter{Param: "7", Used: "0"}, []string{"CCC-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterCDKs(cdks, tt.filter)
			var codes []string
			for _, c := range got {
				codes = append(codes, c.CDK)
			}
			if strings.Join(codes, ",") != strings.Join(tt.want, ",") {
				t.Errorf("результат = %v, ожидается %v", codes, tt.want)
			}
		})
	}
}

func TestAccountFields(t *testing.T) {
	ed := accountconfig.NewEditor(accountconfig.Tree{"a": 1.0}, nil, nil)
	acc := model.Account{Name: "n", Account: "acc", Server: 1, TaskType: model.TaskRogue, ExpireTime: "2030-01-01T00:00:00.000Z"}

	fields := accountFields(acc, ed, false)
	if _, ok := fields["password"]; ok {
		t.Error("пустой пароль включён")
	}
	if _, ok := fields["expireTime"]; ok {
		t.Error("срок включён без withExpire")
	}

	acc.Password = "pw"
	fields = accountFields(acc, ed, true)
	if fields["password"] != "pw" || fields["expireTime"] != acc.ExpireTime {
		t.Errorf("поля = %v", fields)
	}
}
