package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/ui/pages"
)

func proGET(t *testing.T, target string) *http.Request {
	t.Helper()
	return request(t, http.MethodGet, target, nil, testToken, role.ProUser)
}

func proPOST(t *testing.T, target string, form url.Values) *http.Request {
	t.Helper()
	return request(t, http.MethodPost, target, form, testToken, role.ProUser)
}

func TestProUserDashboard(t *testing.T) {
	e := newEnv(t)
	e.backend.ok("/getProUserInfo", `{"id":4,"username":"agent","permission":"pro","balance":88.5,"discount":0.9}`)
	e.backend.ok("/getSubUserList", `{"current":1,"page":3,"total":27,"records":[{"id":1,"name":"新用户","account":"a1"}]}`)
	e.backend.ok("/getRecentlyExpiredUsers", `[{"id":2,"name":"将到期","account":"a2"}]`)
	h := NewProUserHandler(e.deps)

	rec := httptest.NewRecorder()
	h.HandleDashboard(rec, proGET(t, "/prouser/dashboard"))

	body := rec.Body.String()
	for _, want := range []string{"新用户", "将到期", "27"} {
		if !strings.Contains(body, want) {
			t.Errorf("страница не содержит %q", want)
		}
	}
	calls := e.backend.called("/getSubUserList")
	if len(calls) != 1 || calls[0].Query.Get("type") != "all" || calls[0].Query.Get("size") != "5" {
		t.Errorf("параметры /getSubUserList = %+v", calls)
	}
}

func TestProUserSubUsers_InvalidFilterFallsBack(t *testing.T) {
	e := newEnv(t)
	h := NewProUserHandler(e.deps)

	rec := httptest.NewRecorder()
	h.HandleSubUsers(rec, proGET(t, "/prouser/subusers?type=bogus&keyword=abc"))

	calls := e.backend.called("/getSubUserList")
	if len(calls) != 1 || calls[0].Query.Get("type") != "all" || calls[0].Query.Get("keyword") != "abc" {
		t.Errorf("параметры /getSubUserList = %+v", calls)
	}
}

func TestProUserNewSubUser(t *testing.T) {
	e := newEnv(t)
	e.backend.ok("/getProUserInfo", `{"id":4,"username":"agent"}`)
	h := NewProUserHandler(e.deps)

	form := url.Values{"name": {"子用户"}, "account": {"a1"}, "password": {"pw"}, "server": {"0"}, "days": {"0"}}
	rec := httptest.NewRecorder()
	h.HandleNewSubUser(rec, proPOST(t, "/prouser/subusers/new", form))

	expectFlash(t, e.flash, rec, pages.FlashSuccess, "添加成功")
	calls := e.backend.called("/createSubUserByProUser")
	if len(calls) != 1 {
		t.Fatalf("вызовов = %d", len(calls))
	}
	if calls[0].Body["agent"] != float64(4) || calls[0].Body["days"] != float64(30) {
		t.Errorf("тело = %v", calls[0].Body)
	}
}

func TestProUserNewSubUser_InfoFailure(t *testing.T) {
	e := newEnv(t)
	e.backend.fail("/getProUserInfo", 401, "未授权")
	h := NewProUserHandler(e.deps)

	form := url.Values{"name": {"子用户"}, "account": {"a1"}, "password": {"pw"}}
	rec := httptest.NewRecorder()
	h.HandleNewSubUser(rec, proPOST(t, "/prouser/subusers/new", form))

	expectFlash(t, e.flash, rec, pages.FlashError, titleAuthFailed)
	if n := len(e.backend.called("/createSubUserByProUser")); n != 0 {
		t.Errorf("суб-пользователь создан без профиля агента")
	}
}

func TestProUserRenew(t *testing.T) {
	e := newEnv(t)
	h := NewProUserHandler(e.deps)

	rec := httptest.NewRecorder()
	h.HandleRenew(rec, withID(proPOST(t, "/prouser/subusers/7/renew", url.Values{"months": {"3"}}), "7"))

	f := expectFlash(t, e.flash, rec, pages.FlashSuccess, "续费成功")
	if f.Text != "已成功续费3个月" {
		t.Errorf("текст = %q", f.Text)
	}
	calls := e.backend.called("/renewSubUserDaily")
	if len(calls) != 1 || calls[0].Body["mo"] != float64(3) || calls[0].Body["id"] != float64(7) {
		t.Errorf("тело = %+v", calls)
	}

	rec = httptest.NewRecorder()
	h.HandleRenew(rec, withID(proPOST(t, "/prouser/subusers/7/renew", url.Values{"months": {"0"}}), "7"))
	expectFlash(t, e.flash, rec, pages.FlashError, titleIncomplete)
	if n := len(e.backend.called("/renewSubUserDaily")); n != 1 {
		t.Errorf("продление с months=0 отправлено")
	}
}

func TestProUserSubUserActions(t *testing.T) {
	e := newEnv(t)
	h := NewProUserHandler(e.deps)

	rec := httptest.NewRecorder()
	h.HandleActivateCDK(rec, withID(proPOST(t, "/prouser/subusers/7/cdk", url.Values{"cdk": {"XYZ"}}), "7"))
	expectFlash(t, e.flash, rec, pages.FlashSuccess, "激活成功")

	rec = httptest.NewRecorder()
	h.HandleFight(rec, withID(proPOST(t, "/prouser/subusers/7/fight", url.Values{}), "7"))
	expectFlash(t, e.flash, rec, pages.FlashSuccess, titleOpSuccess)

	rec = httptest.NewRecorder()
	h.HandleStop(rec, withID(proPOST(t, "/prouser/subusers/7/stop", url.Values{}), "7"))
	expectFlash(t, e.flash, rec, pages.FlashSuccess, titleOpSuccess)

	for _, ep := range []string{"/activateSubUserCdk", "/forceSubUserFight", "/forceSubUserStop"} {
		calls := e.backend.called(ep)
		if len(calls) != 1 || calls[0].Body["id"] != float64(7) {
			t.Errorf("%s: %+v", ep, calls)
		}
	}
}

func TestProUserEditSubUser(t *testing.T) {
	e := newEnv(t)
	e.backend.ok("/getSubUserList", `{"current":1,"page":1,"total":1,"records":[{"id":7,"name":"子用户","account":"a1"}]}`)
	h := NewProUserHandler(e.deps)

	rec := httptest.NewRecorder()
	h.HandleEditSubUser(rec, withID(proGET(t, "/prouser/subusers/7/edit?account=a1"), "7"))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `value="子用户"`) {
		t.Fatalf("форма не отрисована: %d", rec.Code)
	}

	form := editorFormValues("save", 0)
	form.Set("name", "改名")
	form.Set("account", "a1")
	form.Set("expireTime", "2030-01-01T00:00:00.000Z")
	rec = httptest.NewRecorder()
	h.HandleEditSubUserSubmit(rec, withID(proPOST(t, "/prouser/subusers/7/edit", form), "7"))

	expectRedirect(t, rec, "/prouser/subusers")
	calls := e.backend.called("/setSubUser")
	if len(calls) != 1 || calls[0].Body["name"] != "改名" || calls[0].Body["id"] != float64(7) {
		t.Fatalf("тело /setSubUser = %+v", calls)
	}
	if _, ok := calls[0].Body["expireTime"]; ok {
		t.Error("агент не меняет срок через /setSubUser")
	}
}

func TestProUserCDK(t *testing.T) {
	e := newEnv(t)
	e.backend.ok("/getProUserInventoryCdk", `{"cdkList":[
		{"id":1,"cdk":"AAA","type":"daily","param":30,"used":0},
		{"id":2,"cdk":"BBB","type":"rouge","param":30,"used":0}]}`)
	h := NewProUserHandler(e.deps)

	rec := httptest.NewRecorder()
	h.HandleCDK(rec, proGET(t, "/prouser/cdk?type=rouge"))
	body := rec.Body.String()
	if !strings.Contains(body, "BBB") || strings.Contains(body, ">AAA<") {
		t.Error("фильтр типа на складе агента не применён")
	}

	rec = httptest.NewRecorder()
	h.HandleNewCDK(rec, proPOST(t, "/prouser/cdk/new", url.Values{"type": {"daily"}, "param": {"30"}, "count": {"2"}}))
	expectFlash(t, e.flash, rec, pages.FlashSuccess, "CDK创建成功")
	calls := e.backend.called("/createCdkByProUser")
	if len(calls) != 1 || calls[0].Body["count"] != float64(2) {
		t.Errorf("тело = %+v", calls)
	}
	if _, ok := calls[0].Body["isAgent"]; ok {
		t.Error("агентский CDK не содержит isAgent")
	}
}

func TestProUserPassword(t *testing.T) {
	tests := []struct {
		name      string
		form      url.Values
		kind      string
		title     string
		wantCalls int
	}{
		{"успех", url.Values{"oldPassword": {"a"}, "newPassword": {"b"}, "confirmPassword": {"b"}}, pages.FlashSuccess, "密码修改成功", 1},
		{"несовпадение", url.Values{"oldPassword": {"a"}, "newPassword": {"b"}, "confirmPassword": {"c"}}, pages.FlashError, "修改失败", 0},
		{"пустое поле", url.Values{"oldPassword": {""}, "newPassword": {"b"}, "confirmPassword": {"b"}}, pages.FlashError, "修改失败", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			h := NewProUserHandler(e.deps)

			rec := httptest.NewRecorder()
			h.HandlePassword(rec, proPOST(t, "/prouser/settings/password", tt.form))

			expectRedirect(t, rec, "/prouser/settings")
			expectFlash(t, e.flash, rec, tt.kind, tt.title)
			if n := len(e.backend.called("/updateProUserPassword")); n != tt.wantCalls {
				t.Errorf("вызовов = %d, ожидается %d", n, tt.wantCalls)
			}
		})
	}
}
