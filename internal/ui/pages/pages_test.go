package pages

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cwxsss/inquisition-panel/internal/accountconfig"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
	"github.com/cwxsss/inquisition-panel/internal/ui/auth"
)

func render(t *testing.T, name string, data any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(name, data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render(%s) вернул ошибку: %v", name, err)
	}
	return buf.String()
}

func sampleAccount() model.Account {
	return model.Account{
		ID:         7,
		Name:       "博士",
		Account:    "13800000000",
		Freeze:     model.FlagOn,
		Server:     model.ServerBilibili,
		TaskType:   model.TaskDaily,
		Refresh:    2,
		Agent:      model.Some("3"),
		ExpireTime: "2020-01-01T00:00:00.000Z",
		San:        model.Some("120/135"),
	}
}

// TestRender_AllPages рендерит каждую страницу с типичными данными.
func TestRender_AllPages(t *testing.T) {
	acc := sampleAccount()
	region := "cn-east"
	expire := "2030-01-01T00:00:00.000Z"
	pager := NewPager("/admin/users", url.Values{}, 1, 3, 25)
	layout := func(r role.Role, title, active string) Layout {
		l := NewLayout("zh", title, r, active)
		l.Path = "/x"
		return l
	}

	cases := map[string]any{
		Login: LoginData{
			Layout:   Layout{Lang: "en", Title: "title.login"},
			Roles:    role.All,
			Selected: role.User,
		},
		Placeholder: PlaceholderData{Layout: Layout{Lang: "zh", Title: "title.placeholder"}},
		UserDashboard: UserDashboardData{
			Layout:       layout(role.User, "title.user_dashboard", "dashboard"),
			Announcement: &model.Announcement{Title: "维护", Context: "今晚维护"},
			Status:       "作战中",
			Account:      &acc,
			San:          "120/135",
		},
		UserAccount: AccountFormData{
			Layout:  layout(role.User, "title.user_account", "account"),
			Action:  "/user/account",
			Account: acc,
			Editor:  accountconfig.DefaultEditor(),
		},
		UserLogs: LogsData{
			Layout: layout(role.User, "title.user_logs", "logs"),
			Logs: pagination.Page[model.LogEntry]{Current: 1, Pages: 1, Total: 1, Records: []model.LogEntry{
				{ID: 1, Level: "INFO", TaskType: model.TaskDaily, Title: "开始", Time: "2024-05-01T10:00:00.000Z", ImageURL: "https://img/1.png"},
			}},
			Pager: pager,
		},
		UserSettings: SettingsData{
			Layout:  layout(role.User, "title.user_settings", "settings"),
			Account: &acc,
			Token:   &auth.TokenInfo{Subject: "13800000000", ExpiresAt: time.Now().Add(time.Hour)},
			Servers: Servers,
		},
		AdminDashboard: AdminDashboardData{
			Layout: layout(role.Admin, "title.admin_dashboard", "dashboard"),
			Stats:  &model.Statistics{NewUserNum: 3, MonthIncome: 12.5, DayIncome: 1, PayedUserNum: 2},
		},
		AdminUsers: AccountListData{
			Layout:    layout(role.Admin, "title.admin_users", "users"),
			Accounts:  pagination.Page[model.Account]{Current: 1, Pages: 3, Total: 25, Records: []model.Account{acc}},
			Pager:     pager,
			TaskTypes: model.TaskTypes,
			Now:       time.Now(),
		},
		AdminUserForm: AccountFormData{
			Layout:  layout(role.Admin, "title.admin_user_edit", "users"),
			Action:  "/admin/users/7/edit",
			Editing: true,
			Basic:   true,
			Expire:  true,
			Account: acc,
			Editor:  accountconfig.DefaultEditor(),
			Back:    "/admin/users",
		},
		AdminAgents: AgentsData{
			Layout: layout(role.Admin, "title.admin_agents", "agents"),
			Agents: pagination.Page[model.ProUser]{Records: []model.ProUser{{ID: 1, Username: "agent", Balance: 10, Discount: 0.8, Delete: 1}}},
			Pager:  pager,
		},
		AdminTasks: TasksData{
			Layout: layout(role.Admin, "title.admin_tasks", "tasks"),
			Tab:    model.QueueRunning,
			Tabs:   model.QueueTabs,
			Locked: []model.LockTask{{DeviceToken: "dev-1", Account: model.LockedAccount{ID: 7, Name: "博士"}}},
		},
		AdminDevices: DevicesData{
			Layout: layout(role.Admin, "title.admin_devices", "devices"),
			Filter: "active",
			Devices: pagination.Page[model.Device]{Records: []model.Device{
				{ID: 1, DeviceName: "d1", DeviceToken: "t1", Region: &region, ExpireTime: &expire},
				{ID: 2, DeviceName: "d2", DeviceToken: "t2", Delete: 1},
			}},
			Pager: pager,
		},
		AdminCDK: CDKData{
			Layout: layout(role.Admin, "title.admin_cdk", "cdk"),
			CDKs:   pagination.Page[model.CDK]{Records: []model.CDK{{CDK: "ABC", Type: model.CDKRogue, Param: 30, IsAgent: 1, Agent: 3}}},
			Pager:  pager,
			Types:  model.CDKTypes,
		},
		AdminLogs: LogsData{
			Layout:    layout(role.Admin, "title.admin_logs", "logs"),
			Pager:     pager,
			CanDelete: true,
			Account:   "138",
		},
		AdminSettings: SettingsData{
			Layout:       layout(role.Admin, "title.admin_settings", "settings"),
			AuditEnabled: true,
			Audit:        []model.AuditEntry{{Endpoint: "/updateAccount", Role: "admin", Outcome: model.AuditOK, CreatedAt: time.Now()}},
		},
		ProUserDashboard: ProUserDashboardData{
			Layout:   layout(role.ProUser, "title.prouser_dashboard", "dashboard"),
			Info:     &model.ProUser{Username: "agent", Balance: 5},
			SubUsers: pagination.Page[model.Account]{Total: 1, Records: []model.Account{acc}},
			Expiring: []model.Account{acc},
		},
		ProUserSubUsers: AccountListData{
			Layout:    layout(role.ProUser, "title.prouser_subusers", "subusers"),
			Accounts:  pagination.Page[model.Account]{Records: []model.Account{acc}},
			Pager:     pager,
			SubFilter: "all",
			Filters:   model.SubUserFilters,
			Now:       time.Now(),
		},
		ProUserSubUserForm: AccountFormData{
			Layout:  layout(role.ProUser, "title.prouser_subuser_edit", "subusers"),
			Action:  "/prouser/subusers/7/edit",
			Editing: true,
			Basic:   true,
			Account: acc,
			Editor:  accountconfig.DefaultEditor(),
		},
		ProUserCDK: CDKData{
			Layout: layout(role.ProUser, "title.prouser_cdk", "cdk"),
			Pager:  pager,
			Types:  model.CDKTypes,
			Agent:  true,
		},
		ProUserSettings: SettingsData{
			Layout: layout(role.ProUser, "title.prouser_settings", "settings"),
			Info:   &model.ProUser{Username: "agent", Permission: model.ProPermission},
		},
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if !Has(name) {
				t.Fatalf("страница %q не зарегистрирована", name)
			}
			html := render(t, name, data)
			if !strings.Contains(html, "<!DOCTYPE html>") {
				t.Error("страница не обёрнута в layout")
			}
		})
	}
}

func TestRender_FlashAndNav(t *testing.T) {
	l := NewLayout("zh", "title.admin_users", role.Admin, "users")
	l.Flash = &Flash{Kind: "error", Title: "操作失败", Text: "余额不足"}
	html := render(t, AdminUsers, AccountListData{Layout: l, TaskTypes: model.TaskTypes})

	for _, want := range []string{"toast-error", "余额不足", `href="/admin/users"`, `class="active"`} {
		if !strings.Contains(html, want) {
			t.Errorf("страница не содержит %q", want)
		}
	}
}

func TestRender_PlaceholderWithoutNav(t *testing.T) {
	html := render(t, Placeholder, PlaceholderData{Layout: Layout{Lang: "zh", Title: "title.placeholder"}})
	if !strings.Contains(html, "请先登录") {
		t.Error("заглушка не содержит 请先登录")
	}
	if strings.Contains(html, `class="sidebar"`) {
		t.Error("заглушка не должна показывать навигацию")
	}
}

func TestRender_EditorHiddenState(t *testing.T) {
	ed := accountconfig.DefaultEditor()
	html := render(t, UserAccount, AccountFormData{
		Layout: NewLayout("zh", "title.user_account", role.User, "account"),
		Action: "/user/account",
		Editor: ed,
	})
	for _, want := range []string{`name="config_json"`, `name="active_json"`, `name="notice_json"`, `name="fight_count"`, `value="fight_add"`} {
		if !strings.Contains(html, want) {
			t.Errorf("редактор не содержит %q", want)
		}
	}
}

func TestRender_UnknownPagePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Render() неизвестной страницы не вызвал panic")
		}
	}()
	Render("nope", nil)
}

func TestNewPager(t *testing.T) {
	q := url.Values{"keyword": {"abc"}, "current": {"3"}, "goto": {"x"}, "max": {"9"}}
	p := NewPager("/admin/users", q, 3, 9, 85)

	if p.Prev == "" || p.Next == "" {
		t.Fatalf("Prev/Next пусты: %+v", p)
	}
	prev, err := url.Parse(p.Prev)
	if err != nil {
		t.Fatal(err)
	}
	if prev.Path != "/admin/users" {
		t.Errorf("Prev path = %q", prev.Path)
	}
	pq := prev.Query()
	if pq.Get("current") != "2" || pq.Get("keyword") != "abc" {
		t.Errorf("Prev query = %q", prev.RawQuery)
	}
	if pq.Has("goto") || pq.Has("max") {
		t.Errorf("Prev содержит goto/max: %q", prev.RawQuery)
	}

	var nums []int
	for _, it := range p.Items {
		nums = append(nums, it.N)
		if it.Active != (it.N == 3) {
			t.Errorf("Items[%d].Active = %v", it.N, it.Active)
		}
	}
	if len(nums) != 5 || nums[0] != 1 || nums[4] != 5 {
		t.Errorf("Items = %v, ожидается [1 2 3 4 5]", nums)
	}

	want := []Hidden{{"keyword", "abc"}, {"current", "3"}, {"max", "9"}}
	if len(p.Hidden) != len(want) {
		t.Fatalf("Hidden = %v, ожидается %v", p.Hidden, want)
	}
	for i := range want {
		if p.Hidden[i] != want[i] {
			t.Errorf("Hidden[%d] = %v, ожидается %v", i, p.Hidden[i], want[i])
		}
	}

	// Исходные параметры не изменяются
	if q.Get("current") != "3" {
		t.Error("NewPager изменил параметры вызывающего")
	}
}

func TestNewPager_Edges(t *testing.T) {
	first := NewPager("/x", nil, 1, 1, 0)
	if first.Prev != "" || first.Next != "" {
		t.Errorf("для единственной страницы Prev/Next должны быть пустыми: %+v", first)
	}
	last := NewPager("/x", nil, 4, 4, 40)
	if last.Next != "" || last.Prev == "" {
		t.Errorf("на последней странице: Prev=%q Next=%q", last.Prev, last.Next)
	}
	empty := NewPager("/x", nil, 1, 0, 0)
	if empty.Pages != 1 || len(empty.Items) != 1 || empty.Next != "" {
		t.Errorf("пустой список должен давать одну страницу: %+v", empty)
	}
}
