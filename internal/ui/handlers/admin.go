// admin.go содержит страницы роли admin: панель, аккаунты, журнал, настройки.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cwxsss/inquisition-panel/internal/accountconfig"
	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/backend"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
	"github.com/cwxsss/inquisition-panel/internal/ui/auth"
	"github.com/cwxsss/inquisition-panel/internal/ui/pages"
)

// auditPageSize: сколько записей журнала аудита показывает страница настроек.
const auditPageSize = 50

// lookupSize: размер выборки при поиске аккаунта для редактирования.
const lookupSize = 100

// AdminHandler: страницы администратора.
type AdminHandler struct {
	base
	now func() time.Time
}

// NewAdminHandler создаёт новый AdminHandler.
func NewAdminHandler(d Deps) *AdminHandler {
	return &AdminHandler{base: newBase(d, role.Admin, "ui.admin"), now: time.Now}
}

// HandleDashboard: GET /admin/dashboard
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	stats := h.api.Statistics(r.Context(), token)
	ann := h.api.Announcement(r.Context(), token)

	l := h.layout(w, r, "title.admin_dashboard", "dashboard")
	keepFlash(&l, firstFlash(failure(stats, "获取统计失败"), failure(ann, "获取公告失败")))

	data := pages.AdminDashboardData{Layout: l}
	if stats.OK() {
		data.Stats = &stats.Data
	}
	if ann.OK() {
		data.Announcement = &ann.Data
	}
	h.render(w, r, pages.AdminDashboard, data)
}

// HandleAnnouncement: POST /admin/dashboard/announcement
// Поля: title, context.
func (h *AdminHandler) HandleAnnouncement(w http.ResponseWriter, r *http.Request) {
	const back = "/admin/dashboard"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	title, text := formText(r, "title"), formText(r, "context")
	if title == "" || text == "" {
		h.reject(w, r, titleIncomplete, "", back)
		return
	}
	res := h.api.CreateAnnouncement(r.Context(), token, title, text)
	h.finish(w, r, res, mutation{endpoint: "/createAnnouncement", okTitle: "发布成功", failTitle: "发布失败"}, back)
}

// HandleChangePassword: POST /admin/dashboard/password
// Поля: username, oldPassword, newPassword.
func (h *AdminHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	const back = "/admin/dashboard"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	in := model.AdminPasswordChange{
		Username:    formText(r, "username"),
		OldPassword: r.FormValue("oldPassword"),
		NewPassword: r.FormValue("newPassword"),
	}
	if in.Username == "" || in.OldPassword == "" || in.NewPassword == "" {
		h.reject(w, r, titleIncomplete, "", back)
		return
	}
	res := h.api.ChangeAdminPassword(r.Context(), token, in)
	h.finish(w, r, res, mutation{
		endpoint:  "/changeAdminPassword",
		target:    in.Username,
		okTitle:   "密码修改成功",
		failTitle: "密码修改失败",
	}, back)
}

// --- Аккаунты ---

// HandleUsers: GET /admin/users
// Непустой keyword переключает на поиск; иначе список с фильтрами.
func (h *AdminHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	params, pageFlash := pageParams(r)
	filter := backend.AccountFilter{
		TaskType: q.Get("taskType"),
		Freeze:   q.Get("freeze"),
		Expired:  q.Get("expired"),
		Deleted:  q.Get("deleted"),
	}
	keyword := q.Get("keyword")

	var res apiclient.Result[pagination.Page[model.Account]]
	if keyword != "" {
		res = h.api.SearchAccounts(r.Context(), token, params, keyword)
	} else {
		res = h.api.ShowAccounts(r.Context(), token, params, filter)
	}

	l := h.layout(w, r, "title.admin_users", "users")
	keepFlash(&l, firstFlash(pageFlash, failure(res, "获取用户列表失败")))

	data := pages.AccountListData{
		Layout:    l,
		Accounts:  res.Data,
		Filter:    filter,
		Keyword:   keyword,
		TaskTypes: model.TaskTypes,
		Now:       h.now(),
	}
	data.Pager = pages.NewPager("/admin/users", pagerQuery(r), params.Current, res.Data.Pages, res.Data.Total)
	h.render(w, r, pages.AdminUsers, data)
}

// accountAction: POST /admin/users/{id}/<action>.
func (h *AdminHandler) accountAction(
	w http.ResponseWriter, r *http.Request,
	call func(token string, id int) backend.Ack,
	m mutation,
) {
	back := backTo(r, "/admin/users")
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		h.reject(w, r, titleOpFailed, "无效的ID", back)
		return
	}
	m.target = strconv.Itoa(id)
	h.finish(w, r, call(token, id), m, back)
}

// HandleStartAccount: POST /admin/users/{id}/start
func (h *AdminHandler) HandleStartAccount(w http.ResponseWriter, r *http.Request) {
	h.accountAction(w, r, func(token string, id int) backend.Ack {
		return h.api.StartAccount(r.Context(), token, id)
	}, mutation{endpoint: "/startAccountByAdmin", okText: "已开始作战"})
}

// HandleUnfreezeAccount: POST /admin/users/{id}/unfreeze
func (h *AdminHandler) HandleUnfreezeAccount(w http.ResponseWriter, r *http.Request) {
	h.accountAction(w, r, func(token string, id int) backend.Ack {
		return h.api.UnfreezeAccount(r.Context(), token, id)
	}, mutation{endpoint: "/updateAccount", okText: "账户已解冻"})
}

// HandleResetDynamic: POST /admin/users/{id}/reset-dynamic
func (h *AdminHandler) HandleResetDynamic(w http.ResponseWriter, r *http.Request) {
	h.accountAction(w, r, func(token string, id int) backend.Ack {
		return h.api.ResetDynamicInfo(r.Context(), token, id)
	}, mutation{endpoint: "/resetAccountDynamicInfo", okText: "动态信息已重置"})
}

// HandleResetRefresh: POST /admin/users/{id}/reset-refresh
func (h *AdminHandler) HandleResetRefresh(w http.ResponseWriter, r *http.Request) {
	h.accountAction(w, r, func(token string, id int) backend.Ack {
		return h.api.ResetRefresh(r.Context(), token, id)
	}, mutation{endpoint: "/resetRefresh", okText: "刷新次数已重置"})
}

// HandleDeleteAccount: POST /admin/users/{id}/delete
func (h *AdminHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	h.accountAction(w, r, func(token string, id int) backend.Ack {
		return h.api.DelAccount(r.Context(), token, id)
	}, mutation{endpoint: "/delAccount", okTitle: "删除成功", failTitle: "删除失败"})
}

// --- Редактор аккаунта ---

func (h *AdminHandler) newAccountForm(l pages.Layout) pages.AccountFormData {
	return pages.AccountFormData{
		Layout:  l,
		Action:  "/admin/users/new",
		Basic:   true,
		Account: model.Account{Server: model.ServerOfficial, TaskType: model.TaskDaily},
		Days:    model.DefaultAccountDays,
		Editor:  accountconfig.DefaultEditor(),
		Back:    "/admin/users",
	}
}

// HandleNewAccount: GET /admin/users/new
func (h *AdminHandler) HandleNewAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.token(w, r); !ok {
		return
	}
	l := h.layout(w, r, "title.admin_user_new", "users")
	h.render(w, r, pages.AdminUserForm, h.newAccountForm(l))
}

// HandleNewAccountSubmit: POST /admin/users/new
// Обязательны name, account, password; срок = сейчас + days (по умолчанию 30).
func (h *AdminHandler) HandleNewAccountSubmit(w http.ResponseWriter, r *http.Request) {
	const back = "/admin/users/new"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	form, err := parseEditorForm(r)
	if err != nil {
		h.logger.Warn("Некорректная форма редактора", slog.String("error", err.Error()))
		h.reject(w, r, "添加失败", err.Error(), back)
		return
	}

	data := h.newAccountForm(pages.Layout{})
	data.Account = form.Account
	data.Days = form.Days
	data.Editor = form.Editor

	if !form.Save() {
		form.Editor.Apply(form.Op)
		data.Layout = h.layout(w, r, "title.admin_user_new", "users")
		h.render(w, r, pages.AdminUserForm, data)
		return
	}

	if form.Account.Name == "" || form.Account.Account == "" || form.Account.Password == "" {
		data.Layout = h.layout(w, r, "title.admin_user_new", "users")
		data.Layout.Flash = &pages.Flash{Kind: pages.FlashError, Title: titleIncomplete, Text: "名称、账号和密码不能为空"}
		h.render(w, r, pages.AdminUserForm, data)
		return
	}

	in := model.NewAccount{
		Name:       form.Account.Name,
		Account:    form.Account.Account,
		Password:   form.Account.Password,
		Freeze:     model.FlagOff,
		Server:     form.Account.Server,
		TaskType:   form.Account.TaskType,
		ExpireTime: model.ExpireAfter(h.now(), form.Days),
		Config:     form.Editor.Config,
		Active:     form.Editor.Active,
		Notice:     form.Editor.Notice,
	}
	res := h.api.AddAccount(r.Context(), token, in)
	m := mutation{endpoint: "/addAccount", target: in.Account, okTitle: "添加成功", okText: "新用户已成功添加", failTitle: "添加失败"}
	if f := failure(res, m.failTitle); f != nil {
		h.record(r, m, res)
		data.Layout = h.layout(w, r, "title.admin_user_new", "users")
		data.Layout.Flash = f
		h.render(w, r, pages.AdminUserForm, data)
		return
	}
	h.finish(w, r, res, m, "/admin/users")
}

// findAccount ищет аккаунт id через поиск по его логину.
func (h *AdminHandler) findAccount(r *http.Request, token string, id int, account string) (model.Account, *pages.Flash) {
	res := h.api.SearchAccounts(r.Context(), token, pagination.Params{Current: 1, Size: lookupSize}, account)
	if f := failure(res, "获取账号信息失败"); f != nil {
		return model.Account{}, f
	}
	for _, acc := range res.Data.Records {
		if acc.ID == id {
			return acc, nil
		}
	}
	return model.Account{}, &pages.Flash{Kind: pages.FlashError, Title: "获取账号信息失败", Text: "未找到该账号"}
}

func (h *AdminHandler) editForm(l pages.Layout, id int) pages.AccountFormData {
	return pages.AccountFormData{
		Layout:  l,
		Action:  "/admin/users/" + strconv.Itoa(id) + "/edit",
		Editing: true,
		Basic:   true,
		Expire:  true,
		Back:    "/admin/users",
	}
}

// HandleEditAccount: GET /admin/users/{id}/edit?account=<логин>
func (h *AdminHandler) HandleEditAccount(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		h.reject(w, r, titleOpFailed, "无效的ID", "/admin/users")
		return
	}
	acc, f := h.findAccount(r, token, id, r.URL.Query().Get("account"))
	if f != nil {
		h.flash.Set(w, *f)
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	data := h.editForm(h.layout(w, r, "title.admin_user_edit", "users"), id)
	data.Account = acc
	data.Editor = accountconfig.NewEditor(acc.Config, acc.Active, acc.Notice)
	h.render(w, r, pages.AdminUserForm, data)
}

// HandleEditAccountSubmit: POST /admin/users/{id}/edit
// Тело /updateAccount дополняется пустыми config/active/notice.
func (h *AdminHandler) HandleEditAccountSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.reject(w, r, titleOpFailed, "无效的ID", "/admin/users")
		return
	}
	back := "/admin/users/" + strconv.Itoa(id) + "/edit"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	form, err := parseEditorForm(r)
	if err != nil {
		h.logger.Warn("Некорректная форма редактора", slog.String("error", err.Error()))
		h.reject(w, r, "保存失败", err.Error(), "/admin/users")
		return
	}
	form.Account.ID = id

	data := h.editForm(pages.Layout{}, id)
	data.Account = form.Account
	data.Editor = form.Editor

	if !form.Save() {
		form.Editor.Apply(form.Op)
		data.Layout = h.layout(w, r, "title.admin_user_edit", "users")
		h.render(w, r, pages.AdminUserForm, data)
		return
	}

	res := h.api.UpdateAccount(r.Context(), token, id, accountFields(form.Account, form.Editor, true))
	m := mutation{endpoint: "/updateAccount", target: strconv.Itoa(id), okTitle: "保存成功", failTitle: "保存失败"}
	if f := failure(res, m.failTitle); f != nil {
		h.record(r, m, res)
		data.Layout = h.layout(w, r, "title.admin_user_edit", "users")
		data.Layout.Flash = f
		h.render(w, r, pages.AdminUserForm, data)
		return
	}
	h.finish(w, r, res, m, "/admin/users")
}

// --- Журнал ---

// HandleLogs: GET /admin/logs?account=
func (h *AdminHandler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	params, pageFlash := pageParams(r)
	account := r.URL.Query().Get("account")
	res := h.api.Logs(r.Context(), token, params, account)

	l := h.layout(w, r, "title.admin_logs", "logs")
	keepFlash(&l, firstFlash(pageFlash, failure(res, "获取日志失败")))

	data := pages.LogsData{Layout: l, Logs: res.Data, CanDelete: true, Account: account}
	data.Pager = pages.NewPager("/admin/logs", pagerQuery(r), params.Current, res.Data.Pages, res.Data.Total)
	h.render(w, r, pages.AdminLogs, data)
}

// HandleDeleteLog: POST /admin/logs/{id}/delete
func (h *AdminHandler) HandleDeleteLog(w http.ResponseWriter, r *http.Request) {
	back := backTo(r, "/admin/logs")
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		h.reject(w, r, titleOpFailed, "无效的ID", back)
		return
	}
	res := h.api.DelLog(r.Context(), token, id)
	h.finish(w, r, res, mutation{endpoint: "/delLog", target: strconv.Itoa(id), okTitle: "删除成功", failTitle: "删除失败"}, back)
}

// --- Настройки ---

// HandleSettings: GET /admin/settings
// Сведения о токене сессии и последние записи журнала аудита.
func (h *AdminHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	l := h.layout(w, r, "title.admin_settings", "settings")
	data := pages.SettingsData{Layout: l, AuditEnabled: h.audit.Enabled()}

	if info, ok := auth.InspectToken(token); ok {
		data.Token = &info
	}
	if data.AuditEnabled {
		entries, err := h.audit.Recent(r.Context(), auditPageSize)
		if err != nil {
			h.logger.Error("Ошибка чтения журнала аудита", slog.String("error", err.Error()))
			keepFlash(&data.Layout, &pages.Flash{Kind: pages.FlashError, Title: "获取审计日志失败", Text: err.Error()})
		}
		data.Audit = entries
	}
	h.render(w, r, pages.AdminSettings, data)
}
