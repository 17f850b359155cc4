// user.go содержит страницы роли user: панель, конфигурация аккаунта, журнал, настройки.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/cwxsss/inquisition-panel/internal/accountconfig"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/ui/auth"
	"github.com/cwxsss/inquisition-panel/internal/ui/pages"
)

// UserHandler: страницы конечного пользователя.
type UserHandler struct {
	base
}

// NewUserHandler создаёт новый UserHandler.
func NewUserHandler(d Deps) *UserHandler {
	return &UserHandler{base: newBase(d, role.User, "ui.user")}
}

// HandleDashboard: GET /user/dashboard
// Объявление, статус задач, аккаунт и санити. Ошибка одного запроса
// не мешает показать остальные данные.
func (h *UserHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	ann := h.api.Announcement(ctx, token)
	status := h.api.MyStatus(ctx, token)
	acc := h.api.MyAccount(ctx, token)
	san := h.api.MySan(ctx, token)

	l := h.layout(w, r, "title.user_dashboard", "dashboard")
	keepFlash(&l, firstFlash(
		failure(status, "获取状态失败"),
		failure(acc, "获取账号信息失败"),
		failure(ann, "获取公告失败"),
	))

	data := pages.UserDashboardData{Layout: l, San: san}
	if ann.OK() {
		data.Announcement = &ann.Data
	}
	if status.OK() {
		data.Status = status.Data.Status.Or("")
	}
	if acc.OK() {
		data.Account = &acc.Data
	}
	h.render(w, r, pages.UserDashboard, data)
}

// HandleStart: POST /user/dashboard/start
func (h *UserHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const back = "/user/dashboard"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	res := h.api.StartNow(r.Context(), token)
	h.finish(w, r, res, mutation{endpoint: "/startNow", okText: "已开始作战"}, back)
}

// HandleHalt: POST /user/dashboard/halt
func (h *UserHandler) HandleHalt(w http.ResponseWriter, r *http.Request) {
	const back = "/user/dashboard"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	res := h.api.ForceHalt(r.Context(), token)
	h.finish(w, r, res, mutation{endpoint: "/forceHalt", okText: "已停止作战"}, back)
}

// HandleFreeze: POST /user/dashboard/freeze
// Поле freeze: 1 замораживает, 0 размораживает.
func (h *UserHandler) HandleFreeze(w http.ResponseWriter, r *http.Request) {
	const back = "/user/dashboard"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	freeze := r.FormValue("freeze") == "1"
	res := h.api.SetMyFreeze(r.Context(), token, freeze)

	m := mutation{endpoint: "/unfreezeMyAccount", okText: "账户已解冻"}
	if freeze {
		m = mutation{endpoint: "/freezeMyAccount", okText: "账户已冻结"}
	}
	h.finish(w, r, res, m, back)
}

// HandleAccount: GET /user/account
func (h *UserHandler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	acc := h.api.MyAccount(r.Context(), token)

	l := h.layout(w, r, "title.user_account", "account")
	data := pages.AccountFormData{Layout: l, Action: "/user/account"}
	if f := failure(acc, "获取账号信息失败"); f != nil {
		keepFlash(&data.Layout, f)
		data.Editor = accountconfig.DefaultEditor()
	} else {
		data.Account = acc.Data
		data.Editor = accountconfig.NewEditor(acc.Data.Config, acc.Data.Active, acc.Data.Notice)
	}
	h.render(w, r, pages.UserAccount, data)
}

// HandleAccountSubmit: POST /user/account
func (h *UserHandler) HandleAccountSubmit(w http.ResponseWriter, r *http.Request) {
	const back = "/user/account"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	form, err := parseEditorForm(r)
	if err != nil {
		h.logger.Warn("Некорректная форма редактора", slog.String("error", err.Error()))
		h.reject(w, r, "保存失败", err.Error(), back)
		return
	}

	if !form.Save() {
		form.Editor.Apply(form.Op)
		l := h.layout(w, r, "title.user_account", "account")
		h.render(w, r, pages.UserAccount, pages.AccountFormData{Layout: l, Action: back, Editor: form.Editor})
		return
	}

	res := h.api.UpdateMyAccount(r.Context(), token, form.Editor)
	if f := failure(res, "保存失败"); f != nil {
		h.record(r, mutation{endpoint: "/updateMyAccount"}, res)
		l := h.layout(w, r, "title.user_account", "account")
		l.Flash = f
		h.render(w, r, pages.UserAccount, pages.AccountFormData{Layout: l, Action: back, Editor: form.Editor})
		return
	}
	h.finish(w, r, res, mutation{endpoint: "/updateMyAccount", okTitle: "保存成功"}, back)
}

// HandleLogs: GET /user/logs
func (h *UserHandler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	params, pageFlash := pageParams(r)
	res := h.api.MyLogs(r.Context(), token, params)

	l := h.layout(w, r, "title.user_logs", "logs")
	keepFlash(&l, firstFlash(pageFlash, failure(res, "获取日志失败")))

	data := pages.LogsData{Layout: l, Logs: res.Data}
	data.Pager = pages.NewPager("/user/logs", pagerQuery(r), params.Current, res.Data.Pages, res.Data.Total)
	h.render(w, r, pages.UserLogs, data)
}

// HandleSettings: GET /user/settings
func (h *UserHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	acc := h.api.MyAccount(r.Context(), token)

	l := h.layout(w, r, "title.user_settings", "settings")
	keepFlash(&l, failure(acc, "获取账号信息失败"))

	data := pages.SettingsData{Layout: l, Servers: pages.Servers}
	if acc.OK() {
		data.Account = &acc.Data
	}
	if info, ok := auth.InspectToken(token); ok {
		data.Token = &info
	}
	h.render(w, r, pages.UserSettings, data)
}

// HandleCredentials: POST /user/settings/credentials
// Поля: account, password, server.
func (h *UserHandler) HandleCredentials(w http.ResponseWriter, r *http.Request) {
	const back = "/user/settings"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	in := model.Credentials{
		Account:  formText(r, "account"),
		Password: r.FormValue("password"),
		Server:   formInt(r, "server", model.ServerOfficial),
	}
	if in.Account == "" || in.Password == "" {
		h.reject(w, r, titleIncomplete, "", back)
		return
	}
	res := h.api.UpdateCredentials(r.Context(), token, in)
	h.finish(w, r, res, mutation{
		endpoint:  "/updateAccountAndPassword",
		target:    in.Account,
		okTitle:   "修改成功",
		failTitle: "修改失败",
	}, back)
}

// HandleUseCDK: POST /user/settings/cdk
func (h *UserHandler) HandleUseCDK(w http.ResponseWriter, r *http.Request) {
	const back = "/user/settings"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	cdk := formText(r, "cdk")
	if cdk == "" {
		h.reject(w, r, "请输入CDK码", "", back)
		return
	}
	res := h.api.UseCDK(r.Context(), token, cdk)
	h.finish(w, r, res, mutation{
		endpoint:  "/useCDK",
		target:    cdk,
		okTitle:   "激活成功",
		failTitle: "激活失败",
	}, back)
}
