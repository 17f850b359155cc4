// prouser.go содержит страницы агента (prouser): панель, суб-пользователи, CDK, настройки.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cwxsss/inquisition-panel/internal/accountconfig"
	"github.com/cwxsss/inquisition-panel/internal/backend"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
	"github.com/cwxsss/inquisition-panel/internal/ui/auth"
	"github.com/cwxsss/inquisition-panel/internal/ui/pages"
)

// recentSubUsers: сколько последних суб-пользователей показывает панель.
const recentSubUsers = 5

// ProUserHandler: страницы агента.
type ProUserHandler struct {
	base
}

// NewProUserHandler создаёт новый ProUserHandler.
func NewProUserHandler(d Deps) *ProUserHandler {
	return &ProUserHandler{base: newBase(d, role.ProUser, "ui.prouser")}
}

// HandleDashboard: GET /prouser/dashboard
func (h *ProUserHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	info := h.api.ProUserInfo(ctx, token)
	subs := h.api.SubUsers(ctx, token, backend.FilterAll, pagination.Params{Current: 1, Size: recentSubUsers}, "")
	expiring := h.api.RecentlyExpired(ctx, token)

	l := h.layout(w, r, "title.prouser_dashboard", "dashboard")
	keepFlash(&l, firstFlash(
		failure(info, "获取代理信息失败"),
		failure(subs, "获取子用户失败"),
		failure(expiring, "获取即将到期用户失败"),
	))

	data := pages.ProUserDashboardData{Layout: l, SubUsers: subs.Data, Expiring: expiring.Data}
	if info.OK() {
		data.Info = &info.Data
	}
	h.render(w, r, pages.ProUserDashboard, data)
}

// HandleSubUsers: GET /prouser/subusers?type=&keyword=
func (h *ProUserHandler) HandleSubUsers(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	params, pageFlash := pageParams(r)
	filter := q.Get("type")
	if !model.ValidSubUserFilter(filter) {
		filter = backend.FilterAll
	}
	keyword := q.Get("keyword")
	res := h.api.SubUsers(r.Context(), token, filter, params, keyword)

	l := h.layout(w, r, "title.prouser_subusers", "subusers")
	keepFlash(&l, firstFlash(pageFlash, failure(res, "获取子用户失败")))

	data := pages.AccountListData{
		Layout:    l,
		Accounts:  res.Data,
		SubFilter: filter,
		Filters:   model.SubUserFilters,
		Keyword:   keyword,
		TaskTypes: model.TaskTypes,
	}
	data.Pager = pages.NewPager("/prouser/subusers", pagerQuery(r), params.Current, res.Data.Pages, res.Data.Total)
	h.render(w, r, pages.ProUserSubUsers, data)
}

// HandleNewSubUser: POST /prouser/subusers/new
// Поля: name, account, password, server, days. Агент берётся из /getProUserInfo.
func (h *ProUserHandler) HandleNewSubUser(w http.ResponseWriter, r *http.Request) {
	const back = "/prouser/subusers"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	in := model.SubUserInput{
		Name:     formText(r, "name"),
		Account:  formText(r, "account"),
		Password: r.FormValue("password"),
		Server:   formInt(r, "server", model.ServerOfficial),
		Days:     formInt(r, "days", model.DefaultAccountDays),
	}
	if in.Name == "" || in.Account == "" || in.Password == "" {
		h.reject(w, r, titleIncomplete, "", back)
		return
	}

	info := h.api.ProUserInfo(r.Context(), token)
	if f := failure(info, "获取代理信息失败"); f != nil {
		h.flash.Set(w, *f)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	res := h.api.CreateSubUser(r.Context(), token, info.Data.ID, in)
	h.finish(w, r, res, mutation{
		endpoint:  "/createSubUserByProUser",
		target:    in.Account,
		okTitle:   "添加成功",
		failTitle: "添加失败",
	}, back)
}

func (h *ProUserHandler) subUserAction(
	w http.ResponseWriter, r *http.Request,
	call func(token string, id int) (backend.Ack, bool),
	m mutation,
) {
	back := backTo(r, "/prouser/subusers")
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		h.reject(w, r, titleOpFailed, "无效的ID", back)
		return
	}
	res, ok := call(token, id)
	if !ok {
		h.reject(w, r, titleIncomplete, "", back)
		return
	}
	m.target = strconv.Itoa(id)
	h.finish(w, r, res, m, back)
}

// HandleRenew: POST /prouser/subusers/{id}/renew (поле months >= 1)
func (h *ProUserHandler) HandleRenew(w http.ResponseWriter, r *http.Request) {
	months := formInt(r, "months", 0)
	h.subUserAction(w, r, func(token string, id int) (backend.Ack, bool) {
		if months < 1 {
			return backend.Ack{}, false
		}
		return h.api.RenewSubUser(r.Context(), token, id, months), true
	}, mutation{
		endpoint:  "/renewSubUserDaily",
		okTitle:   "续费成功",
		okText:    "已成功续费" + strconv.Itoa(months) + "个月",
		failTitle: "续费失败",
	})
}

// HandleActivateCDK: POST /prouser/subusers/{id}/cdk
func (h *ProUserHandler) HandleActivateCDK(w http.ResponseWriter, r *http.Request) {
	cdk := formText(r, "cdk")
	h.subUserAction(w, r, func(token string, id int) (backend.Ack, bool) {
		if cdk == "" {
			return backend.Ack{}, false
		}
		return h.api.ActivateSubUserCDK(r.Context(), token, id, cdk), true
	}, mutation{endpoint: "/activateSubUserCdk", okTitle: "激活成功", failTitle: "激活失败"})
}

// HandleFight: POST /prouser/subusers/{id}/fight
func (h *ProUserHandler) HandleFight(w http.ResponseWriter, r *http.Request) {
	h.subUserAction(w, r, func(token string, id int) (backend.Ack, bool) {
		return h.api.ForceSubUserFight(r.Context(), token, id), true
	}, mutation{endpoint: "/forceSubUserFight", okText: "已开始作战"})
}

// HandleStop: POST /prouser/subusers/{id}/stop
func (h *ProUserHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.subUserAction(w, r, func(token string, id int) (backend.Ack, bool) {
		return h.api.ForceSubUserStop(r.Context(), token, id), true
	}, mutation{endpoint: "/forceSubUserStop", okText: "已停止作战"})
}

func (h *ProUserHandler) editForm(l pages.Layout, id int) pages.AccountFormData {
	return pages.AccountFormData{
		Layout:  l,
		Action:  "/prouser/subusers/" + strconv.Itoa(id) + "/edit",
		Editing: true,
		Basic:   true,
		Back:    "/prouser/subusers",
	}
}

// HandleEditSubUser: GET /prouser/subusers/{id}/edit?account=<логин>
func (h *ProUserHandler) HandleEditSubUser(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		h.reject(w, r, titleOpFailed, "无效的ID", "/prouser/subusers")
		return
	}
	res := h.api.SubUsers(r.Context(), token, backend.FilterAll,
		pagination.Params{Current: 1, Size: lookupSize}, r.URL.Query().Get("account"))
	f := failure(res, "获取账号信息失败")
	var acc model.Account
	if f == nil {
		f = &pages.Flash{Kind: pages.FlashError, Title: "获取账号信息失败", Text: "未找到该账号"}
		for _, a := range res.Data.Records {
			if a.ID == id {
				acc, f = a, nil
				break
			}
		}
	}
	if f != nil {
		h.flash.Set(w, *f)
		http.Redirect(w, r, "/prouser/subusers", http.StatusSeeOther)
		return
	}

	data := h.editForm(h.layout(w, r, "title.prouser_subuser_edit", "subusers"), id)
	data.Account = acc
	data.Editor = accountconfig.NewEditor(acc.Config, acc.Active, acc.Notice)
	h.render(w, r, pages.ProUserSubUserForm, data)
}

// HandleEditSubUserSubmit: POST /prouser/subusers/{id}/edit
func (h *ProUserHandler) HandleEditSubUserSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.reject(w, r, titleOpFailed, "无效的ID", "/prouser/subusers")
		return
	}
	back := "/prouser/subusers/" + strconv.Itoa(id) + "/edit"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	form, err := parseEditorForm(r)
	if err != nil {
		h.logger.Warn("Некорректная форма редактора", slog.String("error", err.Error()))
		h.reject(w, r, "保存失败", err.Error(), "/prouser/subusers")
		return
	}
	form.Account.ID = id

	data := h.editForm(pages.Layout{}, id)
	data.Account = form.Account
	data.Editor = form.Editor

	if !form.Save() {
		form.Editor.Apply(form.Op)
		data.Layout = h.layout(w, r, "title.prouser_subuser_edit", "subusers")
		h.render(w, r, pages.ProUserSubUserForm, data)
		return
	}

	res := h.api.SetSubUser(r.Context(), token, id, accountFields(form.Account, form.Editor, false))
	m := mutation{endpoint: "/setSubUser", target: strconv.Itoa(id), okTitle: "保存成功", failTitle: "保存失败"}
	if f := failure(res, m.failTitle); f != nil {
		h.record(r, m, res)
		data.Layout = h.layout(w, r, "title.prouser_subuser_edit", "subusers")
		data.Layout.Flash = f
		h.render(w, r, pages.ProUserSubUserForm, data)
		return
	}
	h.finish(w, r, res, m, "/prouser/subusers")
}

// HandleCDK: GET /prouser/cdk
func (h *ProUserHandler) HandleCDK(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	params, pageFlash := pageParams(r)
	filter := cdkFilterFromQuery(r)
	// На складе агента нет меток и признака агента.
	filter.Tag, filter.IsAgent, filter.Agent = "", "", ""
	res := h.api.AgentCDKs(r.Context(), token)

	l := h.layout(w, r, "title.prouser_cdk", "cdk")
	keepFlash(&l, firstFlash(pageFlash, failure(res, "获取CDK失败")))

	data := pages.CDKData{
		Layout: l,
		Filter: filter,
		CDKs:   pagination.Paginate(filterCDKs(res.Data.CDKList, filter), params.Current, params.Size),
		Types:  model.CDKTypes,
		Agent:  true,
	}
	data.Pager = pages.NewPager("/prouser/cdk", pagerQuery(r), params.Current, data.CDKs.Pages, data.CDKs.Total)
	h.render(w, r, pages.ProUserCDK, data)
}

// HandleNewCDK: POST /prouser/cdk/new
func (h *ProUserHandler) HandleNewCDK(w http.ResponseWriter, r *http.Request) {
	const back = "/prouser/cdk"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	cdkType, tag, param, count, ok := cdkInput(r)
	if !ok {
		h.reject(w, r, titleIncomplete, "类型、天数和数量必须有效", back)
		return
	}
	in := model.NewAgentCDK{Type: cdkType, Param: param, Tag: tag, Count: count}
	res := h.api.CreateAgentCDK(r.Context(), token, in)
	h.finish(w, r, res, mutation{
		endpoint:  "/createCdkByProUser",
		target:    cdkType,
		okTitle:   "CDK创建成功",
		okText:    "已创建" + strconv.Itoa(count) + "个CDK",
		failTitle: "CDK创建失败",
	}, back)
}

// HandleSettings: GET /prouser/settings
func (h *ProUserHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	info := h.api.ProUserInfo(r.Context(), token)

	l := h.layout(w, r, "title.prouser_settings", "settings")
	keepFlash(&l, failure(info, "获取代理信息失败"))

	data := pages.SettingsData{Layout: l}
	if info.OK() {
		data.Info = &info.Data
	}
	if ti, ok := auth.InspectToken(token); ok {
		data.Token = &ti
	}
	h.render(w, r, pages.ProUserSettings, data)
}

// HandlePassword: POST /prouser/settings/password
// Поля: oldPassword, newPassword, confirmPassword.
func (h *ProUserHandler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	const back = "/prouser/settings"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	oldPassword, newPassword := r.FormValue("oldPassword"), r.FormValue("newPassword")
	if err := backend.ValidatePasswordChange(oldPassword, newPassword, r.FormValue("confirmPassword")); err != nil {
		h.reject(w, r, "修改失败", err.Error(), back)
		return
	}
	res := h.api.UpdateProUserPassword(r.Context(), token, model.PasswordChange{OldPassword: oldPassword, NewPassword: newPassword})
	h.finish(w, r, res, mutation{endpoint: "/updateProUserPassword", okTitle: "密码修改成功", failTitle: "密码修改失败"}, back)
}
