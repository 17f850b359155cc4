// admin_ops.go содержит страницы администратора: агенты, очередь задач, устройства, CDK.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/backend"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
	"github.com/cwxsss/inquisition-panel/internal/ui/pages"
)

// Значения фильтра устройств.
const (
	devicesActive = "active"
	devicesAll    = "all"
)

// --- Агенты ---

// HandleAgents: GET /admin/agents
// Фильтр по имени применяется к текущей странице ответа бэкенда.
func (h *AdminHandler) HandleAgents(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	params, pageFlash := pageParams(r)
	username := r.URL.Query().Get("username")
	res := h.api.ProUsers(r.Context(), token, params)

	l := h.layout(w, r, "title.admin_agents", "agents")
	keepFlash(&l, firstFlash(pageFlash, failure(res, "获取代理列表失败")))

	agents := res.Data
	agents.Records = filterAgents(agents.Records, username)

	data := pages.AgentsData{Layout: l, Agents: agents, Username: username}
	data.Pager = pages.NewPager("/admin/agents", pagerQuery(r), params.Current, res.Data.Pages, res.Data.Total)
	h.render(w, r, pages.AdminAgents, data)
}

// HandleNewAgent: POST /admin/agents/new
func (h *AdminHandler) HandleNewAgent(w http.ResponseWriter, r *http.Request) {
	const back = "/admin/agents"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	username, password := formText(r, "username"), r.FormValue("password")
	if username == "" || password == "" {
		h.reject(w, r, titleIncomplete, "", back)
		return
	}
	res := h.api.CreateProUser(r.Context(), token, model.NewProUserInput(username, password))
	h.finish(w, r, res, mutation{endpoint: "/createProUser", target: username, okTitle: "添加成功", failTitle: "添加失败"}, back)
}

// HandleUpdateAgent: POST /admin/agents/{id}/update
// Поля: balance, discount, expireTime.
func (h *AdminHandler) HandleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	back := backTo(r, "/admin/agents")
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		h.reject(w, r, titleOpFailed, "无效的ID", back)
		return
	}
	balance, err1 := strconv.ParseFloat(formText(r, "balance"), 64)
	discount, err2 := strconv.ParseFloat(formText(r, "discount"), 64)
	if err1 != nil || err2 != nil {
		h.reject(w, r, "保存失败", "余额和折扣必须是数字", back)
		return
	}
	in := model.ProUserUpdate{ID: id, Balance: balance, Discount: discount, ExpireTime: formText(r, "expireTime")}
	res := h.api.UpdateProUser(r.Context(), token, in)
	h.finish(w, r, res, mutation{endpoint: "/updateProUser", target: strconv.Itoa(id), okTitle: "保存成功", failTitle: "保存失败"}, back)
}

// HandleToggleAgent: POST /admin/agents/{id}/toggle
// Поле disabled: 1 отключает, 0 включает.
func (h *AdminHandler) HandleToggleAgent(w http.ResponseWriter, r *http.Request) {
	back := backTo(r, "/admin/agents")
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		h.reject(w, r, titleOpFailed, "无效的ID", back)
		return
	}
	disabled := r.FormValue("disabled") == "1"
	okText := "代理已启用"
	if disabled {
		okText = "代理已禁用"
	}
	res := h.api.SetProUserDisabled(r.Context(), token, id, disabled)
	h.finish(w, r, res, mutation{endpoint: "/updateProUser", target: strconv.Itoa(id), okText: okText}, back)
}

// --- Очередь задач ---

// HandleTasks: GET /admin/tasks?tab=pending|inProgress|coolingDown
// Загружается только выбранная вкладка.
func (h *AdminHandler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	tab := r.URL.Query().Get("tab")
	switch tab {
	case model.QueuePending, model.QueueRunning, model.QueueCooldown:
	default:
		tab = model.QueuePending
	}

	l := h.layout(w, r, "title.admin_tasks", "tasks")
	data := pages.TasksData{Tab: tab, Tabs: model.QueueTabs}

	switch tab {
	case model.QueueRunning:
		res := h.api.LockTasks(r.Context(), token)
		keepFlash(&l, failure(res, "获取任务失败"))
		data.Locked = res.Data
	case model.QueueCooldown:
		res := h.api.FreezeTasks(r.Context(), token)
		keepFlash(&l, failure(res, "获取任务失败"))
		data.Cooling = res.Data
	default:
		res := h.api.FreeTasks(r.Context(), token)
		keepFlash(&l, failure(res, "获取任务失败"))
		data.Free = res.Data
	}
	data.Layout = l
	h.render(w, r, pages.AdminTasks, data)
}

func (h *AdminHandler) taskAction(
	w http.ResponseWriter, r *http.Request,
	call func(token string, id int) backend.Ack,
	m mutation,
) {
	back := backTo(r, "/admin/tasks")
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

// HandleInsertTask: POST /admin/tasks/{id}/insert
func (h *AdminHandler) HandleInsertTask(w http.ResponseWriter, r *http.Request) {
	h.taskAction(w, r, func(token string, id int) backend.Ack {
		return h.api.TempInsertTask(r.Context(), token, id)
	}, mutation{endpoint: "/tempInsertTask", okText: "已插入队列头部"})
}

// HandleRemoveTask: POST /admin/tasks/{id}/remove
func (h *AdminHandler) HandleRemoveTask(w http.ResponseWriter, r *http.Request) {
	h.taskAction(w, r, func(token string, id int) backend.Ack {
		return h.api.TempRemoveTask(r.Context(), token, id)
	}, mutation{endpoint: "/tempRemoveTask", okText: "已移出队列"})
}

// HandleStartCooled: POST /admin/tasks/{id}/start-now
func (h *AdminHandler) HandleStartCooled(w http.ResponseWriter, r *http.Request) {
	h.taskAction(w, r, func(token string, id int) backend.Ack {
		return h.api.StartCooledDown(r.Context(), token, id)
	}, mutation{endpoint: "/startAccountByAdmin", okText: formText(r, "name") + " 已开始作战"})
}

// HandleUnfreezeTask: POST /admin/tasks/{id}/unfreeze
func (h *AdminHandler) HandleUnfreezeTask(w http.ResponseWriter, r *http.Request) {
	h.taskAction(w, r, func(token string, id int) backend.Ack {
		return h.api.UnfreezeAccount(r.Context(), token, id)
	}, mutation{endpoint: "/updateAccount", okText: formText(r, "name") + " 已解冻"})
}

// HandleUnlockDevice: POST /admin/tasks/unlock (поле token)
func (h *AdminHandler) HandleUnlockDevice(w http.ResponseWriter, r *http.Request) {
	back := backTo(r, "/admin/tasks?tab="+model.QueueRunning)
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	deviceToken := formText(r, "token")
	if deviceToken == "" {
		h.reject(w, r, titleOpFailed, "缺少设备令牌", back)
		return
	}
	res := h.api.ForceUnlockOne(r.Context(), token, deviceToken)
	h.finish(w, r, res, mutation{endpoint: "/forceUnlockOne", target: deviceToken, okText: "设备已解锁"}, back)
}

// HandleUnlockAll: POST /admin/tasks/unlock-all
func (h *AdminHandler) HandleUnlockAll(w http.ResponseWriter, r *http.Request) {
	back := backTo(r, "/admin/tasks?tab="+model.QueueRunning)
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	res := h.api.ForceUnlockAll(r.Context(), token)
	h.finish(w, r, res, mutation{endpoint: "/forceUnlockAll", okText: "全部设备已解锁"}, back)
}

// HandleLoadAll: POST /admin/tasks/load-all
func (h *AdminHandler) HandleLoadAll(w http.ResponseWriter, r *http.Request) {
	back := backTo(r, "/admin/tasks?tab="+model.QueueRunning)
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	res := h.api.ForceLoadAll(r.Context(), token)
	h.finish(w, r, res, mutation{endpoint: "/forceLoadAll", okText: "已重新加载全部任务"}, back)
}

// --- Устройства ---

// HandleDevices: GET /admin/devices?filter=active|all&keyword=
// active показывает загруженные устройства, all показывает весь инвентарь с удалёнными.
func (h *AdminHandler) HandleDevices(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	params, pageFlash := pageParams(r)
	filter := q.Get("filter")
	if filter != devicesAll {
		filter = devicesActive
	}
	keyword := q.Get("keyword")

	l := h.layout(w, r, "title.admin_devices", "devices")
	data := pages.DevicesData{Filter: filter, Keyword: keyword}

	if filter == devicesAll {
		res := h.api.InventoryDevices(r.Context(), token, params)
		keepFlash(&l, firstFlash(pageFlash, failure(res, "获取设备失败")))
		data.Devices = res.Data
		data.Devices.Records = filterDevices(res.Data.Records, keyword)
	} else {
		res := h.api.LoadedDevices(r.Context(), token)
		keepFlash(&l, firstFlash(pageFlash, failure(res, "获取设备失败")))
		data.Devices = pagination.Paginate(filterDevices(res.Data, keyword), params.Current, params.Size)
	}
	data.Layout = l
	data.Pager = pages.NewPager("/admin/devices", pagerQuery(r), params.Current, data.Devices.Pages, data.Devices.Total)
	h.render(w, r, pages.AdminDevices, data)
}

// HandleNewDevice: POST /admin/devices/new
func (h *AdminHandler) HandleNewDevice(w http.ResponseWriter, r *http.Request) {
	const back = "/admin/devices"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	name := formText(r, "deviceName")
	if name == "" {
		h.reject(w, r, titleIncomplete, "", back)
		return
	}
	res := h.api.AddDevice(r.Context(), token, name)
	h.finish(w, r, res, mutation{endpoint: "/addDevice", target: name, okTitle: "添加成功", failTitle: "添加失败"}, back)
}

// deviceUpdate общий для rename и toggle: /updateDevice с id, именем и флагом delete.
func (h *AdminHandler) deviceUpdate(w http.ResponseWriter, r *http.Request, okText string) {
	back := backTo(r, "/admin/devices")
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		h.reject(w, r, titleOpFailed, "无效的ID", back)
		return
	}
	in := model.DeviceUpdate{
		ID:         id,
		DeviceName: formText(r, "deviceName"),
		Delete:     formInt(r, "delete", model.FlagOff),
	}
	if in.DeviceName == "" {
		h.reject(w, r, titleIncomplete, "", back)
		return
	}
	res := h.api.UpdateDevice(r.Context(), token, in)
	h.finish(w, r, res, mutation{endpoint: "/updateDevice", target: strconv.Itoa(id), okText: okText}, back)
}

// HandleRenameDevice: POST /admin/devices/{id}/rename
func (h *AdminHandler) HandleRenameDevice(w http.ResponseWriter, r *http.Request) {
	h.deviceUpdate(w, r, "设备名称已更新")
}

// HandleToggleDevice: POST /admin/devices/{id}/toggle
func (h *AdminHandler) HandleToggleDevice(w http.ResponseWriter, r *http.Request) {
	text := "设备已恢复"
	if r.FormValue("delete") == "1" {
		text = "设备已删除"
	}
	h.deviceUpdate(w, r, text)
}

// --- CDK ---

func cdkFilterFromQuery(r *http.Request) pages.CDKFilter {
	q := r.URL.Query()
	return pages.CDKFilter{
		Type:    q.Get("type"),
		Tag:     strings.TrimSpace(q.Get("tag")),
		CDK:     q.Get("cdk"),
		IsAgent: q.Get("isAgent"),
		Agent:   q.Get("agent"),
		Used:    q.Get("used"),
		Param:   q.Get("param"),
	}
}

// HandleCDK: GET /admin/cdk
// Метка выбирает /checkCDKByTag, иначе /checkCDKByType; остальные фильтры
// и постраничный вывод выполняются локально.
func (h *AdminHandler) HandleCDK(w http.ResponseWriter, r *http.Request) {
	token, ok := h.token(w, r)
	if !ok {
		return
	}
	params, pageFlash := pageParams(r)
	filter := cdkFilterFromQuery(r)

	var res apiclient.Result[model.CDKList]
	switch {
	case filter.Tag != "":
		res = h.api.CDKsByTag(r.Context(), token, filter.Tag)
	case set(filter.Type):
		res = h.api.CDKsByType(r.Context(), token, filter.Type)
	default:
		res = h.api.CDKsByType(r.Context(), token, "")
	}

	l := h.layout(w, r, "title.admin_cdk", "cdk")
	keepFlash(&l, firstFlash(pageFlash, failure(res, "获取CDK失败")))

	data := pages.CDKData{
		Layout: l,
		Filter: filter,
		CDKs:   pagination.Paginate(filterCDKs(res.Data.CDKList, filter), params.Current, params.Size),
		Types:  model.CDKTypes,
	}
	data.Pager = pages.NewPager("/admin/cdk", pagerQuery(r), params.Current, data.CDKs.Pages, data.CDKs.Total)
	h.render(w, r, pages.AdminCDK, data)
}

// cdkInput читает общие поля формы создания CDK.
// Тип обязателен, param и count не меньше 1.
func cdkInput(r *http.Request) (cdkType, tag string, param, count int, ok bool) {
	cdkType = formText(r, "type")
	tag = formText(r, "tag")
	param = formInt(r, "param", 0)
	count = formInt(r, "count", 1)
	ok = model.ValidCDKType(cdkType) && param >= 1 && count >= 1
	return
}

// HandleNewCDK: POST /admin/cdk/new
// Поля: type, param, tag, isAgent, agent, count.
func (h *AdminHandler) HandleNewCDK(w http.ResponseWriter, r *http.Request) {
	const back = "/admin/cdk"
	token, ok := h.mutationToken(w, r, back)
	if !ok {
		return
	}
	cdkType, tag, param, count, ok := cdkInput(r)
	if !ok {
		h.reject(w, r, titleIncomplete, "类型、天数和数量必须有效", back)
		return
	}
	in := model.NewCDK{
		Type:    cdkType,
		Param:   param,
		Tag:     tag,
		IsAgent: r.FormValue("isAgent") == "1",
		Agent:   formInt(r, "agent", 0),
		Count:   count,
	}
	res := h.api.CreateCDK(r.Context(), token, in)
	h.finish(w, r, res, mutation{
		endpoint:  "/createCDK",
		target:    cdkType,
		okTitle:   "CDK创建成功",
		okText:    "已创建" + strconv.Itoa(count) + "个CDK",
		failTitle: "CDK创建失败",
	}, back)
}
