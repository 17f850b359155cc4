package backend

import (
	"context"
	"net/url"

	"github.com/cwxsss/inquisition-panel/internal/accountconfig"
	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
)

// FilterAll: значение фильтра «без ограничения»; в запрос не передаётся.
const FilterAll = "all"

// AccountFilter: фильтры /showAccount.
type AccountFilter struct {
	TaskType string
	Freeze   string
	Expired  string
	Deleted  string
}

// Values возвращает заданные фильтры; пустые и "all" пропускаются.
func (f AccountFilter) Values() url.Values {
	q := url.Values{}
	for _, kv := range [][2]string{
		{"taskType", f.TaskType},
		{"freeze", f.Freeze},
		{"expired", f.Expired},
		{"deleted", f.Deleted},
	} {
		if kv[1] != "" && kv[1] != FilterAll {
			q.Set(kv[0], kv[1])
		}
	}
	return q
}

// Statistics: сводка для панели администратора.
func (a *API) Statistics(ctx context.Context, token string) apiclient.Result[model.Statistics] {
	return getAs[model.Statistics](ctx, a, token, "/getStatistics", nil)
}

// ChangeAdminPassword меняет пароль администратора.
func (a *API) ChangeAdminPassword(ctx context.Context, token string, in model.AdminPasswordChange) Ack {
	return a.post(ctx, token, "/changeAdminPassword", in)
}

// ShowAccounts: постраничный список аккаунтов с фильтрами.
func (a *API) ShowAccounts(ctx context.Context, token string, p pagination.Params, f AccountFilter) apiclient.Result[pagination.Page[model.Account]] {
	q := p.Values()
	for k, v := range f.Values() {
		q[k] = v
	}
	return getAs[pagination.Page[model.Account]](ctx, a, token, "/showAccount", q)
}

// SearchAccounts: поиск аккаунтов по ключевому слову.
func (a *API) SearchAccounts(ctx context.Context, token string, p pagination.Params, keyword string) apiclient.Result[pagination.Page[model.Account]] {
	return getAs[pagination.Page[model.Account]](ctx, a, token, "/searchAccount", pageQuery(p, "keyword", keyword))
}

// AddAccount создаёт аккаунт.
func (a *API) AddAccount(ctx context.Context, token string, in model.NewAccount) Ack {
	return a.post(ctx, token, "/addAccount", in)
}

// UpdatePayloadDefaults дополняет тело /updateAccount пустыми объектами
// config, active и notice, если они не заданы. Исходная map не меняется.
func UpdatePayloadDefaults(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload)+3)
	for k, v := range payload {
		out[k] = v
	}
	for _, key := range []string{"config", "active", "notice"} {
		if isEmptyObject(out[key]) {
			out[key] = map[string]any{}
		}
	}
	return out
}

func isEmptyObject(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case accountconfig.Tree:
		return t == nil
	case map[string]any:
		return t == nil
	case bool:
		return !t
	case string:
		return t == ""
	default:
		return false
	}
}

// UpdateAccount сохраняет аккаунт из редактора администратора.
// Тело проходит через UpdatePayloadDefaults.
func (a *API) UpdateAccount(ctx context.Context, token string, id int, fields map[string]any) Ack {
	payload := UpdatePayloadDefaults(fields)
	payload["id"] = id
	return a.post(ctx, token, "/updateAccount", payload)
}

// UnfreezeAccount снимает заморозку: тело только {id, freeze: 0}.
func (a *API) UnfreezeAccount(ctx context.Context, token string, id int) Ack {
	return a.post(ctx, token, "/updateAccount", map[string]int{"id": id, "freeze": model.FlagOff})
}

// DelAccount удаляет аккаунт.
func (a *API) DelAccount(ctx context.Context, token string, id int) Ack {
	return a.post(ctx, token, "/delAccount", idBody{ID: id})
}

// StartAccount запускает задачи аккаунта.
func (a *API) StartAccount(ctx context.Context, token string, id int) Ack {
	return a.post(ctx, token, "/startAccountByAdmin", idBody{ID: id})
}

// ResetDynamicInfo сбрасывает динамическую информацию аккаунта.
func (a *API) ResetDynamicInfo(ctx context.Context, token string, id int) Ack {
	return a.post(ctx, token, "/resetAccountDynamicInfo", idBody{ID: id})
}

// ResetRefresh сбрасывает счётчик обновлений.
func (a *API) ResetRefresh(ctx context.Context, token string, id int) Ack {
	return a.post(ctx, token, "/resetRefresh", idBody{ID: id})
}

// --- Агенты ---

// ProUsers: постраничный список агентов.
func (a *API) ProUsers(ctx context.Context, token string, p pagination.Params) apiclient.Result[pagination.Page[model.ProUser]] {
	return getAs[pagination.Page[model.ProUser]](ctx, a, token, "/getAllProUser", p.Values())
}

// SetProUserDisabled отключает (true) или включает агента.
func (a *API) SetProUserDisabled(ctx context.Context, token string, id int, disabled bool) Ack {
	flag := model.FlagOff
	if disabled {
		flag = model.FlagOn
	}
	return a.post(ctx, token, "/updateProUser", map[string]int{"id": id, "delete": flag})
}

// UpdateProUser сохраняет баланс, скидку и срок агента.
func (a *API) UpdateProUser(ctx context.Context, token string, in model.ProUserUpdate) Ack {
	return a.post(ctx, token, "/updateProUser", in)
}

// CreateProUser создаёт агента.
func (a *API) CreateProUser(ctx context.Context, token string, in model.NewProUser) Ack {
	return a.post(ctx, token, "/createProUser", in)
}

// --- Очередь задач ---

// FreeTasks: аккаунты в ожидании.
func (a *API) FreeTasks(ctx context.Context, token string) apiclient.Result[[]model.FreeTask] {
	return getAs[[]model.FreeTask](ctx, a, token, "/showFreeTaskList", nil)
}

// LockTasks: выполняющиеся задачи.
func (a *API) LockTasks(ctx context.Context, token string) apiclient.Result[[]model.LockTask] {
	return getAs[[]model.LockTask](ctx, a, token, "/showLockTaskList", nil)
}

// FreezeTasks: аккаунты в охлаждении.
func (a *API) FreezeTasks(ctx context.Context, token string) apiclient.Result[[]model.Account] {
	return getAs[[]model.Account](ctx, a, token, "/showFreezeTaskList", nil)
}

// TempInsertTask временно ставит аккаунт в очередь.
func (a *API) TempInsertTask(ctx context.Context, token string, id int) Ack {
	return a.post(ctx, token, "/tempInsertTask", idBody{ID: id})
}

// TempRemoveTask временно убирает аккаунт из очереди.
func (a *API) TempRemoveTask(ctx context.Context, token string, id int) Ack {
	return a.post(ctx, token, "/tempRemoveTask", idBody{ID: id})
}

// ForceUnlockOne освобождает устройство по его токену.
func (a *API) ForceUnlockOne(ctx context.Context, token, deviceToken string) Ack {
	return a.post(ctx, token, "/forceUnlockOneTask", map[string]string{"token": deviceToken})
}

// ForceUnlockAll освобождает все устройства.
func (a *API) ForceUnlockAll(ctx context.Context, token string) Ack {
	return a.post(ctx, token, "/forceUnlockTaskList", nil)
}

// ForceLoadAll принудительно загружает все задачи.
func (a *API) ForceLoadAll(ctx context.Context, token string) Ack {
	return a.post(ctx, token, "/forceLoadAllTask", nil)
}

// StartCooledDown снимает заморозку и сразу запускает аккаунт.
// Второй вызов выполняется только при успехе первого.
func (a *API) StartCooledDown(ctx context.Context, token string, id int) Ack {
	res := a.UnfreezeAccount(ctx, token, id)
	if !res.OK() {
		return res
	}
	return a.StartAccount(ctx, token, id)
}

// --- Устройства ---

// LoadedDevices: устройства, загруженные в планировщик.
func (a *API) LoadedDevices(ctx context.Context, token string) apiclient.Result[[]model.Device] {
	raw := getAs[model.LoadedDevices](ctx, a, token, "/showLoadedDevice", nil)
	out := apiclient.Result[[]model.Device]{
		Outcome: raw.Outcome, Code: raw.Code, Msg: raw.Msg, Status: raw.Status, Err: raw.Err,
	}
	if raw.OK() {
		out.Data = make([]model.Device, 0, len(raw.Data.LoadDeviceList))
		for _, d := range raw.Data.LoadDeviceList {
			out.Data = append(out.Data, d.Device())
		}
	}
	return out
}

// InventoryDevices: постраничный список всех устройств.
func (a *API) InventoryDevices(ctx context.Context, token string, p pagination.Params) apiclient.Result[pagination.Page[model.Device]] {
	return getAs[pagination.Page[model.Device]](ctx, a, token, "/showInventoryDevice", p.Values())
}

// AddDevice регистрирует устройство.
func (a *API) AddDevice(ctx context.Context, token, name string) Ack {
	return a.post(ctx, token, "/addDevice", map[string]string{"deviceName": name})
}

// UpdateDevice меняет имя или статус устройства.
func (a *API) UpdateDevice(ctx context.Context, token string, in model.DeviceUpdate) Ack {
	return a.post(ctx, token, "/updateDevice", in)
}

// --- CDK ---

// CDKsByType: CDK по типу (пустой тип означает все).
func (a *API) CDKsByType(ctx context.Context, token, cdkType string) apiclient.Result[model.CDKList] {
	return getAs[model.CDKList](ctx, a, token, "/checkCDKByType", url.Values{"keyword": {cdkType}})
}

// CDKsByTag: CDK по метке.
func (a *API) CDKsByTag(ctx context.Context, token, tag string) apiclient.Result[model.CDKList] {
	return getAs[model.CDKList](ctx, a, token, "/checkCDKByTag", url.Values{"keyword": {tag}})
}

// CreateCDK выпускает CDK. Для не-агентских CDK agent обнуляется.
func (a *API) CreateCDK(ctx context.Context, token string, in model.NewCDK) Ack {
	if !in.IsAgent {
		in.Agent = 0
	}
	return a.post(ctx, token, "/createCDK", in)
}

// --- Журнал ---

// Logs: постраничный журнал; непустой account переключает на поиск.
func (a *API) Logs(ctx context.Context, token string, p pagination.Params, account string) apiclient.Result[pagination.Page[model.LogEntry]] {
	if account != "" {
		return getAs[pagination.Page[model.LogEntry]](ctx, a, token, "/searchLogByAccount", pageQuery(p, "account", account))
	}
	return getAs[pagination.Page[model.LogEntry]](ctx, a, token, "/showLog", p.Values())
}

// DelLog удаляет запись журнала.
func (a *API) DelLog(ctx context.Context, token string, id int) Ack {
	return a.post(ctx, token, "/delLog", idBody{ID: id})
}

// CreateAnnouncement публикует объявление.
func (a *API) CreateAnnouncement(ctx context.Context, token, title, text string) Ack {
	return a.post(ctx, token, "/createAnnouncement", model.Announcement{Title: title, Context: text})
}
