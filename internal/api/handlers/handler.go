// handler.go: JSON-прокси /api/{endpoint} к бэкенду 云控.
// Прокси пропускает только эндпоинты из белого списка, передаёт
// bearer-токен клиента и возвращает конверт бэкенда без изменений.
// Прикладные ошибки (code != 200) отдаются со статусом 200, как их вернул
// бэкенд; транспортные: 500 {"code":500,"msg":"服务器错误","data":null}.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/cwxsss/inquisition-panel/internal/api/errors"
	"github.com/cwxsss/inquisition-panel/internal/api/middleware"
	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/backend"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
)

// maxBodySize: предельный размер тела запроса к прокси.
const maxBodySize = 1 << 20

// endpoint: описание эндпоинта бэкенда в белом списке.
type endpoint struct {
	method string
	// public: вход без Authorization
	public bool
}

var (
	get  = endpoint{method: http.MethodGet}
	post = endpoint{method: http.MethodPost}
	open = endpoint{method: http.MethodPost, public: true}
)

// endpoints задаёт белый список: имя эндпоинта бэкенда → метод.
var endpoints = map[string]endpoint{
	// Вход
	"userLogin":    open,
	"adminLogin":   open,
	"proUserLogin": open,

	// Общие
	"getAnnouncement": get,

	// Администратор
	"getStatistics":           get,
	"changeAdminPassword":     post,
	"showAccount":             get,
	"searchAccount":           get,
	"addAccount":              post,
	"updateAccount":           post,
	"delAccount":              post,
	"startAccountByAdmin":     post,
	"resetAccountDynamicInfo": post,
	"resetRefresh":            post,
	"getAllProUser":           get,
	"updateProUser":           post,
	"createProUser":           post,
	"showFreeTaskList":        get,
	"showLockTaskList":        get,
	"showFreezeTaskList":      get,
	"tempInsertTask":          post,
	"tempRemoveTask":          post,
	"forceUnlockOneTask":      post,
	"forceUnlockTaskList":     post,
	"forceLoadAllTask":        post,
	"showLoadedDevice":        get,
	"showInventoryDevice":     get,
	"addDevice":               post,
	"updateDevice":            post,
	"checkCDKByType":          get,
	"checkCDKByTag":           get,
	"createCDK":               post,
	"showLog":                 get,
	"searchLogByAccount":      get,
	"delLog":                  post,
	"createAnnouncement":      post,

	// Пользователь
	"showMyStatus":             get,
	"showMyAccount":            get,
	"showMySan":                get,
	"startNow":                 post,
	"forceHalt":                post,
	"freezeMyAccount":          post,
	"unfreezeMyAccount":        post,
	"updateMyAccount":          post,
	"showMyLog":                get,
	"useCDK":                   post,
	"updateAccountAndPassword": post,

	// Агент
	"getProUserInfo":          get,
	"getSubUserList":          get,
	"getRecentlyExpiredUsers": get,
	"createSubUserByProUser":  post,
	"setSubUser":              post,
	"renewSubUserDaily":       post,
	"activateSubUserCdk":      post,
	"forceSubUserStop":        post,
	"forceSubUserFight":       post,
	"getProUserInventoryCdk":  get,
	"createCdkByProUser":      post,
	"updateProUserPassword":   post,
}

// ProxyHandler: обработчик JSON-прокси.
type ProxyHandler struct {
	client *apiclient.Client
	logger *slog.Logger
}

// NewProxyHandler создаёт обработчик прокси поверх клиента бэкенда.
func NewProxyHandler(client *apiclient.Client, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		client: client,
		logger: logger.With(slog.String("component", "api_proxy")),
	}
}

// IsPublic сообщает, что эндпоинт запроса доступен без Authorization.
// Используется как аргумент middleware.RequireBearer.
func (h *ProxyHandler) IsPublic(r *http.Request) bool {
	ep, ok := endpoints[chi.URLParam(r, "endpoint")]
	return ok && ep.public
}

// Known сообщает, что эндпоинт входит в белый список.
func Known(name string) bool {
	_, ok := endpoints[name]
	return ok
}

// ServeHTTP обрабатывает /api/{endpoint}.
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "endpoint")
	ep, ok := endpoints[name]
	if !ok {
		apierrors.NotFound(w)
		return
	}
	if r.Method != ep.method {
		apierrors.MethodNotAllowed(w, ep.method)
		return
	}

	opts := apiclient.Options{Method: ep.method}
	if ep.method == http.MethodGet {
		opts.Query = proxyQuery(name, r.URL.Query())
	} else {
		body, err := readBody(r, name)
		if err != nil {
			h.logger.Debug("Тело запроса к прокси не разобрано",
				slog.String("endpoint", name),
				slog.String("error", err.Error()),
			)
			apierrors.BadRequest(w)
			return
		}
		opts.Body = body
	}

	ctx := r.Context()
	path := "/" + name
	var res apiclient.Result[json.RawMessage]
	if ep.public {
		res = apiclient.Request[json.RawMessage](ctx, h.client, path, opts)
	} else {
		token := middleware.TokenFromContext(ctx)
		if token == "" {
			token = middleware.BearerToken(r.Header.Get("Authorization"))
		}
		res = apiclient.RequestWithAuth[json.RawMessage](ctx, h.client, path, token, opts)
	}

	if res.Outcome == apiclient.OutcomeTransportFailure {
		h.logger.Warn("Прокси: бэкенд недоступен",
			slog.String("endpoint", name),
			slog.String("error", res.Error().Error()),
			slog.String("request_id", apiclient.RequestIDFromContext(ctx)),
		)
		apierrors.InternalError(w)
		return
	}

	apierrors.WriteEnvelope(w, http.StatusOK, apierrors.Envelope{
		Code: res.Code,
		Msg:  res.Msg,
		Data: res.Data,
	})
}

// proxyQuery: параметры запроса для бэкенда.
// showAccount получает current/size (по умолчанию 1 и 10) и только заданные фильтры.
func proxyQuery(name string, q url.Values) url.Values {
	if name != "showAccount" {
		return q
	}
	p := pagination.FromQuery(q, pagination.DefaultSize)
	out := p.Values()
	filter := backend.AccountFilter{
		TaskType: q.Get("taskType"),
		Freeze:   q.Get("freeze"),
		Expired:  q.Get("expired"),
		Deleted:  q.Get("deleted"),
	}
	for k, v := range filter.Values() {
		out[k] = v
	}
	return out
}

// readBody читает JSON-тело. Пустое тело заменяется на {}.
// Для updateAccount пустые config/active/notice заменяются на {}.
func readBody(r *http.Request, name string) (json.RawMessage, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("чтение тела: %w", err)
	}
	if len(data) > maxBodySize {
		return nil, errors.New("тело запроса слишком большое")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		data = []byte("{}")
	}
	if !json.Valid(data) {
		return nil, errors.New("тело запроса не JSON")
	}
	if name != "updateAccount" {
		return data, nil
	}

	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("тело updateAccount: %w", err)
	}
	return json.Marshal(backend.UpdatePayloadDefaults(payload))
}
