// Пакет backend: типизированные вызовы эндпоинтов бэкенда 云控.
// Каждый метод выполняет ровно один HTTP-запрос и возвращает
// apiclient.Result; разбор исхода остаётся вызывающему коду.
package backend

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
)

// Ack: результат мутации, data которой не используется.
type Ack = apiclient.Result[json.RawMessage]

// API: эндпоинты бэкенда 云控.
type API struct {
	c *apiclient.Client
}

// New создаёт API поверх HTTP-клиента.
func New(c *apiclient.Client) *API {
	return &API{c: c}
}

// Client возвращает HTTP-клиент (для прокси и проверок доступности).
func (a *API) Client() *apiclient.Client {
	return a.c
}

// idBody: тело запросов, адресующих запись по id.
type idBody struct {
	ID int `json:"id"`
}

func (a *API) get(ctx context.Context, token, endpoint string, q url.Values) Ack {
	return apiclient.RequestWithAuth[json.RawMessage](ctx, a.c, endpoint, token, apiclient.Get(q))
}

func (a *API) post(ctx context.Context, token, endpoint string, body any) Ack {
	return apiclient.RequestWithAuth[json.RawMessage](ctx, a.c, endpoint, token, apiclient.Post(body))
}

func getAs[T any](ctx context.Context, a *API, token, endpoint string, q url.Values) apiclient.Result[T] {
	return apiclient.RequestWithAuth[T](ctx, a.c, endpoint, token, apiclient.Get(q))
}

func postAs[T any](ctx context.Context, a *API, token, endpoint string, body any) apiclient.Result[T] {
	return apiclient.RequestWithAuth[T](ctx, a.c, endpoint, token, apiclient.Post(body))
}

// pageQuery: параметры current/size плюс дополнительные пары.
func pageQuery(p pagination.Params, extra ...string) url.Values {
	q := p.Values()
	for i := 0; i+1 < len(extra); i += 2 {
		if extra[i+1] != "" {
			q.Set(extra[i], extra[i+1])
		}
	}
	return q
}

// --- Вход ---

// Login выполняет вход для роли. Поле логина зависит от роли:
// account у user, username у admin и prouser.
func (a *API) Login(ctx context.Context, r role.Role, login, password string) apiclient.Result[model.TokenData] {
	body := map[string]string{
		r.LoginField(): login,
		"password":     password,
	}
	return apiclient.Request[model.TokenData](ctx, a.c, r.LoginEndpoint(), apiclient.Post(body))
}

// Announcement: текущее объявление. Эндпоинт открыт и для гостей.
func (a *API) Announcement(ctx context.Context, token string) apiclient.Result[model.Announcement] {
	return getAs[model.Announcement](ctx, a, token, "/getAnnouncement", nil)
}
