package backend

import (
	"context"
	"errors"

	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
)

// ErrPasswordMismatch: подтверждение не совпадает с новым паролем.
var ErrPasswordMismatch = errors.New("两次输入的新密码不一致")

// ErrEmptyPassword: одно из полей смены пароля пустое.
var ErrEmptyPassword = errors.New("请填写所有字段")

// ProUserInfo: профиль текущего агента.
func (a *API) ProUserInfo(ctx context.Context, token string) apiclient.Result[model.ProUser] {
	return getAs[model.ProUser](ctx, a, token, "/getProUserInfo", nil)
}

// SubUsers: суб-пользователи агента. filter: all/active/expired/frozen/deleted.
func (a *API) SubUsers(ctx context.Context, token, filter string, p pagination.Params, keyword string) apiclient.Result[pagination.Page[model.Account]] {
	if !model.ValidSubUserFilter(filter) {
		filter = FilterAll
	}
	q := pageQuery(p, "keyword", keyword)
	q.Set("type", filter)
	return getAs[pagination.Page[model.Account]](ctx, a, token, "/getSubUserList", q)
}

// RecentlyExpired: суб-пользователи с истекающим сроком.
func (a *API) RecentlyExpired(ctx context.Context, token string) apiclient.Result[[]model.Account] {
	return getAs[[]model.Account](ctx, a, token, "/getRecentlyExpiredUsers", nil)
}

// CreateSubUser создаёт суб-пользователя от имени агента agentID.
func (a *API) CreateSubUser(ctx context.Context, token string, agentID int, in model.SubUserInput) Ack {
	in.Agent = agentID
	if in.Days < 1 {
		in.Days = model.DefaultAccountDays
	}
	return a.post(ctx, token, "/createSubUserByProUser", in)
}

// SetSubUser сохраняет изменения суб-пользователя.
func (a *API) SetSubUser(ctx context.Context, token string, id int, fields map[string]any) Ack {
	payload := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["id"] = id
	return a.post(ctx, token, "/setSubUser", payload)
}

// RenewSubUser продлевает суб-пользователя за баланс на months месяцев.
func (a *API) RenewSubUser(ctx context.Context, token string, id, months int) Ack {
	return a.post(ctx, token, "/renewSubUserDaily", map[string]int{"id": id, "mo": months})
}

// ActivateSubUserCDK продлевает суб-пользователя кодом.
func (a *API) ActivateSubUserCDK(ctx context.Context, token string, id int, cdk string) Ack {
	return a.post(ctx, token, "/activateSubUserCdk", map[string]any{"id": id, "cdk": cdk})
}

// ForceSubUserStop останавливает задачи суб-пользователя.
func (a *API) ForceSubUserStop(ctx context.Context, token string, id int) Ack {
	return a.post(ctx, token, "/forceSubUserStop", idBody{ID: id})
}

// ForceSubUserFight запускает задачи суб-пользователя.
func (a *API) ForceSubUserFight(ctx context.Context, token string, id int) Ack {
	return a.post(ctx, token, "/forceSubUserFight", idBody{ID: id})
}

// AgentCDKs: CDK на складе агента.
func (a *API) AgentCDKs(ctx context.Context, token string) apiclient.Result[model.CDKList] {
	return getAs[model.CDKList](ctx, a, token, "/getProUserInventoryCdk", nil)
}

// CreateAgentCDK выпускает CDK за счёт агента.
func (a *API) CreateAgentCDK(ctx context.Context, token string, in model.NewAgentCDK) Ack {
	return a.post(ctx, token, "/createCdkByProUser", in)
}

// ValidatePasswordChange проверяет форму смены пароля до запроса.
func ValidatePasswordChange(oldPassword, newPassword, confirm string) error {
	if oldPassword == "" || newPassword == "" || confirm == "" {
		return ErrEmptyPassword
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// UpdateProUserPassword меняет пароль агента.
func (a *API) UpdateProUserPassword(ctx context.Context, token string, in model.PasswordChange) Ack {
	return a.post(ctx, token, "/updateProUserPassword", in)
}
