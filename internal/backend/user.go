package backend

import (
	"context"

	"github.com/cwxsss/inquisition-panel/internal/accountconfig"
	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
)

// MyStatus: состояние задач текущего пользователя.
func (a *API) MyStatus(ctx context.Context, token string) apiclient.Result[model.UserStatus] {
	return getAs[model.UserStatus](ctx, a, token, "/showMyStatus", nil)
}

// MyAccount: аккаунт текущего пользователя.
func (a *API) MyAccount(ctx context.Context, token string) apiclient.Result[model.Account] {
	return getAs[model.Account](ctx, a, token, "/showMyAccount", nil)
}

// MySan возвращает санити строкой; при любой ошибке возвращает "-".
func (a *API) MySan(ctx context.Context, token string) string {
	res := getAs[model.OptString](ctx, a, token, "/showMySan", nil)
	if !res.OK() {
		return "-"
	}
	return res.Data.Or("-")
}

// StartNow запускает задачи немедленно.
func (a *API) StartNow(ctx context.Context, token string) Ack {
	return a.post(ctx, token, "/startNow", nil)
}

// ForceHalt останавливает выполнение.
func (a *API) ForceHalt(ctx context.Context, token string) Ack {
	return a.post(ctx, token, "/forceHalt", nil)
}

// SetMyFreeze замораживает (true) или размораживает аккаунт.
func (a *API) SetMyFreeze(ctx context.Context, token string, freeze bool) Ack {
	if freeze {
		return a.post(ctx, token, "/freezeMyAccount", nil)
	}
	return a.post(ctx, token, "/unfreezeMyAccount", nil)
}

// UpdateMyAccount сохраняет config, notice и active.
func (a *API) UpdateMyAccount(ctx context.Context, token string, e *accountconfig.Editor) Ack {
	return a.post(ctx, token, "/updateMyAccount", map[string]accountconfig.Tree{
		"config": e.Config,
		"notice": e.Notice,
		"active": e.Active,
	})
}

// MyLogs: журнал текущего пользователя.
func (a *API) MyLogs(ctx context.Context, token string, p pagination.Params) apiclient.Result[pagination.Page[model.LogEntry]] {
	return getAs[pagination.Page[model.LogEntry]](ctx, a, token, "/showMyLog", p.Values())
}

// UseCDK активирует CDK.
func (a *API) UseCDK(ctx context.Context, token, cdk string) Ack {
	return a.post(ctx, token, "/useCDK", map[string]string{"cdk": cdk})
}

// UpdateCredentials меняет игровой логин, пароль и сервер.
func (a *API) UpdateCredentials(ctx context.Context, token string, in model.Credentials) Ack {
	return a.post(ctx, token, "/updateAccountAndPassword", in)
}
