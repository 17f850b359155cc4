// Пакет handlers: HTTP-обработчики страниц консоли.
// Каждая страница: проверка токена (заглушка «请先登录» при недействительном),
// запрос к бэкенду 云控, рендеринг. Мутации выполняют POST-обработчики, которые
// вызывают бэкенд и возвращают redirect с flash-уведомлением.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/backend"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
	"github.com/cwxsss/inquisition-panel/internal/ui/auth"
	"github.com/cwxsss/inquisition-panel/internal/ui/i18n"
	uimiddleware "github.com/cwxsss/inquisition-panel/internal/ui/middleware"
	"github.com/cwxsss/inquisition-panel/internal/ui/pages"
)

// AuditRecorder: журнал мутаций консоли.
type AuditRecorder interface {
	// Record добавляет запись; ошибки записи не влияют на ответ пользователю
	Record(ctx context.Context, e model.AuditEntry)
	// Recent возвращает последние limit записей
	Recent(ctx context.Context, limit int) ([]model.AuditEntry, error)
	// Enabled сообщает, настроено ли хранилище журнала
	Enabled() bool
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, model.AuditEntry) {}

func (noopAudit) Recent(context.Context, int) ([]model.AuditEntry, error) { return nil, nil }

func (noopAudit) Enabled() bool { return false }

// Deps: общие зависимости обработчиков страниц.
type Deps struct {
	API    *backend.API
	Audit  AuditRecorder
	Flash  *FlashStore
	Logger *slog.Logger
}

// base: общие методы обработчиков одной роли.
type base struct {
	api    *backend.API
	audit  AuditRecorder
	flash  *FlashStore
	role   role.Role
	logger *slog.Logger
}

func newBase(d Deps, r role.Role, component string) base {
	audit := d.Audit
	if audit == nil {
		audit = noopAudit{}
	}
	return base{
		api:    d.API,
		audit:  audit,
		flash:  d.Flash,
		role:   r,
		logger: d.Logger.With(slog.String("component", component)),
	}
}

// Тексты уведомлений.
const (
	titleAuthFailed   = "认证失败"
	textRelogin       = "请重新登录"
	titleNetworkError = "网络错误"
	titleOpSuccess    = "操作成功"
	titleOpFailed     = "操作失败"
	titleInvalidPage  = "无效页码"
	titleIncomplete   = "请填写完整信息"
)

// layout собирает общие данные страницы и забирает отложенный flash.
func (b *base) layout(w http.ResponseWriter, r *http.Request, title, active string) pages.Layout {
	l := pages.NewLayout(i18n.LangFromContext(r.Context()), title, b.role, active)
	l.Path = r.URL.RequestURI()
	l.Flash = b.flash.Pop(w, r)
	return l
}

// token возвращает токен сессии, если он проходит IsTokenValid.
// Иначе рендерит заглушку «请先登录» и возвращает false: redirect здесь
// не выполняется, в отличие от route guard.
func (b *base) token(w http.ResponseWriter, r *http.Request) (string, bool) {
	var token string
	if m := uimiddleware.SessionFromContext(r.Context()); m != nil {
		token = m.Token()
	}
	if auth.IsTokenValid(token) {
		return token, true
	}

	l := pages.Layout{
		Lang:  i18n.LangFromContext(r.Context()),
		Title: "title.placeholder",
		Path:  r.URL.RequestURI(),
	}
	l.Flash = b.flash.Pop(w, r)
	b.render(w, r, pages.Placeholder, pages.PlaceholderData{Layout: l})
	return "", false
}

// mutationToken: токен для POST-обработчика. Без токена выставляется flash и
// redirect на ту же страницу, которая отрисует заглушку.
func (b *base) mutationToken(w http.ResponseWriter, r *http.Request, back string) (string, bool) {
	var token string
	if m := uimiddleware.SessionFromContext(r.Context()); m != nil {
		token = m.Token()
	}
	if auth.IsTokenValid(token) {
		return token, true
	}
	b.flash.Set(w, pages.Flash{Kind: pages.FlashError, Title: titleAuthFailed, Text: textRelogin})
	http.Redirect(w, r, back, http.StatusSeeOther)
	return "", false
}

// render отдаёт страницу name.
func (b *base) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Render(name, data).Render(r.Context(), w); err != nil {
		b.logger.Error("Ошибка рендеринга страницы",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "页面渲染失败", http.StatusInternalServerError)
	}
}

// failure превращает неуспешный результат в уведомление.
// Для успешного результата возвращает nil.
func failure[T any](res apiclient.Result[T], title string) *pages.Flash {
	switch {
	case res.OK():
		return nil
	case res.Unauthorized():
		return &pages.Flash{Kind: pages.FlashError, Title: titleAuthFailed, Text: textRelogin}
	case res.Outcome == apiclient.OutcomeTransportFailure:
		return &pages.Flash{Kind: pages.FlashError, Title: titleNetworkError, Text: res.Error().Error()}
	default:
		return &pages.Flash{Kind: pages.FlashError, Title: title, Text: res.Message(titleOpFailed)}
	}
}

// firstFlash возвращает первое непустое уведомление.
func firstFlash(flashes ...*pages.Flash) *pages.Flash {
	for _, f := range flashes {
		if f != nil {
			return f
		}
	}
	return nil
}

// keepFlash дополняет layout уведомлением о неудачной загрузке данных,
// если отложенного flash нет.
func keepFlash(l *pages.Layout, f *pages.Flash) {
	if l.Flash == nil && f != nil {
		l.Flash = f
	}
}

// mutation завершает POST-обработчик: запись в журнал аудита,
// flash по исходу и redirect на back.
type mutation struct {
	endpoint string
	target   string
	okTitle  string
	okText   string
	// failTitle: заголовок прикладной ошибки (по умолчанию 操作失败)
	failTitle string
}

func (b *base) finish(w http.ResponseWriter, r *http.Request, res backend.Ack, m mutation, back string) {
	b.record(r, m, res)

	failTitle := m.failTitle
	if failTitle == "" {
		failTitle = titleOpFailed
	}
	if f := failure(res, failTitle); f != nil {
		b.logger.Info("Операция отклонена",
			slog.String("endpoint", m.endpoint),
			slog.String("target", m.target),
			slog.String("outcome", res.Outcome.String()),
			slog.String("msg", res.Msg),
		)
		b.flash.Set(w, *f)
	} else {
		okTitle := m.okTitle
		if okTitle == "" {
			okTitle = titleOpSuccess
		}
		b.flash.Set(w, pages.Flash{Kind: pages.FlashSuccess, Title: okTitle, Text: m.okText})
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// record пишет исход мутации в журнал аудита.
func (b *base) record(r *http.Request, m mutation, res backend.Ack) {
	outcome := model.AuditOK
	switch res.Outcome {
	case apiclient.OutcomeAppFailure:
		outcome = model.AuditFailed
	case apiclient.OutcomeTransportFailure:
		outcome = model.AuditTransport
	}
	b.audit.Record(r.Context(), model.AuditEntry{
		Endpoint:  m.endpoint,
		Role:      string(b.role),
		TargetID:  m.target,
		Outcome:   outcome,
		Message:   res.Msg,
		RequestID: apiclient.RequestIDFromContext(r.Context()),
	})
}

// reject сообщает об ошибке проверки формы, не обращаясь к бэкенду.
func (b *base) reject(w http.ResponseWriter, r *http.Request, title, text, back string) {
	b.flash.Set(w, pages.Flash{Kind: pages.FlashError, Title: title, Text: text})
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// pageParams читает current/size и обрабатывает форму «перейти к странице».
// Неверный номер даёт уведомление, текущая страница не меняется.
func pageParams(r *http.Request) (pagination.Params, *pages.Flash) {
	q := r.URL.Query()
	p := pagination.FromQuery(q, pagination.DefaultSize)
	if !q.Has("goto") {
		return p, nil
	}
	maxPage, _ := strconv.Atoi(q.Get("max"))
	maxPage = max(maxPage, 1)
	n, err := pagination.ParseGoToPage(q.Get("goto"), maxPage)
	if err != nil {
		return p, &pages.Flash{
			Kind:  pages.FlashError,
			Title: titleInvalidPage,
			Text:  pagination.InvalidPageMessage(maxPage),
		}
	}
	p.Current = n
	return p, nil
}

// pagerQuery: параметры запроса для ссылок навигации без служебных полей.
func pagerQuery(r *http.Request) url.Values {
	q := r.URL.Query()
	q.Del("goto")
	q.Del("max")
	return q
}

// pathID читает числовой параметр {id} маршрута.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

// backTo возвращает локальный адрес из Referer или def.
func backTo(r *http.Request, def string) string {
	ref := r.Header.Get("Referer")
	if ref == "" {
		return def
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) || !strings.HasPrefix(u.Path, "/") {
		return def
	}
	return u.RequestURI()
}

// formInt читает целое поле формы; для пустого или некорректного возвращает def.
func formInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	if err != nil {
		return def
	}
	return v
}

// formText читает поле формы без пробелов по краям.
func formText(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
