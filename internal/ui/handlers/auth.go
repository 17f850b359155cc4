// auth.go: вход под одной из трёх ролей и выход.
package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/ui/auth"
	"github.com/cwxsss/inquisition-panel/internal/ui/i18n"
	uimiddleware "github.com/cwxsss/inquisition-panel/internal/ui/middleware"
	"github.com/cwxsss/inquisition-panel/internal/ui/pages"
)

// AuthHandler: страница входа, вход и выход.
type AuthHandler struct {
	base
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(d Deps) *AuthHandler {
	return &AuthHandler{base: newBase(d, "", "ui.auth")}
}

// HandleLoginPage: GET /
// С действительной сессией выполняется redirect на панель роли.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if m := uimiddleware.SessionFromContext(r.Context()); m != nil {
		if s := m.Session(); auth.IsTokenValid(s.Token) && s.Role.Valid() {
			http.Redirect(w, r, s.Role.Dashboard(), http.StatusFound)
			return
		}
	}

	selected, ok := role.Parse(r.URL.Query().Get("role"))
	if !ok {
		selected = role.User
	}

	data := pages.LoginData{
		Layout: pages.Layout{
			Lang:  i18n.LangFromContext(r.Context()),
			Title: "title.login",
			Path:  r.URL.RequestURI(),
			Flash: h.flash.Pop(w, r),
		},
		Roles:    role.All,
		Selected: selected,
		Login:    r.URL.Query().Get("login"),
	}
	h.render(w, r, pages.Login, data)
}

// HandleLogin: POST /login
// Поля формы: role, login, password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	selected, ok := role.Parse(r.FormValue("role"))
	if !ok {
		selected = role.User
	}
	login := formText(r, "login")
	password := r.FormValue("password")

	back := "/?" + url.Values{"role": {string(selected)}, "login": {login}}.Encode()
	if login == "" || password == "" {
		h.reject(w, r, titleIncomplete, "", back)
		return
	}

	res := h.api.Login(r.Context(), selected, login, password)
	if f := failure(res, "登录失败"); f != nil {
		h.logger.Info("Вход отклонён",
			slog.String("role", string(selected)),
			slog.String("outcome", res.Outcome.String()),
		)
		h.flash.Set(w, *f)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if !auth.IsTokenValid(res.Data.Token) {
		h.reject(w, r, "登录失败", "服务器返回的令牌无效", back)
		return
	}

	m := uimiddleware.SessionFromContext(r.Context())
	if m == nil {
		h.logger.Error("Менеджер сессии отсутствует в контексте")
		http.Error(w, "会话不可用", http.StatusInternalServerError)
		return
	}
	if err := m.Login(res.Data.Token, selected); err != nil {
		h.logger.Error("Ошибка сохранения сессии", slog.String("error", err.Error()))
		http.Error(w, "会话不可用", http.StatusInternalServerError)
		return
	}

	h.audit.Record(r.Context(), model.AuditEntry{
		Endpoint:  selected.LoginEndpoint(),
		Role:      string(selected),
		TargetID:  login,
		Outcome:   model.AuditOK,
		RequestID: apiclient.RequestIDFromContext(r.Context()),
	})
	h.logger.Info("Пользователь вошёл", slog.String("role", string(selected)))

	h.flash.Set(w, pages.Flash{Kind: pages.FlashSuccess, Title: "登录成功"})
	http.Redirect(w, r, selected.Dashboard(), http.StatusSeeOther)
}

// HandleLogout: POST /logout
// Удаляет token, adminToken и userType и возвращает на страницу входа.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if m := uimiddleware.SessionFromContext(r.Context()); m != nil {
		if err := m.Logout(); err != nil {
			h.logger.Error("Ошибка очистки сессии", slog.String("error", err.Error()))
		}
	}
	h.logger.Info("Пользователь вышел")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
