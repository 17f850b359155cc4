// Пакет middleware: HTTP middleware консоли.
// auth.go: guard защищённых разделов и загрузка сессии в контекст запроса.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"

	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/ui/auth"
)

// contextKey: тип для ключей контекста UI (избегаем коллизий с API middleware).
type contextKey string

const (
	// ContextKeySession: менеджер сессии текущего запроса.
	ContextKeySession contextKey = "ui_session"
)

// Guard пропускает запросы к /user, /admin и /prouser только при наличии
// cookie token. Значение cookie не проверяется: подойдёт любое.
// Без cookie: 302 на страницу входа "/".
func Guard(logger *slog.Logger) func(http.Handler) http.Handler {
	log := logger.With(slog.String("component", "ui_guard"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !role.IsProtectedPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if _, err := r.Cookie(auth.KeyToken); err != nil {
				log.Debug("Нет cookie token, redirect на вход",
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
				)
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionLoader создаёт для каждого запроса менеджер сессии поверх cookie,
// выполняет Hydrate и кладёт менеджер в контекст.
type SessionLoader struct {
	codec  *securecookie.SecureCookie
	opts   auth.CookieOptions
	logger *slog.Logger
}

// NewSessionLoader создаёт SessionLoader.
func NewSessionLoader(codec *securecookie.SecureCookie, opts auth.CookieOptions, logger *slog.Logger) *SessionLoader {
	return &SessionLoader{
		codec:  codec,
		opts:   opts,
		logger: logger.With(slog.String("component", "ui_session")),
	}
}

// Middleware возвращает HTTP middleware загрузки сессии.
func (sl *SessionLoader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := auth.NewManager(auth.NewCookieStorage(w, r, sl.codec, sl.opts))
			m.Hydrate()

			if s := m.Session(); s.IsAuthenticated() {
				sl.logger.Debug("Сессия восстановлена",
					slog.String("role", string(s.Role)),
					slog.String("path", r.URL.Path),
				)
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, m)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext извлекает менеджер сессии из контекста запроса.
// Возвращает nil, если запрос не прошёл через SessionLoader.
func SessionFromContext(ctx context.Context) *auth.Manager {
	m, ok := ctx.Value(ContextKeySession).(*auth.Manager)
	if !ok {
		return nil
	}
	return m
}

// WithSession помещает менеджер сессии в контекст (для тестов обработчиков).
func WithSession(ctx context.Context, m *auth.Manager) context.Context {
	return context.WithValue(ctx, ContextKeySession, m)
}
