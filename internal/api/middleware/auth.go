// auth.go: проверка заголовка Authorization для JSON-прокси.
// Токен не валидируется: прокси передаёт его бэкенду как есть,
// решение о доступе принимает бэкенд.
package middleware

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/cwxsss/inquisition-panel/internal/api/errors"
)

// contextKey: тип для ключей контекста (избегаем коллизий).
type contextKey string

// ContextKeyToken: bearer-токен запроса в контексте.
const ContextKeyToken contextKey = "bearer_token"

// RequireBearer возвращает middleware, требующий заголовок Authorization.
// Запросы, для которых public возвращает true (вход), пропускаются без токена.
// Без заголовка: 401 {"code":401,"msg":"未授权","data":null}.
func RequireBearer(public func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public != nil && public(r) {
				next.ServeHTTP(w, r)
				return
			}

			token := BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				apierrors.Unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyToken, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken извлекает токен из значения заголовка Authorization.
// Префикс "Bearer " необязателен.
func BearerToken(header string) string {
	fields := strings.Fields(header)
	switch {
	case len(fields) == 0:
		return ""
	case strings.EqualFold(fields[0], "Bearer"):
		if len(fields) < 2 {
			return ""
		}
		return fields[1]
	default:
		return fields[0]
	}
}

// TokenFromContext извлекает bearer-токен из контекста запроса.
// Возвращает пустую строку, если токена нет.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(ContextKeyToken).(string)
	return token
}
