package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/cwxsss/inquisition-panel/internal/apiclient"
)

// maxRequestIDLen: входящий идентификатор длиннее заменяется новым.
const maxRequestIDLen = 128

// RequestID берёт X-Request-Id из запроса или генерирует uuid v4,
// возвращает его в ответе и кладёт в контекст: клиент бэкенда
// передаёт тот же идентификатор дальше.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(apiclient.RequestIDHeader)
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.NewString()
			}
			w.Header().Set(apiclient.RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(apiclient.WithRequestID(r.Context(), id)))
		})
	}
}
