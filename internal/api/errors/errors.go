// Пакет errors: ответы JSON-прокси с ошибкой.
// Формат совпадает с конвертом бэкенда 云控: {"code": ..., "msg": "...", "data": null},
// поэтому клиент прокси разбирает ошибки так же, как ответы бэкенда.
package errors

import (
	"encoding/json"
	"net/http"
)

// Сообщения, которые видит клиент прокси.
const (
	MsgUnauthorized     = "未授权"
	MsgInternal         = "服务器错误"
	MsgBadRequest       = "请求参数无效"
	MsgUnknownEndpoint  = "接口不存在"
	MsgMethodNotAllowed = "请求方法不支持"
)

// Envelope: конверт ответа {code, msg, data}.
type Envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// WriteEnvelope записывает конверт с указанным HTTP-статусом.
// Пустое data сериализуется как null.
func WriteEnvelope(w http.ResponseWriter, statusCode int, env Envelope) {
	if len(env.Data) == 0 {
		env.Data = json.RawMessage("null")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(env)
}

// WriteError записывает ошибку: code в конверте равен HTTP-статусу.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteEnvelope(w, statusCode, Envelope{Code: statusCode, Msg: message})
}

// --- Конструкторы для типичных ошибок ---

// Unauthorized: 401 без заголовка Authorization.
func Unauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
}

// BadRequest: 400, если тело запроса не разобрано.
func BadRequest(w http.ResponseWriter) {
	WriteError(w, http.StatusBadRequest, MsgBadRequest)
}

// NotFound: 404 для эндпоинта вне белого списка.
func NotFound(w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, MsgUnknownEndpoint)
}

// MethodNotAllowed: 405, если метод не совпадает с методом эндпоинта.
func MethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	WriteError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
}

// InternalError: 500, если бэкенд недоступен или ответ не разобран.
func InternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, MsgInternal)
}
