package apiclient

import (
	"errors"
	"fmt"
)

// CodeOK: единственный код успеха в конверте бэкенда.
const CodeOK = 200

// CodeUnauthorized: код, которым бэкенд отвечает на недействительный токен.
const CodeUnauthorized = 401

// ErrTransport для errors.Is означает, что запрос не дошёл до бэкенда
// или ответ не удалось разобрать.
var ErrTransport = errors.New("транспортная ошибка запроса к бэкенду")

// Outcome: исход запроса.
type Outcome int

const (
	// OutcomeOK: конверт с code == 200, Data заполнено.
	OutcomeOK Outcome = iota
	// OutcomeAppFailure: конверт разобран, code != 200, Msg от сервера.
	OutcomeAppFailure
	// OutcomeTransportFailure: сеть, не-JSON или HTTP-статус вне 2xx.
	OutcomeTransportFailure
)

// String возвращает метку исхода (используется в метриках).
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeAppFailure:
		return "app_failure"
	case OutcomeTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Result: размеченный результат вызова бэкенда.
// Вызывающий код разбирает Outcome через switch.
type Result[T any] struct {
	Outcome Outcome
	// Data: поле data конверта без изменений (при OutcomeOK)
	Data T
	// Code: поле code конверта (0 при транспортной ошибке)
	Code int
	// Msg: поле msg конверта или описание транспортной ошибки
	Msg string
	// Status: HTTP-статус ответа (0, если ответа не было)
	Status int
	// Err: причина транспортной ошибки
	Err error
}

// OK сообщает, что бэкенд вернул code == 200.
func (r Result[T]) OK() bool {
	return r.Outcome == OutcomeOK
}

// Unauthorized сообщает, что бэкенд отверг токен.
func (r Result[T]) Unauthorized() bool {
	return r.Outcome == OutcomeAppFailure && r.Code == CodeUnauthorized
}

// Message возвращает сообщение сервера или fallback, если оно пустое.
func (r Result[T]) Message(fallback string) string {
	if r.Msg != "" {
		return r.Msg
	}
	return fallback
}

// Error возвращает nil для OutcomeOK, *AppError или *TransportError иначе.
func (r Result[T]) Error() error {
	switch r.Outcome {
	case OutcomeOK:
		return nil
	case OutcomeAppFailure:
		return &AppError{Code: r.Code, Msg: r.Msg}
	default:
		if r.Err != nil {
			return r.Err
		}
		return &TransportError{Status: r.Status, Detail: r.Msg}
	}
}

// AppError: прикладная ошибка (code != 200).
type AppError struct {
	Code int
	Msg  string
}

func (e *AppError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("бэкенд вернул code %d", e.Code)
	}
	return e.Msg
}

// TransportError: ошибка транспортного уровня.
// Текст совпадает с тем, что видит оператор: "API请求失败: <подробности>".
type TransportError struct {
	Status int
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = "未知错误"
	}
	return "API请求失败: " + detail
}

// Unwrap возвращает исходную ошибку (сетевую или JSON).
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is позволяет проверять errors.Is(err, ErrTransport).
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func transportFailure[T any](status int, detail string, cause error) Result[T] {
	return Result[T]{
		Outcome: OutcomeTransportFailure,
		Msg:     detail,
		Status:  status,
		Err:     &TransportError{Status: status, Detail: detail, Err: cause},
	}
}
