// Пакет apiclient: HTTP-клиент бэкенда 云控.
// Каждый ответ бэкенда приходит в конверте {code, msg, data}; code == 200 означает успех.
// Клиент различает два уровня отказа: транспортный (сеть, не-JSON, статус вне 2xx)
// и прикладной (конверт разобран, но code != 200).
// Кэширования и автоматических повторов нет: каждый вызов выполняется ровно один раз.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Options: параметры одного запроса к бэкенду.
type Options struct {
	// Method: HTTP-метод (по умолчанию GET)
	Method string
	// Query: параметры строки запроса
	Query url.Values
	// Body: тело запроса, сериализуется в JSON (nil означает без тела)
	Body any
	// Header: дополнительные заголовки, перекрывают Content-Type
	Header http.Header
}

// Post: сокращение для POST с JSON-телом.
func Post(body any) Options {
	return Options{Method: http.MethodPost, Body: body}
}

// Get: сокращение для GET с параметрами.
func Get(query url.Values) Options {
	return Options{Method: http.MethodGet, Query: query}
}

// Client: HTTP-клиент бэкенда 云控.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент.
// baseURL: базовый адрес бэкенда (завершающий слэш отбрасывается).
// timeout: таймаут одного HTTP-запроса (0 отключает таймаут).
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    normalizeURL(baseURL),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "api_client")),
	}
}

// BaseURL возвращает базовый адрес бэкенда.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request выполняет запрос без авторизации и разбирает конверт.
func Request[T any](ctx context.Context, c *Client, endpoint string, opts Options) Result[T] {
	start := time.Now()
	res := decode[T](c.send(ctx, endpoint, opts))
	observe(endpoint, res.Outcome, time.Since(start))

	switch res.Outcome {
	case OutcomeTransportFailure:
		c.logger.Warn("Транспортная ошибка запроса к бэкенду",
			slog.String("endpoint", endpoint),
			slog.Int("status", res.Status),
			slog.String("error", res.Err.Error()),
			slog.String("request_id", RequestIDFromContext(ctx)),
		)
	case OutcomeAppFailure:
		c.logger.Debug("Бэкенд вернул прикладную ошибку",
			slog.String("endpoint", endpoint),
			slog.Int("code", res.Code),
			slog.String("msg", res.Msg),
		)
	default:
		c.logger.Debug("Запрос к бэкенду выполнен",
			slog.String("endpoint", endpoint),
			slog.Duration("duration", time.Since(start)),
		)
	}
	return res
}

// RequestWithAuth: то же, что Request, плюс заголовок Authorization: Bearer <token>.
func RequestWithAuth[T any](ctx context.Context, c *Client, endpoint, token string, opts Options) Result[T] {
	h := opts.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Authorization", "Bearer "+token)
	opts.Header = h
	return Request[T](ctx, c, endpoint, opts)
}

// rawResponse: результат транспортного уровня до разбора конверта.
type rawResponse struct {
	status int
	body   []byte
	err    error
}

// send выполняет HTTP-запрос и читает тело целиком.
func (c *Client) send(ctx context.Context, endpoint string, opts Options) rawResponse {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	reqURL := c.baseURL + endpoint
	if len(opts.Query) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		reqURL += sep + opts.Query.Encode()
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return rawResponse{err: fmt.Errorf("сериализация тела запроса: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return rawResponse{err: fmt.Errorf("создание запроса %s: %w", endpoint, err)}
	}

	req.Header.Set("Content-Type", "application/json")
	for k, vals := range opts.Header {
		req.Header.Del(k)
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	if id := RequestIDFromContext(ctx); id != "" && req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rawResponse{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return rawResponse{status: resp.StatusCode, err: fmt.Errorf("чтение ответа: %w", err)}
	}
	return rawResponse{status: resp.StatusCode, body: data}
}

// envelope: конверт ответа с неразобранным data.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// decode превращает транспортный ответ в Result[T].
// Тело разбирается всегда, в том числе при статусе вне 2xx,
// чтобы сообщение об ошибке брать из поля msg.
func decode[T any](raw rawResponse) Result[T] {
	if raw.err != nil {
		return transportFailure[T](raw.status, raw.err.Error(), raw.err)
	}

	var env envelope
	if err := json.Unmarshal(raw.body, &env); err != nil {
		return transportFailure[T](raw.status, err.Error(), err)
	}

	if raw.status < 200 || raw.status > 299 {
		detail := env.Msg
		if detail == "" {
			detail = fmt.Sprintf("HTTP error! status: %d", raw.status)
		}
		return transportFailure[T](raw.status, detail, nil)
	}

	res := Result[T]{Status: raw.status, Code: env.Code, Msg: env.Msg}
	if env.Code != CodeOK {
		res.Outcome = OutcomeAppFailure
		// data у прикладной ошибки разбирается по возможности
		_ = unmarshalData(env.Data, &res.Data)
		return res
	}

	if err := unmarshalData(env.Data, &res.Data); err != nil {
		return transportFailure[T](raw.status, fmt.Sprintf("некорректное поле data: %v", err), err)
	}
	res.Outcome = OutcomeOK
	return res
}

// unmarshalData разбирает data; отсутствующее или null поле даёт нулевое значение.
func unmarshalData(data json.RawMessage, dst any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, dst)
}

// normalizeURL убирает trailing slash из URL.
func normalizeURL(rawURL string) string {
	return strings.TrimRight(rawURL, "/")
}
