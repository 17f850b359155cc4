// events.go: SSE endpoint статуса бэкенда 云控 для индикатора в шапке.
// Каждый SSE-клиент обслуживается отдельной горутиной.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultEventsInterval: период отправки статуса бэкенда.
const DefaultEventsInterval = 10 * time.Second

// BackendStatus: источник доступности бэкенда (мониторинг зависимостей).
type BackendStatus interface {
	// BackendOnline возвращает доступность бэкенда; known = false,
	// пока не выполнено ни одной проверки
	BackendOnline() (online, known bool)
}

// EventsHandler: обработчик SSE endpoints.
type EventsHandler struct {
	status   BackendStatus // может быть nil
	interval time.Duration
	logger   *slog.Logger
}

// NewEventsHandler создаёт новый EventsHandler.
// interval <= 0 заменяется на DefaultEventsInterval.
func NewEventsHandler(status BackendStatus, interval time.Duration, logger *slog.Logger) *EventsHandler {
	if interval <= 0 {
		interval = DefaultEventsInterval
	}
	return &EventsHandler{
		status:   status,
		interval: interval,
		logger:   logger.With(slog.String("component", "ui.events")),
	}
}

// backendStatusEvent: SSE-событие backend-status.
type backendStatusEvent struct {
	Online bool `json:"online"`
	Known  bool `json:"known"`
}

// HandleBackendStatus обрабатывает GET /events/backend.
// Формат: event: backend-status\ndata: {json}\n\n; первое сразу при подключении
// и далее с периодом interval до отключения клиента.
func (h *EventsHandler) HandleBackendStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Отключаем буферизацию Nginx

	// ResponseController находит http.Flusher через Unwrap() обёрток middleware
	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		http.Error(w, "SSE не поддерживается", http.StatusInternalServerError)
		return
	}
	// Поток живёт дольше WriteTimeout сервера
	_ = rc.SetWriteDeadline(time.Time{})

	ctx := r.Context()
	h.logger.Debug("SSE клиент подключён", slog.String("remote_addr", r.RemoteAddr))

	if err := h.send(w, rc); err != nil {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("SSE клиент отключён", slog.String("remote_addr", r.RemoteAddr))
			return
		case <-ticker.C:
			if err := h.send(w, rc); err != nil {
				return
			}
		}
	}
}

func (h *EventsHandler) send(w http.ResponseWriter, rc *http.ResponseController) error {
	var event backendStatusEvent
	if h.status != nil {
		event.Online, event.Known = h.status.BackendOnline()
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Ошибка сериализации backend-status", slog.String("error", err.Error()))
		return err
	}
	if _, err := fmt.Fprintf(w, "event: backend-status\ndata: %s\n\n", data); err != nil {
		return err
	}
	return rc.Flush()
}
