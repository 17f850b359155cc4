// health.go обслуживает пробы консоли: /health/live, /health/ready и /metrics.
// Готовность определяется бэкендом 云控; журнал аудита необязателен
// и при сбое только понижает статус до degraded.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cwxsss/inquisition-panel/internal/config"
)

// ServiceName: имя сервиса в пробах и topologymetrics.
const ServiceName = "inquisition-panel"

// Статусы проверок.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFail     = "fail"
	StatusDisabled = "disabled"
)

// Имена проверок в ответе /health/ready.
const (
	CheckBackend  = "backend"
	CheckAuditLog = "audit_log"
)

// ReadinessChecker: проверка одной зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает StatusOK, StatusDegraded или StatusFail и пояснение.
	CheckReady() (status string, message string)
}

type readinessCheck struct {
	name     string
	checker  ReadinessChecker
	critical bool
}

// HealthHandler: обработчик проб.
type HealthHandler struct {
	checks      []readinessCheck
	promHandler http.Handler
	now         func() time.Time
}

// NewHealthHandler создаёт обработчик проб. Без backend проверка
// бэкенда считается fail; без audit журнал помечается disabled.
func NewHealthHandler(backend, audit ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		checks: []readinessCheck{
			{name: CheckBackend, checker: backend, critical: true},
			{name: CheckAuditLog, checker: audit},
		},
		promHandler: promhttp.Handler(),
		now:         time.Now,
	}
}

type checkResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	Service   string                 `json:"service"`
	Checks    map[string]checkResult `json:"checks,omitempty"`
}

func (h *HealthHandler) response(status string) healthResponse {
	return healthResponse{
		Status:    status,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   ServiceName,
	}
}

// HealthLive: процесс жив, всегда 200.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.response(StatusOK))
}

// HealthReady: 200 при ok/degraded, 503 при fail.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := h.response("")
	resp.Checks = make(map[string]checkResult, len(h.checks))

	statuses := make([]string, 0, len(h.checks))
	for _, c := range h.checks {
		res := c.run()
		resp.Checks[c.name] = res
		switch {
		case res.Status == StatusDisabled:
			continue
		case res.Status == StatusFail && !c.critical:
			statuses = append(statuses, StatusDegraded)
		default:
			statuses = append(statuses, res.Status)
		}
	}
	resp.Status = overallStatus(statuses...)

	code := http.StatusOK
	if resp.Status == StatusFail {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (c readinessCheck) run() checkResult {
	switch {
	case c.checker != nil:
		status, msg := c.checker.CheckReady()
		return checkResult{Status: status, Message: msg}
	case c.critical:
		return checkResult{Status: StatusFail, Message: "проверка не настроена"}
	default:
		return checkResult{Status: StatusDisabled}
	}
}

// GetMetrics отдаёт метрики Prometheus.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// overallStatus: fail, если есть fail; degraded, если есть degraded; иначе ok.
func overallStatus(statuses ...string) string {
	result := StatusOK
	for _, s := range statuses {
		switch s {
		case StatusFail:
			return StatusFail
		case StatusDegraded:
			result = StatusDegraded
		}
	}
	return result
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
