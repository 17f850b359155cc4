// dephealth.go: интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// Панель мониторит:
//   - backend: HTTP checker к бэкенду 云控 (IP_BACKEND_HEALTH_PATH, critical)
//   - audit-postgresql: SQL checker через pgxpool журнала аудита (только если журнал настроен)
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health
//   - app_dependency_latency_seconds
//   - app_dependency_status
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker для бэкенда
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// Имена зависимостей в topologymetrics.
const (
	DepBackend  = "backend"
	DepAuditLog = "audit-postgresql"
)

// DephealthConfig: параметры мониторинга зависимостей.
type DephealthConfig struct {
	// Имя вершины графа текущего приложения
	ServiceID string
	// Группа сервиса в метриках
	Group string
	// Базовый URL бэкенда 云控
	BackendURL string
	// Путь, который опрашивает HTTP checker
	BackendHealthPath string
	// *sql.DB журнала аудита из stdlib.OpenDBFromPool(); nil, если журнал выключен
	AuditDB *sql.DB
	// URL PostgreSQL журнала (для лейблов, не для подключения)
	AuditURL string
	// Интервал проверки
	CheckInterval time.Duration
}

// DephealthService: сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	health func() map[string]bool
	audit  bool
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
func NewDephealthService(cfg DephealthConfig, logger *slog.Logger) (*DephealthService, error) {
	return newDephealthService(cfg, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(cfg DephealthConfig, logger *slog.Logger, registerer prometheus.Registerer) (*DephealthService, error) {
	return newDephealthService(cfg, logger, dephealth.WithRegisterer(registerer))
}

func newDephealthService(cfg DephealthConfig, logger *slog.Logger, extraOpts ...dephealth.Option) (*DephealthService, error) {
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("не задан URL бэкенда")
	}
	healthPath := cfg.BackendHealthPath
	if healthPath == "" {
		healthPath = "/"
	}

	opts := []dephealth.Option{
		dephealth.WithLogger(logger),
		dephealth.HTTP(DepBackend,
			dephealth.FromURL(cfg.BackendURL),
			dephealth.WithHTTPHealthPath(healthPath),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(true),
		),
	}

	audit := cfg.AuditDB != nil
	if audit {
		// Connection pool mode: проверка через существующий пул журнала.
		// Журнал не критичен: без него консоль продолжает работать.
		opts = append(opts, dephealth.AddDependency(DepAuditLog, dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(cfg.AuditDB)),
			dephealth.FromURL(cfg.AuditURL),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(false),
		))
	}
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(cfg.ServiceID, cfg.Group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		health: dh.Health,
		audit:  audit,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен",
		slog.Bool("audit_log", ds.audit),
	)
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ: "dependency:host:port", значение true, если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.health()
}

// BackendOnline возвращает доступность бэкенда 云控. known = false,
// пока первая проверка не выполнена.
func (ds *DephealthService) BackendOnline() (online, known bool) {
	return findHealthByPrefix(ds.health(), DepBackend)
}

// BackendChecker: проверка готовности бэкенда для /health/ready.
func (ds *DephealthService) BackendChecker() *DepChecker {
	return &DepChecker{ds: ds, dep: DepBackend, label: "бэкенд 云控"}
}

// AuditChecker: проверка готовности журнала аудита.
// nil, если журнал не настроен.
func (ds *DephealthService) AuditChecker() *DepChecker {
	if !ds.audit {
		return nil
	}
	return &DepChecker{ds: ds, dep: DepAuditLog, label: "журнал аудита"}
}

// DepChecker: адаптер статуса зависимости к handlers.ReadinessChecker.
type DepChecker struct {
	ds    *DephealthService
	dep   string
	label string
}

// CheckReady возвращает "ok", "fail" или "degraded" (проверка ещё не выполнялась).
func (c *DepChecker) CheckReady() (status string, message string) {
	ok, known := findHealthByPrefix(c.ds.health(), c.dep)
	switch {
	case !known:
		return "degraded", c.label + ": проверка ещё не выполнялась"
	case ok:
		return "ok", c.label + " доступен"
	default:
		return "fail", c.label + " недоступен"
	}
}

// findHealthByPrefix ищет статус зависимости по префиксу имени.
// Health() возвращает ключи формата "dependency:host:port".
// Если найдено несколько, healthy только если все healthy.
func findHealthByPrefix(health map[string]bool, name string) (ok, found bool) {
	ok = true
	for key, healthy := range health {
		if key == name || strings.HasPrefix(key, name+":") {
			found = true
			if !healthy {
				ok = false
			}
		}
	}
	return ok && found, found
}
