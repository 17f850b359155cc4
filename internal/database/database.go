// Пакет database обслуживает PostgreSQL журнала аудита: пул pgx, встроенные
// миграции golang-migrate и проверка готовности. Журнал необязателен:
// без IP_AUDIT_DB_HOST все функции возвращают ErrAuditDisabled.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cwxsss/inquisition-panel/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrAuditDisabled: журнал аудита не настроен (IP_AUDIT_DB_HOST пуст).
var ErrAuditDisabled = errors.New("журнал аудита не настроен")

const (
	// Журнал пишется по одной записи на действие оператора.
	auditMaxConns = 4
	pingTimeout   = 3 * time.Second
	appName       = "inquisition-panel"
)

// Connect открывает пул к базе журнала и проверяет его ping.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	if !cfg.AuditEnabled() {
		return nil, ErrAuditDisabled
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.AuditDatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("DSN журнала аудита: %w", err)
	}
	poolCfg.MaxConns = auditMaxConns
	poolCfg.ConnConfig.RuntimeParams["application_name"] = appName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("пул журнала аудита: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("PostgreSQL журнала аудита недоступен: %w", err)
	}

	logger.Info("Журнал аудита подключён",
		slog.String("host", cfg.AuditDBHost),
		slog.Int("port", cfg.AuditDBPort),
		slog.String("database", cfg.AuditDBName),
		slog.Int("max_conns", auditMaxConns),
	)
	return pool, nil
}

// Migrate применяет миграции audit_log. Повторный запуск ничего не меняет.
func Migrate(cfg *config.Config, logger *slog.Logger) error {
	return withMigrate(cfg, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("применение миграций: %w", err)
		}
		version, dirty, _ := m.Version()
		logger.Info("Миграции журнала аудита применены",
			slog.Uint64("version", uint64(version)),
			slog.Bool("dirty", dirty),
		)
		return nil
	})
}

// MigrateDown удаляет схему журнала (для тестов и ручного отката).
func MigrateDown(cfg *config.Config) error {
	return withMigrate(cfg, func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("откат миграций: %w", err)
		}
		return nil
	})
}

func withMigrate(cfg *config.Config, fn func(*migrate.Migrate) error) error {
	if !cfg.AuditEnabled() {
		return ErrAuditDisabled
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("источник миграций: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, MigrateURL(cfg))
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}
	defer m.Close()
	return fn(m)
}

// MigrateURL: URL базы журнала со схемой драйвера pgx5 golang-migrate.
func MigrateURL(cfg *config.Config) string {
	const scheme = "postgres://"
	return "pgx5://" + cfg.AuditDatabaseURL()[len(scheme):]
}

// ReadinessChecker: ping пула для /health/ready, когда topologymetrics
// не запущен.
type ReadinessChecker struct {
	pool *pgxpool.Pool
}

// NewReadinessChecker создаёт проверку по пулу.
func NewReadinessChecker(pool *pgxpool.Pool) *ReadinessChecker {
	return &ReadinessChecker{pool: pool}
}

// CheckReady возвращает "ok" или "fail" с причиной.
func (c *ReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := c.pool.Ping(ctx); err != nil {
		return "fail", fmt.Sprintf("PostgreSQL недоступен: %v", err)
	}
	stat := c.pool.Stat()
	return "ok", fmt.Sprintf("соединений: %d из %d", stat.TotalConns(), stat.MaxConns())
}
