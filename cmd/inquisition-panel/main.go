// Точка входа Inquisition Panel: веб-консоль облачного управления 云控.
// Загружает конфигурацию, создаёт клиент бэкенда, при наличии настроек
// подключает журнал аудита (PostgreSQL, миграции), запускает мониторинг
// зависимостей (topologymetrics), HTTP-сервер и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/cwxsss/inquisition-panel/internal/api/handlers"
	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/backend"
	"github.com/cwxsss/inquisition-panel/internal/config"
	"github.com/cwxsss/inquisition-panel/internal/database"
	"github.com/cwxsss/inquisition-panel/internal/repository"
	"github.com/cwxsss/inquisition-panel/internal/server"
	"github.com/cwxsss/inquisition-panel/internal/service"
	"github.com/cwxsss/inquisition-panel/internal/ui/auth"
	uihandlers "github.com/cwxsss/inquisition-panel/internal/ui/handlers"
	"github.com/cwxsss/inquisition-panel/internal/ui/i18n"
	uimiddleware "github.com/cwxsss/inquisition-panel/internal/ui/middleware"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Inquisition Panel запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	if cfg.SessionSecret == "" {
		logger.Warn("IP_SESSION_SECRET не задан, сессии не сохраняются между рестартами")
	}

	// 3. i18n каталоги
	bundle := i18n.Init(cfg.DefaultLang, logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// 4. Журнал аудита (опционально)
	var (
		auditRepo repository.AuditRepository
		pool      *pgxpool.Pool
	)
	if cfg.AuditEnabled() {
		logger.Info("Применение миграций журнала аудита...")
		if err := database.Migrate(cfg, logger); err != nil {
			logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
			os.Exit(1)
		}

		pool, err = database.Connect(ctx, cfg, logger)
		if err != nil {
			logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		auditRepo = repository.NewAuditRepository(pool)
	} else {
		logger.Info("Журнал аудита отключён (IP_AUDIT_DB_HOST не задан)")
	}
	auditSvc := service.NewAuditService(auditRepo, logger)

	// 5. Клиент бэкенда 云控
	client := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, logger)
	api := backend.New(client)

	// 6. topologymetrics: мониторинг бэкенда и журнала аудита
	depCfg := service.DephealthConfig{
		ServiceID:         handlers.ServiceName,
		Group:             cfg.DephealthGroup,
		BackendURL:        cfg.APIBaseURL,
		BackendHealthPath: cfg.BackendHealthPath,
		CheckInterval:     cfg.DephealthCheckInterval,
	}
	if pool != nil {
		// Адаптер pgxpool → *sql.DB (connection pool mode)
		pgDB := stdlib.OpenDBFromPool(pool)
		defer pgDB.Close()
		depCfg.AuditDB = pgDB
		depCfg.AuditURL = cfg.AuditDatabaseURL()
	}

	dephealthSvc, dephealthErr := service.NewDephealthService(depCfg, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 7. Health и JSON-прокси
	apiComponents := server.APIComponents{
		Health: newHealthHandler(dephealthSvc, pool),
		Proxy:  handlers.NewProxyHandler(client, logger),
	}

	// 8. Страницы консоли
	deps := uihandlers.Deps{
		API:    api,
		Audit:  auditSvc,
		Flash:  uihandlers.NewFlashStore(cfg.SessionSecret, cfg.CookieSecure, logger),
		Logger: logger,
	}
	var status uihandlers.BackendStatus
	if dephealthSvc != nil {
		status = dephealthSvc
	}
	uiComponents := server.UIComponents{
		Sessions: uimiddleware.NewSessionLoader(
			auth.NewCodec(cfg.SessionSecret),
			auth.CookieOptions{MaxAge: cfg.CookieMaxAge, Secure: cfg.CookieSecure},
			logger,
		),
		Auth:    uihandlers.NewAuthHandler(deps),
		User:    uihandlers.NewUserHandler(deps),
		ProUser: uihandlers.NewProUserHandler(deps),
		Admin:   uihandlers.NewAdminHandler(deps),
		Events:  uihandlers.NewEventsHandler(status, uihandlers.DefaultEventsInterval, logger),
	}

	// 9. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiComponents, uiComponents)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 10. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Inquisition Panel остановлен")
}

// newHealthHandler выбирает проверки готовности. Без topologymetrics
// проверка бэкенда отсутствует (fail), журнал проверяется ping через пул.
func newHealthHandler(ds *service.DephealthService, pool *pgxpool.Pool) *handlers.HealthHandler {
	var backendChecker, auditChecker handlers.ReadinessChecker
	if ds != nil {
		backendChecker = ds.BackendChecker()
		if c := ds.AuditChecker(); c != nil {
			auditChecker = c
		}
	}
	if auditChecker == nil && pool != nil {
		auditChecker = database.NewReadinessChecker(pool)
	}
	return handlers.NewHealthHandler(backendChecker, auditChecker)
}
