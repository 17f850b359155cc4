// Пакет server: HTTP-сервер Inquisition Panel с graceful shutdown.
// Без TLS: TLS termination на ingress.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/cwxsss/inquisition-panel/internal/api/errors"
	"github.com/cwxsss/inquisition-panel/internal/api/handlers"
	"github.com/cwxsss/inquisition-panel/internal/api/middleware"
	"github.com/cwxsss/inquisition-panel/internal/config"
	"github.com/cwxsss/inquisition-panel/internal/ui/i18n"
	uihandlers "github.com/cwxsss/inquisition-panel/internal/ui/handlers"
	uimiddleware "github.com/cwxsss/inquisition-panel/internal/ui/middleware"
	"github.com/cwxsss/inquisition-panel/internal/ui/static"
)

// APIComponents: служебные endpoints и JSON-прокси.
type APIComponents struct {
	Health *handlers.HealthHandler
	Proxy  *handlers.ProxyHandler
}

// UIComponents: обработчики страниц консоли.
type UIComponents struct {
	Sessions *uimiddleware.SessionLoader
	Auth     *uihandlers.AuthHandler
	User     *uihandlers.UserHandler
	ProUser  *uihandlers.ProUserHandler
	Admin    *uihandlers.AdminHandler
	Events   *uihandlers.EventsHandler
}

// Server: HTTP-сервер панели.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, api APIComponents, ui UIComponents) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(cfg, logger, api, ui),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает chi-роутер панели.
func NewRouter(cfg *config.Config, logger *slog.Logger, api APIComponents, ui UIComponents) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.RequestID())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Служебные endpoints: без сессии и языка
	router.Get("/health/live", api.Health.HealthLive)
	router.Get("/health/ready", api.Health.HealthReady)
	router.Get("/metrics", api.Health.GetMetrics)

	// JSON-прокси к бэкенду 云控 с Bearer-токеном
	router.Route("/api", func(r chi.Router) {
		r.With(middleware.RequireBearer(api.Proxy.IsPublic)).Handle("/{endpoint}", api.Proxy)
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) { apierrors.NotFound(w) })
	})

	// Статика встроена в бинарник
	router.Handle("/static/*", http.StripPrefix("/static/", static.Handler()))

	// Страницы консоли
	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware(cfg.DefaultLang))
		r.Use(ui.Sessions.Middleware())
		r.Use(uimiddleware.Guard(logger))

		r.Get("/lang/{code}", uihandlers.HandleSetLanguage)
		r.Get("/events/backend", ui.Events.HandleBackendStatus)

		r.Get("/", ui.Auth.HandleLoginPage)
		r.Post("/login", ui.Auth.HandleLogin)
		r.Post("/logout", ui.Auth.HandleLogout)

		r.Route("/user", func(r chi.Router) {
			r.Get("/", redirect("/user/dashboard"))
			r.Get("/dashboard", ui.User.HandleDashboard)
			r.Post("/dashboard/start", ui.User.HandleStart)
			r.Post("/dashboard/halt", ui.User.HandleHalt)
			r.Post("/dashboard/freeze", ui.User.HandleFreeze)
			r.Get("/account", ui.User.HandleAccount)
			r.Post("/account", ui.User.HandleAccountSubmit)
			r.Get("/logs", ui.User.HandleLogs)
			r.Get("/settings", ui.User.HandleSettings)
			r.Post("/settings/credentials", ui.User.HandleCredentials)
			r.Post("/settings/cdk", ui.User.HandleUseCDK)
		})

		r.Route("/prouser", func(r chi.Router) {
			r.Get("/", redirect("/prouser/dashboard"))
			r.Get("/dashboard", ui.ProUser.HandleDashboard)
			r.Get("/subusers", ui.ProUser.HandleSubUsers)
			r.Post("/subusers/new", ui.ProUser.HandleNewSubUser)
			r.Post("/subusers/{id}/renew", ui.ProUser.HandleRenew)
			r.Post("/subusers/{id}/cdk", ui.ProUser.HandleActivateCDK)
			r.Post("/subusers/{id}/fight", ui.ProUser.HandleFight)
			r.Post("/subusers/{id}/stop", ui.ProUser.HandleStop)
			r.Get("/subusers/{id}/edit", ui.ProUser.HandleEditSubUser)
			r.Post("/subusers/{id}/edit", ui.ProUser.HandleEditSubUserSubmit)
			r.Get("/cdk", ui.ProUser.HandleCDK)
			r.Post("/cdk/new", ui.ProUser.HandleNewCDK)
			r.Get("/settings", ui.ProUser.HandleSettings)
			r.Post("/settings/password", ui.ProUser.HandlePassword)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/", redirect("/admin/dashboard"))
			r.Get("/dashboard", ui.Admin.HandleDashboard)
			r.Post("/dashboard/announcement", ui.Admin.HandleAnnouncement)
			r.Post("/dashboard/password", ui.Admin.HandleChangePassword)

			r.Get("/users", ui.Admin.HandleUsers)
			r.Get("/users/new", ui.Admin.HandleNewAccount)
			r.Post("/users/new", ui.Admin.HandleNewAccountSubmit)
			r.Post("/users/{id}/start", ui.Admin.HandleStartAccount)
			r.Post("/users/{id}/unfreeze", ui.Admin.HandleUnfreezeAccount)
			r.Post("/users/{id}/reset-dynamic", ui.Admin.HandleResetDynamic)
			r.Post("/users/{id}/reset-refresh", ui.Admin.HandleResetRefresh)
			r.Post("/users/{id}/delete", ui.Admin.HandleDeleteAccount)
			r.Get("/users/{id}/edit", ui.Admin.HandleEditAccount)
			r.Post("/users/{id}/edit", ui.Admin.HandleEditAccountSubmit)

			r.Get("/logs", ui.Admin.HandleLogs)
			r.Post("/logs/{id}/delete", ui.Admin.HandleDeleteLog)
			r.Get("/settings", ui.Admin.HandleSettings)

			r.Get("/agents", ui.Admin.HandleAgents)
			r.Post("/agents/new", ui.Admin.HandleNewAgent)
			r.Post("/agents/{id}/update", ui.Admin.HandleUpdateAgent)
			r.Post("/agents/{id}/toggle", ui.Admin.HandleToggleAgent)

			r.Get("/tasks", ui.Admin.HandleTasks)
			r.Post("/tasks/unlock", ui.Admin.HandleUnlockDevice)
			r.Post("/tasks/unlock-all", ui.Admin.HandleUnlockAll)
			r.Post("/tasks/load-all", ui.Admin.HandleLoadAll)
			r.Post("/tasks/{id}/insert", ui.Admin.HandleInsertTask)
			r.Post("/tasks/{id}/remove", ui.Admin.HandleRemoveTask)
			r.Post("/tasks/{id}/start-now", ui.Admin.HandleStartCooled)
			r.Post("/tasks/{id}/unfreeze", ui.Admin.HandleUnfreezeTask)

			r.Get("/devices", ui.Admin.HandleDevices)
			r.Post("/devices/new", ui.Admin.HandleNewDevice)
			r.Post("/devices/{id}/rename", ui.Admin.HandleRenameDevice)
			r.Post("/devices/{id}/toggle", ui.Admin.HandleToggleDevice)

			r.Get("/cdk", ui.Admin.HandleCDK)
			r.Post("/cdk/new", ui.Admin.HandleNewCDK)
		})
	})

	return router
}

// redirect: переход на раздел по умолчанию.
func redirect(to string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, to, http.StatusFound)
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
