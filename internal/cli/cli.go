// Пакет cli: консольный клиент panelctl поверх тех же пакетов, что и
// веб-консоль: backend для вызовов 云控, auth для сессии (YAML-файл
// с ключами token, adminToken, userType).
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cwxsss/inquisition-panel/internal/apiclient"
	"github.com/cwxsss/inquisition-panel/internal/backend"
	"github.com/cwxsss/inquisition-panel/internal/config"
	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/ui/auth"
)

// ErrNotLoggedIn: в файле сессии нет токена.
var ErrNotLoggedIn = errors.New("请先登录 (panelctl login)")

// options: глобальные флаги.
type options struct {
	baseURL     string
	sessionPath string
	timeout     time.Duration
	jsonOutput  bool
	noColor     bool
	verbose     bool
}

// app: зависимости команд, создаются в PersistentPreRunE.
type app struct {
	opts    *options
	api     *backend.API
	storage *auth.FileStorage
	session *auth.Manager
	out     io.Writer
	errOut  io.Writer
}

// NewRootCmd создаёт корневую команду panelctl.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "panelctl",
		Short:         "Консольный клиент Inquisition Panel",
		Long:          "panelctl управляет аккаунтами 云控 из терминала: вход, журналы, очередь задач, статистика.",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", envDefault("IP_API_BASE_URL", config.DefaultAPIBaseURL), "базовый URL бэкенда 云控")
	flags.StringVar(&opts.sessionPath, "session", "", "файл сессии (по умолчанию ~/.config/inquisition-panel/session.yaml)")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "таймаут запроса к бэкенду")
	flags.BoolVar(&opts.jsonOutput, "json", false, "вывод в JSON")
	flags.BoolVar(&opts.noColor, "no-color", false, "без цветов")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "отладочный вывод")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newAccountsCmd(a),
		newLogsCmd(a),
		newTasksCmd(a),
		newStatsCmd(a),
		newCDKCmd(a),
	)
	return root
}

// Execute запускает panelctl и возвращает код выхода.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(root.ErrOrStderr(), "错误: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) init(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()
	if a.opts.noColor {
		color.NoColor = true
	}

	level := slog.LevelWarn
	if a.opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	path := a.opts.sessionPath
	if path == "" {
		p, err := auth.DefaultSessionPath()
		if err != nil {
			return err
		}
		path = p
	}
	a.storage = auth.NewFileStorage(path)
	a.session = auth.NewManager(a.storage)
	a.session.Hydrate()

	a.api = backend.New(apiclient.New(a.opts.baseURL, a.opts.timeout, logger))
	return nil
}

// require возвращает токен, если сессия принадлежит одной из ролей.
func (a *app) require(roles ...role.Role) (string, error) {
	token, current := a.session.Token(), a.session.Role()
	if !auth.IsTokenValid(token) {
		return "", ErrNotLoggedIn
	}
	for _, r := range roles {
		if current == r {
			return token, nil
		}
	}
	return "", fmt.Errorf("команда недоступна для роли %q", current)
}

// check превращает исход вызова в ошибку. Отвергнутый токен
// дополнительно подсказывает войти заново.
func check[T any](res apiclient.Result[T]) error {
	if res.Unauthorized() {
		return fmt.Errorf("%s: %w", res.Message("认证失败"), ErrNotLoggedIn)
	}
	return res.Error()
}

// emitJSON печатает значение в JSON с отступами.
func (a *app) emitJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// success печатает зелёное сообщение об успешной операции.
func (a *app) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(a.out, "✓ "+format+"\n", args...)
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// cmdContext: контекст команды; без ExecuteContext используется context.Background.
func cmdContext(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}
