// Пакет config: загрузка и валидация конфигурации Inquisition Panel
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// DefaultAPIBaseURL: адрес бэкенда 云控 по умолчанию.
const DefaultAPIBaseURL = "http://localhost:3000"

// Config содержит все параметры конфигурации панели.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Бэкенд 云控 ---

	// Базовый URL бэкенда без завершающего слэша
	APIBaseURL string
	// Таймаут HTTP-запросов к бэкенду
	APITimeout time.Duration
	// Путь, который опрашивает мониторинг зависимостей
	BackendHealthPath string

	// --- Сессия ---

	// Атрибут Secure у cookie
	CookieSecure bool
	// Время жизни cookie token
	CookieMaxAge time.Duration
	// Ключ подписи cookie userType и flash (пустой означает случайный при старте)
	SessionSecret string
	// Язык интерфейса по умолчанию
	DefaultLang string

	// --- Журнал аудита (PostgreSQL, опционально) ---

	// Хост PostgreSQL; пустое значение отключает журнал
	AuditDBHost string
	// Порт PostgreSQL
	AuditDBPort int
	// Имя базы данных
	AuditDBName string
	// Имя пользователя PostgreSQL
	AuditDBUser string
	// Пароль пользователя PostgreSQL
	AuditDBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	AuditDBSSLMode string

	// --- topologymetrics ---

	// Группа сервиса в topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// значения и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// IP_PORT: порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("IP_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("IP_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("IP_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("IP_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("IP_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("IP_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("IP_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Бэкенд ---

	// IP_API_BASE_URL имеет приоритет, NEXT_PUBLIC_API_BASE_URL оставлен
	// для совместимости со старыми окружениями
	cfg.APIBaseURL = getEnvDefault("IP_API_BASE_URL",
		getEnvDefault("NEXT_PUBLIC_API_BASE_URL", DefaultAPIBaseURL))
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if u, parseErr := url.Parse(cfg.APIBaseURL); parseErr != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("IP_API_BASE_URL: некорректный URL %q", cfg.APIBaseURL)
	}

	cfg.APITimeout, err = getEnvDuration("IP_API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("IP_API_TIMEOUT: %w", err)
	}

	cfg.BackendHealthPath = getEnvDefault("IP_BACKEND_HEALTH_PATH", "/getAnnouncement")
	if !strings.HasPrefix(cfg.BackendHealthPath, "/") {
		cfg.BackendHealthPath = "/" + cfg.BackendHealthPath
	}

	// --- Сессия ---

	cfg.CookieSecure, err = getEnvBool("IP_COOKIE_SECURE", false)
	if err != nil {
		return nil, fmt.Errorf("IP_COOKIE_SECURE: %w", err)
	}

	// IP_COOKIE_MAX_AGE: срок жизни cookie token (по умолчанию 7 дней)
	cfg.CookieMaxAge, err = getEnvDuration("IP_COOKIE_MAX_AGE", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("IP_COOKIE_MAX_AGE: %w", err)
	}
	if cfg.CookieMaxAge < time.Second {
		return nil, fmt.Errorf("IP_COOKIE_MAX_AGE: значение %s меньше 1s", cfg.CookieMaxAge)
	}

	cfg.SessionSecret = getEnvDefault("IP_SESSION_SECRET", "")

	cfg.DefaultLang = getEnvDefault("IP_DEFAULT_LANG", "zh")
	if cfg.DefaultLang != "zh" && cfg.DefaultLang != "en" {
		return nil, fmt.Errorf("IP_DEFAULT_LANG: недопустимое значение %q, допустимые: zh, en", cfg.DefaultLang)
	}

	// --- Журнал аудита ---

	cfg.AuditDBHost = getEnvDefault("IP_AUDIT_DB_HOST", "")
	if cfg.AuditDBHost != "" {
		cfg.AuditDBPort, err = getEnvInt("IP_AUDIT_DB_PORT", 5432)
		if err != nil {
			return nil, fmt.Errorf("IP_AUDIT_DB_PORT: %w", err)
		}
		if cfg.AuditDBName, err = getEnvRequired("IP_AUDIT_DB_NAME"); err != nil {
			return nil, err
		}
		if cfg.AuditDBUser, err = getEnvRequired("IP_AUDIT_DB_USER"); err != nil {
			return nil, err
		}
		if cfg.AuditDBPassword, err = getEnvRequired("IP_AUDIT_DB_PASSWORD"); err != nil {
			return nil, err
		}
		cfg.AuditDBSSLMode = getEnvDefault("IP_AUDIT_DB_SSL_MODE", "disable")
		validSSLModes := map[string]bool{
			"disable": true, "require": true, "verify-ca": true, "verify-full": true,
		}
		if !validSSLModes[cfg.AuditDBSSLMode] {
			return nil, fmt.Errorf("IP_AUDIT_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.AuditDBSSLMode)
		}
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("IP_DEPHEALTH_GROUP", "inquisition")
	cfg.DephealthCheckInterval, err = getEnvDuration("IP_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("IP_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("IP_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("IP_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// AuditEnabled сообщает, настроен ли журнал аудита.
func (c *Config) AuditEnabled() bool {
	return c.AuditDBHost != ""
}

// AuditDatabaseDSN возвращает строку подключения к PostgreSQL журнала аудита.
func (c *Config) AuditDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.AuditDBHost, c.AuditDBPort, c.AuditDBName, c.AuditDBUser, c.AuditDBPassword, c.AuditDBSSLMode,
	)
}

// AuditDatabaseURL возвращает URL PostgreSQL (для golang-migrate и topologymetrics).
func (c *Config) AuditDatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.AuditDBUser, c.AuditDBPassword),
		Host:     fmt.Sprintf("%s:%d", c.AuditDBHost, c.AuditDBPort),
		Path:     c.AuditDBName,
		RawQuery: "sslmode=" + c.AuditDBSSLMode,
	}
	return u.String()
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное логическое значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
