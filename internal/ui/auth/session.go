// Пакет auth хранит сессию консоли: токен бэкенда и роль пользователя.
//
// Manager проходит жизненный цикл init → hydrate → ready и хранит сессию
// в памяти, зеркалируя её в Storage. Веб-сервер использует cookie-хранилище,
// CLI использует YAML-файл, тесты используют память.
package auth

import (
	"errors"
	"fmt"
	"unicode/utf16"

	"github.com/cwxsss/inquisition-panel/internal/domain/role"
)

// Ключи хранилища сессии.
const (
	// KeyToken: основной ключ токена
	KeyToken = "token"
	// KeyAdminToken: устаревший ключ токена, читается как запасной
	KeyAdminToken = "adminToken"
	// KeyUserType: роль пользователя
	KeyUserType = "userType"
)

// MinTokenLength: токен короче или равный этой длине недействителен.
const MinTokenLength = 10

// ErrInvalidRole: попытка входа с неизвестной ролью.
var ErrInvalidRole = errors.New("неизвестная роль пользователя")

// IsTokenValid проверяет форму токена: непустой и длиннее 10 символов.
// Длина считается в кодовых единицах UTF-16, как в браузерной консоли.
// Подпись и срок действия не проверяются: устаревший токен считается
// действительным, пока бэкенд не ответит кодом, отличным от 200.
func IsTokenValid(token string) bool {
	return tokenLength(token) > MinTokenLength
}

func tokenLength(token string) int {
	n := 0
	for _, r := range token {
		n += utf16.RuneLen(r)
	}
	return n
}

// Storage: постоянное хранилище ключей сессии.
type Storage interface {
	// Get возвращает значение ключа; ok == false, если ключа нет.
	Get(key string) (string, bool)
	// Set записывает значение.
	Set(key, value string) error
	// Remove удаляет ключи; отсутствующие ключи не ошибка.
	Remove(keys ...string) error
}

// State: стадия жизненного цикла Manager.
type State int

const (
	// StateInit: создан, хранилище ещё не прочитано
	StateInit State = iota
	// StateReady: сессия загружена или установлена явно
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "init"
}

// Session: снимок сессии.
type Session struct {
	Token string
	Role  role.Role
}

// IsAuthenticated сообщает, что токен задан.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// Manager: менеджер сессии. Источник истины в памяти;
// хранилище используется, пока память не заполнена.
// Экземпляр не предназначен для одновременного использования
// из нескольких горутин: веб-сервер создаёт его на каждый запрос.
type Manager struct {
	storage Storage
	state   State
	token   string
	role    role.Role
}

// NewManager создаёт менеджер в состоянии init.
func NewManager(storage Storage) *Manager {
	return &Manager{storage: storage, state: StateInit}
}

// State возвращает стадию жизненного цикла.
func (m *Manager) State() State {
	return m.state
}

// Hydrate загружает сессию из хранилища и переводит менеджер в ready.
// Память заполняется, только если в хранилище есть и токен, и роль.
// Повторный вызов ничего не делает.
func (m *Manager) Hydrate() {
	if m.state == StateReady {
		return
	}
	m.state = StateReady

	token, okToken := m.storage.Get(KeyToken)
	userType, okRole := m.storage.Get(KeyUserType)
	if !okToken || !okRole || token == "" {
		return
	}
	r, ok := role.Parse(userType)
	if !ok {
		return
	}
	m.token, m.role = token, r
}

// Session возвращает снимок сессии из памяти.
func (m *Manager) Session() Session {
	return Session{Token: m.token, Role: m.role}
}

// Token возвращает токен для запросов: из памяти, иначе из ключа token,
// иначе из устаревшего ключа adminToken. Пустая строка означает, что токена нет.
func (m *Manager) Token() string {
	if m.token != "" {
		return m.token
	}
	if t, ok := m.storage.Get(KeyToken); ok && t != "" {
		return t
	}
	if t, ok := m.storage.Get(KeyAdminToken); ok && t != "" {
		return t
	}
	return ""
}

// Role возвращает роль из памяти, иначе из хранилища ("" означает, что роль неизвестна).
func (m *Manager) Role() role.Role {
	if m.role != "" {
		return m.role
	}
	if v, ok := m.storage.Get(KeyUserType); ok {
		if r, ok := role.Parse(v); ok {
			return r
		}
	}
	return ""
}

// Login запоминает токен и роль и записывает их в хранилище.
func (m *Manager) Login(token string, r role.Role) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, r)
	}
	m.token, m.role = token, r
	m.state = StateReady

	if err := m.storage.Set(KeyToken, token); err != nil {
		return fmt.Errorf("сохранение токена: %w", err)
	}
	if err := m.storage.Set(KeyUserType, string(r)); err != nil {
		return fmt.Errorf("сохранение роли: %w", err)
	}
	return nil
}

// Logout очищает память и удаляет все ключи сессии из хранилища.
func (m *Manager) Logout() error {
	m.token, m.role = "", ""
	m.state = StateReady
	if err := m.storage.Remove(KeyToken, KeyAdminToken, KeyUserType); err != nil {
		return fmt.Errorf("очистка сессии: %w", err)
	}
	return nil
}
