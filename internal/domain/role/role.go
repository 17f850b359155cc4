// Пакет role: роли консоли и их навигация.
// Три роли: user (конечный пользователь), admin (администратор),
// prouser (агент-реселлер со своими субпользователями).
// Каждая роль владеет корневым префиксом пути (/user, /admin, /prouser).
package role

import "strings"

// Role: роль сессии. Значение совпадает с ключом userType в хранилище.
type Role string

// Допустимые роли.
const (
	User    Role = "user"
	Admin   Role = "admin"
	ProUser Role = "prouser"
)

// All: все роли в порядке отображения на странице входа.
var All = []Role{User, Admin, ProUser}

// Parse преобразует строку в роль. Второе значение false означает, что роль неизвестна.
func Parse(s string) (Role, bool) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return "", false
	}
	return r, true
}

// Valid проверяет, является ли значение допустимой ролью.
func (r Role) Valid() bool {
	switch r {
	case User, Admin, ProUser:
		return true
	}
	return false
}

// Root возвращает корневой путь роли ("/user", "/admin", "/prouser").
func (r Role) Root() string {
	return "/" + string(r)
}

// Dashboard возвращает путь стартовой страницы роли.
func (r Role) Dashboard() string {
	return r.Root() + "/dashboard"
}

// LoginEndpoint возвращает эндпоинт бэкенда для входа под ролью.
func (r Role) LoginEndpoint() string {
	switch r {
	case Admin:
		return "/adminLogin"
	case ProUser:
		return "/proUserLogin"
	default:
		return "/userLogin"
	}
}

// LoginField: имя поля логина в теле запроса входа:
// user входит по account, admin и prouser входят по username.
func (r Role) LoginField() string {
	if r == User {
		return "account"
	}
	return "username"
}

// ProtectedPrefixes: корни, доступ к которым требует cookie token.
func ProtectedPrefixes() []string {
	prefixes := make([]string, 0, len(All))
	for _, r := range All {
		prefixes = append(prefixes, r.Root())
	}
	return prefixes
}

// IsProtectedPath сообщает, начинается ли путь с корня какой-либо роли.
// Проверка префиксная: "/admin-x" тоже защищён.
func IsProtectedPath(path string) bool {
	for _, p := range ProtectedPrefixes() {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// NavItem: пункт боковой навигации.
type NavItem struct {
	// Key: ключ перевода и последний сегмент пути
	Key string
	// Path: полный путь страницы
	Path string
}

// navKeys: страницы каждой роли в порядке отображения.
var navKeys = map[Role][]string{
	User:    {"dashboard", "account", "logs", "settings"},
	Admin:   {"dashboard", "users", "agents", "tasks", "devices", "cdk", "logs", "settings"},
	ProUser: {"dashboard", "subusers", "cdk", "settings"},
}

// Nav возвращает навигацию роли. Для неизвестной роли возвращает nil.
func (r Role) Nav() []NavItem {
	keys := navKeys[r]
	if len(keys) == 0 {
		return nil
	}
	items := make([]NavItem, 0, len(keys))
	for _, k := range keys {
		items = append(items, NavItem{Key: k, Path: r.Root() + "/" + k})
	}
	return items
}
