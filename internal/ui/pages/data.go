package pages

import (
	"time"

	"github.com/cwxsss/inquisition-panel/internal/accountconfig"
	"github.com/cwxsss/inquisition-panel/internal/backend"
	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
	"github.com/cwxsss/inquisition-panel/internal/ui/auth"
)

// LoginData: страница входа.
type LoginData struct {
	Layout
	Roles    []role.Role
	Selected role.Role
	Login    string
}

// PlaceholderData: заглушка «请先登录» для страницы без действительного токена.
type PlaceholderData struct {
	Layout
}

// UserDashboardData: панель пользователя.
type UserDashboardData struct {
	Layout
	Announcement *model.Announcement
	Status       string
	Account      *model.Account
	San          string
}

// AccountFormData: редактор аккаунта (свой аккаунт, новый или существующий).
type AccountFormData struct {
	Layout
	Action  string
	Editing bool
	// Basic: показывать поля имени, логина, пароля и срока
	Basic bool
	// Expire: при редактировании показывать срок действия
	Expire  bool
	Account model.Account
	Days    int
	Editor  *accountconfig.Editor
	Back    string
}

// LogsData: журнал (свой или всех аккаунтов).
type LogsData struct {
	Layout
	Logs      pagination.Page[model.LogEntry]
	Pager     Pager
	CanDelete bool
	Account   string
}

// ServerOption: вариант сервера в форме.
type ServerOption struct {
	Value int
	Label string
}

// Servers: варианты сервера аккаунта.
var Servers = []ServerOption{
	{Value: model.ServerOfficial, Label: model.ServerLabel(model.ServerOfficial)},
	{Value: model.ServerBilibili, Label: model.ServerLabel(model.ServerBilibili)},
}

// SettingsData: страница настроек любой роли.
type SettingsData struct {
	Layout
	Account *model.Account
	Info    *model.ProUser
	Token   *auth.TokenInfo
	Servers []ServerOption
	// Audit: последние записи журнала аудита (только admin)
	Audit        []model.AuditEntry
	AuditEnabled bool
}

// AdminDashboardData: панель администратора.
type AdminDashboardData struct {
	Layout
	Stats        *model.Statistics
	Announcement *model.Announcement
}

// AccountListData: список аккаунтов (admin) или субпользователей (prouser).
type AccountListData struct {
	Layout
	Accounts  pagination.Page[model.Account]
	Pager     Pager
	Filter    backend.AccountFilter
	SubFilter string
	Filters   []string
	Keyword   string
	TaskTypes []string
	Now       time.Time
}

// AgentsData: список агентов.
type AgentsData struct {
	Layout
	Agents   pagination.Page[model.ProUser]
	Pager    Pager
	Username string
}

// TasksData: очередь задач.
type TasksData struct {
	Layout
	Tab     string
	Tabs    []string
	Free    []model.FreeTask
	Locked  []model.LockTask
	Cooling []model.Account
}

// DevicesData: устройства.
type DevicesData struct {
	Layout
	Filter  string
	Keyword string
	Devices pagination.Page[model.Device]
	Pager   Pager
}

// CDKFilter: фильтры списка CDK.
type CDKFilter struct {
	Type    string
	Tag     string
	CDK     string
	IsAgent string
	Agent   string
	Used    string
	Param   string
}

// CDKData: CDK (admin или агент).
type CDKData struct {
	Layout
	Filter CDKFilter
	CDKs   pagination.Page[model.CDK]
	Pager  Pager
	Types  []string
	// Agent означает страницу агента, форма без выбора агента
	Agent bool
}

// ProUserDashboardData: панель агента.
type ProUserDashboardData struct {
	Layout
	Info     *model.ProUser
	SubUsers pagination.Page[model.Account]
	Expiring []model.Account
}
