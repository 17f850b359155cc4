package model

import (
	"time"

	"github.com/cwxsss/inquisition-panel/internal/accountconfig"
)

// Флаги 0/1 в записях бэкенда.
const (
	FlagOff = 0
	FlagOn  = 1
)

// Типы задач аккаунта.
const (
	TaskDaily    = "daily"
	TaskRogue    = "rogue"
	TaskSandFire = "sand_fire"
)

// TaskTypes: типы задач в порядке отображения.
var TaskTypes = []string{TaskDaily, TaskRogue, TaskSandFire}

// TaskTypeLabel возвращает подпись типа задачи (неизвестный тип возвращается как есть).
func TaskTypeLabel(taskType string) string {
	switch taskType {
	case TaskDaily:
		return "日常任务"
	case TaskRogue:
		return "肉鸽任务"
	case TaskSandFire:
		return "生息演算"
	default:
		return taskType
	}
}

// Серверы игры.
const (
	ServerOfficial = 0
	ServerBilibili = 1
)

// ServerLabel возвращает подпись сервера: 0 → 官服, иначе B服.
func ServerLabel(server int) string {
	if server == ServerOfficial {
		return "官服"
	}
	return "B服"
}

// Account: игровой аккаунт, которым управляет 云控.
type Account struct {
	ID         int                `json:"id"`
	Name       string             `json:"name"`
	Account    string             `json:"account"`
	Password   string             `json:"password,omitempty"`
	Freeze     int                `json:"freeze"`
	Server     int                `json:"server"`
	TaskType   string             `json:"taskType"`
	Refresh    int                `json:"refresh"`
	Agent      OptString          `json:"agent"`
	CreateTime string             `json:"createTime"`
	UpdateTime string             `json:"updateTime"`
	ExpireTime string             `json:"expireTime"`
	San        OptString          `json:"san"`
	Config     accountconfig.Tree `json:"config"`
	Active     accountconfig.Tree `json:"active"`
	Notice     accountconfig.Tree `json:"notice"`
	Delete     int                `json:"delete"`
}

// Frozen сообщает, что аккаунт заморожен.
func (a Account) Frozen() bool { return a.Freeze != FlagOff }

// Deleted сообщает, что аккаунт помечен удалённым.
func (a Account) Deleted() bool { return a.Delete != FlagOff }

// Expired сообщает, что срок действия истёк к моменту now.
// Пустой или неразборчивый срок не считается истёкшим.
func (a Account) Expired(now time.Time) bool {
	t, ok := ParseTime(a.ExpireTime)
	return ok && t.Before(now)
}

// NewAccount: тело /addAccount.
type NewAccount struct {
	Name       string             `json:"name"`
	Account    string             `json:"account"`
	Password   string             `json:"password"`
	Freeze     int                `json:"freeze"`
	Server     int                `json:"server"`
	TaskType   string             `json:"taskType"`
	Refresh    int                `json:"refresh"`
	Agent      OptString          `json:"agent"`
	ExpireTime string             `json:"expireTime"`
	Config     accountconfig.Tree `json:"config"`
	Active     accountconfig.Tree `json:"active"`
	Notice     accountconfig.Tree `json:"notice"`
}

// DefaultAccountDays: срок нового аккаунта по умолчанию.
const DefaultAccountDays = 30

// ExpireAfter возвращает срок now + days в формате ISO (UTC, миллисекунды).
// days < 1 заменяется на DefaultAccountDays.
func ExpireAfter(now time.Time, days int) string {
	if days < 1 {
		days = DefaultAccountDays
	}
	return FormatTime(now.Add(time.Duration(days) * 24 * time.Hour))
}

// SubUserInput: тело /createSubUserByProUser.
type SubUserInput struct {
	Name     string `json:"name"`
	Account  string `json:"account"`
	Password string `json:"password"`
	Server   int    `json:"server"`
	Days     int    `json:"days"`
	Agent    int    `json:"agent"`
}

// UserStatus: ответ /showMyStatus.
type UserStatus struct {
	Status OptString `json:"status"`
}
