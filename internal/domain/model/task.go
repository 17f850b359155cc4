package model

// FreeTask: аккаунт в очереди ожидания.
type FreeTask struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Account  string    `json:"account"`
	TaskType string    `json:"taskType"`
	Agent    OptString `json:"agent"`
}

// LockedAccount: аккаунт, занявший устройство.
type LockedAccount struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Account string `json:"account"`
}

// LockTask: задача, выполняющаяся на устройстве.
type LockTask struct {
	DeviceToken    string        `json:"deviceToken"`
	Account        LockedAccount `json:"account"`
	ExpirationTime string        `json:"expirationTime"`
}

// Вкладки очереди задач.
const (
	QueuePending  = "pending"
	QueueRunning  = "inProgress"
	QueueCooldown = "coolingDown"
)

// QueueTabs: вкладки в порядке отображения.
var QueueTabs = []string{QueuePending, QueueRunning, QueueCooldown}

// QueueLabel: подпись вкладки очереди.
func QueueLabel(tab string) string {
	switch tab {
	case QueuePending:
		return "等待中"
	case QueueRunning:
		return "进行中"
	case QueueCooldown:
		return "冷却中"
	default:
		return tab
	}
}
