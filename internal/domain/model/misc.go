package model

// LogEntry: запись журнала выполнения задач.
type LogEntry struct {
	ID       int       `json:"id"`
	Level    string    `json:"level"`
	TaskType string    `json:"taskType"`
	Title    string    `json:"title"`
	Detail   string    `json:"detail"`
	ImageURL string    `json:"imageUrl"`
	From     OptString `json:"from"`
	Server   int       `json:"server"`
	Name     string    `json:"name"`
	Account  string    `json:"account"`
	Time     string    `json:"time"`
	Delete   int       `json:"delete"`
}

// Statistics: сводка /getStatistics.
type Statistics struct {
	NewUserNum   int     `json:"newUserNum"`
	MonthIncome  float64 `json:"monthIncome"`
	DayIncome    float64 `json:"dayIncome"`
	PayedUserNum int     `json:"payedUserNum"`
}

// Announcement: объявление; поле текста бэкенд называет context.
type Announcement struct {
	Title   string `json:"title"`
	Context string `json:"context"`
	MD5     string `json:"md5,omitempty"`
}

// AdminPasswordChange: тело /changeAdminPassword.
type AdminPasswordChange struct {
	Username    string `json:"username"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// PasswordChange: тело /updateProUserPassword.
type PasswordChange struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Credentials: тело /updateAccountAndPassword.
type Credentials struct {
	Account  string `json:"account"`
	Password string `json:"password"`
	Server   int    `json:"server"`
}

// TokenData: data ответов входа.
type TokenData struct {
	Token string `json:"token"`
}
