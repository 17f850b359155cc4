package model

// ProUser: агент (代理), управляющий своими суб-пользователями.
type ProUser struct {
	ID            int     `json:"id"`
	Username      string  `json:"username"`
	Password      string  `json:"password,omitempty"`
	Permission    string  `json:"permission"`
	Balance       float64 `json:"balance"`
	Discount      float64 `json:"discount"`
	Authorization string  `json:"authorization"`
	ExpireTime    string  `json:"expireTime"`
	Delete        int     `json:"delete"`
}

// Disabled сообщает, что агент отключён.
func (p ProUser) Disabled() bool { return p.Delete != FlagOff }

// Параметры нового агента.
const (
	ProPermission    = "pro"
	ProDefaultExpire = "2099-12-31T00:00:00.000Z"
)

// NewProUser: тело /createProUser с фиксированными значениями по умолчанию.
type NewProUser struct {
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	Permission string  `json:"permission"`
	Balance    float64 `json:"balance"`
	Discount   float64 `json:"discount"`
	ExpireTime string  `json:"expireTime"`
}

// NewProUserInput заполняет значения по умолчанию.
func NewProUserInput(username, password string) NewProUser {
	return NewProUser{
		Username:   username,
		Password:   password,
		Permission: ProPermission,
		Balance:    0,
		Discount:   1,
		ExpireTime: ProDefaultExpire,
	}
}

// ProUserUpdate: тело /updateProUser при редактировании.
type ProUserUpdate struct {
	ID         int     `json:"id"`
	Balance    float64 `json:"balance"`
	Discount   float64 `json:"discount"`
	ExpireTime string  `json:"expireTime"`
}

// SubUserFilters: значения параметра type у /getSubUserList.
var SubUserFilters = []string{"all", "active", "expired", "frozen", "deleted"}

// ValidSubUserFilter проверяет параметр type.
func ValidSubUserFilter(s string) bool {
	for _, f := range SubUserFilters {
		if f == s {
			return true
		}
	}
	return false
}
