package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo: сведения из полезной нагрузки JWT для отображения.
// Подпись не проверяется, поэтому на валидность сессии не влияет.
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasExpiry сообщает, что в токене есть exp.
func (i TokenInfo) HasExpiry() bool {
	return !i.ExpiresAt.IsZero()
}

// InspectToken разбирает JWT без проверки подписи.
// ok == false для непрозрачных (не-JWT) токенов.
func InspectToken(token string) (TokenInfo, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, false
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if info.Subject == "" {
		for _, key := range []string{"username", "account", "name"} {
			if v, ok := claims[key].(string); ok && v != "" {
				info.Subject = v
				break
			}
		}
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, true
}
