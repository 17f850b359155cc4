package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"

	"github.com/cwxsss/inquisition-panel/internal/ui/auth"
	"github.com/cwxsss/inquisition-panel/internal/ui/pages"
)

// FlashCookieName: cookie отложенного уведомления.
const FlashCookieName = "flash"

// flashMaxAge: уведомление, не показанное за минуту, теряется.
const flashMaxAge = 60

// FlashStore хранит одно уведомление между POST и следующим GET
// в подписанной cookie.
type FlashStore struct {
	codec  *securecookie.SecureCookie
	secure bool
	logger *slog.Logger
}

// NewFlashStore создаёт хранилище уведомлений. При пустом secret ключ случайный.
func NewFlashStore(secret string, secure bool, logger *slog.Logger) *FlashStore {
	codec := auth.NewCodec(secret)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(flashMaxAge)
	return &FlashStore{
		codec:  codec,
		secure: secure,
		logger: logger.With(slog.String("component", "ui_flash")),
	}
}

// Set откладывает уведомление до следующего рендеринга страницы.
func (s *FlashStore) Set(w http.ResponseWriter, f pages.Flash) {
	if s == nil {
		return
	}
	encoded, err := s.codec.Encode(FlashCookieName, f)
	if err != nil {
		s.logger.Error("Ошибка кодирования flash", slog.String("error", err.Error()))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   flashMaxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop возвращает отложенное уведомление и удаляет cookie.
// Повреждённая или просроченная cookie молча отбрасывается.
func (s *FlashStore) Pop(w http.ResponseWriter, r *http.Request) *pages.Flash {
	if s == nil {
		return nil
	}
	c, err := r.Cookie(FlashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, auth.ExpiredCookie(FlashCookieName, s.secure))

	var f pages.Flash
	if err := s.codec.Decode(FlashCookieName, c.Value, &f); err != nil {
		s.logger.Debug("Flash cookie отброшена", slog.String("error", err.Error()))
		return nil
	}
	return &f
}
