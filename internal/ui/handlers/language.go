// language.go: обработчик переключения языка UI.
package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cwxsss/inquisition-panel/internal/ui/i18n"
)

// HandleSetLanguage обрабатывает GET /lang/{code}?next=<путь>.
// Устанавливает cookie "lang" и возвращает на next, иначе на Referer.
// Неподдерживаемый код заменяется на zh.
func HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "code")
	if !i18n.Supported(lang) {
		lang = i18n.LangZh
	}

	// Cookie "lang" на 1 год
	http.SetCookie(w, &http.Cookie{
		Name:     i18n.LangCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})

	next := r.URL.Query().Get("next")
	if !localPath(next) {
		next = backTo(r, "/")
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// localPath: путь внутри консоли (без схемы и хоста).
func localPath(p string) bool {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Host == "" && u.Scheme == ""
}
