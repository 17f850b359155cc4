package i18n

import "net/http"

// LangCookieName: cookie с выбранным языком.
const LangCookieName = "lang"

// Middleware определяет язык запроса (cookie lang, затем Accept-Language,
// затем defaultLang) и кладёт его в контекст. Ответ получает
// Content-Language и Vary: Accept-Language.
func Middleware(defaultLang string) func(http.Handler) http.Handler {
	if !Supported(defaultLang) {
		defaultLang = LangZh
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := detectLanguage(r, defaultLang)
			w.Header().Set("Content-Language", lang)
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
		})
	}
}

func detectLanguage(r *http.Request, defaultLang string) string {
	if c, err := r.Cookie(LangCookieName); err == nil && Supported(c.Value) {
		return c.Value
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return MatchLanguage(accept)
	}
	return defaultLang
}
