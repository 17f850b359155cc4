// Пакет static: CSS и JS консоли, встроенные в бинарник.
// app.js подписывается на /events/backend и подтверждает опасные действия.
package static

import (
	"embed"
	"net/http"
)

//go:embed css/app.css js/app.js
var content embed.FS

// cacheControl: ресурсы меняются только с релизом.
const cacheControl = "public, max-age=3600"

// Handler раздаёт ресурсы по путям относительно /static/
// (css/app.css, js/app.js).
func Handler() http.Handler {
	files := http.FileServer(http.FS(content))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cacheControl)
		files.ServeHTTP(w, r)
	})
}
