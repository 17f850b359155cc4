// Пакет pages: страницы консоли.
// Шаблоны html/template встроены в бинарник; каждая страница собирается из
// общего layout, частичных шаблонов и собственного файла и отдаётся как
// templ.Component, который обработчик рендерит через Render(ctx, w).
package pages

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/domain/role"
	"github.com/cwxsss/inquisition-panel/internal/pagination"
	"github.com/cwxsss/inquisition-panel/internal/ui/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// Общие шаблоны, входящие в каждую страницу.
var shared = []string{"templates/layout.html", "templates/partials.html", "templates/editor.html"}

// Имена страниц (файл templates/<имя>.html).
const (
	Login       = "login"
	Placeholder = "placeholder"

	UserDashboard = "user_dashboard"
	UserAccount   = "user_account"
	UserLogs      = "user_logs"
	UserSettings  = "user_settings"

	AdminDashboard = "admin_dashboard"
	AdminUsers     = "admin_users"
	AdminUserForm  = "admin_user_form"
	AdminAgents    = "admin_agents"
	AdminTasks     = "admin_tasks"
	AdminDevices   = "admin_devices"
	AdminCDK       = "admin_cdk"
	AdminLogs      = "admin_logs"
	AdminSettings  = "admin_settings"

	ProUserDashboard   = "prouser_dashboard"
	ProUserSubUsers    = "prouser_subusers"
	ProUserSubUserForm = "prouser_subuser_form"
	ProUserCDK         = "prouser_cdk"
	ProUserSettings    = "prouser_settings"
)

var registry = mustParseAll()

func funcs() template.FuncMap {
	return template.FuncMap{
		"dt":          model.DisplayTime,
		"taskLabel":   model.TaskTypeLabel,
		"serverLabel": model.ServerLabel,
		"queueLabel":  model.QueueLabel,
		"cdkLabel":    model.CDKTypeLabel,
		"deref": func(s *string) string {
			if s == nil {
				return "-"
			}
			return *s
		},
		"derefInt": func(n *int) string {
			if n == nil {
				return "-"
			}
			return strconv.Itoa(*n)
		},
		"money": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 2, 64)
		},
		"add": func(a, b int) int { return a + b },
		"str": fmt.Sprint,
		"yesno": func(name, value, label string, page translator) YesNo {
			return YesNo{Name: name, Value: value, Label: label, Page: page}
		},
		"fieldValue": func(v any) string {
			if v == nil {
				return ""
			}
			return fmt.Sprint(v)
		},
	}
}

func mustParseAll() map[string]*template.Template {
	base := template.Must(template.New("root").Funcs(funcs()).ParseFS(templateFS, shared...))

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".html")
		if isShared(f) {
			continue
		}
		t := template.Must(template.Must(base.Clone()).ParseFS(templateFS, f))
		out[name] = t
	}
	return out
}

func isShared(f string) bool {
	for _, s := range shared {
		if s == f {
			return true
		}
	}
	return false
}

// Render возвращает компонент страницы name с данными data.
// Данные должны встраивать Layout.
func Render(name string, data any) templ.Component {
	t, ok := registry[name]
	if !ok {
		panic(fmt.Sprintf("pages: неизвестная страница %q", name))
	}
	return templ.FromGoHTML(t.Lookup("layout"), data)
}

// Has сообщает, зарегистрирована ли страница.
func Has(name string) bool {
	_, ok := registry[name]
	return ok
}

type translator interface {
	T(key string) string
}

// YesNo: данные фильтра «全部/是/否».
type YesNo struct {
	Name  string
	Value string
	Label string
	Page  translator
}

// Виды уведомлений.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash: одноразовое уведомление, показываемое после redirect.
type Flash struct {
	// Kind: FlashSuccess или FlashError
	Kind  string `json:"k"`
	Title string `json:"t"`
	Text  string `json:"d,omitempty"`
}

// Layout: общие данные всех страниц.
type Layout struct {
	Lang   string
	Title  string
	Role   role.Role
	Active string
	Nav    []role.NavItem
	Flash  *Flash
	// Authed: страница открыта с действительным токеном
	Authed bool
	// Path: путь текущего запроса (для переключателя языка)
	Path string
}

// NewLayout собирает общие данные страницы роли r.
func NewLayout(lang, title string, r role.Role, active string) Layout {
	return Layout{Lang: lang, Title: title, Role: r, Active: active, Nav: r.Nav(), Authed: true}
}

// T переводит ключ на язык страницы.
func (l Layout) T(key string) string {
	return i18n.TLang(l.Lang, key)
}

// Languages: пункты переключателя языка.
func (l Layout) Languages() []i18n.Language {
	return i18n.Languages
}

// PageTitle: заголовок окна.
func (l Layout) PageTitle() string {
	return l.T(l.Title) + " · " + l.T("app.name")
}

// Pager: данные блока постраничной навигации.
type Pager struct {
	Current int
	Pages   int
	Total   int
	Prev    string
	Next    string
	Items   []PagerItem
	// Action и Hidden описывают форму «перейти к странице»
	Action string
	Hidden []Hidden
}

// PagerItem: кнопка номера страницы.
type PagerItem struct {
	N      int
	URL    string
	Active bool
}

// Hidden: скрытое поле формы.
type Hidden struct {
	Name  string
	Value string
}

// NewPager строит навигацию для страницы current из pages.
// Параметры запроса q сохраняются в ссылках, current заменяется.
func NewPager(action string, q url.Values, current, pages, total int) Pager {
	// бэкенд отдаёт page = 0 для пустого списка
	pages = max(pages, 1)
	p := Pager{Current: current, Pages: pages, Total: total, Action: action}
	link := func(n int) string {
		v := cloneValues(q)
		v.Set("current", strconv.Itoa(n))
		v.Del("goto")
		v.Del("max")
		return action + "?" + v.Encode()
	}
	if current > 1 {
		p.Prev = link(current - 1)
	}
	if current < pages {
		p.Next = link(current + 1)
	}
	for _, n := range pagination.Window(current, pages, 5) {
		p.Items = append(p.Items, PagerItem{N: n, URL: link(n), Active: n == current})
	}

	keys := make([]string, 0, len(q))
	for k := range q {
		if k == "current" || k == "goto" || k == "max" {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		p.Hidden = append(p.Hidden, Hidden{Name: k, Value: q.Get(k)})
	}
	p.Hidden = append(p.Hidden,
		Hidden{Name: "current", Value: strconv.Itoa(current)},
		Hidden{Name: "max", Value: strconv.Itoa(pages)},
	)
	return p
}

func cloneValues(q url.Values) url.Values {
	v := make(url.Values, len(q))
	for k, vals := range q {
		v[k] = append([]string(nil), vals...)
	}
	return v
}
