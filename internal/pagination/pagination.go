// Пакет pagination: постраничный вывод списков.
// Два режима: серверный (бэкенд отдаёт {current, page, total, records})
// и клиентский (список получен целиком и режется по индексам).
package pagination

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultSize: размер страницы по умолчанию.
const DefaultSize = 10

// ErrInvalidPage: введённый номер страницы отклонён.
var ErrInvalidPage = errors.New("недопустимый номер страницы")

// Page: страница серверной пагинации в формате бэкенда.
type Page[T any] struct {
	// Current: номер текущей страницы (с 1)
	Current int `json:"current"`
	// Pages: общее число страниц (поле page в ответе бэкенда)
	Pages int `json:"page"`
	// Total: общее число записей
	Total int `json:"total"`
	// Records: записи текущей страницы
	Records []T `json:"records"`
}

// HasPrev сообщает, есть ли предыдущая страница.
func (p Page[T]) HasPrev() bool {
	return p.Current > 1
}

// HasNext сообщает, есть ли следующая страница (по числу страниц от сервера).
func (p Page[T]) HasNext() bool {
	return p.Current < p.Pages
}

// TotalPages: ceil(n/size). Для size <= 0 возвращает 0.
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Slice возвращает элементы страницы page: индексы [(page-1)*size, page*size),
// обрезанные по длине списка. Страница вне диапазона даёт пустой срез.
func Slice[T any](items []T, page, size int) []T {
	if page < 1 || size <= 0 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(items) {
		return nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Paginate режет уже отфильтрованный список в форму Page.
// Пустой список занимает одну страницу.
func Paginate[T any](items []T, page, size int) Page[T] {
	return Page[T]{
		Current: page,
		Pages:   max(TotalPages(len(items), size), 1),
		Total:   len(items),
		Records: Slice(items, page, size),
	}
}

// InvalidPageMessage: текст уведомления при неверном номере страницы.
func InvalidPageMessage(max int) string {
	return fmt.Sprintf("请输入 1 到 %d 之间的有效页码。", max)
}

// ParseGoToPage проверяет ввод поля «перейти к странице».
// Пустая строка, нечисловое значение, число < 1 или > max отклоняются.
// Разбор строгий: "3abc" отклоняется целиком.
func ParseGoToPage(input string, max int) (int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, fmt.Errorf("%w: пустой ввод", ErrInvalidPage)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q не число", ErrInvalidPage, input)
	}
	if n < 1 || n > max {
		return 0, fmt.Errorf("%w: %d вне диапазона 1-%d", ErrInvalidPage, n, max)
	}
	return n, nil
}

// Params: номер и размер страницы из строки запроса.
type Params struct {
	Current int
	Size    int
}

// FromQuery читает current и size. Некорректные значения заменяются на
// 1 и defaultSize; size ограничен сверху 100.
func FromQuery(q url.Values, defaultSize int) Params {
	p := Params{Current: 1, Size: defaultSize}
	if v, err := strconv.Atoi(q.Get("current")); err == nil && v > 0 {
		p.Current = v
	}
	if v, err := strconv.Atoi(q.Get("size")); err == nil && v > 0 {
		p.Size = v
	}
	if p.Size > 100 {
		p.Size = 100
	}
	return p
}

// Values возвращает current и size для запроса к бэкенду.
func (p Params) Values() url.Values {
	return url.Values{
		"current": {strconv.Itoa(p.Current)},
		"size":    {strconv.Itoa(p.Size)},
	}
}

// Window возвращает номера страниц для кнопок навигации: не более width
// номеров вокруг текущей страницы.
func Window(current, pages, width int) []int {
	if pages <= 0 || width <= 0 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > pages {
		current = pages
	}
	start := current - width/2
	if start < 1 {
		start = 1
	}
	end := start + width - 1
	if end > pages {
		end = pages
		start = end - width + 1
		if start < 1 {
			start = 1
		}
	}
	out := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	return out
}
