package cli

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// table: текстовая таблица с выравниванием по ширине символов
// (китайские символы занимают две колонки).
type table struct {
	headers []string
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

// add добавляет строку; недостающие ячейки считаются пустыми.
func (t *table) add(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *table) widths() []int {
	w := make([]int, len(t.headers))
	for i, h := range t.headers {
		w[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if cw := runewidth.StringWidth(c); cw > w[i] {
				w[i] = cw
			}
		}
	}
	return w
}

// render печатает заголовок (жирным), разделитель и строки.
func (t *table) render(out io.Writer) {
	w := t.widths()
	bold := color.New(color.Bold)

	bold.Fprintln(out, t.line(t.headers, w))
	sep := make([]string, len(w))
	for i, n := range w {
		sep[i] = strings.Repeat("-", n)
	}
	_, _ = io.WriteString(out, strings.Join(sep, "  ")+"\n")
	for _, row := range t.rows {
		_, _ = io.WriteString(out, t.line(row, w)+"\n")
	}
}

func (t *table) line(cells []string, w []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = runewidth.FillRight(c, w[i])
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

// keyValues печатает пары «ключ: значение» с выравниванием ключей.
func keyValues(out io.Writer, pairs [][2]string) {
	kw := 0
	for _, p := range pairs {
		if n := runewidth.StringWidth(p[0]); n > kw {
			kw = n
		}
	}
	for _, p := range pairs {
		_, _ = io.WriteString(out, runewidth.FillRight(p[0], kw)+"  "+p[1]+"\n")
	}
}
