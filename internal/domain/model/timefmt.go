package model

import "time"

// isoMillis: формат сроков, который принимает бэкенд.
const isoMillis = "2006-01-02T15:04:05.000Z"

// timeLayouts: форматы, в которых бэкенд присылает даты.
var timeLayouts = []string{
	time.RFC3339Nano,
	isoMillis,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime разбирает дату бэкенда. Даты без зоны считаются UTC.
func ParseTime(s string) (time.Time, bool) {
	if s == "" || s == "null" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTime форматирует момент для тела запроса.
func FormatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// DisplayTime: дата для таблиц: "2006-01-02 15:04" в локальной зоне,
// неразборчивое значение возвращается как есть, пустое даёт "-".
func DisplayTime(s string) string {
	t, ok := ParseTime(s)
	if !ok {
		if s == "" || s == "null" {
			return "-"
		}
		return s
	}
	return t.Local().Format("2006-01-02 15:04")
}
