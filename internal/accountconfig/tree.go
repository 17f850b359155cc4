// Пакет accountconfig: конфигурация автоматизации аккаунта
// (daily/rogue, активные дни недели, каналы уведомлений).
//
// Конфигурация хранится бэкендом как произвольный JSON, поэтому редакторы
// работают с деревом Tree и меняют его одной функцией SetPath. Типизированная
// схема (Config, Active, Notice) и реестр полей задают, какие пути допустимы.
package accountconfig

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Tree: JSON-объект конфигурации в виде вложенных map.
type Tree map[string]any

// SetPath присваивает value по пути path, создавая промежуточные объекты.
// Соседние ключи на всех уровнях не затрагиваются. Промежуточное значение,
// не являющееся объектом, заменяется пустым объектом.
// Возвращает дерево (новое, если t == nil).
func SetPath(t Tree, path []string, value any) Tree {
	if t == nil {
		t = Tree{}
	}
	if len(path) == 0 {
		return t
	}
	cur := map[string]any(t)
	for _, key := range path[:len(path)-1] {
		next, ok := asMap(cur[key])
		if !ok {
			next = map[string]any{}
			cur[key] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = value
	return t
}

// GetPath возвращает значение по пути или def, если путь не существует.
func GetPath(t Tree, path []string, def any) any {
	var cur any = map[string]any(t)
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return def
		}
		v, exists := m[key]
		if !exists || v == nil {
			return def
		}
		cur = v
	}
	return cur
}

// GetBool читает логическое значение по пути.
func GetBool(t Tree, path []string, def bool) bool {
	switch v := GetPath(t, path, def).(type) {
	case bool:
		return v
	case float64:
		return v != 0
	default:
		return def
	}
}

// GetInt читает целое по пути. Числа из JSON приходят как float64.
func GetInt(t Tree, path []string, def int) int {
	return toInt(GetPath(t, path, def), def)
}

// GetString читает строку по пути.
func GetString(t Tree, path []string, def string) string {
	if s, ok := GetPath(t, path, def).(string); ok {
		return s
	}
	return def
}

// Clone возвращает глубокую копию дерева.
func Clone(t Tree) Tree {
	if t == nil {
		return Tree{}
	}
	return cloneMap(t)
}

// ParseTree разбирает JSON-объект. Пустая строка и null дают пустое дерево.
func ParseTree(raw string) (Tree, error) {
	if raw == "" || raw == "null" {
		return Tree{}, nil
	}
	var t Tree
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, fmt.Errorf("разбор конфигурации: %w", err)
	}
	if t == nil {
		t = Tree{}
	}
	return t, nil
}

// JSON сериализует дерево; nil сериализуется как {}.
func (t Tree) JSON() string {
	if t == nil {
		return "{}"
	}
	b, err := json.Marshal(t)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Tree:
		return m, true
	default:
		return nil, false
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case Tree:
		return cloneMap(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = cloneValue(x[i])
		}
		return out
	default:
		return x
	}
}

func toInt(v any, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return def
		}
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		return def
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
		return def
	default:
		return def
	}
}

// Clamp ограничивает v диапазоном [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
