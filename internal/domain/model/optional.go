// Пакет model: записи бэкенда 云控, которые отображает и изменяет панель.
// Записи принадлежат бэкенду: панель не хранит их между запросами.
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// OptString: строковое поле, которое бэкенд присылает то строкой,
// то числом, то null (agent, san, from).
type OptString struct {
	Value string
	Valid bool
}

// Some создаёт заполненное значение.
func Some(v string) OptString {
	return OptString{Value: v, Valid: true}
}

// UnmarshalJSON принимает строку, число или null.
func (o *OptString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = OptString{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = Some(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*o = Some(n.String())
	return nil
}

// MarshalJSON пишет null для пустого значения.
func (o OptString) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Or возвращает значение или def.
func (o OptString) Or(def string) string {
	if !o.Valid || o.Value == "" {
		return def
	}
	return o.Value
}

// Int разбирает значение как целое (ok == false, если не число).
func (o OptString) Int() (int, bool) {
	if !o.Valid {
		return 0, false
	}
	n, err := strconv.Atoi(o.Value)
	return n, err == nil
}
