package accountconfig

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Имена служебных полей формы редактора.
const (
	FormConfigJSON = "config_json"
	FormActiveJSON = "active_json"
	FormNoticeJSON = "notice_json"
	// FormBoolMarker перечисляет отрисованные флажки: флажок, которого нет
	// в форме, означает false
	FormBoolMarker = "_bool"
	FormFightCount = "fight_count"
	FormOp         = "op"
)

// Editor: состояние редактора аккаунта между запросами формы.
// Исходные деревья передаются в скрытых полях, поэтому ключи,
// которых нет в схеме, сохраняются при сохранении.
type Editor struct {
	Config Tree
	Active Tree
	Notice Tree
}

// NewEditor создаёт редактор; nil-деревья заменяются пустыми.
func NewEditor(config, active, notice Tree) *Editor {
	return &Editor{Config: Clone(config), Active: Clone(active), Notice: Clone(notice)}
}

// DefaultEditor: редактор с конфигурацией нового аккаунта.
func DefaultEditor() *Editor {
	return &Editor{
		Config: MustTree(DefaultConfig()),
		Active: MustTree(DefaultActive()),
		Notice: MustTree(DefaultNotice()),
	}
}

func (e *Editor) tree(scope Scope) *Tree {
	switch scope {
	case ScopeActive:
		return &e.Active
	case ScopeNotice:
		return &e.Notice
	default:
		return &e.Config
	}
}

// fightKey: имя поля формы для атрибута этапа i.
func fightKey(i int, attr string) string {
	return fmt.Sprintf("config.daily.fight.%d.%s", i, attr)
}

// EditorFromForm восстанавливает редактор из отправленной формы:
// исходные деревья из скрытых полей, поверх них значения полей схемы.
func EditorFromForm(form url.Values) (*Editor, error) {
	e := &Editor{}
	var err error
	if e.Config, err = ParseTree(form.Get(FormConfigJSON)); err != nil {
		return nil, err
	}
	if e.Active, err = ParseTree(form.Get(FormActiveJSON)); err != nil {
		return nil, err
	}
	if e.Notice, err = ParseTree(form.Get(FormNoticeJSON)); err != nil {
		return nil, err
	}

	// Флажки: отмеченный присутствует в форме, снятого нет
	for _, key := range form[FormBoolMarker] {
		scope, path, ok := splitKey(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPath, key)
		}
		t := e.tree(scope)
		if *t, err = Set(*t, scope, path, strconv.FormatBool(form.Has(key))); err != nil {
			return nil, err
		}
	}

	for _, g := range groups {
		for _, f := range g.Fields {
			if f.Kind == KindBool || !form.Has(f.Key()) {
				continue
			}
			t := e.tree(f.Scope)
			*t = SetPath(*t, f.Path, f.Parse(form.Get(f.Key())))
		}
	}

	if form.Has(FormFightCount) {
		n, convErr := strconv.Atoi(form.Get(FormFightCount))
		if convErr != nil || n < 0 {
			return nil, fmt.Errorf("некорректное число этапов: %q", form.Get(FormFightCount))
		}
		fights := make([]Fight, 0, n)
		for i := 0; i < n; i++ {
			num, numErr := strconv.Atoi(strings.TrimSpace(form.Get(fightKey(i, "num"))))
			if numErr != nil {
				num = FightNumMin
			}
			fights = append(fights, Fight{
				Level: strings.TrimSpace(form.Get(fightKey(i, "level"))),
				Num:   Clamp(num, FightNumMin, FightNumMax),
			})
		}
		e.Config = SetFights(e.Config, fights)
	}

	return e, nil
}

func splitKey(key string) (Scope, []string, bool) {
	parts := strings.Split(key, ".")
	if len(parts) < 2 {
		return "", nil, false
	}
	scope := Scope(parts[0])
	if scope != ScopeConfig && scope != ScopeActive && scope != ScopeNotice {
		return "", nil, false
	}
	return scope, parts[1:], true
}

// OpKind: действие кнопки редактора.
type OpKind string

const (
	OpSave        OpKind = "save"
	OpFightAdd    OpKind = "fight_add"
	OpFightUp     OpKind = "fight_up"
	OpFightDown   OpKind = "fight_down"
	OpFightRemove OpKind = "fight_remove"
)

// Op: действие с необязательным индексом этапа.
type Op struct {
	Kind  OpKind
	Index int
}

// ParseOp разбирает значение кнопки: "save", "fight_add", "fight_up:2" и т.п.
// Пустая строка означает сохранение.
func ParseOp(s string) (Op, error) {
	if s == "" {
		return Op{Kind: OpSave}, nil
	}
	name, idx, hasIdx := strings.Cut(s, ":")
	op := Op{Kind: OpKind(name)}
	switch op.Kind {
	case OpSave, OpFightAdd:
		return op, nil
	case OpFightUp, OpFightDown, OpFightRemove:
		if !hasIdx {
			return Op{}, fmt.Errorf("действие %q требует индекс", name)
		}
		n, err := strconv.Atoi(idx)
		if err != nil {
			return Op{}, fmt.Errorf("некорректный индекс в действии %q", s)
		}
		op.Index = n
		return op, nil
	default:
		return Op{}, fmt.Errorf("неизвестное действие редактора %q", s)
	}
}

// Apply выполняет действие со списком боёв. OpSave ничего не меняет.
func (e *Editor) Apply(op Op) {
	fights := Fights(e.Config)
	switch op.Kind {
	case OpFightAdd:
		fights = AppendFight(fights)
	case OpFightUp:
		fights = MoveFightUp(fights, op.Index)
	case OpFightDown:
		fights = MoveFightDown(fights, op.Index)
	case OpFightRemove:
		fights = RemoveFight(fights, op.Index)
	default:
		return
	}
	e.Config = SetFights(e.Config, fights)
}

// --- Представление для шаблонов ---

// FieldView: поле редактора для отрисовки.
type FieldView struct {
	Key     string
	Label   string
	Kind    string
	Value   any
	Checked bool
	Options []Option
	Min     int
	Max     int
	Clamp   bool
}

// SectionView: секция редактора для отрисовки.
type SectionView struct {
	Title  string
	Scope  Scope
	Fields []FieldView
}

// FightRow: строка списка боёв.
type FightRow struct {
	Index    int
	Level    string
	Num      int
	First    bool
	Last     bool
	LevelKey string
	NumKey   string
}

// Sections возвращает секции с текущими значениями.
func (e *Editor) Sections() []SectionView {
	out := make([]SectionView, 0, len(groups))
	for _, g := range groups {
		sv := SectionView{Title: g.Title, Scope: g.Scope}
		for _, f := range g.Fields {
			v := f.Value(*e.tree(f.Scope))
			fv := FieldView{
				Key: f.Key(), Label: f.Label, Value: v,
				Options: f.Options, Min: f.Min, Max: f.Max, Clamp: f.Clamp,
			}
			switch f.Kind {
			case KindBool:
				fv.Kind = "bool"
				fv.Checked, _ = v.(bool)
			case KindInt:
				fv.Kind = "int"
			default:
				fv.Kind = "string"
			}
			sv.Fields = append(sv.Fields, fv)
		}
		out = append(out, sv)
	}
	return out
}

// FightRows возвращает список боёв для отрисовки.
func (e *Editor) FightRows() []FightRow {
	fights := Fights(e.Config)
	rows := make([]FightRow, 0, len(fights))
	for i, f := range fights {
		rows = append(rows, FightRow{
			Index: i, Level: f.Level, Num: f.Num,
			First: i == 0, Last: i == len(fights)-1,
			LevelKey: fightKey(i, "level"), NumKey: fightKey(i, "num"),
		})
	}
	return rows
}

// StageOptions: варианты этапов для выпадающего списка.
func (e *Editor) StageOptions() []Option {
	return Stages
}
