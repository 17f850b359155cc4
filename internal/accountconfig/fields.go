package accountconfig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownPath: путь отсутствует в схеме.
var ErrUnknownPath = errors.New("неизвестный путь конфигурации")

// Scope: корневое поле аккаунта, которому принадлежит путь.
type Scope string

const (
	ScopeConfig Scope = "config"
	ScopeActive Scope = "active"
	ScopeNotice Scope = "notice"
)

// Kind: тип значения листа.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindString
)

// Option: вариант выбора для поля со списком.
type Option struct {
	Value string
	Label string
}

// Field: редактируемый лист схемы.
type Field struct {
	Scope Scope
	Path  []string
	Kind  Kind
	Label string
	// Default: значение при пустом или некорректном вводе
	Default any
	// Clamp включает ограничение [Min, Max] для KindInt
	Clamp    bool
	Min, Max int
	// Options: варианты выбора (пусто означает свободный ввод)
	Options []Option
}

// Key: имя поля формы: "<scope>.<path через точку>".
func (f Field) Key() string {
	return string(f.Scope) + "." + strings.Join(f.Path, ".")
}

// Group: секция редактора.
type Group struct {
	Title  string
	Scope  Scope
	Fields []Field
}

func boolField(scope Scope, label string, def bool, path ...string) Field {
	return Field{Scope: scope, Path: path, Kind: KindBool, Label: label, Default: def}
}

func intField(label string, def int, path ...string) Field {
	return Field{Scope: ScopeConfig, Path: path, Kind: KindInt, Label: label, Default: def}
}

func clampedField(label string, def, lo, hi int, path ...string) Field {
	f := intField(label, def, path...)
	f.Clamp, f.Min, f.Max = true, lo, hi
	return f
}

// Диапазоны числовых полей.
const (
	FightNumMin = 1
	FightNumMax = 99
	SanityMin   = 0
	SanityMax   = 99
)

// RogueTypes: варианты типа rogue.
var RogueTypes = []Option{
	{Value: "1", Label: "肉鸽1"},
	{Value: "2", Label: "肉鸽2"},
	{Value: "3", Label: "肉鸽3"},
	{Value: "4", Label: "肉鸽4"},
}

// Weekdays: ключи дней недели в поле active и их подписи.
var Weekdays = []Option{
	{Value: "monday", Label: "周一"},
	{Value: "tuesday", Label: "周二"},
	{Value: "wednesday", Label: "周三"},
	{Value: "thursday", Label: "周四"},
	{Value: "friday", Label: "周五"},
	{Value: "saturday", Label: "周六"},
	{Value: "sunday", Label: "周日"},
}

var groups = buildGroups()

func buildGroups() []Group {
	activeFields := make([]Field, 0, len(Weekdays))
	for _, d := range Weekdays {
		activeFields = append(activeFields, boolField(ScopeActive, d.Label, true, d.Value, "enable"))
	}

	rogueType := intField("肉鸽类型", 1, "rogue", "type")
	rogueType.Options = RogueTypes

	return []Group{
		{Title: "日常设置", Scope: ScopeConfig, Fields: []Field{
			boolField(ScopeConfig, "开启作战", true, "daily", "fight_enable"),
			boolField(ScopeConfig, "邮件领取", true, "daily", "mail"),
			boolField(ScopeConfig, "好友访问", true, "daily", "friend"),
			boolField(ScopeConfig, "信用商店", true, "daily", "credit"),
			boolField(ScopeConfig, "任务领取", true, "daily", "task"),
			boolField(ScopeConfig, "限时活动", true, "daily", "activity"),
		}},
		{Title: "理智设置", Scope: ScopeConfig, Fields: []Field{
			clampedField("吃药次数", 1, SanityMin, SanityMax, "daily", "sanity", "drug"),
			clampedField("碎石次数", 0, SanityMin, SanityMax, "daily", "sanity", "stone"),
		}},
		{Title: "招募配置", Scope: ScopeConfig, Fields: []Field{
			boolField(ScopeConfig, "启用公招", true, "daily", "offer", "enable"),
			boolField(ScopeConfig, "招募小车", false, "daily", "offer", "car"),
			boolField(ScopeConfig, "招募四星", true, "daily", "offer", "star4"),
			boolField(ScopeConfig, "招募五星", false, "daily", "offer", "star5"),
			boolField(ScopeConfig, "招募六星", false, "daily", "offer", "star6"),
			boolField(ScopeConfig, "招募其他", false, "daily", "offer", "other"),
		}},
		{Title: "基建设置", Scope: ScopeConfig, Fields: []Field{
			boolField(ScopeConfig, "基建收货", true, "daily", "infrastructure", "harvest"),
			boolField(ScopeConfig, "基建换班", true, "daily", "infrastructure", "shift"),
			boolField(ScopeConfig, "基建加速", true, "daily", "infrastructure", "acceleration"),
			boolField(ScopeConfig, "线索交流", true, "daily", "infrastructure", "communication"),
			boolField(ScopeConfig, "基建副手", true, "daily", "infrastructure", "deputy"),
		}},
		{Title: "肉鸽设置", Scope: ScopeConfig, Fields: []Field{
			intField("干员位置", -1, "rogue", "operator", "index"),
			intField("开技能次数", 99, "rogue", "operator", "num"),
			intField("技能等级", 1, "rogue", "operator", "skill"),
			intField("目标等级", 0, "rogue", "level"),
			intField("目标投币", 999, "rogue", "coin"),
			rogueType,
		}},
		{Title: "跳过选项", Scope: ScopeConfig, Fields: []Field{
			boolField(ScopeConfig, "跳过投币", false, "rogue", "skip", "coin"),
			boolField(ScopeConfig, "跳过难关", false, "rogue", "skip", "beast"),
			boolField(ScopeConfig, "跳过日常", false, "rogue", "skip", "daily"),
			boolField(ScopeConfig, "可打敏感", false, "rogue", "skip", "sensitive"),
			boolField(ScopeConfig, "可打臆想", false, "rogue", "skip", "illusion"),
			boolField(ScopeConfig, "可打生存", false, "rogue", "skip", "survive"),
		}},
		{Title: "活跃时间", Scope: ScopeActive, Fields: activeFields},
		{Title: "通知设置", Scope: ScopeNotice, Fields: []Field{
			boolField(ScopeNotice, "启用微信通知", false, "wxUID", "enable"),
			{Scope: ScopeNotice, Path: []string{"wxUID", "text"}, Kind: KindString, Label: "微信UID", Default: ""},
			boolField(ScopeNotice, "启用QQ通知", false, "qq", "enable"),
			{Scope: ScopeNotice, Path: []string{"qq", "text"}, Kind: KindString, Label: "QQ号", Default: ""},
			boolField(ScopeNotice, "启用邮件通知", false, "mail", "enable"),
			{Scope: ScopeNotice, Path: []string{"mail", "text"}, Kind: KindString, Label: "邮箱地址", Default: ""},
		}},
	}
}

// Groups возвращает секции редактора в порядке отображения.
func Groups() []Group {
	return groups
}

// Lookup ищет поле схемы по области и пути.
func Lookup(scope Scope, path []string) (Field, bool) {
	key := string(scope) + "." + strings.Join(path, ".")
	for _, g := range groups {
		for _, f := range g.Fields {
			if f.Key() == key {
				return f, true
			}
		}
	}
	return Field{}, false
}

// Parse переводит строковый ввод в значение поля.
// Некорректное число заменяется на Default, затем применяется Clamp.
func (f Field) Parse(raw string) any {
	switch f.Kind {
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return raw == "on"
		}
		return b
	case KindInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			n = toInt(f.Default, 0)
		}
		if f.Clamp {
			n = Clamp(n, f.Min, f.Max)
		}
		return n
	default:
		return raw
	}
}

// Set присваивает разобранное значение по пути схемы.
// Для пути вне схемы возвращается ErrUnknownPath, дерево не меняется.
func Set(t Tree, scope Scope, path []string, raw string) (Tree, error) {
	f, ok := Lookup(scope, path)
	if !ok {
		return t, fmt.Errorf("%w: %s.%s", ErrUnknownPath, scope, strings.Join(path, "."))
	}
	return SetPath(t, f.Path, f.Parse(raw)), nil
}

// Value возвращает текущее значение поля в дереве (или Default).
func (f Field) Value(t Tree) any {
	switch f.Kind {
	case KindBool:
		return GetBool(t, f.Path, f.Default.(bool))
	case KindInt:
		return GetInt(t, f.Path, f.Default.(int))
	default:
		return GetString(t, f.Path, f.Default.(string))
	}
}
