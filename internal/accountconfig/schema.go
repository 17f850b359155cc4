package accountconfig

import (
	"encoding/json"
	"fmt"
)

// Fight описывает этап в списке боёв: код уровня и число повторов.
type Fight struct {
	Level string `json:"level"`
	Num   int    `json:"num"`
}

// Sanity: лимиты восстановления санити.
type Sanity struct {
	Drug  int `json:"drug"`
	Stone int `json:"stone"`
}

// Offer: фильтры найма.
type Offer struct {
	Enable bool `json:"enable"`
	Car    bool `json:"car"`
	Star4  bool `json:"star4"`
	Star5  bool `json:"star5"`
	Star6  bool `json:"star6"`
	Other  bool `json:"other"`
}

// Infrastructure: автоматизация базы.
type Infrastructure struct {
	Harvest       bool `json:"harvest"`
	Shift         bool `json:"shift"`
	Acceleration  bool `json:"acceleration"`
	Communication bool `json:"communication"`
	Deputy        bool `json:"deputy"`
}

// Daily: ежедневные задачи.
type Daily struct {
	Fight          []Fight        `json:"fight"`
	Sanity         Sanity         `json:"sanity"`
	Mail           bool           `json:"mail"`
	Friend         bool           `json:"friend"`
	Credit         bool           `json:"credit"`
	Task           bool           `json:"task"`
	Activity       bool           `json:"activity"`
	FightEnable    bool           `json:"fight_enable"`
	Offer          Offer          `json:"offer"`
	Infrastructure Infrastructure `json:"infrastructure"`
}

// Operator: выбор оператора в rogue.
type Operator struct {
	Index int `json:"index"`
	Num   int `json:"num"`
	Skill int `json:"skill"`
}

// Skip: пропускаемые события rogue.
type Skip struct {
	Coin      bool `json:"coin"`
	Beast     bool `json:"beast"`
	Daily     bool `json:"daily"`
	Sensitive bool `json:"sensitive"`
	Illusion  bool `json:"illusion"`
	Survive   bool `json:"survive"`
}

// Rogue: настройки задачи rogue (肉鸽).
type Rogue struct {
	Operator Operator `json:"operator"`
	Level    int      `json:"level"`
	Coin     int      `json:"coin"`
	Type     int      `json:"type"`
	Skip     Skip     `json:"skip"`
}

// Config: поле config аккаунта.
type Config struct {
	Daily Daily `json:"daily"`
	Rogue Rogue `json:"rogue"`
}

// Day: активность в день недели.
type Day struct {
	Enable bool `json:"enable"`
}

// Active хранит поле active аккаунта по дням недели.
type Active struct {
	Monday    Day `json:"monday"`
	Tuesday   Day `json:"tuesday"`
	Wednesday Day `json:"wednesday"`
	Thursday  Day `json:"thursday"`
	Friday    Day `json:"friday"`
	Saturday  Day `json:"saturday"`
	Sunday    Day `json:"sunday"`
}

// Channel: канал уведомлений.
type Channel struct {
	Enable bool   `json:"enable"`
	Text   string `json:"text"`
}

// Notice: поле notice аккаунта.
type Notice struct {
	WxUID Channel `json:"wxUID"`
	QQ    Channel `json:"qq"`
	Mail  Channel `json:"mail"`
}

// DefaultConfig: конфигурация нового аккаунта.
func DefaultConfig() Config {
	return Config{
		Daily: Daily{
			Fight: []Fight{
				{Level: "jm", Num: 5},
				{Level: "hd", Num: 99},
				{Level: "ce", Num: 99},
				{Level: "1-7", Num: 99},
				{Level: "ls", Num: 99},
			},
			Sanity:      Sanity{Drug: 1, Stone: 0},
			Mail:        true,
			Friend:      true,
			Credit:      true,
			Task:        true,
			Activity:    true,
			FightEnable: true,
			Offer:       Offer{Enable: true, Star4: true},
			Infrastructure: Infrastructure{
				Harvest: true, Shift: true, Acceleration: true, Communication: true, Deputy: true,
			},
		},
		Rogue: Rogue{
			Operator: Operator{Index: -1, Num: 99, Skill: 1},
			Level:    0,
			Coin:     999,
			Type:     1,
		},
	}
}

// DefaultActive: все дни недели включены.
func DefaultActive() Active {
	on := Day{Enable: true}
	return Active{Monday: on, Tuesday: on, Wednesday: on, Thursday: on, Friday: on, Saturday: on, Sunday: on}
}

// DefaultNotice: все каналы выключены.
func DefaultNotice() Notice {
	return Notice{}
}

// ToTree переводит типизированное значение в дерево.
func ToTree(v any) (Tree, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("сериализация конфигурации: %w", err)
	}
	var t Tree
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("преобразование конфигурации в дерево: %w", err)
	}
	return t, nil
}

// MustTree: ToTree для значений схемы, которые всегда сериализуются.
func MustTree(v any) Tree {
	t, err := ToTree(v)
	if err != nil {
		panic(err)
	}
	return t
}

// FromTree заполняет типизированное значение из дерева.
// Неизвестные ключи дерева игнорируются, отсутствующие оставляют нулевые значения.
func FromTree(t Tree, dst any) error {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("сериализация дерева: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("разбор дерева в схему: %w", err)
	}
	return nil
}
