package accountconfig

// fightPath: путь списка боёв в config.
var fightPath = []string{"daily", "fight"}

// Fights читает список боёв из дерева config.
// Записи без объекта пропускаются; num ограничивается [1, 99].
func Fights(t Tree) []Fight {
	raw, ok := GetPath(t, fightPath, nil).([]any)
	if !ok {
		if typed, ok := GetPath(t, fightPath, nil).([]Fight); ok {
			return append([]Fight(nil), typed...)
		}
		return nil
	}
	out := make([]Fight, 0, len(raw))
	for _, item := range raw {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		level, _ := m["level"].(string)
		out = append(out, Fight{
			Level: level,
			Num:   Clamp(toInt(m["num"], FightNumMin), FightNumMin, FightNumMax),
		})
	}
	return out
}

// SetFights записывает список боёв в дерево config.
func SetFights(t Tree, fights []Fight) Tree {
	list := make([]any, 0, len(fights))
	for _, f := range fights {
		list = append(list, map[string]any{
			"level": f.Level,
			"num":   Clamp(f.Num, FightNumMin, FightNumMax),
		})
	}
	return SetPath(t, fightPath, list)
}

// AppendFight добавляет в конец пустой этап {level: "", num: 1}.
func AppendFight(fights []Fight) []Fight {
	return append(fights, Fight{Level: "", Num: 1})
}

// MoveFightUp меняет этап i местами с предыдущим. Вне диапазона ничего не меняется.
func MoveFightUp(fights []Fight, i int) []Fight {
	if i <= 0 || i >= len(fights) {
		return fights
	}
	fights[i-1], fights[i] = fights[i], fights[i-1]
	return fights
}

// MoveFightDown меняет этап i местами со следующим. Вне диапазона ничего не меняется.
func MoveFightDown(fights []Fight, i int) []Fight {
	if i < 0 || i >= len(fights)-1 {
		return fights
	}
	fights[i], fights[i+1] = fights[i+1], fights[i]
	return fights
}

// RemoveFight удаляет этап i. Вне диапазона ничего не меняется.
func RemoveFight(fights []Fight, i int) []Fight {
	if i < 0 || i >= len(fights) {
		return fights
	}
	return append(fights[:i], fights[i+1:]...)
}

// Stages: коды этапов для выбора в списке боёв.
var Stages = []Option{
	{Value: "jm", Label: "剿灭"},
	{Value: "ce", Label: "龙门币"},
	{Value: "ls", Label: "经验卡"},
	{Value: "ap", Label: "红票"},
	{Value: "ca", Label: "技能书"},
	{Value: "1-7", Label: "1-7"},
	{Value: "hd", Label: "活动材料关"},
	{Value: "pr2", Label: "大芯片任意"},
	{Value: "pr1", Label: "小芯片任意"},
	{Value: "hd-10", Label: "活动第十关"},
	{Value: "hd-9", Label: "活动第九关"},
	{Value: "hd-8", Label: "活动第八关"},
	{Value: "hd-7", Label: "活动第七关"},
	{Value: "hd-6", Label: "活动第六关"},
	{Value: "hd-5", Label: "活动第五关"},
	{Value: "近卫2", Label: "近卫芯片[大]"},
	{Value: "近卫1", Label: "近卫芯片[小]"},
	{Value: "特种2", Label: "特种芯片[大]"},
	{Value: "特种1", Label: "特种芯片[小]"},
	{Value: "医疗2", Label: "医疗芯片[大]"},
	{Value: "医疗1", Label: "医疗芯片[小]"},
	{Value: "重装2", Label: "重装芯片[大]"},
	{Value: "重装1", Label: "重装芯片[小]"},
	{Value: "辅助2", Label: "辅助芯片[大]"},
	{Value: "辅助1", Label: "辅助芯片[小]"},
	{Value: "狙击2", Label: "狙击芯片[大]"},
	{Value: "狙击1", Label: "狙击芯片[小]"},
	{Value: "术士2", Label: "术士芯片[大]"},
	{Value: "术士1", Label: "术士芯片[小]"},
	{Value: "先锋2", Label: "先锋芯片[大]"},
	{Value: "先锋1", Label: "先锋芯片[小]"},
}
