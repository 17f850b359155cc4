package model

// Типы CDK. Значение "rouge": так бэкенд называет тип rogue.
const (
	CDKDaily    = "daily"
	CDKRogue    = "rouge"
	CDKSandFire = "sand_fire"
)

// CDKTypes: типы CDK в порядке отображения.
var CDKTypes = []string{CDKDaily, CDKRogue, CDKSandFire}

// ValidCDKType проверяет тип CDK.
func ValidCDKType(t string) bool {
	return t == CDKDaily || t == CDKRogue || t == CDKSandFire
}

// CDKTypeLabel: подпись типа CDK.
func CDKTypeLabel(t string) string {
	switch t {
	case CDKDaily:
		return "日常"
	case CDKRogue:
		return "肉鸽"
	case CDKSandFire:
		return "生息演算"
	default:
		return t
	}
}

// CDK: код активации.
type CDK struct {
	ID      int    `json:"id"`
	CDK     string `json:"cdk"`
	Type    string `json:"type"`
	Param   int    `json:"param"`
	Tag     string `json:"tag"`
	IsAgent int    `json:"isAgent"`
	Agent   int    `json:"agent"`
	Used    int    `json:"used"`
}

// CDKList: data ответов /checkCDKByType, /checkCDKByTag, /getProUserInventoryCdk.
type CDKList struct {
	CDKList []CDK `json:"cdkList"`
}

// NewCDK: тело /createCDK.
type NewCDK struct {
	Type    string `json:"type"`
	Param   int    `json:"param"`
	Tag     string `json:"tag"`
	IsAgent bool   `json:"isAgent"`
	Agent   int    `json:"agent"`
	Count   int    `json:"count"`
}

// NewAgentCDK: тело /createCdkByProUser.
type NewAgentCDK struct {
	Type  string `json:"type"`
	Param int    `json:"param"`
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
