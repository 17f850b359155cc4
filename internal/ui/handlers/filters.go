// filters.go: фильтры, которые выполняются на стороне консоли
// поверх уже загруженного списка.
package handlers

import (
	"strconv"
	"strings"

	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/ui/pages"
)

// filterAgents оставляет агентов, чьё имя содержит username (без учёта регистра).
func filterAgents(agents []model.ProUser, username string) []model.ProUser {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return agents
	}
	out := make([]model.ProUser, 0, len(agents))
	for _, a := range agents {
		if strings.Contains(strings.ToLower(a.Username), username) {
			out = append(out, a)
		}
	}
	return out
}

// filterDevices оставляет устройства, у которых имя или токен содержат keyword.
func filterDevices(devices []model.Device, keyword string) []model.Device {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return devices
	}
	out := make([]model.Device, 0, len(devices))
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.DeviceName), keyword) ||
			strings.Contains(strings.ToLower(d.DeviceToken), keyword) {
			out = append(out, d)
		}
	}
	return out
}

// filterCDKs применяет фильтры страницы CDK. Значения "" и "all" не фильтруют.
// Тип и метка уже учтены запросом к бэкенду, но у склада агента тип
// фильтруется здесь.
func filterCDKs(cdks []model.CDK, f pages.CDKFilter) []model.CDK {
	code := strings.ToLower(strings.TrimSpace(f.CDK))
	out := make([]model.CDK, 0, len(cdks))
	for _, c := range cdks {
		if set(f.Type) && c.Type != f.Type {
			continue
		}
		if code != "" && !strings.Contains(strings.ToLower(c.CDK), code) {
			continue
		}
		if !flagMatches(f.IsAgent, c.IsAgent) || !flagMatches(f.Used, c.Used) {
			continue
		}
		if set(f.Agent) && strconv.Itoa(c.Agent) != strings.TrimSpace(f.Agent) {
			continue
		}
		if set(f.Param) && strconv.Itoa(c.Param) != strings.TrimSpace(f.Param) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func set(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "all"
}

// flagMatches сравнивает фильтр "1"/"0" с флагом записи.
func flagMatches(filter string, flag int) bool {
	switch filter {
	case "1":
		return flag != model.FlagOff
	case "0":
		return flag == model.FlagOff
	default:
		return true
	}
}
