package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
)

//go:embed locales/*.json
var LocaleFS embed.FS

// LoadMessages разбирает плоский JSON-каталог {"ключ": "строка"}.
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: каталог %s: %w", lang, err)
	}
	b.Add(lang, messages)
	return nil
}

// LoadFromEmbedFS загружает locales/<код>.json для каждого языка из
// Languages. Файлы незнакомых языков пропускаются, ключи, которых нет
// в переводе, попадают в журнал предупреждением.
func LoadFromEmbedFS(bundle *Bundle, logger *slog.Logger) error {
	return loadFS(bundle, LocaleFS, logger)
}

func loadFS(bundle *Bundle, fsys fs.FS, logger *slog.Logger) error {
	files, err := fs.Glob(fsys, "locales/*.json")
	if err != nil {
		return fmt.Errorf("i18n: %w", err)
	}

	loaded := map[string]bool{}
	for _, file := range files {
		lang := strings.TrimSuffix(path.Base(file), ".json")
		if !Supported(lang) {
			logger.Warn("i18n: каталог неизвестного языка пропущен", slog.String("file", file))
			continue
		}
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("i18n: чтение %s: %w", file, err)
		}
		if err := bundle.LoadMessages(lang, data); err != nil {
			return err
		}
		loaded[lang] = true
	}
	if !loaded[bundle.Fallback()] {
		return fmt.Errorf("i18n: нет каталога языка по умолчанию %q", bundle.Fallback())
	}

	for _, l := range Languages {
		if missing := bundle.Missing(l.Code); len(missing) > 0 {
			sort.Strings(missing)
			logger.Warn("i18n: в каталоге нет переводов",
				slog.String("lang", l.Code),
				slog.Any("keys", missing),
			)
		}
	}
	logger.Info("i18n каталоги загружены",
		slog.Int("languages", len(loaded)),
		slog.String("default", bundle.Fallback()),
	)
	return nil
}
