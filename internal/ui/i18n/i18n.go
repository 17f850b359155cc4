// Пакет i18n переводит интерфейс консоли: 中文 (по умолчанию) и English.
// Язык запроса кладёт в контекст Middleware, страницы переводят ключи
// через T/Tf или TLang.
package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/language"
)

// Коды языков.
const (
	LangZh = "zh"
	LangEn = "en"
)

// Language описывает язык интерфейса: код для cookie и каталога, тег для
// Accept-Language, подпись для переключателя.
type Language struct {
	Code string
	Tag  language.Tag
	Name string
}

// Languages: языки в порядке переключателя. Первый служит запасным
// вариант matcher'а для незнакомых Accept-Language.
var Languages = []Language{
	{Code: LangZh, Tag: language.SimplifiedChinese, Name: "中文"},
	{Code: LangEn, Tag: language.English, Name: "EN"},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(Languages))
	for i, l := range Languages {
		tags[i] = l.Tag
	}
	return language.NewMatcher(tags)
}()

// Supported сообщает, есть ли язык с таким кодом.
func Supported(code string) bool {
	for _, l := range Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// MatchLanguage выбирает код языка по заголовку Accept-Language.
func MatchLanguage(acceptLanguage string) string {
	_, idx := language.MatchStrings(matcher, acceptLanguage)
	return Languages[idx].Code
}

// Bundle хранит каталоги переводов: код языка → ключ → строка.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string
	fallback string
	logger   *slog.Logger
}

// NewBundle создаёт пустой Bundle. Ключ, которого нет в каталоге
// языка, берётся из каталога fallback.
func NewBundle(fallback string, logger *slog.Logger) *Bundle {
	if !Supported(fallback) {
		fallback = LangZh
	}
	return &Bundle{catalogs: map[string]map[string]string{}, fallback: fallback, logger: logger}
}

// Fallback возвращает язык по умолчанию.
func (b *Bundle) Fallback() string {
	return b.fallback
}

// Add заменяет каталог языка.
func (b *Bundle) Add(lang string, messages map[string]string) {
	b.mu.Lock()
	b.catalogs[lang] = messages
	b.mu.Unlock()
}

// Missing возвращает ключи каталога fallback, которых нет у lang.
func (b *Bundle) Missing(lang string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var keys []string
	for k := range b.catalogs[b.fallback] {
		if _, ok := b.catalogs[lang][k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Translate возвращает перевод ключа; неизвестный ключ возвращается как есть.
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if msg, ok := b.catalogs[lang][key]; ok {
		return msg
	}
	if msg, ok := b.catalogs[b.fallback][key]; ok {
		return msg
	}
	return key
}

// Translatef переводит ключ и подставляет аргументы (формат из каталога).
func (b *Bundle) Translatef(lang, key string, args ...any) string {
	msg := b.Translate(lang, key)
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

var (
	global     *Bundle
	globalOnce sync.Once
)

// Init создаёт глобальный Bundle; повторные вызовы возвращают тот же.
func Init(fallback string, logger *slog.Logger) *Bundle {
	globalOnce.Do(func() {
		global = NewBundle(fallback, logger)
	})
	return global
}

type ctxKey struct{}

// WithLang кладёт код языка в контекст.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext возвращает язык запроса или язык по умолчанию.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	if global != nil {
		return global.fallback
	}
	return LangZh
}

// T переводит ключ на язык из контекста.
func T(ctx context.Context, key string) string {
	return TLang(LangFromContext(ctx), key)
}

// TLang переводит ключ на заданный язык (для шаблонов).
func TLang(lang, key string) string {
	if global == nil {
		return key
	}
	return global.Translate(lang, key)
}

// Tf переводит ключ с подстановкой аргументов.
func Tf(ctx context.Context, key string, args ...any) string {
	if global == nil {
		return key
	}
	return global.Translatef(LangFromContext(ctx), key, args...)
}
