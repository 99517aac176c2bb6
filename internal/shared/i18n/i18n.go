package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	mu            sync.RWMutex
	bundle        *i18n.Bundle
	defaultLocale = "en"
)

type ctxKey struct{}

// Init loads the embedded locale files. Safe to call more than once.
func Init(defLocale string) error {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("i18n: read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
			return fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	bundle = b
	if defLocale != "" {
		defaultLocale = defLocale
	}
	return nil
}

func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, locale)
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	mu.RLock()
	defer mu.RUnlock()
	return defaultLocale
}

// Translate localizes an error code for the request locale. The English
// fallback is returned untouched for the default locale, for unknown codes and
// before Init.
func Translate(ctx context.Context, code, fallback string) string {
	lang := LocaleFromContext(ctx)

	mu.RLock()
	b, def := bundle, defaultLocale
	mu.RUnlock()

	if b == nil || primary(lang) == primary(def) {
		return fallback
	}

	msg, err := i18n.NewLocalizer(b, lang).Localize(&i18n.LocalizeConfig{MessageID: code})
	if err != nil || msg == "" {
		return fallback
	}
	return msg
}

// ParseAcceptLanguage picks the first tag of an Accept-Language header.
func ParseAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	base, _ := tags[0].Base()
	return base.String()
}

func primary(tag string) string {
	tag = strings.ToLower(tag)
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		return tag[:i]
	}
	return tag
}
