// Package i18n provides the message printer used for user-facing output.
package i18n

import (
	"context"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the fallback language
var DefaultLang = language.English

// SupportedLangs are the languages we support
var SupportedLangs = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(SupportedLangs)

// German renderings of the fixed listing and diagnostic strings.
var german = map[string]string{
	"Interface not found!\n":                      "Schnittstelle nicht gefunden!\n",
	"%s: %s\n":                                    "%s: %s\n",
	"%s: \"%s\" does not exist!\n":                "%s: \"%s\" existiert nicht!\n",
	"%s: \"%s\" is not a WLAN device!\n":          "%s: \"%s\" ist kein WLAN-Gerät!\n",
	"%s: the networking stack is not available\n": "%s: der Netzwerkstapel ist nicht verfügbar\n",
	"[DRY RUN] Requests:\n":                       "[PROBELAUF] Anfragen:\n",
	"  (none)\n":                                   "  (keine)\n",
	"No changes detected.\n":                       "Keine Änderungen.\n",
	"Configuration valid: %s\n":                    "Konfiguration gültig: %s\n",
}

func init() {
	for key, msg := range german {
		_ = message.SetString(language.German, key, msg)
	}
}

type contextKey struct{}

var printerKey = contextKey{}

// MatchLanguage returns the best matching language for an Accept-Language
// style list.
func MatchLanguage(acceptLang string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(acceptLang)
	tag, _, _ := matcher.Match(tags...)
	return tag
}

// NewPrinter returns a message printer for the given language
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// WithPrinter returns a new context with the printer injected
func WithPrinter(ctx context.Context, p *message.Printer) context.Context {
	return context.WithValue(ctx, printerKey, p)
}

// GetPrinter returns the printer from the context, or a default one
func GetPrinter(ctx context.Context) *message.Printer {
	p, ok := ctx.Value(printerKey).(*message.Printer)
	if !ok {
		return message.NewPrinter(DefaultLang)
	}
	return p
}

// LocaleFromEnv returns the tag named by LC_ALL, LC_MESSAGES or LANG.
func LocaleFromEnv() language.Tag {
	var lang string
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if lang = os.Getenv(key); lang != "" {
			break
		}
	}
	if lang == "" || lang == "C" || lang == "POSIX" {
		return DefaultLang
	}

	// Strip encoding (e.g. .UTF-8) and modifier.
	if i := strings.IndexAny(lang, ".@"); i != -1 {
		lang = lang[:i]
	}
	lang = strings.ReplaceAll(lang, "_", "-")

	tag, err := language.Parse(lang)
	if err != nil {
		return MatchLanguage(lang)
	}
	tag, _, _ = matcher.Match(tag)
	return tag
}

// NewCLIPrinter returns a printer for the system's locale.
func NewCLIPrinter() *message.Printer {
	return message.NewPrinter(LocaleFromEnv())
}
