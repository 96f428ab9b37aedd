package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		accept   string
		expected language.Tag
	}{
		{"en-US,en;q=0.9", language.English},
		{"de-DE,de;q=0.9", language.German},
		{"fr-FR", language.English},
		{"", language.English},
	}

	for _, tt := range tests {
		got := MatchLanguage(tt.accept)
		base, _ := got.Base()
		exp, _ := tt.expected.Base()
		assert.Equal(t, exp, base, "Accept: %s", tt.accept)
	}
}

func TestLocaleFromEnv(t *testing.T) {
	tests := []struct {
		lcAll, lang string
		expected    language.Tag
	}{
		{"", "", language.English},
		{"C", "", language.English},
		{"", "de_DE.UTF-8", language.German},
		{"en_GB.UTF-8", "de_DE.UTF-8", language.English},
		{"", "fr_FR", language.English},
	}
	for _, tt := range tests {
		t.Setenv("LC_ALL", tt.lcAll)
		t.Setenv("LC_MESSAGES", "")
		t.Setenv("LANG", tt.lang)

		base, _ := LocaleFromEnv().Base()
		exp, _ := tt.expected.Base()
		assert.Equal(t, exp, base, "LC_ALL=%q LANG=%q", tt.lcAll, tt.lang)
	}
}

func TestPrinterTranslates(t *testing.T) {
	assert.Equal(t, "Interface not found!\n", NewPrinter(language.English).Sprintf("Interface not found!\n"))
	assert.Equal(t, "Schnittstelle nicht gefunden!\n", NewPrinter(language.German).Sprintf("Interface not found!\n"))
}

func TestPrinterContext(t *testing.T) {
	assert.NotNil(t, GetPrinter(context.Background()))

	p := NewPrinter(language.German)
	assert.Same(t, p, GetPrinter(WithPrinter(context.Background(), p)))
}
