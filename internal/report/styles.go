package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/message"
)

// Palette
var (
	ColorIce   = lipgloss.Color("#A8D8EA")
	ColorDeep  = lipgloss.Color("#596E79")
	ColorAlert = lipgloss.Color("#FF6B6B")
	ColorGood  = lipgloss.Color("#4ECDC4")
	ColorWarn  = lipgloss.Color("#FFE66D")
)

var (
	StyleName    = lipgloss.NewStyle().Foreground(ColorIce).Bold(true)
	StyleLabel   = lipgloss.NewStyle().Foreground(ColorDeep)
	StyleUp      = lipgloss.NewStyle().Foreground(ColorGood).Bold(true)
	StyleDown    = lipgloss.NewStyle().Foreground(ColorAlert)
	StyleDynamic = lipgloss.NewStyle().Foreground(ColorWarn)
	StyleHeader  = lipgloss.NewStyle().Foreground(ColorDeep).Bold(true)
)

// Styler applies the palette when enabled and is the identity otherwise.
// Fixed notices go through Printer when one is set.
type Styler struct {
	Enabled bool
	Printer *message.Printer
}

func (s Styler) translate(text string) string {
	if s.Printer == nil {
		return text
	}
	return s.Printer.Sprintf(text)
}

func (s Styler) render(st lipgloss.Style, text string) string {
	if !s.Enabled || text == "" {
		return text
	}
	return st.Render(text)
}

// Name styles an interface name.
func (s Styler) Name(text string) string { return s.render(StyleName, text) }

// Label styles a field label such as "MTU".
func (s Styler) Label(text string) string { return s.render(StyleLabel, text) }

// Header styles a table header.
func (s Styler) Header(text string) string { return s.render(StyleHeader, text) }

// Flag styles one flag name by what it says about the interface.
func (s Styler) Flag(name string) string {
	switch name {
	case "up":
		return s.render(StyleUp, name)
	case "auto-configured", "configuring":
		return s.render(StyleDynamic, name)
	}
	return name
}

// Missing translates and styles the not-found notice, keeping its newline
// outside the styled span.
func (s Styler) Missing(text string) string {
	t := s.translate(text)
	body := strings.TrimSuffix(t, "\n")
	return s.render(StyleDown, body) + t[len(body):]
}
