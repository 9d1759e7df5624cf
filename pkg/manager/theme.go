package manager

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Default palette (used when the document has no colors block).
const (
	defaultPrimaryColor   = "#f8f8f2"
	defaultSuccessColor   = "#50fa7b"
	defaultErrorColor     = "#f1fa8c"
	defaultHighlightColor = "#f1fa8c"
)

// Theme holds the lipgloss styles used by the table, the popup and the status
// line. A disabled theme renders every fragment as plain text.
//
// Resolution order:
//  1. SESSMAN_THEME = none | off | disabled, or NO_COLOR set: no styling
//  2. the document's colors block, field by field
//  3. the default palette
type Theme struct {
	Enabled bool

	Title      lipgloss.Style
	Header     lipgloss.Style
	Group      lipgloss.Style
	Profile    lipgloss.Style
	Selected   lipgloss.Style
	Dim        lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Frame      lipgloss.Style
	Popup      lipgloss.Style
	PopupTitle lipgloss.Style
}

// LoadTheme resolves the theme for doc.
func LoadTheme(c *Colors) Theme {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SESSMAN_THEME"))) {
	case "none", "off", "disabled":
		return NoTheme()
	}
	if !terminalSupportsColor() {
		return NoTheme()
	}
	return ThemeFromColors(c)
}

// NoTheme disables all styling.
func NoTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Enabled:    false,
		Title:      plain,
		Header:     plain,
		Group:      plain,
		Profile:    plain,
		Selected:   plain,
		Dim:        plain,
		Error:      plain,
		Success:    plain,
		Frame:      plain,
		Popup:      plain.Border(lipgloss.NormalBorder()).Padding(1, 2),
		PopupTitle: plain,
	}
}

// ThemeFromColors builds an enabled theme, filling unset colors from the
// default palette.
func ThemeFromColors(c *Colors) Theme {
	var cc Colors
	if c != nil {
		cc = *c
	}
	primary := lipgloss.Color(pick(cc.Primary, defaultPrimaryColor))
	success := lipgloss.Color(pick(cc.Success, defaultSuccessColor))
	errc := lipgloss.Color(pick(cc.Error, defaultErrorColor))
	highlight := lipgloss.Color(pick(cc.Highlight, defaultHighlightColor))

	return Theme{
		Enabled:    true,
		Title:      lipgloss.NewStyle().Bold(true).Foreground(primary),
		Header:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8")),
		Group:      lipgloss.NewStyle().Bold(true).Foreground(primary),
		Profile:    lipgloss.NewStyle().Foreground(primary),
		Selected:   lipgloss.NewStyle().Reverse(true).Foreground(highlight),
		Dim:        lipgloss.NewStyle().Faint(true),
		Error:      lipgloss.NewStyle().Foreground(errc),
		Success:    lipgloss.NewStyle().Foreground(success),
		Frame:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(primary),
		Popup:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(highlight).Padding(1, 2),
		PopupTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	}
}

func pick(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func terminalSupportsColor() bool {
	// https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	return term != "dumb"
}
