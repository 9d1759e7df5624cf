package manager

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestLoadTheme_DisabledByEnv(t *testing.T) {
	cases := []struct {
		name, key, value string
	}{
		{"theme none", "SESSMAN_THEME", "none"},
		{"theme off uppercase", "SESSMAN_THEME", " OFF "},
		{"no color", "NO_COLOR", ""},
		{"dumb term", "TERM", "dumb"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Setenv("SESSMAN_THEME", "")
			t.Setenv("TERM", "xterm-256color")
			t.Setenv(c.key, c.value)
			if th := LoadTheme(nil); th.Enabled {
				t.Fatalf("expected disabled theme")
			}
		})
	}
}

func TestThemeFromColors_FallsBackPerField(t *testing.T) {
	th := ThemeFromColors(&Colors{Success: " #00ff00 "})
	if !th.Enabled {
		t.Fatalf("expected enabled theme")
	}
	if got := th.Success.GetForeground(); got != lipgloss.Color("#00ff00") {
		t.Fatalf("success color %v", got)
	}
	if got := th.Error.GetForeground(); got != lipgloss.Color(defaultErrorColor) {
		t.Fatalf("error color %v", got)
	}
}
