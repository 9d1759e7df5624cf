// Package manager contains the document model, persistence, launcher and
// Bubble Tea UI for sessman.
package manager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DocumentVersion is written into every saved document.
const DocumentVersion = "1"

const defaultConfigDirName = "sessman"

// Document represents the full persisted configuration.
//
// Example YAML:
//
// version: "1"
// groups:
//   - name: lab
//     profiles:
//       - name: core switch
//         endpoint: admin@10.0.0.1:2222
//         protocol: ssh
//       - name: console server
//         endpoint: 10.0.0.9:7001
//         protocol: telnet
//
// Group order and profile order are meaningful: they define the row order of the
// table and therefore the flat selection index.
type Document struct {
	Version string  `yaml:"version" json:"version"`
	Groups  []Group `yaml:"groups" json:"groups"`

	// Colors optionally overrides the UI palette.
	Colors *Colors `yaml:"colors,omitempty" json:"colors,omitempty"`
}

// Group is a named, ordered collection of profiles.
type Group struct {
	Name     string    `yaml:"name" json:"name"`
	Profiles []Profile `yaml:"profiles" json:"profiles"`
}

// Profile is one addressable target plus its protocol.
//
// Endpoint is stored exactly as typed ("[user@]host[:port]"); the username, host
// and port are derived from it on demand (see endpoint.go).
type Profile struct {
	Name     string   `yaml:"name" json:"name"`
	Endpoint string   `yaml:"endpoint" json:"endpoint"`
	Protocol Protocol `yaml:"protocol" json:"protocol"`
}

// Colors is the optional palette block of a document. Values are lipgloss colors
// ("#50fa7b", "212", ...). Empty fields fall back to the defaults.
type Colors struct {
	Primary   string `yaml:"primary,omitempty" json:"primary,omitempty"`
	Success   string `yaml:"success,omitempty" json:"success,omitempty"`
	Error     string `yaml:"error,omitempty" json:"error,omitempty"`
	Highlight string `yaml:"highlight,omitempty" json:"highlight,omitempty"`
}

// ErrConfigNotFound is returned when no document path can be determined.
var ErrConfigNotFound = errors.New("config not found")

// NewDocument returns an empty document carrying the current version tag.
func NewDocument() *Document {
	return &Document{Version: DocumentVersion, Groups: []Group{}}
}

// GroupCount returns the number of groups.
func (d *Document) GroupCount() int {
	if d == nil {
		return 0
	}
	return len(d.Groups)
}

// ProfileCount returns the number of profiles across all groups.
func (d *Document) ProfileCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, g := range d.Groups {
		n += len(g.Profiles)
	}
	return n
}

// AllProfiles returns every profile in document order (groups not included).
func (d *Document) AllProfiles() []Profile {
	if d == nil {
		return nil
	}
	out := make([]Profile, 0, d.ProfileCount())
	for _, g := range d.Groups {
		out = append(out, g.Profiles...)
	}
	return out
}

// AppendGroup adds g after the existing groups.
func (d *Document) AppendGroup(g Group) {
	d.Groups = append(d.Groups, g)
}

// RemoveGroupsNamed deletes every group whose name equals the trimmed name and
// returns how many were removed.
func (d *Document) RemoveGroupsNamed(name string) int {
	name = strings.TrimSpace(name)
	out := d.Groups[:0]
	removed := 0
	for _, g := range d.Groups {
		if g.Name == name {
			removed++
			continue
		}
		out = append(out, g)
	}
	d.Groups = out
	return removed
}

// DefaultConfigDir returns the directory path for this application's config.
// Precedence:
//  1. $XDG_CONFIG_HOME/sessman
//  2. ~/.config/sessman
func DefaultConfigDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, defaultConfigDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", defaultConfigDirName), nil
}

// ConfigPathCandidates returns possible document paths, in priority order.
// If explicitPath is provided, it is returned first.
func ConfigPathCandidates(explicitPath string) []string {
	var out []string
	if strings.TrimSpace(explicitPath) != "" {
		out = append(out, strings.TrimSpace(explicitPath))
	}
	if env := strings.TrimSpace(os.Getenv("SESSMAN_CONFIG")); env != "" {
		out = append(out, env)
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		out = append(out, filepath.Join(xdg, defaultConfigDirName, "sessions.yaml"))
	}
	if home, _ := os.UserHomeDir(); home != "" {
		out = append(out, filepath.Join(home, ".config", defaultConfigDirName, "sessions.yaml"))
	}
	return out
}

// ResolveConfigPath picks the document path to use.
//
// An explicit path always wins, whether or not it exists. Otherwise the first
// existing candidate is used, and if none exists the last candidate is returned
// so that the first save creates it.
func ResolveConfigPath(explicitPath string) (string, error) {
	if p := expandPath(strings.TrimSpace(explicitPath)); p != "" {
		return p, nil
	}
	candidates := ConfigPathCandidates("")
	for _, c := range candidates {
		c = expandPath(c)
		if c == "" {
			continue
		}
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	if len(candidates) == 0 {
		return "", ErrConfigNotFound
	}
	return expandPath(candidates[len(candidates)-1]), nil
}

// expandPath expands leading "~" and environment variables in a path.
// If the input is empty, returns "".
func expandPath(p string) string {
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~") {
		home, _ := os.UserHomeDir()
		if home != "" {
			if p == "~" {
				p = home
			} else if strings.HasPrefix(p, "~/") {
				p = filepath.Join(home, p[2:])
			}
			// "~user" is left alone.
		}
	}
	return p
}

// sanitizeNameToFilename makes a display name safe for use as a path element.
func sanitizeNameToFilename(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		"@", "_",
		" ", "_",
		"\t", "_",
	)
	name = replacer.Replace(name)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	name = strings.Trim(name, "._-")
	if name == "" {
		return "session"
	}
	return name
}
