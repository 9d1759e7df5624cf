package manager

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultImportGroupName names the group created by ImportSSHConfigGroup when
// no name is given.
const DefaultImportGroupName = "ssh-config"

// SSHHostEntry represents a single, literal Host alias parsed from an OpenSSH
// client configuration file (e.g., ~/.ssh/config). Wildcard host patterns are
// ignored.
type SSHHostEntry struct {
	// Alias is the Host alias used on the ssh command line (e.g., "prod-db-1").
	Alias string

	// Values parsed from the Host block (last-wins semantics).
	HostName string
	User     string
	Port     int

	// Source file path and starting line of the Host block (best-effort).
	Source    string
	StartLine int
}

// Endpoint renders the entry as "[User@]HostName[:Port]"; HostName falls back
// to the alias.
func (e SSHHostEntry) Endpoint() string {
	host := e.HostName
	if host == "" {
		host = e.Alias
	}
	port := ""
	if e.Port > 0 {
		port = strconv.Itoa(e.Port)
	}
	return FormatEndpoint(e.User, host, port)
}

// DefaultSSHConfigPath returns ~/.ssh/config.
func DefaultSSHConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ssh", "config"), nil
}

// LoadSSHConfig parses the given ssh config files, following Include
// directives (globs supported). It returns one SSHHostEntry per literal Host
// alias in order of first appearance; a later block for the same alias
// replaces the earlier one.
func LoadSSHConfig(paths ...string) ([]SSHHostEntry, error) {
	if len(paths) == 0 {
		return nil, errors.New("no ssh config paths provided")
	}

	parser := newSSHConfigParser()
	for _, p := range paths {
		if err := parser.parseFile(expandPath(p)); err != nil {
			return nil, err
		}
	}

	var out []SSHHostEntry
	pos := map[string]int{}
	for _, e := range parser.entries {
		if i, ok := pos[e.Alias]; ok {
			out[i] = e
			continue
		}
		pos[e.Alias] = len(out)
		out = append(out, e)
	}
	return out, nil
}

// ImportSSHConfigGroup converts parsed entries into a single Group of Ssh
// profiles named after the aliases.
func ImportSSHConfigGroup(name string, entries []SSHHostEntry) Group {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultImportGroupName
	}
	g := Group{Name: name, Profiles: make([]Profile, 0, len(entries))}
	for _, e := range entries {
		g.Profiles = append(g.Profiles, Profile{
			Name:     e.Alias,
			Endpoint: e.Endpoint(),
			Protocol: ProtocolSSH,
		})
	}
	return g
}

// sshConfigParser walks a config file and the files it includes. Each file is
// read at most once.
type sshConfigParser struct {
	seen    map[string]bool
	entries []SSHHostEntry

	// block under construction; nil outside Host sections.
	aliases []string
	opts    map[string]string
	source  string
	line    int
}

func newSSHConfigParser() *sshConfigParser {
	return &sshConfigParser{seen: map[string]bool{}}
}

func (p *sshConfigParser) parseFile(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if p.seen[path] {
		return nil
	}
	p.seen[path] = true

	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("open ssh config %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for n := 1; sc.Scan(); n++ {
		key, val, ok := splitSSHDirective(sc.Text())
		if !ok {
			continue
		}
		switch key {
		case "host":
			p.endBlock()
			p.aliases = strings.Fields(val)
			p.opts = map[string]string{}
			p.source, p.line = path, n
		case "include":
			p.endBlock()
			for _, inc := range includedFiles(path, val) {
				if err := p.parseFile(inc); err != nil {
					return err
				}
			}
		case "match":
			// Match conditions are not evaluated.
			p.endBlock()
		default:
			if p.opts != nil {
				p.opts[key] = strings.Trim(val, `"`)
			}
		}
	}
	p.endBlock()
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan ssh config %s: %w", path, err)
	}
	return nil
}

// endBlock emits one entry per literal alias of the current Host block.
func (p *sshConfigParser) endBlock() {
	if p.opts == nil {
		return
	}
	port, err := strconv.Atoi(p.opts["port"])
	if err != nil || port < 0 {
		port = 0
	}
	for _, alias := range p.aliases {
		if !isLiteralHostPattern(alias) {
			continue
		}
		p.entries = append(p.entries, SSHHostEntry{
			Alias:     alias,
			HostName:  p.opts["hostname"],
			User:      p.opts["user"],
			Port:      port,
			Source:    p.source,
			StartLine: p.line,
		})
	}
	p.aliases, p.opts = nil, nil
}

// splitSSHDirective returns the lower-cased keyword and value of a config
// line, accepting "Key Value" and "Key=Value". Comments and blank lines
// yield ok=false.
func splitSSHDirective(line string) (key, val string, ok bool) {
	line = strings.TrimSpace(stripSSHInlineComment(line))
	i := strings.IndexAny(line, " \t=")
	if i <= 0 {
		return "", "", false
	}
	key = strings.ToLower(line[:i])
	val = strings.TrimSpace(line[i+1:])
	val = strings.TrimSpace(strings.TrimPrefix(val, "="))
	return key, val, true
}

// stripSSHInlineComment drops everything from an unquoted '#'.
func stripSSHInlineComment(s string) string {
	var quote rune
	for i, r := range s {
		switch {
		case r == '"' || r == '\'':
			if quote == 0 {
				quote = r
			} else if quote == r {
				quote = 0
			}
		case r == '#' && quote == 0:
			return s[:i]
		}
	}
	return s
}

// includedFiles resolves an Include value relative to the including file.
func includedFiles(from, value string) []string {
	var files []string
	for _, pat := range strings.Fields(value) {
		pat = expandPath(pat)
		if !filepath.IsAbs(pat) {
			pat = filepath.Join(filepath.Dir(from), pat)
		}
		matches, _ := filepath.Glob(pat)
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
				files = append(files, m)
			}
		}
	}
	return files
}

// isLiteralHostPattern reports whether p names a single host rather than a
// wildcard or negated pattern.
func isLiteralHostPattern(p string) bool {
	return p != "" && !strings.HasPrefix(p, "!") && !strings.ContainsAny(p, "*?[]")
}
