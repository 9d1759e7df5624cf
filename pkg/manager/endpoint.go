package manager

import (
	"fmt"
	"strings"
)

// Protocol selects the external program used to connect.
type Protocol int

const (
	ProtocolSSH Protocol = iota
	ProtocolTelnet
)

const (
	defaultSSHPort    = "22"
	defaultTelnetPort = "23"
)

// ParseProtocol maps user input to a Protocol. "telnet" (any case) selects
// Telnet; anything else selects SSH.
func ParseProtocol(s string) Protocol {
	if strings.EqualFold(strings.TrimSpace(s), "telnet") {
		return ProtocolTelnet
	}
	return ProtocolSSH
}

// String returns the protocol tag, which is also the program name.
func (p Protocol) String() string {
	switch p {
	case ProtocolTelnet:
		return "telnet"
	default:
		return "ssh"
	}
}

// DefaultPort is used when an endpoint carries no ":port" segment.
func (p Protocol) DefaultPort() string {
	if p == ProtocolTelnet {
		return defaultTelnetPort
	}
	return defaultSSHPort
}

// MarshalText implements encoding.TextMarshaler (used by both yaml.v3 and encoding/json).
func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts "ssh" and "telnet" in any case, which also covers the
// "SSH"/"Telnet" tags written by older versions.
func (p *Protocol) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "ssh":
		*p = ProtocolSSH
	case "telnet":
		*p = ProtocolTelnet
	default:
		return fmt.Errorf("unknown protocol %q (expected: ssh|telnet)", string(b))
	}
	return nil
}

// The derived fields below are recomputed from Endpoint on every call and never
// fail: a malformed endpoint only yields shorter (possibly empty) values.
//
//	[user@]host[:port[/ignored]]

// Username returns the part before the first "@", or "" when there is none.
func (p Profile) Username() string {
	i := strings.IndexByte(p.Endpoint, '@')
	if i < 0 {
		return ""
	}
	return p.Endpoint[:i]
}

// Host returns the part after "@" (or from the start) up to the first ":".
func (p Profile) Host() string {
	rest := p.afterUser()
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		return rest[:i]
	}
	return rest
}

// Port returns the part after the first ":" up to the first "/". Without a
// ":" the protocol default is returned (22 for SSH, 23 for Telnet).
func (p Profile) Port() string {
	rest := p.afterUser()
	i := strings.IndexByte(rest, ':')
	if i < 0 {
		return p.Protocol.DefaultPort()
	}
	port := rest[i+1:]
	if j := strings.IndexByte(port, '/'); j >= 0 {
		port = port[:j]
	}
	return port
}

func (p Profile) afterUser() string {
	if i := strings.IndexByte(p.Endpoint, '@'); i >= 0 {
		return p.Endpoint[i+1:]
	}
	return p.Endpoint
}

// FormatEndpoint builds "[user@]host[:port]" from its parts; empty user or port
// segments are omitted.
func FormatEndpoint(user, host, port string) string {
	var b strings.Builder
	if user != "" {
		b.WriteString(user)
		b.WriteByte('@')
	}
	b.WriteString(host)
	if port != "" {
		b.WriteByte(':')
		b.WriteString(port)
	}
	return b.String()
}

// Target is the resolved connection tuple handed to a Launcher.
type Target struct {
	Name     string
	Host     string
	Port     string
	Username string
	Protocol Protocol
}

// Target resolves the profile's endpoint into a launch target.
func (p Profile) Target() Target {
	return Target{
		Name:     p.Name,
		Host:     p.Host(),
		Port:     p.Port(),
		Username: p.Username(),
		Protocol: p.Protocol,
	}
}

// Argv constructs the argv slice for the external program:
//
//	ssh <host> -p <port> [-l <user>]
//	telnet <host> <port>
func (t Target) Argv() []string {
	switch t.Protocol {
	case ProtocolTelnet:
		return []string{"telnet", t.Host, t.Port}
	default:
		argv := []string{"ssh", t.Host, "-p", t.Port}
		if t.Username != "" {
			argv = append(argv, "-l", t.Username)
		}
		return argv
	}
}

// CommandLine renders Argv as a single shell-friendly line.
func (t Target) CommandLine() string {
	argv := t.Argv()
	parts := make([]string, 0, len(argv))
	for _, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t'\"$`\\") {
			a = "'" + strings.ReplaceAll(a, "'", `'"'"'`) + "'"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
