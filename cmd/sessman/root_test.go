package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sessman/pkg/manager"
)

type fakeCommand struct{ run func() error }

func (c *fakeCommand) SetStdin(io.Reader)  {}
func (c *fakeCommand) SetStdout(io.Writer) {}
func (c *fakeCommand) SetStderr(io.Writer) {}
func (c *fakeCommand) Run() error          { return c.run() }

type fakeLauncher struct{ targets []manager.Target }

func (l *fakeLauncher) Command(t manager.Target) (tea.ExecCommand, error) {
	return &fakeCommand{run: func() error {
		l.targets = append(l.targets, t)
		return nil
	}}, nil
}

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.yaml")
	doc := &manager.Document{
		Version: manager.DocumentVersion,
		Groups: []manager.Group{
			{Name: "lab", Profiles: []manager.Profile{
				{Name: "core", Endpoint: "admin@10.0.0.1:2222", Protocol: manager.ProtocolSSH},
				{Name: "console", Endpoint: "10.0.0.9:7001", Protocol: manager.ProtocolTelnet},
			}},
			{Name: "empty"},
			{Name: "prod", Profiles: []manager.Profile{
				{Name: "web", Endpoint: "deploy@web1", Protocol: manager.ProtocolSSH},
			}},
		},
	}
	if err := manager.SaveDocument(path, doc); err != nil {
		t.Fatal(err)
	}
	return path
}

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, env *cliEnv, args ...string) result {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var out, errOut bytes.Buffer
	env.stdin = strings.NewReader("")
	env.stdout = &out
	env.stderr = &errOut
	if env.runTUI == nil {
		env.runTUI = func(*manager.Store, manager.UIOptions) error {
			t.Fatalf("unexpected interactive run for %v", args)
			return nil
		}
	}
	code := execute(args, env)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func TestList(t *testing.T) {
	path := writeDoc(t)
	for _, args := range [][]string{{"-l", "-u", path}, {"--list", "--user-config", path}} {
		t.Run(strings.Join(args[:1], ""), func(t *testing.T) {
			r := run(t, &cliEnv{}, args...)
			if r.code != 0 {
				t.Fatalf("exit %d: %s", r.code, r.stderr)
			}
			for _, want := range []string{"lab 0: core", "      1: console", "empty", "prod 2: web"} {
				if !strings.Contains(r.stdout, want) {
					t.Errorf("list output missing %q:\n%s", want, r.stdout)
				}
			}
		})
	}
}

func TestConnect(t *testing.T) {
	path := writeDoc(t)
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantName string
	}{
		{"first", []string{"-c", "0"}, 0, "core"},
		{"crosses groups", []string{"--connect", "2"}, 0, "web"},
		{"out of range", []string{"-c", "3"}, 2, ""},
		{"negative", []string{"-c=-1"}, 2, ""},
		{"not a number", []string{"-c", "abc"}, 1, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := &fakeLauncher{}
			r := run(t, &cliEnv{launcher: l}, append(tc.args, "-u", path)...)
			if r.code != tc.wantCode {
				t.Fatalf("exit %d, want %d (stderr %q)", r.code, tc.wantCode, r.stderr)
			}
			if tc.wantName == "" {
				if len(l.targets) != 0 {
					t.Fatalf("unexpected launch %+v", l.targets)
				}
				return
			}
			if len(l.targets) != 1 || l.targets[0].Name != tc.wantName {
				t.Fatalf("launched %+v, want %q", l.targets, tc.wantName)
			}
		})
	}
}

func TestConnectInvalidIndexMessage(t *testing.T) {
	r := run(t, &cliEnv{launcher: &fakeLauncher{}}, "-c", "42", "-u", writeDoc(t))
	if !strings.Contains(r.stderr, "Invalid index!") {
		t.Fatalf("stderr %q", r.stderr)
	}
}

func TestRemove(t *testing.T) {
	path := writeDoc(t)
	r := run(t, &cliEnv{}, "-r", "lab", "-u", path)
	if r.code != 0 {
		t.Fatalf("exit %d: %s", r.code, r.stderr)
	}
	doc, err := manager.LoadDocument(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.GroupCount() != 2 || doc.Groups[0].Name != "empty" {
		t.Fatalf("unexpected groups %+v", doc.Groups)
	}
	if !strings.Contains(r.stdout, `Removed 1 session group(s) named "lab"`) {
		t.Fatalf("stdout %q", r.stdout)
	}
}

func TestModeFlagsAreExclusive(t *testing.T) {
	path := writeDoc(t)
	r := run(t, &cliEnv{launcher: &fakeLauncher{}}, "-l", "-c", "0", "-u", path)
	if r.code == 0 {
		t.Fatalf("expected failure, stdout %q", r.stdout)
	}
}

func TestInteractiveLauncherSelection(t *testing.T) {
	path := writeDoc(t)
	logFile := filepath.Join(t.TempDir(), "sessman.log")
	tests := []struct {
		name      string
		args      []string
		recording bool
	}{
		{"plain", nil, false},
		{"record dir", []string{"--record-dir", t.TempDir()}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotStore *manager.Store
			var gotOpts manager.UIOptions
			env := &cliEnv{runTUI: func(s *manager.Store, o manager.UIOptions) error {
				gotStore, gotOpts = s, o
				return nil
			}}
			args := append([]string{"-u", path, "--log-file", logFile}, tc.args...)
			if r := run(t, env, args...); r.code != 0 {
				t.Fatalf("exit %d: %s", r.code, r.stderr)
			}
			if gotStore == nil || gotStore.Path() != path {
				t.Fatalf("store not bound to %s", path)
			}
			_, recording := gotOpts.Launcher.(*manager.RecordingLauncher)
			if recording != tc.recording {
				t.Fatalf("launcher %T, recording want %v", gotOpts.Launcher, tc.recording)
			}
			if _, err := os.Stat(logFile); err != nil {
				t.Fatalf("log file not created: %v", err)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	r := run(t, &cliEnv{}, "version")
	if r.code != 0 || r.stdout != "sessman version "+Version+"\n" {
		t.Fatalf("got %d %q", r.code, r.stdout)
	}
}

func TestImportSSH(t *testing.T) {
	path := writeDoc(t)
	sshConfig := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(sshConfig, []byte("Host *\n  User nobody\nHost bastion\n  HostName 203.0.113.10\n  User ops\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	r := run(t, &cliEnv{}, "import-ssh", "-u", path, "--group", "imported", sshConfig)
	if r.code != 0 {
		t.Fatalf("exit %d: %s", r.code, r.stderr)
	}
	doc, err := manager.LoadDocument(path)
	if err != nil {
		t.Fatal(err)
	}
	last := doc.Groups[len(doc.Groups)-1]
	if last.Name != "imported" || len(last.Profiles) != 1 || last.Profiles[0].Endpoint != "ops@203.0.113.10" {
		t.Fatalf("unexpected imported group %+v", last)
	}
}

func TestImportSSHNoAliases(t *testing.T) {
	sshConfig := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(sshConfig, []byte("Host *\n  User nobody\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	r := run(t, &cliEnv{}, "import-ssh", "-u", writeDoc(t), sshConfig)
	if r.code != 1 || !strings.Contains(r.stderr, "no literal Host aliases") {
		t.Fatalf("got %d %q", r.code, r.stderr)
	}
}

func TestTranscripts(t *testing.T) {
	dir := t.TempDir()
	opts := manager.TranscriptOptions{BaseDir: dir}
	target := manager.Profile{Name: "lab console", Endpoint: "10.0.0.9:7001", Protocol: manager.ProtocolTelnet}.Target()
	for _, day := range []int{3, 11, 7} {
		f, err := manager.OpenDailyTranscript(target, time.Date(2024, 3, day, 12, 0, 0, 0, time.Local), opts)
		if err != nil {
			t.Fatal(err)
		}
		_ = f.Close()
	}

	r := run(t, &cliEnv{}, "transcripts", "lab console", "--record-dir", dir)
	if r.code != 0 {
		t.Fatalf("exit %d: %s", r.code, r.stderr)
	}
	want := strings.Join([]string{
		filepath.Join(dir, "lab_console", "2024-03-11.log"),
		filepath.Join(dir, "lab_console", "2024-03-07.log"),
		filepath.Join(dir, "lab_console", "2024-03-03.log"),
	}, "\n") + "\n"
	if r.stdout != want {
		t.Fatalf("got:\n%s\nwant:\n%s", r.stdout, want)
	}

	r = run(t, &cliEnv{}, "transcripts", "never recorded", "--record-dir", dir)
	if r.code != 0 || r.stdout != "" || !strings.Contains(r.stderr, `no transcripts for "never recorded"`) {
		t.Fatalf("got %d %q %q", r.code, r.stdout, r.stderr)
	}

	if r := run(t, &cliEnv{}, "transcripts"); r.code != 1 {
		t.Fatalf("missing name: exit %d", r.code)
	}
}
