package manager

import (
	"path/filepath"
	"testing"
)

func TestResolveConfigPath_ExplicitWins(t *testing.T) {
	t.Setenv("SESSMAN_CONFIG", "/elsewhere/sessions.yaml")
	got, err := ResolveConfigPath("  /tmp/mine.json ")
	if err != nil || got != "/tmp/mine.json" {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestResolveConfigPath_FirstExistingCandidate(t *testing.T) {
	home := t.TempDir()
	xdg := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("SESSMAN_CONFIG", "")

	homePath := filepath.Join(home, ".config", "sessman", "sessions.yaml")
	writeFile(t, homePath, "version: \"1\"\n")

	got, err := ResolveConfigPath("")
	if err != nil || got != homePath {
		t.Fatalf("expected existing home candidate %q, got %q err=%v", homePath, got, err)
	}

	xdgPath := filepath.Join(xdg, "sessman", "sessions.yaml")
	writeFile(t, xdgPath, "version: \"1\"\n")
	got, _ = ResolveConfigPath("")
	if got != xdgPath {
		t.Fatalf("expected xdg candidate %q to take priority, got %q", xdgPath, got)
	}

	envPath := filepath.Join(t.TempDir(), "env.yaml")
	writeFile(t, envPath, "")
	t.Setenv("SESSMAN_CONFIG", envPath)
	got, _ = ResolveConfigPath("")
	if got != envPath {
		t.Fatalf("expected $SESSMAN_CONFIG %q, got %q", envPath, got)
	}
}

func TestResolveConfigPath_NoneExistUsesLastCandidate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SESSMAN_CONFIG", "")

	got, err := ResolveConfigPath("")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config", "sessman", "sessions.yaml"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SESSMAN_TEST_DIR", "/data")

	cases := map[string]string{
		"":                     "",
		"~":                    home,
		"~/x/y.yaml":           filepath.Join(home, "x", "y.yaml"),
		"$SESSMAN_TEST_DIR/s":  "/data/s",
		"/abs/path":            "/abs/path",
		"~other/sessions.yaml": "~other/sessions.yaml",
	}
	for in, want := range cases {
		if got := expandPath(in); got != want {
			t.Errorf("expandPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDocument_RemoveGroupsNamed(t *testing.T) {
	doc := sampleDocument()
	doc.AppendGroup(Group{Name: "lab"})

	if n := doc.RemoveGroupsNamed("  lab "); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if doc.GroupCount() != 2 || doc.Groups[0].Name != "empty" || doc.Groups[1].Name != "prod" {
		t.Fatalf("unexpected groups %+v", doc.Groups)
	}
	if n := doc.RemoveGroupsNamed("missing"); n != 0 {
		t.Fatalf("expected nothing removed, got %d", n)
	}
}

func TestDocument_Counts(t *testing.T) {
	var nilDoc *Document
	if nilDoc.GroupCount() != 0 || nilDoc.ProfileCount() != 0 || nilDoc.AllProfiles() != nil {
		t.Fatalf("nil document must be empty")
	}
	doc := sampleDocument()
	if doc.GroupCount() != 3 || doc.ProfileCount() != 3 || len(doc.AllProfiles()) != 3 {
		t.Fatalf("unexpected counts")
	}
}

func TestSanitizeNameToFilename(t *testing.T) {
	cases := map[string]string{
		"core switch":   "core_switch",
		"a/b\\c":        "a_b_c",
		"  ":            "session",
		"__x__":         "x",
		"admin@host:22": "admin_host_22",
	}
	for in, want := range cases {
		if got := sanitizeNameToFilename(in); got != want {
			t.Errorf("sanitizeNameToFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDefaultConfigDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	got, err := DefaultConfigDir()
	if err != nil || got != filepath.Join(xdg, "sessman") {
		t.Fatalf("got %q err=%v", got, err)
	}
	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, _ = DefaultConfigDir()
	if got != filepath.Join(home, ".config", "sessman") {
		t.Fatalf("got %q", got)
	}
}
