package manager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Recorded sessions are written to one file per profile per calendar day:
//
//	<base>/<sanitized profile name>/YYYY-MM-DD.log
//
// The base directory defaults to <config dir>/transcripts.

const (
	DefaultTranscriptSubdir = "transcripts"
	TranscriptExt           = ".log"
	TranscriptDayFormat     = "2006-01-02"
)

// TranscriptOptions controls where transcripts go and what a "day" is.
type TranscriptOptions struct {
	// BaseDir overrides the base directory.
	BaseDir string
	// Timezone for file rotation; nil means local time.
	Timezone *time.Location
}

// TranscriptBaseDir resolves the base transcript directory.
func TranscriptBaseDir(opts TranscriptOptions) (string, error) {
	if strings.TrimSpace(opts.BaseDir) != "" {
		return expandPath(strings.TrimSpace(opts.BaseDir)), nil
	}
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultTranscriptSubdir), nil
}

// TranscriptDir returns the directory holding transcripts of profileName.
func TranscriptDir(profileName string, opts TranscriptOptions) (string, error) {
	profileName = strings.TrimSpace(profileName)
	if profileName == "" {
		return "", errors.New("profile name is required")
	}
	base, err := TranscriptBaseDir(opts)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, sanitizeNameToFilename(profileName)), nil
}

// DailyTranscriptPath returns the transcript file for profileName on the day of t.
// A zero t means now.
func DailyTranscriptPath(profileName string, t time.Time, opts TranscriptOptions) (string, error) {
	if t.IsZero() {
		t = time.Now()
	}
	loc := opts.Timezone
	if loc == nil {
		loc = time.Local
	}
	dir, err := TranscriptDir(profileName, opts)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, t.In(loc).Format(TranscriptDayFormat)+TranscriptExt), nil
}

// OpenDailyTranscript opens the day's transcript for appending, creating parent
// directories (0700) and the file (0600) if needed, and writes a session header.
func OpenDailyTranscript(target Target, t time.Time, opts TranscriptOptions) (*os.File, error) {
	if t.IsZero() {
		t = time.Now()
	}
	p, err := DailyTranscriptPath(target.Name, t, opts)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, fmt.Errorf("mkdir transcript dir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	header := fmt.Sprintf("=== %s %s %s ===\n", t.Format(time.RFC3339), target.Protocol, target.CommandLine())
	if _, err := f.WriteString(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write transcript header: %w", err)
	}
	return f, nil
}

// ListTranscripts returns the transcript files of profileName, newest first.
func ListTranscripts(profileName string, opts TranscriptOptions) ([]string, error) {
	dir, err := TranscriptDir(profileName, opts)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), TranscriptExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	// YYYY-MM-DD sorts lexicographically.
	sort.Slice(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) > filepath.Base(paths[j])
	})
	return paths, nil
}
