package manager

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Non-interactive helpers behind --list and --connect. Sessions there are
// addressed by a zero-based index that counts profiles only, in document order.

// ErrInvalidIndex is returned when a session index is out of range.
var ErrInvalidIndex = errors.New("invalid index")

// ProfileAtSessionIndex returns the i-th profile of the document, skipping
// group rows.
func (d *Document) ProfileAtSessionIndex(i int) (Profile, bool) {
	all := d.AllProfiles()
	if i < 0 || i >= len(all) {
		return Profile{}, false
	}
	return all[i], true
}

// WriteSessionList prints each group name once, followed by its sessions as
// "<index>: <name>", one per line:
//
//	  lab 0: core
//	      1: console
//	empty
//	 prod 2: web
func WriteSessionList(w io.Writer, doc *Document, th Theme) error {
	nameWidth := 0
	for _, g := range doc.Groups {
		if n := len(g.Name); n > nameWidth {
			nameWidth = n
		}
	}

	idx := 0
	for _, g := range doc.Groups {
		label := fmt.Sprintf("%*s", nameWidth, g.Name)
		if len(g.Profiles) == 0 {
			if _, err := fmt.Fprintln(w, th.Success.Render(label)); err != nil {
				return err
			}
			continue
		}
		for i, p := range g.Profiles {
			left := strings.Repeat(" ", nameWidth)
			if i == 0 {
				left = th.Success.Render(label)
			}
			entry := th.Profile.Render(fmt.Sprintf("%d: %s", idx, p.Name))
			if _, err := fmt.Fprintf(w, "%s %s\n", left, entry); err != nil {
				return err
			}
			idx++
		}
	}
	return nil
}

// ConnectForeground launches p with l on the given streams and waits for the
// program to exit.
func ConnectForeground(l Launcher, p Profile, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd, err := l.Command(p.Target())
	if err != nil {
		return err
	}
	cmd.SetStdin(stdin)
	cmd.SetStdout(stdout)
	cmd.SetStderr(stderr)
	return cmd.Run()
}
