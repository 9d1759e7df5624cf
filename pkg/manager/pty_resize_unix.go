//go:build !windows
// +build !windows

package manager

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// startPTYResizeWatcher copies the size of tty onto ptmx on every SIGWINCH
// until the returned stop function is called.
func startPTYResizeWatcher(ptmx, tty *os.File) (stop func()) {
	if ptmx == nil || tty == nil {
		return func() {}
	}

	winchCh := make(chan os.Signal, 1)
	signal.Notify(winchCh, syscall.SIGWINCH)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-winchCh:
				if !term.IsTerminal(int(tty.Fd())) {
					continue
				}
				if cols, rows, err := term.GetSize(int(tty.Fd())); err == nil && rows > 0 && cols > 0 {
					_ = pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
				}
			}
		}
	}()

	return func() {
		signal.Stop(winchCh)
		close(done)
	}
}
