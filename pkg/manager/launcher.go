package manager

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/creack/pty"
	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// Launcher prepares the external ssh/telnet process for a target. The returned
// command is run in the foreground through tea.Exec, so the UI is suspended
// until the child exits.
type Launcher interface {
	Command(t Target) (tea.ExecCommand, error)
}

// ErrProgramNotFound is returned when ssh/telnet is not on PATH.
var ErrProgramNotFound = errors.New("program not found in PATH")

// ConnectionPrograms lists the external programs a Launcher may spawn.
var ConnectionPrograms = []string{"ssh", "telnet"}

// MissingPrograms returns the entries of ConnectionPrograms absent from PATH.
func MissingPrograms() []string {
	var missing []string
	for _, p := range ConnectionPrograms {
		if _, err := exec.LookPath(p); err != nil {
			missing = append(missing, p)
		}
	}
	return missing
}

func lookupProgram(argv []string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("empty command")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return "", fmt.Errorf("%s: %w", argv[0], ErrProgramNotFound)
	}
	return path, nil
}

// ExecLauncher runs ssh/telnet directly on the terminal.
type ExecLauncher struct {
	Logger *log.Logger
}

// NewExecLauncher returns an ExecLauncher. A nil logger discards output.
func NewExecLauncher(logger *log.Logger) *ExecLauncher {
	if logger == nil {
		logger = NewDiscardLogger()
	}
	return &ExecLauncher{Logger: logger}
}

// Command implements Launcher.
func (l *ExecLauncher) Command(t Target) (tea.ExecCommand, error) {
	argv := t.Argv()
	path, err := lookupProgram(argv)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(path, argv[1:]...)
	cmd.Args[0] = argv[0]
	l.Logger.Info("launching", "profile", t.Name, "cmd", t.CommandLine())
	return &processCommand{cmd: cmd}, nil
}

// processCommand adapts *exec.Cmd to tea.ExecCommand.
type processCommand struct {
	cmd *exec.Cmd
}

func (c *processCommand) SetStdin(r io.Reader)  { c.cmd.Stdin = r }
func (c *processCommand) SetStdout(w io.Writer) { c.cmd.Stdout = w }
func (c *processCommand) SetStderr(w io.Writer) { c.cmd.Stderr = w }

func (c *processCommand) Run() error {
	flushTTYInput()
	return c.cmd.Run()
}

// RecordingLauncher runs ssh/telnet under a PTY and tees everything the child
// prints into a daily transcript file.
type RecordingLauncher struct {
	Options TranscriptOptions
	Logger  *log.Logger

	// now is overridable in tests.
	now func() time.Time
}

// NewRecordingLauncher returns a RecordingLauncher writing below dir (empty
// selects <config dir>/transcripts).
func NewRecordingLauncher(dir string, logger *log.Logger) *RecordingLauncher {
	if logger == nil {
		logger = NewDiscardLogger()
	}
	return &RecordingLauncher{
		Options: TranscriptOptions{BaseDir: dir},
		Logger:  logger,
		now:     time.Now,
	}
}

// Command implements Launcher.
func (l *RecordingLauncher) Command(t Target) (tea.ExecCommand, error) {
	argv := t.Argv()
	path, err := lookupProgram(argv)
	if err != nil {
		return nil, err
	}
	now := time.Now
	if l.now != nil {
		now = l.now
	}
	transcriptPath, err := DailyTranscriptPath(t.Name, now(), l.Options)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(path, argv[1:]...)
	cmd.Args[0] = argv[0]
	l.Logger.Info("launching (recorded)", "profile", t.Name, "cmd", t.CommandLine(), "transcript", transcriptPath)
	return &ptyCommand{
		cmd:     cmd,
		target:  t,
		opts:    l.Options,
		now:     now,
		logger:  l.Logger,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		started: now(),
	}, nil
}

var errPTYStart = errors.New("start pty")

type ptyCommand struct {
	cmd     *exec.Cmd
	target  Target
	opts    TranscriptOptions
	now     func() time.Time
	logger  *log.Logger
	started time.Time

	stdin  io.Reader
	stdout io.Writer
}

func (c *ptyCommand) SetStdin(r io.Reader) { c.stdin = r }

func (c *ptyCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr is a no-op: the child's stderr is the PTY.
func (c *ptyCommand) SetStderr(io.Writer) {}

func (c *ptyCommand) Run() error {
	transcript, err := OpenDailyTranscript(c.target, c.started, c.opts)
	if err != nil {
		return err
	}
	defer func() { _ = transcript.Close() }()

	flushTTYInput()

	ptmx, err := pty.Start(c.cmd)
	if err != nil {
		return fmt.Errorf("%w: %v", errPTYStart, err)
	}
	defer func() { _ = ptmx.Close() }()

	if f, ok := c.stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, rows, sizeErr := term.GetSize(int(f.Fd())); sizeErr == nil && rows > 0 && cols > 0 {
			_ = pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
		}
		stop := startPTYResizeWatcher(ptmx, f)
		defer stop()
	}

	// The stdin pump must not outlive the child, or it would swallow the first
	// key meant for the UI. It only runs when it can be cancelled.
	switch in := c.stdin.(type) {
	case nil:
	case *os.File:
		if term.IsTerminal(int(in.Fd())) {
			if oldState, rawErr := term.MakeRaw(int(in.Fd())); rawErr == nil {
				defer func() { _ = term.Restore(int(in.Fd()), oldState) }()
			}
		}
		cr, crErr := cancelreader.NewReader(in)
		if crErr != nil {
			c.logger.Debug("stdin not forwarded", "profile", c.target.Name, "err", crErr)
			break
		}
		defer func() { _ = cr.Close() }()
		defer cr.Cancel()
		go func() { _, _ = io.Copy(ptmx, cr) }()
	default:
		c.logger.Debug("stdin not forwarded: not a file", "profile", c.target.Name)
	}

	out := io.Writer(transcript)
	if c.stdout != nil {
		out = io.MultiWriter(c.stdout, transcript)
	}
	// Reading the master ends with EIO once the child side closes.
	_, _ = io.Copy(out, ptmx)

	waitErr := c.cmd.Wait()
	fmt.Fprintf(transcript, "\n=== exit %s after %s ===\n", exitSummary(waitErr), c.now().Sub(c.started).Round(time.Second))
	if waitErr != nil {
		c.logger.Warn("session ended with error", "profile", c.target.Name, "err", waitErr)
	} else {
		c.logger.Info("session ended", "profile", c.target.Name)
	}
	return waitErr
}

func exitSummary(err error) string {
	if err == nil {
		return "0"
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return fmt.Sprintf("%d", ee.ExitCode())
	}
	return err.Error()
}
