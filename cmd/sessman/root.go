package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"sessman/pkg/manager"
)

// Version is set by ldflags at build time.
var Version = "dev"

// cliEnv carries the process streams and the pieces tests replace.
type cliEnv struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// launcher overrides the launcher chosen from flags.
	launcher manager.Launcher
	// runTUI defaults to manager.RunTUI.
	runTUI func(*manager.Store, manager.UIOptions) error
}

func defaultEnv() *cliEnv {
	return &cliEnv{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		runTUI: manager.RunTUI,
	}
}

type rootOptions struct {
	configPath string
	list       bool
	connect    int
	remove     string
	recordDir  string
	logFile    string
	verbose    bool
}

func newRootCmd(env *cliEnv) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "sessman",
		Short:         "Store, browse and launch SSH/Telnet sessions",
		Long:          "sessman keeps named SSH and Telnet sessions in groups and launches them from a terminal UI.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := manager.ResolveConfigPath(opts.configPath)
			if err != nil {
				return err
			}
			switch {
			case opts.list:
				return runList(env, opts, path)
			case cmd.Flags().Changed("connect"):
				return runConnect(env, opts, path)
			case cmd.Flags().Changed("remove"):
				return runRemove(env, opts, path)
			}
			return runInteractive(env, opts, path)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "user-config", "u", "", "Path to the sessions file (.yaml, or .json)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	f := root.Flags()
	f.BoolVarP(&opts.list, "list", "l", false, "List sessions with their index and exit")
	f.IntVarP(&opts.connect, "connect", "c", -1, "Connect to the session with this index (see --list)")
	f.StringVarP(&opts.remove, "remove", "r", "", "Remove every session group with this name")
	f.StringVar(&opts.recordDir, "record-dir", "", "Record session output into daily transcripts under this directory")
	f.StringVar(&opts.logFile, "log-file", "", "Log file used while the UI is running (default <config dir>/sessman.log)")
	root.MarkFlagsMutuallyExclusive("list", "connect", "remove")

	root.AddCommand(newVersionCmd(env), newImportSSHCmd(env, opts), newTranscriptsCmd(env))

	root.SetIn(env.stdin)
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)
	return root
}

func newVersionCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(env.stdout, "sessman version %s\n", Version)
		},
	}
}

func newImportSSHCmd(env *cliEnv, root *rootOptions) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "import-ssh [PATH...]",
		Short: "Import Host aliases from OpenSSH client config as a new session group",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := manager.NewLogger(env.stderr, root.verbose)
			path, err := manager.ResolveConfigPath(root.configPath)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				def, err := manager.DefaultSSHConfigPath()
				if err != nil {
					return err
				}
				args = []string{def}
			}
			entries, err := manager.LoadSSHConfig(args...)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no literal Host aliases found in %s", strings.Join(args, ", "))
			}

			store := manager.NewStore(path, logger)
			doc := store.Load()
			g := manager.ImportSSHConfigGroup(group, entries)
			doc.AppendGroup(g)
			if err := store.Save(doc); err != nil {
				return err
			}
			logger.Info("imported ssh config", "group", g.Name, "sessions", len(g.Profiles), "path", path)
			fmt.Fprintf(env.stdout, "Imported %d sessions into group %q\n", len(g.Profiles), g.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", manager.DefaultImportGroupName, "Name of the session group to create")
	return cmd
}

func newTranscriptsCmd(env *cliEnv) *cobra.Command {
	var recordDir string
	cmd := &cobra.Command{
		Use:   "transcripts NAME",
		Short: "List the recorded transcripts of a session, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := manager.ListTranscripts(args[0], manager.TranscriptOptions{BaseDir: recordDir})
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Fprintf(env.stderr, "no transcripts for %q\n", args[0])
				return nil
			}
			for _, p := range paths {
				fmt.Fprintln(env.stdout, p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&recordDir, "record-dir", "", "Transcript directory (default <config dir>/transcripts)")
	return cmd
}

func runList(env *cliEnv, opts *rootOptions, path string) error {
	store := manager.NewStore(path, manager.NewLogger(env.stderr, opts.verbose))
	doc := store.Load()
	return manager.WriteSessionList(env.stdout, doc, manager.LoadTheme(doc.Colors))
}

func runConnect(env *cliEnv, opts *rootOptions, path string) error {
	logger := manager.NewLogger(env.stderr, opts.verbose)
	doc := manager.NewStore(path, logger).Load()
	p, ok := doc.ProfileAtSessionIndex(opts.connect)
	if !ok {
		return fmt.Errorf("%w: %d", manager.ErrInvalidIndex, opts.connect)
	}
	warnMissingPrograms(logger)
	return manager.ConnectForeground(launcherFor(env, opts, logger), p, env.stdin, env.stdout, env.stderr)
}

func runRemove(env *cliEnv, opts *rootOptions, path string) error {
	logger := manager.NewLogger(env.stderr, opts.verbose)
	store := manager.NewStore(path, logger)
	doc := store.Load()
	n := doc.RemoveGroupsNamed(opts.remove)
	if err := store.Save(doc); err != nil {
		return err
	}
	logger.Info("removed groups", "name", strings.TrimSpace(opts.remove), "count", n)
	fmt.Fprintf(env.stdout, "Removed %d session group(s) named %q\n", n, strings.TrimSpace(opts.remove))
	return nil
}

func runInteractive(env *cliEnv, opts *rootOptions, path string) error {
	logger := manager.NewDiscardLogger()
	if f, err := manager.OpenLogFile(opts.logFile); err == nil {
		defer f.Close()
		logger = manager.NewLogger(f, opts.verbose)
	}
	logger.Info("starting", "version", Version, "config", path)

	return env.runTUI(manager.NewStore(path, logger), manager.UIOptions{
		Launcher: launcherFor(env, opts, logger),
		Logger:   logger,
	})
}

func launcherFor(env *cliEnv, opts *rootOptions, logger *log.Logger) manager.Launcher {
	if env.launcher != nil {
		return env.launcher
	}
	if strings.TrimSpace(opts.recordDir) != "" {
		return manager.NewRecordingLauncher(opts.recordDir, logger)
	}
	return manager.NewExecLauncher(logger)
}

func warnMissingPrograms(logger *log.Logger) {
	if missing := manager.MissingPrograms(); len(missing) > 0 {
		logger.Warn("connection programs missing from PATH", "programs", missing)
	}
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, env *cliEnv) int {
	root := newRootCmd(env)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if errors.Is(err, manager.ErrInvalidIndex) {
			fmt.Fprintln(env.stderr, "Invalid index!")
			return 2
		}
		var ee interface{ ExitCode() int }
		if errors.As(err, &ee) && ee.ExitCode() > 0 {
			return ee.ExitCode()
		}
		fmt.Fprintf(env.stderr, "sessman: %v\n", err)
		return 1
	}
	return 0
}
