package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"clickguardian/internal/logging"
	"clickguardian/internal/platform"
	"clickguardian/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	appName = "ClickGuardian"
	appID   = "com.clickguardian.app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	exitOK        = 0
	exitFailure   = 1
	exitHookSetup = 2
)

type options struct {
	statePath   string
	historyPath string
	logFile     string
	verbose     bool

	logger *zap.Logger
}

func main() {
	os.Exit(exitCode(newRootCommand().Execute()))
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "clickguardian",
		Short: "Monthly mouse click limiter",
		Long: `ClickGuardian counts mouse clicks system-wide and, once the monthly limit is
reached, blocks further clicks until the limit dialog is answered.

Run without arguments to start the tray application.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolvePaths(cmd); err != nil {
				return err
			}
			logOptions := logging.Options{Verbose: opts.verbose, Console: true}
			if cmd == cmd.Root() {
				logOptions = logging.Options{Verbose: opts.verbose, File: opts.logFile}
			}
			logger, err := logging.New(logOptions)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.statePath, "state", storage.DefaultStateFile, "state file (relative paths resolve beside the executable)")
	flags.StringVar(&opts.historyPath, "history", storage.DefaultJournalFile, "episode history database")
	flags.StringVar(&opts.logFile, "log-file", logging.DefaultFile, "log file for the tray application")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newStatusCommand(opts),
		newHistoryCommand(opts),
		newResetCommand(opts),
		newVersionCommand(),
	)
	return root
}

// resolvePaths anchors default paths to the executable directory and paths given on the
// command line to the current directory.
func (opts *options) resolvePaths(cmd *cobra.Command) error {
	execDir := ""
	if execPath, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
			execPath = resolved
		}
		execDir = filepath.Dir(execPath)
	}

	for _, entry := range []struct {
		flag  string
		value *string
	}{
		{"state", &opts.statePath},
		{"history", &opts.historyPath},
		{"log-file", &opts.logFile},
	} {
		if *entry.value == "" || filepath.IsAbs(*entry.value) {
			continue
		}
		if cmd.Flags().Changed(entry.flag) || execDir == "" {
			absolute, err := filepath.Abs(*entry.value)
			if err != nil {
				return fmt.Errorf("resolve --%s: %w", entry.flag, err)
			}
			*entry.value = absolute
			continue
		}
		*entry.value = filepath.Join(execDir, *entry.value)
	}
	return nil
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, platform.ErrAlreadyRunning):
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return exitOK
	case errors.Is(err, platform.ErrHookSetup), errors.Is(err, platform.ErrHookUnsupported):
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return exitHookSetup
	default:
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return exitFailure
	}
}
