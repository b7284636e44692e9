// Package cmd provides the CLI commands for amanignore.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	ierrors "github.com/Aman-CERP/amanignore/internal/errors"
	"github.com/Aman-CERP/amanignore/internal/logging"
	"github.com/Aman-CERP/amanignore/pkg/version"
)

// globalFlags are the persistent flags shared by all subcommands.
type globalFlags struct {
	debug bool
	dir   string
	rules string

	loggingCleanup func()
}

// ExitError carries a process exit status without an error message, the
// way `git check-ignore` exits 1 when nothing is ignored.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// jsonFailure marks an error returned by a command running with --json.
// Main reports it on stderr as a single JSON object instead of text.
type jsonFailure struct {
	err error
}

func (e *jsonFailure) Error() string { return e.err.Error() }
func (e *jsonFailure) Unwrap() error { return e.err }

// jsonErrors wraps err for JSON reporting when enabled. Exit statuses pass
// through untouched.
func jsonErrors(enabled bool, err error) error {
	if !enabled || err == nil {
		return err
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &jsonFailure{err: err}
}

// NewRootCmd creates the root command for the amanignore CLI.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "amanignore",
		Short: "Evaluate gitignore-style rules against paths",
		Long: `amanignore compiles a .gitignore-style rule file and answers, for any
path, whether it is ignored and which rule decided.

Rules follow git's semantics: the last matching rule wins, "!" re-includes,
a trailing "/" matches directories only, a slash anywhere else anchors the
pattern to the rule file's directory, and "**" spans directories.

The project root is the nearest ancestor containing .git or .amanignore.yaml,
or the directory given with --dir.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return g.startLogging()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			g.stopLogging()
			return nil
		},
	}

	cmd.SetVersionTemplate("amanignore version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging to stderr and ~/.amanignore/logs/")
	cmd.PersistentFlags().StringVar(&g.dir, "dir", "", "Project root (default: detected from the working directory)")
	cmd.PersistentFlags().StringVar(&g.rules, "rules", "", "Ignore file to use instead of the configured one")

	cmd.AddCommand(newCheckCmd(g))
	cmd.AddCommand(newRulesCmd(g))
	cmd.AddCommand(newScanCmd(g))
	cmd.AddCommand(newWatchCmd(g))
	cmd.AddCommand(newConfigCmd(g))
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging installs the slog default. Without --debug a log file that
// cannot be opened only disables file logging.
func (g *globalFlags) startLogging() error {
	cfg := logging.DefaultConfig()
	if g.debug {
		cfg = logging.DebugConfig()
	}

	cleanup, err := logging.SetupDefault(cfg)
	if err != nil {
		if g.debug {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		cfg.FilePath = ""
		if cleanup, err = logging.SetupDefault(cfg); err != nil {
			return err
		}
	}
	g.loggingCleanup = cleanup

	if g.debug {
		slog.Debug("debug logging enabled",
			slog.String("log_file", cfg.FilePath),
			slog.String("version", version.Version))
	}
	return nil
}

func (g *globalFlags) stopLogging() {
	if g.loggingCleanup != nil {
		g.loggingCleanup()
		g.loggingCleanup = nil
	}
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// Main runs the CLI and returns the process exit status: 0 on success, the
// code of an ExitError, or 2 for any other error. Errors are written to
// stderr, as JSON for commands run with --json.
func Main(stderr io.Writer) int {
	err := Execute()
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var jf *jsonFailure
	if errors.As(err, &jf) {
		if data, jsonErr := ierrors.FormatJSON(jf.err); jsonErr == nil {
			_, _ = fmt.Fprintf(stderr, "%s\n", data)
			return 2
		}
	}

	var ie *ierrors.IgnoreError
	if errors.As(err, &ie) {
		_, _ = fmt.Fprint(stderr, ierrors.FormatForCLI(err))
	} else {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 2
}
