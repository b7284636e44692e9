package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanignore/internal/logging"
	"github.com/Aman-CERP/amanignore/internal/output"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	grep    string
	noColor bool
	file    string
}

func newLogsCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View amanignore logs",
		Long: `Show the last lines of the amanignore log file (~/.amanignore/logs/amanignore.log).
Use -f to follow new entries, like 'tail -f'.`,
		Example: `  amanignore logs
  amanignore logs -n 100 --level warn
  amanignore logs -f --grep reload`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.grep, "grep", "", "Only show lines matching this regular expression")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.file, "file", "", "Log file to read (default: the amanignore log)")

	return cmd
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	if opts.level != "" && !logging.ValidLevel(opts.level) {
		return fmt.Errorf("invalid level %q (want debug, info, warn or error)", opts.level)
	}

	path, err := logging.FindLogFile(opts.file)
	if err != nil {
		return err
	}

	var pattern *regexp.Regexp
	if opts.grep != "" {
		if pattern, err = regexp.Compile(opts.grep); err != nil {
			return fmt.Errorf("invalid --grep pattern: %w", err)
		}
	}

	w := cmd.OutOrStdout()
	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: opts.noColor || !output.ColorEnabled(w),
	}, w)

	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return err
	}
	viewer.Print(entries)

	if !opts.follow {
		return nil
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return followLogs(ctx, viewer, path)
}

func followLogs(ctx context.Context, viewer *logging.Viewer, path string) error {
	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)
	go func() { errCh <- viewer.Follow(ctx, path, entries) }()

	for {
		select {
		case e := <-entries:
			viewer.Print([]logging.LogEntry{e})
		case err := <-errCh:
			return err
		}
	}
}
