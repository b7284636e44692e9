package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanignore/internal/output"
	"github.com/Aman-CERP/amanignore/internal/scanner"
)

type scanOptions struct {
	included   bool
	all        bool
	include    []string
	skipDirs   bool
	workers    int
	jsonOutput bool
	verbose    bool
}

func newScanCmd(g *globalFlags) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Walk the project and list ignored paths",
		Long: `Walk the project tree and judge every file and directory against the
rules. The .git directory is never entered and submodules listed in
.gitmodules are reported but not walked.

By default the ignored paths are listed. Use --included for the paths that
are kept, or --all for both.`,
		Example: `  # Everything the rules ignore
  amanignore scan

  # Go files that are not ignored
  amanignore scan --included --include '**/*.go'

  # Stop at ignored directories, like git
  amanignore scan --skip-ignored-dirs`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return jsonErrors(opts.jsonOutput, runScan(cmd, g, opts))
		},
	}

	cmd.Flags().BoolVar(&opts.included, "included", false, "List paths that are not ignored")
	cmd.Flags().BoolVar(&opts.all, "all", false, "List every path with its verdict")
	cmd.Flags().StringSliceVar(&opts.include, "include", nil, "Only report paths matching these globs (overrides scan.include)")
	cmd.Flags().BoolVar(&opts.skipDirs, "skip-ignored-dirs", false, "Do not descend into ignored directories")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent evaluators (default: scan.workers)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output entries as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show the deciding pattern")

	return cmd
}

type scanEntryJSON struct {
	Path      string `json:"path"`
	IsDir     bool   `json:"is_dir"`
	Ignored   bool   `json:"ignored"`
	Line      int    `json:"line,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Negated   bool   `json:"negated,omitempty"`
	Parent    string `json:"parent,omitempty"`
	Submodule bool   `json:"submodule,omitempty"`
}

func runScan(cmd *cobra.Command, g *globalFlags, opts scanOptions) error {
	p, err := g.loadProject()
	if err != nil {
		return err
	}

	so := scanner.ScanOptions{
		Root:            p.root,
		Store:           p.store,
		Workers:         p.cfg.Scan.Workers,
		Include:         p.cfg.Scan.Include,
		SkipIgnoredDirs: p.cfg.Scan.SkipIgnoredDirs || opts.skipDirs,
	}
	if cmd.Flags().Changed("include") {
		so.Include = opts.include
	}
	if opts.workers > 0 {
		so.Workers = opts.workers
	}

	start := time.Now()
	ch, err := scanner.New(p.matcher).Scan(cmd.Context(), so)
	if err != nil {
		return err
	}
	entries, stats, err := scanner.Collect(ch)
	if err != nil {
		return err
	}

	var shown []scanner.Entry
	for _, e := range entries {
		if opts.all || e.Result.Ignored != opts.included {
			shown = append(shown, e)
		}
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, e := range shown {
			err := enc.Encode(scanEntryJSON{
				Path:      e.Path,
				IsDir:     e.IsDir,
				Ignored:   e.Result.Ignored,
				Line:      e.Result.Line,
				Pattern:   e.Result.Pattern,
				Negated:   e.Result.Negated,
				Parent:    e.Result.Parent,
				Submodule: e.Submodule,
			})
			if err != nil {
				return err
			}
		}
		printScanSummary(cmd, stats, time.Since(start))
		return nil
	}

	out := output.New(cmd.OutOrStdout())
	for _, e := range shown {
		path := e.Path
		if e.IsDir {
			path += "/"
		}
		pattern := ""
		if opts.verbose {
			pattern = e.Result.Pattern
		}
		if opts.all {
			out.Verdict(path, e.Result.Ignored, pattern)
		} else if pattern != "" {
			_, _ = fmt.Fprintf(out.Out(), "%s\t%s\n", path, pattern)
		} else {
			_, _ = fmt.Fprintln(out.Out(), path)
		}
	}

	printScanSummary(cmd, stats, time.Since(start))
	return nil
}

func printScanSummary(cmd *cobra.Command, stats scanner.Stats, took time.Duration) {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%d files, %d directories, %d ignored (%s)\n",
		stats.Files, stats.Dirs, stats.Ignored, took.Round(time.Millisecond))
}
