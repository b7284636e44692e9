package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	ierrors "github.com/Aman-CERP/amanignore/internal/errors"
	"github.com/Aman-CERP/amanignore/internal/gitignore"
)

type checkOptions struct {
	directory   bool
	verbose     bool
	stdin       bool
	nonMatching bool
	quiet       bool
	jsonOutput  bool
}

func newCheckCmd(g *globalFlags) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report which paths are ignored",
		Long: `Report which of the given paths are ignored by the project's rules.

Paths are relative to the working directory and must lie inside the project.
A path is judged as a directory when it ends with "/", exists as a directory,
or --directory is given.

By default only ignored paths are printed. Exit status is 0 when at least one
path is ignored and 1 otherwise, like 'git check-ignore'. Paths that cannot be
judged (outside the project, or the project root itself) are reported on
stderr after the others are checked, and the exit status is then 2.

With --json every path produces one JSON object per line, in input order;
paths that cannot be judged carry an "error" object instead of a verdict.`,
		Example: `  # Is the build directory ignored?
  amanignore check build/

  # Show the deciding rule
  amanignore check -v debug.log src/main.go

  # Check many paths
  git ls-files --others | amanignore check --stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return jsonErrors(opts.jsonOutput, runCheck(cmd, g, opts, args))
		},
	}

	cmd.Flags().BoolVarP(&opts.directory, "directory", "d", false, "Treat every path as a directory")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show the deciding rule as source:line:pattern")
	cmd.Flags().BoolVar(&opts.stdin, "stdin", false, "Read paths from stdin, one per line")
	cmd.Flags().BoolVarP(&opts.nonMatching, "non-matching", "n", false, "Also print paths no rule matched")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Print nothing; only set the exit status")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output one JSON object per path")

	return cmd
}

type checkResult struct {
	Path      string `json:"path"`
	IsDir     bool   `json:"is_dir"`
	Ignored   bool   `json:"ignored"`
	Matched   bool   `json:"matched"`
	Source    string `json:"source,omitempty"`
	Line      int    `json:"line,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Negated   bool   `json:"negated,omitempty"`
	Parent    string `json:"parent,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`

	Error *ierrors.Record `json:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, g *globalFlags, opts checkOptions, args []string) error {
	if opts.stdin {
		lines, err := readPaths(cmd.InOrStdin())
		if err != nil {
			return err
		}
		args = append(args, lines...)
	}
	if len(args) == 0 {
		return ierrors.ValidationError("no paths given", nil).
			WithSuggestion("Pass paths as arguments or use --stdin")
	}

	p, err := g.loadProject()
	if err != nil {
		return err
	}

	// results follows the argument order; slots maps each query back to it.
	results := make([]checkResult, len(args))
	queries := make([]gitignore.MatchQuery, 0, len(args))
	slots := make([]int, 0, len(args))
	failed := 0
	for i, arg := range args {
		q, err := p.query(arg, opts.directory)
		if err != nil {
			failed++
			rec := ierrors.ToRecord(err)
			results[i] = checkResult{Path: arg, Error: rec}
			slog.Warn("cannot check path", slog.String("path", arg), ierrors.LogAttr(err))
			if !opts.jsonOutput {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %s (%s)\n", arg, rec.Message, rec.Code)
			}
			continue
		}
		queries = append(queries, q)
		slots = append(slots, i)
	}

	rs := p.store.Load()
	verdicts, err := gitignore.EvaluateAll(cmd.Context(), p.matcher, rs, queries, p.cfg.Scan.Workers)
	if err != nil {
		return err
	}

	source := p.displayRulesPath()
	anyIgnored := false
	for j, q := range queries {
		v := verdicts[j]
		i := slots[j]
		results[i] = checkResult{
			Path:      q.Path,
			IsDir:     q.IsDir,
			Ignored:   v.Ignored,
			Matched:   v.Matched,
			Line:      v.Line,
			Pattern:   v.Pattern,
			Negated:   v.Negated,
			Parent:    v.Parent,
			Truncated: v.Truncated,
		}
		if v.Matched {
			results[i].Source = source
		}
		if v.Truncated {
			slog.Warn("match budget exhausted", slog.String("path", q.Path))
		}
		anyIgnored = anyIgnored || v.Ignored
	}

	if !opts.quiet {
		if err := printCheck(cmd.OutOrStdout(), opts, results); err != nil {
			return err
		}
	}

	if failed > 0 {
		return &ExitError{Code: 2}
	}
	if !anyIgnored {
		return &ExitError{Code: 1}
	}
	return nil
}

func printCheck(w io.Writer, opts checkOptions, results []checkResult) error {
	if opts.jsonOutput {
		enc := json.NewEncoder(w)
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range results {
		if r.Error != nil {
			continue
		}
		show := r.Ignored || (opts.verbose && r.Matched) || opts.nonMatching
		if !show {
			continue
		}
		if !opts.verbose {
			_, _ = fmt.Fprintln(w, r.Path)
			continue
		}
		if !r.Matched {
			_, _ = fmt.Fprintf(w, "::\t%s\n", r.Path)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s:%d:%s\t%s\n", r.Source, r.Line, r.Pattern, r.Path)
	}
	return nil
}

// readPaths reads one path per line, skipping blank lines.
func readPaths(r io.Reader) ([]string, error) {
	var paths []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read paths from stdin: %w", err)
	}
	return paths, nil
}
