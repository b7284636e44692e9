package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanignore/internal/gitignore"
	"github.com/Aman-CERP/amanignore/internal/output"
	"github.com/Aman-CERP/amanignore/internal/watcher"
)

type watchOptions struct {
	poll      bool
	directory bool
}

func newWatchCmd(g *globalFlags) *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Recompile the rules whenever the ignore file changes",
		Long: `Watch the project's ignore file and recompile it after every change.
Each reload prints the patterns that were added and removed. When paths are
given, their verdicts are printed after every reload.

Deleting the ignore file leaves an empty rule set; recreating it loads the
new rules. Press Ctrl+C to stop.`,
		Example: `  amanignore watch
  amanignore watch build/ debug.log`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runWatch(ctx, cmd, g, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.poll, "poll", false, "Poll the file instead of using filesystem notifications")
	cmd.Flags().BoolVarP(&opts.directory, "directory", "d", false, "Treat every path as a directory")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, g *globalFlags, opts watchOptions, args []string) error {
	p, err := g.loadProject()
	if err != nil {
		return err
	}

	queries := make([]gitignore.MatchQuery, 0, len(args))
	for _, arg := range args {
		q, err := p.query(arg, opts.directory)
		if err != nil {
			return err
		}
		queries = append(queries, q)
	}

	r, err := watcher.NewReloader(p.rulesPath, p.store, watcher.Options{
		DebounceWindow: p.cfg.DebounceDuration(),
		ForcePolling:   opts.poll,
		Extra:          p.cfg.Rules.Extra,
	})
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	out.Statusf(">", "Watching %s (%s, %d rules)", p.displayRulesPath(), r.WatcherType(), p.store.Load().Len())
	printVerdicts(out, p, queries)

	errCh := make(chan error, 1)
	go func() { errCh <- r.Start(ctx) }()

	reloads := r.Reloads()
	watchErrs := r.Errors()
	for {
		select {
		case ev, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			printReload(out, ev)
			printVerdicts(out, p, queries)
		case werr, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			out.Warningf("%v", werr)
		case err := <-errCh:
			if errors.Is(err, context.Canceled) {
				slog.Debug("watch stopped")
				return nil
			}
			return err
		}
	}
}

func printReload(out *output.Writer, ev watcher.ReloadEvent) {
	if ev.Err != nil {
		out.Errorf("reload failed, keeping previous rules: %v", ev.Err)
		return
	}
	out.Successf("Reloaded after %s: %d rules (+%d -%d)",
		ev.Trigger, ev.Rules, len(ev.Added), len(ev.Removed))
	for _, a := range ev.Added {
		out.Status("", "+ "+a)
	}
	for _, r := range ev.Removed {
		out.Status("", "- "+r)
	}
	for _, w := range ev.Warnings {
		out.Warning(w)
	}
}

// printVerdicts judges queries against the current rules. The matcher may be
// a cache; it keys on the rule set generation, so reloads never serve stale
// verdicts.
func printVerdicts(out *output.Writer, p *project, queries []gitignore.MatchQuery) {
	rs := p.store.Load()
	for _, q := range queries {
		res, err := p.matcher.Evaluate(rs, q)
		if err != nil {
			out.Errorf("%s: %v", q.Path, err)
			continue
		}
		path := q.Path
		if q.IsDir {
			path += "/"
		}
		pattern := res.Pattern
		if pattern != "" {
			pattern = fmt.Sprintf("%s:%d", pattern, res.Line)
		}
		out.Verdict(path, res.Ignored, pattern)
	}
}
