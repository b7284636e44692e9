package scanner

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	ierrors "github.com/Aman-CERP/amanignore/internal/errors"
	"github.com/Aman-CERP/amanignore/internal/gitignore"
)

// Scanner walks directory trees and evaluates each entry with a Matcher.
type Scanner struct {
	m gitignore.Matcher
}

// New creates a Scanner. A nil matcher selects a default Evaluator.
func New(m gitignore.Matcher) *Scanner {
	if m == nil {
		m = gitignore.NewEvaluator(gitignore.Options{})
	}
	return &Scanner{m: m}
}

type job struct {
	path      string
	isDir     bool
	submodule bool
	result    *gitignore.MatchResult
}

// Scan walks opts.Root and streams one Entry per file and directory.
// The .git directory is never entered. With more than one worker, entries
// arrive in no particular order; use Collect for a sorted slice.
// The channel is closed when the walk ends.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) (<-chan Entry, error) {
	if opts.Store == nil {
		return nil, ierrors.ValidationError("scan needs a rule store", nil)
	}
	for _, p := range opts.Include {
		if !doublestar.ValidatePattern(p) {
			return nil, ierrors.New(ierrors.ErrCodeInvalidPattern, "invalid include pattern", nil).
				WithDetail("pattern", p)
		}
	}

	root := opts.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ierrors.IOError("failed to resolve scan root", err).WithDetail("path", root)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, ierrors.New(ierrors.ErrCodeFileNotFound, "scan root not found", err).
			WithDetail("path", absRoot)
	}
	if !info.IsDir() {
		return nil, ierrors.ValidationError("scan root is not a directory", nil).
			WithDetail("path", absRoot)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	submodules, err := SubmodulePaths(absRoot)
	if err != nil {
		slog.Warn("failed to read .gitmodules", slog.String("error", err.Error()))
	}

	rs := opts.Store.Load()
	jobs := make(chan job, workers*10)
	results := make(chan Entry, workers*10)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		return s.walk(gctx, absRoot, rs, opts.SkipIgnoredDirs, submodules, jobs)
	})
	for range workers {
		g.Go(func() error {
			return s.evaluate(gctx, rs, opts.Include, jobs, results)
		})
	}

	go func() {
		defer close(results)
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			select {
			case results <- Entry{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return results, nil
}

func (s *Scanner) walk(ctx context.Context, absRoot string, rs *gitignore.RuleSet, skipIgnored bool, submodules map[string]bool, jobs chan<- job) error {
	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable entries are skipped, the rest of the tree is still judged.
			slog.Debug("skipping unreadable path",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		j := job{path: rel, isDir: d.IsDir()}
		var ret error
		if j.isDir {
			switch {
			case d.Name() == ".git":
				return filepath.SkipDir
			case submodules[rel]:
				j.submodule = true
				ret = filepath.SkipDir
			case skipIgnored:
				res, evalErr := s.m.Evaluate(rs, gitignore.MatchQuery{Path: rel, IsDir: true})
				if evalErr != nil {
					return evalErr
				}
				j.result = &res
				if res.Ignored {
					ret = filepath.SkipDir
				}
			}
		}

		select {
		case jobs <- j:
		case <-ctx.Done():
			return ctx.Err()
		}
		return ret
	})
	if err != nil {
		return ierrors.New(ierrors.ErrCodeWalkFailed, "directory walk failed", err).
			WithDetail("root", absRoot)
	}
	return nil
}

func (s *Scanner) evaluate(ctx context.Context, rs *gitignore.RuleSet, include []string, jobs <-chan job, results chan<- Entry) error {
	for j := range jobs {
		if len(include) > 0 && !matchesAny(j.path, include) {
			continue
		}

		e := Entry{Path: j.path, IsDir: j.isDir, Submodule: j.submodule}
		if j.result != nil {
			e.Result = *j.result
		} else {
			res, err := s.m.Evaluate(rs, gitignore.MatchQuery{Path: j.path, IsDir: j.isDir})
			if err != nil {
				return err
			}
			e.Result = res
		}

		select {
		case results <- e:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func matchesAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

// Collect drains a scan into a slice sorted by path, directories before
// their contents. It returns the walk error, if any, with the entries seen
// before it.
func Collect(entries <-chan Entry) ([]Entry, Stats, error) {
	var (
		out   []Entry
		stats Stats
		err   error
	)
	for e := range entries {
		if e.Err != nil {
			err = e.Err
			continue
		}
		out = append(out, e)
		stats.Add(e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out, stats, err
}
