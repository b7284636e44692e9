package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/amanignore/internal/config"
	ierrors "github.com/Aman-CERP/amanignore/internal/errors"
	"github.com/Aman-CERP/amanignore/internal/gitignore"
)

// project is the resolved context of one command run.
type project struct {
	root      string
	base      string // relative query paths start here
	cfg       *config.Config
	rulesPath string
	store     *gitignore.Store
	matcher   gitignore.Matcher
}

// resolveRoot returns the --dir root, or the detected project root.
func (g *globalFlags) resolveRoot() (string, error) {
	if g.dir != "" {
		abs, err := filepath.Abs(g.dir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve --dir: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return "", ierrors.New(ierrors.ErrCodeFileNotFound, "project directory not found", err).
				WithDetail("path", abs)
		}
		return abs, nil
	}
	return config.FindProjectRoot(".")
}

// loadConfig loads the layered configuration and applies --rules.
func (g *globalFlags) loadConfig(root string) (*config.Config, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if g.rules != "" {
		abs, err := filepath.Abs(g.rules)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve --rules: %w", err)
		}
		cfg.Rules.File = abs
	}
	return cfg, nil
}

// loadProject resolves the root, loads configuration and compiles the rules.
func (g *globalFlags) loadProject() (*project, error) {
	root, err := g.resolveRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := g.loadConfig(root)
	if err != nil {
		return nil, err
	}

	p := &project{root: root, base: root, cfg: cfg, rulesPath: cfg.RulesPath(root)}
	if g.dir == "" {
		if p.base, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	rs, err := gitignore.LoadFile(p.rulesPath, cfg.Rules.Extra)
	if err != nil {
		return nil, err
	}
	for _, w := range rs.Warnings() {
		slog.Warn("ignore pattern warning",
			slog.String("path", p.rulesPath),
			slog.Int("line", w.Line),
			slog.String("pattern", w.Pattern),
			slog.String("message", w.Message))
	}
	p.store = gitignore.NewStore(rs)

	ev := gitignore.NewEvaluator(cfg.MatcherOptions())
	p.matcher = ev
	if cfg.Cache.Size > 0 {
		cached, err := gitignore.NewCachedEvaluator(ev, cfg.Cache.Size)
		if err != nil {
			return nil, err
		}
		p.matcher = cached
	}

	slog.Debug("project loaded",
		slog.String("root", root),
		slog.String("rules", p.rulesPath),
		slog.Int("rule_count", rs.Len()),
		slog.Int("warnings", len(rs.Warnings())))
	return p, nil
}

// query turns a command-line path into a query relative to the project
// root. Relative arguments are taken from the working directory, like git,
// or from the root when --dir was given (like git -C).
// A trailing slash, forceDir or an existing directory on disk marks the
// query as a directory.
func (p *project) query(arg string, forceDir bool) (gitignore.MatchQuery, error) {
	if arg == "" {
		return gitignore.MatchQuery{}, ierrors.ValidationError("empty path", nil)
	}
	isDir := forceDir || strings.HasSuffix(arg, "/") || strings.HasSuffix(arg, string(filepath.Separator))

	abs := arg
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(p.base, arg)
	}

	rel, err := filepath.Rel(p.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return gitignore.MatchQuery{}, ierrors.New(ierrors.ErrCodeInvalidPath, "path is outside the project", err).
			WithDetail("path", arg).
			WithDetail("root", p.root)
	}
	if rel == "." {
		return gitignore.MatchQuery{}, ierrors.New(ierrors.ErrCodeInvalidPath, "path is the project root", nil).
			WithDetail("path", arg)
	}

	if !isDir {
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			isDir = true
		}
	}
	return gitignore.MatchQuery{Path: filepath.ToSlash(rel), IsDir: isDir}, nil
}

// displayRulesPath returns the rules file relative to the root when it lies
// inside it.
func (p *project) displayRulesPath() string {
	if rel, err := filepath.Rel(p.root, p.rulesPath); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return p.rulesPath
}
