package gitignore

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxBacktrack is the default per-rule step budget for wildcard
// backtracking. It bounds pathological patterns such as "*a*a*a*a*b".
// Each rule gets a fresh budget, so the size of a rule file never matters.
const DefaultMaxBacktrack = 10000

// Options configures an Evaluator.
type Options struct {
	// ShortCircuitParents makes a path ignored when any of its ancestor
	// directories is ignored, whatever its own rules say. This is what git
	// does when it stops descending into an excluded directory: a negation
	// cannot re-include a file whose parent is excluded.
	// Default: false (each path is judged by its own matches only).
	ShortCircuitParents bool

	// CaseInsensitive folds ASCII letters in literals, classes and paths.
	// Default: false, matching git's default core.ignoreCase.
	CaseInsensitive bool

	// MaxBacktrack limits wildcard backtracking for one rule against one
	// path. A rule that runs out is treated as non-matching; the remaining
	// rules are still applied.
	// 0 selects DefaultMaxBacktrack, a negative value disables the limit.
	MaxBacktrack int
}

// MatchQuery is a path to judge. Path is relative to the rule file's
// directory with forward slashes.
type MatchQuery struct {
	Path  string
	IsDir bool
}

// MatchResult is the verdict for one query.
type MatchResult struct {
	// Ignored is the final verdict, after negations.
	Ignored bool

	// Matched is false when no rule matched; the path is then not ignored.
	Matched bool

	// RuleIndex is the SourceOrder of the deciding rule, -1 when !Matched.
	RuleIndex int

	// Line and Pattern describe the deciding rule.
	Line    int
	Pattern string

	// Negated is true when the deciding rule re-included the path.
	Negated bool

	// Parent is the ancestor directory that decided the verdict when
	// ShortCircuitParents applied. Empty otherwise.
	Parent string

	// Truncated is set when at least one rule ran out of backtrack budget
	// and was treated as non-matching.
	Truncated bool
}

func noMatch() MatchResult {
	return MatchResult{RuleIndex: -1}
}

// Evaluator judges paths against RuleSets. It holds no per-RuleSet state,
// so one Evaluator can serve any number of RuleSets and goroutines.
type Evaluator struct {
	opts Options
}

// NewEvaluator creates an Evaluator with the given options.
func NewEvaluator(opts Options) *Evaluator {
	if opts.MaxBacktrack == 0 {
		opts.MaxBacktrack = DefaultMaxBacktrack
	}
	return &Evaluator{opts: opts}
}

// Options returns the evaluator's effective options.
func (e *Evaluator) Options() Options {
	return e.opts
}

var defaultEvaluator = NewEvaluator(Options{})

// IsIgnored reports whether path is ignored by rs using default options.
func IsIgnored(rs *RuleSet, path string, isDir bool) (bool, error) {
	return defaultEvaluator.IsIgnored(rs, path, isDir)
}

// Evaluate returns the full verdict for q against rs using default options.
func Evaluate(rs *RuleSet, q MatchQuery) (MatchResult, error) {
	return defaultEvaluator.Evaluate(rs, q)
}

// IsIgnored reports whether path is ignored by rs.
func (e *Evaluator) IsIgnored(rs *RuleSet, path string, isDir bool) (bool, error) {
	res, err := e.Evaluate(rs, MatchQuery{Path: path, IsDir: isDir})
	return res.Ignored, err
}

// Evaluate returns the verdict for q against rs. Rules are applied in
// source order and the last matching rule decides.
// It fails with ErrInvalidPath for empty, absolute or ".."-containing paths.
func (e *Evaluator) Evaluate(rs *RuleSet, q MatchQuery) (MatchResult, error) {
	segments, err := splitQuery(q.Path)
	if err != nil {
		return noMatch(), err
	}

	if e.opts.ShortCircuitParents {
		for i := 1; i < len(segments); i++ {
			res := e.evaluate(rs, segments[:i], true)
			if res.Ignored {
				res.Parent = strings.Join(segments[:i], "/")
				return res, nil
			}
		}
	}

	return e.evaluate(rs, segments, q.IsDir), nil
}

func (e *Evaluator) evaluate(rs *RuleSet, segments []string, isDir bool) MatchResult {
	res := noMatch()
	if rs == nil {
		return res
	}

	for i := range rs.rules {
		r := &rs.rules[i]
		if r.DirectoryOnly && !isDir {
			continue
		}
		m := matcher{fold: e.opts.CaseInsensitive, budget: e.opts.MaxBacktrack}
		if !m.matchRule(r, segments) {
			if m.exhausted() {
				res.Truncated = true
			}
			continue
		}
		res.Matched = true
		res.Ignored = !r.Negated
		res.Negated = r.Negated
		res.RuleIndex = r.SourceOrder
		res.Line = r.Line
		res.Pattern = r.Pattern
	}
	return res
}

// matcher carries the state of matching one rule against one path.
type matcher struct {
	fold   bool
	budget int // remaining steps; negative means unlimited
}

func (m *matcher) tick() bool {
	if m.budget < 0 {
		return true
	}
	if m.budget == 0 {
		return false
	}
	m.budget--
	return true
}

func (m *matcher) exhausted() bool {
	return m.budget == 0
}

// matchRule tries the rule against the whole path when anchored, and
// against every suffix of the path otherwise.
func (m *matcher) matchRule(r *Rule, path []string) bool {
	if r.Anchored {
		return m.matchSegments(r.Segments, path, true)
	}
	for start := 0; start < len(path); start++ {
		if m.matchSegments(r.Segments, path[start:], true) {
			return true
		}
		if !m.tick() {
			return false
		}
	}
	return false
}

// matchSegments matches pattern segments against path segments; both must
// be consumed entirely. atStart is false once a segment has been consumed.
func (m *matcher) matchSegments(pattern []Segment, path []string, atStart bool) bool {
	for len(pattern) > 0 {
		if !m.tick() {
			return false
		}

		if pattern[0].IsDoubleWildcard() {
			rest := pattern[1:]
			if len(rest) == 0 {
				// "dir/**" matches what is inside dir, not dir itself.
				return len(path) > 0 || atStart
			}
			for i := 0; i <= len(path); i++ {
				if m.matchSegments(rest, path[i:], atStart && i == 0) {
					return true
				}
				if !m.tick() {
					return false
				}
			}
			return false
		}

		if len(path) == 0 || !m.matchSegment(pattern[0], path[0]) {
			return false
		}
		pattern, path = pattern[1:], path[1:]
		atStart = false
	}
	return len(path) == 0
}

func (m *matcher) matchSegment(seg Segment, s string) bool {
	if text, ok := seg.literal(); ok {
		return m.equal(text, s)
	}
	return m.matchTokens(seg.Tokens, s)
}

// matchTokens is single-segment glob matching; s never contains "/".
func (m *matcher) matchTokens(tokens []Token, s string) bool {
	for len(tokens) > 0 {
		if !m.tick() {
			return false
		}

		switch t := tokens[0].(type) {
		case Literal:
			if len(s) < len(t.Text) || !m.equal(t.Text, s[:len(t.Text)]) {
				return false
			}
			s = s[len(t.Text):]

		case AnyChar:
			if s == "" {
				return false
			}
			_, size := utf8.DecodeRuneInString(s)
			s = s[size:]

		case CharClass:
			if s == "" {
				return false
			}
			r, size := utf8.DecodeRuneInString(s)
			if !m.inClass(t, r) {
				return false
			}
			s = s[size:]

		case SingleWildcard, DoubleWildcard:
			// The compiler only emits DoubleWildcard as a whole segment,
			// where matchSegments handles it; inside a segment it is a star.
			rest := skipStars(tokens[1:])
			if len(rest) == 0 {
				return true
			}
			for i := 0; ; {
				if m.matchTokens(rest, s[i:]) {
					return true
				}
				if i == len(s) || !m.tick() {
					return false
				}
				_, size := utf8.DecodeRuneInString(s[i:])
				i += size
			}

		default:
			panic(fmt.Sprintf("gitignore: unhandled token kind %T", t))
		}
		tokens = tokens[1:]
	}
	return s == ""
}

func skipStars(tokens []Token) []Token {
	for len(tokens) > 0 {
		if _, ok := tokens[0].(SingleWildcard); !ok {
			break
		}
		tokens = tokens[1:]
	}
	return tokens
}

func (m *matcher) equal(a, b string) bool {
	if !m.fold {
		return a == b
	}
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if asciiLower(a[i]) != asciiLower(b[i]) {
			return false
		}
	}
	return true
}

func (m *matcher) inClass(c CharClass, r rune) bool {
	if !m.fold || r >= utf8.RuneSelf {
		return c.Contains(r)
	}
	lower := rune(asciiLower(byte(r)))
	upper := lower
	if lower >= 'a' && lower <= 'z' {
		upper = lower - 'a' + 'A'
	}
	if c.Negated {
		return c.Contains(lower) && c.Contains(upper)
	}
	return c.Contains(lower) || c.Contains(upper)
}

func asciiLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
