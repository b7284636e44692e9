// Package gitignore compiles gitignore-style rules and decides whether a
// path is ignored by them.
//
// It implements the pattern syntax documented at
// https://git-scm.com/docs/gitignore:
//   - Basename patterns that match at any depth (*.log, temp/)
//   - Wildcards (*, ?, [a-z], [!0-9]) that never cross "/"
//   - Double-star segments (**/node_modules, logs/**, a/**/b)
//   - Rooted patterns (/build) and patterns anchored by an inner slash
//   - Negation (!important.log) with last-match-wins semantics
//   - Directory-only patterns (build/)
//   - Backslash escapes, including "\!", "\#" and an escaped trailing space
//
// A RuleSet is immutable and safe for concurrent use; reloads compile a new
// RuleSet and publish it through a Store. Each query is judged on its own:
// descendants of an ignored directory must be queried separately unless
// Options.ShortCircuitParents is set.
//
// Usage:
//
//	rs := gitignore.CompileLines([]string{"*.log", "!important.log", "/build/"})
//	ignored, err := gitignore.IsIgnored(rs, "logs/error.log", false)
//
// For diagnostics:
//
//	res, err := gitignore.Evaluate(rs, gitignore.MatchQuery{Path: "important.log"})
//	// res.Ignored == false, res.RuleIndex == 1, res.Negated == true
package gitignore
