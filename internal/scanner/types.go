// Package scanner walks a project tree and judges every entry against the
// project's ignore rules. It is the reference caller of the gitignore
// package: each directory and file is queried on its own path, so negations
// inside ignored directories are reported the way the rules say.
package scanner

import (
	"github.com/Aman-CERP/amanignore/internal/gitignore"
)

// ScanOptions configures a scan.
type ScanOptions struct {
	// Root is the directory the rule file applies to (default ".").
	Root string

	// Store supplies the rules. One snapshot is taken when the scan starts.
	Store *gitignore.Store

	// Workers is the number of concurrent evaluators (0 = NumCPU).
	Workers int

	// Include limits the reported entries to paths matching any of these
	// doublestar globs. Directories are still walked when they do not match.
	Include []string

	// SkipIgnoredDirs stops the walk at ignored directories. Their contents
	// are not reported, which is what git does.
	SkipIgnoredDirs bool
}

// Entry is one judged path.
type Entry struct {
	// Path is relative to Root with forward slashes.
	Path  string
	IsDir bool

	// Submodule is set for directories listed in Root's .gitmodules.
	// The walk does not enter them.
	Submodule bool

	Result gitignore.MatchResult

	// Err is set on the final entry when the walk failed.
	Err error
}

// Stats summarizes a finished scan.
type Stats struct {
	Files   int
	Dirs    int
	Ignored int
}

// Add counts e.
func (s *Stats) Add(e Entry) {
	if e.IsDir {
		s.Dirs++
	} else {
		s.Files++
	}
	if e.Result.Ignored {
		s.Ignored++
	}
}
