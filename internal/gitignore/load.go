package gitignore

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	ierrors "github.com/Aman-CERP/amanignore/internal/errors"
)

// LoadFile reads and compiles an ignore file. The extra patterns are
// compiled after the file's own lines, so they take precedence.
// A missing file is not an error: the result holds only the extra patterns.
func LoadFile(path string, extra []string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	case errors.Is(err, fs.ErrPermission):
		return nil, ierrors.New(ierrors.ErrCodeFilePermission, "permission denied reading rule file", err).
			WithDetail("path", path)
	default:
		return nil, ierrors.IOError("failed to read rule file", err).WithDetail("path", path)
	}

	var lines []string
	if content := normalizeContent(data); len(content) > 0 {
		lines = strings.Split(string(content), "\n")
	}
	lines = append(lines, extra...)
	return CompileLines(lines), nil
}

// Diff reports which rule patterns were added and removed between two
// RuleSets, in source order. Used to log what a reload changed.
func Diff(old, updated *RuleSet) (added, removed []string) {
	oldSet := make(map[string]bool, old.Len())
	for _, r := range old.Rules() {
		oldSet[r.Pattern] = true
	}
	newSet := make(map[string]bool, updated.Len())
	for _, r := range updated.Rules() {
		newSet[r.Pattern] = true
	}

	for _, r := range updated.Rules() {
		if !oldSet[r.Pattern] {
			added = append(added, r.Pattern)
		}
	}
	for _, r := range old.Rules() {
		if !newSet[r.Pattern] {
			removed = append(removed, r.Pattern)
		}
	}
	return added, removed
}
