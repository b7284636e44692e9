package scanner

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SubmoduleInfo is one [submodule "name"] section of a .gitmodules file.
type SubmoduleInfo struct {
	Name   string
	Path   string
	URL    string
	Branch string
}

// ParseGitmodules parses .gitmodules content. Sections without a path are skipped.
func ParseGitmodules(content []byte) ([]SubmoduleInfo, error) {
	var (
		submodules []SubmoduleInfo
		current    *SubmoduleInfo
	)

	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if current != nil && current.Path != "" {
				submodules = append(submodules, *current)
			}
			current = nil
			if strings.HasPrefix(line, "[submodule") {
				current = &SubmoduleInfo{Name: sectionName(line)}
			}
			continue
		}

		if current == nil {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "path":
			current.Path = value
		case "url":
			current.URL = value
		case "branch":
			current.Branch = value
		}
	}

	if current != nil && current.Path != "" {
		submodules = append(submodules, *current)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("error scanning .gitmodules: %w", err)
	}
	return submodules, nil
}

// sectionName extracts name from `[submodule "name"]`.
func sectionName(line string) string {
	start := strings.Index(line, `"`)
	end := strings.LastIndex(line, `"`)
	if start == -1 || end <= start {
		return ""
	}
	return line[start+1 : end]
}

// SubmodulePaths returns the cleaned submodule paths declared in
// root/.gitmodules. A missing file yields an empty set.
func SubmodulePaths(root string) (map[string]bool, error) {
	content, err := os.ReadFile(filepath.Join(root, ".gitmodules"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitmodules: %w", err)
	}

	parsed, err := ParseGitmodules(content)
	if err != nil {
		return nil, err
	}
	paths := make(map[string]bool, len(parsed))
	for _, sm := range parsed {
		paths[path.Clean(filepath.ToSlash(sm.Path))] = true
	}
	return paths, nil
}
