package gitignore

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strings"

	ierrors "github.com/Aman-CERP/amanignore/internal/errors"
)

// ErrInvalidPath is returned for query paths that are empty, absolute or
// contain a ".." segment. Compare with errors.Is.
var ErrInvalidPath = ierrors.New(ierrors.ErrCodeInvalidPath, "invalid query path", nil)

// NormalizePath converts a caller path into the form the evaluator expects:
// forward slashes, no leading "./", no duplicate or trailing slashes.
// Backslashes are treated as separators on Windows only, where git does the same.
// It does not validate; Evaluate rejects what remains invalid.
func NormalizePath(p string) string {
	if runtime.GOOS == "windows" {
		p = filepath.ToSlash(p)
	}

	if strings.Contains(p, "//") {
		var b strings.Builder
		b.Grow(len(p))
		prevSlash := false
		for i := 0; i < len(p); i++ {
			if p[i] == '/' {
				if !prevSlash {
					b.WriteByte('/')
				}
				prevSlash = true
				continue
			}
			b.WriteByte(p[i])
			prevSlash = false
		}
		p = b.String()
	}

	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}

	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// splitQuery normalizes and validates a query path and returns its segments.
func splitQuery(p string) ([]string, error) {
	raw := p
	p = NormalizePath(p)

	switch {
	case p == "" || p == ".":
		return nil, invalidPath(raw, "path is empty")
	case strings.HasPrefix(p, "/") || filepath.VolumeName(p) != "":
		return nil, invalidPath(raw, "path is absolute")
	}

	segments := strings.Split(p, "/")
	for _, s := range segments {
		if s == ".." {
			return nil, invalidPath(raw, "path contains '..'")
		}
	}
	return segments, nil
}

func invalidPath(p, reason string) error {
	return ierrors.New(ierrors.ErrCodeInvalidPath, reason, nil).
		WithDetail("path", p).
		WithSuggestion("Pass a clean path relative to the ignore file's directory")
}

// normalizeContent strips a UTF-8 BOM and converts CRLF and lone CR to LF.
func normalizeContent(content []byte) []byte {
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	if bytes.IndexByte(content, '\r') < 0 {
		return content
	}
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))
}

// trimTrailingWhitespace removes trailing spaces and tabs unless the first
// of them is escaped with a backslash, which keeps that one character:
//
//	"foo "    -> "foo"
//	"foo\ "   -> "foo "
//	"foo\<TAB>" -> "foo<TAB>"
//	"foo\\ "  -> "foo\\"
func trimTrailingWhitespace(line string) string {
	end := len(line)
	for end > 0 && (line[end-1] == ' ' || line[end-1] == '\t') {
		end--
	}
	if end == len(line) {
		return line
	}

	if escapedAt(line, end) {
		return line[:end-1] + line[end:end+1]
	}
	return line[:end]
}
