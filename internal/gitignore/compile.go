package gitignore

import (
	"strings"
	"unicode/utf8"
)

// Rule is one compiled ignore pattern.
type Rule struct {
	// Pattern is the source line with trailing whitespace removed.
	Pattern string
	// Negated is set for lines starting with "!" (re-include).
	Negated bool
	// DirectoryOnly is set for lines ending with "/"; such rules never match files.
	DirectoryOnly bool
	// Anchored rules match from the rule file's directory only.
	Anchored bool
	// Segments is never empty.
	Segments []Segment
	// SourceOrder is the rule's position in its RuleSet.
	SourceOrder int
	// Line is the 1-indexed source line, 0 when compiled from a single string.
	Line int
}

// String returns a debug representation of a rule.
func (r *Rule) String() string {
	var flags []string
	if r.Negated {
		flags = append(flags, "negated")
	}
	if r.DirectoryOnly {
		flags = append(flags, "dir")
	}
	if r.Anchored {
		flags = append(flags, "anchored")
	}
	if len(flags) == 0 {
		return r.Pattern
	}
	return r.Pattern + " [" + strings.Join(flags, ",") + "]"
}

// Warning describes a line that was compiled leniently or dropped.
type Warning struct {
	Line    int    // 1-indexed, 0 when compiled from a single string
	Pattern string // the offending line
	Message string
}

// Compile parses a single rule line.
// Blank and comment lines return a nil rule and a nil warning. Malformed
// syntax never fails: the rule is compiled more literally and a warning is
// returned alongside it.
func Compile(line string) (*Rule, *Warning) {
	return compileLine(line, 0)
}

// CompileLines compiles lines in order into an immutable RuleSet.
func CompileLines(lines []string) *RuleSet {
	rules := make([]Rule, 0, len(lines))
	var warnings []Warning

	for i, line := range lines {
		r, w := compileLine(line, i+1)
		if w != nil {
			warnings = append(warnings, *w)
		}
		if r == nil {
			continue
		}
		r.SourceOrder = len(rules)
		rules = append(rules, *r)
	}

	return newRuleSet(rules, warnings)
}

// Parse compiles the content of an ignore file.
// A UTF-8 BOM is stripped and CRLF or CR line endings are accepted.
func Parse(content []byte) *RuleSet {
	content = normalizeContent(content)
	if len(content) == 0 {
		return newRuleSet(nil, nil)
	}
	return CompileLines(strings.Split(string(content), "\n"))
}

func compileLine(raw string, lineNum int) (*Rule, *Warning) {
	line := trimTrailingWhitespace(raw)
	if line == "" || line[0] == '#' {
		return nil, nil
	}

	r := &Rule{Pattern: line, Line: lineNum}
	warn := func(msg string) *Warning {
		return &Warning{Line: lineNum, Pattern: line, Message: msg}
	}

	// "\!" and "\#" need no handling here: the tokenizer resolves the
	// escape into a literal and the checks below only look at bare bytes.
	if line[0] == '!' {
		r.Negated = true
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") && !escapedAt(line, len(line)-1) {
		r.DirectoryOnly = true
		line = line[:len(line)-1]
	}

	parts := splitUnescaped(line)
	r.Anchored = len(parts) > 1

	var w *Warning
	for _, part := range parts {
		if part == "" {
			continue
		}
		seg, note := tokenizeSegment(part)
		if note != "" && w == nil {
			w = warn(note)
		}
		r.Segments = append(r.Segments, seg)
	}

	if len(r.Segments) == 0 {
		return nil, warn("pattern is empty after removing '!' and '/'")
	}

	return r, w
}

// escapedAt reports whether the byte at i is preceded by an odd number of backslashes.
func escapedAt(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// splitUnescaped splits on "/" that is not escaped. Escapes are kept for the tokenizer.
func splitUnescaped(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '/':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// tokenizeSegment turns one slash-free pattern segment into tokens.
// The returned note is non-empty when part of the segment was taken literally.
func tokenizeSegment(part string) (Segment, string) {
	if part == "**" {
		return Segment{Tokens: []Token{DoubleWildcard{}}}, ""
	}

	var (
		tokens []Token
		lit    strings.Builder
		note   string
	)
	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, Literal{Text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(part); {
		switch part[i] {
		case '\\':
			if i+1 == len(part) {
				lit.WriteByte('\\')
				note = "trailing backslash treated as a literal"
				i++
				continue
			}
			_, size := utf8.DecodeRuneInString(part[i+1:])
			lit.WriteString(part[i+1 : i+1+size])
			i += 1 + size
		case '*':
			flush()
			tokens = append(tokens, SingleWildcard{})
			i++
		case '?':
			flush()
			tokens = append(tokens, AnyChar{})
			i++
		case '[':
			class, n, ok := parseClass(part[i:])
			if !ok {
				lit.WriteByte('[')
				note = "unterminated character class treated as a literal '['"
				i++
				continue
			}
			flush()
			tokens = append(tokens, class)
			i += n
		default:
			lit.WriteByte(part[i])
			i++
		}
	}
	flush()

	return Segment{Tokens: tokens}, note
}

// parseClass parses a bracket expression at the start of s.
// It returns the class, the number of bytes consumed and whether a closing
// "]" was found. A "]" directly after "[" (or "[!") is a member, not the end.
// Reversed ranges such as [z-a] select nothing.
func parseClass(s string) (CharClass, int, bool) {
	var class CharClass
	i := 1
	if i < len(s) && (s[i] == '!' || s[i] == '^') {
		class.Negated = true
		i++
	}

	first := true
	for i < len(s) {
		if s[i] == ']' && !first {
			return class, i + 1, true
		}
		first = false

		lo, n := classRune(s[i:])
		i += n

		if i+1 < len(s) && s[i] == '-' && s[i+1] != ']' {
			hi, m := classRune(s[i+1:])
			i += 1 + m
			if lo <= hi {
				class.Ranges = append(class.Ranges, CharRange{Lo: lo, Hi: hi})
			}
			continue
		}
		class.Ranges = append(class.Ranges, CharRange{Lo: lo, Hi: lo})
	}

	return CharClass{}, 0, false
}

// classRune decodes one possibly escaped member of a bracket expression.
func classRune(s string) (rune, int) {
	if s[0] == '\\' && len(s) > 1 {
		r, size := utf8.DecodeRuneInString(s[1:])
		return r, 1 + size
	}
	r, size := utf8.DecodeRuneInString(s)
	return r, size
}
