package gitignore

import (
	"fmt"
	"strings"
)

// Token is one element of a compiled pattern segment.
//
// The set of implementations is closed: Literal, SingleWildcard, AnyChar,
// DoubleWildcard and CharClass. Code that dispatches on tokens uses a type
// switch and panics on an unknown kind, so adding a kind without handling
// it everywhere fails loudly in tests.
type Token interface {
	token()
	String() string
}

// Literal matches its text exactly. Escapes are already resolved.
type Literal struct {
	Text string
}

// SingleWildcard is "*": zero or more characters within one segment.
type SingleWildcard struct{}

// AnyChar is "?": exactly one character within one segment.
type AnyChar struct{}

// DoubleWildcard is "**" standing alone as a segment: zero or more whole segments.
type DoubleWildcard struct{}

// CharRange is an inclusive rune range inside a character class.
// A single member c is stored as {c, c}.
type CharRange struct {
	Lo, Hi rune
}

// CharClass is a bracket expression such as [a-z] or [!0-9].
type CharClass struct {
	Negated bool
	Ranges  []CharRange
}

func (Literal) token()        {}
func (SingleWildcard) token() {}
func (AnyChar) token()        {}
func (DoubleWildcard) token() {}
func (CharClass) token()      {}

func (t Literal) String() string      { return fmt.Sprintf("Literal(%q)", t.Text) }
func (SingleWildcard) String() string { return "Star" }
func (AnyChar) String() string        { return "Any" }
func (DoubleWildcard) String() string { return "DoubleStar" }

func (t CharClass) String() string {
	var sb strings.Builder
	sb.WriteString("Class[")
	if t.Negated {
		sb.WriteByte('!')
	}
	for _, r := range t.Ranges {
		if r.Lo == r.Hi {
			sb.WriteRune(r.Lo)
			continue
		}
		sb.WriteRune(r.Lo)
		sb.WriteByte('-')
		sb.WriteRune(r.Hi)
	}
	sb.WriteByte(']')
	return sb.String()
}

// Contains reports whether c is selected by the class.
func (t CharClass) Contains(c rune) bool {
	in := false
	for _, r := range t.Ranges {
		if c >= r.Lo && c <= r.Hi {
			in = true
			break
		}
	}
	return in != t.Negated
}

// Segment is the run of tokens between two unescaped slashes of a pattern.
type Segment struct {
	Tokens []Token
}

// IsDoubleWildcard reports whether the segment is a lone "**".
func (s Segment) IsDoubleWildcard() bool {
	if len(s.Tokens) != 1 {
		return false
	}
	_, ok := s.Tokens[0].(DoubleWildcard)
	return ok
}

// literal returns the segment text and true when it holds a single Literal.
func (s Segment) literal() (string, bool) {
	if len(s.Tokens) != 1 {
		return "", false
	}
	l, ok := s.Tokens[0].(Literal)
	return l.Text, ok
}

// String renders the tokens for diagnostics, e.g. "Star Literal(".log")".
func (s Segment) String() string {
	parts := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
