package gitignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperty_Deterministic(t *testing.T) {
	rs := CompileLines([]string{"*.log", "!keep.log", "build/", "/root.txt", "a/**/b"})
	queries := []MatchQuery{
		{Path: "x.log"}, {Path: "keep.log"}, {Path: "build", IsDir: true},
		{Path: "root.txt"}, {Path: "sub/root.txt"}, {Path: "a/q/b"},
	}

	first := make([]MatchResult, len(queries))
	for i, q := range queries {
		res, err := Evaluate(rs, q)
		require.NoError(t, err)
		first[i] = res
	}

	for round := 0; round < 5; round++ {
		for i, q := range queries {
			res, err := Evaluate(rs, q)
			require.NoError(t, err)
			assert.Equal(t, first[i], res)
		}
	}
	assert.Equal(t, 5, rs.Len(), "evaluation does not modify the rule set")
}

func TestProperty_LastMatchWins(t *testing.T) {
	assert.False(t, ignored(t, []string{"*.log", "!keep.log"}, "keep.log", false))
	assert.True(t, ignored(t, []string{"!keep.log", "*.log"}, "keep.log", false))
}

func TestProperty_DirectoryOnlyNeverMatchesFiles(t *testing.T) {
	assert.False(t, ignored(t, []string{"build/"}, "build", false))
	assert.True(t, ignored(t, []string{"build/"}, "build", true))
}

func TestProperty_Anchoring(t *testing.T) {
	assert.True(t, ignored(t, []string{"/README.md"}, "README.md", false))
	assert.False(t, ignored(t, []string{"/README.md"}, "docs/README.md", false))
	assert.True(t, ignored(t, []string{"README.md"}, "README.md", false))
	assert.True(t, ignored(t, []string{"README.md"}, "docs/README.md", false))
}

func TestProperty_DoubleWildcardZeroOrMore(t *testing.T) {
	assert.True(t, ignored(t, []string{"a/**/b"}, "a/b", false))
	assert.True(t, ignored(t, []string{"a/**/b"}, "a/x/y/b", false))
}

func TestProperty_SingleWildcardStaysInSegment(t *testing.T) {
	assert.True(t, ignored(t, []string{"*.tmp"}, "dir/file.tmp", false))
	assert.False(t, ignored(t, []string{"/*.tmp"}, "dir/file.tmp", false))
	assert.True(t, ignored(t, []string{"/*.tmp"}, "file.tmp", false))
	assert.False(t, ignored(t, []string{"dir*tmp"}, "dir/file.tmp", false))
}

func TestProperty_CommentsAndBlanksCompileToNothing(t *testing.T) {
	rs := CompileLines([]string{"", "# comment", "*.o"})
	assert.Equal(t, 1, rs.Len())
}

func TestProperty_EscapedLeadingBangIsLiteral(t *testing.T) {
	rs := CompileLines([]string{`\!important`})
	require.Equal(t, 1, rs.Len())
	assert.False(t, rs.Rule(0).Negated)
	assert.True(t, mustIgnored(t, rs, "!important", false))
}
