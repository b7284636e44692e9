package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCmd_Modes(t *testing.T) {
	isolate(t)
	root := newProject(t, "*.log\nnode_modules/\n",
		"main.go",
		"debug.log",
		"node_modules/pkg/index.js",
		"src/app.go",
	)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "ignored by default",
			args: []string{"scan"},
			want: "debug.log\nnode_modules/\n",
		},
		{
			name: "included",
			args: []string{"scan", "--included", "--include", "**/*.go"},
			want: "main.go\nsrc/app.go\n",
		},
		{
			name: "verbose",
			args: []string{"scan", "-v"},
			want: "debug.log\t*.log\nnode_modules/\tnode_modules/\n",
		},
		{
			name: "all with skip",
			args: []string{"scan", "--all", "--skip-ignored-dirs"},
			want: "  .gitignore\n" +
				"! debug.log\n" +
				"  main.go\n" +
				"! node_modules/\n" +
				"  src/\n" +
				"  src/app.go\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := execute(t, "", append([]string{"--dir", root}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
			assert.Contains(t, stderr, "ignored")
		})
	}
}

func TestScanCmd_JSON(t *testing.T) {
	isolate(t)
	root := newProject(t, "build/\n!build/keep.txt\n", "build/keep.txt", "build/out.o")

	stdout, stderr, err := execute(t, "", "--dir", root, "scan", "--all", "--json", "--workers", "2")
	require.NoError(t, err)

	// Then: one object per line
	var entries []scanEntryJSON
	for _, line := range strings.Split(strings.TrimSuffix(stdout, "\n"), "\n") {
		var e scanEntryJSON
		require.NoError(t, json.Unmarshal([]byte(line), &e), "line %q", line)
		entries = append(entries, e)
	}

	byPath := make(map[string]scanEntryJSON)
	for _, e := range entries {
		byPath[e.Path] = e
	}
	require.Len(t, byPath, 4)
	assert.True(t, byPath["build"].Ignored)
	assert.True(t, byPath["build"].IsDir)
	assert.Equal(t, "build/", byPath["build"].Pattern)
	assert.False(t, byPath["build/keep.txt"].Ignored)
	assert.True(t, byPath["build/keep.txt"].Negated)
	assert.False(t, byPath["build/out.o"].Ignored)
	assert.Contains(t, stderr, "3 files, 1 directories, 1 ignored")
}

func TestScanCmd_BadInclude(t *testing.T) {
	isolate(t)
	root := newProject(t, "*.log\n")

	_, _, err := execute(t, "", "--dir", root, "scan", "--include", "[a-")
	assert.Error(t, err)
}
