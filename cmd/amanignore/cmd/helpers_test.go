package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate points HOME and XDG_CONFIG_HOME at a temp dir and clears the
// AMANIGNORE_* environment so user settings never leak into tests.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("NO_COLOR", "1")
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, "AMANIGNORE_") {
			t.Setenv(k, "")
			_ = os.Unsetenv(k)
		}
	}
	return home
}

// newProject creates a project root with a .git directory, a .gitignore
// holding rules, and the given files. Paths ending in "/" are directories.
func newProject(t *testing.T, rules string, files ...string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	if rules != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte(rules), 0o644))
	}
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		if strings.HasSuffix(f, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
	return root
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
