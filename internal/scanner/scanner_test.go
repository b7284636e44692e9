package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierrors "github.com/Aman-CERP/amanignore/internal/errors"
	"github.com/Aman-CERP/amanignore/internal/gitignore"
)

// makeTree creates files (and their parent directories) under a temp root.
// Paths ending in "/" create empty directories.
func makeTree(t *testing.T, paths ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if p[len(p)-1] == '/' {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
	return root
}

func storeOf(patterns ...string) *gitignore.Store {
	return gitignore.NewStore(gitignore.CompileLines(patterns))
}

func scanAll(t *testing.T, s *Scanner, opts ScanOptions) ([]Entry, Stats) {
	t.Helper()
	ch, err := s.Scan(context.Background(), opts)
	require.NoError(t, err)
	entries, stats, err := Collect(ch)
	require.NoError(t, err)
	return entries, stats
}

func verdicts(entries []Entry) map[string]bool {
	out := make(map[string]bool, len(entries))
	for _, e := range entries {
		out[e.Path] = e.Result.Ignored
	}
	return out
}

func TestScanner_Scan_JudgesEveryEntry(t *testing.T) {
	// Given: a tree and rules ignoring logs and the build directory
	root := makeTree(t,
		"main.go",
		"debug.log",
		"build/out.bin",
		"src/app.go",
		"src/trace.log",
	)
	store := storeOf("*.log", "build/")

	// When: scanning
	entries, stats := scanAll(t, New(nil), ScanOptions{Root: root, Store: store})

	// Then: every entry is reported with its own verdict
	assert.Equal(t, map[string]bool{
		"build":         true,
		"build/out.bin": false, // the file itself matches no rule
		"debug.log":     true,
		"main.go":       false,
		"src":           false,
		"src/app.go":    false,
		"src/trace.log": true,
	}, verdicts(entries))
	assert.Equal(t, Stats{Files: 5, Dirs: 2, Ignored: 3}, stats)
}

func TestScanner_Scan_SkipIgnoredDirs(t *testing.T) {
	root := makeTree(t, "keep.txt", "node_modules/pkg/index.js", "vendor/lib.go")
	store := storeOf("node_modules/")

	entries, _ := scanAll(t, New(nil), ScanOptions{Root: root, Store: store, SkipIgnoredDirs: true})

	assert.Equal(t, map[string]bool{
		"keep.txt":      false,
		"node_modules":  true,
		"vendor":        false,
		"vendor/lib.go": false,
	}, verdicts(entries))
}

func TestScanner_Scan_NegationInsideIgnoredDir(t *testing.T) {
	// Given: "logs/*" with "!logs/keep.log" re-included
	root := makeTree(t, "logs/a.log", "logs/keep.log")
	store := storeOf("logs/*", "!logs/keep.log")

	// When: scanning without skipping
	entries, _ := scanAll(t, New(nil), ScanOptions{Root: root, Store: store})

	// Then: the negation decides for keep.log
	v := verdicts(entries)
	assert.False(t, v["logs"])
	assert.True(t, v["logs/a.log"])
	assert.False(t, v["logs/keep.log"])
}

func TestScanner_Scan_ShortCircuitMatcher(t *testing.T) {
	// Given: an evaluator that treats ignored parents as final
	root := makeTree(t, "build/keep.txt")
	store := storeOf("build/", "!build/keep.txt")
	ev := gitignore.NewEvaluator(gitignore.Options{ShortCircuitParents: true})

	// When: scanning
	entries, _ := scanAll(t, New(ev), ScanOptions{Root: root, Store: store})

	// Then: the file inherits its parent's verdict
	require.Len(t, entries, 2)
	assert.Equal(t, "build/keep.txt", entries[1].Path)
	assert.True(t, entries[1].Result.Ignored)
	assert.Equal(t, "build", entries[1].Result.Parent)
}

func TestScanner_Scan_SkipsGitDir(t *testing.T) {
	root := makeTree(t, ".git/HEAD", ".git/objects/ab/cd", "README.md")

	entries, _ := scanAll(t, New(nil), ScanOptions{Root: root, Store: storeOf()})

	require.Len(t, entries, 1)
	assert.Equal(t, "README.md", entries[0].Path)
}

func TestScanner_Scan_StopsAtSubmodules(t *testing.T) {
	// Given: a .gitmodules declaring libs/shared
	root := makeTree(t, "libs/shared/lib.go", "libs/shared/debug.log", "app.log")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitmodules"), []byte(
		"[submodule \"shared\"]\n\tpath = libs/shared\n\turl = https://example.com/shared.git\n"), 0o644))

	// When: scanning
	entries, _ := scanAll(t, New(nil), ScanOptions{Root: root, Store: storeOf("*.log")})

	// Then: the submodule is reported but not entered
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
		if e.Path == "libs/shared" {
			assert.True(t, e.Submodule)
			assert.True(t, e.IsDir)
		}
	}
	assert.Equal(t, []string{".gitmodules", "app.log", "libs", "libs/shared"}, paths)
}

func TestScanner_Scan_IncludeFilter(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		want    []string
	}{
		{
			name:    "go files anywhere",
			include: []string{"**/*.go"},
			want:    []string{"cmd/main.go", "pkg/util/util.go"},
		},
		{
			name:    "one directory",
			include: []string{"pkg/util/*"},
			want:    []string{"pkg/util/util.go", "pkg/util/util.log"},
		},
		{
			name:    "several patterns",
			include: []string{"*.md", "**/*.log"},
			want:    []string{"README.md", "pkg/util/util.log"},
		},
	}

	root := makeTree(t, "README.md", "cmd/main.go", "pkg/util/util.go", "pkg/util/util.log")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, _ := scanAll(t, New(nil), ScanOptions{Root: root, Store: storeOf(), Include: tt.include})

			got := make([]string, 0, len(entries))
			for _, e := range entries {
				got = append(got, e.Path)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanner_Scan_WorkerCounts(t *testing.T) {
	var files []string
	for i := range 50 {
		files = append(files, filepath.ToSlash(filepath.Join("d", string(rune('a'+i%26)), "f.log")))
	}
	root := makeTree(t, files...)

	for _, workers := range []int{1, 4, runtime.NumCPU() * 2} {
		entries, stats := scanAll(t, New(nil), ScanOptions{Root: root, Store: storeOf("*.log"), Workers: workers})
		assert.Len(t, entries, 26+26+1, "workers=%d", workers)
		assert.Equal(t, 26, stats.Ignored, "workers=%d", workers)
	}
}

func TestScanner_Scan_UsesSnapshot(t *testing.T) {
	// Given: a scan that started with "*.log"
	root := makeTree(t, "a.log")
	store := storeOf("*.log")

	ch, err := New(nil).Scan(context.Background(), ScanOptions{Root: root, Store: store, Workers: 1})
	require.NoError(t, err)

	// When: the store is swapped mid-scan
	store.Swap(gitignore.Empty())

	// Then: the running scan keeps the rules it started with
	entries, _, err := Collect(ch)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Result.Ignored)
}

func TestScanner_Scan_InvalidOptions(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name     string
		opts     ScanOptions
		wantCode string
	}{
		{"nil store", ScanOptions{Root: root}, ierrors.ErrCodeInvalidInput},
		{"bad include", ScanOptions{Root: root, Store: storeOf(), Include: []string{"[a-"}}, ierrors.ErrCodeInvalidPattern},
		{"missing root", ScanOptions{Root: filepath.Join(root, "nope"), Store: storeOf()}, ierrors.ErrCodeFileNotFound},
		{"root is a file", ScanOptions{Root: file, Store: storeOf()}, ierrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil).Scan(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, ierrors.GetCode(err))
		})
	}
}

func TestScanner_Scan_EmptyDirectory(t *testing.T) {
	entries, stats := scanAll(t, New(nil), ScanOptions{Root: t.TempDir(), Store: storeOf("*")})
	assert.Empty(t, entries)
	assert.Equal(t, Stats{}, stats)
}

func TestScanner_Scan_ContextCancellation(t *testing.T) {
	// Given: a large tree
	var files []string
	for i := range 200 {
		files = append(files, filepath.ToSlash(filepath.Join("dir", string(rune('a'+i%26)), string(rune('a'+i/26))+".txt")))
	}
	root := makeTree(t, files...)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := New(nil).Scan(ctx, ScanOptions{Root: root, Store: storeOf(), Workers: 2})
	require.NoError(t, err)

	// When: the caller cancels after the first entry and stops reading
	<-ch
	cancel()

	// Then: the channel is closed without an error entry
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range ch {
			assert.NoError(t, e.Err)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scan did not stop after cancel")
	}
}

func TestCollect_SortsAndReportsError(t *testing.T) {
	ch := make(chan Entry, 4)
	ch <- Entry{Path: "b"}
	ch <- Entry{Path: "a", IsDir: true, Result: gitignore.MatchResult{Ignored: true}}
	ch <- Entry{Err: assert.AnError}
	ch <- Entry{Path: "a/c"}
	close(ch)

	entries, stats, err := Collect(ch)
	require.ErrorIs(t, err, assert.AnError)
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Path)
	assert.Equal(t, "a/c", entries[1].Path)
	assert.Equal(t, "b", entries[2].Path)
	assert.Equal(t, Stats{Files: 2, Dirs: 1, Ignored: 1}, stats)
}
