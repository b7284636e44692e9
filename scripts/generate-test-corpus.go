//go:build ignore

// Package main generates a synthetic project tree with a .gitignore for
// benchmarking "amanignore scan" and "amanignore check".
// Usage: go run scripts/generate-test-corpus.go -files 5000 -depth 4 -output testdata/bench
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numFiles  = flag.Int("files", 5000, "Number of files to generate")
	depth     = flag.Int("depth", 4, "Maximum directory depth")
	fanout    = flag.Int("fanout", 6, "Subdirectories per directory")
	outputDir = flag.String("output", "testdata/bench", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
	paths     = flag.Bool("paths", false, "Also write paths.txt for 'amanignore check --stdin'")
)

// gitignoreTemplate exercises every pattern form the engine compiles.
const gitignoreTemplate = `# generated by scripts/generate-test-corpus.go
*.log
*.tmp
*~
.DS_Store
/dist/
build/
node_modules/
**/cache/**
coverage*.out
[Tt]humbs.db
*.py[cod]
!keep.log
!/build/keep/
docs/**/*.draft.md
vendor/*/testdata/
`

var (
	dirNames = []string{
		"src", "pkg", "internal", "cmd", "api", "web", "lib", "tools",
		"build", "dist", "cache", "node_modules", "vendor", "docs", "testdata", "keep",
	}
	stems = []string{
		"main", "server", "client", "router", "handler", "store", "config",
		"index", "util", "parser", "worker", "session", "cache", "keep", "Thumbs",
	}
	exts = []string{
		".go", ".go", ".go", ".ts", ".tsx", ".py", ".pyc", ".md", ".draft.md",
		".log", ".tmp", ".json", ".yaml", ".txt", ".db", "~",
	}
)

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outputDir, ".gitignore"), []byte(gitignoreTemplate), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing .gitignore: %v\n", err)
		os.Exit(1)
	}

	dirs := buildDirs(rng)
	fmt.Printf("Generating %d files across %d directories in %s...\n", *numFiles, len(dirs), *outputDir)

	var written []string
	for i := 0; i < *numFiles; i++ {
		dir := dirs[rng.Intn(len(dirs))]
		name := fmt.Sprintf("%s%d%s", stems[rng.Intn(len(stems))], i, exts[rng.Intn(len(exts))])
		rel := filepath.ToSlash(filepath.Join(dir, name))

		full := filepath.Join(*outputDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", filepath.Dir(full), err)
			continue
		}
		if err := os.WriteFile(full, []byte(rel+"\n"), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", rel, err)
			continue
		}
		written = append(written, rel)
	}

	if *paths {
		list := filepath.Join(*outputDir, "paths.txt")
		if err := os.WriteFile(list, []byte(strings.Join(written, "\n")+"\n"), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing paths.txt: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Generated %d files successfully.\n", len(written))
}

// buildDirs returns relative directory paths, "." included.
func buildDirs(rng *rand.Rand) []string {
	dirs := []string{"."}
	level := []string{"."}
	for d := 0; d < *depth; d++ {
		var next []string
		for _, parent := range level {
			for i := 0; i < *fanout; i++ {
				child := filepath.Join(parent, dirNames[rng.Intn(len(dirNames))])
				next = append(next, child)
			}
		}
		dirs = append(dirs, next...)
		level = next
	}
	return dirs
}
