package gitignore

import (
	"context"
	"fmt"
	"testing"
)

var benchPatterns = []string{
	"node_modules/",
	"vendor/",
	"dist/",
	"*.min.js",
	"*.log",
	"!important.log",
	".idea/",
	"*.swp",
	"/config.local.json",
	"**/temp/",
	"**/*.generated.go",
	"docs/**/*.pdf",
	"[Tt]humbs.db",
}

func BenchmarkCompileLines(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = CompileLines(benchPatterns)
	}
}

func BenchmarkEvaluate(b *testing.B) {
	rs := CompileLines(benchPatterns)
	paths := []string{
		"src/internal/server/handler.go",
		"web/static/app.min.js",
		"pkg/models/user.generated.go",
		"docs/guides/install/setup.pdf",
		"a/b/c/d/e/f/g/h/important.log",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = IsIgnored(rs, paths[i%len(paths)], false)
	}
}

func BenchmarkEvaluate_Pathological(b *testing.B) {
	rs := CompileLines([]string{"*a*a*a*a*a*a*a*b"})
	ev := NewEvaluator(Options{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ev.IsIgnored(rs, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false)
	}
}

func BenchmarkCachedEvaluator(b *testing.B) {
	rs := CompileLines(benchPatterns)
	c, err := NewCachedEvaluator(NewEvaluator(Options{}), 1024)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.IsIgnored(rs, fmt.Sprintf("pkg/file%d.go", i%512), false)
	}
}

func BenchmarkEvaluateAll(b *testing.B) {
	rs := CompileLines(benchPatterns)
	queries := make([]MatchQuery, 10000)
	for i := range queries {
		queries[i] = MatchQuery{Path: fmt.Sprintf("dir%d/sub/file%d.log", i%37, i)}
	}
	ev := NewEvaluator(Options{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := EvaluateAll(context.Background(), ev, rs, queries, 0); err != nil {
			b.Fatal(err)
		}
	}
}
