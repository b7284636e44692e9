package output

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func plainWriter() (*Writer, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewWithColor(buf, false), buf
}

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	// Given: a writer with a buffer
	w, buf := plainWriter()

	// When: printing a status message
	w.Status("*", "Loading rules...")

	// Then: output contains icon and message
	assert.Equal(t, "* Loading rules...\n", buf.String())
}

func TestWriter_Status_NoIconIndents(t *testing.T) {
	w, buf := plainWriter()
	w.Status("", "detail")
	assert.Equal(t, "   detail\n", buf.String())
}

func TestWriter_Levels(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  string
	}{
		{"success", func(w *Writer) { w.Success("Config written") }, "✓ Config written\n"},
		{"successf", func(w *Writer) { w.Successf("%d rules", 3) }, "✓ 3 rules\n"},
		{"warning", func(w *Writer) { w.Warning("unterminated class") }, "! unterminated class\n"},
		{"warningf", func(w *Writer) { w.Warningf("line %d", 7) }, "! line 7\n"},
		{"error", func(w *Writer) { w.Error("Failed to read") }, "✗ Failed to read\n"},
		{"errorf", func(w *Writer) { w.Errorf("exit %d", 2) }, "✗ exit 2\n"},
		{"statusf", func(w *Writer) { w.Statusf(">", "Found %d files in %s", 42, "src") }, "> Found 42 files in src\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, buf := plainWriter()
			tt.write(w)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_Verdict(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		ignored bool
		pattern string
		want    string
	}{
		{"ignored with pattern", "debug.log", true, "*.log", "! debug.log (*.log)\n"},
		{"re-included", "keep.log", false, "!keep.log", "  keep.log (!keep.log)\n"},
		{"no match", "main.go", false, "", "  main.go\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, buf := plainWriter()
			w.Verdict(tt.path, tt.ignored, tt.pattern)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_HeaderAndKeyValue(t *testing.T) {
	w, buf := plainWriter()

	w.Header("Matcher")
	w.KeyValue("case_insensitive", false)

	assert.Equal(t, "Matcher\n  case_insensitive:  false\n", buf.String())
}

func TestWriter_Code_PrintsCodeBlock(t *testing.T) {
	w, buf := plainWriter()

	w.Code("*.log\nbuild/")

	assert.Equal(t, "\n  *.log\n  build/\n\n", buf.String())
}

func TestWriter_Newline_PrintsEmptyLine(t *testing.T) {
	w, buf := plainWriter()
	w.Newline()
	assert.Equal(t, "\n", buf.String())
}

func TestNew_BufferIsNotColored(t *testing.T) {
	// Given/When: a writer on a non-terminal
	buf := &bytes.Buffer{}
	w := New(buf)
	w.Success("done")

	// Then: output carries no escape sequences
	assert.Equal(t, "✓ done\n", buf.String())
	assert.Same(t, buf, w.Out())
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(nil))
	assert.False(t, IsTTY(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	assert.False(t, IsTTY(f), "regular files are not terminals")
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
	assert.False(t, ColorEnabled(os.Stdout))
}

func TestDetectCI(t *testing.T) {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"} {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
	assert.False(t, DetectCI())

	t.Setenv("GITHUB_ACTIONS", "true")
	assert.True(t, DetectCI())
}

func TestGetStyles(t *testing.T) {
	plain := GetStyles(true)
	assert.Equal(t, "x", plain.Ignored.Render("x"))
	assert.Equal(t, "x", plain.Header.Render("x"))

	colored := GetStyles(false)
	assert.True(t, colored.Header.GetBold())
}
