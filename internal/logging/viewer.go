package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// LogEntry is one parsed JSON log line.
type LogEntry struct {
	Time    time.Time
	Level   string
	Msg     string
	Attrs   map[string]any
	Raw     string
	IsValid bool
}

// ViewerConfig configures the log viewer.
type ViewerConfig struct {
	Level   string         // minimum level shown
	Pattern *regexp.Regexp // only lines matching Pattern
	NoColor bool
}

// Viewer reads, filters and formats amanignore log files.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
	levels map[string]lipgloss.Style
}

// NewViewer creates a viewer writing formatted entries to out.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	v := &Viewer{config: cfg, out: out}
	if !cfg.NoColor {
		v.levels = map[string]lipgloss.Style{
			"debug": lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			"info":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
			"warn":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
			"error": lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		}
	}
	return v
}

// maxLineSize bounds a single log line; reload diffs can be long.
const maxLineSize = 1024 * 1024

// Tail returns the matching entries among the last n lines of path.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	for sc.Scan() {
		lines = append(lines, sc.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var entries []LogEntry
	for _, line := range lines {
		if e := parseLine(line); v.matches(e) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Follow sends entries appended to path after the call until ctx is done.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- LogEntry) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	reader := bufio.NewReader(f)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var partial string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		for {
			chunk, err := reader.ReadString('\n')
			partial += chunk
			if err != nil {
				break
			}
			line := strings.TrimSuffix(partial, "\n")
			partial = ""
			if line == "" {
				continue
			}
			if e := parseLine(line); v.matches(e) {
				select {
				case entries <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// FormatEntry renders an entry as "15:04:05.000 LEVEL msg key=value ...".
// Attributes are sorted by key. Unparseable lines are returned raw.
func (v *Viewer) FormatEntry(e LogEntry) string {
	if !e.IsValid {
		return e.Raw
	}

	var sb strings.Builder
	sb.WriteString(e.Time.Format("15:04:05.000"))
	sb.WriteByte(' ')
	sb.WriteString(v.formatLevel(e.Level))
	sb.WriteByte(' ')
	sb.WriteString(e.Msg)

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, e.Attrs[k])
	}
	return sb.String()
}

// Print writes entries to the viewer's output.
func (v *Viewer) Print(entries []LogEntry) {
	for _, e := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(e))
	}
}

func (v *Viewer) formatLevel(level string) string {
	label := fmt.Sprintf("%-5s", strings.ToUpper(level))
	if len(label) > 5 {
		label = label[:5]
	}

	key := strings.ToLower(level)
	if key == "warning" {
		key = "warn"
	}
	if style, ok := v.levels[key]; ok {
		return style.Render(label)
	}
	return label
}

func (v *Viewer) matches(e LogEntry) bool {
	if v.config.Level != "" && LevelFromString(e.Level) < LevelFromString(v.config.Level) {
		return false
	}
	if v.config.Pattern != nil && !v.config.Pattern.MatchString(e.Raw) {
		return false
	}
	return true
}

func parseLine(line string) LogEntry {
	e := LogEntry{Raw: line}

	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return e
	}
	e.IsValid = true

	if t, ok := data["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			e.Time = parsed
		}
	}
	e.Level, _ = data["level"].(string)
	e.Msg, _ = data["msg"].(string)

	delete(data, "time")
	delete(data, "level")
	delete(data, "msg")
	e.Attrs = data
	return e
}
