package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRecord(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *Record
	}{
		{
			name: "nil",
			err:  nil,
			want: nil,
		},
		{
			name: "invalid query path",
			err: New(ErrCodeInvalidPath, "path contains '..'", nil).
				WithDetail("path", "../secret.log").
				WithSuggestion("Pass a clean path relative to the ignore file's directory"),
			want: &Record{
				Code:       ErrCodeInvalidPath,
				Message:    "path contains '..'",
				Category:   CategoryValidation,
				Details:    map[string]string{"path": "../secret.log"},
				Suggestion: "Pass a clean path relative to the ignore file's directory",
			},
		},
		{
			name: "rule file read failure keeps its cause",
			err:  New(ErrCodeFileRead, "failed to read rule file", errors.New("is a directory")),
			want: &Record{
				Code:     ErrCodeFileRead,
				Message:  "failed to read rule file",
				Category: CategoryIO,
				Cause:    "is a directory",
			},
		},
		{
			name: "plain error becomes internal without repeating itself",
			err:  errors.New("boom"),
			want: &Record{Code: ErrCodeInternal, Message: "boom", Category: CategoryInternal},
		},
		{
			name: "coded error found through wrapping",
			err:  fmt.Errorf("scan: %w", New(ErrCodeWalkFailed, "walk failed", nil)),
			want: &Record{Code: ErrCodeWalkFailed, Message: "walk failed", Category: CategoryIO},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToRecord(tt.err))
		})
	}
}

func TestFormatJSON_SingleLineObject(t *testing.T) {
	// Given: an unreadable rule file error
	err := New(ErrCodeFileRead, "failed to read rule file", nil).
		WithDetail("path", "/repo/.gitignore")

	// When: formatting as JSON
	data, jsonErr := FormatJSON(err)

	// Then: it is one line under an "error" key
	require.NoError(t, jsonErr)
	assert.NotContains(t, string(data), "\n")

	var got struct {
		Error Record `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, ErrCodeFileRead, got.Error.Code)
	assert.Equal(t, CategoryIO, got.Error.Category)
	assert.Equal(t, "/repo/.gitignore", got.Error.Details["path"])
}

func TestFormatJSON_Nil(t *testing.T) {
	data, err := FormatJSON(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error": null}`, string(data))
}

func TestFormatForCLI(t *testing.T) {
	// Given: an invalid path with details in random insertion order
	err := New(ErrCodeInvalidPath, "path is outside the project", nil).
		WithDetail("root", "/repo").
		WithDetail("path", "../x.log").
		WithSuggestion("Pass a path inside /repo")

	// When: formatting for the terminal
	got := FormatForCLI(err)

	// Then: message, sorted details, hint and code each get one line
	assert.Equal(t, "Error: path is outside the project\n"+
		"  path: ../x.log\n"+
		"  root: /repo\n"+
		"  Hint: Pass a path inside /repo\n"+
		"  Code: ERR_406_INVALID_PATH\n", got)
}

func TestFormatForCLI_CauseAndPlainErrors(t *testing.T) {
	withCause := FormatForCLI(New(ErrCodeWatchFailed, "watch error", errors.New("too many open files")))
	assert.Contains(t, withCause, "  cause: too many open files\n")
	assert.True(t, strings.HasSuffix(withCause, "  Code: ERR_209_WATCH_FAILED\n"))

	plain := FormatForCLI(errors.New("unknown flag: --bogus"))
	assert.Equal(t, "Error: unknown flag: --bogus\n  Code: ERR_501_INTERNAL\n", plain)

	assert.Empty(t, FormatForCLI(nil))
}

func TestLogAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	// When: logging a coded reload failure
	logger.Warn("reload failed", LogAttr(
		New(ErrCodeFileRead, "failed to read rule file", errors.New("permission denied")).
			WithDetail("path", "/repo/.gitignore")))

	// Then: the error is a nested group
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	group, ok := entry["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ErrCodeFileRead, group["code"])
	assert.Equal(t, "permission denied", group["cause"])
	assert.Equal(t, "/repo/.gitignore", group["path"])

	// And: plain errors stay a plain string
	buf.Reset()
	logger.Warn("x", LogAttr(errors.New("boom")))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
}
