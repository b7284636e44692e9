package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Record is the machine-readable form of an error. The CLI embeds it in
// --json output and writes it to stderr when a --json command fails.
type Record struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   Category          `json:"category"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// asIgnoreError returns the IgnoreError in err's chain, or err wrapped as
// an internal error.
func asIgnoreError(err error) *IgnoreError {
	var ie *IgnoreError
	if stderrors.As(err, &ie) {
		return ie
	}
	return Wrap(ErrCodeInternal, err)
}

// ToRecord converts err. It returns nil for a nil error.
func ToRecord(err error) *Record {
	if err == nil {
		return nil
	}
	ie := asIgnoreError(err)
	r := &Record{
		Code:       ie.Code,
		Message:    ie.Message,
		Category:   ie.Category,
		Details:    ie.Details,
		Suggestion: ie.Suggestion,
	}
	// A wrapped plain error repeats itself as its own cause.
	if ie.Cause != nil && ie.Cause.Error() != ie.Message {
		r.Cause = ie.Cause.Error()
	}
	return r
}

// FormatJSON renders err as a single-line {"error": {...}} object.
func FormatJSON(err error) ([]byte, error) {
	return json.Marshal(struct {
		Error *Record `json:"error"`
	}{ToRecord(err)})
}

// FormatForCLI renders err for a terminal:
//
//	Error: path is outside the project
//	  path: ../x.log
//	  Hint: Pass a path inside /repo
//	  Code: ERR_406_INVALID_PATH
//
// Details are printed in key order.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}
	ie := asIgnoreError(err)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", ie.Message)
	if ie.Cause != nil && ie.Cause.Error() != ie.Message {
		fmt.Fprintf(&sb, "  cause: %v\n", ie.Cause)
	}
	for _, k := range sortedKeys(ie.Details) {
		fmt.Fprintf(&sb, "  %s: %s\n", k, ie.Details[k])
	}
	if ie.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", ie.Suggestion)
	}
	fmt.Fprintf(&sb, "  Code: %s\n", ie.Code)
	return sb.String()
}

// LogAttr returns err as an "error" slog group carrying the code, message
// and details.
func LogAttr(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	var ie *IgnoreError
	if !stderrors.As(err, &ie) {
		return slog.String("error", err.Error())
	}

	attrs := []any{
		slog.String("code", ie.Code),
		slog.String("message", ie.Message),
	}
	if ie.Cause != nil {
		attrs = append(attrs, slog.String("cause", ie.Cause.Error()))
	}
	for _, k := range sortedKeys(ie.Details) {
		attrs = append(attrs, slog.String(k, ie.Details[k]))
	}
	return slog.Group("error", attrs...)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
