package watcher

import (
	"time"
)

// Operation is the kind of change seen on the rule file.
type Operation int

const (
	// OpCreate means the file appeared.
	OpCreate Operation = iota
	// OpModify means the file was written or replaced.
	OpModify
	// OpDelete means the file was removed.
	OpDelete
	// OpRename means the file was renamed away.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one observed change.
type FileEvent struct {
	Path      string
	Operation Operation
	Timestamp time.Time
}

// ReloadEvent reports one recompile of the rule file.
type ReloadEvent struct {
	// Path is the rule file.
	Path string
	// Trigger is the debounced operation that caused the reload.
	// OpModify for reloads requested with Reload.
	Trigger Operation
	// Rules is the number of compiled rules now in the store.
	Rules int
	// Warnings are the compile warnings of the new rule set.
	Warnings []string
	// Generation identifies the rule set now in the store.
	Generation uint64
	// Added and Removed list changed patterns.
	Added   []string
	Removed []string
	// Err is set when the file could not be read; the store keeps the
	// previous rule set.
	Err error
}

// Options configures a Reloader.
type Options struct {
	// DebounceWindow is the quiet time required before a reload.
	// Default: 200ms
	DebounceWindow time.Duration

	// PollInterval is the stat interval when polling.
	// Default: 2s
	PollInterval time.Duration

	// EventBufferSize is the size of the Reloads channel buffer.
	// Default: 16
	EventBufferSize int

	// ForcePolling skips fsnotify.
	ForcePolling bool

	// Extra patterns are compiled after the file's own lines on every reload.
	Extra []string
}

// DefaultOptions returns the default reloader options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  200 * time.Millisecond,
		PollInterval:    2 * time.Second,
		EventBufferSize: 16,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}
