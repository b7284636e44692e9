package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	ierrors "github.com/Aman-CERP/amanignore/internal/errors"
	"github.com/Aman-CERP/amanignore/internal/gitignore"
)

// Reloader recompiles a rule file when it changes and swaps the result into
// a Store.
type Reloader struct {
	path  string
	store *gitignore.Store
	opts  Options

	fsWatcher   *fsnotify.Watcher
	poller      *FilePoller
	useFsnotify bool
	debouncer   *Debouncer

	reloads chan ReloadEvent
	errors  chan error
	stopCh  chan struct{}

	mu            sync.RWMutex
	stopped       bool
	reloadMu      sync.Mutex
	droppedEvents atomic.Uint64
}

// NewReloader creates a Reloader for the rule file at path.
// The file does not need to exist yet; creating it triggers a reload.
func NewReloader(path string, store *gitignore.Store, opts Options) (*Reloader, error) {
	if store == nil {
		return nil, ierrors.ValidationError("reloader needs a store", nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve absolute path: %w", err)
	}
	opts = opts.WithDefaults()

	r := &Reloader{
		path:      abs,
		store:     store,
		opts:      opts,
		debouncer: NewDebouncer(opts.DebounceWindow),
		reloads:   make(chan ReloadEvent, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
	}

	if !opts.ForcePolling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			if err = fsw.Add(filepath.Dir(abs)); err == nil {
				r.fsWatcher = fsw
				r.useFsnotify = true
			} else {
				_ = fsw.Close()
			}
		}
		if err != nil {
			slog.Warn("fsnotify unavailable, falling back to polling",
				slog.String("path", abs),
				slog.String("error", err.Error()))
		}
	}
	if !r.useFsnotify {
		r.poller = NewFilePoller(abs, opts.PollInterval)
	}

	return r, nil
}

// Start watches until ctx is done or Stop is called.
// It returns ctx.Err() when the context ends the watch and nil after Stop.
func (r *Reloader) Start(ctx context.Context) error {
	go r.forwardDebounced(ctx)

	slog.Debug("watching rule file",
		slog.String("path", r.path),
		slog.String("mode", r.WatcherType()))

	if r.useFsnotify {
		return r.runFsnotify(ctx)
	}
	return r.runPolling(ctx)
}

func (r *Reloader) runFsnotify(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = r.Stop()
			return ctx.Err()
		case <-r.stopCh:
			return nil
		case ev, ok := <-r.fsWatcher.Events:
			if !ok {
				return nil
			}
			r.handleFsnotify(ev)
		case err, ok := <-r.fsWatcher.Errors:
			if !ok {
				return nil
			}
			r.emitError(ierrors.New(ierrors.ErrCodeWatchFailed, "watch error", err).
				WithDetail("path", r.path))
		}
	}
}

func (r *Reloader) runPolling(ctx context.Context) error {
	go func() {
		for ev := range r.poller.Events() {
			r.debouncer.Add(ev)
		}
	}()

	err := r.poller.Start(ctx)
	if ctx.Err() != nil {
		_ = r.Stop()
	}
	return err
}

// handleFsnotify keeps events for the rule file and drops the rest of the
// directory's traffic.
func (r *Reloader) handleFsnotify(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != r.path {
		return
	}

	var op Operation
	switch {
	case ev.Op&fsnotify.Create != 0:
		op = OpCreate
	case ev.Op&fsnotify.Write != 0:
		op = OpModify
	case ev.Op&fsnotify.Remove != 0:
		op = OpDelete
	case ev.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		// Chmod
		return
	}

	r.debouncer.Add(FileEvent{Path: r.path, Operation: op, Timestamp: time.Now()})
}

func (r *Reloader) forwardDebounced(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case batch, ok := <-r.debouncer.Output():
			if !ok {
				return
			}
			if len(batch) == 0 {
				continue
			}
			r.reload(batch[len(batch)-1].Operation)
		}
	}
}

// Reload recompiles the rule file now and swaps it into the store.
func (r *Reloader) Reload() ReloadEvent {
	return r.reload(OpModify)
}

func (r *Reloader) reload(trigger Operation) ReloadEvent {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	ev := ReloadEvent{Path: r.path, Trigger: trigger}

	rs, err := gitignore.LoadFile(r.path, r.opts.Extra)
	if err != nil {
		ev.Err = err
		current := r.store.Load()
		ev.Rules = current.Len()
		ev.Generation = current.Generation()
		slog.Warn("rule reload failed, keeping previous rules",
			slog.String("path", r.path),
			ierrors.LogAttr(err))
		r.emitReload(ev)
		return ev
	}

	old := r.store.Swap(rs)
	ev.Rules = rs.Len()
	ev.Generation = rs.Generation()
	ev.Added, ev.Removed = gitignore.Diff(old, rs)
	for _, w := range rs.Warnings() {
		ev.Warnings = append(ev.Warnings, fmt.Sprintf("line %d: %s: %s", w.Line, w.Message, w.Pattern))
		slog.Warn("ignore pattern warning",
			slog.String("path", r.path),
			slog.Int("line", w.Line),
			slog.String("pattern", w.Pattern),
			slog.String("message", w.Message))
	}

	slog.Info("rules reloaded",
		slog.String("path", r.path),
		slog.String("trigger", trigger.String()),
		slog.Int("rules", ev.Rules),
		slog.Uint64("generation", ev.Generation),
		slog.Any("added", ev.Added),
		slog.Any("removed", ev.Removed))

	r.emitReload(ev)
	return ev
}

func (r *Reloader) emitReload(ev ReloadEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		return
	}
	select {
	case r.reloads <- ev:
	default:
		n := r.droppedEvents.Add(1)
		slog.Warn("reload buffer full, dropping event",
			slog.Uint64("generation", ev.Generation),
			slog.Uint64("total_dropped", n))
	}
}

func (r *Reloader) emitError(err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		return
	}
	select {
	case r.errors <- err:
	default:
	}
}

// Stop stops watching and closes Reloads and Errors. Safe to call multiple times.
func (r *Reloader) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return nil
	}
	r.stopped = true
	close(r.stopCh)

	r.debouncer.Stop()
	if r.fsWatcher != nil {
		_ = r.fsWatcher.Close()
	}
	if r.poller != nil {
		r.poller.Stop()
	}

	close(r.reloads)
	close(r.errors)
	return nil
}

// Reloads returns the channel of reload reports.
func (r *Reloader) Reloads() <-chan ReloadEvent {
	return r.reloads
}

// Errors returns non-fatal watcher errors.
func (r *Reloader) Errors() <-chan error {
	return r.errors
}

// DroppedEvents returns the number of reload reports dropped because the
// Reloads buffer was full.
func (r *Reloader) DroppedEvents() uint64 {
	return r.droppedEvents.Load()
}

// WatcherType returns "fsnotify" or "polling".
func (r *Reloader) WatcherType() string {
	if r.useFsnotify {
		return "fsnotify"
	}
	return "polling"
}

// Path returns the absolute rule file path.
func (r *Reloader) Path() string {
	return r.path
}
