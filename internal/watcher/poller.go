package watcher

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// FilePoller detects changes to one file by comparing its modification time
// and size at a fixed interval. It is the fallback when fsnotify is
// unavailable.
type FilePoller struct {
	path     string
	interval time.Duration
	events   chan FileEvent
	stopCh   chan struct{}

	mu      sync.Mutex
	last    fileSnapshot
	stopped bool
}

type fileSnapshot struct {
	exists  bool
	modTime time.Time
	size    int64
}

// NewFilePoller creates a poller for path. The baseline is taken immediately,
// so only changes after this call are reported.
func NewFilePoller(path string, interval time.Duration) *FilePoller {
	return &FilePoller{
		path:     path,
		interval: interval,
		events:   make(chan FileEvent, 16),
		stopCh:   make(chan struct{}),
		last:     snapshot(path),
	}
}

func snapshot(path string) fileSnapshot {
	info, err := os.Stat(path)
	if err != nil {
		return fileSnapshot{}
	}
	return fileSnapshot{exists: true, modTime: info.ModTime(), size: info.Size()}
}

// Start polls until ctx is done or Stop is called.
func (p *FilePoller) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Stop()
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *FilePoller) poll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := snapshot(p.path)
	prev := p.last
	p.last = cur

	var op Operation
	switch {
	case !prev.exists && cur.exists:
		op = OpCreate
	case prev.exists && !cur.exists:
		op = OpDelete
	case cur.exists && (cur.modTime != prev.modTime || cur.size != prev.size):
		op = OpModify
	default:
		return
	}

	if p.stopped {
		return
	}
	select {
	case p.events <- FileEvent{Path: p.path, Operation: op, Timestamp: time.Now()}:
	default:
		slog.Warn("poller buffer full, dropping event",
			slog.String("path", p.path),
			slog.String("op", op.String()))
	}
}

// Events returns the channel of detected changes.
func (p *FilePoller) Events() <-chan FileEvent {
	return p.events
}

// Stop stops polling and closes Events. Safe to call multiple times.
func (p *FilePoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stopCh)
	close(p.events)
}
