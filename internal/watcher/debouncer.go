package watcher

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Debouncer coalesces bursts of events into one batch per quiet window.
// Editors save in several steps (truncate and write, or write a temp file and
// rename it over the original), so a single save arrives as several events.
//
// Events for the same path merge as follows:
//   - CREATE then MODIFY  = CREATE
//   - CREATE then DELETE  = nothing
//   - DELETE then CREATE  = MODIFY
//   - anything else       = the later event
type Debouncer struct {
	window time.Duration
	output chan []FileEvent

	mu      sync.Mutex
	pending map[string]FileEvent
	first   map[string]Operation
	order   []string
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer that flushes after window without new events.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		output:  make(chan []FileEvent, 10),
		pending: make(map[string]FileEvent),
		first:   make(map[string]Operation),
	}
}

// Add queues an event and restarts the quiet window.
func (d *Debouncer) Add(ev FileEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if prev, ok := d.pending[ev.Path]; ok {
		merged, keep := mergeOps(d.first[ev.Path], ev.Operation)
		if !keep {
			delete(d.pending, ev.Path)
			delete(d.first, ev.Path)
			d.order = slices.DeleteFunc(d.order, func(p string) bool { return p == ev.Path })
		} else {
			if merged == d.first[ev.Path] {
				ev = FileEvent{Path: prev.Path, Operation: merged, Timestamp: ev.Timestamp}
			} else {
				ev.Operation = merged
			}
			d.pending[ev.Path] = ev
		}
	} else {
		d.pending[ev.Path] = ev
		d.first[ev.Path] = ev.Operation
		d.order = append(d.order, ev.Path)
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// mergeOps returns the operation that replaces first followed by next, and
// false when the two cancel out.
func mergeOps(first, next Operation) (Operation, bool) {
	switch {
	case first == OpCreate && next == OpModify:
		return OpCreate, true
	case first == OpCreate && next == OpDelete:
		return 0, false
	case first == OpDelete && next == OpCreate:
		return OpModify, true
	default:
		return next, true
	}
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || len(d.pending) == 0 {
		return
	}

	batch := make([]FileEvent, 0, len(d.pending))
	for _, p := range d.order {
		if ev, ok := d.pending[p]; ok {
			batch = append(batch, ev)
		}
	}
	d.pending = make(map[string]FileEvent)
	d.first = make(map[string]Operation)
	d.order = d.order[:0]

	select {
	case d.output <- batch:
	default:
		slog.Warn("debouncer output full, dropping batch",
			slog.Int("batch_size", len(batch)))
	}
}

// Output returns the channel of debounced batches, in first-seen order.
func (d *Debouncer) Output() <-chan []FileEvent {
	return d.output
}

// Stop discards pending events and closes the output channel.
// Safe to call multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.output)
}
