package watch

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces rapid events into a single callback invocation.
// Only the last event within the configured interval triggers the callback.
type Debouncer struct {
	interval time.Duration
	logger   *slog.Logger
	callback func(path string)

	mu       sync.Mutex
	timer    *time.Timer
	lastPath string
	pending  bool
}

// NewDebouncer creates a debouncer that waits for interval of quiet before
// firing callback with the path of the last event. A nil logger falls back
// to slog.Default().
func NewDebouncer(interval time.Duration, logger *slog.Logger, callback func(path string)) *Debouncer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Debouncer{
		interval: interval,
		logger:   logger,
		callback: callback,
	}
}

// Trigger records an event for path and restarts the quiet period.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lastPath = path
	d.pending = true

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}

	p := d.lastPath
	d.pending = false
	d.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("debouncer callback panicked", slog.String("path", p), slog.Any("error", r))
		}
	}()

	d.callback(p)
}

// Pending reports whether an event is waiting for its quiet period to end.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pending
}

// Stop cancels any pending debounced callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = false

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
