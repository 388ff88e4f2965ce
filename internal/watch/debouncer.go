package watch

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces a burst of events into one callback. The callback
// receives the last path seen and the number of events in the burst.
// Callbacks never overlap; a burst that settles while one is running waits
// for it to return.
type Debouncer struct {
	interval time.Duration
	callback func(path string, events int)
	logger   *slog.Logger

	runMu sync.Mutex

	mu       sync.Mutex
	timer    *time.Timer
	lastPath string
	pending  int
}

// NewDebouncer creates a debouncer that fires callback after interval of
// quiet. A nil logger falls back to slog.Default().
func NewDebouncer(interval time.Duration, logger *slog.Logger, callback func(path string, events int)) *Debouncer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Debouncer{
		interval: interval,
		callback: callback,
		logger:   logger,
	}
}

// Trigger records an event for path and restarts the quiet period.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lastPath = path
	d.pending++

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("debouncer callback panicked", slog.Any("error", r))
		}
	}()

	d.mu.Lock()
	p, n := d.lastPath, d.pending
	d.pending = 0
	d.mu.Unlock()

	if n == 0 {
		return
	}

	d.callback(p, n)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.pending = 0
}
