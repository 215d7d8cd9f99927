package pagination

import (
	"sync"
	"time"
)

// DefaultSearchDelay is how long a search term must sit unchanged before a
// fetch fires.
const DefaultSearchDelay = 500 * time.Millisecond

// Debouncer coalesces rapid triggers into one callback after a quiet period.
// Each Trigger cancels the previous pending callback.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer creates a debouncer. Non-positive delays use
// DefaultSearchDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the quiet period, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
