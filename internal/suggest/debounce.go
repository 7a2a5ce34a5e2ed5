package suggest

import (
	"sync"
	"time"
)

// DefaultInterval is the quiet period used when none is configured.
const DefaultInterval = 300 * time.Millisecond

// Debouncer delivers the last value passed to Trigger once no new value has
// arrived for the configured interval. Each Trigger cancels the pending
// delivery. There is no leading call and no maximum wait.
type Debouncer struct {
	interval time.Duration
	fn       func(string)

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer returns a debouncer calling fn on its own goroutine.
// A non-positive interval means DefaultInterval.
func NewDebouncer(interval time.Duration, fn func(string)) *Debouncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Debouncer{interval: interval, fn: fn}
}

// Trigger schedules fn(value) and cancels any pending call.
func (d *Debouncer) Trigger(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.interval, func() {
		d.fire(gen, value)
	})
}

// Stop cancels the pending call, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// A timer that already fired can race a newer Trigger; the generation
// check drops it.
func (d *Debouncer) fire(gen uint64, value string) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn(value)
}
