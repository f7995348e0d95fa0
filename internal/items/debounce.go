package items

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Debouncer coalesces rapid edits into one sync per order: each Trigger
// resets the order's timer, and only the last function runs once the edits
// go quiet for the configured delay.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[uuid.UUID]*time.Timer
}

// NewDebouncer builds a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		timers: map[uuid.UUID]*time.Timer{},
	}
}

// Trigger schedules fn for the key, replacing any pending schedule.
func (d *Debouncer) Trigger(key uuid.UUID, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops any pending schedule for the key.
func (d *Debouncer) Cancel(key uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		delete(d.timers, key)
	}
}

// Stop cancels every pending schedule.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}
