package panel

import (
	"sync"
	"time"

	"github.com/jun-zaga/RobotWebControl/pkg/clock"
)

// Debouncer runs the most recent action once the input has been quiet for
// the configured delay. Each Trigger cancels the pending action and
// reschedules.
type Debouncer struct {
	mu    sync.Mutex
	clock clock.Clock
	delay time.Duration
	timer clock.Timer
	gen   uint64
}

// NewDebouncer returns a Debouncer on clk.
func NewDebouncer(clk clock.Clock, delay time.Duration) *Debouncer {
	if clk == nil {
		clk = clock.Real()
	}
	return &Debouncer{clock: clk, delay: delay}
}

// Trigger schedules fn after the quiet period, replacing any pending action.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A real timer may fire after Stop lost the race.
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending action, if any. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}
