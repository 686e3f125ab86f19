package joystick

import "time"

// DefaultSendHz is the maximum drive command rate.
const DefaultSendHz = 20

// Throttle enforces a minimum spacing between transmissions. Samples
// arriving too early are dropped, not queued.
type Throttle struct {
	period time.Duration
	last   time.Time
	sent   bool
}

// NewThrottle allows at most hz transmissions per second. hz <= 0
// disables throttling.
func NewThrottle(hz int) *Throttle {
	var period time.Duration
	if hz > 0 {
		period = time.Second / time.Duration(hz)
	}
	return &Throttle{period: period}
}

// Period is the minimum spacing between transmissions.
func (t *Throttle) Period() time.Duration {
	return t.period
}

// Allow reports whether a sample at now may be transmitted and, if so,
// records now as the last transmission time. Spacing is measured on
// initiation, never on completion.
func (t *Throttle) Allow(now time.Time) bool {
	if t.sent && now.Sub(t.last) < t.period {
		return false
	}
	t.last = now
	t.sent = true
	return true
}
