package robot

import (
	"sync"
	"time"

	"github.com/jun-zaga/RobotWebControl/pkg/clock"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

const (
	DefaultWatchdogTimeout = 600 * time.Millisecond
	DefaultWatchdogPeriod  = 100 * time.Millisecond
)

// Watchdog calls its expire function when no command was fed for longer
// than the timeout. Expiry is latched: it fires once and re-arms on the
// next Feed.
type Watchdog struct {
	mu      sync.Mutex
	clock   clock.Clock
	timeout time.Duration
	period  time.Duration
	expire  func()
	logger  customlog.Logger

	last    time.Time
	tripped bool
	trips   int
	timer   clock.Timer
	running bool
}

// NewWatchdog creates a stopped Watchdog. Zero durations use the defaults.
func NewWatchdog(clk clock.Clock, timeout, period time.Duration, expire func(), logger customlog.Logger) *Watchdog {
	if clk == nil {
		clk = clock.Real()
	}
	if timeout <= 0 {
		timeout = DefaultWatchdogTimeout
	}
	if period <= 0 {
		period = DefaultWatchdogPeriod
	}
	return &Watchdog{
		clock:   clk,
		timeout: timeout,
		period:  period,
		expire:  expire,
		logger:  logger,
	}
}

// Start begins periodic checks. The command age starts at zero.
func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.last = w.clock.Now()
	w.timer = w.clock.AfterFunc(w.period, w.check)
	w.logger.Infof("Watchdog started: timeout=%s period=%s", w.timeout, w.period)
}

// Stop ends periodic checks.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Feed records a fresh command and re-arms the watchdog.
func (w *Watchdog) Feed() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = w.clock.Now()
	w.tripped = false
}

// Tripped reports whether the watchdog expired since the last Feed.
func (w *Watchdog) Tripped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tripped
}

// Trips returns how many times the watchdog expired.
func (w *Watchdog) Trips() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.trips
}

// LastFeed returns when the last command was recorded.
func (w *Watchdog) LastFeed() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *Watchdog) check() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	age := w.clock.Now().Sub(w.last)
	fire := age > w.timeout && !w.tripped
	if fire {
		w.tripped = true
		w.trips++
	}
	w.timer = w.clock.AfterFunc(w.period, w.check)
	w.mu.Unlock()

	if fire {
		w.logger.Warnf("No command for %s, stopping", age)
		w.expire()
	}
}
