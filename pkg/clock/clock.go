// Package clock abstracts wall time and deferred callbacks so throttles,
// debouncers and watchdogs can run against a simulated clock in tests.
package clock

import "time"

// Clock provides the current time and callback scheduling.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f on its own goroutine (real clock) or on the
	// goroutine advancing the clock (fake clock) once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
