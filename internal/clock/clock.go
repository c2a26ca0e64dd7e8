// internal/clock/clock.go

// Package clock abstracts the time operations used by the polling loops
// (device node wait, response read) so tests can drive deadlines
// without sleeping.
package clock

import "time"

// Clock is the subset of the time package the control plane depends on.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	Sleep(d time.Duration)
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time                  { return time.Now() }
func (realClock) Since(t time.Time) time.Duration { return time.Since(t) }
func (realClock) Sleep(d time.Duration)           { time.Sleep(d) }
