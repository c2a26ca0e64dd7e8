// internal/clock/fake.go

package clock

import (
	"sync"
	"time"
)

// FakeClock is a deterministic Clock for tests.
// Sleep does not block: it advances the fake time by d and returns.
// OnSleep, when set, runs after every advance (outside the lock) so a
// test can change the world at a given fake instant.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	slept   time.Duration
	sleeps  int

	OnSleep func(now time.Time)
}

// Fake returns a FakeClock starting at initial.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *FakeClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

func (c *FakeClock) Sleep(d time.Duration) {
	c.Advance(d)

	c.mu.Lock()
	c.slept += d
	c.sleeps++
	now := c.current
	hook := c.OnSleep
	c.mu.Unlock()

	if hook != nil {
		hook(now)
	}
}

// Advance moves the fake time forward without counting as a sleep.
func (c *FakeClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}

// Slept reports the total duration and number of Sleep calls.
func (c *FakeClock) Slept() (time.Duration, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept, c.sleeps
}
