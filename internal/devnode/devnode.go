// internal/devnode/devnode.go

// Package devnode waits for a device node to appear after a kernel
// module has been inserted.
package devnode

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/tamzrod/spisim-control/internal/clock"
)

// ErrTimeout is returned when the node is still absent at the deadline.
var ErrTimeout = errors.New("devnode: device not created")

// Config is the minimal runtime config the waiter needs.
type Config struct {
	Interval time.Duration
	Deadline time.Duration
}

// Waiter is a dumb, clock-driven stat loop.
type Waiter struct {
	cfg   Config
	clock clock.Clock
	stat  func(string) (os.FileInfo, error)
}

// New creates a waiter with immutable config.
func New(cfg Config, c clock.Clock) (*Waiter, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("devnode: interval must be > 0")
	}
	if cfg.Deadline <= 0 {
		return nil, errors.New("devnode: deadline must be > 0")
	}
	if c == nil {
		c = clock.Real()
	}
	return &Waiter{cfg: cfg, clock: c, stat: os.Stat}, nil
}

// Exists reports whether path can be stat'ed.
func (w *Waiter) Exists(path string) bool {
	_, err := w.stat(path)
	return err == nil
}

// Wait polls path every interval until it exists or the deadline passes.
// The deadline covers the whole wait, not a single attempt.
func (w *Waiter) Wait(ctx context.Context, path string) error {
	start := w.clock.Now()

	for {
		if w.Exists(path) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		remaining := w.cfg.Deadline - w.clock.Since(start)
		if remaining <= 0 {
			return ErrTimeout
		}

		step := w.cfg.Interval
		if step > remaining {
			step = remaining
		}
		w.clock.Sleep(step)
	}
}
