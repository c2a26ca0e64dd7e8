// internal/status/snapshot.go

// Package status assembles the point-in-time view of the control plane
// that is reported to callers.
package status

import (
	"context"
	"os"
	"time"

	"github.com/tamzrod/spisim-control/internal/driver"
)

// Snapshot is exactly what the status surface is allowed to report.
// It contains no logic and no memory of the past.
type Snapshot struct {
	DriverLoaded bool         `json:"driver_loaded"`
	DeviceExists bool         `json:"device_exists"`
	State        driver.State `json:"state"`
	DeviceName   string       `json:"device_name,omitempty"`
	DevicePath   string       `json:"device_path,omitempty"`
	DriverPath   string       `json:"driver_path"`
	At           time.Time    `json:"at"`
}

// Source is the part of the lifecycle manager a snapshot reads.
type Source interface {
	IsLoaded(ctx context.Context) bool
	State() driver.State
	DeviceName() string
	DevicePath() string
	DriverPath() string
}

// Collect queries the module listing first so the cached fields it
// reads afterwards have already been reconciled.
func Collect(ctx context.Context, src Source, now time.Time) Snapshot {
	loaded := src.IsLoaded(ctx)

	s := Snapshot{
		DriverLoaded: loaded,
		State:        src.State(),
		DeviceName:   src.DeviceName(),
		DevicePath:   src.DevicePath(),
		DriverPath:   src.DriverPath(),
		At:           now,
	}

	if s.DevicePath != "" {
		if _, err := os.Stat(s.DevicePath); err == nil {
			s.DeviceExists = true
		}
	}
	return s
}
