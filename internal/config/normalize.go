// internal/config/normalize.go

package config

import (
	"log/slog"
	"time"
)

// Defaults applied by Normalize.
const (
	DefaultModuleName    = "spi_simulator_driver"
	DefaultDeviceRoot    = "/dev"
	DefaultDeviceName    = "spidev0.0"
	DefaultPermissions   = "666"
	DefaultDevicePollMs  = 100
	DefaultDeviceWaitMs  = 1000
	DefaultSequencePath  = "/tmp/spi_sequences.json"
	DefaultSPITimeoutMs  = 1000
	DefaultSPIBackoffMs  = 10
	DefaultSPIReadChunk  = 1
	DefaultProcTimeoutMs = 10000
	DefaultLogCapacity   = 100
	DefaultLogLevel      = "info"
	DefaultListen        = "0.0.0.0:5001"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.Driver
	setString(&d.ModuleName, DefaultModuleName)
	setString(&d.DeviceRoot, DefaultDeviceRoot)
	setString(&d.DefaultDeviceName, DefaultDeviceName)
	setString(&d.Permissions, DefaultPermissions)
	setInt(&d.DevicePollMs, DefaultDevicePollMs)
	setInt(&d.DeviceWaitMs, DefaultDeviceWaitMs)

	setString(&cfg.Sequences.Path, DefaultSequencePath)

	s := &cfg.SPI
	setInt(&s.TimeoutMs, DefaultSPITimeoutMs)
	setInt(&s.BackoffMs, DefaultSPIBackoffMs)
	setInt(&s.ReadChunk, DefaultSPIReadChunk)

	setInt(&cfg.Process.TimeoutMs, DefaultProcTimeoutMs)

	setInt(&cfg.Logs.Capacity, DefaultLogCapacity)
	setString(&cfg.Logs.Level, DefaultLogLevel)

	setString(&cfg.API.Listen, DefaultListen)
}

// LogLevel returns the configured level; call after Normalize.
func (c *Config) LogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Logs.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Millis converts a millisecond config field to a duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}
