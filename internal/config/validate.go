// internal/config/validate.go

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values are accepted; Normalize fills them in.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	var errs []string

	// ------------------------------------------------------------
	// DRIVER
	// ------------------------------------------------------------

	d := cfg.Driver

	if d.Path == "" {
		errs = append(errs, "driver.path is required")
	}

	if d.ModuleName != "" && strings.ContainsAny(d.ModuleName, " \t/") {
		errs = append(errs, fmt.Sprintf("driver.module_name %q must be a bare module name", d.ModuleName))
	}

	if d.DeviceRoot != "" && !filepath.IsAbs(d.DeviceRoot) {
		errs = append(errs, fmt.Sprintf("driver.device_root %q must be absolute", d.DeviceRoot))
	}

	if d.DefaultDeviceName != "" && strings.ContainsAny(d.DefaultDeviceName, "/ \t") {
		errs = append(errs, fmt.Sprintf("driver.default_device_name %q must be a single path element", d.DefaultDeviceName))
	}

	if d.Permissions != "" {
		if v, err := strconv.ParseUint(d.Permissions, 8, 32); err != nil || v > 0o7777 {
			errs = append(errs, fmt.Sprintf("driver.permissions %q must be an octal mode", d.Permissions))
		}
	}

	if d.DevicePollMs < 0 {
		errs = append(errs, "driver.device_poll_ms must be >= 0")
	}
	if d.DeviceWaitMs < 0 {
		errs = append(errs, "driver.device_wait_ms must be >= 0")
	}
	if d.DevicePollMs > 0 && d.DeviceWaitMs > 0 && d.DevicePollMs > d.DeviceWaitMs {
		errs = append(errs, fmt.Sprintf(
			"driver.device_poll_ms (%d) exceeds driver.device_wait_ms (%d)",
			d.DevicePollMs,
			d.DeviceWaitMs,
		))
	}

	// ------------------------------------------------------------
	// SPI EXCHANGE
	// ------------------------------------------------------------

	s := cfg.SPI

	if s.TimeoutMs < 0 {
		errs = append(errs, "spi.timeout_ms must be >= 0")
	}
	if s.BackoffMs < 0 {
		errs = append(errs, "spi.backoff_ms must be >= 0")
	}
	if s.ReadChunk < 0 || s.ReadChunk > 4096 {
		errs = append(errs, "spi.read_chunk must be between 0 and 4096")
	}

	// ------------------------------------------------------------
	// PROCESS / LOGS / API
	// ------------------------------------------------------------

	if cfg.Process.TimeoutMs < 0 {
		errs = append(errs, "process.timeout_ms must be >= 0")
	}

	if cfg.Logs.Capacity < 0 {
		errs = append(errs, "logs.capacity must be >= 0")
	}
	if cfg.Logs.Level != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(cfg.Logs.Level)); err != nil {
			errs = append(errs, fmt.Sprintf("logs.level %q is not a log level", cfg.Logs.Level))
		}
	}

	if cfg.API.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.API.Listen); err != nil {
			errs = append(errs, fmt.Sprintf("api.listen %q: %v", cfg.API.Listen, err))
		}
	}

	if len(errs) > 0 {
		return errors.New("config: " + strings.Join(errs, " | "))
	}
	return nil
}
