// internal/config/validate_test.go

package config

import (
	"strings"
	"testing"
)

// helper to build a minimal valid config quickly
func valid() *Config {
	return &Config{
		Driver: DriverConfig{
			Path: "/opt/spisim/spi_simulator_driver.ko",
		},
	}
}

// ---- tests ----

func TestValidate_MinimalConfigAccepted(t *testing.T) {
	if err := Validate(valid()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DriverPathRequired(t *testing.T) {
	cfg := valid()
	cfg.Driver.Path = ""

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "driver.path") {
		t.Fatalf("expected driver.path error, got %v", err)
	}
}

func TestValidate_PermissionsMustBeOctal(t *testing.T) {
	for _, mode := range []string{"666", "0660", "644", "4755"} {
		cfg := valid()
		cfg.Driver.Permissions = mode
		if err := Validate(cfg); err != nil {
			t.Fatalf("mode %q rejected: %v", mode, err)
		}
	}

	for _, mode := range []string{"rw-rw-rw-", "999", "a+rw", "77777"} {
		cfg := valid()
		cfg.Driver.Permissions = mode
		if err := Validate(cfg); err == nil {
			t.Fatalf("mode %q accepted", mode)
		}
	}
}

func TestValidate_DeviceRootMustBeAbsolute(t *testing.T) {
	cfg := valid()
	cfg.Driver.DeviceRoot = "dev"

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected device_root error, got nil")
	}
}

func TestValidate_PollLongerThanWait(t *testing.T) {
	cfg := valid()
	cfg.Driver.DevicePollMs = 500
	cfg.Driver.DeviceWaitMs = 100

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected poll/wait error, got nil")
	}
}

func TestValidate_NegativeDurations(t *testing.T) {
	cfg := valid()
	cfg.SPI.TimeoutMs = -1
	cfg.SPI.BackoffMs = -1
	cfg.Process.TimeoutMs = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	for _, want := range []string{"spi.timeout_ms", "spi.backoff_ms", "process.timeout_ms"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := valid()
	cfg.Logs.Level = "chatty"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected level error, got nil")
	}

	cfg.Logs.Level = "debug"
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Listen(t *testing.T) {
	cfg := valid()
	cfg.API.Listen = "5001"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected listen error, got nil")
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := valid()
	before := *cfg

	_ = Validate(cfg)

	if *cfg != before {
		t.Fatalf("Validate mutated config")
	}
}
