// internal/config/normalize_test.go

package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestNormalize_FillsDefaults(t *testing.T) {
	cfg := valid()
	Normalize(cfg)

	if cfg.Driver.ModuleName != DefaultModuleName {
		t.Fatalf("module_name=%q", cfg.Driver.ModuleName)
	}
	if cfg.Driver.DeviceRoot != "/dev" || cfg.Driver.Permissions != "666" {
		t.Fatalf("driver=%+v", cfg.Driver)
	}
	if cfg.Sequences.Path != DefaultSequencePath {
		t.Fatalf("sequences.path=%q", cfg.Sequences.Path)
	}
	if cfg.SPI.TimeoutMs != 1000 || cfg.SPI.BackoffMs != 10 || cfg.SPI.ReadChunk != 1 {
		t.Fatalf("spi=%+v", cfg.SPI)
	}
	if cfg.Logs.Capacity != 100 || cfg.LogLevel() != slog.LevelInfo {
		t.Fatalf("logs=%+v", cfg.Logs)
	}
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	cfg := valid()
	cfg.SPI.TimeoutMs = 250
	cfg.Driver.Permissions = "660"
	cfg.Logs.Level = "debug"

	Normalize(cfg)

	if cfg.SPI.TimeoutMs != 250 || cfg.Driver.Permissions != "660" {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Fatalf("level=%v", cfg.LogLevel())
	}
}

func TestNormalize_Nil(t *testing.T) {
	Normalize(nil)
}

func TestMillis(t *testing.T) {
	if Millis(1500) != 1500*time.Millisecond {
		t.Fatalf("Millis wrong")
	}
}
