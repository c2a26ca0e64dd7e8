// internal/status/snapshot_test.go

package status

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tamzrod/spisim-control/internal/driver"
)

type fakeSource struct {
	loaded bool
	state  driver.State
	name   string
	path   string
}

func (f *fakeSource) IsLoaded(context.Context) bool { return f.loaded }
func (f *fakeSource) State() driver.State          { return f.state }
func (f *fakeSource) DeviceName() string           { return f.name }
func (f *fakeSource) DevicePath() string           { return f.path }
func (f *fakeSource) DriverPath() string           { return "/opt/spi_simulator_driver.ko" }

func TestCollectLoaded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spidev0.0")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := Collect(context.Background(), &fakeSource{
		loaded: true,
		state:  driver.Loaded,
		name:   "spidev0.0",
		path:   path,
	}, now)

	if !s.DriverLoaded || !s.DeviceExists {
		t.Fatalf("snapshot=%+v", s)
	}
	if s.State != driver.Loaded || s.DeviceName != "spidev0.0" || !s.At.Equal(now) {
		t.Fatalf("snapshot=%+v", s)
	}
}

func TestCollectUnloaded(t *testing.T) {
	s := Collect(context.Background(), &fakeSource{state: driver.Unloaded}, time.Now())

	if s.DriverLoaded || s.DeviceExists || s.DevicePath != "" {
		t.Fatalf("snapshot=%+v", s)
	}
}

func TestCollectMissingNode(t *testing.T) {
	s := Collect(context.Background(), &fakeSource{
		loaded: true,
		state:  driver.Loaded,
		name:   "spidev0.0",
		path:   filepath.Join(t.TempDir(), "gone"),
	}, time.Now())

	if s.DeviceExists {
		t.Fatalf("node does not exist")
	}
}
