// internal/config/load_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = `
driver:
  path: /opt/spisim/spi_simulator_driver.ko
  module_name: spi_simulator_driver
  device_root: /dev
  default_device_name: spi_test
  permissions: "666"
  device_poll_ms: 100
  device_wait_ms: 1000
sequences:
  path: /tmp/spi_sequences.json
spi:
  timeout_ms: 1000
  backoff_ms: 10
  read_chunk: 1
  serialize: true
process:
  timeout_ms: 5000
  sudo: true
logs:
  capacity: 200
  level: debug
api:
  listen: 127.0.0.1:5001
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spisimd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	require.Equal(t, "spi_test", cfg.Driver.DefaultDeviceName)
	require.True(t, cfg.SPI.Serialize)
	require.True(t, cfg.Process.Sudo)
	require.Equal(t, 200, cfg.Logs.Capacity)
	require.Equal(t, "127.0.0.1:5001", cfg.API.Listen)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("driver:\n  pth: /x.ko\n"))
	require.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse([]byte("  \n"))
	require.NoError(t, err)
	require.Equal(t, Config{}, *cfg)
}
