// internal/logbuf/handler_test.go

package logbuf

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandlerRendersMessageAndAttrs(t *testing.T) {
	b := fixedBuffer(10)
	logger := slog.New(NewHandler(b, nil, slog.LevelInfo))

	logger.Info("driver loaded", "device", "spidev0.0")
	logger.Warn("short write", "written", 1, "want", 2)

	require.Equal(t, []string{
		"driver loaded device=spidev0.0",
		"[WARN] short write written=1 want=2",
	}, messages(b))
}

func TestHandlerLevelFilter(t *testing.T) {
	b := fixedBuffer(10)
	logger := slog.New(NewHandler(b, nil, slog.LevelInfo))

	logger.Debug("noise")
	require.Equal(t, 0, b.Len())
}

func TestHandlerForwardsToNext(t *testing.T) {
	b := fixedBuffer(10)
	var out bytes.Buffer
	next := slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := slog.New(NewHandler(b, next, slog.LevelInfo)).With("component", "spi")
	logger.Debug("read chunk")
	logger.Info("command sent")

	require.Equal(t, []string{"command sent component=spi"}, messages(b))
	require.Contains(t, out.String(), "msg=\"read chunk\"")
	require.Contains(t, out.String(), "component=spi")
}

func TestHandlerGroupsAndQuoting(t *testing.T) {
	b := fixedBuffer(10)
	logger := slog.New(NewHandler(b, nil, nil)).WithGroup("driver")

	logger.Info("insmod failed", "stderr", "Operation not permitted")

	got := messages(b)
	require.Len(t, got, 1)
	require.True(t, strings.HasSuffix(got[0], `driver.stderr="Operation not permitted"`), got[0])
}

func TestHandlerDedupsRenderedMessages(t *testing.T) {
	b := fixedBuffer(10)
	logger := slog.New(NewHandler(b, nil, nil))

	logger.Info("checking device")
	logger.Info("checking device")
	logger.Info("checking device", "attempt", 2)

	require.Equal(t, 2, b.Len())
}
