// internal/spi/channel.go

// Package spi exchanges raw command/response bytes with the simulated
// SPI device node: write the command, then poll-read the answer until
// the device goes quiet or the response deadline passes.
package spi

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tamzrod/spisim-control/internal/clock"
	"github.com/tamzrod/spisim-control/internal/hexcodec"
)

// Defaults for a zero Config.
const (
	DefaultTimeout   = time.Second
	DefaultBackoff   = 10 * time.Millisecond
	DefaultChunkSize = 1
)

// Config tunes the read loop.
type Config struct {
	// Timeout bounds the whole read loop, not a single read.
	Timeout time.Duration
	// Backoff is the pause after a read that would block.
	Backoff time.Duration
	// ChunkSize is the maximum number of bytes per read.
	ChunkSize int
	// Serialize holds a per-path lock for the duration of an exchange.
	Serialize bool
}

// Channel performs command exchanges. Each call opens and closes its
// own handle, so a Channel is safe for concurrent use.
type Channel struct {
	cfg    Config
	opener Opener
	clock  clock.Clock
	log    *slog.Logger
	stat   func(string) (os.FileInfo, error)

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New builds a Channel. Zero config fields take the package defaults.
func New(cfg Config, opener Opener, c clock.Clock, logger *slog.Logger) *Channel {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if opener == nil {
		opener = UnixOpener{}
	}
	if c == nil {
		c = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Channel{
		cfg:    cfg,
		opener: opener,
		clock:  c,
		log:    logger,
		stat:   os.Stat,
		locks:  make(map[string]*sync.Mutex),
	}
}

// SendCommand writes commandHex to the device at devicePath and collects
// the response. The caller must have checked that the driver is loaded.
func (c *Channel) SendCommand(ctx context.Context, devicePath, commandHex string) Result {
	if strings.TrimSpace(commandHex) == "" {
		return failure(KindProtocol, MsgNoCommand, nil)
	}

	cmd, err := hexcodec.Decode(commandHex)
	if err != nil {
		c.log.Warn("rejected command", "command", commandHex, "error", err)
		return failure(KindProtocol, MsgInvalidFormat, err)
	}

	c.log.Info("checking device", "path", devicePath)
	if _, err := c.stat(devicePath); err != nil {
		c.log.Warn("device does not exist", "path", devicePath)
		return failure(KindNotFound, MsgDeviceMissing, err)
	}

	if c.cfg.Serialize {
		l := c.lockFor(devicePath)
		l.Lock()
		defer l.Unlock()
	}

	dev, err := c.opener.Open(devicePath)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			c.log.Error("permission denied opening device", "path", devicePath)
			return failure(KindPermission, MsgPermission, err)
		}
		c.log.Error("error opening device", "path", devicePath, "error", err)
		return failure(KindIO, "error opening device: "+err.Error(), err)
	}
	defer func() {
		if cerr := dev.Close(); cerr != nil {
			c.log.Warn("error closing device", "path", devicePath, "error", cerr)
		}
	}()

	return c.exchange(ctx, dev, cmd)
}

func (c *Channel) exchange(ctx context.Context, dev Device, cmd []byte) Result {
	c.log.Info("sending command", "bytes", hexcodec.Encode(cmd))

	n, err := dev.Write(cmd)
	if err != nil {
		c.log.Error("write failed", "error", err)
		return failure(KindIO, "write failed: "+err.Error(), err)
	}
	if n != len(cmd) {
		c.log.Warn("short write", "written", n, "want", len(cmd))
	}

	resp, err := c.readResponse(ctx, dev)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.log.Warn("command cancelled", "received", len(resp))
		return failure(KindCancelled, MsgCancelled, err)
	case err != nil && len(resp) == 0:
		c.log.Error("read failed", "error", err)
		return failure(KindIO, "read failed: "+err.Error(), err)
	case err != nil:
		c.log.Warn("read failed, keeping partial response", "error", err, "received", len(resp))
	}

	if len(resp) == 0 {
		c.log.Info("no response received")
		return timeout()
	}

	out := hexcodec.Encode(resp)
	c.log.Info("received response", "bytes", out)
	return success(out)
}

// readResponse reads until a zero-byte read or until the overall
// timeout has elapsed. Would-block reads back off and retry within the
// same deadline. Bytes read before a stop are always returned.
func (c *Channel) readResponse(ctx context.Context, dev Device) ([]byte, error) {
	buf := make([]byte, c.cfg.ChunkSize)
	var resp []byte

	start := c.clock.Now()
	for c.clock.Since(start) < c.cfg.Timeout {
		if err := ctx.Err(); err != nil {
			return resp, err
		}

		n, err := dev.Read(buf)
		if n > 0 {
			resp = append(resp, buf[:n]...)
		}

		switch {
		case errors.Is(err, ErrWouldBlock):
			c.clock.Sleep(c.cfg.Backoff)
		case errors.Is(err, io.EOF):
			return resp, nil
		case err != nil:
			return resp, err
		case n == 0:
			return resp, nil
		}
	}

	return resp, nil
}

func (c *Channel) lockFor(path string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.locks[path]
	if !ok {
		l = &sync.Mutex{}
		c.locks[path] = l
	}
	return l
}
