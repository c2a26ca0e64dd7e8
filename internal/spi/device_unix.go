// internal/spi/device_unix.go

//go:build unix

package spi

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// UnixOpener opens device nodes non-blocking through raw file descriptors.
type UnixOpener struct{}

// Open opens path O_RDWR|O_NONBLOCK. Permission failures wrap
// fs.ErrPermission (unix.Errno implements errors.Is for it).
func (UnixOpener) Open(path string) (Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("spi: open %s: %w", path, err)
	}
	return &fdDevice{fd: fd}, nil
}

type fdDevice struct {
	fd int
}

func (d *fdDevice) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(d.fd, p)
		switch {
		case err == nil:
			return n, nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, ErrWouldBlock
		default:
			return 0, fmt.Errorf("spi: read: %w", err)
		}
	}
}

func (d *fdDevice) Write(p []byte) (int, error) {
	for {
		n, err := unix.Write(d.fd, p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("spi: write: %w", err)
		}
		return n, nil
	}
}

func (d *fdDevice) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
