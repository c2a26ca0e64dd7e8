// internal/spi/device.go

package spi

import "errors"

// ErrWouldBlock is returned by Device.Read when no data is available yet.
var ErrWouldBlock = errors.New("spi: read would block")

// Device is an open handle on a device node.
// Read returns (0, nil) or io.EOF when the peer has nothing more to send.
type Device interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Opener opens a device node for read-write access.
type Opener interface {
	Open(path string) (Device, error)
}
