// internal/spi/device_other.go

//go:build !unix

package spi

import "errors"

// UnixOpener is unavailable on this platform.
type UnixOpener struct{}

func (UnixOpener) Open(path string) (Device, error) {
	return nil, errors.New("spi: device nodes require a unix system")
}
