//go:build linux

package hid

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// HidrawChannel is a Channel over a Linux hidraw device node opened in
// non-blocking mode.
type HidrawChannel struct {
	fd   int
	path string
}

// HidrawOpener opens hidraw device nodes as non-blocking channels.
type HidrawOpener struct{}

func (HidrawOpener) Open(path string) (Channel, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("hid: open %s: %w", path, err)
	}
	return &HidrawChannel{fd: fd, path: path}, nil
}

// Read dequeues at most one report. A drained OS queue yields (0, nil) rather
// than blocking.
func (c *HidrawChannel) Read(p []byte) (int, error) {
	n, err := unix.Read(c.fd, p)
	if err == unix.EAGAIN {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("hid: read %s: %w", c.path, err)
	}
	return n, nil
}

func (c *HidrawChannel) Write(p []byte) (int, error) {
	n, err := unix.Write(c.fd, p)
	if err != nil {
		return n, fmt.Errorf("hid: write %s: %w", c.path, err)
	}
	return n, nil
}

func (c *HidrawChannel) Path() string { return c.path }

func (c *HidrawChannel) Close() error {
	return unix.Close(c.fd)
}

// DefaultOpener returns the platform channel opener.
func DefaultOpener() Opener { return HidrawOpener{} }
