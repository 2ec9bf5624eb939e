//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
)

var errUnsupported = errors.New("service installation is only supported on linux")

func (i *Install) Run(logger *slog.Logger) error {
	return errUnsupported
}

func (u *Uninstall) Run(logger *slog.Logger) error {
	return errUnsupported
}
