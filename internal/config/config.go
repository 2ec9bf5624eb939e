// Package config declares the CLI surface parsed by Kong.
package config

import (
	"github.com/Galtar27/PSMoveService/internal/cmd"
)

// Log holds the logging flags shared by every command.
type Log struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"PSMS_LOG_LEVEL"`
	File    string `help:"Write logs to this file in addition to the console" env:"PSMS_LOG_FILE"`
	RawFile string `help:"Write raw HID report dumps to this file" env:"PSMS_LOG_RAW_FILE"`
}

// CLI is the root command structure.
type CLI struct {
	Log    Log    `embed:"" prefix:"log."`
	Config string `help:"Path to a configuration file" type:"path"`

	Serve     cmd.Serve         `cmd:"" help:"Run the tracking server"`
	Hmds      cmd.Hmds          `cmd:"" help:"List the HMD sessions of a running server"`
	Install   cmd.Install       `cmd:"" help:"Install the server as a system service"`
	Uninstall cmd.Uninstall     `cmd:"" help:"Remove the system service"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Manage configuration files"`
}
