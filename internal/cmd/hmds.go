package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/Galtar27/PSMoveService/apiclient"
)

// Hmds lists the device sessions of a running server.
type Hmds struct {
	Addr     string `help:"API server address" default:"localhost:9512" env:"PSMS_API_ADDR"`
	Password string `help:"API password; prompted for when omitted" env:"PSMS_API_PASSWORD"`
}

// Run is called by Kong when the hmds command is executed.
func (h *Hmds) Run(logger *slog.Logger) error {
	pwd := h.Password
	if pwd == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "API password (empty for none): ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		pwd = string(b)
	}

	var c *apiclient.Client
	if pwd != "" {
		c = apiclient.NewWithPassword(h.Addr, pwd)
	} else {
		c = apiclient.New(h.Addr)
	}

	resp, err := c.HmdList()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tPATH\tOPEN")
	for _, hmd := range resp.Hmds {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", hmd.HmdId, hmd.Kind, hmd.Path, hmd.Open)
	}
	return w.Flush()
}
