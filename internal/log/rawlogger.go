package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger receives raw HID report dumps from the drivers.
type RawLogger interface {
	// Report logs one report. in=true is device-to-host (sensor reports),
	// in=false is host-to-device (command writes).
	Report(in bool, devicePath string, data []byte)
}

type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a RawLogger writing hex dumps to w. A nil writer yields a
// no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

func (r *rawLogger) Report(in bool, devicePath string, data []byte) {
	if r.w == nil || len(data) == 0 {
		return
	}

	dir := "HOST->DEV"
	if in {
		dir = "DEV->HOST"
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %s %s: %d bytes, hex: %s\n",
		time.Now().Format("2006/01/02 15:04:05"),
		dir, devicePath, len(data), hexbuf.String())

	r.mu.Lock()
	_, _ = r.w.Write([]byte(line))
	r.mu.Unlock()
}
