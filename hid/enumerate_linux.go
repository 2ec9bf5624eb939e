//go:build linux

package hid

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const sysHidrawDir = "/sys/class/hidraw"

// USB identity of the supported peripherals.
const (
	sonyVendorID      = 0x054c
	morpheusProductID = 0x09af
	psmoveProductID   = 0x03d5
)

// sysfsEnumerator is the default Linux Enumerator. One instance covers a whole
// physical USB device; each exposed HID interface maps to its hidraw node.
type sysfsEnumerator struct {
	kind       DeviceKind
	devicePath string
	interfaces map[int]string
}

func (e *sysfsEnumerator) DeviceKind() DeviceKind { return e.kind }
func (e *sysfsEnumerator) Path() string           { return e.devicePath }

func (e *sysfsEnumerator) InterfacePath(iface int) string {
	return e.interfaces[iface]
}

// Enumerate walks /sys/class/hidraw and groups the hidraw nodes of known
// peripherals by their parent USB device. The result order is unspecified.
func Enumerate() ([]Enumerator, error) {
	entries, err := os.ReadDir(sysHidrawDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("hid: enumerate: %w", err)
	}

	byDevice := make(map[string]*sysfsEnumerator)
	var out []Enumerator
	for _, entry := range entries {
		node := filepath.Join(sysHidrawDir, entry.Name())
		hidDev, err := filepath.EvalSymlinks(filepath.Join(node, "device"))
		if err != nil {
			continue
		}
		vendor, product, ok := readHidID(filepath.Join(hidDev, "uevent"))
		if !ok {
			continue
		}
		kind := kindForUSBID(vendor, product)
		if kind == KindUnknown {
			continue
		}
		usbDevice, iface, ok := splitUSBInterface(hidDev)
		if !ok {
			continue
		}

		enum := byDevice[usbDevice]
		if enum == nil {
			enum = &sysfsEnumerator{
				kind:       kind,
				devicePath: usbDevice,
				interfaces: make(map[int]string),
			}
			byDevice[usbDevice] = enum
			out = append(out, enum)
		}
		enum.interfaces[iface] = filepath.Join("/dev", entry.Name())
	}
	return out, nil
}

func kindForUSBID(vendor, product uint16) DeviceKind {
	if vendor != sonyVendorID {
		return KindUnknown
	}
	switch product {
	case morpheusProductID:
		return KindMorpheus
	case psmoveProductID:
		return KindPSMove
	default:
		return KindUnknown
	}
}

// readHidID parses the HID_ID line of a hid device uevent file,
// e.g. "HID_ID=0003:0000054C:000009AF".
func readHidID(path string) (vendor, product uint16, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	scan := bufio.NewScanner(f)
	for scan.Scan() {
		line := scan.Text()
		if !strings.HasPrefix(line, "HID_ID=") {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(line, "HID_ID="), ":")
		if len(parts) != 3 {
			return 0, 0, false
		}
		v, err1 := strconv.ParseUint(parts[1], 16, 32)
		p, err2 := strconv.ParseUint(parts[2], 16, 32)
		if err1 != nil || err2 != nil {
			return 0, 0, false
		}
		return uint16(v), uint16(p), true
	}
	return 0, 0, false
}

// splitUSBInterface splits a sysfs HID device path into the parent USB device
// path and the USB interface number. The interface path element looks like
// "1-2:1.4" (bus-port:config.interface).
func splitUSBInterface(hidDevPath string) (usbDevice string, iface int, ok bool) {
	dir := hidDevPath
	for dir != "/" && dir != "." {
		base := filepath.Base(dir)
		if colon := strings.LastIndexByte(base, ':'); colon >= 0 {
			if dot := strings.LastIndexByte(base, '.'); dot > colon {
				n, err := strconv.Atoi(base[dot+1:])
				if err == nil {
					return filepath.Dir(dir), n, true
				}
			}
		}
		dir = filepath.Dir(dir)
	}
	return "", 0, false
}
