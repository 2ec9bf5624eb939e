// Package morpheus drives the PlayStation VR headset over raw HID. One HMD
// value owns the two USB interfaces the driver needs, decodes the inertial
// sensor stream into a bounded state history, and persists its calibration
// document between runs.
package morpheus

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Galtar27/PSMoveService/device"
	"github.com/Galtar27/PSMoveService/hid"
	"github.com/Galtar27/PSMoveService/internal/log"
	"github.com/Galtar27/PSMoveService/internal/settings"
)

func init() {
	device.Register(hid.KindMorpheus, func(o device.Options) (device.Tracked, error) {
		return New(o)
	})
}

// HMD is one headset driver session. It is confined to a single owner; no
// method is safe for concurrent use.
type HMD struct {
	cfg      Config
	settings *settings.Store
	opener   hid.Opener
	logger   *slog.Logger
	raw      log.RawLogger

	identifier string
	sensor     hid.Channel
	command    hid.Channel

	nextPollSequence uint32
	inBuf            [SensorReportSize]byte
	states           History
}

// New constructs a closed session and loads its calibration document.
func New(o device.Options) (*HMD, error) {
	if o.Opener == nil {
		o.Opener = hid.DefaultOpener()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.RawLogger == nil {
		o.RawLogger = log.NewRaw(nil)
	}

	var store *settings.Store
	if o.SettingsDir == "" {
		store = settings.NewMemory()
	} else {
		var err error
		store, err = settings.Open(filepath.Join(o.SettingsDir, settingsFileName))
		if err != nil {
			return nil, err
		}
	}

	h := &HMD{
		cfg:      DefaultConfig(),
		settings: store,
		opener:   o.Opener,
		logger:   o.Logger.With("driver", "morpheus"),
		raw:      o.RawLogger,
	}
	h.cfg.LoadFrom(store, h.logger)
	return h, nil
}

// Kind implements device.Tracked.
func (h *HMD) Kind() hid.DeviceKind { return hid.KindMorpheus }

// Identifier returns the device path the session was opened against.
func (h *HMD) Identifier() string { return h.identifier }

// Config returns the session's current calibration values.
func (h *HMD) Config() Config { return h.cfg }

// IsOpen reports whether both HID interfaces are open.
func (h *HMD) IsOpen() bool { return h.sensor != nil && h.command != nil }

// Matches reports whether the enumerated candidate is this session's device.
// A session that has never been opened matches any headset candidate; an
// opened one additionally requires its own device path, compared
// case-insensitively.
func (h *HMD) Matches(enum hid.Enumerator) bool {
	if enum.DeviceKind() != hid.KindMorpheus {
		return false
	}
	return h.identifier == "" || strings.EqualFold(h.identifier, enum.Path())
}

// Open opens the sensor and command interfaces of the enumerated candidate.
// Opening an already-open session logs a warning and succeeds without
// touching the existing channels. A partial failure closes whichever channel
// did open, so the session is never left half-open.
func (h *HMD) Open(enum hid.Enumerator) error {
	if h.IsOpen() {
		h.logger.Warn("open called on already-open session", "path", h.identifier)
		return nil
	}
	if !h.Matches(enum) {
		return fmt.Errorf("morpheus: enumerator %s does not match this session", enum.Path())
	}

	sensorPath := enum.InterfacePath(SensorInterface)
	commandPath := enum.InterfacePath(CommandInterface)
	if sensorPath == "" || commandPath == "" {
		return fmt.Errorf("morpheus: device %s does not expose interfaces %d and %d",
			enum.Path(), SensorInterface, CommandInterface)
	}

	sensor, err := h.opener.Open(sensorPath)
	if err != nil {
		return fmt.Errorf("morpheus: open sensor interface %s: %w", sensorPath, err)
	}
	command, err := h.opener.Open(commandPath)
	if err != nil {
		_ = sensor.Close()
		return fmt.Errorf("morpheus: open command interface %s: %w", commandPath, err)
	}

	h.sensor = sensor
	h.command = command
	h.identifier = enum.Path()
	h.nextPollSequence = 0
	h.states.Clear()

	h.logger.Info("opened headset", "path", h.identifier,
		"sensor", sensorPath, "command", commandPath)

	if err := h.cfg.SaveTo(h.settings); err != nil {
		h.logger.Warn("failed to save calibration config", "err", err)
	}
	return nil
}

// Close closes whichever channels are open. Closing a closed session is a
// logged no-op.
func (h *HMD) Close() {
	if h.sensor == nil && h.command == nil {
		h.logger.Debug("close called on already-closed session", "path", h.identifier)
		return
	}
	if h.sensor != nil {
		h.logger.Info("closing sensor interface", "path", h.sensor.Path())
		_ = h.sensor.Close()
		h.sensor = nil
	}
	if h.command != nil {
		h.logger.Info("closing command interface", "path", h.command.Path())
		_ = h.command.Close()
		h.command = nil
	}
	h.inBuf = [SensorReportSize]byte{}
}

// Poll drains the sensor queue. Each queued report is decoded, tagged with
// the next poll sequence number, and pushed into the history. At most
// maxPollIterations reports are consumed per call.
func (h *HMD) Poll() device.PollResult {
	if !h.IsOpen() {
		return device.PollFailure
	}

	result := device.PollSuccessNoData
	for i := 0; i < maxPollIterations; i++ {
		n, err := h.sensor.Read(h.inBuf[:])
		if err != nil {
			h.logger.Error("sensor read failed", "path", h.sensor.Path(), "err", err)
			return device.PollFailure
		}
		if n == 0 {
			return result
		}
		if n < SensorReportSize {
			h.logger.Error("short sensor report", "path", h.sensor.Path(),
				"got", n, "want", SensorReportSize)
			return device.PollFailure
		}

		h.raw.Report(true, h.sensor.Path(), h.inBuf[:n])

		report, err := ParseSensorReport(h.inBuf[:n], &h.cfg)
		if err != nil {
			h.logger.Error("sensor report decode failed", "path", h.sensor.Path(), "err", err)
			return device.PollFailure
		}

		h.states.Push(State{PollSequenceNumber: h.nextPollSequence, Report: report})
		h.nextPollSequence++
		result = device.PollSuccessNewData
	}
	return result
}

// State implements device.Tracked.
func (h *HMD) State(lookback int) (device.State, bool) {
	s, ok := h.states.At(lookback)
	if !ok {
		return nil, false
	}
	return s, true
}

// MaxPollFailureCount returns the configured consecutive-failure threshold
// after which the caller should force a close.
func (h *HMD) MaxPollFailureCount() int { return h.cfg.MaxPollFailureCount }

// TrackingShape returns the headset's trackable LED geometry. The point
// positions are placeholders until per-unit geometry is measured.
// TODO: fill in the measured LED offsets from the headset mechanical drawings.
func (h *HMD) TrackingShape() device.TrackingShape {
	return device.TrackingShape{
		Type:   device.ShapePointCloud,
		Points: make([][3]float64, 7),
	}
}

// TrackingColor returns the LED color assigned for optical tracking.
func (h *HMD) TrackingColor() device.TrackingColor { return h.cfg.TrackingColor }
