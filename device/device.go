// Package device provides the common contracts for tracked peripherals: the
// poll result set, tracking descriptors consumed by the pose-estimation
// pipeline, the session interface every driver implements, and the kind
// registry drivers register into.
package device

import (
	"log/slog"

	"github.com/Galtar27/PSMoveService/hid"
	"github.com/Galtar27/PSMoveService/internal/log"
)

// PollResult is the outcome of one Poll call on a session.
type PollResult int

const (
	// PollFailure means the read failed or the session is not open.
	PollFailure PollResult = iota
	// PollSuccessNoData means the device queue was already drained.
	PollSuccessNoData
	// PollSuccessNewData means at least one new state was decoded.
	PollSuccessNewData
)

func (r PollResult) String() string {
	switch r {
	case PollSuccessNoData:
		return "no-data"
	case PollSuccessNewData:
		return "new-data"
	default:
		return "failure"
	}
}

// TrackingColor identifies the bulb/LED color assigned to a device for
// optical tracking.
type TrackingColor int

const (
	ColorMagenta TrackingColor = iota
	ColorCyan
	ColorYellow
	ColorRed
	ColorGreen
	ColorBlue
)

func (c TrackingColor) String() string {
	switch c {
	case ColorMagenta:
		return "magenta"
	case ColorCyan:
		return "cyan"
	case ColorYellow:
		return "yellow"
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	case ColorBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// TrackingShapeType selects which arm of TrackingShape is populated.
type TrackingShapeType int

const (
	// ShapeSphere is a single tracked sphere (Move controller bulb).
	ShapeSphere TrackingShapeType = iota
	// ShapePointCloud is a fixed set of tracked LED points (headset).
	ShapePointCloud
)

// TrackingShape describes the trackable geometry of a device kind. The
// values may be kind defaults when calibration has not measured the exact
// geometry yet.
type TrackingShape struct {
	Type         TrackingShapeType
	SphereRadius float64      // ShapeSphere
	Points       [][3]float64 // ShapePointCloud
}

// IMUSample is one decoded inertial reading: the raw 16-bit sensor counts
// widened to int32 plus the gain-calibrated vectors.
type IMUSample struct {
	RawAccel        [3]int32
	RawGyro         [3]int32
	CalibratedAccel [3]float64
	CalibratedGyro  [3]float64
}

// State is one decoded device state held in a session's history.
type State interface {
	// Sequence returns the poll sequence number the state was tagged with.
	Sequence() uint32
	// Samples returns the inertial sub-frames carried by the state, oldest
	// first.
	Samples() []IMUSample
}

// Tracked is one driver session owning a physical device. A session is
// confined to a single owner; none of its methods are safe for concurrent
// use.
type Tracked interface {
	Kind() hid.DeviceKind
	// Identifier returns the device path the session was opened against, or
	// "" before the first open.
	Identifier() string
	// Matches reports whether the enumerated candidate is the device this
	// session owns. Path comparison is case-insensitive.
	Matches(enum hid.Enumerator) bool
	// Open resolves and opens the session's channels from the enumerator.
	// Opening an already-open session is a successful no-op.
	Open(enum hid.Enumerator) error
	// Close is idempotent.
	Close()
	IsOpen() bool
	// Poll drains the device queue. Callers are expected to count
	// consecutive PollFailure results against MaxPollFailureCount and force
	// a close once the threshold is exceeded.
	Poll() PollResult
	// State returns the decoded state lookback entries behind the newest,
	// or false when the history does not reach that far back.
	State(lookback int) (State, bool)
	MaxPollFailureCount() int
	TrackingShape() TrackingShape
	TrackingColor() TrackingColor
}

// Options carries the collaborators a driver needs when constructed.
type Options struct {
	// Opener opens device node paths as non-blocking channels. Defaults to
	// the platform opener.
	Opener hid.Opener
	// SettingsDir is the directory holding per-driver calibration files.
	// Empty means in-memory settings only.
	SettingsDir string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// RawLogger receives raw report dumps; defaults to a no-op logger.
	RawLogger log.RawLogger
}
