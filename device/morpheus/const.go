package morpheus

// The headset exposes its HID endpoints across several USB interfaces; the
// driver needs exactly two of them.
const (
	// SensorInterface streams the 48-byte sensor reports.
	SensorInterface = 4
	// CommandInterface accepts command/feature writes.
	CommandInterface = 5
)

const (
	// StateBufferMax is the capacity of the decoded state history.
	StateBufferMax = 4
	// maxPollIterations bounds the reads drained in a single Poll call so a
	// backlogged OS queue cannot starve the polling loop.
	maxPollIterations = 32
)

// Sensor report layout. Fixed 48-byte packet; two 12-byte inertial
// sub-frames per report.
const (
	SensorReportSize = 48
	SensorFrameSize  = 12

	reportButtonsOffset = 0
	reportVolumeOffset  = 2
	reportStatusOffset  = 8
	reportFrameOffset   = 18
	reportFrame0Offset  = 20
	reportFrame1Offset  = 36
)

// Button masks of report byte 0.
const (
	buttonVolumePlus     = 0x02
	buttonVolumeMinus    = 0x04
	buttonMicrophoneMute = 0x08
)

// Status masks of report byte 8.
const (
	statusOnHead            = 0x01
	statusDisplayActive     = 0x02
	statusHDMIDisconnected  = 0x04
	statusMicrophoneMuted   = 0x08
	statusHeadphonesPresent = 0x10
	statusTimerSet          = 0x80
)
