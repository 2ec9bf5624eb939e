package morpheus

import (
	"fmt"

	"github.com/Galtar27/PSMoveService/device"
)

// signed16 reassembles one low-byte-first 16-bit sensor axis.
func signed16(lo, hi byte) int16 {
	return int16(uint16(hi)<<8 | uint16(lo))
}

// DecodeSensorFrame decodes one 12-byte inertial sub-frame: three
// accelerometer axes followed by three gyro axes, each a little-endian
// int16. Raw counts are widened to int32 and scaled by the calibration
// gains. The calibrated values are not clamped; out-of-range motion is the
// filter's problem, not the decoder's.
func DecodeSensorFrame(b []byte, cfg *Config) (device.IMUSample, error) {
	if len(b) < SensorFrameSize {
		return device.IMUSample{}, fmt.Errorf("morpheus: sensor frame truncated: %d bytes", len(b))
	}

	var s device.IMUSample
	for axis := 0; axis < 3; axis++ {
		a := signed16(b[axis*2], b[axis*2+1])
		g := signed16(b[6+axis*2], b[6+axis*2+1])
		s.RawAccel[axis] = int32(a)
		s.RawGyro[axis] = int32(g)
		s.CalibratedAccel[axis] = float64(a) * cfg.AccelerometerGain
		s.CalibratedGyro[axis] = float64(g) * cfg.GyroGain
	}
	return s, nil
}

// Buttons is the decoded button byte of a sensor report.
type Buttons struct {
	VolumePlus     bool
	VolumeMinus    bool
	MicrophoneMute bool
}

// StatusFlags is the decoded headset status byte of a sensor report.
type StatusFlags struct {
	OnHead            bool
	DisplayActive     bool
	HDMIDisconnected  bool
	MicrophoneMuted   bool
	HeadphonesPresent bool
	TimerSet          bool
}

// Report is one fully decoded 48-byte sensor report.
type Report struct {
	Buttons Buttons
	// Volume is the current headset volume setting.
	Volume uint8
	Status StatusFlags
	// Frame is the device-side frame counter, wrapping at 16 bits.
	Frame uint16
	// SensorFrames are the two inertial sub-frames, oldest first.
	SensorFrames [2]device.IMUSample
}

// ParseSensorReport decodes a raw sensor report. Short buffers error without
// partial decoding.
func ParseSensorReport(b []byte, cfg *Config) (Report, error) {
	if len(b) < SensorReportSize {
		return Report{}, fmt.Errorf("morpheus: sensor report truncated: %d bytes", len(b))
	}

	buttons := b[reportButtonsOffset]
	status := b[reportStatusOffset]

	r := Report{
		Buttons: Buttons{
			VolumePlus:     buttons&buttonVolumePlus != 0,
			VolumeMinus:    buttons&buttonVolumeMinus != 0,
			MicrophoneMute: buttons&buttonMicrophoneMute != 0,
		},
		Volume: b[reportVolumeOffset],
		Status: StatusFlags{
			OnHead:            status&statusOnHead != 0,
			DisplayActive:     status&statusDisplayActive != 0,
			HDMIDisconnected:  status&statusHDMIDisconnected != 0,
			MicrophoneMuted:   status&statusMicrophoneMuted != 0,
			HeadphonesPresent: status&statusHeadphonesPresent != 0,
			TimerSet:          status&statusTimerSet != 0,
		},
		Frame: uint16(b[reportFrameOffset]) | uint16(b[reportFrameOffset+1])<<8,
	}

	var err error
	if r.SensorFrames[0], err = DecodeSensorFrame(b[reportFrame0Offset:reportFrame0Offset+SensorFrameSize], cfg); err != nil {
		return Report{}, err
	}
	if r.SensorFrames[1], err = DecodeSensorFrame(b[reportFrame1Offset:reportFrame1Offset+SensorFrameSize], cfg); err != nil {
		return Report{}, err
	}
	return r, nil
}
