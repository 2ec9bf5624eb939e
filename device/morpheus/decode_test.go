package morpheus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSensorFrame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GyroGain = 0.5
	cfg.AccelerometerGain = 2.0

	frame := []byte{
		0x34, 0x12, // accel x = 0x1234
		0xff, 0xff, // accel y = -1
		0x00, 0x80, // accel z = -32768
		0x01, 0x00, // gyro x = 1
		0xff, 0x7f, // gyro y = 32767
		0x00, 0x00, // gyro z = 0
	}

	s, err := DecodeSensorFrame(frame, &cfg)
	require.NoError(t, err)

	assert.Equal(t, [3]int32{0x1234, -1, -32768}, s.RawAccel)
	assert.Equal(t, [3]int32{1, 32767, 0}, s.RawGyro)
	assert.Equal(t, [3]float64{9320, -2, -65536}, s.CalibratedAccel)
	assert.Equal(t, [3]float64{0.5, 16383.5, 0}, s.CalibratedGyro)
}

// The accelerometer axes occupy the first six bytes of a sub-frame; the gyro
// axes follow. A frame with only the leading axis set must land in the accel
// vector, not the gyro one.
func TestDecodeSensorFrameAxisOrder(t *testing.T) {
	cfg := DefaultConfig()

	frame := make([]byte, SensorFrameSize)
	frame[0] = 0x34
	frame[1] = 0x12

	s, err := DecodeSensorFrame(frame, &cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(0x1234), s.RawAccel[0])
	assert.Equal(t, int32(0), s.RawGyro[0])

	frame = make([]byte, SensorFrameSize)
	frame[6] = 0x34
	frame[7] = 0x12

	s, err = DecodeSensorFrame(frame, &cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(0x1234), s.RawGyro[0])
	assert.Equal(t, int32(0), s.RawAccel[0])
}

func TestDecodeSensorFrameNoClamping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AccelerometerGain = 1000

	frame := make([]byte, SensorFrameSize)
	frame[0] = 0xff
	frame[1] = 0x7f

	s, err := DecodeSensorFrame(frame, &cfg)
	require.NoError(t, err)
	assert.Equal(t, 32767000.0, s.CalibratedAccel[0])
}

func TestDecodeSensorFrameTruncated(t *testing.T) {
	cfg := DefaultConfig()
	_, err := DecodeSensorFrame(make([]byte, SensorFrameSize-1), &cfg)
	assert.Error(t, err)
}

func TestParseSensorReport(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GyroGain = 1.0
	cfg.AccelerometerGain = 1.0

	report := make([]byte, SensorReportSize)
	report[reportButtonsOffset] = buttonVolumePlus | buttonMicrophoneMute
	report[reportVolumeOffset] = 42
	report[reportStatusOffset] = statusOnHead | statusDisplayActive | statusTimerSet
	report[reportFrameOffset] = 0xcd
	report[reportFrameOffset+1] = 0xab

	// First sub-frame accel x = 100, second sub-frame gyro z = -2.
	report[reportFrame0Offset] = 100
	report[reportFrame1Offset+10] = 0xfe
	report[reportFrame1Offset+11] = 0xff

	r, err := ParseSensorReport(report, &cfg)
	require.NoError(t, err)

	assert.True(t, r.Buttons.VolumePlus)
	assert.False(t, r.Buttons.VolumeMinus)
	assert.True(t, r.Buttons.MicrophoneMute)
	assert.Equal(t, uint8(42), r.Volume)

	assert.True(t, r.Status.OnHead)
	assert.True(t, r.Status.DisplayActive)
	assert.False(t, r.Status.HDMIDisconnected)
	assert.False(t, r.Status.MicrophoneMuted)
	assert.False(t, r.Status.HeadphonesPresent)
	assert.True(t, r.Status.TimerSet)

	assert.Equal(t, uint16(0xabcd), r.Frame)
	assert.Equal(t, int32(100), r.SensorFrames[0].RawAccel[0])
	assert.Equal(t, int32(-2), r.SensorFrames[1].RawGyro[2])
}

func TestParseSensorReportTruncated(t *testing.T) {
	cfg := DefaultConfig()
	_, err := ParseSensorReport(make([]byte, SensorReportSize-1), &cfg)
	assert.Error(t, err)
}
