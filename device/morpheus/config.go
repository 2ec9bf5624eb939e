package morpheus

import (
	"log/slog"
	"math"

	"github.com/Galtar27/PSMoveService/device"
	"github.com/Galtar27/PSMoveService/internal/settings"
)

// ConfigVersion guards forward/backward compatibility of persisted
// calibration documents. A document carrying any other version is ignored
// wholesale; there is no partial adoption of a mismatched schema.
const ConfigVersion = 1

// settingsFileName is the per-device calibration document under the
// settings directory.
const settingsFileName = "MorpheusHMDConfig.toml"

// Config is the calibration parameter set owned by one headset session. Its
// values feed the downstream orientation/position filters.
type Config struct {
	// Valid is false until calibration has produced real values; defaults
	// are still usable for raw tracking.
	Valid bool

	AccelerometerGain     float64
	AccelerometerVariance float64
	GyroGain              float64
	GyroVariance          float64
	GyroDrift             float64

	// IdentityGravity is the calibrated "down" direction in sensor space.
	IdentityGravity [3]float64

	MinOrientationQualityScreenArea float64
	MaxOrientationQualityScreenArea float64
	MinPositionQualityScreenArea    float64
	MaxPositionQualityScreenArea    float64

	// MaxVelocity caps plausible tracked motion, in meters per second.
	MaxVelocity float64

	PredictionTime      float64
	MaxPollFailureCount int

	TrackingColor device.TrackingColor
}

// DefaultConfig returns the built-in calibration defaults.
func DefaultConfig() Config {
	return Config{
		Valid: false,

		// 16-bit accelerometer counts over a +/-4g range.
		AccelerometerGain:     1.0 / 8192.0,
		AccelerometerVariance: 0.01,

		// 16-bit gyro counts over a +/-2000deg/s range, in rad/s.
		GyroGain:     (2000.0 / 32768.0) * (math.Pi / 180.0),
		GyroVariance: 0.00035,
		GyroDrift:    0.00007,

		IdentityGravity: [3]float64{0, -1, 0},

		MinOrientationQualityScreenArea: 150,
		MaxOrientationQualityScreenArea: 430,
		MinPositionQualityScreenArea:    75,
		MaxPositionQualityScreenArea:    430,

		MaxVelocity:         1.0,
		PredictionTime:      0,
		MaxPollFailureCount: 100,

		TrackingColor: device.ColorBlue,
	}
}

// LoadFrom overwrites c from a settings document. A version mismatch logs a
// warning and resets every field to the built-in defaults. On a matching
// version each field falls back to its current in-memory value, so loading
// the same document twice is idempotent and a partial document never zeroes
// fields.
func (c *Config) LoadFrom(s *settings.Store, logger *slog.Logger) {
	version := s.Int("version", 0)
	if version != ConfigVersion {
		logger.Warn("calibration config version mismatch, using defaults",
			"got", version, "want", ConfigVersion)
		*c = DefaultConfig()
		return
	}

	c.Valid = s.Bool("is_valid", false)
	c.PredictionTime = s.Float("prediction_time", 0)
	c.MaxPollFailureCount = s.Int("max_poll_failure_count", 100)

	c.AccelerometerGain = s.Float("Calibration.Accel.Gain", c.AccelerometerGain)
	c.AccelerometerVariance = s.Float("Calibration.Accel.Variance", c.AccelerometerVariance)

	c.GyroGain = s.Float("Calibration.Gyro.Gain", c.GyroGain)
	c.GyroVariance = s.Float("Calibration.Gyro.Variance", c.GyroVariance)
	c.GyroDrift = s.Float("Calibration.Gyro.Drift", c.GyroDrift)

	c.IdentityGravity[0] = s.Float("Calibration.Identity.Gravity.X", c.IdentityGravity[0])
	c.IdentityGravity[1] = s.Float("Calibration.Identity.Gravity.Y", c.IdentityGravity[1])
	c.IdentityGravity[2] = s.Float("Calibration.Identity.Gravity.Z", c.IdentityGravity[2])

	c.MinOrientationQualityScreenArea = s.Float("OrientationFilter.MinQualityScreenArea", c.MinOrientationQualityScreenArea)
	c.MaxOrientationQualityScreenArea = s.Float("OrientationFilter.MaxQualityScreenArea", c.MaxOrientationQualityScreenArea)

	c.MinPositionQualityScreenArea = s.Float("PositionFilter.MinQualityScreenArea", c.MinPositionQualityScreenArea)
	c.MaxPositionQualityScreenArea = s.Float("PositionFilter.MaxQualityScreenArea", c.MaxPositionQualityScreenArea)
	c.MaxVelocity = s.Float("PositionFilter.MaxVelocity", c.MaxVelocity)

	c.TrackingColor = device.TrackingColor(s.Int("tracking_color_id", int(c.TrackingColor)))
}

// SaveTo serializes every field plus the current schema version and writes
// the document back out.
func (c *Config) SaveTo(s *settings.Store) error {
	s.Set("is_valid", c.Valid)
	s.Set("version", int64(ConfigVersion))

	s.Set("Calibration.Accel.Gain", c.AccelerometerGain)
	s.Set("Calibration.Accel.Variance", c.AccelerometerVariance)
	s.Set("Calibration.Gyro.Gain", c.GyroGain)
	s.Set("Calibration.Gyro.Variance", c.GyroVariance)
	s.Set("Calibration.Gyro.Drift", c.GyroDrift)
	s.Set("Calibration.Identity.Gravity.X", c.IdentityGravity[0])
	s.Set("Calibration.Identity.Gravity.Y", c.IdentityGravity[1])
	s.Set("Calibration.Identity.Gravity.Z", c.IdentityGravity[2])

	s.Set("OrientationFilter.MinQualityScreenArea", c.MinOrientationQualityScreenArea)
	s.Set("OrientationFilter.MaxQualityScreenArea", c.MaxOrientationQualityScreenArea)

	s.Set("PositionFilter.MinQualityScreenArea", c.MinPositionQualityScreenArea)
	s.Set("PositionFilter.MaxQualityScreenArea", c.MaxPositionQualityScreenArea)
	s.Set("PositionFilter.MaxVelocity", c.MaxVelocity)

	s.Set("prediction_time", c.PredictionTime)
	s.Set("max_poll_failure_count", int64(c.MaxPollFailureCount))

	s.Set("tracking_color_id", int64(c.TrackingColor))

	return s.Save()
}
