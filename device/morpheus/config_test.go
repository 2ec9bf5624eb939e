package morpheus

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Galtar27/PSMoveService/device"
	"github.com/Galtar27/PSMoveService/internal/settings"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Valid = true
	cfg.AccelerometerGain = 0.25
	cfg.GyroDrift = 0.125
	cfg.IdentityGravity = [3]float64{0.1, -0.9, 0.2}
	cfg.MaxVelocity = 2.5
	cfg.MaxPollFailureCount = 17
	cfg.TrackingColor = device.ColorRed

	store := settings.NewMemory()
	require.NoError(t, cfg.SaveTo(store))

	loaded := DefaultConfig()
	loaded.LoadFrom(store, discardLogger())
	assert.Equal(t, cfg, loaded)
}

func TestConfigLoadIsIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GyroVariance = 0.75
	store := settings.NewMemory()
	require.NoError(t, cfg.SaveTo(store))

	loaded := DefaultConfig()
	loaded.LoadFrom(store, discardLogger())
	once := loaded
	loaded.LoadFrom(store, discardLogger())
	assert.Equal(t, once, loaded)
}

func TestConfigVersionMismatchResetsToDefaults(t *testing.T) {
	store := settings.NewMemory()
	store.Set("version", int64(ConfigVersion+1))
	store.Set("Calibration.Accel.Gain", 123.0)
	store.Set("is_valid", true)

	cfg := DefaultConfig()
	cfg.AccelerometerGain = 99
	cfg.LoadFrom(store, discardLogger())

	assert.Equal(t, DefaultConfig(), cfg)
	assert.False(t, cfg.Valid)
}

func TestConfigPartialDocumentKeepsCurrentValues(t *testing.T) {
	store := settings.NewMemory()
	store.Set("version", int64(ConfigVersion))
	store.Set("Calibration.Gyro.Gain", 0.5)

	cfg := DefaultConfig()
	cfg.AccelerometerVariance = 0.42
	cfg.LoadFrom(store, discardLogger())

	assert.Equal(t, 0.5, cfg.GyroGain)
	// Absent keys fall back to the in-memory values, not the defaults.
	assert.Equal(t, 0.42, cfg.AccelerometerVariance)
	// Except the flat keys, which carry fixed fallbacks.
	assert.False(t, cfg.Valid)
	assert.Equal(t, 100, cfg.MaxPollFailureCount)
}

func TestConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Valid)
	assert.Equal(t, 100, cfg.MaxPollFailureCount)
	assert.Equal(t, [3]float64{0, -1, 0}, cfg.IdentityGravity)
	assert.Equal(t, device.ColorBlue, cfg.TrackingColor)
	assert.InDelta(t, 0.000122, cfg.AccelerometerGain, 0.000001)
	assert.InDelta(t, 0.001065, cfg.GyroGain, 0.000001)
}
