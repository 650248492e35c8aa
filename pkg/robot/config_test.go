package robot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensedot/sensedot/pkg/braille"
)

func TestConfig_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)

	cfg := DefaultConfig()
	cfg.Port = "/dev/ttyUSB0"
	cfg.Calibration = testCalibration()
	cfg.Timing.SettleDelay = 20 * time.Millisecond
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.True(t, loaded.IsCalibrated())
}

func TestConfig_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": "/dev/ttyACM0"}`), 0644))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", cfg.Port)
	assert.Equal(t, braille.DefaultLayout, cfg.Layout)
	assert.Equal(t, DefaultPulseDelay, cfg.Timing.PulseDelay)
	assert.Equal(t, DefaultPunchDelay, cfg.Timing.PunchDelay)
	assert.Zero(t, cfg.Timing.SettleDelay)
	assert.False(t, cfg.IsCalibrated())
}

func TestConfig_DurationStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timing.json")
	data := `{"timing": {"pulse_delay": "10ms", "punch_delay": "1s"}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, cfg.Timing.PulseDelay)
	assert.Equal(t, time.Second, cfg.Timing.PunchDelay)
}

func TestConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, DefaultConfig().SaveTo(path))

	t.Setenv("SENSEDOT_PORT", "/dev/ttyS3")
	t.Setenv("SENSEDOT_LAYOUT_DOT_PITCH", "12")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyS3", cfg.Port)
	assert.Equal(t, 12, cfg.Layout.DotPitch)
	assert.Equal(t, braille.DefaultCharSpacing, cfg.Layout.CharSpacing)
}

func TestConfig_Missing(t *testing.T) {
	_, err := LoadConfigFrom(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestConfigExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	assert.False(t, ConfigExists(path))

	require.NoError(t, DefaultConfig().SaveTo(path))
	assert.True(t, ConfigExists(path))
}
