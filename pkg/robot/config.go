package robot

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sensedot/sensedot/pkg/braille"
)

const DefaultConfigFile = "sensedot.json"

// Default timing, matching the original firmware delays.
const (
	DefaultPulseDelay = 50 * time.Millisecond
	DefaultPunchDelay = 50 * time.Millisecond
)

// Config holds the embosser configuration
type Config struct {
	Port        string         `json:"port" mapstructure:"port"`
	Calibration Calibration    `json:"calibration,omitempty" mapstructure:"calibration"`
	Timing      Timing         `json:"timing" mapstructure:"timing"`
	Layout      braille.Layout `json:"layout" mapstructure:"layout"`
}

// Timing holds the hardware delays of the carriage.
type Timing struct {
	PulseDelay  time.Duration `json:"pulse_delay" mapstructure:"pulse_delay"`
	PunchDelay  time.Duration `json:"punch_delay" mapstructure:"punch_delay"`
	SettleDelay time.Duration `json:"settle_delay" mapstructure:"settle_delay"`
}

// DefaultConfig returns a configuration with default timing and layout and
// no port or calibration.
func DefaultConfig() *Config {
	return &Config{
		Timing: Timing{
			PulseDelay: DefaultPulseDelay,
			PunchDelay: DefaultPunchDelay,
		},
		Layout: braille.DefaultLayout,
	}
}

// IsCalibrated returns true if every motor has usable calibration data
func (c *Config) IsCalibrated() bool {
	return c.Calibration.Validate() == nil
}

// applyDefaults fills zero timing and layout values.
func (c *Config) applyDefaults() {
	if c.Timing.PulseDelay <= 0 {
		c.Timing.PulseDelay = DefaultPulseDelay
	}
	if c.Timing.PunchDelay <= 0 {
		c.Timing.PunchDelay = DefaultPunchDelay
	}
	if c.Layout.DotPitch <= 0 {
		c.Layout.DotPitch = braille.DefaultDotPitch
	}
	if c.Layout.CharSpacing <= 0 {
		c.Layout.CharSpacing = braille.DefaultCharSpacing
	}
}

// LoadConfigFrom loads configuration from a specific file. SENSEDOT_*
// environment variables override values from the file, for example
// SENSEDOT_PORT or SENSEDOT_LAYOUT_DOT_PITCH.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("SENSEDOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper knows about
	for _, key := range []string{
		"port",
		"timing.pulse_delay", "timing.punch_delay", "timing.settle_delay",
		"layout.dot_pitch", "layout.char_spacing",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the config file exists
func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
