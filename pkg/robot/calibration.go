package robot

import (
	"errors"
	"fmt"
)

var (
	// ErrTravelLimit is returned when a move would leave the calibrated range.
	ErrTravelLimit = errors.New("travel limit")
	// ErrNotCalibrated is returned when a motor is missing or incomplete.
	ErrNotCalibrated = errors.New("not calibrated")
)

// DefaultTicksPerStep is the raw servo travel of one stepper pulse.
const DefaultTicksPerStep = 4

// MotorCalibration holds calibration data for a single motor.
type MotorCalibration struct {
	ID        int `json:"id" mapstructure:"id"`
	DriveMode int `json:"drive_mode" mapstructure:"drive_mode"`
	RangeMin  int `json:"range_min" mapstructure:"range_min"`
	RangeMax  int `json:"range_max" mapstructure:"range_max"`

	// Axis motors only.
	TicksPerStep int `json:"ticks_per_step,omitempty" mapstructure:"ticks_per_step"`

	// Punch only.
	Engage  int `json:"engage,omitempty" mapstructure:"engage"`
	Retract int `json:"retract,omitempty" mapstructure:"retract"`
}

// Calibration holds calibration data for all motors, keyed by motor name.
type Calibration map[MotorName]MotorCalibration

// StepTicks returns the signed raw travel of one forward pulse.
func (c MotorCalibration) StepTicks() int {
	if c.DriveMode == 1 {
		return -c.TicksPerStep
	}
	return c.TicksPerStep
}

// Move returns the raw position reached from raw after steps pulses.
// A move that ends outside [RangeMin, RangeMax] fails with ErrTravelLimit.
func (c MotorCalibration) Move(raw, steps int) (int, error) {
	target := raw + steps*c.StepTicks()
	if target < c.RangeMin || target > c.RangeMax {
		return raw, fmt.Errorf("%w: %d steps from %d reaches %d, range is [%d, %d]",
			ErrTravelLimit, steps, raw, target, c.RangeMin, c.RangeMax)
	}
	return target, nil
}

// Contains reports whether raw lies inside the calibrated range.
func (c MotorCalibration) Contains(raw int) bool {
	return raw >= c.RangeMin && raw <= c.RangeMax
}

// Validate checks that every motor is present and usable.
func (c Calibration) Validate() error {
	for _, name := range AllMotors() {
		mc, ok := c[name]
		if !ok {
			return fmt.Errorf("%s: %w", name, ErrNotCalibrated)
		}
		if mc.ID <= 0 {
			return fmt.Errorf("%s: missing servo id: %w", name, ErrNotCalibrated)
		}
		if mc.RangeMax <= mc.RangeMin {
			return fmt.Errorf("%s: empty range [%d, %d]: %w", name, mc.RangeMin, mc.RangeMax, ErrNotCalibrated)
		}
		switch name {
		case Punch:
			if mc.Engage == mc.Retract {
				return fmt.Errorf("%s: engage equals retract: %w", name, ErrNotCalibrated)
			}
			if !mc.Contains(mc.Engage) || !mc.Contains(mc.Retract) {
				return fmt.Errorf("%s: engage/retract outside range: %w", name, ErrNotCalibrated)
			}
		default:
			if mc.TicksPerStep <= 0 {
				return fmt.Errorf("%s: ticks_per_step must be positive: %w", name, ErrNotCalibrated)
			}
		}
	}
	return nil
}

// MotorIDs returns the servo IDs for all motors in the calibration.
func (c Calibration) MotorIDs() []int {
	ids := make([]int, 0, len(c))
	// Use AllMotors() to ensure consistent ordering
	for _, name := range AllMotors() {
		if mc, ok := c[name]; ok {
			ids = append(ids, mc.ID)
		}
	}
	return ids
}

// ByID returns motor name and calibration for a given servo ID.
func (c Calibration) ByID(id int) (MotorName, MotorCalibration, bool) {
	for name, mc := range c {
		if mc.ID == id {
			return name, mc, true
		}
	}
	return "", MotorCalibration{}, false
}
