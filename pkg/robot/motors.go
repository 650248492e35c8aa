// Package robot drives the embosser carriage: two axis servos and the punch.
package robot

import "github.com/sensedot/sensedot/pkg/braille"

// MotorName identifies a motor of the carriage.
type MotorName string

// Motor names for the SenseDot carriage.
const (
	XAxis MotorName = "x_axis"
	YAxis MotorName = "y_axis"
	Punch MotorName = "punch"
)

// AllMotors returns all motor names in order (matching default servo IDs 1-3).
func AllMotors() []MotorName {
	return []MotorName{
		XAxis,
		YAxis,
		Punch,
	}
}

// AxisMotor returns the motor that moves the given axis.
func AxisMotor(axis braille.Axis) MotorName {
	if axis == braille.X {
		return XAxis
	}
	return YAxis
}
