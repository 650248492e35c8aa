// Package sensedot drives the SenseDot Braille embosser, a small cartesian
// robot that punches Braille dots into paper.
//
// Text is translated letter by letter through a fixed Braille dictionary into
// a sequence of motion commands: step pulses on the X and Y axes and punch
// cycles. The commands are executed one at a time by the carriage, three
// Feetech serial-bus servos, or by a simulator.
//
// # Installation
//
//	go install github.com/sensedot/sensedot/cmd/sensedot@latest
//
// # Usage
//
// First, run setup to find the carriage servos and calibrate them:
//
//	sensedot setup
//
// Then emboss a word:
//
//	sensedot emboss HOLA
//
// Without hardware, try the simulator or inspect the plan:
//
//	sensedot emboss --dry-run HOLA
//	sensedot plan HOLA
//	sensedot preview HOLA
//
// Words can also be fed over a serial line, one per line:
//
//	sensedot listen --port /dev/ttyUSB1
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/sensedot: CLI with setup, emboss, listen, plan and preview commands
//   - pkg/braille: Braille dictionary and motion command generation
//   - pkg/emboss: Embossing controller and carriage simulator
//   - pkg/robot: Carriage servos, calibration, and configuration
package sensedot
