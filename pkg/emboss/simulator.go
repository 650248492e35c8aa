package emboss

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sensedot/sensedot/pkg/braille"
)

// Simulator is an Actuator without hardware. It tracks the carriage and
// records where the punch came down.
type Simulator struct {
	pulseDelay time.Duration

	mu     sync.Mutex
	pos    Position
	dots   []Position
	pulses int
}

// NewSimulator returns a simulator that waits pulseDelay per step pulse.
func NewSimulator(pulseDelay time.Duration) *Simulator {
	return &Simulator{pulseDelay: pulseDelay}
}

func (s *Simulator) Step(ctx context.Context, axis braille.Axis, count int) error {
	dir := 1
	if count < 0 {
		dir, count = -1, -count
	}
	for i := 0; i < count; i++ {
		if s.pulseDelay > 0 {
			if err := wait(ctx, s.pulseDelay); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		s.mu.Lock()
		s.pos = s.pos.Apply(braille.StepCommand(axis, dir))
		s.pulses++
		s.mu.Unlock()
	}
	return nil
}

func (s *Simulator) Punch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.dots = append(s.dots, s.pos)
	s.mu.Unlock()
	return nil
}

// Position returns the current carriage position.
func (s *Simulator) Position() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Dots returns the punched positions in order.
func (s *Simulator) Dots() []Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.dots)
}

// Pulses returns the number of step pulses sent on both axes.
func (s *Simulator) Pulses() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pulses
}
