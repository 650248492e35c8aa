package robot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/sensedot/sensedot/pkg/braille"
)

// servo is the part of *feetech.Servo the carriage uses.
type servo interface {
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
	Position(ctx context.Context) (int, error)
	SetPositionWithTime(ctx context.Context, position, timeMs int) error
}

// Carriage drives the X and Y axes and the punch of the embosser.
// Commands are executed one at a time.
type Carriage struct {
	bus         io.Closer
	servos      map[MotorName]servo
	calibration Calibration
	timing      Timing

	mu       sync.Mutex
	position map[MotorName]int
	home     map[MotorName]int
}

// NewCarriage opens the serial bus, finds the configured servos, enables
// torque and records the current axis positions as home.
func NewCarriage(ctx context.Context, cfg *Config) (*Carriage, error) {
	if err := cfg.Calibration.Validate(); err != nil {
		return nil, err
	}

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	ids := cfg.Calibration.MotorIDs()
	found, err := bus.Scan(ctx, slices.Min(ids), slices.Max(ids))
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("scan servos: %w", err)
	}

	servos := make(map[MotorName]servo, len(ids))
	for _, s := range found {
		if name, _, ok := cfg.Calibration.ByID(s.ID); ok {
			servos[name] = feetech.NewServo(bus, s.ID, s.Model)
		}
	}
	for _, name := range AllMotors() {
		if _, ok := servos[name]; !ok {
			bus.Close()
			return nil, fmt.Errorf("%s servo (id %d) not found on %s", name, cfg.Calibration[name].ID, cfg.Port)
		}
	}

	c := newCarriage(bus, servos, cfg.Calibration, cfg.Timing)
	if err := c.init(ctx); err != nil {
		bus.Close()
		return nil, err
	}
	return c, nil
}

func newCarriage(bus io.Closer, servos map[MotorName]servo, cal Calibration, timing Timing) *Carriage {
	return &Carriage{
		bus:         bus,
		servos:      servos,
		calibration: cal,
		timing:      timing,
		position:    make(map[MotorName]int),
		home:        make(map[MotorName]int),
	}
}

func (c *Carriage) init(ctx context.Context) error {
	for _, name := range AllMotors() {
		if err := c.servos[name].Enable(ctx); err != nil {
			return fmt.Errorf("enable %s: %w", name, err)
		}
	}

	punch := c.calibration[Punch]
	if err := c.servos[Punch].SetPositionWithTime(ctx, punch.Retract, c.punchMs()); err != nil {
		return fmt.Errorf("retract punch: %w", err)
	}

	for _, name := range []MotorName{XAxis, YAxis} {
		pos, err := c.servos[name].Position(ctx)
		if err != nil {
			return fmt.Errorf("read %s position: %w", name, err)
		}
		if !c.calibration[name].Contains(pos) {
			return fmt.Errorf("%s at %d is outside its range: %w", name, pos, ErrTravelLimit)
		}
		c.position[name] = pos
		c.home[name] = pos
	}
	return nil
}

func (c *Carriage) pulseMs() int {
	return int(c.timing.PulseDelay / time.Millisecond)
}

func (c *Carriage) punchMs() int {
	return int(c.timing.PunchDelay / time.Millisecond)
}

// Step sends count pulses to the axis, backwards when count is negative.
// The whole move is checked against the travel range before the first pulse.
func (c *Carriage) Step(ctx context.Context, axis braille.Axis, count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := AxisMotor(axis)
	cal := c.calibration[name]
	if _, err := cal.Move(c.position[name], count); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	dir := 1
	if count < 0 {
		dir, count = -1, -count
	}
	for i := 0; i < count; i++ {
		next, err := cal.Move(c.position[name], dir)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := c.servos[name].SetPositionWithTime(ctx, next, c.pulseMs()); err != nil {
			return fmt.Errorf("move %s: %w", name, err)
		}
		c.position[name] = next
		if err := sleep(ctx, c.timing.PulseDelay); err != nil {
			return err
		}
	}
	return nil
}

// Punch runs one engage/retract cycle.
func (c *Carriage) Punch(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	punch := c.calibration[Punch]
	s := c.servos[Punch]
	if err := s.SetPositionWithTime(ctx, punch.Engage, c.punchMs()); err != nil {
		return fmt.Errorf("engage punch: %w", err)
	}
	if err := sleep(ctx, c.timing.PunchDelay); err != nil {
		// Never leave the punch in the paper
		if rerr := s.SetPositionWithTime(context.Background(), punch.Retract, c.punchMs()); rerr != nil {
			return errors.Join(err, fmt.Errorf("retract punch: %w", rerr))
		}
		return err
	}
	if err := s.SetPositionWithTime(ctx, punch.Retract, c.punchMs()); err != nil {
		return fmt.Errorf("retract punch: %w", err)
	}
	return sleep(ctx, c.timing.PunchDelay)
}

// Home moves both axes back to where they were when the carriage was opened.
func (c *Carriage) Home(ctx context.Context) error {
	for _, axis := range []braille.Axis{braille.X, braille.Y} {
		name := AxisMotor(axis)
		c.mu.Lock()
		delta := c.home[name] - c.position[name]
		ticks := c.calibration[name].StepTicks()
		c.mu.Unlock()

		if err := c.Step(ctx, axis, delta/ticks); err != nil {
			return fmt.Errorf("home %s: %w", name, err)
		}
	}
	return nil
}

// Positions returns the raw servo positions of the axes.
func (c *Carriage) Positions() map[MotorName]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[MotorName]int, len(c.position))
	for name, pos := range c.position {
		out[name] = pos
	}
	return out
}

// Close retracts the punch, disables torque and closes the bus.
func (c *Carriage) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := context.Background()
	var errs []error
	if err := c.servos[Punch].SetPositionWithTime(ctx, c.calibration[Punch].Retract, c.punchMs()); err != nil {
		errs = append(errs, fmt.Errorf("retract punch: %w", err))
	}
	for _, name := range AllMotors() {
		if err := c.servos[name].Disable(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disable %s: %w", name, err))
		}
	}
	if c.bus != nil {
		if err := c.bus.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
