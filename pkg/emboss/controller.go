// Package emboss drives an embosser through the commands for a word.
package emboss

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sensedot/sensedot/pkg/braille"
)

// ErrBusy is returned by Run while another run is in progress.
var ErrBusy = errors.New("already running")

// Actuator performs motion commands on the hardware. Calls never overlap.
type Actuator interface {
	// Step sends count pulses to the axis, backwards when count is negative.
	Step(ctx context.Context, axis braille.Axis, count int) error
	// Punch runs one engage/retract cycle.
	Punch(ctx context.Context) error
}

// Position is the carriage offset in steps from where the run started.
type Position struct {
	X, Y int
}

// Apply returns the position after cmd.
func (p Position) Apply(cmd braille.Command) Position {
	if cmd.Kind != braille.Step {
		return p
	}
	if cmd.Axis == braille.X {
		p.X += cmd.Steps
	} else {
		p.Y += cmd.Steps
	}
	return p
}

// State represents the progress of a run.
type State struct {
	Index     int // commands completed
	Total     int
	Letter    rune
	Command   braille.Command // last completed command
	Position  Position
	Punches   int
	Done      bool
	Error     error
	Timestamp time.Time
}

// Controller drains the commands of a word into an Actuator.
type Controller struct {
	act    Actuator
	layout braille.Layout
	settle time.Duration

	mu      sync.Mutex
	running bool
	stateCh chan State
	logCh   chan string
}

// Config holds configuration for the controller.
type Config struct {
	Actuator Actuator
	Layout   braille.Layout
	Settle   time.Duration // pause after every command
}

// NewController creates a new embossing controller.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Actuator == nil {
		return nil, fmt.Errorf("no actuator")
	}
	if cfg.Layout.DotPitch <= 0 || cfg.Layout.CharSpacing <= 0 {
		cfg.Layout = braille.DefaultLayout
	}

	return &Controller{
		act:     cfg.Actuator,
		layout:  cfg.Layout,
		settle:  cfg.Settle,
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 10),
	}, nil
}

// States returns a channel that receives state updates.
// Only the latest state is kept when the reader falls behind.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Layout returns the layout used for generating commands.
func (c *Controller) Layout() braille.Layout {
	return c.layout
}

// Plan returns the commands Run would execute for text.
func (c *Controller) Plan(text string) []braille.Command {
	return slices.Collect(c.layout.Generate(text))
}

func (c *Controller) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case c.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Run embosses text, one command at a time. Characters without a glyph are
// skipped. Cancelling ctx stops the run after the current command.
func (c *Controller) Run(ctx context.Context, text string) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrBusy
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	st := State{Total: len(c.Plan(text))}
	c.log("Embossing word: %s (%d commands)", text, st.Total)

	for cell := range braille.Cells(text) {
		c.log("Embossing letter: %c %c", cell.Letter, cell.Glyph.Rune())
		st.Letter = cell.Letter

		for _, cmd := range c.layout.GlyphCommands(cell.Glyph) {
			if err := ctx.Err(); err != nil {
				return c.abort(st, err)
			}
			if err := c.exec(ctx, cmd); err != nil {
				if ctx.Err() != nil {
					return c.abort(st, ctx.Err())
				}
				err = fmt.Errorf("command %d (%s): %w", st.Index+1, cmd, err)
				c.log("Error: %v", err)
				st.Error = err
				st.Timestamp = time.Now()
				c.sendState(st)
				return err
			}

			st.Index++
			st.Command = cmd
			st.Position = st.Position.Apply(cmd)
			if cmd.Kind == braille.Punch {
				st.Punches++
			}
			st.Timestamp = time.Now()
			c.sendState(st)

			if c.settle > 0 {
				if err := wait(ctx, c.settle); err != nil {
					return c.abort(st, err)
				}
			}
		}
	}

	st.Done = true
	st.Timestamp = time.Now()
	c.sendState(st)
	c.log("Embossing complete: %d dots", st.Punches)
	return nil
}

func (c *Controller) exec(ctx context.Context, cmd braille.Command) error {
	switch cmd.Kind {
	case braille.Step:
		return c.act.Step(ctx, cmd.Axis, cmd.Steps)
	case braille.Punch:
		return c.act.Punch(ctx)
	default:
		return fmt.Errorf("unknown command kind %d", cmd.Kind)
	}
}

func (c *Controller) abort(st State, err error) error {
	c.log("Embossing aborted after %d of %d commands", st.Index, st.Total)
	st.Error = err
	st.Timestamp = time.Now()
	c.sendState(st)
	return err
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
