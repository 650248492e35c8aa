package braille

import (
	"fmt"
	"iter"
)

// Axis identifies one of the two carriage axes.
type Axis int

const (
	X Axis = iota
	Y
)

func (a Axis) String() string {
	switch a {
	case X:
		return "X"
	case Y:
		return "Y"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Kind is the type of a Command.
type Kind int

const (
	// Step moves one axis by a signed number of pulses.
	Step Kind = iota
	// Punch runs one engage/retract cycle of the punch.
	Punch
)

// Command is one physical action of the embosser. Axis and Steps are only
// meaningful for Step commands; positive Steps move forward.
type Command struct {
	Kind  Kind
	Axis  Axis
	Steps int
}

// StepCommand returns a Step command.
func StepCommand(axis Axis, steps int) Command {
	return Command{Kind: Step, Axis: axis, Steps: steps}
}

// PunchCommand returns a Punch command.
func PunchCommand() Command {
	return Command{Kind: Punch}
}

func (c Command) String() string {
	if c.Kind == Punch {
		return "PUNCH"
	}
	return fmt.Sprintf("%s%+d", c.Axis, c.Steps)
}

// Default spacing in stepper steps.
const (
	DefaultDotPitch    = 15
	DefaultCharSpacing = 30
)

// Layout holds the spacing of dots and letters on the sheet, in steps.
type Layout struct {
	DotPitch    int `json:"dot_pitch" mapstructure:"dot_pitch"`
	CharSpacing int `json:"char_spacing" mapstructure:"char_spacing"`
}

// DefaultLayout is the spacing the embosser was built for.
var DefaultLayout = Layout{
	DotPitch:    DefaultDotPitch,
	CharSpacing: DefaultCharSpacing,
}

// Advance returns the net X displacement of one letter: the column step and
// its return cancel out, leaving CharSpacing.
func (l Layout) Advance() int {
	return l.CharSpacing
}

// Cell is a recognized letter and its glyph.
type Cell struct {
	Letter rune
	Glyph  Glyph
}

// Cells yields the letters of text that have a glyph, in order. Anything
// outside A-Z, lowercase included, is skipped.
func Cells(text string) iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for _, r := range text {
			g, ok := Lookup(r)
			if !ok {
				continue
			}
			if !yield(Cell{Letter: r, Glyph: g}) {
				return
			}
		}
	}
}

// GlyphCommands returns the commands that emboss one glyph starting at the
// top-left dot. The carriage ends on the top-left dot of the next cell.
func (l Layout) GlyphCommands(g Glyph) []Command {
	cmds := make([]Command, 0, 9+g.Count())
	for col := 0; col < Cols; col++ {
		for row := 0; row < Rows; row++ {
			if g.Dot(row, col) {
				cmds = append(cmds, PunchCommand())
			}
			if row < Rows-1 {
				cmds = append(cmds, StepCommand(Y, l.DotPitch))
			}
		}
		cmds = append(cmds, StepCommand(Y, -(Rows-1)*l.DotPitch))
		if col == 0 {
			cmds = append(cmds, StepCommand(X, l.DotPitch))
		}
	}
	cmds = append(cmds,
		StepCommand(X, -l.DotPitch),
		StepCommand(X, l.CharSpacing),
	)
	return cmds
}

// Generate yields the commands that emboss text with the layout. Stopping
// the iteration early aborts the word.
func (l Layout) Generate(text string) iter.Seq[Command] {
	return func(yield func(Command) bool) {
		for cell := range Cells(text) {
			for _, c := range l.GlyphCommands(cell.Glyph) {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Generate yields the commands that emboss text with DefaultLayout.
func Generate(text string) iter.Seq[Command] {
	return DefaultLayout.Generate(text)
}
