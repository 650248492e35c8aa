package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/sensedot/sensedot/pkg/braille"
	"github.com/sensedot/sensedot/pkg/robot"
)

type PlanCommand struct {
	Config      string `long:"config" default:"sensedot.json" description:"Configuration file to take the layout from"`
	DotPitch    int    `long:"dot-pitch" description:"Steps between dots (overrides config)"`
	CharSpacing int    `long:"char-spacing" description:"Steps between letters (overrides config)"`
	Upper       bool   `long:"upper" description:"Convert input to uppercase first"`

	Args struct {
		Words []string `positional-arg-name:"WORD" required:"1"`
	} `positional-args:"yes"`
}

func (c *PlanCommand) layout() (braille.Layout, error) {
	layout := braille.DefaultLayout
	cfg, err := robot.LoadConfigFrom(c.Config)
	switch {
	case err == nil:
		layout = cfg.Layout
	case !errors.Is(err, fs.ErrNotExist):
		return layout, err
	}
	if c.DotPitch > 0 {
		layout.DotPitch = c.DotPitch
	}
	if c.CharSpacing > 0 {
		layout.CharSpacing = c.CharSpacing
	}
	return layout, nil
}

func (c *PlanCommand) Execute(args []string) error {
	text := strings.Join(c.Args.Words, " ")
	if c.Upper {
		text = strings.ToUpper(text)
	}

	layout, err := c.layout()
	if err != nil {
		return err
	}

	var commands, punches, pulses int
	for cell := range braille.Cells(text) {
		fmt.Println(subHeaderStyle.Render(fmt.Sprintf("%c %c", cell.Letter, cell.Glyph.Rune())))
		for _, cmd := range layout.GlyphCommands(cell.Glyph) {
			fmt.Printf("  %s\n", cmd)
			commands++
			if cmd.Kind == braille.Punch {
				punches++
			} else {
				pulses += max(cmd.Steps, -cmd.Steps)
			}
		}
	}

	fmt.Println(dimStyle.Render(fmt.Sprintf("%d commands, %d dots, %d step pulses (dot pitch %d, char spacing %d)",
		commands, punches, pulses, layout.DotPitch, layout.CharSpacing)))
	return nil
}
