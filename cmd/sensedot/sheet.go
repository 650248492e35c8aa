package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sensedot/sensedot/pkg/braille"
	"github.com/sensedot/sensedot/pkg/emboss"
)

var (
	dotStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	blankStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// sheetGrid lays punched positions out on a grid with one column per
// smallest X increment of the layout. Rows are the three dot rows.
func sheetGrid(dots []emboss.Position, layout braille.Layout) [][]bool {
	unit := gcd(layout.DotPitch, layout.Advance())
	if unit <= 0 {
		unit = 1
	}

	cols := 0
	for _, d := range dots {
		cols = max(cols, d.X/unit+1)
	}
	grid := make([][]bool, braille.Rows)
	for row := range grid {
		grid[row] = make([]bool, cols)
	}
	for _, d := range dots {
		row := d.Y / layout.DotPitch
		if d.X < 0 || row < 0 || row >= braille.Rows {
			continue
		}
		grid[row][d.X/unit] = true
	}
	return grid
}

// renderSheet draws the punched positions as they appear on the paper.
func renderSheet(dots []emboss.Position, layout braille.Layout) string {
	var sb strings.Builder
	for _, row := range sheetGrid(dots, layout) {
		for i, set := range row {
			if i > 0 {
				sb.WriteString(" ")
			}
			if set {
				sb.WriteString(dotStyle.Render("●"))
			} else {
				sb.WriteString(blankStyle.Render("·"))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
