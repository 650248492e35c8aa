package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sensedot/sensedot/pkg/braille"
)

type PreviewCommand struct {
	Upper bool `long:"upper" description:"Convert input to uppercase first"`

	Args struct {
		Words []string `positional-arg-name:"WORD" required:"1"`
	} `positional-args:"yes"`
}

var cellStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

// renderCell draws one glyph as a 3x2 dot grid under its letter.
func renderCell(cell braille.Cell) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%c  %c", cell.Letter, cell.Glyph.Rune())))
	for row := 0; row < braille.Rows; row++ {
		sb.WriteString("\n")
		for col := 0; col < braille.Cols; col++ {
			if col > 0 {
				sb.WriteString(" ")
			}
			if cell.Glyph.Dot(row, col) {
				sb.WriteString(dotStyle.Render("●"))
			} else {
				sb.WriteString(blankStyle.Render("○"))
			}
		}
	}
	return cellStyle.Render(sb.String())
}

func (c *PreviewCommand) Execute(args []string) error {
	text := strings.Join(c.Args.Words, " ")
	if c.Upper {
		text = strings.ToUpper(text)
	}

	var cells []string
	var unicode strings.Builder
	for cell := range braille.Cells(text) {
		cells = append(cells, renderCell(cell))
		unicode.WriteRune(cell.Glyph.Rune())
	}
	if len(cells) == 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("Nothing to emboss: only the %d letters A-Z are embossed.", braille.Letters())))
		return nil
	}

	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	fmt.Println(unicode.String())
	return nil
}
