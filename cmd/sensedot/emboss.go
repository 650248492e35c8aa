package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/sensedot/sensedot/pkg/braille"
	"github.com/sensedot/sensedot/pkg/emboss"
)

type EmbossCommand struct {
	CarriageOptions

	Args struct {
		Words []string `positional-arg-name:"WORD" required:"1"`
	} `positional-args:"yes"`
}

const (
	headerHeight   = 4 // title, letter, progress + blank line
	legendHeight   = 2 // legend row + blank
	footerHeight   = 7 // log box height
	maxLogs        = 5 // number of log messages to show
	borderSize     = 2 // chart border
	xDataSet       = "x"
	yDataSet       = "y"
	defaultWidth   = 80
	defaultHeight  = 20
	minChartWidth  = 40
	minChartHeight = 10
)

// Axis colors
var axisColors = map[string]string{
	xDataSet: "51",  // cyan
	yDataSet: "208", // orange
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	letterStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type embossModel struct {
	ctrl     *emboss.Controller
	cancel   context.CancelFunc
	target   string // carriage name
	text     string
	chart    *streamlinechart.Model
	bar      progress.Model
	width    int      // terminal width
	height   int      // terminal height
	logs     []string // last N log messages
	state    emboss.State
	result   error
	finished bool
	quitting bool
}

func (m *embossModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the controller
type stateMsg emboss.State
type logMsg string
type doneMsg struct{ err error }

func waitForState(ctrl *emboss.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(ctrl *emboss.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

// travel returns the lowest and highest coordinate the carriage reaches on
// either axis while running cmds.
func travel(cmds []braille.Command) (lo, hi float64) {
	var pos emboss.Position
	for _, c := range cmds {
		pos = pos.Apply(c)
		lo = min(lo, float64(pos.X), float64(pos.Y))
		hi = max(hi, float64(pos.X), float64(pos.Y))
	}
	return lo, hi
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *embossModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return defaultWidth, defaultHeight // default size before we know terminal size
	}
	width = max(m.width-borderSize-2, minChartWidth)
	height = max(m.height-headerHeight-legendHeight-footerHeight-borderSize, minChartHeight)
	return width, height
}

func (m *embossModel) resize() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
	m.bar.Width = w
}

func initialEmbossModel(ctrl *emboss.Controller, cancel context.CancelFunc, target, text string) embossModel {
	lo, hi := travel(ctrl.Plan(text))
	chart := streamlinechart.New(defaultWidth, defaultHeight,
		streamlinechart.WithYRange(lo, hi+1),
	)
	for _, name := range []string{xDataSet, yDataSet} {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(axisColors[name]))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}

	return embossModel{
		ctrl:   ctrl,
		cancel: cancel,
		target: target,
		text:   text,
		chart:  &chart,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultWidth)),
	}
}

func (m embossModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.ctrl),
	)
}

func (m embossModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.finished {
				// Stop draining; the run returns after the current command
				m.cancel()
			}
			m.quitting = true
			return m, tea.Quit
		}

	case stateMsg:
		m.state = emboss.State(msg)
		m.chart.PushDataSet(xDataSet, float64(m.state.Position.X))
		m.chart.PushDataSet(yDataSet, float64(m.state.Position.Y))
		m.chart.DrawAll()
		return m, waitForState(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)

	case doneMsg:
		m.finished = true
		m.result = msg.err
		return m, nil
	}

	return m, nil
}

func (m embossModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("SenseDot Emboss"))
	sb.WriteString(fmt.Sprintf(" - %s on %s", m.text, m.target))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n")
	if m.state.Letter != 0 {
		g, _ := braille.Lookup(m.state.Letter)
		sb.WriteString(letterStyle.Render(fmt.Sprintf("%c %c", m.state.Letter, g.Rune())))
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  %s  x=%d y=%d  dots=%d",
			m.state.Command, m.state.Position.X, m.state.Position.Y, m.state.Punches)))
	}
	sb.WriteString("\n")

	percent := 1.0
	if m.state.Total > 0 {
		percent = float64(m.state.Index) / float64(m.state.Total)
	}
	sb.WriteString(m.bar.ViewAs(percent))
	sb.WriteString(statusStyle.Render(fmt.Sprintf(" %d/%d", m.state.Index, m.state.Total)))
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, minChartWidth))

	lines := append([]string(nil), m.logs...)
	switch {
	case m.finished && m.result != nil:
		lines = append(lines, errorStyle.Render(m.result.Error()))
		lines = append(lines, statusStyle.Render("Press 'q' to quit"))
	case m.finished:
		lines = append(lines, statusStyle.Render("Done. Press 'q' to quit"))
	case len(lines) == 0:
		lines = append(lines, statusStyle.Render("Press 'q' to abort"))
	}
	sb.WriteString(logStyle.Render(strings.Join(lines, "\n")))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend() string {
	var items []string
	for _, name := range []string{xDataSet, yDataSet} {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(axisColors[name])).Bold(true)
		item := colorStyle.Render("━━") + " " + strings.ToUpper(name) + " position"
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}

func (c *EmbossCommand) Execute(args []string) error {
	text := c.text(c.Args.Words)

	cfg, err := c.loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "No configuration found. Run 'sensedot setup' first, or use --dry-run.")
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	car, err := c.open(ctx, cfg)
	if err != nil {
		return err
	}

	ctrl, err := emboss.NewController(emboss.Config{
		Actuator: car,
		Layout:   cfg.Layout,
		Settle:   cfg.Timing.SettleDelay,
	})
	if err != nil {
		car.finish(false)
		return err
	}

	// Run controller in background
	done := make(chan error, 1)
	go func() {
		done <- ctrl.Run(ctx, text)
	}()

	relay := make(chan error, 1)
	p := tea.NewProgram(initialEmbossModel(ctrl, cancel, car.name, text), tea.WithAltScreen())
	go func() {
		err := <-done
		relay <- err
		p.Send(doneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-relay
		car.finish(false)
		return fmt.Errorf("run TUI: %w", err)
	}

	cancel()
	runErr := <-relay
	if car.hw != nil && !c.Home {
		fmt.Println(dimStyle.Render("Carriage stopped at " + car.where()))
	}
	if err := car.finish(c.Home); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if car.sim != nil {
		fmt.Println(renderSheet(car.sim.Dots(), ctrl.Layout()))
		fmt.Printf("%d dots, %d step pulses\n", len(car.sim.Dots()), car.sim.Pulses())
	}

	if errors.Is(runErr, context.Canceled) {
		fmt.Println("Embossing aborted.")
		return nil
	}
	return runErr
}
