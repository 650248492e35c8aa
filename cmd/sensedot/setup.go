package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/sensedot/sensedot/pkg/braille"
	"github.com/sensedot/sensedot/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type SetupCommand struct {
	Config       string `long:"config" default:"sensedot.json" description:"Configuration file to write"`
	MaxID        int    `long:"max-id" default:"6" description:"Highest servo ID to scan for"`
	TicksPerStep int    `long:"ticks-per-step" default:"4" description:"Raw servo ticks per stepper pulse"`
	InvertPunch  bool   `long:"invert-punch" description:"Punch engages at the low end of its range"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("SenseDot Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━"))
	fmt.Println()

	// Keep timing and layout from an earlier setup
	config := robot.DefaultConfig()
	if robot.ConfigExists(c.Config) {
		loaded, err := robot.LoadConfigFrom(c.Config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", c.Config, err)
			os.Exit(1)
		}
		config = loaded
	}

	// Step 1: Find the carriage bus
	bus := c.scanForCarriage()
	config.Port = bus.port

	if canKeepCalibration(config.Calibration, bus.servos) && confirmKeepCalibration(c.Config) {
		bus.bus.Close()
	} else {
		// Step 2: Identify the servos
		fmt.Println()
		fmt.Println(subHeaderStyle.Render("━━━ Identifying Servos ━━━"))
		fmt.Println()
		roles := identifyServos(bus)

		// Step 3: Record ranges of motion
		fmt.Println()
		fmt.Println(subHeaderStyle.Render("━━━ Calibrating Carriage ━━━"))
		fmt.Println()
		config.Calibration = c.calibrate(roles, config.Layout)
		bus.bus.Close()
	}

	if err := config.Calibration.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Calibration incomplete: %v\n", err)
		os.Exit(1)
	}

	if err := config.SaveTo(c.Config); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", c.Config)
	fmt.Println()
	fmt.Println("Try a word with: " + headerStyle.Render("sensedot emboss HOLA"))

	return nil
}

// canKeepCalibration reports whether an earlier calibration is complete and
// every servo it names was found on the bus.
func canKeepCalibration(cal robot.Calibration, found []feetech.FoundServo) bool {
	if cal.Validate() != nil {
		return false
	}
	present := make(map[int]bool, len(found))
	for _, s := range found {
		present[s.ID] = true
	}
	for _, id := range cal.MotorIDs() {
		if !present[id] {
			return false
		}
	}
	return true
}

func confirmKeepCalibration(path string) bool {
	keep := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Keep the existing calibration?").
				Description(fmt.Sprintf("%s already calibrates these servos. Choose No to calibrate again.", path)).
				Affirmative("Keep").
				Negative("Recalibrate").
				Value(&keep),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return keep
}

// assignedServo is a servo the user picked for a motor.
type assignedServo struct {
	id    int
	servo *feetech.Servo
}

type busInfo struct {
	port   string
	servos []feetech.FoundServo
	bus    *feetech.Bus
}

func (c *SetupCommand) scanForCarriage() busInfo {
	fmt.Println("Scanning serial ports for servos...")
	fmt.Println()

	buses := findBuses(c.MaxID)
	if len(buses) == 0 {
		fmt.Println("No carriage found.")
		fmt.Println("Make sure the embosser is connected and powered on.")
		os.Exit(1)
	}
	if len(buses) == 1 {
		return buses[0]
	}

	var options []huh.Option[int]
	for i, b := range buses {
		label := fmt.Sprintf("%s (%d servos)", b.port, len(b.servos))
		options = append(options, huh.NewOption(label, i))
	}

	var choice int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Which port is the embosser on?").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	for i, b := range buses {
		if i != choice {
			b.bus.Close()
		}
	}
	return buses[choice]
}

func findBuses(maxID int) []busInfo {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil
	}

	var buses []busInfo

	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)

		bus, err := feetech.NewBus(feetech.BusConfig{
			Port:     port,
			BaudRate: 1_000_000,
			Protocol: feetech.ProtocolSTS,
			Timeout:  100 * time.Millisecond,
		})
		if err != nil {
			cancel()
			continue
		}

		servos, err := bus.Scan(ctx, 1, maxID)
		cancel()

		// The carriage needs three servos
		if err != nil || len(servos) < len(robot.AllMotors()) {
			bus.Close()
			continue
		}

		fmt.Printf("  Found %d servos on %s\n", len(servos), port)
		buses = append(buses, busInfo{
			port:   port,
			servos: servos,
			bus:    bus,
		})
	}

	return buses
}

// identifyServos wiggles every servo in turn and asks which motor it is.
func identifyServos(b busInfo) map[robot.MotorName]assignedServo {
	roles := make(map[robot.MotorName]assignedServo)

	for _, s := range b.servos {
		var needed []robot.MotorName
		for _, name := range robot.AllMotors() {
			if _, ok := roles[name]; !ok {
				needed = append(needed, name)
			}
		}
		if len(needed) == 0 {
			break
		}

		servo := feetech.NewServo(b.bus, s.ID, s.Model)
		role := identifyServoWithWiggle(servo, s.ID, needed)
		if role != "" {
			roles[role] = assignedServo{id: s.ID, servo: servo}
		}
	}

	if len(roles) != len(robot.AllMotors()) {
		fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━"))
		for _, name := range robot.AllMotors() {
			if _, ok := roles[name]; !ok {
				fmt.Printf("No servo assigned to %s.\n", name)
			}
		}
		fmt.Println()
		fmt.Println("The X axis, Y axis and punch are all required for embossing.")
		os.Exit(1)
	}

	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Servos identified:"))
	for _, name := range robot.AllMotors() {
		fmt.Printf("  %-8s id %d\n", name+":", roles[name].id)
	}
	return roles
}

func identifyServoWithWiggle(servo *feetech.Servo, id int, needed []robot.MotorName) robot.MotorName {
	ctx := context.Background()

	// Read current position
	originalPos, err := servo.Position(ctx)
	if err != nil {
		fmt.Printf("  Error reading position of servo %d: %v\n", id, err)
		return ""
	}

	// Enable torque for wiggle
	if err := servo.Enable(ctx); err != nil {
		fmt.Printf("  Error enabling servo %d: %v\n", id, err)
		return ""
	}

	fmt.Printf("\n  Wiggling servo %d...\n", id)

	// Wiggle: single gentle, slow movement
	wiggleAmount := 30
	moveTimeMs := 500
	servo.SetPositionWithTime(ctx, originalPos+wiggleAmount, moveTimeMs)
	time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)
	servo.SetPositionWithTime(ctx, originalPos-wiggleAmount, moveTimeMs)
	time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)

	// Return to original position
	servo.SetPositionWithTime(ctx, originalPos, moveTimeMs)
	time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)

	// Disable torque
	servo.Disable(ctx)

	descriptions := map[robot.MotorName]string{
		robot.XAxis: "X axis (moves across the line)",
		robot.YAxis: "Y axis (moves between dot rows)",
		robot.Punch: "Punch (presses the dots)",
	}

	var options []huh.Option[string]
	for _, name := range needed {
		options = append(options, huh.NewOption(descriptions[name], string(name)))
	}
	options = append(options, huh.NewOption("Skip this servo", "skip"))

	var role string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Which motor is servo %d?", id)).
				Description("The servo that just wiggled").
				Options(options...).
				Value(&role),
		),
	)

	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	if role == "skip" {
		return ""
	}

	return robot.MotorName(role)
}

func (c *SetupCommand) calibrate(roles map[robot.MotorName]assignedServo, layout braille.Layout) robot.Calibration {
	// Disable all servos so user can move the carriage freely
	ctx := context.Background()
	servos := make(map[robot.MotorName]*feetech.Servo, len(roles))
	ids := make(map[robot.MotorName]int, len(roles))
	for name, r := range roles {
		r.servo.Disable(ctx)
		servos[name] = r.servo
		ids[name] = r.id
	}

	fmt.Println(subHeaderStyle.Render("Record range of motion"))
	fmt.Println("Slide the carriage over the whole sheet on both axes.")
	fmt.Println("Move the punch between fully retracted and fully pressed.")
	fmt.Println()

	model := newCalibrationModel(servos, ids, layout, c.TicksPerStep, c.InvertPunch)
	for name, s := range servos {
		if pos, err := s.Position(ctx); err == nil {
			model.observe(name, pos)
		}
	}

	p := tea.NewProgram(model)
	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running calibration: %v\n", err)
		os.Exit(1)
	}

	cm := finalModel.(calibrationModel)
	fmt.Println()
	fmt.Println("Carriage calibrated.")
	return cm.calibration()
}

// motorRange is the span of raw positions seen for one servo.
type motorRange struct {
	cur, min, max int
	seen          bool
}

// Calibration TUI model
type calibrationModel struct {
	servos       map[robot.MotorName]*feetech.Servo
	ids          map[robot.MotorName]int
	ranges       map[robot.MotorName]*motorRange
	layout       braille.Layout
	ticksPerStep int
	invertPunch  bool
	quitting     bool
}

type tickMsg time.Time

func newCalibrationModel(
	servos map[robot.MotorName]*feetech.Servo,
	ids map[robot.MotorName]int,
	layout braille.Layout,
	ticksPerStep int,
	invertPunch bool,
) calibrationModel {
	ranges := make(map[robot.MotorName]*motorRange, len(robot.AllMotors()))
	for _, name := range robot.AllMotors() {
		ranges[name] = &motorRange{}
	}
	return calibrationModel{
		servos:       servos,
		ids:          ids,
		ranges:       ranges,
		layout:       layout,
		ticksPerStep: max(ticksPerStep, 1),
		invertPunch:  invertPunch,
	}
}

func (m calibrationModel) observe(name robot.MotorName, pos int) {
	r := m.ranges[name]
	if !r.seen {
		r.min, r.max, r.seen = pos, pos, true
	}
	r.cur = pos
	r.min = min(r.min, pos)
	r.max = max(r.max, pos)
}

// calibration builds the motor calibration from the recorded ranges.
func (m calibrationModel) calibration() robot.Calibration {
	cal := make(robot.Calibration, len(m.ranges))
	for _, name := range robot.AllMotors() {
		r := m.ranges[name]
		mc := robot.MotorCalibration{
			ID:       m.ids[name],
			RangeMin: r.min,
			RangeMax: r.max,
		}
		if name == robot.Punch {
			mc.Retract, mc.Engage = r.min, r.max
			if m.invertPunch {
				mc.Retract, mc.Engage = mc.Engage, mc.Retract
			}
		} else {
			mc.TicksPerStep = m.ticksPerStep
		}
		cal[name] = mc
	}
	return cal
}

// travel describes what a recorded range allows and whether it is enough
// to emboss: one letter on X, three dot rows on Y, some stroke on the punch.
func (m calibrationModel) travel(name robot.MotorName) (string, bool) {
	r := m.ranges[name]
	span := r.max - r.min
	if name == robot.Punch {
		mc := m.calibration()[robot.Punch]
		return fmt.Sprintf("retract %d, engage %d", mc.Retract, mc.Engage), span > 0
	}

	steps := span / m.ticksPerStep
	if name == robot.YAxis {
		need := 2 * m.layout.DotPitch
		return fmt.Sprintf("%d steps (%d needed)", steps, need), steps >= need
	}
	letters := 0
	if adv := m.layout.Advance(); adv > 0 {
		letters = steps / adv
	}
	return fmt.Sprintf("%d steps, %d letters", steps, letters), letters > 0
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m calibrationModel) Init() tea.Cmd {
	return tick()
}

func (m calibrationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		ctx := context.Background()
		for name, s := range m.servos {
			pos, err := s.Position(ctx)
			if err != nil {
				continue
			}
			m.observe(name, pos)
		}
		return m, tick()
	}

	return m, nil
}

func (m calibrationModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	// Table styles
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableMotorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableCurrentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
	tableRangeGoodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	tableRangeLowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	motors := robot.AllMotors()
	rows := make([][]string, 0, len(motors))
	usable := make([]bool, 0, len(motors))
	for _, name := range motors {
		r := m.ranges[name]
		travel, ok := m.travel(name)
		usable = append(usable, ok)
		rows = append(rows, []string{
			fmt.Sprintf("%s (id %d)", name, m.ids[name]),
			fmt.Sprintf("%d", r.cur),
			fmt.Sprintf("%d", r.min),
			fmt.Sprintf("%d", r.max),
			travel,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Motor", "Current", "Min", "Max", "Travel").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableMotorStyle
			case 1:
				return tableCurrentStyle
			case 4:
				if row >= 0 && row < len(usable) && usable[row] {
					return tableRangeGoodStyle
				}
				return tableRangeLowStyle
			default:
				return tableCellStyle
			}
		})

	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("%d ticks per step. Press Enter when done", m.ticksPerStep)))

	return sb.String()
}
