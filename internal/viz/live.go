package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/physics"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	trailCapacity   = 400
)

var statsStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)

// Snapshot stores state at a specific time for replay.
type Snapshot struct {
	State  dynamo.State
	Time   float64
	Energy float64
}

type TickMsg time.Time

// Model steps a force law in real time and renders it. Parameters can be
// tuned while running; the law is only touched from Update.
type Model struct {
	law           *physics.ForceLaw
	stepper       dynamo.Stepper
	method        string
	state         dynamo.State
	t, dt         float64
	stepsPerFrame int
	width, height int
	canvas        *Canvas
	trail         []dynamo.State
	running       bool
	phaseView     bool
	theme         Theme
	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
	initialState  dynamo.State
	energyHistory []float64
	history       []Snapshot
	playHead      int
	showHelp      bool
}

// NewModel initializes the simulation and visualization state. The model
// owns law from here on; pass a clone if the caller keeps using it.
func NewModel(law *physics.ForceLaw, st dynamo.Stepper, method string, s0 dynamo.State, dt float64) Model {
	params := law.GetParams()
	initialParams := make(map[string]float64, len(params))
	for k, v := range params {
		initialParams[k] = v
	}

	return Model{
		law:           law,
		stepper:       st,
		method:        method,
		state:         s0,
		dt:            dt,
		stepsPerFrame: 1,
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		trail:         make([]dynamo.State, 0, trailCapacity),
		running:       true,
		theme:         ThemeCyberpunk,
		params:        params,
		initialParams: initialParams,
		paramKeys:     law.ParamNames(),
		initialState:  s0,
		energyHistory: make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "+", "=":
			m.stepsPerFrame = min(m.stepsPerFrame*2, 64)
		case "-", "_":
			m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
		case "p":
			m.phaseView = !m.phaseView
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = NextTheme(m.theme)
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				for i := 0; i < m.stepsPerFrame; i++ {
					m.step()
				}
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key]
	if val == 0 {
		val = 1e-3
	}
	newVal := val * factor
	if err := m.law.SetParam(key, newVal); err == nil {
		m.params[key] = newVal
	}
}

// step advances the physics simulation.
func (m *Model) step() {
	next := m.stepper.Step(m.law, m.state, m.t, m.dt)
	if !next.IsValid() {
		m.running = false
		return
	}
	m.state = next
	m.t += m.dt

	energy := m.law.Energy(m.t, m.state)
	m.energyHistory = appendCapped(m.energyHistory, energy, historyCapacity)
	m.trail = appendCapped(m.trail, m.state, trailCapacity)
	m.history = appendCapped(m.history, Snapshot{State: m.state, Time: m.t, Energy: energy}, historyCapacity)
}

func appendCapped[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[1:]
	}
	return s
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores the initial state and parameters.
func (m *Model) reset() {
	m.t = 0
	m.state = m.initialState
	m.trail = m.trail[:0]
	m.energyHistory = m.energyHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	for k, v := range m.initialParams {
		m.params[k] = v
		_ = m.law.SetParam(k, v)
	}
}

// current returns the displayed state, which differs from the live one during replay.
func (m Model) current() (dynamo.State, float64) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		snap := m.history[m.playHead]
		return snap.State, snap.Time
	}
	return m.state, m.t
}

func (m Model) Time() float64       { return m.t }
func (m Model) State() dynamo.State { return m.state }
func (m Model) Running() bool       { return m.running }
func (m Model) Params() map[string]float64 {
	out := make(map[string]float64, len(m.params))
	for k, v := range m.params {
		out[k] = v
	}
	return out
}

// View renders the TUI interface.
func (m Model) View() string {
	pal := m.theme.Palette()
	state, t := m.current()

	m.draw(state)
	canvasView := pal.Canvas.Render(m.canvas.String())

	status := "RUNNING"
	switch {
	case m.playHead != -1 && m.running:
		status = fmt.Sprintf("REPLAY (%.1fs)", t-m.t)
	case m.playHead != -1:
		status = fmt.Sprintf("REPLAY PAUSED (%.1fs)", t-m.t)
	case !m.running:
		status = "PAUSED"
	}

	var s strings.Builder
	s.WriteString(pal.Header.Render(strings.ToUpper(m.law.Name())) + "\n")
	s.WriteString(fmt.Sprintf("%s  %s\n\n", status, Subtle.Render(m.method)))
	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(pal.Graph.Render(chart) + "\n")
	}
	velocities := make([]float64, len(m.trail))
	for i, x := range m.trail {
		velocities[i] = x[1]
	}
	s.WriteString(SparklineChart(velocities, 30) + "\n\n")

	s.WriteString(pal.Label.Render("Time") + pal.Value.Render(fmt.Sprintf("%.2f", t)) + "\n")
	s.WriteString(pal.Label.Render("x") + pal.Value.Render(fmt.Sprintf("%+.4f", state[0])) + "\n")
	s.WriteString(pal.Label.Render("v") + pal.Value.Render(fmt.Sprintf("%+.4f", state[1])) + "\n")
	s.WriteString(pal.Label.Render("Energy") + pal.Value.Render(fmt.Sprintf("%.4f", m.law.Energy(t, state))) + "\n")
	s.WriteString(pal.Label.Render("Speed") + pal.Value.Render(fmt.Sprintf("%dx", m.stepsPerFrame)) + "\n")

	s.WriteString("\nPARAMETERS\n")
	if len(m.paramKeys) == 0 {
		s.WriteString(pal.Label.Render("  (none)") + "\n")
	}
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-8s %s %.3f", k, ParamBar(m.params[k], m.initialParams[k], 10), m.params[k])
		if i == m.selected {
			s.WriteString(pal.Active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + pal.Label.Render(line) + "\n")
		}
	}
	s.WriteString(pal.Help.Render("\n" + Separator(24) + "\nSP:Pause R:Reset Q:Quit\nT:Theme  P:Phase ?:Help\n[ ]:Time-Travel ↑↓:Tune"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  + / -    - Faster / slower          ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  P        - Toggle phase portrait    ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// draw renders state onto the canvas, either as a mechanical picture or as
// the phase-space trail.
func (m *Model) draw(state dynamo.State) {
	m.canvas.Clear()
	if m.phaseView {
		m.drawPhase()
		return
	}
	switch m.law.Kind() {
	case physics.SimpleHarmonic, physics.ChaoticPendulum, physics.Damped, physics.DampedDriven:
		m.drawPendulum(state)
	default:
		m.drawSpring(state)
	}
}

func (m *Model) drawPendulum(state dynamo.State) {
	cw, ch := m.width*2, m.height*4
	px, py := cw/2, ch/6
	length := float64(ch) * 0.6
	theta := state[0]
	bx := px + int(length*math.Sin(theta))
	by := py + int(length*math.Cos(theta))

	m.canvas.DrawLine(px, py, bx, by)
	for dx := -2; dx <= 2; dx++ {
		for dy := -2; dy <= 2; dy++ {
			if dx*dx+dy*dy <= 4 {
				m.canvas.Set(bx+dx, by+dy)
			}
		}
	}
	for dx := -4; dx <= 4; dx++ {
		m.canvas.Set(px+dx, py)
	}
}

func (m *Model) drawSpring(state dynamo.State) {
	cw, ch := m.width*2, m.height*4
	cy := ch / 2
	wallX := 4
	scale := float64(cw) / 8
	rest := cw / 2
	mx := rest + int(state[0]*scale)
	if mx < wallX+8 {
		mx = wallX + 8
	}

	for y := cy - 8; y <= cy+8; y++ {
		m.canvas.Set(wallX, y)
	}
	coils := 10
	seg := float64(mx-wallX) / float64(coils*2)
	prevX, prevY := wallX, cy
	for i := 1; i <= coils*2; i++ {
		x := wallX + int(seg*float64(i))
		y := cy - 4
		if i%2 == 0 {
			y = cy + 4
		}
		if i == coils*2 {
			y = cy
		}
		m.canvas.DrawLine(prevX, prevY, x, y)
		prevX, prevY = x, y
	}
	for dx := 0; dx <= 8; dx++ {
		for dy := -5; dy <= 5; dy++ {
			m.canvas.Set(mx+dx, cy+dy)
		}
	}
}

func (m *Model) drawPhase() {
	if len(m.trail) == 0 {
		return
	}
	xs := make([]float64, len(m.trail))
	vs := make([]float64, len(m.trail))
	for i, s := range m.trail {
		xs[i], vs[i] = s[0], s[1]
	}
	m.canvas.Polyline(FitWindow(xs, vs), xs, vs)
}
