package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/physics"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	idleDescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var configFields = []string{"x0", "v0", "dt", "method"}

type app struct {
	state, cursor int
	models        []string
	selected      string
	values        map[string]float64
	methods       []string
	methodIdx     int
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	liveModel     Model
}

// NewInteractiveApp returns the model picker that launches a live view.
func NewInteractiveApp() tea.Model {
	methods := integrators.Methods()
	idx := 0
	for i, m := range methods {
		if m == string(integrators.JointRK4Method) {
			idx = i
		}
	}
	return app{
		state:     stateMenu,
		models:    physics.Names(),
		values:    map[string]float64{"x0": 0.2, "v0": 0, "dt": 0.02},
		methods:   methods,
		methodIdx: idx,
	}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case stateMenu:
			return m.menuKey(msg)
		case stateConfig:
			return m.configKey(msg)
		}
	}
	if m.state == stateSim {
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.models)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.models[m.cursor]
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m app) configKey(msg tea.KeyMsg) (app, tea.Cmd) {
	field := configFields[m.fieldCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%g", &val); err == nil {
				m.values[field] = val
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(configFields)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		if field == "method" {
			m.methodIdx = (m.methodIdx + 1) % len(m.methods)
		} else {
			m.editing, m.editBuf = true, fmt.Sprintf("%g", m.values[field])
		}
	case "left", "h":
		m.nudge(field, -1)
	case "right", "l":
		m.nudge(field, 1)
	case "s":
		return m.start()
	}
	return m, nil
}

func (m *app) nudge(field string, dir int) {
	switch field {
	case "method":
		m.methodIdx = (m.methodIdx + dir + len(m.methods)) % len(m.methods)
	case "dt":
		if dir > 0 {
			m.values["dt"] *= 2
		} else {
			m.values["dt"] /= 2
		}
	default:
		m.values[field] += 0.1 * float64(dir)
	}
}

func (m app) start() (app, tea.Cmd) {
	law, err := physics.New(m.selected)
	if err != nil {
		m.err = err
		return m, nil
	}
	method := integrators.Method(m.methods[m.methodIdx])
	st, err := liveStepper(method)
	if err != nil {
		m.err = err
		return m, nil
	}
	if dt := m.values["dt"]; !(dt > 0) {
		m.err = fmt.Errorf("dt must be positive, got %g", dt)
		return m, nil
	}
	m.liveModel = NewModel(law, st, string(method), dynamo.NewState(m.values["x0"], m.values["v0"]), m.values["dt"])
	m.state = stateSim
	return m, m.liveModel.Init()
}

// liveStepper picks a per-frame stepper; the adaptive solver refines inside each frame step.
func liveStepper(m integrators.Method) (dynamo.Stepper, error) {
	if m == integrators.AdaptiveMethod {
		return integrators.NewRK45(), nil
	}
	return integrators.FixedStepper(m)
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m app) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("OSCSIM") + "\n    " + subStyle.Render("oscillator integration engine") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.models {
		desc := physics.Describe(name)
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-24s", name)), descStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-24s", name)), idleDescStyle.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m app) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render(strings.ToUpper(m.selected)) + "\n    " + subStyle.Render(physics.Describe(m.selected)) + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range configFields {
		valStr := fmt.Sprintf("%10s", m.methods[m.methodIdx])
		if name != "method" {
			valStr = fmt.Sprintf("%10.4g", m.values[name])
		}
		if m.editing && i == m.fieldCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-10s", name)), descStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", name)), idleDescStyle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive starts the model picker.
func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}

// RunLive opens the live view directly.
func RunLive(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
