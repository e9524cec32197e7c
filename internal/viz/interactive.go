package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/bounce/internal/config"
	"github.com/san-kum/bounce/internal/experiment"
)

var presetInfo = map[string]string{
	"classic/original": "a single ball, as it began",
	"classic/handful":  "seven random balls",
	"pool/break":       "cue ball into a rack",
	"pool/cradle":      "momentum down a line",
	"rain/light":       "a few drops from above",
	"rain/heavy":       "a crowded downpour",
	"space/zero_g":     "no gravity, no drag",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// field is one editable config value on the setup screen.
type field struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
	step float64
}

var fields = []field{
	{"bodies", func(c *config.Config) float64 { return float64(c.Population.Count) }, func(c *config.Config, v float64) { c.Population.Count = int(v) }, 1},
	{"gravity", func(c *config.Config) float64 { return c.Physics.Gravity }, func(c *config.Config, v float64) { c.Physics.Gravity = v }, 0.5},
	{"restitution", func(c *config.Config) float64 { return c.Physics.Restitution }, func(c *config.Config, v float64) { c.Physics.Restitution = v }, 0.05},
	{"drag", func(c *config.Config) float64 { return c.Physics.Drag }, func(c *config.Config, v float64) { c.Physics.Drag = v }, 0.05},
	{"tick_ms", func(c *config.Config) float64 { return float64(c.TickMs) }, func(c *config.Config, v float64) { c.TickMs = int(v) }, 5},
	{"seed", func(c *config.Config) float64 { return float64(c.Seed) }, func(c *config.Config, v float64) { c.Seed = int64(v) }, 1},
}

type model struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	liveModel     Model
}

// NewInteractiveApp lists every preset as group/name.
func NewInteractiveApp() *model {
	var presets []string
	for _, g := range config.ListGroups() {
		for _, p := range config.ListPresets(g) {
			presets = append(presets, g+"/"+p)
		}
	}
	return &model{state: stateMenu, presets: presets}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		group, name, _ := strings.Cut(m.selected, "/")
		m.cfg = config.GetPreset(group, name)
		if m.cfg == nil {
			m.cfg = config.DefaultConfig()
		}
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				fields[m.fieldCursor].set(m.cfg, val)
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
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	f := fields[m.fieldCursor]
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", f.get(m.cfg))
	case "s":
		cmd := m.start()
		return m, cmd
	case "left", "h":
		f.set(m.cfg, f.get(m.cfg)-f.step)
	case "right", "l":
		f.set(m.cfg, f.get(m.cfg)+f.step)
	}
	return m, nil
}

func (m *model) start() tea.Cmd {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return nil
	}
	live, err := NewModel(experiment.Factory(m.cfg, nil), m.cfg.Seed, m.selected)
	if err != nil {
		m.err = err
		return nil
	}
	m.liveModel = live
	m.state = stateSim
	return m.liveModel.Init()
}

func (m model) View() string {
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

var (
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	chosenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	idleDimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	hintKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(hintKeyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("BOUNCE", CurrentTheme.Secondary, CurrentTheme.Primary) + "\n    " + Subtle.Render("circle collision sandbox") + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), chosenStyle.Render(fmt.Sprintf("%-16s", name)), accentStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-16s", name)), idleDimStyle.Render(desc)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + chosenStyle.Render(strings.ToUpper(m.selected)) + "\n    " + Subtle.Render(presetInfo[m.selected]) + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, f := range fields {
		valStr := fmt.Sprintf("%8.3g", f.get(m.cfg))
		if m.editing && i == m.fieldCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), chosenStyle.Render(fmt.Sprintf("%-12s", f.name)), accentStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-12s", f.name)), idleDimStyle.Render(valStr)))
		}
	}
	if len(m.cfg.Bodies) > 0 {
		b.WriteString("\n    " + Subtle.Render(fmt.Sprintf("%d fixed bodies; population settings unused", len(m.cfg.Bodies))) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n    " + LevelLow.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}
