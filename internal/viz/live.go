package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/bounce/internal/config"
	"github.com/san-kum/bounce/internal/input"
	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	gifFile         = "bounce.gif"
)

var (
	canvasStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Snapshot stores a rendered tick for replay.
type Snapshot struct {
	Frame  sim.Frame
	Energy float64
}

// Model drives a simulator from the Bubble Tea event loop. Movement keys are
// latched and applied on the next tick to the selected body, or to every body.
type Model struct {
	factory sim.Factory
	seed    int64
	title   string

	sim    *sim.Simulator
	latch  *input.Latch
	source input.Source
	err    error

	width, height int
	canvas        *Canvas
	running       bool
	selected      int
	initialEnergy float64
	energyHistory []float64
	history       []Snapshot
	playHead      int
	recording     bool
	frames        []*image.Paletted
	showHelp      bool
}

// NewModel builds the first simulator from factory. The factory's own input
// source, if any, is merged with the keyboard.
func NewModel(factory sim.Factory, seed int64, title string) (Model, error) {
	m := Model{
		factory:  factory,
		seed:     seed,
		title:    title,
		width:    width,
		height:   height,
		canvas:   NewCanvas(width, height),
		running:  true,
		selected: input.All,
		playHead: -1,
	}
	if err := m.build(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) build() error {
	s, src, err := m.factory(m.seed)
	if err != nil {
		return err
	}
	m.sim = s
	m.latch = input.NewLatch()
	if src == nil {
		m.source = m.latch
	} else {
		m.source = input.Merge(m.latch, src)
	}
	m.initialEnergy = physics.TotalEnergy(s.Bodies())
	m.energyHistory = make([]float64, 0, historyCapacity)
	m.history = make([]Snapshot, 0, historyCapacity)
	m.playHead = -1
	m.record()
	return nil
}

// Simulator exposes the running simulator, mainly for tests.
func (m Model) Simulator() *sim.Simulator { return m.sim }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.sim.Params().Tick, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if sig, ok := input.ParseKey(key); ok {
			m.latch.Press(m.selected, sig)
			return m, nil
		}
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "p":
			m.running = !m.running
		case "r":
			if err := m.build(); err != nil {
				m.err = err
			}
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleBody()
		case "g":
			if m.recording {
				m.err = m.saveGIF(gifFile)
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		}
	case tea.WindowSizeMsg:
		w := (msg.Width - 50) &^ 1
		h := msg.Height - 4
		if w >= 20 && h >= 8 {
			m.width, m.height = w, h
			m.canvas = NewCanvas(w, h)
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.sim.Step(m.source)
				m.record()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) record() {
	energy := physics.TotalEnergy(m.sim.Bodies())
	m.energyHistory = append(m.energyHistory, energy)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}

	m.history = append(m.history, Snapshot{Frame: m.sim.Frame(), Energy: energy})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// cycleBody moves the keyboard focus: all bodies, then each body in turn.
func (m *Model) cycleBody() {
	bodies := m.sim.Bodies()
	if len(bodies) == 0 {
		return
	}
	next := 0
	if m.selected != input.All {
		idx := 0
		for i, b := range bodies {
			if b.ID == m.selected {
				idx = i
				break
			}
		}
		if idx == len(bodies)-1 {
			m.selected = input.All
			return
		}
		next = idx + 1
	}
	m.selected = bodies[next].ID
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) > 0 {
			m.playHead = len(m.history) - 1
			m.running = false
		} else {
			return
		}
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m *Model) current() Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	if len(m.history) == 0 {
		return Snapshot{Frame: m.sim.Frame()}
	}
	return m.history[len(m.history)-1]
}

func (m *Model) draw() {
	m.canvas.DrawFrame(m.current().Frame, m.sim.Params(), m.selected)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	snap := m.current()

	var s strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary).Render(strings.ToUpper(m.title))
	s.WriteString(title + "\n")

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.playHead != -1:
		back := len(m.history) - 1 - m.playHead
		status = StatusPaused.Render(fmt.Sprintf("REPLAY (-%d ticks)", back))
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " " + StatusRecording.Render("● REC")
	}
	s.WriteString(status + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Tick") + valueStyle.Render(fmt.Sprintf("%d", snap.Frame.Tick)) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.1f", snap.Energy)) + "\n")
	if m.initialEnergy > 0 {
		s.WriteString(labelStyle.Render("Retained") + ProgressBar(snap.Energy/m.initialEnergy, 20) + "\n")
	}
	s.WriteString(labelStyle.Render("Contacts") + valueStyle.Render(fmt.Sprintf("%d", m.sim.Collisions())) + "\n")
	s.WriteString(labelStyle.Render("Law") + valueStyle.Render(m.sim.Law().Name()) + "\n")

	s.WriteString("\nBODIES\n")
	focus := "  all"
	if m.selected == input.All {
		focus = activeStyle.Render("> all")
	}
	s.WriteString(focus + "\n")
	for _, sp := range snap.Frame.Sprites {
		line := fmt.Sprintf("%-2d %-7s r=%-4.0f v=%6.1f", sp.ID, sp.Color, sp.Radius, sp.Velocity.Magnitude())
		if sp.ID == m.selected {
			s.WriteString(activeStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + MetricLabel.Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + LevelLow.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("\n" + Separator(30) + "\nWASD/←↑→↓:Push SP:Stop Tab:Focus\nP:Pause R:Reset Q:Quit ?:Help"))

	canvasView := canvasStyle.Render(strings.TrimSuffix(m.canvas.Render(CurrentTheme.Bodies), "\n"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  W/Up     - Push up, gravity off     ║
║  S/Down   - Push down                ║
║  A/Left   - Push left                ║
║  D/Right  - Push right               ║
║  Space    - Stop dead                ║
║  Tab      - Cycle focused body       ║
║  P        - Pause/Resume             ║
║  R        - Reset simulation         ║
║  [ ]      - Rewind / forward         ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// gifPalette is black, white, then every default body colour as the current
// theme draws it.
func gifPalette() (color.Palette, map[string]uint8) {
	pal := color.Palette{color.Black, color.White}
	index := make(map[string]uint8)
	for _, name := range config.DefaultColors {
		r, g, b := hexOrWhite(CurrentTheme.Color(name)).RGB255()
		index[name] = uint8(len(pal))
		pal = append(pal, color.RGBA{R: r, G: g, B: b, A: 0xff})
	}
	return pal, index
}

func (m *Model) captureFrame() {
	const dotW, dotH = 4, 4
	pal, index := gifPalette()
	img := image.NewPaletted(image.Rect(0, 0, m.canvas.Width*2*dotW, m.canvas.Height*4*dotH), pal)
	m.canvas.EachDot(func(x, y int, ink string) {
		c, ok := index[ink]
		if !ok {
			c = 1
		}
		for py := 0; py < dotH; py++ {
			for px := 0; px < dotW; px++ {
				img.SetColorIndex(x*dotW+px, y*dotH+py, c)
			}
		}
	})
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF(path string) error {
	if len(m.frames) == 0 {
		return nil
	}
	delay := int(m.sim.Params().Tick / (10 * time.Millisecond))
	if delay < 1 {
		delay = 1
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RunLive opens the live view in the terminal's alternate screen.
func RunLive(factory sim.Factory, seed int64, title string) error {
	m, err := NewModel(factory, seed, title)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
