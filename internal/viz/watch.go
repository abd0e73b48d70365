package viz

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/verlet/internal/physics"
	"github.com/san-kum/verlet/internal/sim"
)

const (
	historyCapacity = 300
	frameInterval   = time.Second / 30
	maxStepsPerTick = 64
)

// Builder creates a fresh simulator for the watched scene.
type Builder func() (*sim.Simulator, error)

type TickMsg time.Time

// tunable is a shared Param field adjustable from the keyboard.
type tunable struct {
	name string
	get  func(p *physics.Param) float64
	set  func(p *physics.Param, v float64)
	max  float64
}

var tunables = []tunable{
	{"damp_velocity", func(p *physics.Param) float64 { return p.DampVelocity }, func(p *physics.Param, v float64) { p.DampVelocity = v }, 1},
	{"damp_collision", func(p *physics.Param) float64 { return p.DampCollision }, func(p *physics.Param, v float64) { p.DampCollision = v }, 1},
	{"damp_bounds", func(p *physics.Param) float64 { return p.DampBounds }, func(p *physics.Param, v float64) { p.DampBounds = v }, 1},
}

// Model steps a simulator between frames and charts its metrics.
type Model struct {
	build    Builder
	sim      *sim.Simulator
	title    string
	duration float64

	running       bool
	stepsPerFrame int
	selected      int
	graphed       int
	showHelp      bool
	frame         int
	err           error

	names   []string
	history map[string][]float64

	theme  int
	styles styles
}

// NewModel builds the first simulator. duration bounds the run in simulated
// time; zero runs until quit.
func NewModel(build Builder, title string, duration float64) (Model, error) {
	m := Model{
		build:         build,
		title:         title,
		duration:      duration,
		running:       true,
		stepsPerFrame: 1,
		styles:        newStyles(Themes[0]),
	}
	if err := m.reset(); err != nil {
		return m, err
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.advance(1)
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "tab":
			m.selected = (m.selected + 1) % len(tunables)
		case "up", "k":
			m.adjust(1.05)
		case "down", "j":
			m.adjust(1 / 1.05)
		case "g":
			if len(m.names) > 0 {
				m.graphed = (m.graphed + 1) % len(m.names)
			}
		case "+", "=":
			m.stepsPerFrame = min(m.stepsPerFrame*2, maxStepsPerTick)
		case "-":
			m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = newStyles(Themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}
		return m, nil

	case TickMsg:
		m.frame++
		if m.running && m.err == nil {
			m.advance(m.stepsPerFrame)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) reset() error {
	s, err := m.build()
	if err != nil {
		return err
	}
	m.sim = s
	m.err = nil

	values := s.MetricValues()
	m.names = make([]string, 0, len(values))
	for name := range values {
		m.names = append(m.names, name)
	}
	sort.Strings(m.names)
	m.history = make(map[string][]float64, len(m.names))
	if m.graphed >= len(m.names) {
		m.graphed = 0
	}
	return nil
}

func (m *Model) advance(n int) {
	if m.done() {
		m.running = false
		return
	}

	taken := 0
	err := m.sim.RunWithCallback(context.Background(), func(w *sim.World) bool {
		taken++
		return taken <= n && !m.done()
	})
	if err != nil {
		m.err = err
		m.running = false
	}
	m.record()
}

func (m *Model) done() bool {
	return m.duration > 0 && m.sim.World().Time() >= m.duration-1e-9
}

func (m *Model) record() {
	for name, v := range m.sim.MetricValues() {
		h := append(m.history[name], v)
		if len(h) > historyCapacity {
			h = h[len(h)-historyCapacity:]
		}
		m.history[name] = h
	}
}

func (m *Model) adjust(factor float64) {
	t := tunables[m.selected]
	p := m.sim.World().Param()
	v := t.get(p) * factor
	if v == 0 && factor > 1 {
		v = 0.01
	}
	t.set(p, math.Min(v, t.max))
}

// View renders the dashboard.
func (m Model) View() string {
	st := m.styles
	w := m.sim.World()

	var s strings.Builder
	s.WriteString(st.Header.Render(strings.ToUpper(m.title)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(st.StatusError.Render("DIVERGED: "+m.err.Error()) + "\n\n")
	case m.done():
		s.WriteString(st.StatusPaused.Render("FINISHED") + "\n\n")
	case m.running:
		s.WriteString(st.StatusRunning.Render(spinner(m.frame)+" RUNNING") +
			st.Subtle.Render(fmt.Sprintf("  x%d", m.stepsPerFrame)) + "\n\n")
	default:
		s.WriteString(st.StatusPaused.Render("PAUSED") + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", w.StepCount()))
	row("Time", fmt.Sprintf("%.1f", w.Time()))
	row("Particles", fmt.Sprintf("%d", w.Len()))
	row("Springs", fmt.Sprintf("%d", w.SpringCount()))
	row("Contacts", fmt.Sprintf("%d", w.Contacts()))
	if m.duration > 0 {
		row("Progress", st.ProgressBar(w.Time()/m.duration, 20))
	}

	s.WriteString("\nMETRICS\n")
	for i, name := range m.names {
		hist := m.history[name]
		val := "-"
		if len(hist) > 0 {
			val = fmt.Sprintf("%.4g", hist[len(hist)-1])
		}
		label := st.Label.Render(name)
		if i == m.graphed {
			label = st.Active.Render(fmt.Sprintf("%-16s", name))
		}
		s.WriteString(label + st.Value.Render(fmt.Sprintf("%-10s ", val)) + st.Sparkline(hist, 24) + "\n")
	}

	if len(m.names) > 0 {
		hist := m.history[m.names[m.graphed]]
		if len(hist) > 1 {
			chart := asciigraph.Plot(hist,
				asciigraph.Height(6),
				asciigraph.Width(50),
				asciigraph.Caption(m.names[m.graphed]))
			s.WriteString(st.Graph.Render(chart) + "\n")
		}
	}

	s.WriteString("\nPARAMETERS\n")
	p := w.Param()
	for i, t := range tunables {
		line := fmt.Sprintf("%-16s %.3f", t.name, t.get(p))
		if i == m.selected {
			s.WriteString(st.Active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.Label.Render(line) + "\n")
		}
	}

	s.WriteString(st.Subtle.Render("\nSP:Pause N:Step R:Reset Q:Quit\nTab/↑↓:Tune G:Graph +/-:Speed T:Theme ?:Help"))

	view := st.Panel.Render(s.String())
	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, helpText, view)
	}
	return view
}

const helpText = `
  Space    Pause/Resume simulation
  N        Single step while paused
  R        Rebuild the scene
  Q        Quit
  Tab      Cycle parameters
  Up/K     Increase parameter (+5%)
  Down/J   Decrease parameter (-5%)
  G        Cycle the charted metric
  +/-      Double/halve steps per frame
  T        Cycle themes
  ?        Toggle this help
`

// Run starts the dashboard on the terminal.
func Run(build Builder, title string, duration float64) error {
	m, err := NewModel(build, title, duration)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
