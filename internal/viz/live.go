package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/nbody/internal/sim"
)

const (
	canvasWidth     = 72
	canvasHeight    = 22
	historyCapacity = 600
	frameInterval   = time.Second / 30
)

// BuildFunc returns a fresh simulation; the viewer calls it again on reset.
type BuildFunc func() (*sim.Simulation, error)

// LiveOptions controls how far each frame advances the simulation.
type LiveOptions struct {
	// FrameDt is the simulated time per frame; zero means ten steps.
	FrameDt float64
	// TMax stops the viewer's clock; zero runs until quit.
	TMax    float64
	Trail   int
	Options sim.IntegrateOptions
	Theme   string
}

type TickMsg time.Time

// Model renders one simulation, advancing it with Integrate on every tick.
type Model struct {
	name  string
	build BuildFunc
	opts  LiveOptions

	s      *sim.Simulation
	status sim.Status
	err    error

	canvas *Canvas
	camera *Camera
	trails [][]point

	energy0       float64
	driftHistory  []float64
	megnoHistory  []float64
	lastFrameCost time.Duration

	running  bool
	done     bool
	showHelp bool
	theme    Theme
	st       styles
}

type point struct{ x, y int }

func NewModel(name string, build BuildFunc, opts LiveOptions) (Model, error) {
	m := Model{
		name:   name,
		build:  build,
		opts:   opts,
		canvas: NewCanvas(canvasWidth, canvasHeight),
		theme:  GetTheme(opts.Theme),
	}
	m.st = newStyles(m.theme)
	if m.opts.Trail <= 0 {
		m.opts.Trail = 200
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) reset() error {
	s, err := m.build()
	if err != nil {
		return fmt.Errorf("build %s: %w", m.name, err)
	}
	m.s = s
	m.status = sim.StatusOK
	m.err = nil
	m.camera = FitCamera(s.Particles())
	m.trails = make([][]point, s.N())
	m.energy0 = s.Energy()
	m.driftHistory = m.driftHistory[:0]
	m.megnoHistory = m.megnoHistory[:0]
	m.running, m.done = true, false
	return nil
}

func (m Model) Simulation() *sim.Simulation { return m.s }
func (m Model) Status() sim.Status          { return m.status }
func (m Model) Err() error                  { return m.err }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "t":
			m.theme = nextTheme(m.theme)
			m.st = newStyles(m.theme)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "up", "k":
			m.camera.Tilt(0.1)
		case "down", "j":
			m.camera.Tilt(-0.1)
		case "left", "h":
			m.camera.Spin(0.1)
		case "right", "l":
			m.camera.Spin(-0.1)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) frameDt() float64 {
	if m.opts.FrameDt != 0 {
		return m.opts.FrameDt
	}
	return 10 * m.s.Dt()
}

// advance integrates one frame forward and records history.
func (m *Model) advance() {
	if m.err != nil || m.status != sim.StatusOK || m.done {
		m.running = false
		return
	}

	target := m.s.Time() + m.frameDt()
	if m.opts.TMax != 0 && target >= m.opts.TMax {
		target = m.opts.TMax
	}

	start := time.Now()
	status, err := m.s.Integrate(target, m.opts.Options)
	m.lastFrameCost = time.Since(start)
	m.status, m.err = status, err
	if err != nil || status != sim.StatusOK {
		m.running = false
	}
	if m.opts.TMax != 0 && target == m.opts.TMax {
		m.running, m.done = false, true
	}

	m.driftHistory = pushBounded(m.driftHistory, m.drift())
	if m.s.NVar() > 0 {
		m.megnoHistory = pushBounded(m.megnoHistory, m.s.Megno())
	}
	m.recordTrails()
}

func (m *Model) drift() float64 {
	if m.energy0 == 0 {
		return 0
	}
	return math.Abs((m.s.Energy() - m.energy0) / m.energy0)
}

func pushBounded(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) recordTrails() {
	ps := m.s.Particles()
	if len(m.trails) != len(ps) {
		m.trails = make([][]point, len(ps))
	}
	for i, p := range ps {
		x, y, ok := m.camera.Project(p.Pos, m.canvas)
		if !ok {
			continue
		}
		m.trails[i] = append(m.trails[i], point{x, y})
		if len(m.trails[i]) > m.opts.Trail {
			m.trails[i] = m.trails[i][1:]
		}
	}
}

// draw renders trails and the current particle positions. Trails are in
// screen space, so camera moves leave old trail dots behind until they age
// out.
func (m *Model) draw() {
	m.canvas.Clear()
	for _, trail := range m.trails {
		for _, pt := range trail {
			m.canvas.Set(pt.x, pt.y)
		}
	}
	for i, p := range m.s.Particles() {
		x, y, ok := m.camera.Project(p.Pos, m.canvas)
		if !ok {
			continue
		}
		r := 0
		if i < m.s.NActive() && p.M > 0 {
			r = 1
		}
		m.canvas.Blob(x, y, r)
	}
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.st.bad.Render("ERROR " + m.err.Error())
	case m.status != sim.StatusOK:
		return m.st.bad.Render(strings.ToUpper(m.status.String()))
	case m.done:
		return m.st.good.Render("DONE")
	case !m.running:
		return m.st.warn.Render("PAUSED")
	}
	return m.st.good.Render("RUNNING")
}

func (m Model) View() string {
	m.draw()
	canvasView := m.st.canvas.Render(m.canvas.String())

	var b strings.Builder
	b.WriteString(m.st.header.Render(strings.ToUpper(m.name)) + "\n")
	b.WriteString(m.statusLine() + "\n\n")

	b.WriteString(m.st.row("Time", fmt.Sprintf("%.4g", m.s.Time())))
	b.WriteString(m.st.row("Integrator", m.s.Integrator().String()))
	b.WriteString(m.st.row("dt", fmt.Sprintf("%.3g", m.s.Dt())))
	b.WriteString(m.st.row("Particles", fmt.Sprintf("%d (%d active)", m.s.N(), m.s.NActive())))
	b.WriteString(m.st.row("Energy", fmt.Sprintf("%.10g", m.s.Energy())))
	b.WriteString(m.st.row("|dE/E|", fmt.Sprintf("%.3e", m.drift())))
	if m.s.NVar() > 0 {
		b.WriteString(m.st.row("MEGNO", fmt.Sprintf("%.4f", m.s.Megno())))
		b.WriteString(m.st.row("Lyapunov", fmt.Sprintf("%.3e", m.s.Lyapunov())))
	}
	if m.status == sim.StatusCloseEncounter {
		i, j := m.s.CloseEncounter()
		b.WriteString(m.st.row("Encounter", fmt.Sprintf("%d-%d", i, j)))
	}
	if m.status == sim.StatusEscape {
		b.WriteString(m.st.row("Escaped", fmt.Sprintf("%d", m.s.Escape())))
	}
	b.WriteString(m.st.row("Frame", m.lastFrameCost.Round(time.Microsecond).String()))
	if m.opts.TMax != 0 {
		b.WriteString(m.st.progressBar(m.s.Time()/m.opts.TMax, 30) + "\n")
	}

	if len(m.driftHistory) > 1 {
		chart := asciigraph.Plot(m.driftHistory,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("energy drift"))
		b.WriteString(m.st.graph.Render(chart) + "\n")
	}
	if len(m.megnoHistory) > 1 {
		b.WriteString(m.st.label.Render("MEGNO") + m.st.value.Render(sparkline(m.megnoHistory, 30)) + "\n")
	}

	b.WriteString(m.st.help.Render("SP pause  R reset  T theme  +/- zoom  arrows rotate  ? help  Q quit"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.st.panel.Render(b.String()))

	if m.showHelp {
		help := strings.Join([]string{
			"space      pause or resume",
			"r          rebuild from the initial conditions",
			"t          cycle colour theme",
			"+ / -      zoom",
			"up / down  tilt the orbital plane",
			"left/right spin about z",
			"q          quit",
		}, "\n")
		return m.st.panel.Render(help) + "\n\n" + mainView
	}
	return mainView
}

// Run opens the viewer full screen until the user quits.
func Run(name string, build BuildFunc, opts LiveOptions) error {
	m, err := NewModel(name, build, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
