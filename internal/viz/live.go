package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/physics"
	"github.com/san-kum/swesim/internal/sim"
)

const (
	liveWidth       = 72
	liveHeight      = 14
	historyCapacity = 240
	maxStepsPerTick = 64
)

type TickMsg time.Time

// LiveModel steps a simulator on every tick and draws the surface.
type LiveModel[T grid.Float] struct {
	sim          *sim.Simulator[T]
	title        string
	canvas       *Canvas
	running      bool
	useGraph     bool
	field        int
	stepsPerTick int
	energy0      float64
	driftHistory []float64
	err          error
	showHelp     bool
	frameRate    time.Duration
}

func NewLiveModel[T grid.Float](s *sim.Simulator[T], stepsPerTick int) LiveModel[T] {
	cfg := s.Config()
	return LiveModel[T]{
		sim:          s,
		title:        fmt.Sprintf("%s · %s · %d dofs", cfg.Benchmark, cfg.Integrator, cfg.NumDofs),
		canvas:       NewCanvas(liveWidth, liveHeight),
		running:      true,
		field:        physics.H,
		stepsPerTick: min(max(stepsPerTick, 1), maxStepsPerTick),
		energy0:      float64(s.Model().Energy(s.State())),
		driftHistory: make([]float64, 0, historyCapacity),
		frameRate:    time.Second / 30,
	}
}

func (m LiveModel[T]) tick() tea.Cmd {
	return tea.Tick(m.frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel[T]) Init() tea.Cmd {
	return m.tick()
}

func (m LiveModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "m":
			m.useGraph = !m.useGraph
		case "v":
			m.field = (m.field + 1) % physics.NumVars
		case "t":
			NextTheme()
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *LiveModel[T]) step() {
	for i := 0; i < m.stepsPerTick && !m.sim.Done(); i++ {
		if err := m.sim.Step(); err != nil {
			m.err = err
			m.running = false
			return
		}
	}

	if m.energy0 != 0 {
		e := float64(m.sim.Model().Energy(m.sim.State()))
		m.driftHistory = append(m.driftHistory, math.Abs(e-m.energy0)/math.Abs(m.energy0))
		if len(m.driftHistory) > historyCapacity {
			m.driftHistory = m.driftHistory[1:]
		}
	}
	if m.sim.Done() {
		m.running = false
	}
}

func (m *LiveModel[T]) reset() {
	if err := m.sim.Reset(); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.driftHistory = m.driftHistory[:0]
	m.running = true
}

func (m LiveModel[T]) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("● FAILED")
	case m.sim.Done():
		return StatusPaused.Render("■ DONE")
	case m.running:
		return StatusRunning.Render("▶ RUNNING")
	}
	return StatusPaused.Render("⏸ PAUSED")
}

func (m LiveModel[T]) plot() string {
	f := m.sim.State()[m.field]
	values := FieldValues(f)
	name := []string{"h", "v"}[m.field]

	if m.useGraph {
		return Profile(values, liveHeight, liveWidth, name+"(x)")
	}

	lo, hi := f.Min(), f.Max()
	pad := (float64(hi) - float64(lo)) * 0.1
	if pad == 0 {
		pad = 1
	}
	m.canvas.Clear()
	m.canvas.Plot(values, float64(lo)-pad, float64(hi)+pad)
	return lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(m.canvas.String())
}

func (m LiveModel[T]) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(m.title) + "  " + m.status() + "\n\n")
	b.WriteString(m.plot() + "\n")

	total := m.sim.NumTimesteps()
	fraction := 1.0
	if total > 0 {
		fraction = float64(m.sim.StepCount()) / float64(total)
	}
	b.WriteString(ProgressBar(fraction, 40) + fmt.Sprintf("  t = %.2f", float64(m.sim.Time())) + "\n\n")

	u := m.sim.State()
	b.WriteString(Metric("h min/max", fmt.Sprintf("%.4g, %.4g", float64(u[physics.H].Min()), float64(u[physics.H].Max()))) + "\n")
	b.WriteString(Metric("v min/max", fmt.Sprintf("%.4g, %.4g", float64(u[physics.V].Min()), float64(u[physics.V].Max()))) + "\n")
	b.WriteString(Metric("mass", fmt.Sprintf("%.6g", float64(m.sim.Model().Mass(u)))) + "\n")
	b.WriteString(Metric("energy drift", SparklineChart(m.driftHistory, 40)) + "\n")
	b.WriteString(Metric("steps/frame", fmt.Sprintf("%d", m.stepsPerTick)) + "\n")

	if m.err != nil {
		b.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}

	if m.showHelp {
		b.WriteString("\n" + KeyHint.Render("space pause · r reset · m plot mode · v field · t theme · +/- speed · q quit") + "\n")
	} else {
		b.WriteString("\n" + KeyHint.Render("? help · q quit") + "\n")
	}
	return b.String()
}

// Stepped reports how many steps the simulator has taken.
func (m LiveModel[T]) Stepped() int { return m.sim.StepCount() }

func (m LiveModel[T]) Running() bool { return m.running }

func (m LiveModel[T]) Err() error { return m.err }

// WithFrameRate sets the interval between ticks.
func (m LiveModel[T]) WithFrameRate(d time.Duration) LiveModel[T] {
	if d > 0 {
		m.frameRate = d
	}
	return m
}
