package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/store"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	historyCapacity = 600
)

type TickMsg time.Time

// Model is the bubbletea state for the live view. Stepping happens on
// the tick path only, so the single-writer discipline of the engine is
// preserved.
type Model struct {
	runner        *sim.Runner
	scenario      string
	phys          config.Physics
	dt            float64
	stepsPerFrame int
	method        physics.Method
	frameRate     int

	canvas        *Canvas
	energyHistory []float64
	initialTotal  float64
	paused        bool
	fault         error
	status        string
}

func NewModel(runner *sim.Runner, scenario string, phys config.Physics, frameRate int) Model {
	_, _, total := runner.Engine().SystemEnergy(runner.Bodies())
	return Model{
		runner:        runner,
		scenario:      scenario,
		phys:          phys,
		dt:            phys.Dt,
		stepsPerFrame: phys.StepsPerFrame,
		method:        physics.ParseMethod(phys.Method),
		frameRate:     frameRate,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		energyHistory: make([]float64, 0, historyCapacity),
		initialTotal:  total,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "r":
			if err := m.runner.Reset(); err != nil {
				m.status = err.Error()
				break
			}
			m.fault = nil
			m.energyHistory = m.energyHistory[:0]
			_, _, m.initialTotal = m.runner.Engine().SystemEnergy(m.runner.Bodies())
			m.status = "reset"
		case "m":
			if m.method == physics.Verlet {
				m.method = physics.Euler
			} else {
				m.method = physics.Verlet
			}
		case "s":
			path, err := store.SaveSnapshot("", m.runner.Bodies(), m.phys, m.runner.Engine().Elapsed())
			if err != nil {
				m.status = err.Error()
			} else {
				m.status = "saved " + path
			}
		}
		return m, nil

	case TickMsg:
		if !m.paused && m.fault == nil {
			for i := 0; i < m.stepsPerFrame; i++ {
				if err := m.runner.Engine().Step(m.runner.Bodies(), m.dt, m.method); err != nil {
					m.fault = err
					break
				}
			}
			_, _, total := m.runner.Engine().SystemEnergy(m.runner.Bodies())
			if len(m.energyHistory) >= historyCapacity {
				m.energyHistory = m.energyHistory[1:]
			}
			m.energyHistory = append(m.energyHistory, total)
		}
		return m, m.tick()
	}

	return m, nil
}

func (m Model) View() string {
	bodies := m.runner.Bodies()
	m.drawBodies(bodies)

	stats := m.statsPanel(bodies)
	main := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		"  ",
		stats,
	)

	parts := []string{main}
	if len(m.energyHistory) >= 2 {
		graph := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(6),
			asciigraph.Width(canvasWidth),
			asciigraph.Caption("total energy"))
		parts = append(parts, graphStyle.Render(graph))
	}
	parts = append(parts, helpStyle.Render("space pause · m method · r reset · s save · q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// drawBodies projects scaled world coordinates onto the canvas, fitting
// the view to the current trails.
func (m Model) drawBodies(bodies []*body.Body) {
	m.canvas.Clear()

	scale := m.phys.ScaleFactor
	if scale == 0 {
		scale = 1
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range bodies {
		for _, p := range b.Trail() {
			minX = math.Min(minX, p.X*scale)
			maxX = math.Max(maxX, p.X*scale)
			minY = math.Min(minY, p.Y*scale)
			maxY = math.Max(maxY, p.Y*scale)
		}
	}
	if math.IsInf(minX, 1) {
		return
	}
	spanX := math.Max(maxX-minX, 1e-9)
	spanY := math.Max(maxY-minY, 1e-9)

	project := func(x, y float64) (int, int) {
		px := int((x*scale - minX) / spanX * float64(canvasWidth-3))
		py := int((y*scale - minY) / spanY * float64(canvasHeight-3))
		return px + 1, canvasHeight - 2 - py
	}

	for _, b := range bodies {
		for _, p := range b.Trail() {
			x, y := project(p.X, p.Y)
			m.canvas.Set(x, y, '.')
		}
	}
	for i, b := range bodies {
		x, y := project(b.Pos.X, b.Pos.Y)
		m.canvas.Set(x, y, bodyGlyph(i))
	}
}

func bodyGlyph(i int) rune {
	glyphs := []rune{'O', 'o', '@', '*', '#', '%'}
	return glyphs[i%len(glyphs)]
}

func (m Model) statsPanel(bodies []*body.Body) string {
	ke, pe, total := m.runner.Engine().SystemEnergy(bodies)

	drift := 0.0
	if m.initialTotal != 0 {
		drift = math.Abs(total-m.initialTotal) / math.Abs(m.initialTotal)
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("gravsim · "+m.scenario) + "\n\n")

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("time", fmt.Sprintf("%.3f", m.runner.Engine().Elapsed()))
	row("method", m.method.String())
	row("bodies", fmt.Sprintf("%d", len(bodies)))
	row("dt", fmt.Sprintf("%g × %d/frame", m.dt, m.stepsPerFrame))
	row("kinetic", fmt.Sprintf("%.4e", ke))
	row("potential", fmt.Sprintf("%.4e", pe))
	row("total", fmt.Sprintf("%.4e", total))
	row("drift", fmt.Sprintf("%.3e", drift))

	if m.paused {
		sb.WriteString("\n" + pausedStyle.Render("PAUSED"))
	}
	if m.fault != nil {
		sb.WriteString("\n" + faultStyle.Render("FAULT: "+m.fault.Error()))
	}
	if m.status != "" {
		sb.WriteString("\n" + helpStyle.Render(m.status))
	}
	return sb.String()
}

// Run starts the live view for a configured scenario.
func Run(runner *sim.Runner, scenario string, phys config.Physics, frameRate int) error {
	p := tea.NewProgram(NewModel(runner, scenario, phys, frameRate))
	_, err := p.Run()
	return err
}
