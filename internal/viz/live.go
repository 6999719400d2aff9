// Package viz renders a running simulation in the terminal.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mdlab-go/mdsim/internal/forces"
	"github.com/mdlab-go/mdsim/internal/integrate"
	"github.com/mdlab-go/mdsim/internal/md"
)

const (
	canvasWidth   = 64
	canvasHeight  = 24
	energyHistory = 120
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	canvasStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
)

// TickMsg drives the simulation clock of the live view.
type TickMsg time.Time

// Model steps a particle system and draws the x-y projection of the cell.
type Model struct {
	sys      *md.System
	force    *forces.LennardJones
	boundary md.Boundary
	stepper  *integrate.Verlet
	params   md.Params

	step          int
	stepsPerFrame int
	frameRate     int
	running       bool
	seeded        bool
	err           error
	energies      []float64
}

// NewModel builds a live view. stepsPerFrame compresses simulated time so
// microsecond timesteps stay watchable.
func NewModel(sys *md.System, force *forces.LennardJones, bnd md.Boundary, params md.Params, stepsPerFrame, frameRate int) Model {
	if stepsPerFrame < 1 {
		stepsPerFrame = 1
	}
	if frameRate < 1 {
		frameRate = 30
	}
	return Model{
		sys:           sys,
		force:         force,
		boundary:      bnd,
		stepper:       integrate.NewVerlet(),
		params:        params,
		stepsPerFrame: stepsPerFrame,
		frameRate:     frameRate,
		running:       true,
		energies:      make([]float64, 0, energyHistory),
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}

	case TickMsg:
		if m.err != nil {
			return m, tea.Quit
		}
		if m.running && m.step < m.params.Steps {
			if err := m.advance(); err != nil {
				m.err = err
				return m, m.tick()
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) advance() error {
	if !m.seeded {
		if err := m.stepper.Seed(m.sys, m.force); err != nil {
			return err
		}
		m.seeded = true
	}

	for i := 0; i < m.stepsPerFrame && m.step < m.params.Steps; i++ {
		if err := m.stepper.Step(m.sys, m.force, m.params.Dt); err != nil {
			return err
		}
		m.boundary.Apply(m.sys)
		m.step++
	}

	energy := m.totalEnergy()
	if len(m.energies) == energyHistory {
		m.energies = m.energies[1:]
	}
	m.energies = append(m.energies, energy)
	return nil
}

func (m *Model) totalEnergy() float64 {
	var ke float64
	for _, v := range m.sys.Velocities {
		ke += 0.5 * m.force.Mass * (v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	return ke + m.force.PotentialEnergy(m.sys.Positions)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("mdsim live"))
	b.WriteString("\n")
	b.WriteString(canvasStyle.Render(m.renderCanvas()))
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString(helpStyle.Render("space pause · q quit"))
	b.WriteString("\n")
	return b.String()
}

// renderCanvas projects particle positions onto the x-y plane of the cell.
func (m Model) renderCanvas() string {
	grid := make([][]rune, canvasHeight)
	for y := range grid {
		grid[y] = make([]rune, canvasWidth)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	side := m.params.Side()
	for _, p := range m.sys.Positions {
		// Out-of-cell particles waiting for re-entry are clipped.
		cx := int(p[0] / side * float64(canvasWidth-1))
		cy := int(p[1] / side * float64(canvasHeight-1))
		if cx < 0 || cx >= canvasWidth || cy < 0 || cy >= canvasHeight {
			continue
		}
		grid[canvasHeight-1-cy][cx] = '•'
	}

	rows := make([]string, canvasHeight)
	for y := range grid {
		rows[y] = string(grid[y])
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderStats() string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	row("step", fmt.Sprintf("%d / %d", m.step, m.params.Steps))
	row("time", fmt.Sprintf("%.6g s", float64(m.step)*m.params.Dt))
	row("particles", fmt.Sprintf("%d", m.params.Particles))
	if len(m.energies) > 0 {
		row("total energy", fmt.Sprintf("%.6g", m.energies[len(m.energies)-1]))
		b.WriteString(graphStyle.Render(sparkline(m.energies, 40)))
		b.WriteString("\n")
	}
	if !m.running {
		b.WriteString(pausedStyle.Render("paused"))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(pausedStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

// sparkline compresses a series into one row of block characters.
func sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / span
		idx := int(norm * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		b.WriteRune(chars[idx])
	}
	return b.String()
}

// Run starts the live view and blocks until it exits.
func Run(sys *md.System, force *forces.LennardJones, bnd md.Boundary, params md.Params, stepsPerFrame, frameRate int) error {
	m := NewModel(sys, force, bnd, params, stepsPerFrame, frameRate)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
