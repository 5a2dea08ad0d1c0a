package tui

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/predprey/internal/analysis"
	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/experiment"
	"github.com/san-kum/predprey/internal/models"
	"github.com/san-kum/predprey/internal/sim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var fieldInfo = map[string]string{
	"r":     "prey growth rate",
	"K":     "carrying capacity",
	"a":     "attack rate",
	"h":     "handling time",
	"m":     "predator mortality",
	"c":     "conversion efficiency",
	"d":     "predator growth coefficient",
	"N0":    "initial prey",
	"P0":    "initial predator",
	"t_max": "time horizon",
}

// fieldNames is the form order: the seven parameters, then the run settings.
var fieldNames = append(append([]string{}, models.ParamNames...), "N0", "P0", "t_max")

type view int

const (
	viewSeries view = iota
	viewPhase
)

type resultMsg struct {
	traj    *dynamo.Trajectory
	summary analysis.Summary
	elapsed time.Duration
	err     error
}

type model struct {
	cfg  *config.Config
	opts []sim.Option

	cursor  int
	editing bool
	editBuf string

	running bool
	view    view
	result  *resultMsg

	width  int
	height int
}

func newModel(cfg *config.Config, opts ...sim.Option) model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return model{
		cfg:    cfg.Clone(),
		opts:   opts,
		width:  80,
		height: 24,
	}
}

func (m model) Init() tea.Cmd { return m.simulate() }

// simulate runs the current form values off the UI goroutine.
func (m model) simulate() tea.Cmd {
	cfg := m.cfg.Clone()
	opts := m.opts
	return func() tea.Msg {
		res, err := experiment.New(cfg, nil, opts...).Run(context.Background())
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{traj: res.Trajectory, summary: analysis.Summarize(res.Trajectory), elapsed: res.Elapsed}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case resultMsg:
		m.running = false
		m.result = &msg
		return m, nil
	}
	return m, nil
}

func (m model) get(name string) float64 {
	switch name {
	case "N0":
		return m.cfg.InitState.Prey
	case "P0":
		return m.cfg.InitState.Predator
	case "t_max":
		return m.cfg.TMax
	}
	v, _ := m.cfg.Params.Get(name)
	return v
}

func (m *model) set(name string, v float64) {
	switch name {
	case "N0":
		m.cfg.InitState.Prey = v
	case "P0":
		m.cfg.InitState.Predator = v
	case "t_max":
		m.cfg.TMax = v
	default:
		if p, err := m.cfg.Params.With(name, v); err == nil {
			m.cfg.Params = p
		}
	}
}

// nudge is the ←/→ increment: a tenth of the magnitude, at least 0.01.
func nudge(v float64) float64 {
	return math.Max(0.01, math.Abs(v)*0.1)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		return m.editKey(msg)
	}

	name := fieldNames[m.cursor]
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(fieldNames)-1 {
			m.cursor++
		}
	case "left", "h":
		m.set(name, m.get(name)-nudge(m.get(name)))
	case "right", "l":
		m.set(name, m.get(name)+nudge(m.get(name)))
	case "e", " ":
		m.editing = true
		m.editBuf = strconv.FormatFloat(m.get(name), 'g', -1, 64)
	case "tab", "v":
		if m.view == viewSeries {
			m.view = viewPhase
		} else {
			m.view = viewSeries
		}
	case "d":
		m.cfg = config.DefaultConfig()
	case "enter", "r", "s":
		if m.running {
			return m, nil
		}
		m.running = true
		return m, m.simulate()
	}
	return m, nil
}

func (m model) editKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
			m.set(fieldNames[m.cursor], v)
		}
		m.editing = false
		m.editBuf = ""
	case "esc":
		m.editing = false
		m.editBuf = ""
	case "backspace":
		if len(m.editBuf) > 0 {
			m.editBuf = m.editBuf[:len(m.editBuf)-1]
		}
	default:
		if s := msg.String(); len(s) == 1 {
			c := s[0]
			if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' || c == '+' {
				m.editBuf += s
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render("p r e d p r e y") + "  " + dim.Render("holling-tanner") + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 40)) + "\n\n")

	for i, name := range fieldNames {
		val := fmt.Sprintf("%10.4g", m.get(name))
		if m.editing && i == m.cursor {
			val = fmt.Sprintf("%10s", m.editBuf+"▋")
		}
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-6s", name)) + magenta.Render(val) + "  " + dim.Render(fieldInfo[name]) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-6s", name)) + dim.Render(val) + "\n")
		}
	}
	b.WriteString("\n")

	switch {
	case m.running:
		b.WriteString("      " + yellow.Render("○ simulating...") + "\n")
	case m.result == nil:
	case m.result.err != nil:
		b.WriteString("      " + red.Render("✗ "+m.result.err.Error()) + "\n")
	default:
		b.WriteString(m.viewResult())
	}

	b.WriteString("\n" + dim.Render("      ↑↓ select  ←→ adjust  e edit  enter run  tab view  d defaults  q quit") + "\n")
	return b.String()
}

func (m model) viewResult() string {
	var b strings.Builder
	res := m.result
	s := res.summary

	b.WriteString(fmt.Sprintf("      %s %d points  %d steps  %s\n",
		green.Render("●"), s.Points, res.traj.Stats.Steps, dim.Render(res.elapsed.Round(time.Microsecond).String())))
	b.WriteString(fmt.Sprintf("      %s N=%.3f  P=%.3f",
		cyan.Render("final"), s.Prey.Final, s.Predator.Final))
	if s.Prey.Period > 0 {
		b.WriteString(fmt.Sprintf("  %s %.2f", cyan.Render("period"), s.Prey.Period))
	}
	b.WriteString("\n\n")

	width := max(40, m.width-16)
	height := max(8, m.height-len(fieldNames)-14)

	if m.view == viewPhase {
		portrait := analysis.PreyPredatorPortrait(res.traj)
		for _, line := range strings.Split(strings.TrimSuffix(portrait.ToASCII(width, height), "\n"), "\n") {
			b.WriteString("      " + line + "\n")
		}
		b.WriteString("      " + dim.Render("prey → / predator ↑") + "\n")
		return b.String()
	}

	if res.traj.Len() < 2 {
		return b.String()
	}
	chart := asciigraph.PlotMany(
		[][]float64{res.traj.Column(models.Prey), res.traj.Column(models.Predator)},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption("prey (blue)  predator (red)"),
	)
	for _, line := range strings.Split(chart, "\n") {
		b.WriteString("   " + line + "\n")
	}
	return b.String()
}

func RunInteractive(cfg *config.Config, opts ...sim.Option) error {
	p := tea.NewProgram(newModel(cfg, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
