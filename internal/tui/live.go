package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/linsolve/internal/driver"
	"github.com/san-kum/linsolve/internal/linsol"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type stepMsg driver.StepResult

type doneMsg struct{ err error }

type model struct {
	title string
	total int
	steps []driver.StepResult
	done  bool
	err   error
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case stepMsg:
		m.steps = append(m.steps, driver.StepResult(msg))
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func statusStyle(st linsol.Status) lipgloss.Style {
	switch {
	case st.OK():
		return green
	case st.Recoverable():
		return yellow
	default:
		return red
	}
}

func (m model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", cyan.Render(m.title))

	if len(m.steps) == 0 {
		b.WriteString(dim.Render("waiting for first solve...") + "\n")
		return b.String()
	}

	last := m.steps[len(m.steps)-1]
	fmt.Fprintf(&b, "step %s  status %s  iters %s  resnorm %s  retries %d\n",
		cyan.Render(fmt.Sprintf("%d/%d", last.Step+1, m.total)),
		statusStyle(last.Status).Render(last.Status.String()),
		cyan.Render(fmt.Sprintf("%d", last.Iters)),
		cyan.Render(fmt.Sprintf("%.3e", last.ResNorm)),
		last.Retries)

	if len(m.steps) >= 2 {
		data := make([]float64, len(m.steps))
		for i, sr := range m.steps {
			if sr.ResNorm > 0 {
				data[i] = math.Log10(sr.ResNorm)
			} else {
				data[i] = -16
			}
		}
		b.WriteString("\n" + asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("log10 residual norm per step"),
		) + "\n")
	}

	if m.done {
		if m.err != nil {
			b.WriteString("\n" + red.Render(m.err.Error()) + "\n")
		} else {
			b.WriteString("\n" + green.Render("run complete") + "\n")
		}
	} else {
		b.WriteString("\n" + dim.Render("q to quit") + "\n")
	}
	return b.String()
}

// sender forwards driver steps into the running program.
type sender struct{ p *tea.Program }

func (s sender) OnStep(r driver.StepResult, _ linsol.Vector) {
	s.p.Send(stepMsg(r))
}

// Run displays a live convergence monitor while run executes. run
// receives the observer to attach to the driver and is started on its own
// goroutine.
func Run(title string, totalSteps int, run func(obs driver.Observer) error) error {
	p := tea.NewProgram(model{title: title, total: totalSteps})
	go func() {
		err := run(sender{p: p})
		p.Send(doneMsg{err: err})
	}()
	_, err := p.Run()
	return err
}
