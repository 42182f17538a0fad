// Package tui provides the terminal user interface for Mentorra: a
// read-only board that follows one advisory run as mentors report in.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mentorra/mentorra/internal/orchestrator"
	"github.com/mentorra/mentorra/pkg/models"
)

// EventMsg delivers one pipeline event to the monitor.
type EventMsg orchestrator.PipelineEvent

// DoneMsg signals that the run settled, successfully or not.
type DoneMsg struct {
	Run *models.PipelineRun
}

// personaRow is one mentor's line on the board.
type personaRow struct {
	id     string
	name   string
	status string
	failed bool
	valid  bool
}

// Monitor is the bubbletea model for a live advisory run.
type Monitor struct {
	runID   string
	phase   models.RunPhase
	rows    []personaRow
	names   map[string]string
	spin    spinner.Model
	done    bool
	failed  bool
	summary string

	groundingSettled bool
	grounded         bool

	headerStyle  lipgloss.Style
	phaseStyle   lipgloss.Style
	okStyle      lipgloss.Style
	failStyle    lipgloss.Style
	pendingStyle lipgloss.Style
	footerStyle  lipgloss.Style
}

// NewMonitor creates a monitor. names maps persona ids to display names;
// ids without an entry render as-is.
func NewMonitor(names map[string]string) Monitor {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Monitor{
		names: names,
		spin:  sp,

		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("238")),

		phaseStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true),

		okStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		failStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		pendingStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		footerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// Init starts the spinner.
func (m Monitor) Init() tea.Cmd {
	return m.spin.Tick
}

// Update handles input and pipeline messages.
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case EventMsg:
		m.apply(orchestrator.PipelineEvent(msg))
		return m, nil

	case DoneMsg:
		m.done = true
		if msg.Run != nil && msg.Run.Err != nil {
			m.failed = true
			m.summary = msg.Run.Err.Error()
		} else if msg.Run != nil && msg.Run.Plan != nil {
			m.summary = fmt.Sprintf("%d plan item(s), grounded=%t", len(msg.Run.Plan.Items), msg.Run.Plan.Grounded)
		}
		return m, tea.Quit
	}

	return m, nil
}

// apply folds one pipeline event into the board state.
func (m *Monitor) apply(ev orchestrator.PipelineEvent) {
	if ev.RunID != "" {
		m.runID = ev.RunID
	}
	if ev.Phase != "" {
		m.phase = ev.Phase
	}

	switch ev.Type {
	case orchestrator.EventPersonaStarted:
		m.rows = append(m.rows, personaRow{id: ev.PersonaID, name: m.displayName(ev.PersonaID), status: "thinking"})
	case orchestrator.EventPersonaValidated:
		m.setRow(ev.PersonaID, "brief validated", false, true)
	case orchestrator.EventPersonaFailed:
		status := "failed"
		if ev.Err != nil {
			if aerr, ok := ev.Err.(*models.AgentError); ok {
				status = "failed: " + string(aerr.Kind)
			}
		}
		m.setRow(ev.PersonaID, status, true, false)
	case orchestrator.EventGroundingDone:
		m.groundingSettled = true
		m.grounded = ev.Grounded
	}
}

func (m *Monitor) displayName(id string) string {
	if name, ok := m.names[id]; ok {
		return name
	}
	return id
}

func (m *Monitor) setRow(id, status string, failed, valid bool) {
	for i := range m.rows {
		if m.rows[i].id == id {
			m.rows[i].status = status
			m.rows[i].failed = failed
			m.rows[i].valid = valid
			return
		}
	}
	m.rows = append(m.rows, personaRow{id: id, name: m.displayName(id), status: status, failed: failed, valid: valid})
}

// View renders the board.
func (m Monitor) View() string {
	var b strings.Builder

	title := "Mentorra advisory run"
	if m.runID != "" {
		title += " " + m.runID
	}
	b.WriteString(m.headerStyle.Render(title))
	b.WriteString("\n\n")

	if m.done {
		if m.failed {
			b.WriteString(m.failStyle.Render("Run failed"))
		} else {
			b.WriteString(m.okStyle.Render("Run complete"))
		}
		if m.summary != "" {
			b.WriteString(m.pendingStyle.Render("  " + m.summary))
		}
	} else {
		b.WriteString(m.spin.View())
		b.WriteString(m.phaseStyle.Render(" " + phaseLabel(m.phase)))
	}
	b.WriteString("\n\n")

	for _, row := range m.rows {
		marker := m.pendingStyle.Render("●")
		style := m.pendingStyle
		switch {
		case row.valid:
			marker = m.okStyle.Render("●")
			style = m.okStyle
		case row.failed:
			marker = m.failStyle.Render("●")
			style = m.failStyle
		}
		fmt.Fprintf(&b, "  %s %-20s %s\n", marker, row.name, style.Render(row.status))
	}

	if m.groundingSettled {
		b.WriteString("\n")
		if m.grounded {
			b.WriteString(m.okStyle.Render("  market data attached"))
		} else {
			b.WriteString(m.pendingStyle.Render("  no market data (plan will be ungrounded)"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footerStyle.Render("q to quit"))
	b.WriteString("\n")

	return b.String()
}

// phaseLabel maps controller phases to board wording.
func phaseLabel(phase models.RunPhase) string {
	switch phase {
	case models.PhaseIntake:
		return "validating your context"
	case models.PhaseRouting:
		return "choosing your mentor panel"
	case models.PhaseFanout:
		return "your mentors are thinking"
	case models.PhaseSynthesizing:
		return "building your 30-day plan"
	case models.PhaseDone:
		return "done"
	case models.PhaseFailed:
		return "failed"
	default:
		return "starting"
	}
}
