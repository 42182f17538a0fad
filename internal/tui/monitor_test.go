package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mentorra/mentorra/internal/orchestrator"
	"github.com/mentorra/mentorra/pkg/models"
)

func names() map[string]string {
	return map[string]string{"product": "Maya Okafor", "sales": "Dan Reyes"}
}

func TestMonitorTracksPersonaLifecycle(t *testing.T) {
	m := NewMonitor(names())

	var model tea.Model = m
	for _, ev := range []orchestrator.PipelineEvent{
		{Type: orchestrator.EventRunStarted, RunID: "abc123", Phase: models.PhaseIntake},
		{Type: orchestrator.EventPhaseChanged, Phase: models.PhaseFanout},
		{Type: orchestrator.EventPersonaStarted, PersonaID: "product"},
		{Type: orchestrator.EventPersonaStarted, PersonaID: "sales"},
		{Type: orchestrator.EventPersonaValidated, PersonaID: "product"},
		{Type: orchestrator.EventPersonaFailed, PersonaID: "sales",
			Err: &models.AgentError{PersonaID: "sales", Kind: models.AgentTimeout}},
	} {
		model, _ = model.Update(EventMsg(ev))
	}

	view := model.View()
	for _, want := range []string{
		"abc123",
		"Maya Okafor",
		"brief validated",
		"Dan Reyes",
		"failed: timeout",
		"your mentors are thinking",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q in:\n%s", want, view)
		}
	}
}

func TestMonitorGroundingLine(t *testing.T) {
	tests := []struct {
		name     string
		grounded bool
		want     string
	}{
		{"grounded", true, "market data attached"},
		{"ungrounded", false, "no market data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var model tea.Model = NewMonitor(nil)
			model, _ = model.Update(EventMsg(orchestrator.PipelineEvent{
				Type: orchestrator.EventGroundingDone, Grounded: tt.grounded,
			}))
			if view := model.View(); !strings.Contains(view, tt.want) {
				t.Errorf("View() missing %q in:\n%s", tt.want, view)
			}
		})
	}
}

func TestMonitorDoneQuits(t *testing.T) {
	var model tea.Model = NewMonitor(nil)

	run := &models.PipelineRun{
		Plan: &models.SynthesisPlan{Items: []models.PlanItem{
			{Days: models.DayRange{Start: 1, End: 30}, Action: "x", PersonaIDs: []string{"product"}},
		}},
		Phase: models.PhaseDone,
	}
	model, cmd := model.Update(DoneMsg{Run: run})
	if cmd == nil {
		t.Fatal("Update(DoneMsg) returned no quit command")
	}
	if view := model.View(); !strings.Contains(view, "Run complete") {
		t.Errorf("View() missing completion line:\n%s", view)
	}
}

func TestMonitorQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			var model tea.Model = NewMonitor(nil)
			var msg tea.KeyMsg
			if key == "q" {
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
			} else {
				msg = tea.KeyMsg{Type: tea.KeyCtrlC}
			}
			if _, cmd := model.Update(msg); cmd == nil {
				t.Errorf("key %q did not quit", key)
			}
		})
	}
}
