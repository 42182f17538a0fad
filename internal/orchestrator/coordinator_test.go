package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mentorra/mentorra/pkg/models"
)

// fakeInvoker resolves each persona according to a scripted behavior.
type fakeInvoker struct {
	// fail maps persona id to the failure it should report.
	fail map[string]models.AgentErrorKind
	// block lists personas that never settle until the context is done.
	block map[string]bool
	// delay postpones each invocation.
	delay time.Duration
}

func (f *fakeInvoker) Invoke(ctx context.Context, p models.Persona, fc models.FounderContext, priorPlan string) (*models.AgentBrief, *models.AgentError) {
	if f.block[p.ID] {
		<-ctx.Done()
		return nil, &models.AgentError{PersonaID: p.ID, Kind: models.AgentTimeout, Detail: "blocked"}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, &models.AgentError{PersonaID: p.ID, Kind: models.AgentCancelled}
		}
	}
	if kind, ok := f.fail[p.ID]; ok {
		return nil, &models.AgentError{PersonaID: p.ID, Kind: kind, Detail: "scripted failure"}
	}
	return validBrief(p.ID), nil
}

func validBrief(personaID string) *models.AgentBrief {
	sections := make([]models.BriefSection, 0, 5)
	for _, name := range models.BriefSectionNames() {
		sections = append(sections, models.BriefSection{Name: name, Body: "advice from " + personaID + " about " + name})
	}
	return &models.AgentBrief{
		PersonaID:  personaID,
		Sections:   sections,
		Status:     models.BriefValid,
		ReceivedAt: time.Now(),
	}
}

func threeDecision() *models.RouterDecision {
	return &models.RouterDecision{Selected: []models.Selection{
		{PersonaID: "product"}, {PersonaID: "sales"}, {PersonaID: "fundraising"},
	}}
}

func TestCoordinatorAllSucceed(t *testing.T) {
	c := NewCoordinator(&fakeInvoker{}, fourPersonaRegistry(t), time.Second, nil)

	result, err := c.Run(context.Background(), threeDecision(), models.FounderContext{Idea: "x", Stage: models.StageIdea}, "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(result.Briefs) != 3 {
		t.Errorf("got %d briefs, want 3", len(result.Briefs))
	}
	if len(result.Failures) != 0 {
		t.Errorf("got %d failures, want 0: %v", len(result.Failures), result.Failures)
	}
}

func TestCoordinatorPartialSuccess(t *testing.T) {
	inv := &fakeInvoker{fail: map[string]models.AgentErrorKind{"sales": models.AgentTimeout}}
	c := NewCoordinator(inv, fourPersonaRegistry(t), time.Second, nil)

	result, err := c.Run(context.Background(), threeDecision(), models.FounderContext{Idea: "x", Stage: models.StageIdea}, "")
	if err != nil {
		t.Fatalf("Run() error = %v, want partial success", err)
	}
	if len(result.Briefs) != 2 {
		t.Errorf("got %d briefs, want 2", len(result.Briefs))
	}
	if len(result.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(result.Failures))
	}
	if result.Failures[0].PersonaID != "sales" || result.Failures[0].Kind != models.AgentTimeout {
		t.Errorf("failure = %v, want sales timeout", result.Failures[0])
	}
	for _, b := range result.Briefs {
		if b.PersonaID == "sales" {
			t.Error("failed persona appeared in the briefs")
		}
	}
}

func TestCoordinatorMalformedExcluded(t *testing.T) {
	inv := &fakeInvoker{fail: map[string]models.AgentErrorKind{"product": models.AgentMalformed}}
	c := NewCoordinator(inv, fourPersonaRegistry(t), time.Second, nil)

	result, err := c.Run(context.Background(), threeDecision(), models.FounderContext{Idea: "x", Stage: models.StageIdea}, "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	for _, b := range result.Briefs {
		if b.Status != models.BriefValid {
			t.Errorf("brief %s has status %q, want only valid briefs", b.PersonaID, b.Status)
		}
	}
	if len(result.Failures) != 1 || result.Failures[0].Kind != models.AgentMalformed {
		t.Errorf("failures = %v, want one malformed record", result.Failures)
	}
}

func TestCoordinatorAllFail(t *testing.T) {
	inv := &fakeInvoker{fail: map[string]models.AgentErrorKind{
		"product":     models.AgentTransport,
		"sales":       models.AgentTimeout,
		"fundraising": models.AgentMalformed,
	}}
	c := NewCoordinator(inv, fourPersonaRegistry(t), time.Second, nil)

	result, err := c.Run(context.Background(), threeDecision(), models.FounderContext{Idea: "x", Stage: models.StageIdea}, "")
	if !errors.Is(err, models.ErrAllAgentsFailed) {
		t.Fatalf("Run() error = %v, want ErrAllAgentsFailed", err)
	}
	if len(result.Briefs) != 0 {
		t.Errorf("got %d briefs, want 0", len(result.Briefs))
	}
	if len(result.Failures) != 3 {
		t.Errorf("got %d failures, want 3 for diagnostics", len(result.Failures))
	}
}

func TestCoordinatorFanInDeadline(t *testing.T) {
	inv := &fakeInvoker{block: map[string]bool{"fundraising": true}}
	c := NewCoordinator(inv, fourPersonaRegistry(t), 50*time.Millisecond, nil)

	start := time.Now()
	result, err := c.Run(context.Background(), threeDecision(), models.FounderContext{Idea: "x", Stage: models.StageIdea}, "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("join blocked %v past the fan-in deadline", elapsed)
	}
	if len(result.Briefs) != 2 {
		t.Errorf("got %d briefs, want 2", len(result.Briefs))
	}

	found := false
	for _, f := range result.Failures {
		if f.PersonaID == "fundraising" && f.Kind == models.AgentTimeout {
			found = true
		}
	}
	if !found {
		t.Errorf("failures = %v, want fundraising recorded as timeout", result.Failures)
	}
}

func TestCoordinatorCompletionOrderIrrelevant(t *testing.T) {
	// Staggered settle order must not change the set of briefs.
	inv := &fakeInvoker{delay: 5 * time.Millisecond}
	c := NewCoordinator(inv, fourPersonaRegistry(t), time.Second, nil)

	result, err := c.Run(context.Background(), threeDecision(), models.FounderContext{Idea: "x", Stage: models.StageIdea}, "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	got := make(map[string]bool)
	for _, b := range result.Briefs {
		got[b.PersonaID] = true
	}
	for _, id := range []string{"product", "sales", "fundraising"} {
		if !got[id] {
			t.Errorf("brief for %s missing", id)
		}
	}
}
