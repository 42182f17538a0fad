package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mentorra/mentorra/internal/prompt"
	"github.com/mentorra/mentorra/pkg/models"
)

// scriptedGen returns canned replies (or errors) in order, recording the
// prompts it was called with.
type scriptedGen struct {
	replies []string
	errs    []error
	calls   int
	users   []string
}

func (g *scriptedGen) Generate(ctx context.Context, system, user string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	i := g.calls
	g.calls++
	g.users = append(g.users, user)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	return "", errors.New("script exhausted")
}

// blockingGen never returns until the context is done.
type blockingGen struct{}

func (g *blockingGen) Generate(ctx context.Context, system, user string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func validBriefText() string {
	var b strings.Builder
	for _, name := range models.BriefSectionNames() {
		fmt.Fprintf(&b, "## %s\nSomething about %s.\n\n", name, strings.ToLower(name))
	}
	return b.String()
}

func testPersona() models.Persona {
	return models.Persona{ID: "sales", Name: "Dan Reyes", Tags: []string{"sales"}, Weight: 4}
}

func testContext() models.FounderContext {
	return models.FounderContext{Idea: "B2B SaaS for dentists", Stage: models.StagePreRevenue}
}

func newTestInvoker(t *testing.T, gen *scriptedGen, timeout time.Duration) *Invoker {
	t.Helper()
	lib, err := prompt.Load("")
	if err != nil {
		t.Fatalf("prompt.Load() error: %v", err)
	}
	return NewInvoker(gen, lib, timeout)
}

func TestInvokeValidBrief(t *testing.T) {
	gen := &scriptedGen{replies: []string{validBriefText()}}
	inv := newTestInvoker(t, gen, time.Second)

	brief, aerr := inv.Invoke(context.Background(), testPersona(), testContext(), "")
	if aerr != nil {
		t.Fatalf("Invoke() error: %v", aerr)
	}
	if brief.PersonaID != "sales" {
		t.Errorf("PersonaID = %q, want %q", brief.PersonaID, "sales")
	}
	if brief.Status != models.BriefValid {
		t.Errorf("Status = %q, want %q", brief.Status, models.BriefValid)
	}
	if brief.Repaired {
		t.Error("Repaired = true for a first-try valid brief")
	}
	if len(brief.Sections) != 5 {
		t.Errorf("got %d sections, want 5", len(brief.Sections))
	}
	if gen.calls != 1 {
		t.Errorf("model called %d times, want 1", gen.calls)
	}
}

func TestInvokeRepairsMalformedBrief(t *testing.T) {
	gen := &scriptedGen{replies: []string{"## Diagnosis\nOnly one section.\n", validBriefText()}}
	inv := newTestInvoker(t, gen, time.Second)

	brief, aerr := inv.Invoke(context.Background(), testPersona(), testContext(), "")
	if aerr != nil {
		t.Fatalf("Invoke() error: %v", aerr)
	}
	if !brief.Repaired {
		t.Error("Repaired = false after a repair re-query")
	}
	if gen.calls != 2 {
		t.Errorf("model called %d times, want 2", gen.calls)
	}
	if !strings.Contains(gen.users[1], "did not follow the required structure") {
		t.Errorf("repair query missing correction instruction: %q", gen.users[1])
	}
}

func TestInvokeMalformedTwiceGivesUp(t *testing.T) {
	gen := &scriptedGen{replies: []string{"no headings at all", "still no headings"}}
	inv := newTestInvoker(t, gen, time.Second)

	brief, aerr := inv.Invoke(context.Background(), testPersona(), testContext(), "")
	if brief != nil {
		t.Fatalf("Invoke() = %+v, want nil brief", brief)
	}
	if aerr == nil || aerr.Kind != models.AgentMalformed {
		t.Fatalf("Invoke() error = %v, want kind %q", aerr, models.AgentMalformed)
	}
	if gen.calls != 2 {
		t.Errorf("model called %d times, want exactly 2 (one repair, never more)", gen.calls)
	}
}

func TestInvokeTransportRetryThenSuccess(t *testing.T) {
	gen := &scriptedGen{
		errs:    []error{errors.New("connection reset")},
		replies: []string{"", validBriefText()},
	}
	inv := newTestInvoker(t, gen, time.Second)

	brief, aerr := inv.Invoke(context.Background(), testPersona(), testContext(), "")
	if aerr != nil {
		t.Fatalf("Invoke() error: %v", aerr)
	}
	if brief.Status != models.BriefValid {
		t.Errorf("Status = %q, want %q", brief.Status, models.BriefValid)
	}
	if gen.calls != 2 {
		t.Errorf("model called %d times, want 2", gen.calls)
	}
}

func TestInvokeTransportRetrySpendsRepairBudget(t *testing.T) {
	// The retry budget is shared: after a transport retry, a malformed
	// reply cannot be repaired anymore.
	gen := &scriptedGen{
		errs:    []error{errors.New("connection reset")},
		replies: []string{"", "no headings"},
	}
	inv := newTestInvoker(t, gen, time.Second)

	_, aerr := inv.Invoke(context.Background(), testPersona(), testContext(), "")
	if aerr == nil || aerr.Kind != models.AgentMalformed {
		t.Fatalf("Invoke() error = %v, want kind %q", aerr, models.AgentMalformed)
	}
	if gen.calls != 2 {
		t.Errorf("model called %d times, want 2", gen.calls)
	}
}

func TestInvokeTimeout(t *testing.T) {
	lib, err := prompt.Load("")
	if err != nil {
		t.Fatalf("prompt.Load() error: %v", err)
	}
	inv := NewInvoker(&blockingGen{}, lib, 20*time.Millisecond)

	start := time.Now()
	brief, aerr := inv.Invoke(context.Background(), testPersona(), testContext(), "")
	if brief != nil {
		t.Fatalf("Invoke() = %+v, want nil brief", brief)
	}
	if aerr == nil || aerr.Kind != models.AgentTimeout {
		t.Fatalf("Invoke() error = %v, want kind %q", aerr, models.AgentTimeout)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Invoke() blocked %v past its deadline", elapsed)
	}
}

func TestInvokeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &scriptedGen{replies: []string{validBriefText()}}
	inv := newTestInvoker(t, gen, time.Second)

	brief, aerr := inv.Invoke(ctx, testPersona(), testContext(), "")
	if brief != nil {
		t.Fatalf("Invoke() = %+v, want nil brief", brief)
	}
	if aerr == nil || aerr.Kind != models.AgentCancelled {
		t.Fatalf("Invoke() error = %v, want kind %q", aerr, models.AgentCancelled)
	}
}
