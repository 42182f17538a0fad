// Package agent invokes a single mentor persona against the model and
// turns the raw reply into a validated brief. Each invocation is
// independent: it owns its deadline, its retry budget, and its result.
package agent

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mentorra/mentorra/internal/api"
	"github.com/mentorra/mentorra/internal/prompt"
	"github.com/mentorra/mentorra/internal/validation"
	"github.com/mentorra/mentorra/pkg/models"
)

// DefaultTimeout bounds one invocation, repair attempt included.
const DefaultTimeout = 30 * time.Second

// Invoker renders the briefing prompts for one persona, issues the model
// call, and validates the reply against the brief contract.
//
// An invocation has a budget of exactly one extra model call beyond the
// first: it is spent either on a transport retry or on a repair re-query
// after a malformed reply, whichever happens first. This bounds the
// worst case to two model calls per persona per run.
type Invoker struct {
	gen      api.Generator
	library  *prompt.Library
	contract validation.Contract
	timeout  time.Duration
}

// NewInvoker creates an invoker. A non-positive timeout falls back to
// DefaultTimeout.
func NewInvoker(gen api.Generator, library *prompt.Library, timeout time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Invoker{
		gen:      gen,
		library:  library,
		contract: validation.DefaultContract(),
		timeout:  timeout,
	}
}

// Invoke runs one persona against the founder context and returns either
// a validated brief or a typed agent error. priorPlan carries the
// founder's previous plan summary, empty when there is none.
//
// Exactly one of the return values is non-nil.
func (inv *Invoker) Invoke(ctx context.Context, p models.Persona, fc models.FounderContext, priorPlan string) (*models.AgentBrief, *models.AgentError) {
	callCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	system, err := inv.library.RenderSystem(p)
	if err != nil {
		return nil, &models.AgentError{PersonaID: p.ID, Kind: models.AgentTransport, Detail: err.Error()}
	}
	user, err := inv.library.RenderUser(fc, priorPlan)
	if err != nil {
		return nil, &models.AgentError{PersonaID: p.ID, Kind: models.AgentTransport, Detail: err.Error()}
	}

	retryBudget := 1

	raw, aerr := inv.generate(callCtx, ctx, p.ID, system, user)
	if aerr != nil && aerr.Kind == models.AgentTransport && retryBudget > 0 {
		retryBudget--
		log.Printf("[invoker] %s: transport failure, retrying once: %s", p.ID, aerr.Detail)
		raw, aerr = inv.generate(callCtx, ctx, p.ID, system, user)
	}
	if aerr != nil {
		return nil, aerr
	}

	sections, report := inv.contract.ValidateRaw(raw)
	repaired := false
	if !report.OK() && retryBudget > 0 {
		retryBudget--
		log.Printf("[invoker] %s: malformed brief, repairing: %s", p.ID, report.Summary())

		instruction, rerr := inv.library.RenderRepair(report.Summary())
		if rerr != nil {
			return nil, &models.AgentError{PersonaID: p.ID, Kind: models.AgentMalformed, Detail: report.Summary()}
		}
		raw, aerr = inv.generate(callCtx, ctx, p.ID, system, user+"\n\n"+instruction)
		if aerr != nil {
			return nil, aerr
		}
		sections, report = inv.contract.ValidateRaw(raw)
		repaired = true
	}

	if !report.OK() {
		return nil, &models.AgentError{PersonaID: p.ID, Kind: models.AgentMalformed, Detail: report.Summary()}
	}

	return &models.AgentBrief{
		PersonaID:  p.ID,
		Sections:   sections,
		Status:     models.BriefValid,
		Repaired:   repaired,
		ReceivedAt: time.Now(),
	}, nil
}

// generate issues one model call and classifies any failure.
// parentCtx distinguishes run cancellation from this invocation's own
// deadline expiring.
func (inv *Invoker) generate(callCtx, parentCtx context.Context, personaID, system, user string) (string, *models.AgentError) {
	raw, err := inv.gen.Generate(callCtx, system, user)
	if err == nil {
		return raw, nil
	}

	switch {
	case parentCtx.Err() != nil:
		return "", &models.AgentError{PersonaID: personaID, Kind: models.AgentCancelled, Detail: "run cancelled mid-invocation"}
	case errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded:
		return "", &models.AgentError{PersonaID: personaID, Kind: models.AgentTimeout, Detail: "invocation exceeded " + inv.timeout.String()}
	default:
		return "", &models.AgentError{PersonaID: personaID, Kind: models.AgentTransport, Detail: err.Error()}
	}
}
