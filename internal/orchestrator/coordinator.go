package orchestrator

import (
	"context"
	"log"
	"time"

	"github.com/mentorra/mentorra/internal/persona"
	"github.com/mentorra/mentorra/pkg/models"
)

// Invoker is the single-persona invocation boundary the coordinator fans
// out to. Exactly one of the return values is non-nil.
type Invoker interface {
	Invoke(ctx context.Context, p models.Persona, fc models.FounderContext, priorPlan string) (*models.AgentBrief, *models.AgentError)
}

// FanoutResult is everything the fan-out settled with: the validated
// briefs plus the per-persona failures kept for diagnostics.
type FanoutResult struct {
	Briefs   []*models.AgentBrief
	Failures []*models.AgentError
}

// Coordinator fans a routing decision out to concurrent, independent
// mentor invocations and joins them at a single barrier. Partial success
// is the normal case; the run is fatal only when zero briefs validate.
type Coordinator struct {
	invoker  Invoker
	registry *persona.Registry
	fanin    time.Duration
	emitter  *EventEmitter
}

// NewCoordinator creates a coordinator. fanin bounds the whole join; a
// non-positive value falls back to 45s. emitter may be nil.
func NewCoordinator(invoker Invoker, registry *persona.Registry, fanin time.Duration, emitter *EventEmitter) *Coordinator {
	if fanin <= 0 {
		fanin = 45 * time.Second
	}
	return &Coordinator{
		invoker:  invoker,
		registry: registry,
		fanin:    fanin,
		emitter:  emitter,
	}
}

// outcome is one settled invocation on its way through the join barrier.
type outcome struct {
	personaID string
	brief     *models.AgentBrief
	failure   *models.AgentError
}

// Run invokes every selected persona concurrently and waits for all of
// them to settle or for the fan-in deadline, whichever comes first.
// Invocations still pending at the deadline are recorded as Timeout
// failures and never block the join. The returned result is always
// non-nil; the error is models.ErrAllAgentsFailed when no persona
// produced a valid brief.
func (c *Coordinator) Run(ctx context.Context, decision *models.RouterDecision, fc models.FounderContext, priorPlan string) (*FanoutResult, error) {
	n := len(decision.Selected)
	results := make(chan outcome, n)

	fanCtx, cancel := context.WithTimeout(ctx, c.fanin)
	defer cancel()

	for _, sel := range decision.Selected {
		p, ok := c.registry.ByID(sel.PersonaID)
		if !ok {
			// Decision validation guarantees registered ids; an unknown
			// id here means the caller bypassed the router.
			results <- outcome{personaID: sel.PersonaID, failure: &models.AgentError{
				PersonaID: sel.PersonaID,
				Kind:      models.AgentTransport,
				Detail:    "persona not in registry",
			}}
			continue
		}

		c.emit(PipelineEvent{Type: EventPersonaStarted, Phase: models.PhaseFanout, PersonaID: p.ID})
		go func(p models.Persona) {
			brief, failure := c.invoker.Invoke(fanCtx, p, fc, priorPlan)
			results <- outcome{personaID: p.ID, brief: brief, failure: failure}
		}(p)
	}

	result := &FanoutResult{}
	settled := make(map[string]bool, n)

	deadline := false
	for len(settled) < n && !deadline {
		select {
		case out := <-results:
			settled[out.personaID] = true
			if out.brief != nil {
				result.Briefs = append(result.Briefs, out.brief)
				c.emit(PipelineEvent{Type: EventPersonaValidated, Phase: models.PhaseFanout, PersonaID: out.personaID})
				log.Printf("[coordinator] %s: brief validated", out.personaID)
			} else {
				result.Failures = append(result.Failures, out.failure)
				c.emit(PipelineEvent{Type: EventPersonaFailed, Phase: models.PhaseFanout, PersonaID: out.personaID, Err: out.failure})
				log.Printf("[coordinator] %s: %s", out.personaID, out.failure)
			}
		case <-fanCtx.Done():
			deadline = true
		}
	}

	// Invocations that never reached the barrier count as timed out
	// (or cancelled, when the run itself was cancelled).
	kind := models.AgentTimeout
	detail := "still pending at the fan-in deadline"
	if ctx.Err() == context.Canceled {
		kind = models.AgentCancelled
		detail = "run cancelled before the invocation settled"
	}
	for _, sel := range decision.Selected {
		if settled[sel.PersonaID] {
			continue
		}
		failure := &models.AgentError{PersonaID: sel.PersonaID, Kind: kind, Detail: detail}
		result.Failures = append(result.Failures, failure)
		c.emit(PipelineEvent{Type: EventPersonaFailed, Phase: models.PhaseFanout, PersonaID: sel.PersonaID, Err: failure})
		log.Printf("[coordinator] %s: %s", sel.PersonaID, failure)
	}

	if len(result.Briefs) == 0 {
		return result, models.ErrAllAgentsFailed
	}
	return result, nil
}

func (c *Coordinator) emit(event PipelineEvent) {
	if c.emitter != nil {
		c.emitter.Emit(event)
	}
}
