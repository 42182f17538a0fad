package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mentorra/mentorra/internal/persona"
	"github.com/mentorra/mentorra/internal/synthesis"
	"github.com/mentorra/mentorra/pkg/models"
)

// maxPriorPlanChars caps how much of a prior plan file is carried into
// the mentor context.
const maxPriorPlanChars = 4000

// GroundingFetcher is the best-effort market data boundary. A nil
// ProofPack means no grounding is available; the fetch never fails a run.
type GroundingFetcher interface {
	Fetch(ctx context.Context, fc models.FounderContext) *models.ProofPack
}

// RunRecorder persists finished runs for history. Recording is
// best-effort: a storage failure is logged, never surfaced.
type RunRecorder interface {
	RecordRun(run *models.PipelineRun) error
}

// PipelineConfig wires a pipeline's collaborators and knobs.
type PipelineConfig struct {
	// Registry is the read-only persona registry for the process.
	Registry *persona.Registry
	// Invoker runs one persona invocation.
	Invoker Invoker
	// Grounding fetches market data. Nil disables grounding.
	Grounding GroundingFetcher
	// Recorder stores finished runs. Nil disables history.
	Recorder RunRecorder
	// Emitter receives pipeline events. Nil disables events.
	Emitter *EventEmitter
	// MaxMentors caps the routed panel size.
	MaxMentors int
	// MinTagMatches is the router's score threshold.
	MinTagMatches int
	// FanInTimeout bounds the whole mentor fan-out join.
	FanInTimeout time.Duration
	// GlobalDeadline bounds a run end to end. Non-positive means 90s.
	GlobalDeadline time.Duration
	// AllowPartialOnCancel synthesizes a plan from already-validated
	// briefs when the run is cancelled mid-fanout.
	AllowPartialOnCancel bool
	// StopChan, when non-nil, cancels the run when it closes. Used for
	// the file-based stop signal.
	StopChan <-chan struct{}
}

// Pipeline is the run controller. It owns the end-to-end deadline and
// the cancellation context shared by every concurrent child, and walks
// one run through intake, routing, fanout, and synthesis.
type Pipeline struct {
	cfg         PipelineConfig
	router      *Router
	coordinator *Coordinator
	aggregator  *synthesis.Aggregator
}

// NewPipeline creates a pipeline controller.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.GlobalDeadline <= 0 {
		cfg.GlobalDeadline = 90 * time.Second
	}
	return &Pipeline{
		cfg:         cfg,
		router:      NewRouter(cfg.Registry, cfg.MaxMentors, cfg.MinTagMatches),
		coordinator: NewCoordinator(cfg.Invoker, cfg.Registry, cfg.FanInTimeout, cfg.Emitter),
		aggregator:  synthesis.New(synthesis.NewOptions(cfg.Registry)),
	}
}

// Execute runs the full pipeline for one founder context. The returned
// run is always non-nil and carries every artifact the run produced; the
// error, when non-nil, is a *models.PipelineError naming the fatal cause.
func (p *Pipeline) Execute(ctx context.Context, fc models.FounderContext) (*models.PipelineRun, error) {
	run := &models.PipelineRun{
		ID:        uuid.New().String()[:8],
		Context:   fc,
		Phase:     models.PhaseIntake,
		StartedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.GlobalDeadline)
	defer cancel()

	if p.cfg.StopChan != nil {
		go func() {
			select {
			case <-p.cfg.StopChan:
				log.Printf("[pipeline] %s: stop requested, cancelling run", run.ID)
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	p.emit(PipelineEvent{Type: EventRunStarted, RunID: run.ID, Phase: run.Phase})
	log.Printf("[pipeline] %s: run started (stage=%s)", run.ID, fc.Stage)

	// Intake
	if err := fc.Validate(); err != nil {
		return p.fail(run, models.PipelineInvalidContext, err)
	}

	// Routing
	p.setPhase(run, models.PhaseRouting)
	decision, err := p.router.Route(fc)
	if err != nil {
		return p.fail(run, models.PipelineRouter, err)
	}
	run.Decision = decision
	p.emit(PipelineEvent{
		Type: EventRoutingDone, RunID: run.ID, Phase: run.Phase,
		Message: fmt.Sprintf("selected %d mentor(s)", len(decision.Selected)),
	})
	log.Printf("[pipeline] %s: routed to %v (fallback=%t)", run.ID, decision.PersonaIDs(), decision.Fallback)

	// Fanout, with grounding running alongside it. Total latency is
	// max(fanout, grounding), not their sum.
	p.setPhase(run, models.PhaseFanout)
	groundCh := make(chan *models.ProofPack, 1)
	if p.cfg.Grounding != nil {
		go func() {
			groundCh <- p.cfg.Grounding.Fetch(ctx, fc)
		}()
	} else {
		groundCh <- nil
	}

	fanout, fanErr := p.coordinator.Run(ctx, decision, fc, p.loadPriorPlan(run.ID, fc))
	run.Briefs = fanout.Briefs
	run.Failures = fanout.Failures

	run.Proof = <-groundCh
	p.emit(PipelineEvent{Type: EventGroundingDone, RunID: run.ID, Phase: run.Phase, Grounded: run.Proof != nil})

	if fanErr != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return p.fail(run, models.PipelineCancelled, fanErr)
		}
		return p.fail(run, models.PipelineAllAgentsFailed, fanErr)
	}
	if errors.Is(ctx.Err(), context.Canceled) && !p.cfg.AllowPartialOnCancel {
		return p.fail(run, models.PipelineCancelled, ctx.Err())
	}
	if ctx.Err() != nil {
		log.Printf("[pipeline] %s: %d brief(s) survived cancellation, returning partial plan", run.ID, len(run.Briefs))
	}

	// Synthesis is strictly sequential after both joins.
	p.setPhase(run, models.PhaseSynthesizing)
	plan, err := p.aggregator.Synthesize(run.Briefs, run.Proof)
	if err != nil {
		return p.fail(run, models.PipelineSynthesis, err)
	}

	run.Plan = plan
	run.Phase = models.PhaseDone
	run.FinishedAt = time.Now()
	p.emit(PipelineEvent{
		Type: EventRunDone, RunID: run.ID, Phase: run.Phase,
		Message: fmt.Sprintf("%d plan item(s), grounded=%t", len(plan.Items), plan.Grounded),
	})
	log.Printf("[pipeline] %s: done in %s (%d briefs, %d failures, grounded=%t)",
		run.ID, run.Duration().Round(time.Millisecond), len(run.Briefs), len(run.Failures), plan.Grounded)

	p.record(run)
	return run, nil
}

// setPhase advances the controller state and announces the transition.
func (p *Pipeline) setPhase(run *models.PipelineRun, phase models.RunPhase) {
	run.Phase = phase
	p.emit(PipelineEvent{Type: EventPhaseChanged, RunID: run.ID, Phase: phase})
}

// fail finalizes a run with a structured pipeline error. Per-persona
// diagnostics ride along on the error.
func (p *Pipeline) fail(run *models.PipelineRun, kind models.PipelineErrorKind, cause error) (*models.PipelineRun, error) {
	perr := &models.PipelineError{
		Kind:     kind,
		Cause:    cause,
		Failures: run.Failures,
	}
	run.Err = perr
	run.Phase = models.PhaseFailed
	run.FinishedAt = time.Now()

	p.emit(PipelineEvent{Type: EventRunFailed, RunID: run.ID, Phase: run.Phase, Err: perr})
	log.Printf("[pipeline] %s: failed: %v", run.ID, perr)

	p.record(run)
	return run, perr
}

// record persists the finished run. Storage problems never change the
// run's outcome.
func (p *Pipeline) record(run *models.PipelineRun) {
	if p.cfg.Recorder == nil {
		return
	}
	if err := p.cfg.Recorder.RecordRun(run); err != nil {
		log.Printf("[pipeline] %s: recording run failed: %v", run.ID, err)
	}
}

// loadPriorPlan reads the founder's prior plan reference, if any, for
// continuity context. Problems reading it degrade to no prior context.
func (p *Pipeline) loadPriorPlan(runID string, fc models.FounderContext) string {
	if fc.PriorPlanPath == "" {
		return ""
	}
	data, err := os.ReadFile(fc.PriorPlanPath)
	if err != nil {
		log.Printf("[pipeline] %s: prior plan unreadable, continuing without it: %v", runID, err)
		return ""
	}
	prior := string(data)
	if len(prior) > maxPriorPlanChars {
		prior = prior[:maxPriorPlanChars]
	}
	return prior
}

func (p *Pipeline) emit(event PipelineEvent) {
	if p.cfg.Emitter != nil {
		p.cfg.Emitter.Emit(event)
	}
}
