package models

import "time"

// RunPhase represents the pipeline controller's state for a run.
type RunPhase string

const (
	// PhaseIntake indicates the founder context is being validated.
	PhaseIntake RunPhase = "intake"
	// PhaseRouting indicates persona selection is in progress.
	PhaseRouting RunPhase = "routing"
	// PhaseFanout indicates agent invocations (and grounding) are in flight.
	PhaseFanout RunPhase = "fanout"
	// PhaseSynthesizing indicates briefs are being combined into a plan.
	PhaseSynthesizing RunPhase = "synthesizing"
	// PhaseDone indicates the run produced a plan.
	PhaseDone RunPhase = "done"
	// PhaseFailed indicates the run ended with a pipeline error.
	PhaseFailed RunPhase = "failed"
)

// Valid returns true if the phase is a known value.
func (p RunPhase) Valid() bool {
	switch p {
	case PhaseIntake, PhaseRouting, PhaseFanout, PhaseSynthesizing,
		PhaseDone, PhaseFailed:
		return true
	default:
		return false
	}
}

// PipelineRun correlates everything produced during one execution: the
// input context, the routing decision, the briefs that actually arrived,
// the optional proof pack, and the final plan or error. It is owned
// exclusively by the pipeline controller while the run is live; callers may
// retain the finished value for logging.
type PipelineRun struct {
	// ID is the short unique identifier for this run.
	ID string `json:"id"`
	// Context is the founder input, immutable for the run's lifetime.
	Context FounderContext `json:"context"`
	// Decision is the router's persona selection, once routing completes.
	Decision *RouterDecision `json:"decision,omitempty"`
	// Briefs are the validated briefs returned by the fan-out (0..N).
	Briefs []*AgentBrief `json:"briefs,omitempty"`
	// Failures are the per-persona failures observed during the fan-out.
	Failures []*AgentError `json:"failures,omitempty"`
	// Proof is the grounding data, if the fetch succeeded.
	Proof *ProofPack `json:"proof,omitempty"`
	// Plan is the synthesized plan, if the run succeeded.
	Plan *SynthesisPlan `json:"plan,omitempty"`
	// Err is the structured pipeline error, if the run failed.
	Err *PipelineError `json:"error,omitempty"`
	// Phase is the controller's final (or current) state.
	Phase RunPhase `json:"phase"`
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is when the run settled, successfully or not.
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Duration returns the wall-clock time the run took, or 0 if unfinished.
func (r *PipelineRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
