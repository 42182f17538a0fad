// Package orchestrator coordinates an advisory run: routing the founder
// context to mentor personas, fanning out the invocations, joining the
// grounding fetch, and synthesizing the final plan.
package orchestrator

import (
	"time"

	"github.com/mentorra/mentorra/pkg/models"
)

// EventType represents the type of pipeline event.
type EventType string

const (
	// EventRunStarted indicates a run has entered the pipeline.
	EventRunStarted EventType = "run_started"
	// EventPhaseChanged indicates the controller moved to a new phase.
	EventPhaseChanged EventType = "phase_changed"
	// EventRoutingDone indicates the router selected the mentor panel.
	EventRoutingDone EventType = "routing_done"
	// EventPersonaStarted indicates one mentor invocation began.
	EventPersonaStarted EventType = "persona_started"
	// EventPersonaValidated indicates one mentor returned a valid brief.
	EventPersonaValidated EventType = "persona_validated"
	// EventPersonaFailed indicates one mentor invocation failed.
	EventPersonaFailed EventType = "persona_failed"
	// EventGroundingDone indicates the market scan settled, with or
	// without data.
	EventGroundingDone EventType = "grounding_done"
	// EventRunDone indicates the run produced a plan.
	EventRunDone EventType = "run_done"
	// EventRunFailed indicates the run ended with a pipeline error.
	EventRunFailed EventType = "run_failed"
)

// PipelineEvent represents an event emitted during an advisory run.
// These events drive the TUI and run diagnostics.
type PipelineEvent struct {
	// Type is the kind of event.
	Type EventType
	// RunID identifies the run the event belongs to.
	RunID string
	// Phase is the controller phase at emission time.
	Phase models.RunPhase
	// PersonaID is the related persona, if applicable.
	PersonaID string
	// Message provides additional context about the event.
	Message string
	// Err carries failure details for failure events.
	Err error
	// Grounded reports whether grounding data arrived, for
	// grounding_done events.
	Grounded bool
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
