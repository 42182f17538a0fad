package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fatal pipeline conditions.
var (
	// ErrEmptyRegistry is returned by the router when the persona
	// registry holds no personas. There is no fallback for this.
	ErrEmptyRegistry = errors.New("persona registry is empty")
	// ErrAllAgentsFailed is returned by the coordinator when zero
	// personas produced a valid brief.
	ErrAllAgentsFailed = errors.New("no persona produced a valid brief")
	// ErrNoActionableContent is returned by synthesis when the validated
	// briefs contained no extractable action items.
	ErrNoActionableContent = errors.New("no actionable content in validated briefs")
)

// AgentErrorKind classifies a single failed persona invocation.
type AgentErrorKind string

const (
	// AgentTimeout indicates the invocation exceeded its deadline.
	AgentTimeout AgentErrorKind = "timeout"
	// AgentTransport indicates the model call failed to complete.
	AgentTransport AgentErrorKind = "transport"
	// AgentMalformed indicates the output failed the brief contract
	// even after the repair attempt.
	AgentMalformed AgentErrorKind = "malformed"
	// AgentCancelled indicates the run was cancelled mid-invocation.
	AgentCancelled AgentErrorKind = "cancelled"
)

// Valid returns true if the kind is a known value.
func (k AgentErrorKind) Valid() bool {
	switch k {
	case AgentTimeout, AgentTransport, AgentMalformed, AgentCancelled:
		return true
	default:
		return false
	}
}

// AgentError is the typed failure of one persona invocation. Agent errors
// are absorbed by the coordinator: they are recorded for diagnostics and
// never interrupt sibling invocations.
type AgentError struct {
	// PersonaID identifies the persona whose invocation failed.
	PersonaID string `json:"persona_id"`
	// Kind classifies the failure.
	Kind AgentErrorKind `json:"kind"`
	// Detail is the human-readable failure description.
	Detail string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("agent %s: %s", e.PersonaID, e.Kind)
	}
	return fmt.Sprintf("agent %s: %s: %s", e.PersonaID, e.Kind, e.Detail)
}

// PipelineErrorKind names the stage-level cause of a failed run.
type PipelineErrorKind string

const (
	// PipelineInvalidContext indicates the founder context failed intake
	// validation.
	PipelineInvalidContext PipelineErrorKind = "invalid_context"
	// PipelineRouter indicates routing failed (empty registry).
	PipelineRouter PipelineErrorKind = "router"
	// PipelineAllAgentsFailed indicates zero personas produced a valid
	// brief.
	PipelineAllAgentsFailed PipelineErrorKind = "all_agents_failed"
	// PipelineSynthesis indicates synthesis could not produce a plan.
	PipelineSynthesis PipelineErrorKind = "synthesis"
	// PipelineCancelled indicates the run was cancelled before a plan
	// could be produced.
	PipelineCancelled PipelineErrorKind = "cancelled"
)

// Valid returns true if the kind is a known value.
func (k PipelineErrorKind) Valid() bool {
	switch k {
	case PipelineInvalidContext, PipelineRouter, PipelineAllAgentsFailed,
		PipelineSynthesis, PipelineCancelled:
		return true
	default:
		return false
	}
}

// PipelineError is the single structured error surfaced to the caller when
// a run fails. Per-persona diagnostics ride along in Failures and are never
// silently dropped.
type PipelineError struct {
	// Kind names the fatal cause.
	Kind PipelineErrorKind `json:"kind"`
	// Cause is the underlying error, if any.
	Cause error `json:"-"`
	// Failures holds the per-persona failures observed during the run,
	// for observability.
	Failures []*AgentError `json:"failures,omitempty"`
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("pipeline failed (%s)", e.Kind)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if len(e.Failures) > 0 {
		msg += fmt.Sprintf(" [%d agent failure(s)]", len(e.Failures))
	}
	return msg
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}
