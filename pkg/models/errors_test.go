package models

import (
	"errors"
	"strings"
	"testing"
)

func TestAgentErrorKind_Valid(t *testing.T) {
	tests := []struct {
		name string
		kind AgentErrorKind
		want bool
	}{
		{"timeout", AgentTimeout, true},
		{"transport", AgentTransport, true},
		{"malformed", AgentMalformed, true},
		{"cancelled", AgentCancelled, true},
		{"empty", AgentErrorKind(""), false},
		{"unknown", AgentErrorKind("exploded"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.Valid(); got != tt.want {
				t.Errorf("AgentErrorKind(%q).Valid() = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestAgentError_Error(t *testing.T) {
	err := &AgentError{
		PersonaID: "sales",
		Kind:      AgentTimeout,
		Detail:    "no reply within 30s",
	}

	msg := err.Error()
	if !strings.Contains(msg, "sales") {
		t.Errorf("Error() = %q, want persona id in message", msg)
	}
	if !strings.Contains(msg, string(AgentTimeout)) {
		t.Errorf("Error() = %q, want kind in message", msg)
	}
	if !strings.Contains(msg, "no reply within 30s") {
		t.Errorf("Error() = %q, want detail in message", msg)
	}
}

func TestPipelineErrorKind_Valid(t *testing.T) {
	tests := []struct {
		name string
		kind PipelineErrorKind
		want bool
	}{
		{"invalid context", PipelineInvalidContext, true},
		{"router", PipelineRouter, true},
		{"all agents failed", PipelineAllAgentsFailed, true},
		{"synthesis", PipelineSynthesis, true},
		{"cancelled", PipelineCancelled, true},
		{"empty", PipelineErrorKind(""), false},
		{"unknown", PipelineErrorKind("oops"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.Valid(); got != tt.want {
				t.Errorf("PipelineErrorKind(%q).Valid() = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestPipelineError_Unwrap(t *testing.T) {
	err := &PipelineError{
		Kind:  PipelineAllAgentsFailed,
		Cause: ErrAllAgentsFailed,
	}

	if !errors.Is(err, ErrAllAgentsFailed) {
		t.Errorf("errors.Is(err, ErrAllAgentsFailed) = false, want true")
	}
}

func TestPipelineError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *PipelineError
		want []string
	}{
		{
			name: "kind only",
			err:  &PipelineError{Kind: PipelineRouter},
			want: []string{"router"},
		},
		{
			name: "kind and cause",
			err: &PipelineError{
				Kind:  PipelineSynthesis,
				Cause: ErrNoActionableContent,
			},
			want: []string{"synthesis", ErrNoActionableContent.Error()},
		},
		{
			name: "with failures",
			err: &PipelineError{
				Kind:  PipelineAllAgentsFailed,
				Cause: ErrAllAgentsFailed,
				Failures: []*AgentError{
					{PersonaID: "product", Kind: AgentTimeout},
					{PersonaID: "sales", Kind: AgentTransport},
				},
			},
			want: []string{"all_agents_failed", "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, fragment := range tt.want {
				if !strings.Contains(msg, fragment) {
					t.Errorf("Error() = %q, want it to contain %q", msg, fragment)
				}
			}
		})
	}
}
