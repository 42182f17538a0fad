package models

import (
	"strings"
	"time"
)

// BriefStatus represents the validation verdict for an agent brief.
type BriefStatus string

const (
	// BriefValid indicates the brief passed the section contract.
	BriefValid BriefStatus = "valid"
	// BriefMalformed indicates the brief failed the section contract
	// even after the repair attempt.
	BriefMalformed BriefStatus = "malformed"
	// BriefMissing indicates the persona never returned a brief
	// (timeout, transport failure, or cancellation).
	BriefMissing BriefStatus = "missing"
)

// Valid returns true if the status is a known value.
func (s BriefStatus) Valid() bool {
	switch s {
	case BriefValid, BriefMalformed, BriefMissing:
		return true
	default:
		return false
	}
}

// Canonical section names of the brief contract, in required order.
const (
	// SectionDiagnosis names what the mentor thinks is really going on.
	SectionDiagnosis = "Diagnosis"
	// SectionKeyInsight names the one thing the founder is missing.
	SectionKeyInsight = "Key Insight"
	// SectionLikelyMistake names the mistake the founder is about to make.
	SectionLikelyMistake = "Likely Mistake"
	// SectionRecommendedAction names the strategic move for the month.
	SectionRecommendedAction = "Recommended Action"
	// SectionImmediateAction names what to do before the week is out.
	SectionImmediateAction = "Immediate Action"
)

// BriefSectionNames returns the contract's section names in required order.
func BriefSectionNames() []string {
	return []string{
		SectionDiagnosis,
		SectionKeyInsight,
		SectionLikelyMistake,
		SectionRecommendedAction,
		SectionImmediateAction,
	}
}

// BriefSection is one named section of a brief, in document order.
type BriefSection struct {
	// Name is the canonical section heading.
	Name string `json:"name"`
	// Body is the section text with surrounding whitespace trimmed.
	Body string `json:"body"`
}

// AgentBrief is the structured output of one persona for one run.
// It is immutable after validation.
type AgentBrief struct {
	// PersonaID identifies the persona that produced the brief.
	PersonaID string `json:"persona_id"`
	// Sections holds the five contract sections in canonical order.
	Sections []BriefSection `json:"sections"`
	// Status is the validation verdict.
	Status BriefStatus `json:"status"`
	// Repaired is true when the brief only validated after the
	// single repair re-query.
	Repaired bool `json:"repaired,omitempty"`
	// ReceivedAt is when the validated brief was produced.
	ReceivedAt time.Time `json:"received_at"`
}

// Section returns the body of the named section, or "" if absent.
// Matching is case-insensitive on the canonical names.
func (b *AgentBrief) Section(name string) string {
	for _, s := range b.Sections {
		if strings.EqualFold(s.Name, name) {
			return s.Body
		}
	}
	return ""
}
