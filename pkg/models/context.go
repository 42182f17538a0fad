// Package models defines the shared domain types for the Mentorra
// orchestration core: founder input, personas, briefs, proof packs,
// synthesized plans, and the typed error taxonomy.
package models

import (
	"fmt"
	"strings"
)

// Stage represents the company stage declared by the founder.
type Stage string

const (
	// StageIdea indicates the founder is pre-product, exploring an idea.
	StageIdea Stage = "idea"
	// StagePreRevenue indicates a product exists but nothing has been sold.
	StagePreRevenue Stage = "pre-revenue"
	// StageEarlyRevenue indicates the first paying customers exist.
	StageEarlyRevenue Stage = "early-revenue"
	// StageScaling indicates repeatable revenue that needs to grow.
	StageScaling Stage = "scaling"
)

// Valid returns true if the stage is a known value.
func (s Stage) Valid() bool {
	switch s {
	case StageIdea, StagePreRevenue, StageEarlyRevenue, StageScaling:
		return true
	default:
		return false
	}
}

// ParseStage converts a user-supplied string to a Stage.
// Matching is case-insensitive and tolerates underscores for dashes.
func ParseStage(s string) (Stage, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	stage := Stage(normalized)
	if !stage.Valid() {
		return "", fmt.Errorf("unknown stage %q (want idea, pre-revenue, early-revenue, or scaling)", s)
	}
	return stage, nil
}

// FounderContext is the immutable input to one pipeline run.
// It is validated once at intake and never mutated afterwards.
type FounderContext struct {
	// Idea is the founder's description of what they are building.
	Idea string `json:"idea"`
	// Industry is the market the company operates in, if known.
	Industry string `json:"industry,omitempty"`
	// Stage is the declared company stage.
	Stage Stage `json:"stage"`
	// Constraints are free-text limits the plan must respect
	// (e.g. "solo founder", "no budget for paid ads").
	Constraints []string `json:"constraints,omitempty"`
	// PriorPlanPath references a previously generated plan, if any.
	// Used for continuity context and for diffing the new plan.
	PriorPlanPath string `json:"prior_plan_path,omitempty"`
}

// Validate checks that the context is sufficient to start a run.
func (c *FounderContext) Validate() error {
	if strings.TrimSpace(c.Idea) == "" {
		return fmt.Errorf("founder context: idea is required")
	}
	if !c.Stage.Valid() {
		return fmt.Errorf("founder context: invalid stage %q", c.Stage)
	}
	return nil
}

// Keywords returns the lowercase routing tokens derived from the context:
// the stage, plus every word of the idea, industry, and constraints.
// The router matches these against persona expertise tags.
func (c *FounderContext) Keywords() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(tok string) {
		tok = strings.ToLower(strings.Trim(tok, ".,;:!?()\"'"))
		if tok == "" || seen[tok] {
			return
		}
		seen[tok] = true
		out = append(out, tok)
	}

	add(string(c.Stage))
	for _, field := range append([]string{c.Idea, c.Industry}, c.Constraints...) {
		for _, tok := range strings.Fields(field) {
			add(tok)
		}
	}
	return out
}
