package models

import (
	"fmt"
	"time"
)

// PlanHorizonDays is the planning horizon: every plan covers days 1..30.
const PlanHorizonDays = 30

// DayRange is an inclusive span of days inside the planning horizon.
type DayRange struct {
	// Start is the first day of the range (1-based).
	Start int `json:"start"`
	// End is the last day of the range, inclusive.
	End int `json:"end"`
}

// String renders the range as "days 1-7".
func (r DayRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("day %d", r.Start)
	}
	return fmt.Sprintf("days %d-%d", r.Start, r.End)
}

// PlanItem is one action in the synthesized plan.
type PlanItem struct {
	// Days is the range within the 30-day horizon for this action.
	Days DayRange `json:"days"`
	// Action is the action text the founder should execute.
	Action string `json:"action"`
	// PersonaIDs lists the personas whose briefs support this action.
	// Always at least one.
	PersonaIDs []string `json:"persona_ids"`
	// Tradeoffs surfaces recommendations that lost a conflict with this
	// action, so disagreement is never dropped without trace.
	Tradeoffs []string `json:"tradeoffs,omitempty"`
	// Grounded is true when the action text references a ProofPack entry.
	Grounded bool `json:"grounded,omitempty"`
}

// SynthesisPlan is the final ranked 30-day plan for one run.
type SynthesisPlan struct {
	// Items are the plan actions in ascending day order.
	Items []PlanItem `json:"items"`
	// Grounded is true when a ProofPack was present and at least one
	// item references it.
	Grounded bool `json:"grounded"`
	// GeneratedAt is when synthesis completed.
	GeneratedAt time.Time `json:"generated_at"`
}

// SupportingPersonaIDs returns the distinct persona ids cited across all
// items, in first-appearance order.
func (p *SynthesisPlan) SupportingPersonaIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, item := range p.Items {
		for _, id := range item.PersonaIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Validate checks the structural plan invariants: at least one item, every
// item supported by at least one persona, day ranges pairwise
// non-overlapping, ascending, and together covering [1, PlanHorizonDays].
func (p *SynthesisPlan) Validate() error {
	if len(p.Items) == 0 {
		return fmt.Errorf("plan: no items")
	}

	expectedStart := 1
	for i, item := range p.Items {
		if len(item.PersonaIDs) == 0 {
			return fmt.Errorf("plan item %d: no supporting personas", i)
		}
		r := item.Days
		if r.Start > r.End {
			return fmt.Errorf("plan item %d: inverted day range %d-%d", i, r.Start, r.End)
		}
		if r.Start != expectedStart {
			return fmt.Errorf("plan item %d: range starts at day %d, want %d (ranges must be ascending, non-overlapping, and gap-free)", i, r.Start, expectedStart)
		}
		expectedStart = r.End + 1
	}
	if expectedStart != PlanHorizonDays+1 {
		return fmt.Errorf("plan: items cover days 1-%d, want 1-%d", expectedStart-1, PlanHorizonDays)
	}
	return nil
}
