package models

import "fmt"

// Selection is one persona chosen by the router, with the reason it won.
type Selection struct {
	// PersonaID identifies the selected persona.
	PersonaID string `json:"persona_id"`
	// Score is the routing score the persona achieved (tag matches).
	Score int `json:"score"`
	// Rationale explains the selection in one line, for diagnostics.
	Rationale string `json:"rationale"`
}

// RouterDecision is the ordered, bounded set of personas to invoke for a run.
type RouterDecision struct {
	// Selected lists the chosen personas in invocation order.
	Selected []Selection `json:"selected"`
	// Fallback is true when no persona cleared the score threshold and
	// the documented default subset was used instead.
	Fallback bool `json:"fallback,omitempty"`
}

// PersonaIDs returns the selected persona ids in order.
func (d *RouterDecision) PersonaIDs() []string {
	ids := make([]string, len(d.Selected))
	for i, s := range d.Selected {
		ids[i] = s.PersonaID
	}
	return ids
}

// Validate checks the decision invariants: at least one selection,
// at most max selections, and no duplicate persona ids.
func (d *RouterDecision) Validate(max int) error {
	if len(d.Selected) == 0 {
		return fmt.Errorf("router decision: no personas selected")
	}
	if max > 0 && len(d.Selected) > max {
		return fmt.Errorf("router decision: %d personas selected, max is %d", len(d.Selected), max)
	}
	seen := make(map[string]bool, len(d.Selected))
	for _, s := range d.Selected {
		if seen[s.PersonaID] {
			return fmt.Errorf("router decision: duplicate persona %s", s.PersonaID)
		}
		seen[s.PersonaID] = true
	}
	return nil
}
