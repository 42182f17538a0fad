package orchestrator

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/mentorra/mentorra/internal/persona"
	"github.com/mentorra/mentorra/pkg/models"
)

// fallbackSize is how many personas the documented fallback panel holds:
// the first personas in registry order, used when nobody clears the
// score threshold.
const fallbackSize = 2

// Router selects the mentor panel for a founder context. Routing is a
// pure function of the context and the registry: the same inputs always
// produce the same decision.
type Router struct {
	registry   *persona.Registry
	maxMentors int
	minScore   int
}

// NewRouter creates a router. maxMentors caps the panel size; minScore
// is the tag-overlap score a persona needs to qualify. Non-positive
// values fall back to 4 and 1.
func NewRouter(registry *persona.Registry, maxMentors, minScore int) *Router {
	if maxMentors <= 0 {
		maxMentors = 4
	}
	if minScore <= 0 {
		minScore = 1
	}
	return &Router{
		registry:   registry,
		maxMentors: maxMentors,
		minScore:   minScore,
	}
}

// candidate is one persona under scoring.
type candidate struct {
	persona models.Persona
	index   int
	score   int
	matched []string
}

// Route scores every registered persona against the context and returns
// the top panel. When no persona clears the threshold, the fixed
// fallback panel (the first registry personas) is selected instead.
// Routing fails only on an empty registry.
func (r *Router) Route(fc models.FounderContext) (*models.RouterDecision, error) {
	if r.registry.Len() == 0 {
		return nil, models.ErrEmptyRegistry
	}

	keywords := fc.Keywords()
	keywordSet := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		keywordSet[kw] = true
	}

	candidates := make([]candidate, 0, r.registry.Len())
	for i, p := range r.registry.Ordered() {
		c := candidate{persona: p, index: i}
		for _, tag := range p.Tags {
			if keywordSet[strings.ToLower(tag)] {
				c.score++
				c.matched = append(c.matched, tag)
			}
		}
		candidates = append(candidates, c)
	}

	// Score first, priority weight breaks score ties, registry order
	// breaks weight ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].persona.Weight != candidates[j].persona.Weight {
			return candidates[i].persona.Weight > candidates[j].persona.Weight
		}
		return candidates[i].index < candidates[j].index
	})

	decision := &models.RouterDecision{}
	for _, c := range candidates {
		if c.score < r.minScore || len(decision.Selected) == r.maxMentors {
			break
		}
		decision.Selected = append(decision.Selected, models.Selection{
			PersonaID: c.persona.ID,
			Score:     c.score,
			Rationale: fmt.Sprintf("matched %d tag(s): %s", c.score, strings.Join(c.matched, ", ")),
		})
	}

	if len(decision.Selected) == 0 {
		decision.Fallback = true
		for i, p := range r.registry.Ordered() {
			if i == fallbackSize || i == r.maxMentors {
				break
			}
			decision.Selected = append(decision.Selected, models.Selection{
				PersonaID: p.ID,
				Rationale: "fallback: no persona cleared the score threshold",
			})
		}
		log.Printf("[router] no persona cleared threshold %d, using fallback panel", r.minScore)
	}

	if err := decision.Validate(r.maxMentors); err != nil {
		return nil, err
	}
	return decision, nil
}
