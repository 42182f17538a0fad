// Package synthesis combines validated mentor briefs into one ranked
// 30-day plan. The algorithm is deterministic: the same briefs, options,
// and proof pack always produce the same plan.
package synthesis

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/mentorra/mentorra/internal/persona"
	"github.com/mentorra/mentorra/pkg/models"
)

// Options configures conflict resolution and scheduling.
// Conflict precedence is data, not code: weights and registry order come
// from the persona registry document.
type Options struct {
	// Horizon is the plan length in days. Zero means
	// models.PlanHorizonDays.
	Horizon int
	// Weights maps persona id to conflict-resolution weight. Higher wins.
	Weights map[string]int
	// Order maps persona id to registry position. Lower breaks weight ties.
	Order map[string]int
}

// NewOptions derives synthesis options from the persona registry.
func NewOptions(reg *persona.Registry) Options {
	opts := Options{
		Horizon: models.PlanHorizonDays,
		Weights: make(map[string]int, reg.Len()),
		Order:   make(map[string]int, reg.Len()),
	}
	for i, p := range reg.Ordered() {
		opts.Weights[p.ID] = p.Weight
		opts.Order[p.ID] = i
	}
	return opts
}

// Aggregator synthesizes plans from briefs.
type Aggregator struct {
	opts Options
}

// New creates an aggregator.
func New(opts Options) *Aggregator {
	if opts.Horizon <= 0 {
		opts.Horizon = models.PlanHorizonDays
	}
	return &Aggregator{opts: opts}
}

// action is one extracted recommendation on its way into the plan.
type action struct {
	text       string
	topic      string
	immediate  bool
	personaIDs []string
	tradeoffs  []string
	// keys are the normalized texts already merged into this action,
	// used for duplicate detection.
	keys map[string]bool
}

// Synthesize builds the ranked plan. It fails only when the briefs held
// no extractable action content, which signals an upstream contract
// violation rather than a normal degraded run.
func (a *Aggregator) Synthesize(briefs []*models.AgentBrief, proof *models.ProofPack) (*models.SynthesisPlan, error) {
	actions := a.extract(briefs)
	if len(actions) == 0 {
		return nil, models.ErrNoActionableContent
	}

	actions = a.resolveConflicts(actions)
	a.rank(actions)
	actions = a.fold(actions)

	plan := &models.SynthesisPlan{GeneratedAt: time.Now()}
	plan.Items = a.schedule(actions)

	if proof != nil && len(proof.Entries) > 0 {
		a.ground(plan, proof)
	}

	// Plan.Validate pins the canonical 30-day horizon; a shortened
	// horizon (tests, experiments) checks only what schedule guarantees.
	if a.opts.Horizon == models.PlanHorizonDays {
		if err := plan.Validate(); err != nil {
			return nil, fmt.Errorf("synthesis produced an invalid plan: %w", err)
		}
	}
	return plan, nil
}

// extract pulls the Immediate Action and Recommended Action of every
// brief, merging exact duplicates across personas as it goes.
func (a *Aggregator) extract(briefs []*models.AgentBrief) []*action {
	var actions []*action
	byKey := make(map[string]*action)

	add := func(personaID, body string, immediate bool) {
		text := oneLine(body)
		if text == "" {
			return
		}
		key := normalize(text)
		if existing, ok := byKey[key]; ok {
			existing.merge(personaID)
			return
		}
		act := &action{
			text:       text,
			topic:      topicOf(text),
			immediate:  immediate,
			personaIDs: []string{personaID},
			keys:       map[string]bool{key: true},
		}
		byKey[key] = act
		actions = append(actions, act)
	}

	for _, b := range briefs {
		add(b.PersonaID, b.Section(models.SectionImmediateAction), true)
		add(b.PersonaID, b.Section(models.SectionRecommendedAction), false)
	}
	return actions
}

// merge records another persona backing the same action.
func (act *action) merge(personaID string) {
	for _, id := range act.personaIDs {
		if id == personaID {
			return
		}
	}
	act.personaIDs = append(act.personaIDs, personaID)
}

// resolveConflicts detects personas disagreeing on the same topic and
// keeps exactly one primary action per contested topic. The losing
// recommendations survive as tradeoff notes on the winner; disagreement
// is never dropped without trace. Actions in the general bucket never
// conflict.
func (a *Aggregator) resolveConflicts(actions []*action) []*action {
	byTopic := make(map[string][]*action)
	var topics []string
	for _, act := range actions {
		if _, seen := byTopic[act.topic]; !seen {
			topics = append(topics, act.topic)
		}
		byTopic[act.topic] = append(byTopic[act.topic], act)
	}

	var out []*action
	for _, topic := range topics {
		cluster := byTopic[topic]
		if topic == topicGeneral || len(cluster) == 1 || !contested(cluster) {
			out = append(out, cluster...)
			continue
		}

		sort.SliceStable(cluster, func(i, j int) bool {
			wi, wj := a.weightOf(cluster[i]), a.weightOf(cluster[j])
			if wi != wj {
				return wi > wj
			}
			oi, oj := a.orderOf(cluster[i]), a.orderOf(cluster[j])
			if oi != oj {
				return oi < oj
			}
			return cluster[i].immediate && !cluster[j].immediate
		})

		winner := cluster[0]
		winnerSet := make(map[string]bool, len(winner.personaIDs))
		for _, id := range winner.personaIDs {
			winnerSet[id] = true
		}

		for _, act := range cluster[1:] {
			if sameOwners(act, winnerSet) {
				// Same persona expanding on its own topic: both
				// actions stand, no conflict to resolve.
				out = append(out, act)
				continue
			}
			note := fmt.Sprintf("%s advised instead: %s", strings.Join(act.personaIDs, ", "), act.text)
			winner.tradeoffs = append(winner.tradeoffs, note)
			log.Printf("[synthesis] topic %q: kept %s over %s", topic,
				strings.Join(winner.personaIDs, ","), strings.Join(act.personaIDs, ","))
		}
		out = append(out, winner)
	}
	return out
}

// contested reports whether a cluster holds actions from more than one
// distinct persona set.
func contested(cluster []*action) bool {
	owners := make(map[string]bool)
	for _, act := range cluster {
		for _, id := range act.personaIDs {
			owners[id] = true
		}
	}
	return len(owners) > 1
}

// sameOwners reports whether every supporter of act is already behind
// the winner.
func sameOwners(act *action, winnerSet map[string]bool) bool {
	for _, id := range act.personaIDs {
		if !winnerSet[id] {
			return false
		}
	}
	return true
}

// weightOf returns the best conflict weight among an action's supporters.
func (a *Aggregator) weightOf(act *action) int {
	best := 0
	for _, id := range act.personaIDs {
		if w := a.opts.Weights[id]; w > best {
			best = w
		}
	}
	return best
}

// orderOf returns the earliest registry position among supporters.
func (a *Aggregator) orderOf(act *action) int {
	best := int(^uint(0) >> 1)
	for _, id := range act.personaIDs {
		if pos, ok := a.opts.Order[id]; ok && pos < best {
			best = pos
		}
	}
	return best
}

// rank orders actions by urgency, then persona weight, then registry
// order, so the plan front-loads what the founder should do first.
func (a *Aggregator) rank(actions []*action) {
	sort.SliceStable(actions, func(i, j int) bool {
		ui := urgencyScore(actions[i].text, actions[i].immediate)
		uj := urgencyScore(actions[j].text, actions[j].immediate)
		if ui != uj {
			return ui > uj
		}
		wi, wj := a.weightOf(actions[i]), a.weightOf(actions[j])
		if wi != wj {
			return wi > wj
		}
		return a.orderOf(actions[i]) < a.orderOf(actions[j])
	})
}

// fold caps the plan at one action per day of the horizon. Overflow is
// folded into the final item instead of being dropped.
func (a *Aggregator) fold(actions []*action) []*action {
	if len(actions) <= a.opts.Horizon {
		return actions
	}
	kept := actions[:a.opts.Horizon]
	last := kept[len(kept)-1]
	for _, act := range actions[a.opts.Horizon:] {
		last.text += "; also: " + act.text
		for _, id := range act.personaIDs {
			last.merge(id)
		}
		last.tradeoffs = append(last.tradeoffs, act.tradeoffs...)
	}
	return kept
}

// schedule assigns contiguous, ascending day ranges that exactly cover
// the horizon: a near-equal partition with the remainder spread over the
// earliest items.
func (a *Aggregator) schedule(actions []*action) []models.PlanItem {
	n := len(actions)
	base := a.opts.Horizon / n
	rem := a.opts.Horizon % n

	items := make([]models.PlanItem, n)
	day := 1
	for i, act := range actions {
		span := base
		if i < rem {
			span++
		}
		items[i] = models.PlanItem{
			Days:       models.DayRange{Start: day, End: day + span - 1},
			Action:     act.text,
			PersonaIDs: act.personaIDs,
			Tradeoffs:  act.tradeoffs,
		}
		day += span
	}
	return items
}

// ground attaches the strongest market fact to the most relevant plan
// item and marks the plan grounded. Pricing and sales items get first
// claim on competitor evidence; otherwise the first item takes it.
func (a *Aggregator) ground(plan *models.SynthesisPlan, proof *models.ProofPack) {
	entry := proof.Entries[0]

	target := 0
	for i, item := range plan.Items {
		topic := topicOf(item.Action)
		if topic == "pricing" || topic == "sales" || topic == "growth" {
			target = i
			break
		}
	}

	ref := fmt.Sprintf(" Benchmark against %s", entry.Name)
	if entry.PricingModel != "" {
		ref += fmt.Sprintf(" (%s)", entry.PricingModel)
	}
	if entry.SourceURL != "" {
		ref += fmt.Sprintf("; source: %s", entry.SourceURL)
	}
	plan.Items[target].Action += ref + "."
	plan.Items[target].Grounded = true
	plan.Grounded = true
}
