package synthesis

import "strings"

// topicLexicon maps plan topics to the keywords that signal them.
// An action's topic decides which other actions it can conflict with;
// lexicon order is the tie-break when a text hits several topics.
var topicLexicon = []struct {
	name     string
	keywords []string
}{
	{"pricing", []string{"pricing", "price", "charge", "discount", "subscription", "per-seat", "per seat"}},
	{"sales", []string{"sell", "sales", "outbound", "pipeline", "prospect", "close a deal", "closing", "demo"}},
	{"fundraising", []string{"raise", "investor", "fundrais", "pitch", "seed round", "angel", "term sheet", "runway"}},
	{"product", []string{"product", "mvp", "prototype", "feature", "ship", "build", "launch", "user test", "scope"}},
	{"growth", []string{"growth", "marketing", "channel", "acquisition", "retention", "content", "seo", "audience", "funnel"}},
	{"hiring", []string{"hire", "hiring", "recruit", "team", "cofounder", "contractor", "delegate"}},
}

// topicGeneral is the bucket for actions that hit no lexicon topic.
// General actions never conflict with each other.
const topicGeneral = "general"

// topicOf classifies an action text. The topic with the most keyword
// hits wins; lexicon order breaks ties.
func topicOf(text string) string {
	lower := strings.ToLower(text)

	best := topicGeneral
	bestHits := 0
	for _, topic := range topicLexicon {
		hits := 0
		for _, kw := range topic.keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = topic.name
			bestHits = hits
		}
	}
	return best
}

// urgencyKeywords signal that an action belongs early in the horizon.
var urgencyKeywords = []string{
	"today", "tonight", "immediately", "right now", "this week",
	"within 24", "within 48", "first", "before anything", "as soon as",
}

// urgencyScore ranks how early an action should land. Actions from the
// Immediate Action section start well ahead of recommended ones; urgency
// keywords refine the order within each group.
func urgencyScore(text string, immediate bool) int {
	score := 0
	if immediate {
		score += 100
	}
	lower := strings.ToLower(text)
	for _, kw := range urgencyKeywords {
		if strings.Contains(lower, kw) {
			score += 10
		}
	}
	return score
}

// normalize reduces an action text for duplicate detection: lowercase,
// punctuation stripped, whitespace collapsed.
func normalize(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// oneLine collapses a section body into a single line of text.
func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
