// Package plan turns a synthesized plan into its caller-facing forms:
// a markdown document, a speakable narration for the voice boundary,
// and a diff against the founder's previous plan.
package plan

import (
	"fmt"
	"strings"

	"github.com/mentorra/mentorra/internal/persona"
	"github.com/mentorra/mentorra/pkg/models"
)

// Render produces the markdown 30-day plan. The registry resolves
// persona ids to display names; unknown ids render as-is.
func Render(p *models.SynthesisPlan, reg *persona.Registry) string {
	var b strings.Builder

	b.WriteString("# Your 30-Day Plan\n\n")
	if p.Grounded {
		b.WriteString("Grounded in current market data.\n\n")
	}

	for _, item := range p.Items {
		fmt.Fprintf(&b, "## %s\n\n", titleCase(item.Days.String()))
		fmt.Fprintf(&b, "%s\n\n", item.Action)
		fmt.Fprintf(&b, "Backed by: %s\n", strings.Join(mentorNames(item.PersonaIDs, reg), ", "))
		for _, note := range item.Tradeoffs {
			fmt.Fprintf(&b, "\nTradeoff considered: %s\n", note)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Narration produces the speakable form handed to the voice delivery
// service: short sentences, no markdown, day ranges spelled out.
func Narration(p *models.SynthesisPlan, reg *persona.Registry) string {
	var b strings.Builder

	b.WriteString("Here is your thirty day plan. ")
	for _, item := range p.Items {
		fmt.Fprintf(&b, "%s: %s ", titleCase(item.Days.String()), sentence(item.Action))
	}
	if p.Grounded {
		b.WriteString("This plan is grounded in current market data. ")
	}

	names := mentorNames(p.SupportingPersonaIDs(), reg)
	fmt.Fprintf(&b, "Advice contributed by %s.", joinNatural(names))
	return b.String()
}

// mentorNames maps persona ids to display names, keeping order.
func mentorNames(ids []string, reg *persona.Registry) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id
		if reg != nil {
			if p, ok := reg.ByID(id); ok {
				names[i] = p.Name
			}
		}
	}
	return names
}

// joinNatural joins names as "a", "a and b", or "a, b, and c".
func joinNatural(names []string) string {
	switch len(names) {
	case 0:
		return "your mentors"
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

// sentence ensures a fragment ends with terminal punctuation.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}

// titleCase uppercases the first letter of a phrase.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
