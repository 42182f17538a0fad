package models

import (
	"fmt"
	"strings"
)

// Persona is one mentor profile from the registry.
// The registry is loaded once at process start and is read-only for the
// lifetime of the process; a Persona is never mutated during a run.
type Persona struct {
	// ID is the stable identifier used in routing decisions and briefs.
	ID string `json:"id" yaml:"id"`
	// Name is the display name shown to the founder.
	Name string `json:"name" yaml:"name"`
	// Tags are the expertise areas used for routing (lowercase).
	Tags []string `json:"tags" yaml:"tags"`
	// Weight is the priority used to break routing ties and to resolve
	// conflicting recommendations during synthesis. Higher wins.
	Weight int `json:"weight" yaml:"weight"`
	// VoiceID is the voice handle used by the downstream voice delivery
	// service. Opaque to the orchestration core.
	VoiceID string `json:"voice_id,omitempty" yaml:"voice_id,omitempty"`
	// PromptKey selects the briefing template for this persona.
	// Empty means the default template.
	PromptKey string `json:"prompt_key,omitempty" yaml:"prompt_key,omitempty"`
}

// Validate checks the persona definition loaded from the registry document.
func (p *Persona) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("persona: id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("persona %s: name is required", p.ID)
	}
	if len(p.Tags) == 0 {
		return fmt.Errorf("persona %s: at least one expertise tag is required", p.ID)
	}
	for _, tag := range p.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("persona %s: empty expertise tag", p.ID)
		}
	}
	if p.Weight < 0 {
		return fmt.Errorf("persona %s: weight must be non-negative, got %d", p.ID, p.Weight)
	}
	return nil
}

// HasTag reports whether the persona declares the given expertise tag.
// Matching is case-insensitive.
func (p *Persona) HasTag(tag string) bool {
	tag = strings.ToLower(tag)
	for _, t := range p.Tags {
		if strings.ToLower(t) == tag {
			return true
		}
	}
	return false
}
