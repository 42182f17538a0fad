// Package validation enforces the mentor brief output contract.
// The contract is named and versioned so prompt and validator revisions
// stay in step. Verdicts are deterministic: the same raw reply always
// produces the same report.
package validation

import (
	"fmt"
	"strings"

	"github.com/mentorra/mentorra/pkg/models"
)

// ContractVersion names the brief contract enforced by this package.
const ContractVersion = "brief/v1"

// Contract is the structural requirement for a mentor brief: the required
// section names, in order.
type Contract struct {
	Version  string
	Sections []string
}

// DefaultContract returns the brief/v1 contract with the five required
// sections.
func DefaultContract() Contract {
	return Contract{
		Version:  ContractVersion,
		Sections: models.BriefSectionNames(),
	}
}

// ViolationKind classifies one way a brief can break the contract.
type ViolationKind string

const (
	// ViolationMissing means a required section never appeared.
	ViolationMissing ViolationKind = "missing"
	// ViolationEmpty means a required section appeared with no content.
	ViolationEmpty ViolationKind = "empty"
	// ViolationOutOfOrder means a required section appeared out of the
	// contract's order.
	ViolationOutOfOrder ViolationKind = "out_of_order"
	// ViolationUnknown means a section not named by the contract appeared.
	ViolationUnknown ViolationKind = "unknown"
	// ViolationDuplicate means a required section appeared more than once.
	ViolationDuplicate ViolationKind = "duplicate"
)

// Violation records a single contract breach.
type Violation struct {
	Kind    ViolationKind
	Section string
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationMissing:
		return fmt.Sprintf("missing section %q", v.Section)
	case ViolationEmpty:
		return fmt.Sprintf("empty section %q", v.Section)
	case ViolationOutOfOrder:
		return fmt.Sprintf("section %q out of order", v.Section)
	case ViolationUnknown:
		return fmt.Sprintf("unknown section %q", v.Section)
	case ViolationDuplicate:
		return fmt.Sprintf("duplicated section %q", v.Section)
	default:
		return fmt.Sprintf("%s section %q", v.Kind, v.Section)
	}
}

// Report is the verdict for one brief against one contract.
type Report struct {
	Contract   string
	Violations []Violation
}

// OK reports whether the brief satisfied the contract.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Summary joins the violations into one line, suitable for the repair
// instruction sent back to the model.
func (r *Report) Summary() string {
	if r.OK() {
		return ""
	}
	parts := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}

// Err returns nil for a satisfied contract, otherwise an error carrying
// the summary.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%s: %s", r.Contract, r.Summary())
}

// ParseBrief splits a raw markdown reply into sections.
// A section starts at each level-two heading; its body runs to the next
// heading. Text before the first heading is dropped.
func ParseBrief(raw string) []models.BriefSection {
	var sections []models.BriefSection
	var current *models.BriefSection
	var body strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.TrimSpace(body.String())
		sections = append(sections, *current)
		current = nil
		body.Reset()
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if name, ok := strings.CutPrefix(trimmed, "## "); ok {
			flush()
			current = &models.BriefSection{Name: strings.TrimSpace(name)}
			continue
		}
		if current != nil {
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	flush()

	return sections
}

// Validate checks parsed sections against the contract.
// Violations come out in a fixed order: missing sections in contract
// order, then the parsed sections' breaches in encounter order.
func (c Contract) Validate(sections []models.BriefSection) *Report {
	report := &Report{Contract: c.Version}

	position := make(map[string]int, len(c.Sections))
	for i, name := range c.Sections {
		position[strings.ToLower(name)] = i
	}

	seen := make(map[string]bool, len(c.Sections))
	for _, s := range sections {
		if _, known := position[strings.ToLower(s.Name)]; known {
			seen[strings.ToLower(s.Name)] = true
		}
	}
	for _, name := range c.Sections {
		if !seen[strings.ToLower(name)] {
			report.Violations = append(report.Violations, Violation{Kind: ViolationMissing, Section: name})
		}
	}

	counted := make(map[string]int, len(sections))
	lastPos := -1
	for _, s := range sections {
		key := strings.ToLower(s.Name)
		pos, known := position[key]
		if !known {
			report.Violations = append(report.Violations, Violation{Kind: ViolationUnknown, Section: s.Name})
			continue
		}

		counted[key]++
		if counted[key] > 1 {
			report.Violations = append(report.Violations, Violation{Kind: ViolationDuplicate, Section: s.Name})
			continue
		}

		if pos < lastPos {
			report.Violations = append(report.Violations, Violation{Kind: ViolationOutOfOrder, Section: s.Name})
		} else {
			lastPos = pos
		}

		if s.Body == "" {
			report.Violations = append(report.Violations, Violation{Kind: ViolationEmpty, Section: s.Name})
		}
	}

	return report
}

// ValidateRaw parses and validates a raw reply in one step.
func (c Contract) ValidateRaw(raw string) ([]models.BriefSection, *Report) {
	sections := ParseBrief(raw)
	return sections, c.Validate(sections)
}
