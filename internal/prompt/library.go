// Package prompt loads and renders the versioned mentor briefing templates.
// Templates are data, not code: a YAML document carries the system, user,
// and repair templates plus per-persona style blocks, so prompt revisions
// ship without a rebuild.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/mentorra/mentorra/pkg/models"
)

//go:embed prompts.yaml
var defaultDocument []byte

// Document is the on-disk shape of a prompt library.
type Document struct {
	// Version names the prompt revision (e.g., "prompts/v1").
	Version string `yaml:"version"`
	// System is the persona briefing template.
	System string `yaml:"system"`
	// User is the founder-context template.
	User string `yaml:"user"`
	// Repair is the re-query instruction sent after a malformed brief.
	Repair string `yaml:"repair"`
	// Styles holds per-persona style blocks keyed by prompt_key.
	Styles map[string]string `yaml:"styles"`
}

// Library holds the compiled templates for one prompt revision.
type Library struct {
	version string
	system  *template.Template
	user    *template.Template
	repair  *template.Template
	styles  map[string]string
}

// Load reads a prompt library from path. An empty path loads the embedded
// default library.
func Load(path string) (*Library, error) {
	data := defaultDocument
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading prompt library: %w", err)
		}
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing prompt library: %w", err)
	}

	return New(doc)
}

// New compiles a library from an already-parsed document.
func New(doc Document) (*Library, error) {
	lib := &Library{
		version: doc.Version,
		styles:  doc.Styles,
	}

	var err error
	if lib.system, err = compile("system", doc.System); err != nil {
		return nil, err
	}
	if lib.user, err = compile("user", doc.User); err != nil {
		return nil, err
	}
	if lib.repair, err = compile("repair", doc.Repair); err != nil {
		return nil, err
	}

	return lib, nil
}

func compile(name, text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("prompt library: %s template is empty", name)
	}
	tmpl, err := template.New(name).Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("prompt library: parse %s template: %w", name, err)
	}
	return tmpl, nil
}

// Version returns the prompt document version.
func (l *Library) Version() string {
	return l.version
}

// RenderSystem renders the briefing system prompt for one persona.
// The persona's prompt_key selects a style block; an unknown or empty key
// renders without one.
func (l *Library) RenderSystem(p models.Persona) (string, error) {
	data := map[string]any{
		"Name":     p.Name,
		"Track":    p.ID,
		"Style":    l.styles[p.PromptKey],
		"Sections": models.BriefSectionNames(),
	}
	return render(l.system, data)
}

// RenderUser renders the founder context block handed to every selected
// persona. priorPlan is the founder's previous plan summary, empty when
// there is none.
func (l *Library) RenderUser(fc models.FounderContext, priorPlan string) (string, error) {
	data := map[string]any{
		"Idea":        fc.Idea,
		"Industry":    fc.Industry,
		"Stage":       string(fc.Stage),
		"Constraints": fc.Constraints,
		"PriorPlan":   priorPlan,
	}
	return render(l.user, data)
}

// RenderRepair renders the single repair instruction sent after a
// malformed brief. violations summarises what the validator rejected.
func (l *Library) RenderRepair(violations string) (string, error) {
	data := map[string]any{
		"Violations": violations,
	}
	return render(l.repair, data)
}

func render(tmpl *template.Template, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("prompt library: render %s: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
