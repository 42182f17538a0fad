// Package persona loads and serves the mentor persona registry.
// The registry is a versioned YAML document, loaded once at process start
// and treated as read-only for the lifetime of the process.
package persona

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mentorra/mentorra/pkg/models"
)

//go:embed personas.yaml
var defaultDocument []byte

// Document is the on-disk shape of a persona registry.
type Document struct {
	// Version names the registry revision (e.g., "registry/v1").
	Version string `yaml:"version"`
	// Personas lists the mentor profiles in registry order. Registry order
	// is meaningful: it is the final tie-break for routing and synthesis.
	Personas []models.Persona `yaml:"personas"`
}

// Registry is an ordered, indexed view over the persona document.
type Registry struct {
	version string
	ordered []models.Persona
	index   map[string]int
}

// Load reads a registry document from path. An empty path loads the
// embedded default registry.
func Load(path string) (*Registry, error) {
	data := defaultDocument
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading persona registry: %w", err)
		}
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing persona registry: %w", err)
	}

	return New(doc.Version, doc.Personas)
}

// New builds a registry from an already-parsed document.
// Every persona must validate and ids must be unique. An empty persona
// list is allowed here; routing against it fails with ErrEmptyRegistry.
func New(version string, personas []models.Persona) (*Registry, error) {
	index := make(map[string]int, len(personas))
	for i := range personas {
		p := &personas[i]
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("persona registry: %w", err)
		}
		if _, dup := index[p.ID]; dup {
			return nil, fmt.Errorf("persona registry: duplicate persona id %q", p.ID)
		}
		index[p.ID] = i
	}

	ordered := make([]models.Persona, len(personas))
	copy(ordered, personas)

	return &Registry{
		version: version,
		ordered: ordered,
		index:   index,
	}, nil
}

// Version returns the registry document version.
func (r *Registry) Version() string {
	return r.version
}

// Len returns the number of registered personas.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// Ordered returns the personas in registry order. The returned slice is a
// copy; callers cannot mutate the registry through it.
func (r *Registry) Ordered() []models.Persona {
	out := make([]models.Persona, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// ByID returns the persona with the given id.
func (r *Registry) ByID(id string) (models.Persona, bool) {
	i, ok := r.index[id]
	if !ok {
		return models.Persona{}, false
	}
	return r.ordered[i], true
}

// IndexOf returns the registry position of the given persona id, or -1
// when the id is not registered.
func (r *Registry) IndexOf(id string) int {
	i, ok := r.index[id]
	if !ok {
		return -1
	}
	return i
}

// Weight returns the persona's conflict-resolution weight, or 0 when the
// id is not registered.
func (r *Registry) Weight(id string) int {
	i, ok := r.index[id]
	if !ok {
		return 0
	}
	return r.ordered[i].Weight
}
