package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrDuplicateKind    = errors.New("duplicate action kind")
	ErrDuplicateName    = errors.New("duplicate category")
)

// Definition describes an operation the assistant can perform.
type Definition struct {
	Kind     string `json:"kind" toml:"kind"`
	Label    string `json:"label" toml:"label"`
	Category string `json:"category" toml:"-"`
}

// Category groups definitions under a display name.
type Category struct {
	Name    string       `json:"name" toml:"name"`
	Actions []Definition `json:"actions" toml:"actions"`
}

// Registry is an immutable, ordered catalogue of actions.
type Registry struct {
	names  []string
	byName map[string][]Definition
	byKind map[string]Definition
}

// NewRegistry validates the categories and freezes them into a Registry.
// Category names and action kinds must be unique across the catalogue.
func NewRegistry(categories []Category) (*Registry, error) {
	r := &Registry{
		names:  make([]string, 0, len(categories)),
		byName: make(map[string][]Definition, len(categories)),
		byKind: make(map[string]Definition),
	}

	for _, category := range categories {
		name := strings.TrimSpace(category.Name)
		if name == "" {
			return nil, fmt.Errorf("category name is required")
		}
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}

		defs := make([]Definition, 0, len(category.Actions))
		for _, action := range category.Actions {
			kind := strings.TrimSpace(action.Kind)
			if kind == "" {
				return nil, fmt.Errorf("action kind is required in category %s", name)
			}
			if _, exists := r.byKind[kind]; exists {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateKind, kind)
			}
			def := Definition{Kind: kind, Label: action.Label, Category: name}
			if def.Label == "" {
				def.Label = kind
			}
			r.byKind[kind] = def
			defs = append(defs, def)
		}

		r.names = append(r.names, name)
		r.byName[name] = defs
	}

	return r, nil
}

// Categories returns category names in configuration order.
func (r *Registry) Categories() []string {
	return append([]string(nil), r.names...)
}

// ActionsIn returns the definitions of a category in configuration order.
func (r *Registry) ActionsIn(category string) ([]Definition, error) {
	defs, ok := r.byName[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
	}
	return append([]Definition(nil), defs...), nil
}

// Resolve looks up a definition by kind.
func (r *Registry) Resolve(kind string) (Definition, bool) {
	def, ok := r.byKind[kind]
	return def, ok
}

// HasCategory reports whether name is a configured category.
func (r *Registry) HasCategory(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	return len(r.byKind)
}
