package domain

import (
	"errors"
	"fmt"
)

// VariableSpec describes one selectable variable.
type VariableSpec struct {
	ID   string
	Name string
	Unit string
	Mode ColorMode
}

// Registry holds the variable specs. It is immutable after construction.
type Registry struct {
	order []string
	specs map[string]VariableSpec
}

// NewRegistry builds a registry, preserving the order of specs for display.
func NewRegistry(specs ...VariableSpec) (*Registry, error) {
	r := &Registry{specs: make(map[string]VariableSpec, len(specs))}
	for _, s := range specs {
		if s.ID == "" {
			return nil, errors.New("variable spec has empty id")
		}
		if s.Mode == nil {
			return nil, fmt.Errorf("variable %q has no colour mode", s.ID)
		}
		if _, dup := r.specs[s.ID]; dup {
			return nil, fmt.Errorf("variable %q registered twice", s.ID)
		}
		if s.Name == "" {
			s.Name = s.ID
		}
		r.specs[s.ID] = s
		r.order = append(r.order, s.ID)
	}
	return r, nil
}

// Resolve returns the spec for id or ErrUnknownVariable.
func (r *Registry) Resolve(id string) (VariableSpec, error) {
	s, ok := r.specs[id]
	if !ok {
		return VariableSpec{}, fmt.Errorf("%w: %q", ErrUnknownVariable, id)
	}
	return s, nil
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered variables.
func (r *Registry) Len() int { return len(r.order) }

// Descriptor is the display-facing summary of a variable.
type Descriptor struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit,omitempty"`
	Mode         string    `json:"mode"`
	Breakpoints  []float64 `json:"breakpoints,omitempty"`
	Palette      []string  `json:"palette,omitempty"`
	Domain       []float64 `json:"domain"`
	Policy       string    `json:"policy,omitempty"`
	Interpolator string    `json:"interpolator,omitempty"`
}

// Describe lists descriptors for every variable in registration order.
func (r *Registry) Describe() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		s := r.specs[id]
		d := Descriptor{ID: s.ID, Name: s.Name, Unit: s.Unit, Mode: s.Mode.Kind()}
		switch m := s.Mode.(type) {
		case Binned:
			d.Breakpoints = m.Breakpoints
			d.Palette = m.Palette
			d.Domain = []float64{m.Low, m.High}
		case Continuous:
			d.Domain = []float64{m.Min, m.Max}
			d.Policy = string(m.Policy)
			d.Interpolator = m.Interpolator.Name()
		}
		out = append(out, d)
	}
	return out
}
