// Package engine defines the adapter contract that projects a validated
// parameter set into one engine's native directive vocabulary, plus the
// registry the application resolves adapters from.
package engine

import (
	"fmt"
	"sort"

	"github.com/molsim/deckgen/internal/deck"
	"github.com/molsim/deckgen/internal/paramset"
	"github.com/molsim/deckgen/internal/validate"
)

// UnsupportedFeatureError reports a validated parameter set requesting a
// capability the target engine kind does not have. Adapters never
// re-validate; this is the only error they raise.
type UnsupportedFeatureError struct {
	Engine  paramset.EngineKind
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("engine %q does not support %s", e.Engine, e.Feature)
}

// Adapter maps the universal parameter set onto one engine's deck.
type Adapter interface {
	// Kind identifies the engine this adapter targets.
	Kind() paramset.EngineKind
	// DeckName is the conventional file name of the rendered deck.
	DeckName() string
	// Vocabulary lists every placeholder token the adapter can emit. It
	// is the renderer's closed vocabulary for this engine.
	Vocabulary() []string
	// Template returns the default deck template.
	Template() string
	// Render projects the validated set into an ordered directive
	// sequence in the engine's vocabulary.
	Render(v *validate.Validated) ([]deck.Directive, error)
	// Parse is the inverse mapping: it reads a rendered deck back into
	// the universal representation.
	Parse(text string) (*paramset.ParameterSet, error)
}

// Registry resolves adapters by engine kind.
type Registry struct {
	adapters map[paramset.EngineKind]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[paramset.EngineKind]Adapter)}
}

// Register adds an adapter. Registering the same kind twice is a
// programmer error and panics.
func (r *Registry) Register(a Adapter) {
	if _, exists := r.adapters[a.Kind()]; exists {
		panic(fmt.Sprintf("adapter for engine %q already registered", a.Kind()))
	}
	r.adapters[a.Kind()] = a
}

// Lookup returns the adapter for the given engine kind.
func (r *Registry) Lookup(kind paramset.EngineKind) (Adapter, error) {
	a, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for engine %q", kind)
	}
	return a, nil
}

// Kinds lists the registered engine kinds in stable order.
func (r *Registry) Kinds() []paramset.EngineKind {
	kinds := make([]paramset.EngineKind, 0, len(r.adapters))
	for k := range r.adapters {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
