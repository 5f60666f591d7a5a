// Package state holds the runtime state derived from the active
// configuration.
package state

import (
	"github.com/robotalks/macropad.go/pkg/config"
)

// State is the active configuration together with the current layer
// and the bindings resolved for it. It is owned by the poll loop.
type State struct {
	cfg   *config.Config
	layer int
	keys  []config.ResolvedKey
	knobs map[string]config.KnobBinding
}

// New creates a State from a validated configuration.
func New(cfg *config.Config) *State {
	s := &State{}
	s.Apply(cfg)
	return s
}

// Apply replaces the configuration and moves to its current layer.
// The bindings are resolved before anything is replaced.
func (s *State) Apply(cfg *config.Config) {
	layer := cfg.CurrentLayer
	if layer < 1 || layer > cfg.Limits.MaxLayers {
		layer = 1
	}
	keys, knobs := config.ResolveLayer(cfg, layer), config.ResolveKnobs(cfg, layer)
	s.cfg, s.layer, s.keys, s.knobs = cfg, layer, keys, knobs
}

// Config returns the active configuration.
func (s *State) Config() *config.Config {
	return s.cfg
}

// Layer returns the 1-based current layer.
func (s *State) Layer() int {
	return s.layer
}

// MaxLayers returns the number of layers.
func (s *State) MaxLayers() int {
	return s.cfg.Limits.MaxLayers
}

// Keys returns the resolved keys of the current layer, index i for
// slot i+1. The slice must not be modified.
func (s *State) Keys() []config.ResolvedKey {
	return s.keys
}

// Key returns the resolved key of a 1-based slot.
func (s *State) Key(slot int) config.ResolvedKey {
	if slot < 1 || slot > len(s.keys) {
		return config.ResolvedKey{}
	}
	return s.keys[slot-1]
}

// Knob returns the binding of a knob in the current layer. Unbound
// knobs do nothing.
func (s *State) Knob(name string) config.KnobBinding {
	return s.knobs[name]
}

// NextLayer advances to the next layer, wrapping to 1 after the last.
func (s *State) NextLayer() int {
	next := s.layer + 1
	if next > s.MaxLayers() {
		next = 1
	}
	s.SetLayer(next)
	return next
}

// SetLayer switches to the 1-based layer n.
func (s *State) SetLayer(n int) bool {
	if n < 1 || n > s.MaxLayers() {
		return false
	}
	keys, knobs := config.ResolveLayer(s.cfg, n), config.ResolveKnobs(s.cfg, n)
	s.layer, s.keys, s.knobs = n, keys, knobs
	return true
}
