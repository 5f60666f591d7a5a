package config

import (
	"strconv"
	"strings"
)

// ResolvedKind tells which variant a ResolvedKey holds.
type ResolvedKind int

// Resolved key variants.
const (
	Empty ResolvedKind = iota
	Single
	Combo
	RawCode
	LayerSwitch
)

func (k ResolvedKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Single:
		return "single"
	case Combo:
		return "combo"
	case RawCode:
		return "raw"
	case LayerSwitch:
		return "layer-switch"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ResolvedKey is the output action of a button slot in a layer.
type ResolvedKey struct {
	Kind  ResolvedKind
	Text  string   // Single
	Names []string // Combo
	Code  int      // RawCode
}

func (r ResolvedKey) String() string {
	switch r.Kind {
	case Single:
		return "single(" + strconv.Quote(r.Text) + ")"
	case Combo:
		return "combo(" + strings.Join(r.Names, "+") + ")"
	case RawCode:
		return "raw(" + strconv.Itoa(r.Code) + ")"
	}
	return r.Kind.String()
}

// ResolveLayer resolves every button slot of the 1-based layer n.
// The result always has Limits.MaxButtons entries, index i holding
// slot i+1. An unknown layer resolves to all Empty.
func ResolveLayer(cfg *Config, n int) []ResolvedKey {
	keys := make([]ResolvedKey, cfg.Limits.MaxButtons)
	layer, ok := cfg.Layer(n)
	if !ok {
		return keys
	}
	for i := range keys {
		if btn, ok := layer.Buttons[strconv.Itoa(i+1)]; ok {
			keys[i] = ResolveButton(btn)
		}
	}
	return keys
}

// ResolveButton resolves a single button binding.
func ResolveButton(btn ButtonConfig) ResolvedKey {
	if !btn.Enabled || btn.Action == ActionNone {
		return ResolvedKey{}
	}
	if btn.Action == ActionLayerSwitch {
		return ResolvedKey{Kind: LayerSwitch}
	}
	key := btn.Key
	switch key.Kind() {
	case KeyText:
		if key.Text() == "" {
			return ResolvedKey{}
		}
		// the desktop application writes combos as "Ctrl+C"
		if btn.Action == ActionKeyCombo && len(key.Text()) > 1 && strings.Contains(key.Text(), "+") {
			if names := splitCombo(key.Text()); len(names) > 0 {
				return ResolvedKey{Kind: Combo, Names: names}
			}
		}
		return ResolvedKey{Kind: Single, Text: key.Text()}
	case KeyChord:
		return ResolvedKey{Kind: Combo, Names: append([]string(nil), key.Chord()...)}
	case KeyCode:
		return ResolvedKey{Kind: RawCode, Code: key.Code()}
	}
	return ResolvedKey{}
}

func splitCombo(s string) []string {
	var names []string
	for _, name := range strings.Split(s, "+") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// KnobBinding is the resolved action set of one knob.
type KnobBinding struct {
	CCW   KnobAction
	CW    KnobAction
	Press KnobAction
}

// ResolveKnobs resolves the knobs of the 1-based layer n keyed by knob
// name ("A", "B").
func ResolveKnobs(cfg *Config, n int) map[string]KnobBinding {
	bindings := make(map[string]KnobBinding)
	layer, ok := cfg.Layer(n)
	if !ok {
		return bindings
	}
	for name, knob := range layer.Knobs {
		bindings[name] = KnobBinding{
			CCW:   ParseKnobAction(knob.CCWAction),
			CW:    ParseKnobAction(knob.CWAction),
			Press: ParseKnobAction(knob.PressAction),
		}
	}
	return bindings
}
