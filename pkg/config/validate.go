package config

import (
	"sort"
	"strconv"
	"strings"
)

const legacyLayerPrefix = "layer"

// MaxSlots is the highest button slot a configuration may bind.
const MaxSlots = 255

// Validate normalizes cfg into the canonical shape and checks it.
// The legacy mapping is converted into Layers, limits are recomputed
// from the layers, and an out-of-range CurrentLayer is reset to 1.
// cfg itself is left untouched; the normalized copy is returned.
func Validate(cfg *Config) (*Config, error) {
	out := cfg.Clone()
	if out.Legacy != nil {
		layers, err := convertLegacy(out.Legacy)
		if err != nil {
			return nil, err
		}
		out.Layers, out.Legacy = layers, nil
	}
	if len(out.Layers) == 0 {
		return nil, invalid("layers", "at least one layer is required")
	}

	out.Limits = Limits{MaxLayers: len(out.Layers)}
	for i := range out.Layers {
		layer := &out.Layers[i]
		if layer.Buttons == nil {
			layer.Buttons = make(map[string]ButtonConfig)
		}
		for slot, btn := range layer.Buttons {
			field := "layers[" + strconv.Itoa(i) + "].buttons." + slot
			n, err := ParseSlot(slot)
			if err != nil {
				return nil, invalid(field, "%v", err)
			}
			if err := validateKey(btn.Key); err != nil {
				return nil, invalid(field+".key", "%v", err)
			}
			if n > out.Limits.MaxButtons {
				out.Limits.MaxButtons = n
			}
		}
		if n := len(layer.Knobs); n > out.Limits.MaxKnobs {
			out.Limits.MaxKnobs = n
		}
	}

	if out.CurrentLayer < 1 || out.CurrentLayer > out.Limits.MaxLayers {
		out.CurrentLayer = 1
	}
	if out.Display.Mode == "" {
		out.Display.Mode = DisplayLayer
	}
	return out, nil
}

// ParseSlot parses a 1-based button slot key in its canonical
// decimal form, up to MaxSlots.
func ParseSlot(slot string) (int, error) {
	n, err := strconv.Atoi(slot)
	if err != nil || n < 1 || strconv.Itoa(n) != slot {
		return 0, &ValidationError{Reason: "button slot " + strconv.Quote(slot) + " is not a positive integer"}
	}
	if n > MaxSlots {
		return 0, &ValidationError{Reason: "button slot " + slot + " out of range 1.." + strconv.Itoa(MaxSlots)}
	}
	return n, nil
}

func validateKey(k Key) error {
	switch k.Kind() {
	case KeyCode:
		if k.Code() < 0 || k.Code() > 0xff {
			return &ValidationError{Reason: "keycode " + strconv.Itoa(k.Code()) + " out of range 0..255"}
		}
	case KeyChord:
		if len(k.Chord()) == 0 {
			return &ValidationError{Reason: "empty key chord"}
		}
	}
	return nil
}

// convertLegacy orders legacy layers by the numeric suffix of their
// "layerN" names. Names without a numeric suffix go last, by name.
// Key i of a layer becomes button slot i+1; empty keys keep their slot
// and resolve to nothing.
func convertLegacy(legacy map[string]LegacyLayer) ([]Layer, error) {
	type entry struct {
		name  string
		index int
	}
	entries := make([]entry, 0, len(legacy))
	for name := range legacy {
		index := -1
		if strings.HasPrefix(name, legacyLayerPrefix) {
			if n, err := strconv.Atoi(name[len(legacyLayerPrefix):]); err == nil && n >= 0 {
				index = n
			}
		}
		entries = append(entries, entry{name: name, index: index})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if (a.index < 0) != (b.index < 0) {
			return a.index >= 0
		}
		if a.index != b.index {
			return a.index < b.index
		}
		return a.name < b.name
	})

	layers := make([]Layer, 0, len(entries))
	for i, e := range entries {
		layer := Layer{
			ID:      i + 1,
			Name:    e.name,
			Buttons: make(map[string]ButtonConfig),
		}
		for slot, key := range legacy[e.name].Keys {
			if err := validateKey(key); err != nil {
				return nil, invalid("layers."+e.name+".keys["+strconv.Itoa(slot)+"]", "%v", err)
			}
			layer.Buttons[strconv.Itoa(slot+1)] = ButtonConfig{
				Enabled: true,
				Action:  ActionKeyPress,
				Key:     key,
			}
		}
		layers = append(layers, layer)
	}
	return layers, nil
}
