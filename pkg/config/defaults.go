package config

import "strconv"

// DefaultButtons is the number of buttons on the pad.
const DefaultButtons = 6

// KnobNames are the names of the two rotary encoders.
var KnobNames = []string{"A", "B"}

// Default returns the configuration used when nothing is persisted:
// one layer typing "A" to "F" on buttons 1 to 6 and idle knobs.
func Default() *Config {
	layer := Layer{
		ID:      1,
		Name:    "Layer 1",
		Buttons: make(map[string]ButtonConfig, DefaultButtons),
		Knobs:   make(map[string]KnobConfig, len(KnobNames)),
	}
	for i := 0; i < DefaultButtons; i++ {
		layer.Buttons[strconv.Itoa(i+1)] = ButtonConfig{
			Enabled: true,
			Action:  ActionKeyPress,
			Key:     TextKey(string(rune('A' + i))),
		}
	}
	for _, name := range KnobNames {
		layer.Knobs[name] = KnobConfig{
			CCWAction:   ActionNone,
			CWAction:    ActionNone,
			PressAction: ActionNone,
		}
	}
	return &Config{
		Layers:       []Layer{layer},
		Display:      Display{Mode: DisplayLayer, Enabled: true},
		CurrentLayer: 1,
		Limits: Limits{
			MaxLayers:  1,
			MaxButtons: DefaultButtons,
			MaxKnobs:   len(KnobNames),
		},
	}
}
