package config

// KnobAction is the fixed vocabulary of knob gestures.
type KnobAction int

// Knob actions.
const (
	KnobNone KnobAction = iota
	KnobIncreaseVolume
	KnobDecreaseVolume
	KnobScrollUp
	KnobScrollDown
	KnobSwitchLayer
	KnobKeyPress
	KnobKeyCombo
	KnobUnknown
)

var knobActionNames = map[string]KnobAction{
	"":                KnobNone,
	ActionNone:        KnobNone,
	"Increase Volume": KnobIncreaseVolume,
	"Decrease Volume": KnobDecreaseVolume,
	"Scroll Up":       KnobScrollUp,
	"Scroll Down":     KnobScrollDown,
	"Switch Layer":    KnobSwitchLayer,
	ActionLayerSwitch: KnobSwitchLayer,
	ActionKeyPress:    KnobKeyPress,
	ActionKeyCombo:    KnobKeyCombo,
}

// ParseKnobAction maps a persisted action string to a KnobAction.
// Strings outside the vocabulary give KnobUnknown.
func ParseKnobAction(s string) KnobAction {
	if a, ok := knobActionNames[s]; ok {
		return a
	}
	return KnobUnknown
}

func (a KnobAction) String() string {
	switch a {
	case KnobNone:
		return ActionNone
	case KnobIncreaseVolume:
		return "Increase Volume"
	case KnobDecreaseVolume:
		return "Decrease Volume"
	case KnobScrollUp:
		return "Scroll Up"
	case KnobScrollDown:
		return "Scroll Down"
	case KnobSwitchLayer:
		return "Switch Layer"
	case KnobKeyPress:
		return ActionKeyPress
	case KnobKeyCombo:
		return ActionKeyCombo
	}
	return "Unknown"
}
