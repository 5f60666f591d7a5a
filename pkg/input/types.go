// Package input scans buttons and knobs and dispatches the actions
// bound to them in the current layer.
package input

import (
	"github.com/robotalks/macropad.go/pkg/config"
)

// Switch is a push button input.
type Switch interface {
	// Pressed returns the raw level, true while pressed.
	Pressed() bool
}

// SwitchFunc is the func form of Switch.
type SwitchFunc func() bool

// Pressed implements Switch.
func (f SwitchFunc) Pressed() bool {
	return f()
}

// Encoder is a rotary encoder counting detents, clockwise positive.
type Encoder interface {
	Position() int
}

// Knob is a rotary encoder with a push switch.
type Knob struct {
	Name    string
	Encoder Encoder
	// Switch is nil if the knob cannot be pressed.
	Switch Switch
}

// Gesture is what was done with a knob.
type Gesture int

// Gestures.
const (
	GestureCW Gesture = iota
	GestureCCW
	GesturePress
)

func (g Gesture) String() string {
	switch g {
	case GestureCW:
		return "cw"
	case GestureCCW:
		return "ccw"
	}
	return "press"
}

// Observer is told about dispatched actions.
type Observer interface {
	ButtonFired(slot int, key config.ResolvedKey)
	KnobFired(knob string, gesture Gesture, action config.KnobAction)
	LayerSwitched(layer int)
}

// LayerDisplay is notified when the layer changes.
type LayerDisplay interface {
	LayerChanged() error
}
