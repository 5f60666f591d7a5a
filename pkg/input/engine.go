package input

import (
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/macropad.go/pkg/config"
	"github.com/robotalks/macropad.go/pkg/framework"
	"github.com/robotalks/macropad.go/pkg/hid"
	"github.com/robotalks/macropad.go/pkg/state"
)

// Engine dispatches debounced button presses and knob gestures
// through the current layer. Scan never blocks.
type Engine struct {
	// Buttons holds the switch of slot i+1 at index i.
	Buttons  []Switch
	Knobs    []*Knob
	Hold     time.Duration
	Keyboard hid.Keyboard
	Layout   *hid.Layout
	State    *state.State
	Display  LayerDisplay
	Observer Observer

	buttons   []Debouncer
	knobPress []Debouncer
	positions []int
	tracking  bool
}

// Scan samples every input once, buttons in slot order then knobs,
// and executes what fired. Output failures do not stop the scan.
func (e *Engine) Scan(now time.Time) error {
	e.init()
	var errs framework.AggregatedError
	for i, sw := range e.Buttons {
		if e.buttons[i].Update(sw.Pressed(), now) {
			errs.Add(e.buttonFired(i+1))
		}
	}
	for i, knob := range e.Knobs {
		if knob.Switch != nil && e.knobPress[i].Update(knob.Switch.Pressed(), now) {
			errs.Add(e.knobFired(knob.Name, GesturePress))
		}
		if knob.Encoder == nil {
			continue
		}
		pos := knob.Encoder.Position()
		delta := pos - e.positions[i]
		e.positions[i] = pos
		if !e.tracking {
			continue
		}
		switch {
		case delta > 0:
			errs.Add(e.knobFired(knob.Name, GestureCW))
		case delta < 0:
			errs.Add(e.knobFired(knob.Name, GestureCCW))
		}
	}
	e.tracking = true
	return errs.Aggregate()
}

// Control implements framework.Controller.
func (e *Engine) Control(cc framework.ControlContext) error {
	return e.Scan(cc.Time())
}

// Execute performs a resolved key.
func (e *Engine) Execute(key config.ResolvedKey) error {
	switch key.Kind {
	case config.Empty:
		return nil
	case config.LayerSwitch:
		return e.SwitchLayer()
	case config.Single:
		return e.layout().Type(e.Keyboard, key.Text)
	case config.Combo:
		codes, unknown := hid.LookupAll(key.Names)
		if len(unknown) > 0 {
			glog.Warningf("input: unknown key names %v in %v", unknown, key)
		}
		if len(codes) == 0 {
			return nil
		}
		return hid.Tap(e.Keyboard, codes...)
	case config.RawCode:
		return hid.Tap(e.Keyboard, hid.KeyLeftShift, hid.Keycode(key.Code))
	}
	return fmt.Errorf("unsupported key %v", key)
}

// ExecuteKnob performs a knob action.
func (e *Engine) ExecuteKnob(action config.KnobAction) error {
	switch action {
	case config.KnobNone:
		return nil
	case config.KnobIncreaseVolume:
		return hid.Tap(e.Keyboard, hid.KeyVolumeUp)
	case config.KnobDecreaseVolume:
		return hid.Tap(e.Keyboard, hid.KeyVolumeDown)
	case config.KnobScrollUp:
		return hid.Tap(e.Keyboard, hid.KeyUp)
	case config.KnobScrollDown:
		return hid.Tap(e.Keyboard, hid.KeyDown)
	case config.KnobSwitchLayer:
		return e.SwitchLayer()
	case config.KnobKeyPress:
		return hid.Tap(e.Keyboard, hid.KeyEnter)
	case config.KnobKeyCombo:
		return hid.Tap(e.Keyboard, hid.KeyLeftCtrl, hid.KeyC)
	}
	glog.Warningf("input: ignored knob action %v", action)
	return nil
}

// SwitchLayer moves to the next layer and updates the display.
func (e *Engine) SwitchLayer() error {
	layer := e.State.NextLayer()
	glog.Infof("input: switched to layer %d", layer)
	if e.Observer != nil {
		e.Observer.LayerSwitched(layer)
	}
	if e.Display == nil {
		return nil
	}
	return e.Display.LayerChanged()
}

func (e *Engine) buttonFired(slot int) error {
	key := e.State.Key(slot)
	if glog.V(1) {
		glog.Infof("input: button %d -> %v", slot, key)
	}
	if e.Observer != nil && key.Kind != config.Empty {
		e.Observer.ButtonFired(slot, key)
	}
	if err := e.Execute(key); err != nil {
		return fmt.Errorf("button %d: %w", slot, err)
	}
	return nil
}

func (e *Engine) knobFired(name string, gesture Gesture) error {
	binding := e.State.Knob(name)
	action := binding.Press
	switch gesture {
	case GestureCW:
		action = binding.CW
	case GestureCCW:
		action = binding.CCW
	}
	if glog.V(1) {
		glog.Infof("input: knob %s %v -> %v", name, gesture, action)
	}
	if e.Observer != nil && action != config.KnobNone {
		e.Observer.KnobFired(name, gesture, action)
	}
	if err := e.ExecuteKnob(action); err != nil {
		return fmt.Errorf("knob %s %v: %w", name, gesture, err)
	}
	return nil
}

func (e *Engine) layout() *hid.Layout {
	if e.Layout != nil {
		return e.Layout
	}
	return hid.USLayout
}

func (e *Engine) init() {
	hold := e.Hold
	if hold <= 0 {
		hold = DefaultHold
	}
	for len(e.buttons) < len(e.Buttons) {
		e.buttons = append(e.buttons, Debouncer{Hold: hold})
	}
	for len(e.knobPress) < len(e.Knobs) {
		e.knobPress = append(e.knobPress, Debouncer{Hold: hold})
		e.positions = append(e.positions, 0)
	}
}
