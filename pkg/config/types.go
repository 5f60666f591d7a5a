// Package config is the in-memory model of the persisted macro pad
// configuration. It parses, validates and resolves configurations but
// performs no I/O.
package config

import (
	"encoding/json"
)

// Reserved button actions.
const (
	ActionNone        = "None"
	ActionLayerSwitch = "Layer Switch"
	ActionKeyPress    = "Key Press"
	ActionKeyCombo    = "Key combo"
)

// Display modes understood by the display controller.
const (
	DisplayOff     = "off"
	DisplayLayer   = "layer"
	DisplayBattery = "battery"
	DisplayTime    = "time"
)

// Config is the root of the persisted configuration.
type Config struct {
	// Metadata written by the desktop application, kept verbatim.
	Version      string `json:"version,omitempty"`
	Created      string `json:"created,omitempty"`
	Device       string `json:"device,omitempty"`
	LastModified string `json:"lastModified,omitempty"`

	Layers       []Layer `json:"layers"`
	Display      Display `json:"display"`
	CurrentLayer int     `json:"currentLayer"`
	Limits       Limits  `json:"limits"`

	// Legacy holds the read-only mapping shape until Validate
	// converts it into Layers.
	Legacy map[string]LegacyLayer `json:"-"`
}

// Display holds the persisted display settings.
type Display struct {
	Mode    string `json:"mode"`
	Enabled bool   `json:"enabled"`
}

// UnmarshalJSON defaults missing fields to an enabled layer display.
func (d *Display) UnmarshalJSON(data []byte) error {
	type plain Display
	v := plain{Mode: DisplayLayer, Enabled: true}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = Display(v)
	return nil
}

// Limits are derived from the layers by Validate.
type Limits struct {
	MaxLayers  int `json:"maxLayers"`
	MaxButtons int `json:"maxButtons"`
	MaxKnobs   int `json:"maxKnobs,omitempty"`
}

// Layer is a named set of button and knob bindings.
type Layer struct {
	ID      int                     `json:"id,omitempty"`
	Name    string                  `json:"name,omitempty"`
	Buttons map[string]ButtonConfig `json:"buttons"`
	Knobs   map[string]KnobConfig   `json:"knobs,omitempty"`
}

// ButtonConfig binds a button slot.
type ButtonConfig struct {
	Enabled bool   `json:"enabled"`
	Action  string `json:"action"`
	Key     Key    `json:"key"`
}

// UnmarshalJSON defaults Enabled to true.
func (b *ButtonConfig) UnmarshalJSON(data []byte) error {
	type plain ButtonConfig
	v := plain{Enabled: true}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = ButtonConfig(v)
	return nil
}

// KnobConfig binds the three gestures of a rotary encoder.
type KnobConfig struct {
	CCWAction   string `json:"ccwAction"`
	CWAction    string `json:"cwAction"`
	PressAction string `json:"pressAction"`

	// Optional key hints written by the desktop application.
	CCWKey   string `json:"ccwKey,omitempty"`
	CWKey    string `json:"cwKey,omitempty"`
	PressKey string `json:"pressKey,omitempty"`
}

// UnmarshalJSON defaults missing actions to None.
func (k *KnobConfig) UnmarshalJSON(data []byte) error {
	type plain KnobConfig
	v := plain{CCWAction: ActionNone, CWAction: ActionNone, PressAction: ActionNone}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*k = KnobConfig(v)
	return nil
}

// LegacyLayer is the old per-layer shape: an ordered list of keys.
type LegacyLayer struct {
	Keys []Key `json:"keys"`
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := *c
	out.Layers = make([]Layer, len(c.Layers))
	for i, l := range c.Layers {
		out.Layers[i] = l.clone()
	}
	if c.Legacy != nil {
		out.Legacy = make(map[string]LegacyLayer, len(c.Legacy))
		for name, l := range c.Legacy {
			keys := make([]Key, len(l.Keys))
			for i, k := range l.Keys {
				keys[i] = k.clone()
			}
			out.Legacy[name] = LegacyLayer{Keys: keys}
		}
	}
	return &out
}

func (l Layer) clone() Layer {
	out := l
	out.Buttons = make(map[string]ButtonConfig, len(l.Buttons))
	for slot, b := range l.Buttons {
		b.Key = b.Key.clone()
		out.Buttons[slot] = b
	}
	if l.Knobs != nil {
		out.Knobs = make(map[string]KnobConfig, len(l.Knobs))
		for name, k := range l.Knobs {
			out.Knobs[name] = k
		}
	}
	return out
}

// Layer returns the 1-based layer n.
func (c *Config) Layer(n int) (*Layer, bool) {
	if n < 1 || n > len(c.Layers) {
		return nil, false
	}
	return &c.Layers[n-1], true
}
