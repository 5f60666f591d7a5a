// Package virtual provides inputs driven by software, used when the
// pad runs without GPIO hardware.
package virtual

import (
	"sync/atomic"
	"time"
)

// Switch is a button pressed by calling Set.
type Switch struct {
	pressed atomic.Bool
}

// Pressed implements input.Switch.
func (s *Switch) Pressed() bool {
	return s.pressed.Load()
}

// Set sets the level.
func (s *Switch) Set(pressed bool) {
	s.pressed.Store(pressed)
}

// Click holds the switch down for hold and releases it, then waits
// hold again so the release is seen before the next press.
func (s *Switch) Click(hold time.Duration) {
	s.Set(true)
	time.Sleep(hold)
	s.Set(false)
	time.Sleep(hold)
}

// Encoder is a rotary encoder turned by calling Turn.
type Encoder struct {
	pos atomic.Int64
}

// Position implements input.Encoder.
func (e *Encoder) Position() int {
	return int(e.pos.Load())
}

// Turn moves the encoder by steps detents, clockwise if positive.
func (e *Encoder) Turn(steps int) {
	e.pos.Add(int64(steps))
}

// Knob is an encoder with a push switch.
type Knob struct {
	Name    string
	Encoder Encoder
	Switch  Switch
}

// Pad is a full set of virtual inputs.
type Pad struct {
	Buttons []*Switch
	Knobs   []*Knob
}

// NewPad creates a pad with the given number of buttons and knobs
// named by knobs.
func NewPad(buttons int, knobs ...string) *Pad {
	p := &Pad{}
	for i := 0; i < buttons; i++ {
		p.Buttons = append(p.Buttons, &Switch{})
	}
	for _, name := range knobs {
		p.Knobs = append(p.Knobs, &Knob{Name: name})
	}
	return p
}

// Button returns the switch of the 1-based slot.
func (p *Pad) Button(slot int) (*Switch, bool) {
	if slot < 1 || slot > len(p.Buttons) {
		return nil, false
	}
	return p.Buttons[slot-1], true
}

// Knob finds a knob by name.
func (p *Pad) Knob(name string) (*Knob, bool) {
	for _, k := range p.Knobs {
		if k.Name == name {
			return k, true
		}
	}
	return nil, false
}
