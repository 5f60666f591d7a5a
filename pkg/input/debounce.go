package input

import "time"

// DefaultHold is how long a level must stay before it is accepted.
const DefaultHold = 15 * time.Millisecond

// Debouncer filters the raw level of a switch. A press is reported
// once, when the debounced level returns to released.
type Debouncer struct {
	Hold time.Duration

	stable  bool
	pending bool
	since   time.Time
	armed   bool
}

// Update feeds the raw level sampled at now. It returns true when a
// debounced press has just been released.
func (d *Debouncer) Update(pressed bool, now time.Time) bool {
	if pressed != d.pending {
		d.pending, d.since = pressed, now
	}
	if d.pending == d.stable || now.Sub(d.since) < d.Hold {
		return false
	}
	d.stable = d.pending
	if d.stable {
		d.armed = true
		return false
	}
	fired := d.armed
	d.armed = false
	return fired
}

// Pressed returns the debounced level.
func (d *Debouncer) Pressed() bool {
	return d.stable
}
