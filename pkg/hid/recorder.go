package hid

import "sync"

// Recorder is a Keyboard remembering every call, useful in tests and
// simulations.
type Recorder struct {
	// Err is returned from Press when set.
	Err error

	lock    sync.Mutex
	presses [][]Keycode
	held    []Keycode
	taps    [][]Keycode
}

// Press implements Keyboard.
func (r *Recorder) Press(codes ...Keycode) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.presses = append(r.presses, append([]Keycode(nil), codes...))
	r.held = append(r.held, codes...)
	return nil
}

// ReleaseAll implements Keyboard.
func (r *Recorder) ReleaseAll() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if len(r.held) > 0 {
		r.taps = append(r.taps, r.held)
		r.held = nil
	}
	return nil
}

// Taps returns the key sets released so far, one per release.
func (r *Recorder) Taps() [][]Keycode {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([][]Keycode(nil), r.taps...)
}

// Presses returns the arguments of every successful Press.
func (r *Recorder) Presses() [][]Keycode {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([][]Keycode(nil), r.presses...)
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.presses, r.held, r.taps = nil, nil, nil
}
