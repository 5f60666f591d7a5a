package hid

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/golang/glog"
)

// MaxKeys is the number of non-modifier keys a boot report carries.
const MaxKeys = 6

// ErrRollover is returned when more than MaxKeys keys are held.
var ErrRollover = errors.New("too many keys pressed")

// Keyboard is the keyboard output.
type Keyboard interface {
	// Press adds keys to the set of held keys.
	Press(codes ...Keycode) error
	// ReleaseAll releases all held keys.
	ReleaseAll() error
}

// Tap presses the keys together and releases them. The keys are
// released even if pressing failed.
func Tap(kb Keyboard, codes ...Keycode) error {
	err := kb.Press(codes...)
	if rerr := kb.ReleaseAll(); err == nil {
		err = rerr
	}
	return err
}

// Report is an 8 byte boot keyboard input report.
type Report [8]byte

// Reporter tracks held keys and encodes them as reports.
type Reporter struct {
	modifiers byte
	keys      []Keycode
}

// Press adds keys and returns the resulting report.
func (r *Reporter) Press(codes ...Keycode) (Report, error) {
	for _, code := range codes {
		if code.IsModifier() {
			r.modifiers |= 1 << (code - KeyLeftCtrl)
			continue
		}
		if r.holds(code) {
			continue
		}
		if len(r.keys) >= MaxKeys {
			return r.Report(), ErrRollover
		}
		r.keys = append(r.keys, code)
	}
	return r.Report(), nil
}

// ReleaseAll clears the held keys.
func (r *Reporter) ReleaseAll() Report {
	r.modifiers, r.keys = 0, nil
	return Report{}
}

// Report encodes the held keys.
func (r *Reporter) Report() (rpt Report) {
	rpt[0] = r.modifiers
	for i, code := range r.keys {
		rpt[2+i] = byte(code)
	}
	return
}

func (r *Reporter) holds(code Keycode) bool {
	for _, k := range r.keys {
		if k == code {
			return true
		}
	}
	return false
}

// DefaultGadgetDevice is the device node of the first HID gadget
// function on Linux.
const DefaultGadgetDevice = "/dev/hidg0"

// Gadget writes reports to a HID gadget device.
type Gadget struct {
	w        io.Writer
	lock     sync.Mutex
	reporter Reporter
}

// NewGadget creates a Gadget writing reports to w.
func NewGadget(w io.Writer) *Gadget {
	return &Gadget{w: w}
}

// OpenGadget opens a HID gadget device node.
func OpenGadget(path string) (*Gadget, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	return NewGadget(f), nil
}

// Press implements Keyboard.
func (g *Gadget) Press(codes ...Keycode) error {
	g.lock.Lock()
	defer g.lock.Unlock()
	rpt, err := g.reporter.Press(codes...)
	if werr := g.write(rpt); err == nil {
		err = werr
	}
	return err
}

// ReleaseAll implements Keyboard.
func (g *Gadget) ReleaseAll() error {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.write(g.reporter.ReleaseAll())
}

// Close closes the underlying device if it is closable.
func (g *Gadget) Close() error {
	if c, ok := g.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (g *Gadget) write(rpt Report) error {
	if _, err := g.w.Write(rpt[:]); err != nil {
		return fmt.Errorf("hid report: %w", err)
	}
	return nil
}

// LogKeyboard logs key presses instead of emitting them.
type LogKeyboard struct{}

// Press implements Keyboard.
func (LogKeyboard) Press(codes ...Keycode) error {
	glog.Infof("keyboard press %v", codes)
	return nil
}

// ReleaseAll implements Keyboard.
func (LogKeyboard) ReleaseAll() error {
	if glog.V(2) {
		glog.Info("keyboard release")
	}
	return nil
}
