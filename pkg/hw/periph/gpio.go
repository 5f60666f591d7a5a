// Package periph drives the pad hardware through periph.io: active
// low buttons, quadrature encoders and an SSD1306 display.
package periph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Init initializes the host drivers.
func Init() error {
	_, err := host.Init()
	return err
}

func openPin(name string, edge gpio.Edge) (gpio.PinIO, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	if err := pin.In(gpio.PullUp, edge); err != nil {
		return nil, fmt.Errorf("gpio %s: %w", name, err)
	}
	return pin, nil
}

// Switch is an active low push button with the internal pull-up
// enabled.
type Switch struct {
	Pin gpio.PinIn
}

// NewSwitch opens the named GPIO as a button.
func NewSwitch(name string) (*Switch, error) {
	pin, err := openPin(name, gpio.NoEdge)
	if err != nil {
		return nil, err
	}
	return &Switch{Pin: pin}, nil
}

// Pressed implements input.Switch.
func (s *Switch) Pressed() bool {
	return s.Pin.Read() == gpio.Low
}

// DefaultDivisor counts one position per detent on encoders with one
// detent per quadrature cycle.
const DefaultDivisor = 4

// quadrature transitions indexed by previous<<2|current AB state.
var quadrature = [16]int{
	0, -1, 1, 0,
	1, 0, 0, -1,
	-1, 0, 0, 1,
	0, 1, -1, 0,
}

// Encoder decodes a quadrature encoder from edge interrupts on both
// of its pins. Run must be running for Position to move.
type Encoder struct {
	A, B    gpio.PinIn
	Divisor int

	lock  sync.Mutex
	state int
	count int
}

// NewEncoder opens the two named GPIOs as an encoder.
func NewEncoder(a, b string) (*Encoder, error) {
	pinA, err := openPin(a, gpio.BothEdges)
	if err != nil {
		return nil, err
	}
	pinB, err := openPin(b, gpio.BothEdges)
	if err != nil {
		return nil, err
	}
	e := &Encoder{A: pinA, B: pinB, Divisor: DefaultDivisor}
	e.state = e.read()
	return e, nil
}

// Position implements input.Encoder.
func (e *Encoder) Position() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	div := e.Divisor
	if div <= 0 {
		div = 1
	}
	pos := e.count / div
	if e.count < 0 && e.count%div != 0 {
		pos--
	}
	return pos
}

// Run implements framework.Runnable.
func (e *Encoder) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, pin := range []gpio.PinIn{e.A, e.B} {
		wg.Add(1)
		go func(pin gpio.PinIn) {
			defer wg.Done()
			for ctx.Err() == nil {
				if pin.WaitForEdge(100 * time.Millisecond) {
					e.sample()
				}
			}
		}(pin)
	}
	wg.Wait()
	return ctx.Err()
}

func (e *Encoder) read() int {
	state := 0
	if e.A.Read() == gpio.High {
		state |= 2
	}
	if e.B.Read() == gpio.High {
		state |= 1
	}
	return state
}

func (e *Encoder) sample() {
	e.lock.Lock()
	defer e.lock.Unlock()
	state := e.read()
	step := quadrature[e.state<<2|state]
	if step == 0 && state != e.state && glog.V(3) {
		glog.Infof("encoder %s/%s: skipped state %d -> %d", e.A, e.B, e.state, state)
	}
	e.count += step
	e.state = state
}
