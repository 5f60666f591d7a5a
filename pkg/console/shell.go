// Package console provides an interactive shell to drive a running pad:
// press virtual buttons, turn knobs, inject control lines and inspect
// the state.
package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/macropad.go/pkg/framework"
	"github.com/robotalks/macropad.go/pkg/hw/virtual"
	"github.com/robotalks/macropad.go/pkg/input"
	"github.com/robotalks/macropad.go/pkg/pad"
	"github.com/robotalks/macropad.go/pkg/protocol"
)

const (
	shellKey = "$shell"
	prompt   = "macropad > "

	// DefaultHold is how long a virtual button is held.
	DefaultHold = 30 * time.Millisecond
	// QueryTimeout limits waiting for the loop.
	QueryTimeout = time.Second
)

var (
	// ErrNoVirtualInputs is returned when inputs are real hardware.
	ErrNoVirtualInputs = errors.New("no virtual inputs")
	// ErrNotRunning is returned before the shell is attached to a loop.
	ErrNotRunning = errors.New("not attached to a loop")
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Shell *ishell.Shell
	// Pins is nil when the pad uses hardware inputs.
	Pins *virtual.Pad
	Hold time.Duration
	Loop framework.LoopControl
}

var commands = []*ishell.Cmd{
	&PressCmd,
	&KnobCmd,
	&SendCmd,
	&StateCmd,
}

// New creates a new shell.
func New(pins *virtual.Pad) *Shell {
	s := &Shell{
		Shell: ishell.New(),
		Pins:  pins,
		Hold:  DefaultHold,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Name implements framework.Named.
func (s *Shell) Name() string {
	return "console"
}

// Run implements framework.Runnable. It returns when the user exits
// the shell or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.Loop = framework.LoopCtlFrom(ctx)
	done := make(chan struct{})
	go func() {
		s.Shell.Run()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.Shell.Close()
		return ctx.Err()
	}
}

// Press clicks the button of a 1-based slot.
func (s *Shell) Press(slot int) error {
	if s.Pins == nil {
		return ErrNoVirtualInputs
	}
	sw, ok := s.Pins.Button(slot)
	if !ok {
		return fmt.Errorf("no button %d", slot)
	}
	sw.Click(s.Hold)
	return nil
}

// Knob performs a gesture on the named knob, steps times.
func (s *Shell) Knob(name string, gesture input.Gesture, steps int) error {
	if s.Pins == nil {
		return ErrNoVirtualInputs
	}
	knob, ok := s.Pins.Knob(name)
	if !ok {
		return fmt.Errorf("no knob %s", name)
	}
	for i := 0; i < steps; i++ {
		switch gesture {
		case input.GestureCW:
			knob.Encoder.Turn(1)
		case input.GestureCCW:
			knob.Encoder.Turn(-1)
		default:
			knob.Switch.Click(s.Hold)
			continue
		}
		// one detent per scan
		time.Sleep(s.Hold)
	}
	return nil
}

// Send injects a line as if received from the control channel.
func (s *Shell) Send(line string) error {
	if s.Loop == nil {
		return ErrNotRunning
	}
	s.Loop.PostMessage(&protocol.LineMsg{Line: line})
	s.Loop.TriggerNext()
	return nil
}

// State queries the pad state and formats it.
func (s *Shell) State(ctx context.Context) (string, error) {
	if s.Loop == nil {
		return "", ErrNotRunning
	}
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()
	snap, err := pad.QuerySnapshot(ctx, s.Loop)
	if err != nil {
		return "", err
	}
	return FormatSnapshot(snap), nil
}

// FormatSnapshot prints a Snapshot for humans.
func FormatSnapshot(snap pad.Snapshot) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "layer %d/%d, protocol %s", snap.Layer, snap.MaxLayers, snap.Protocol)
	if snap.Degraded {
		w.WriteString(", storage not available")
	}
	onOff := "off"
	if snap.DisplayEnabled {
		onOff = "on"
	}
	fmt.Fprintf(&w, "\ndisplay %s %s: %q", snap.DisplayMode, onOff, snap.DisplayText)
	for i, key := range snap.Keys {
		fmt.Fprintf(&w, "\n  %d: %s", i+1, key)
	}
	names := make([]string, 0, len(snap.Knobs))
	for name := range snap.Knobs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b := snap.Knobs[name]
		fmt.Fprintf(&w, "\n  %s: ccw=%s cw=%s press=%s", name, b.CCW, b.CW, b.Press)
	}
	return w.String()
}

// ParseGesture parses cw, ccw or press.
func ParseGesture(s string) (input.Gesture, error) {
	switch strings.ToLower(s) {
	case "cw", "+":
		return input.GestureCW, nil
	case "ccw", "-":
		return input.GestureCCW, nil
	case "press", "p":
		return input.GesturePress, nil
	}
	return 0, fmt.Errorf("unknown gesture %q", s)
}

var (
	// PressCmd clicks a button.
	PressCmd = ishell.Cmd{
		Name:    "press",
		Aliases: []string{"p"},
		Help:    "SLOT...",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(errors.New("slot expected"))
				return
			}
			s := ShellFrom(c)
			for _, arg := range c.Args {
				slot, err := strconv.Atoi(arg)
				if err == nil {
					err = s.Press(slot)
				}
				if err != nil {
					c.Err(err)
					return
				}
			}
		},
	}

	// KnobCmd turns or presses a knob.
	KnobCmd = ishell.Cmd{
		Name:    "knob",
		Aliases: []string{"k"},
		Help:    "NAME cw|ccw|press [COUNT]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(errors.New("knob name and gesture expected"))
				return
			}
			gesture, err := ParseGesture(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			count := 1
			if len(c.Args) > 2 {
				if count, err = strconv.Atoi(c.Args[2]); err != nil {
					c.Err(err)
					return
				}
			}
			if err := ShellFrom(c).Knob(strings.ToUpper(c.Args[0]), gesture, count); err != nil {
				c.Err(err)
			}
		},
	}

	// SendCmd injects a control line.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "LINE",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Send(strings.Join(c.Args, " ")); err != nil {
				c.Err(err)
			}
		},
	}

	// StateCmd prints the pad state.
	StateCmd = ishell.Cmd{
		Name:    "state",
		Aliases: []string{"st"},
		Help:    "",
		Func: func(c *ishell.Context) {
			out, err := ShellFrom(c).State(context.Background())
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(out)
		},
	}
)
