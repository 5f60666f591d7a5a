package main

import (
	"io"
	"os"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/robotalks/macropad.go/pkg/battery"
	"github.com/robotalks/macropad.go/pkg/config"
	"github.com/robotalks/macropad.go/pkg/console"
	"github.com/robotalks/macropad.go/pkg/display"
	"github.com/robotalks/macropad.go/pkg/framework"
	"github.com/robotalks/macropad.go/pkg/hid"
	"github.com/robotalks/macropad.go/pkg/hw/periph"
	"github.com/robotalks/macropad.go/pkg/hw/virtual"
	"github.com/robotalks/macropad.go/pkg/input"
	"github.com/robotalks/macropad.go/pkg/pad"
)

// hardware are the collaborators opened from the daemon config.
type hardware struct {
	pad.Hardware
	Runnables []framework.Runnable

	closers []io.Closer
	periph  bool
}

func newHardware(conf *pad.Config) (*hardware, error) {
	hw := &hardware{}
	if err := hw.open(conf); err != nil {
		hw.Close()
		return nil, err
	}
	return hw, nil
}

func (hw *hardware) open(conf *pad.Config) (err error) {
	hw.Hold = conf.Hold
	if hw.Layout, err = hid.LayoutByName(conf.Layout); err != nil {
		return err
	}
	if err = hw.openChannel(conf); err != nil {
		return err
	}
	if err = hw.openKeyboard(conf); err != nil {
		return err
	}
	if err = hw.openDisplay(conf); err != nil {
		return err
	}
	hw.openBattery(conf)
	pins, err := hw.openInputs(conf)
	if err != nil {
		return err
	}
	if err = hw.openTelemetry(conf); err != nil {
		return err
	}
	if conf.Console {
		hw.Runnables = append(hw.Runnables, console.New(pins))
	}
	return nil
}

// Close releases everything opened.
func (hw *hardware) Close() error {
	var errs framework.AggregatedError
	for i := len(hw.closers) - 1; i >= 0; i-- {
		errs.Add(hw.closers[i].Close())
	}
	hw.closers = nil
	return errs.Aggregate()
}

func (hw *hardware) initPeriph() error {
	if hw.periph {
		return nil
	}
	if err := periph.Init(); err != nil {
		return err
	}
	hw.periph = true
	return nil
}

func (hw *hardware) openChannel(conf *pad.Config) error {
	if conf.Serial == "" {
		hw.Output = os.Stdout
		// the console owns stdin
		if !conf.Console {
			hw.Input = os.Stdin
		}
		return nil
	}
	port, err := serial.Open(conf.Serial, &serial.Mode{BaudRate: conf.Baud})
	if err != nil {
		return err
	}
	glog.Infof("control channel on %s at %d baud", conf.Serial, conf.Baud)
	hw.closers = append(hw.closers, port)
	hw.Input, hw.Output = port, port
	return nil
}

func (hw *hardware) openKeyboard(conf *pad.Config) error {
	if conf.Gadget == "" {
		hw.Keyboard = hid.LogKeyboard{}
		return nil
	}
	kb, err := hid.OpenGadget(conf.Gadget)
	if err != nil {
		return err
	}
	hw.closers = append(hw.closers, kb)
	hw.Keyboard = kb
	return nil
}

func (hw *hardware) openDisplay(conf *pad.Config) error {
	if conf.Display == "" {
		hw.Renderer = display.LogRenderer{}
		return nil
	}
	if err := hw.initPeriph(); err != nil {
		return err
	}
	d, err := periph.OpenDisplay(conf.Display)
	if err != nil {
		return err
	}
	hw.closers = append(hw.closers, d)
	hw.Renderer = d
	return nil
}

func (hw *hardware) openBattery(conf *pad.Config) {
	switch conf.Battery {
	case "":
	case "auto":
		src, err := battery.FindSysfs(battery.DefaultSysfsDir)
		if err != nil {
			glog.Warningf("battery: %v", err)
			return
		}
		hw.Battery = src
	default:
		hw.Battery = &battery.Sysfs{Dir: conf.Battery}
	}
}

// openInputs opens GPIO inputs, or virtual ones returned for the
// console when no button pins are configured.
func (hw *hardware) openInputs(conf *pad.Config) (*virtual.Pad, error) {
	if len(conf.Buttons) == 0 {
		pins := virtual.NewPad(config.DefaultButtons, config.KnobNames...)
		for _, sw := range pins.Buttons {
			hw.Buttons = append(hw.Buttons, sw)
		}
		for _, k := range pins.Knobs {
			hw.Knobs = append(hw.Knobs, &input.Knob{Name: k.Name, Encoder: &k.Encoder, Switch: &k.Switch})
		}
		glog.Info("using virtual inputs")
		return pins, nil
	}
	if err := hw.initPeriph(); err != nil {
		return nil, err
	}
	for _, name := range conf.Buttons {
		sw, err := periph.NewSwitch(name)
		if err != nil {
			return nil, err
		}
		hw.Buttons = append(hw.Buttons, sw)
	}
	for _, pins := range conf.Knobs {
		enc, err := periph.NewEncoder(pins.A, pins.B)
		if err != nil {
			return nil, err
		}
		knob := &input.Knob{Name: pins.Name, Encoder: enc}
		if pins.Switch != "" {
			if knob.Switch, err = periph.NewSwitch(pins.Switch); err != nil {
				return nil, err
			}
		}
		hw.Knobs = append(hw.Knobs, knob)
		hw.Runnables = append(hw.Runnables, framework.NamedRun("encoder-"+pins.Name, enc))
	}
	return nil, nil
}

func (hw *hardware) openTelemetry(conf *pad.Config) error {
	mirror, err := conf.Telemetry.NewMirror()
	if err != nil || mirror == nil {
		return err
	}
	glog.Infof("telemetry to %s as %s", conf.Telemetry.URL, mirror.DeviceID)
	hw.Observer = mirror
	hw.Renderer = display.Multi(hw.Renderer, mirror)
	hw.Runnables = append(hw.Runnables, mirror)
	return nil
}
