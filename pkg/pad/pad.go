// Package pad wires the configuration, the engines and the hardware of
// a macro pad into a poll loop.
package pad

import (
	"errors"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/macropad.go/pkg/battery"
	"github.com/robotalks/macropad.go/pkg/config"
	"github.com/robotalks/macropad.go/pkg/display"
	"github.com/robotalks/macropad.go/pkg/framework"
	"github.com/robotalks/macropad.go/pkg/hid"
	"github.com/robotalks/macropad.go/pkg/input"
	"github.com/robotalks/macropad.go/pkg/protocol"
	"github.com/robotalks/macropad.go/pkg/state"
	"github.com/robotalks/macropad.go/pkg/store"
)

// DefaultDoneTTL is how long upload results stay on the display.
const DefaultDoneTTL = time.Second

// Messages shown on the display.
const (
	MsgReceiving  = "Receiving..."
	MsgDone       = "Done!"
	MsgSaveFailed = "Save failed!"
)

// Hardware are the collaborators of a pad.
type Hardware struct {
	// Buttons holds the switch of slot i+1 at index i.
	Buttons  []input.Switch
	Knobs    []*input.Knob
	Hold     time.Duration
	Keyboard hid.Keyboard
	Layout   *hid.Layout
	Renderer display.Renderer
	// Battery is nil if the pad has no battery.
	Battery battery.Source
	// Input carries control lines, nil without a control channel.
	Input io.Reader
	// Output receives the control responses.
	Output   io.Writer
	Observer input.Observer
}

// Pad owns the state of a macro pad and implements protocol.Device.
// Except for Snapshot requests, everything runs on the poll loop.
type Pad struct {
	Store    *store.Store
	State    *state.State
	Display  *display.Controller
	Input    *input.Engine
	Protocol *protocol.Engine
	Battery  battery.Source
	DoneTTL  time.Duration

	reader  *protocol.Reader
	watcher *store.Watcher
}

// New creates a Pad from the persisted configuration, falling back to
// the default configuration if nothing valid is persisted.
func New(st *store.Store, hw Hardware) *Pad {
	cfg, err := st.Load()
	if err != nil {
		glog.Warningf("load config: %v, using default config", err)
		cfg = config.Default()
	}
	renderer := hw.Renderer
	if renderer == nil {
		renderer = display.LogRenderer{}
	}
	p := &Pad{
		Store:   st,
		State:   state.New(cfg),
		Battery: hw.Battery,
		DoneTTL: DefaultDoneTTL,
		watcher: store.NewWatcher(st),
	}
	p.Display = display.NewController(renderer, p.State)
	p.Display.Battery = hw.Battery
	p.Input = &input.Engine{
		Buttons:  hw.Buttons,
		Knobs:    hw.Knobs,
		Hold:     hw.Hold,
		Keyboard: hw.Keyboard,
		Layout:   hw.Layout,
		State:    p.State,
		Display:  p.Display,
		Observer: hw.Observer,
	}
	output := hw.Output
	if output == nil {
		output = io.Discard
	}
	p.Protocol = protocol.NewEngine(p, output)
	if hw.Input != nil {
		p.reader = protocol.NewReader(hw.Input)
	}
	if err := p.Display.Apply(cfg.Display); err != nil {
		glog.Warningf("display: %v", err)
	}
	glog.Infof("pad: %d layer(s), %d button(s), layer %d",
		cfg.Limits.MaxLayers, cfg.Limits.MaxButtons, p.State.Layer())
	return p
}

// AddToLoop implements framework.LoopAdder.
func (p *Pad) AddToLoop(loop *framework.Loop) {
	loop.AddController(framework.StageService, p.Protocol, framework.ControlFunc(p.serve))
	loop.AddController(framework.StageScan, p.Input)
	loop.AddController(framework.StageRender, p.Display)
	if p.reader != nil {
		loop.AddRunnable(p.reader)
	}
	if p.watcher != nil {
		loop.AddRunnable(p.watcher)
	}
}

// Apply makes cfg the active configuration, including its display
// settings and current layer.
func (p *Pad) Apply(cfg *config.Config) error {
	p.State.Apply(cfg)
	return p.Display.Apply(cfg.Display)
}

// ConfigBytes implements protocol.Device.
func (p *Pad) ConfigBytes() ([]byte, error) {
	return p.Store.Raw()
}

// BatteryStatus implements protocol.Device.
func (p *Pad) BatteryStatus() (battery.Status, error) {
	if p.Battery == nil {
		return battery.Status{}, battery.ErrUnavailable
	}
	return p.Battery.Status()
}

// SetDisplayMode implements protocol.Device. The mode is not persisted.
func (p *Pad) SetDisplayMode(mode string, enabled bool) error {
	return p.Display.SetMode(mode, enabled)
}

// SetTime implements protocol.Device.
func (p *Pad) SetTime(hhmm string) error {
	return p.Display.SetTime(hhmm)
}

// UploadStarted implements protocol.Device.
func (p *Pad) UploadStarted() {
	p.show(MsgReceiving, 0)
}

// UploadFinished implements protocol.Device. The payload is kept as
// the raw debug copy, validated, saved with a backup and applied. The
// active configuration is untouched on any failure.
func (p *Pad) UploadFinished(payload []byte) error {
	if err := p.upload(payload); err != nil {
		p.show(MsgSaveFailed, p.DoneTTL)
		return err
	}
	p.show(MsgDone, p.DoneTTL)
	return nil
}

func (p *Pad) upload(payload []byte) error {
	if err := p.Store.SaveRaw(payload); err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return err
		}
		glog.Warningf("upload: %v", err)
	}
	cfg, err := config.Load(payload)
	if err != nil {
		return err
	}
	if err := p.Store.Save(cfg); err != nil {
		return err
	}
	if err := p.Apply(cfg); err != nil {
		glog.Warningf("display: %v", err)
	}
	glog.Infof("upload: applied %d layer(s), layer %d", cfg.Limits.MaxLayers, p.State.Layer())
	return nil
}

// Reload applies the persisted configuration if it changed on disk.
func (p *Pad) Reload() error {
	cfg, err := p.Store.Reload()
	if err != nil || cfg == nil {
		return err
	}
	glog.Infof("reload: config changed on disk, %d layer(s)", cfg.Limits.MaxLayers)
	return p.Apply(cfg)
}

func (p *Pad) serve(cc framework.ControlContext) error {
	var errs framework.AggregatedError
	cc.Messages().ProcessMessages(framework.ProcessMessageFunc(func(msg framework.Message) bool {
		switch m := msg.(type) {
		case *store.ChangedMsg:
			errs.Add(p.Reload())
		case *SnapshotMsg:
			m.Reply <- p.Snapshot()
		default:
			return false
		}
		return true
	}))
	return errs.Aggregate()
}

func (p *Pad) show(msg string, ttl time.Duration) {
	if err := p.Display.Show(msg, ttl); err != nil {
		glog.Warningf("display: %v", err)
	}
}
