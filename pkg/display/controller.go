// Package display selects the text shown on the pad display.
package display

import (
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/macropad.go/pkg/battery"
	"github.com/robotalks/macropad.go/pkg/config"
	"github.com/robotalks/macropad.go/pkg/framework"
)

// DefaultTimeRefresh is the refresh period of the time mode.
const DefaultTimeRefresh = time.Second

// LayerSource provides the current layer.
type LayerSource interface {
	Layer() int
}

// Controller decides what the display shows: the render of the
// current mode or a transient overlay message.
type Controller struct {
	Renderer Renderer
	Layers   LayerSource
	// Battery is nil when the pad has no battery.
	Battery battery.Source
	// Clock defaults to time.Now.
	Clock       func() time.Time
	TimeRefresh time.Duration

	mode    string
	enabled bool

	clockOffset time.Duration
	timeText    string
	timeAt      time.Time

	overlay      string
	overlayOn    bool
	overlayUntil time.Time

	shown    string
	rendered bool
}

// NewController creates a Controller in layer mode.
func NewController(r Renderer, layers LayerSource) *Controller {
	return &Controller{
		Renderer:    r,
		Layers:      layers,
		TimeRefresh: DefaultTimeRefresh,
		mode:        config.DisplayLayer,
		enabled:     true,
	}
}

// Mode returns the mode as set, possibly not a known mode.
func (c *Controller) Mode() string {
	return c.mode
}

// Enabled tells whether the display is enabled.
func (c *Controller) Enabled() bool {
	return c.enabled
}

// Shown returns the text last rendered.
func (c *Controller) Shown() string {
	return c.shown
}

// SetMode changes the mode and re-renders. The mode is kept verbatim,
// unknown ones render as layer. If the render fails the previous mode
// is restored.
func (c *Controller) SetMode(mode string, enabled bool) error {
	prevMode, prevEnabled := c.mode, c.enabled
	prevText, prevAt := c.timeText, c.timeAt
	if err := c.setMode(mode, enabled); err != nil {
		c.mode, c.enabled = prevMode, prevEnabled
		c.timeText, c.timeAt = prevText, prevAt
		return err
	}
	return nil
}

// Apply takes the display settings of a configuration. The settings
// stay in effect even if the render fails.
func (c *Controller) Apply(d config.Display) error {
	if d.Mode == "" {
		d.Mode = config.DisplayLayer
	}
	return c.setMode(d.Mode, d.Enabled)
}

func (c *Controller) setMode(mode string, enabled bool) error {
	c.mode, c.enabled = mode, enabled
	if c.effectiveMode() == config.DisplayTime {
		c.refreshTime(c.now())
	}
	return c.render()
}

// LayerChanged re-renders if the layer is shown.
func (c *Controller) LayerChanged() error {
	if c.effectiveMode() != config.DisplayLayer {
		return nil
	}
	return c.render()
}

// Show displays msg on top of the current mode. The message expires
// after ttl, or stays until replaced when ttl is not positive.
func (c *Controller) Show(msg string, ttl time.Duration) error {
	c.overlay, c.overlayOn = msg, true
	c.overlayUntil = time.Time{}
	if ttl > 0 {
		c.overlayUntil = c.now().Add(ttl)
	}
	return c.render()
}

// ClearOverlay removes the overlay message.
func (c *Controller) ClearOverlay() error {
	if !c.overlayOn {
		return nil
	}
	c.overlay, c.overlayOn = "", false
	return c.render()
}

// SetTime synchronizes the clock to an "HH:MM" time. In time mode
// the given text is shown right away, even if it is not a valid time.
func (c *Controller) SetTime(hhmm string) error {
	now := c.now()
	if t, err := time.Parse("15:04", hhmm); err == nil {
		target := t.Hour()*60 + t.Minute()
		current := now.Hour()*60 + now.Minute()
		c.clockOffset = time.Duration(target-current) * time.Minute
	} else if glog.V(1) {
		glog.Infof("display: time %q not synchronized: %v", hhmm, err)
	}
	if c.effectiveMode() != config.DisplayTime {
		return nil
	}
	c.timeText, c.timeAt = hhmm, now
	return c.render()
}

// Tick expires the overlay and refreshes the time mode.
func (c *Controller) Tick(now time.Time) error {
	dirty := false
	if c.overlayOn && !c.overlayUntil.IsZero() && !now.Before(c.overlayUntil) {
		c.overlay, c.overlayOn = "", false
		dirty = true
	}
	if c.effectiveMode() == config.DisplayTime && now.Sub(c.timeAt) >= c.timeRefresh() {
		c.refreshTime(now)
		dirty = true
	}
	if !dirty {
		return nil
	}
	return c.render()
}

// Control implements framework.Controller.
func (c *Controller) Control(cc framework.ControlContext) error {
	return c.Tick(cc.Time())
}

// Text returns what the display should show now.
func (c *Controller) Text() string {
	if c.overlayOn {
		return c.overlay
	}
	switch c.effectiveMode() {
	case config.DisplayOff:
		return ""
	case config.DisplayBattery:
		return c.batteryText()
	case config.DisplayTime:
		return c.timeText
	}
	return fmt.Sprintf("Layer: %d", c.Layers.Layer())
}

// effectiveMode maps the stored mode to the one rendered.
func (c *Controller) effectiveMode() string {
	if !c.enabled {
		return config.DisplayOff
	}
	switch c.mode {
	case config.DisplayOff, config.DisplayBattery, config.DisplayTime:
		return c.mode
	}
	return config.DisplayLayer
}

func (c *Controller) batteryText() string {
	if c.Battery == nil {
		return "No Bat"
	}
	st, err := c.Battery.Status()
	if err != nil {
		glog.Warningf("display: battery: %v", err)
		return "?%"
	}
	return fmt.Sprintf("%d%%", st.Percentage)
}

func (c *Controller) refreshTime(now time.Time) {
	c.timeText = now.Add(c.clockOffset).Format("15:04")
	c.timeAt = now
}

func (c *Controller) render() error {
	text := c.Text()
	if c.rendered && text == c.shown {
		return nil
	}
	if err := c.Renderer.Render(text); err != nil {
		return fmt.Errorf("render %q: %w", text, err)
	}
	c.shown, c.rendered = text, true
	return nil
}

func (c *Controller) timeRefresh() time.Duration {
	if c.TimeRefresh > 0 {
		return c.TimeRefresh
	}
	return DefaultTimeRefresh
}

func (c *Controller) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}
