package display

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/macropad.go/pkg/battery"
	"github.com/robotalks/macropad.go/pkg/config"
)

type fixedLayer int

func (l *fixedLayer) Layer() int { return int(*l) }

type testDisplay struct {
	*Controller
	layer  fixedLayer
	now    time.Time
	frames []string
}

func newTestDisplay() *testDisplay {
	d := &testDisplay{layer: 1, now: time.Date(2025, 9, 22, 14, 5, 30, 0, time.UTC)}
	d.Controller = NewController(RenderFunc(func(text string) error {
		d.frames = append(d.frames, text)
		return nil
	}), &d.layer)
	d.Clock = func() time.Time { return d.now }
	return d
}

func (d *testDisplay) advance(dur time.Duration) error {
	d.now = d.now.Add(dur)
	return d.Tick(d.now)
}

func TestModes(t *testing.T) {
	d := newTestDisplay()
	d.Battery = battery.Fixed{Percentage: 76, Voltage: 3.9}

	require.NoError(t, d.SetMode(config.DisplayLayer, true))
	require.NoError(t, d.SetMode(config.DisplayBattery, true))
	require.NoError(t, d.SetMode(config.DisplayTime, true))
	require.NoError(t, d.SetMode(config.DisplayOff, true))
	require.NoError(t, d.SetMode("fancy", true))
	require.Equal(t, "fancy", d.Mode())
	require.Equal(t, []string{"Layer: 1", "76%", "14:05", "", "Layer: 1"}, d.frames)
}

func TestDisabledRendersOff(t *testing.T) {
	d := newTestDisplay()
	d.Battery = battery.Fixed{Percentage: 50}
	require.NoError(t, d.SetMode(config.DisplayBattery, false))
	require.Equal(t, config.DisplayBattery, d.Mode())
	require.False(t, d.Enabled())
	require.Equal(t, "", d.Shown())
	require.Equal(t, []string{""}, d.frames)
}

func TestBatteryTexts(t *testing.T) {
	d := newTestDisplay()
	require.NoError(t, d.SetMode(config.DisplayBattery, true))
	require.Equal(t, "No Bat", d.Shown())

	d.Battery = battery.SourceFunc(func() (battery.Status, error) {
		return battery.Status{}, errors.New("i2c timeout")
	})
	require.NoError(t, d.SetMode(config.DisplayBattery, true))
	require.Equal(t, "?%", d.Shown())
}

func TestSetModeEmpty(t *testing.T) {
	d := newTestDisplay()
	require.NoError(t, d.SetMode(config.DisplayBattery, true))
	require.NoError(t, d.SetMode("", true))
	require.Equal(t, "", d.Mode())
	require.True(t, d.Enabled())
	require.Equal(t, []string{"No Bat", "Layer: 1"}, d.frames)
}

func TestLayerChanged(t *testing.T) {
	d := newTestDisplay()
	require.NoError(t, d.SetMode(config.DisplayLayer, true))
	d.layer = 2
	require.NoError(t, d.LayerChanged())
	require.Equal(t, "Layer: 2", d.Shown())

	require.NoError(t, d.SetMode(config.DisplayTime, true))
	d.layer = 3
	require.NoError(t, d.LayerChanged())
	require.Equal(t, []string{"Layer: 1", "Layer: 2", "14:05"}, d.frames)
}

func TestOverlayExpires(t *testing.T) {
	d := newTestDisplay()
	require.NoError(t, d.SetMode(config.DisplayLayer, true))
	require.NoError(t, d.Show("Done!", time.Second))
	require.Equal(t, "Done!", d.Shown())

	require.NoError(t, d.advance(500*time.Millisecond))
	require.Equal(t, "Done!", d.Shown())
	require.NoError(t, d.advance(500*time.Millisecond))
	require.Equal(t, "Layer: 1", d.Shown())
	require.Equal(t, []string{"Layer: 1", "Done!", "Layer: 1"}, d.frames)
}

func TestOverlayWithoutTTLStays(t *testing.T) {
	d := newTestDisplay()
	require.NoError(t, d.Show("Receiving...", 0))
	require.NoError(t, d.advance(time.Hour))
	require.Equal(t, "Receiving...", d.Shown())
	require.NoError(t, d.Show("Done!", time.Second))
	require.NoError(t, d.advance(time.Second))
	require.Equal(t, "Layer: 1", d.Shown())

	require.NoError(t, d.Show("Receiving...", 0))
	require.NoError(t, d.ClearOverlay())
	require.Equal(t, "Layer: 1", d.Shown())
}

func TestTimeRefresh(t *testing.T) {
	d := newTestDisplay()
	require.NoError(t, d.SetMode(config.DisplayTime, true))
	require.Equal(t, "14:05", d.Shown())
	require.NoError(t, d.advance(29*time.Second))
	require.Equal(t, "14:05", d.Shown())
	require.NoError(t, d.advance(time.Second))
	require.Equal(t, "14:06", d.Shown())
	require.Equal(t, []string{"14:05", "14:06"}, d.frames)
}

func TestSetTime(t *testing.T) {
	d := newTestDisplay()
	require.NoError(t, d.SetTime(""))
	require.Empty(t, d.frames)

	// synchronized but not shown outside time mode
	require.NoError(t, d.SetTime("09:30"))
	require.Empty(t, d.frames)

	require.NoError(t, d.SetMode(config.DisplayTime, true))
	require.Equal(t, "09:30", d.Shown())
	require.NoError(t, d.advance(30*time.Second))
	require.Equal(t, "09:31", d.Shown())

	require.NoError(t, d.SetTime("soon"))
	require.Equal(t, "soon", d.Shown())
	require.NoError(t, d.advance(time.Second))
	require.Equal(t, "09:31", d.Shown())
}

func TestRenderErrorRetries(t *testing.T) {
	fail := true
	var shown []string
	c := NewController(RenderFunc(func(text string) error {
		if fail {
			return errors.New("i2c nack")
		}
		shown = append(shown, text)
		return nil
	}), new(fixedLayer))
	require.Error(t, c.SetMode(config.DisplayLayer, true))
	fail = false
	require.NoError(t, c.SetMode(config.DisplayLayer, true))
	require.Equal(t, []string{"Layer: 0"}, shown)
}

func TestSetModeRenderErrorKeepsMode(t *testing.T) {
	fail := false
	var shown []string
	c := NewController(RenderFunc(func(text string) error {
		if fail {
			return errors.New("i2c nack")
		}
		shown = append(shown, text)
		return nil
	}), new(fixedLayer))
	c.Clock = func() time.Time { return time.Date(2025, 9, 22, 14, 5, 0, 0, time.UTC) }
	require.NoError(t, c.SetMode(config.DisplayLayer, true))

	fail = true
	require.Error(t, c.SetMode(config.DisplayTime, false))
	require.Equal(t, config.DisplayLayer, c.Mode())
	require.True(t, c.Enabled())
	require.Equal(t, "Layer: 0", c.Shown())

	require.Error(t, c.Apply(config.Display{Mode: config.DisplayTime, Enabled: true}))
	require.Equal(t, config.DisplayTime, c.Mode())

	fail = false
	require.NoError(t, c.Tick(time.Date(2025, 9, 22, 14, 5, 1, 0, time.UTC)))
	require.Equal(t, "14:05", c.Shown())
	require.Equal(t, []string{"Layer: 0", "14:05"}, shown)
}
