package input

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/macropad.go/pkg/config"
	"github.com/robotalks/macropad.go/pkg/hid"
	"github.com/robotalks/macropad.go/pkg/state"
)

type fakeSwitch bool

func (s *fakeSwitch) Pressed() bool { return bool(*s) }

type fakeEncoder int

func (e *fakeEncoder) Position() int { return int(*e) }

type layerCounter int

func (c *layerCounter) LayerChanged() error {
	*c++
	return nil
}

type event struct {
	kind  string
	slot  int
	knob  string
	value string
}

type recordObserver []event

func (o *recordObserver) ButtonFired(slot int, key config.ResolvedKey) {
	*o = append(*o, event{kind: "button", slot: slot, value: key.String()})
}

func (o *recordObserver) KnobFired(knob string, gesture Gesture, action config.KnobAction) {
	*o = append(*o, event{kind: "knob", knob: knob, value: gesture.String() + ":" + action.String()})
}

func (o *recordObserver) LayerSwitched(layer int) {
	*o = append(*o, event{kind: "layer", slot: layer})
}

const testConfig = `{"layers":[
	{"buttons":{
		"1":{"action":"Layer Switch"},
		"2":{"key":"hi"},
		"3":{"action":"Key combo","key":["CTRL","HYPER","V"]},
		"4":{"key":5},
		"5":{"enabled":false,"key":"x"}
	},"knobs":{
		"A":{"cwAction":"Increase Volume","ccwAction":"Decrease Volume","pressAction":"Switch Layer"},
		"B":{"cwAction":"Scroll Down","ccwAction":"Scroll Up","pressAction":"Wave"}
	}},
	{"buttons":{"1":{"action":"Layer Switch"},"2":{"key":"b"}},
	 "knobs":{"A":{"cwAction":"Key Press","ccwAction":"Key combo","pressAction":"Layer Switch"}}}
]}`

type testPad struct {
	*Engine
	switches [5]fakeSwitch
	knobSw   [2]fakeSwitch
	encoders [2]fakeEncoder
	kb       hid.Recorder
	display  layerCounter
	events   recordObserver
	now      time.Time
}

func newTestPad(t *testing.T) *testPad {
	cfg, err := config.Load([]byte(testConfig))
	require.NoError(t, err)
	p := &testPad{now: time.Unix(1000, 0)}
	p.Engine = &Engine{
		Keyboard: &p.kb,
		State:    state.New(cfg),
		Display:  &p.display,
		Observer: &p.events,
	}
	for i := range p.switches {
		p.Buttons = append(p.Buttons, &p.switches[i])
	}
	p.Knobs = []*Knob{
		{Name: "A", Encoder: &p.encoders[0], Switch: &p.knobSw[0]},
		{Name: "B", Encoder: &p.encoders[1], Switch: &p.knobSw[1]},
	}
	p.scan(t)
	return p
}

func (p *testPad) scan(t *testing.T) {
	require.NoError(t, p.Scan(p.now))
}

func (p *testPad) step(t *testing.T, d time.Duration) {
	p.now = p.now.Add(d)
	p.scan(t)
}

func (p *testPad) click(t *testing.T, sw *fakeSwitch) {
	*sw = true
	p.step(t, time.Millisecond)
	p.step(t, 20*time.Millisecond)
	*sw = false
	p.step(t, time.Millisecond)
	p.step(t, 20*time.Millisecond)
}

func TestDebouncer(t *testing.T) {
	d := Debouncer{Hold: 10 * time.Millisecond}
	t0 := time.Unix(0, 0)
	at := func(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

	// bounce shorter than hold is ignored
	require.False(t, d.Update(true, at(0)))
	require.False(t, d.Update(false, at(3)))
	require.False(t, d.Update(false, at(20)))
	require.False(t, d.Pressed())

	require.False(t, d.Update(true, at(30)))
	require.False(t, d.Update(true, at(40)))
	require.True(t, d.Pressed())
	require.False(t, d.Update(false, at(45)))
	require.False(t, d.Update(true, at(47)))
	require.False(t, d.Update(true, at(100)))
	require.False(t, d.Update(false, at(101)))
	require.True(t, d.Update(false, at(111)))
	require.False(t, d.Update(false, at(130)))
	require.False(t, d.Pressed())
}

func TestButtonFiresOnceOnRelease(t *testing.T) {
	p := newTestPad(t)
	p.switches[1] = true
	for i := 0; i < 10; i++ {
		p.step(t, 10*time.Millisecond)
	}
	require.Empty(t, p.kb.Taps())
	p.switches[1] = false
	p.step(t, time.Millisecond)
	p.step(t, 20*time.Millisecond)
	p.step(t, 20*time.Millisecond)
	require.Equal(t, [][]hid.Keycode{{hid.KeyH}, {hid.KeyI}}, p.kb.Taps())
}

func TestButtonKinds(t *testing.T) {
	p := newTestPad(t)
	p.click(t, &p.switches[2])
	p.click(t, &p.switches[3])
	p.click(t, &p.switches[4])
	require.Equal(t, [][]hid.Keycode{
		{hid.KeyLeftCtrl, hid.KeyV},
		{hid.KeyLeftShift, hid.Keycode(5)},
	}, p.kb.Taps())
	require.Equal(t, recordObserver{
		{kind: "button", slot: 3, value: "combo(CTRL+HYPER+V)"},
		{kind: "button", slot: 4, value: "raw(5)"},
	}, p.events)
}

func TestLayerSwitchButton(t *testing.T) {
	p := newTestPad(t)
	p.click(t, &p.switches[0])
	require.Equal(t, 2, p.State.Layer())
	require.Equal(t, layerCounter(1), p.display)
	p.click(t, &p.switches[1])
	require.Equal(t, [][]hid.Keycode{{hid.KeyB}}, p.kb.Taps())
	p.click(t, &p.switches[0])
	require.Equal(t, 1, p.State.Layer())
	require.Equal(t, layerCounter(2), p.display)
	require.Len(t, p.kb.Taps(), 1)
}

func TestKnobRotation(t *testing.T) {
	p := newTestPad(t)
	p.encoders[0] = 3
	p.step(t, time.Millisecond)
	p.encoders[0] = 1
	p.encoders[1] = 1
	p.step(t, time.Millisecond)
	p.step(t, time.Millisecond)
	require.Equal(t, [][]hid.Keycode{
		{hid.KeyVolumeUp},
		{hid.KeyVolumeDown},
		{hid.KeyDown},
	}, p.kb.Taps())
}

func TestKnobInitialPositionIgnored(t *testing.T) {
	p := &testPad{}
	cfg, err := config.Load([]byte(testConfig))
	require.NoError(t, err)
	p.encoders[0] = 7
	p.Engine = &Engine{Keyboard: &p.kb, State: state.New(cfg)}
	p.Knobs = []*Knob{{Name: "A", Encoder: &p.encoders[0]}}
	p.scan(t)
	p.scan(t)
	require.Empty(t, p.kb.Taps())
}

func TestKnobPress(t *testing.T) {
	p := newTestPad(t)
	p.click(t, &p.knobSw[0])
	require.Equal(t, 2, p.State.Layer())
	p.encoders[0] = 1
	p.step(t, time.Millisecond)
	p.encoders[0] = 0
	p.step(t, time.Millisecond)
	require.Equal(t, [][]hid.Keycode{
		{hid.KeyEnter},
		{hid.KeyLeftCtrl, hid.KeyC},
	}, p.kb.Taps())

	p.click(t, &p.knobSw[0])
	require.Equal(t, 1, p.State.Layer())
	p.click(t, &p.knobSw[1])
	require.Len(t, p.kb.Taps(), 2)
	require.Contains(t, p.events, event{kind: "knob", knob: "B", value: "press:Unknown"})
}

func TestOutputErrorDoesNotStopScan(t *testing.T) {
	p := newTestPad(t)
	p.kb.Err = errors.New("endpoint stalled")
	p.switches[1] = true
	p.switches[3] = true
	p.step(t, time.Millisecond)
	p.step(t, 20*time.Millisecond)
	p.switches[1] = false
	p.switches[3] = false
	p.step(t, time.Millisecond)
	p.now = p.now.Add(20 * time.Millisecond)
	err := p.Scan(p.now)
	require.Error(t, err)
	require.Contains(t, err.Error(), "button 2")
	require.Contains(t, err.Error(), "button 4")
}
