package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  "version": "1.0",
  "device": "MacroPad",
  "lastModified": "2025-09-22T10:00:00Z",
  "layers": [
    {
      "id": 1,
      "name": "Editing",
      "buttons": {
        "1": {"enabled": true, "action": "Key Press", "key": "a"},
        "2": {"enabled": true, "action": "Key combo", "key": ["CTRL", "C"]},
        "3": {"enabled": false, "action": "Key Press", "key": "x"},
        "4": {"action": "None", "key": "y"},
        "5": {"action": "Layer Switch"},
        "6": {"action": "Key Press", "key": 4}
      },
      "knobs": {
        "A": {"ccwAction": "Decrease Volume", "cwAction": "Increase Volume", "pressAction": "Layer Switch"},
        "B": {"cwAction": "Dance"}
      }
    },
    {
      "id": 2,
      "name": "Shortcuts",
      "buttons": {
        "1": {"action": "Key combo", "key": "Ctrl+C"},
        "3": {"action": "Key Press", "key": ""}
      }
    }
  ],
  "display": {"mode": "battery", "enabled": true},
  "currentLayer": 2
}`

func loadSample(t *testing.T) *Config {
	cfg, err := Load([]byte(sampleConfig))
	require.NoError(t, err)
	return cfg
}

func TestLoadDerivesLimits(t *testing.T) {
	cfg := loadSample(t)
	require.Equal(t, Limits{MaxLayers: 2, MaxButtons: 6, MaxKnobs: 2}, cfg.Limits)
	require.Equal(t, 2, cfg.CurrentLayer)
	require.Equal(t, Display{Mode: DisplayBattery, Enabled: true}, cfg.Display)
	require.Equal(t, "1.0", cfg.Version)
	require.Equal(t, "2025-09-22T10:00:00Z", cfg.LastModified)
}

func TestResolveLayer(t *testing.T) {
	cfg := loadSample(t)
	require.Equal(t, []ResolvedKey{
		{Kind: Single, Text: "a"},
		{Kind: Combo, Names: []string{"CTRL", "C"}},
		{},
		{},
		{Kind: LayerSwitch},
		{Kind: RawCode, Code: 4},
	}, ResolveLayer(cfg, 1))
	require.Equal(t, []ResolvedKey{
		{Kind: Combo, Names: []string{"Ctrl", "C"}},
		{}, {}, {}, {}, {},
	}, ResolveLayer(cfg, 2))

	for _, n := range []int{0, 3, -1} {
		keys := ResolveLayer(cfg, n)
		require.Len(t, keys, 6)
		for _, k := range keys {
			require.Equal(t, Empty, k.Kind)
		}
	}
}

func TestResolveButton(t *testing.T) {
	cases := []struct {
		name   string
		btn    ButtonConfig
		expect ResolvedKey
	}{
		{"free action text", ButtonConfig{Enabled: true, Action: "A", Key: TextKey("a")}, ResolvedKey{Kind: Single, Text: "a"}},
		{"empty action", ButtonConfig{Enabled: true, Key: TextKey("hello")}, ResolvedKey{Kind: Single, Text: "hello"}},
		{"disabled", ButtonConfig{Action: ActionKeyPress, Key: TextKey("a")}, ResolvedKey{}},
		{"none", ButtonConfig{Enabled: true, Action: ActionNone, Key: TextKey("a")}, ResolvedKey{}},
		{"no key", ButtonConfig{Enabled: true, Action: ActionKeyPress}, ResolvedKey{}},
		{"layer switch ignores key", ButtonConfig{Enabled: true, Action: ActionLayerSwitch, Key: TextKey("a")}, ResolvedKey{Kind: LayerSwitch}},
		{"combo text", ButtonConfig{Enabled: true, Action: ActionKeyCombo, Key: TextKey("Ctrl + Shift + Z")}, ResolvedKey{Kind: Combo, Names: []string{"Ctrl", "Shift", "Z"}}},
		{"plus sign", ButtonConfig{Enabled: true, Action: ActionKeyCombo, Key: TextKey("+")}, ResolvedKey{Kind: Single, Text: "+"}},
		{"plus in text", ButtonConfig{Enabled: true, Action: ActionKeyPress, Key: TextKey("1+1")}, ResolvedKey{Kind: Single, Text: "1+1"}},
		{"raw code", ButtonConfig{Enabled: true, Action: ActionKeyPress, Key: CodeKey(0x2c)}, ResolvedKey{Kind: RawCode, Code: 0x2c}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.expect, ResolveButton(c.btn))
		})
	}
}

func TestResolveKnobs(t *testing.T) {
	cfg := loadSample(t)
	require.Equal(t, map[string]KnobBinding{
		"A": {CCW: KnobDecreaseVolume, CW: KnobIncreaseVolume, Press: KnobSwitchLayer},
		"B": {CCW: KnobNone, CW: KnobUnknown, Press: KnobNone},
	}, ResolveKnobs(cfg, 1))
	require.Empty(t, ResolveKnobs(cfg, 2))
	require.Empty(t, ResolveKnobs(cfg, 5))
}

func TestRoundTripResolvesIdentically(t *testing.T) {
	cfgs := []*Config{loadSample(t), Default()}
	legacy, err := Load([]byte(`{"layers":{"layer0":{"keys":["a",["ALT","TAB"],7]}}}`))
	require.NoError(t, err)
	cfgs = append(cfgs, legacy)

	for _, cfg := range cfgs {
		data, err := Marshal(cfg)
		require.NoError(t, err)
		back, err := Load(data)
		require.NoError(t, err)
		require.Equal(t, cfg.Limits, back.Limits)
		for n := 1; n <= cfg.Limits.MaxLayers; n++ {
			require.Equal(t, ResolveLayer(cfg, n), ResolveLayer(back, n))
			require.Equal(t, ResolveKnobs(cfg, n), ResolveKnobs(back, n))
		}
	}
}

func TestValidateClampsCurrentLayer(t *testing.T) {
	cases := []struct {
		current int
		expect  int
	}{
		{-3, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 1}, {100, 1},
	}
	for _, c := range cases {
		cfg := loadSample(t)
		cfg.CurrentLayer = c.current
		out, err := Validate(cfg)
		require.NoError(t, err)
		require.Equal(t, c.expect, out.CurrentLayer, "currentLayer %d", c.current)
		require.Equal(t, c.current, cfg.CurrentLayer)
	}
}

func TestValidateNormalizesLegacy(t *testing.T) {
	cfg, err := Parse([]byte(`{"layers": {
		"layer1": {"keys": ["c"]},
		"layer10": {"keys": []},
		"layer0": {"keys": ["a", ["CTRL", "V"], 4, ""]}
	}}`))
	require.NoError(t, err)
	require.Len(t, cfg.Legacy, 3)
	require.Empty(t, cfg.Layers)

	out, err := Validate(cfg)
	require.NoError(t, err)
	require.Nil(t, out.Legacy)
	require.Len(t, out.Layers, 3)
	require.Equal(t, "layer0", out.Layers[0].Name)
	require.Equal(t, "layer1", out.Layers[1].Name)
	require.Equal(t, "layer10", out.Layers[2].Name)
	require.Equal(t, Limits{MaxLayers: 3, MaxButtons: 4}, out.Limits)
	require.Equal(t, ButtonConfig{Enabled: true, Action: ActionKeyPress, Key: TextKey("a")}, out.Layers[0].Buttons["1"])

	require.Equal(t, []ResolvedKey{
		{Kind: Single, Text: "a"},
		{Kind: Combo, Names: []string{"CTRL", "V"}},
		{Kind: RawCode, Code: 4},
		{},
	}, ResolveLayer(out, 1))
	require.Equal(t, []ResolvedKey{{Kind: Single, Text: "c"}, {}, {}, {}}, ResolveLayer(out, 2))
	require.Equal(t, make([]ResolvedKey, 4), ResolveLayer(out, 3))

	data, err := Marshal(out)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `"layers":[`))
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Load([]byte(`{"layers":[{"buttons":{"1":{"action":"A","key":"a"}}}],"display":{"mode":"time"}}`))
	require.NoError(t, err)
	require.Equal(t, 1, cfg.CurrentLayer)
	require.Equal(t, Display{Mode: DisplayTime, Enabled: true}, cfg.Display)
	require.True(t, cfg.Layers[0].Buttons["1"].Enabled)

	cfg, err = Load([]byte(`{"layers":[{"buttons":{}}],"display":{"mode":"","enabled":false}}`))
	require.NoError(t, err)
	require.Equal(t, Display{Mode: DisplayLayer, Enabled: false}, cfg.Display)
	require.Equal(t, Limits{MaxLayers: 1}, cfg.Limits)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name  string
		data  string
		parse bool
	}{
		{"malformed", `{"layers": [`, true},
		{"not an object", `[1, 2]`, true},
		{"layers scalar", `{"layers": "x"}`, true},
		{"key bool", `{"layers":[{"buttons":{"1":{"key":true}}}]}`, true},
		{"key float", `{"layers":[{"buttons":{"1":{"key":1.5}}}]}`, true},
		{"no layers", `{}`, false},
		{"empty layers", `{"layers": []}`, false},
		{"empty legacy", `{"layers": {}}`, false},
		{"slot zero", `{"layers":[{"buttons":{"0":{"key":"a"}}}]}`, false},
		{"slot name", `{"layers":[{"buttons":{"one":{"key":"a"}}}]}`, false},
		{"slot padded", `{"layers":[{"buttons":{"01":{"key":"a"}}}]}`, false},
		{"slot too large", `{"layers":[{"buttons":{"256":{"key":"a"}}}]}`, false},
		{"slot overflow", `{"layers":[{"buttons":{"9223372036854775807":{"key":"a"}}}]}`, false},
		{"code range", `{"layers":[{"buttons":{"1":{"key":256}}}]}`, false},
		{"negative code", `{"layers":[{"buttons":{"1":{"key":-1}}}]}`, false},
		{"empty chord", `{"layers":[{"buttons":{"1":{"key":[]}}}]}`, false},
		{"legacy code range", `{"layers":{"layer0":{"keys":[999]}}}`, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load([]byte(c.data))
			require.Error(t, err)
			var pe *ParseError
			var ve *ValidationError
			if c.parse {
				require.True(t, errors.As(err, &pe), "%v", err)
			} else {
				require.True(t, errors.As(err, &ve), "%v", err)
			}
		})
	}
}

func TestHighestSlot(t *testing.T) {
	cfg, err := Load([]byte(`{"layers":[{"buttons":{"255":{"key":"a"}}}]}`))
	require.NoError(t, err)
	require.Equal(t, MaxSlots, cfg.Limits.MaxButtons)
	keys := ResolveLayer(cfg, 1)
	require.Len(t, keys, MaxSlots)
	require.Equal(t, ResolvedKey{Kind: Single, Text: "a"}, keys[MaxSlots-1])
}

func TestDefault(t *testing.T) {
	cfg := Default()
	out, err := Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, cfg.Limits, out.Limits)
	keys := ResolveLayer(cfg, 1)
	require.Len(t, keys, DefaultButtons)
	for i, k := range keys {
		require.Equal(t, ResolvedKey{Kind: Single, Text: string(rune('A' + i))}, k)
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := loadSample(t)
	c := cfg.Clone()
	c.Layers[0].Buttons["1"] = ButtonConfig{Action: ActionNone}
	c.Layers[0].Knobs["A"] = KnobConfig{}
	require.Equal(t, TextKey("a"), cfg.Layers[0].Buttons["1"].Key)
	require.Equal(t, "Layer Switch", cfg.Layers[0].Knobs["A"].PressAction)
}
