package pad

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/macropad.go/pkg/framework"
	"github.com/robotalks/macropad.go/pkg/store"
	"github.com/robotalks/macropad.go/pkg/telemetry"
)

// Config is the daemon configuration. Empty hardware settings select
// the software backends.
type Config struct {
	// StorageDir holds the configuration files.
	StorageDir string `yaml:"storage-dir"`
	ConfigFile string `yaml:"config-file"`
	// Serial is the control channel port, stdin/stdout if empty.
	Serial string `yaml:"serial"`
	Baud   int    `yaml:"baud"`
	// Gadget is the HID gadget device, keys are logged if empty.
	Gadget string `yaml:"gadget"`
	Layout string `yaml:"layout"`
	// Display is the I2C bus of the SSD1306, text is logged if empty.
	Display string `yaml:"display"`
	// Battery is a power supply sysfs directory, or "auto".
	Battery string `yaml:"battery"`
	// Buttons are GPIO names of slot 1, 2, ...; virtual if empty.
	Buttons  []string      `yaml:"buttons"`
	Knobs    []KnobPins    `yaml:"knobs"`
	Hold     time.Duration `yaml:"hold"`
	Interval time.Duration `yaml:"interval"`
	// Console starts the interactive console.
	Console   bool             `yaml:"console"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// KnobPins are the GPIO names of a knob.
type KnobPins struct {
	Name   string `yaml:"name"`
	A      string `yaml:"a"`
	B      string `yaml:"b"`
	Switch string `yaml:"switch"`
}

// ParseKnobPins parses NAME:A:B[:SWITCH].
func ParseKnobPins(s string) (KnobPins, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return KnobPins{}, fmt.Errorf("invalid knob %q, expect NAME:A:B[:SWITCH]", s)
	}
	k := KnobPins{Name: parts[0], A: parts[1], B: parts[2]}
	if len(parts) == 4 {
		k.Switch = parts[3]
	}
	if k.Name == "" || k.A == "" || k.B == "" {
		return KnobPins{}, fmt.Errorf("invalid knob %q, expect NAME:A:B[:SWITCH]", s)
	}
	return k, nil
}

func (k KnobPins) String() string {
	s := k.Name + ":" + k.A + ":" + k.B
	if k.Switch != "" {
		s += ":" + k.Switch
	}
	return s
}

var defaultConfig = builtinConfig()

func builtinConfig() Config {
	return Config{
		StorageDir: "/var/lib/macropad",
		ConfigFile: store.DefaultConfigFile,
		Baud:       115200,
		Layout:     "us",
		Hold:       15 * time.Millisecond,
		Interval:   framework.DefaultInterval,
		Telemetry:  telemetry.DefaultConfig(),
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	registerFlags(flag.CommandLine, &defaultConfig)
}

func registerFlags(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.StorageDir, "storage", c.StorageDir, "Directory of the configuration files")
	fs.StringVar(&c.ConfigFile, "config-file", c.ConfigFile, "Configuration file name")
	fs.StringVar(&c.Serial, "serial", c.Serial, "Serial port of the control channel, stdio if empty")
	fs.IntVar(&c.Baud, "baud", c.Baud, "Serial baud rate")
	fs.StringVar(&c.Gadget, "gadget", c.Gadget, "HID gadget device, e.g. /dev/hidg0")
	fs.StringVar(&c.Layout, "layout", c.Layout, "Host keyboard layout (us, de)")
	fs.StringVar(&c.Display, "display", c.Display, "I2C bus of the SSD1306 display")
	fs.StringVar(&c.Battery, "battery", c.Battery, "Battery sysfs directory or auto")
	fs.Var(&listFlag{list: &c.Buttons}, "buttons", "Comma separated GPIO names of the buttons")
	fs.Var(&knobsFlag{list: &c.Knobs}, "knob", "Knob pins NAME:A:B[:SWITCH], repeatable")
	fs.DurationVar(&c.Hold, "hold", c.Hold, "Debounce hold time")
	fs.DurationVar(&c.Interval, "interval", c.Interval, "Poll interval")
	fs.BoolVar(&c.Console, "console", c.Console, "Start the interactive console")
	fs.StringVar(&c.Telemetry.URL, "mqtt", c.Telemetry.URL, "MQTT broker URL for telemetry")
	fs.StringVar(&c.Telemetry.DeviceID, "id", c.Telemetry.DeviceID, "Device ID used in telemetry topics")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Buttons = append([]string(nil), defaultConfig.Buttons...)
	conf.Knobs = append([]KnobPins(nil), defaultConfig.Knobs...)
	return &conf
}

// LoadConfig reads the YAML file at path over the built-in defaults
// and then applies the flags set on the command line. An empty path
// gives the flag configuration.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return NewConfig(), nil
	}
	return loadConfig(path, flag.CommandLine)
}

func loadConfig(path string, cmdline *flag.FlagSet) (*Config, error) {
	conf := builtinConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	fs := flag.NewFlagSet(path, flag.ContinueOnError)
	registerFlags(fs, &conf)
	var errs framework.AggregatedError
	cmdline.Visit(func(f *flag.Flag) {
		if fs.Lookup(f.Name) != nil {
			errs.Add(fs.Set(f.Name, f.Value.String()))
		}
	})
	if err := errs.Aggregate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// NewStore creates the Store on the storage directory.
func (c *Config) NewStore() *store.Store {
	st := store.New(&store.DirStorage{Dir: c.StorageDir})
	if c.ConfigFile != "" {
		st.ConfigFile = c.ConfigFile
	}
	return st
}

// listFlag is a comma separated list. Values given on the command
// line replace the defaults.
type listFlag struct {
	list *[]string
	set  bool
}

func (f *listFlag) String() string {
	if f.list == nil {
		return ""
	}
	return strings.Join(*f.list, ",")
}

func (f *listFlag) Set(s string) error {
	if !f.set {
		*f.list, f.set = nil, true
	}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*f.list = append(*f.list, item)
		}
	}
	return nil
}

type knobsFlag struct {
	list *[]KnobPins
	set  bool
}

func (f *knobsFlag) String() string {
	if f.list == nil {
		return ""
	}
	strs := make([]string, 0, len(*f.list))
	for _, k := range *f.list {
		strs = append(strs, k.String())
	}
	return strings.Join(strs, ",")
}

func (f *knobsFlag) Set(s string) error {
	if !f.set {
		*f.list, f.set = nil, true
	}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item == "" {
			continue
		}
		k, err := ParseKnobPins(item)
		if err != nil {
			return err
		}
		*f.list = append(*f.list, k)
	}
	return nil
}
