// Package battery reads the battery state of the pad.
package battery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnavailable is returned when no battery is present.
var ErrUnavailable = errors.New("battery not available")

// Status is a battery reading.
type Status struct {
	Percentage int
	Voltage    float64
	Charging   bool
}

// String formats the status as sent over the control channel:
// <percentage>,<voltage>,<Charging|Not Charging>.
func (s Status) String() string {
	state := "Not Charging"
	if s.Charging {
		state = "Charging"
	}
	return fmt.Sprintf("%d,%.2f,%s", s.Percentage, s.Voltage, state)
}

// Source provides battery readings.
type Source interface {
	Status() (Status, error)
}

// SourceFunc is the func form of Source.
type SourceFunc func() (Status, error)

// Status implements Source.
func (f SourceFunc) Status() (Status, error) {
	return f()
}

// Fixed always reports the same status.
type Fixed Status

// Status implements Source.
func (f Fixed) Status() (Status, error) {
	return Status(f), nil
}

// DefaultSysfsDir is where Linux exposes power supplies.
const DefaultSysfsDir = "/sys/class/power_supply"

// Sysfs reads a Linux power supply.
type Sysfs struct {
	// Dir is the power supply directory, e.g.
	// /sys/class/power_supply/BAT0.
	Dir string
}

// FindSysfs returns the first battery power supply under root.
func FindSysfs(root string) (*Sysfs, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, ErrUnavailable
	}
	for _, e := range entries {
		dir := filepath.Join(root, e.Name())
		if kind, err := readString(dir, "type"); err == nil && kind == "Battery" {
			return &Sysfs{Dir: dir}, nil
		}
	}
	return nil, ErrUnavailable
}

// Status implements Source.
func (s *Sysfs) Status() (Status, error) {
	var st Status
	capacity, err := readString(s.Dir, "capacity")
	if err != nil {
		return st, err
	}
	if st.Percentage, err = strconv.Atoi(capacity); err != nil {
		return st, fmt.Errorf("battery capacity %q: %w", capacity, err)
	}
	// microvolts
	if uv, err := readString(s.Dir, "voltage_now"); err == nil {
		if n, err := strconv.ParseFloat(uv, 64); err == nil {
			st.Voltage = n / 1e6
		}
	}
	if status, err := readString(s.Dir, "status"); err == nil {
		st.Charging = status == "Charging" || status == "Full"
	}
	return st, nil
}

func readString(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
