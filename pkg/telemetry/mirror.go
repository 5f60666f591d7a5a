// Package telemetry mirrors pad activity to an MQTT broker as
// protobuf-encoded events.
package telemetry

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/robotalks/macropad.go/pkg/config"
	"github.com/robotalks/macropad.go/pkg/input"
)

const (
	// DefaultRetryInterval is the wait between connection attempts.
	DefaultRetryInterval = 5 * time.Second

	publishTimeout = time.Second
)

// Config configures the mirror.
type Config struct {
	// URL of the broker, e.g. mqtt://host:port/topic-prefix.
	// Empty disables telemetry.
	URL string `yaml:"url"`
	// DeviceID is the topic segment identifying this pad.
	DeviceID string `yaml:"device-id"`
}

// DefaultConfig is built from the environment and the machine ID.
func DefaultConfig() Config {
	return Config{
		URL:      os.Getenv("MACROPAD_MQTT_URL"),
		DeviceID: DefaultDeviceID(),
	}
}

// DefaultDeviceID derives a stable ID from the machine ID.
func DefaultDeviceID() string {
	id, err := machineid.ProtectedID("macropad")
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return "macropad"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// NewMirror creates the Mirror, or nil when telemetry is disabled.
func (c *Config) NewMirror() (*Mirror, error) {
	if c.URL == "" {
		return nil, nil
	}
	if c.DeviceID == "" {
		return nil, errors.New("telemetry: device id required")
	}
	q, err := NewQueueFromURL(c.URL, "macropad-"+c.DeviceID)
	if err != nil {
		return nil, err
	}
	return &Mirror{Queue: q, DeviceID: c.DeviceID}, nil
}

// Mirror publishes events under <prefix><device-id>/events/<topic>.
// It observes the input engine and renders the display text.
type Mirror struct {
	Queue         *Queue
	DeviceID      string
	RetryInterval time.Duration
}

// Name implements framework.Named.
func (m *Mirror) Name() string {
	return "telemetry"
}

// Run keeps the broker connection until ctx is done.
func (m *Mirror) Run(ctx context.Context) error {
	retry := m.RetryInterval
	if retry <= 0 {
		retry = DefaultRetryInterval
	}
	for {
		token := m.Queue.Connect()
		if token.Wait() && token.Error() == nil {
			break
		}
		glog.Warningf("mqtt connect: %v", token.Error())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry):
		}
	}
	<-ctx.Done()
	m.Queue.Close()
	return ctx.Err()
}

// Topic returns the topic of ev, relative to the queue prefix.
func (m *Mirror) Topic(ev Event) string {
	return m.DeviceID + "/events/" + ev.Topic()
}

// Publish encodes and publishes ev without waiting for delivery.
func (m *Mirror) Publish(ev Event) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}
	token := m.Queue.Pub(m.Topic(ev), data)
	go func() {
		if token.WaitTimeout(publishTimeout) && token.Error() != nil {
			if glog.V(2) {
				glog.Infof("publish %s: %v", ev.Topic(), token.Error())
			}
		}
	}()
	return nil
}

func (m *Mirror) publish(ev Event) {
	if err := m.Publish(ev); err != nil {
		glog.Warningf("telemetry: %v", err)
	}
}

// ButtonFired implements input.Observer.
func (m *Mirror) ButtonFired(slot int, key config.ResolvedKey) {
	m.publish(&KeyEvent{Slot: int32(slot), Kind: key.Kind.String(), Detail: key.String()})
}

// KnobFired implements input.Observer.
func (m *Mirror) KnobFired(knob string, gesture input.Gesture, action config.KnobAction) {
	m.publish(&KnobEvent{Knob: knob, Gesture: gesture.String(), Action: action.String()})
}

// LayerSwitched implements input.Observer.
func (m *Mirror) LayerSwitched(layer int) {
	m.publish(&LayerEvent{Layer: int32(layer)})
}

// Render implements display.Renderer.
func (m *Mirror) Render(text string) error {
	return m.Publish(&DisplayEvent{Text: text})
}
