// Package protocol implements the line based control channel used by
// the desktop application to query and reconfigure the pad.
package protocol

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/macropad.go/pkg/battery"
	"github.com/robotalks/macropad.go/pkg/framework"
)

// Commands.
const (
	CmdPing              = "PING"
	CmdDownloadConfig    = "DOWNLOAD_CONFIG"
	CmdGetCurrentConfig  = "GET_CURRENT_CONFIG"
	CmdBatteryStatus     = "BATTERY_STATUS"
	CmdUploadLayerConfig = "UPLOAD_LAYER_CONFIG"
	CmdSetDisplayMode    = "SET_DISPLAY_MODE:"
	CmdSetTime           = "SET_TIME:"
	CmdBeginJSON         = "BEGIN_JSON"
	CmdEndJSON           = "END_JSON"
)

// State is the state of the engine.
type State int

// States.
const (
	Idle State = iota
	ReceivingPayload
)

func (s State) String() string {
	if s == ReceivingPayload {
		return "receiving"
	}
	return "idle"
}

// Device is what the engine controls.
type Device interface {
	// ConfigBytes returns the persisted configuration.
	ConfigBytes() ([]byte, error)
	BatteryStatus() (battery.Status, error)
	SetDisplayMode(mode string, enabled bool) error
	SetTime(hhmm string) error
	// UploadStarted is called on BEGIN_JSON.
	UploadStarted()
	// UploadFinished receives the joined payload on END_JSON. The
	// device must be left untouched if it returns an error.
	UploadFinished(payload []byte) error
}

// Engine interprets lines from the control channel and writes the
// responses.
type Engine struct {
	Device Device
	Output io.Writer

	state   State
	payload []string
}

// NewEngine creates an Engine.
func NewEngine(dev Device, out io.Writer) *Engine {
	return &Engine{Device: dev, Output: out}
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// HandleLine processes one line, without the newline. Only errors
// writing the response are returned.
func (e *Engine) HandleLine(line string) error {
	if e.state == ReceivingPayload {
		return e.receive(line)
	}
	cmd := strings.TrimSpace(line)
	if glog.V(2) {
		glog.Infof("protocol: command %q", cmd)
	}
	switch {
	case cmd == CmdPing:
		return e.reply("PONG")
	case cmd == CmdDownloadConfig:
		return e.replyConfig("CONFIG:", "DOWNLOAD_ERROR: ")
	case cmd == CmdGetCurrentConfig:
		return e.replyConfig("CURRENT_CONFIG:", "CONFIG_ERROR: ")
	case cmd == CmdBatteryStatus:
		st, err := e.Device.BatteryStatus()
		if err != nil {
			return e.reply("BATTERY_ERROR: " + errText(err))
		}
		return e.reply("BATTERY:" + st.String())
	case cmd == CmdUploadLayerConfig:
		return e.reply("READY_FOR_LAYER_CONFIG")
	case strings.HasPrefix(cmd, CmdSetDisplayMode):
		mode, enabled := parseDisplayMode(cmd[len(CmdSetDisplayMode):])
		if err := e.Device.SetDisplayMode(mode, enabled); err != nil {
			return e.reply("DISPLAY_MODE_ERROR: " + errText(err))
		}
		return e.reply("DISPLAY_MODE_SET")
	case strings.HasPrefix(cmd, CmdSetTime):
		if err := e.Device.SetTime(cmd[len(CmdSetTime):]); err != nil {
			return e.reply("TIME_ERROR: " + errText(err))
		}
		return e.reply("TIME_SET")
	case cmd == CmdBeginJSON:
		e.state, e.payload = ReceivingPayload, nil
		e.Device.UploadStarted()
		return nil
	}
	return e.reply("UNKNOWN_COMMAND: " + cmd)
}

// Control implements framework.Controller. It handles every LineMsg
// queued for this cycle in order.
func (e *Engine) Control(cc framework.ControlContext) error {
	var errs framework.AggregatedError
	cc.Messages().ProcessMessages(framework.ProcessMessageFunc(func(msg framework.Message) bool {
		lm, ok := msg.(*LineMsg)
		if ok {
			errs.Add(e.HandleLine(lm.Line))
		}
		return ok
	}))
	return errs.Aggregate()
}

func (e *Engine) receive(line string) error {
	line = strings.TrimSuffix(line, "\r")
	if strings.TrimSpace(line) != CmdEndJSON {
		e.payload = append(e.payload, line)
		return nil
	}
	payload := strings.Join(e.payload, "\n")
	e.state, e.payload = Idle, nil
	glog.Infof("protocol: upload of %d bytes", len(payload))
	if err := e.Device.UploadFinished([]byte(payload)); err != nil {
		glog.Warningf("protocol: upload failed: %v", err)
		return e.reply("UPLOAD_FAIL: " + errText(err))
	}
	return e.reply("UPLOAD_OK")
}

func (e *Engine) replyConfig(prefix, errPrefix string) error {
	data, err := e.Device.ConfigBytes()
	if err != nil {
		return e.reply(errPrefix + errText(err))
	}
	return e.reply(prefix + oneLine(data))
}

func (e *Engine) reply(resp string) error {
	if glog.V(2) {
		glog.Infof("protocol: reply %q", resp)
	}
	_, err := io.WriteString(e.Output, resp+"\n")
	return err
}

// parseDisplayMode parses "<mode>[,<enabled>]". enabled defaults to
// true and is only true when it reads "true" in any case.
func parseDisplayMode(arg string) (string, bool) {
	mode, flag, found := strings.Cut(arg, ",")
	mode = strings.TrimSpace(mode)
	if !found {
		return mode, true
	}
	return mode, strings.EqualFold(strings.TrimSpace(flag), "true")
}

// oneLine makes sure a config document fits a single response line.
func oneLine(data []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err == nil {
		return buf.String()
	}
	return strings.NewReplacer("\r", "", "\n", " ").Replace(string(data))
}

func errText(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}
