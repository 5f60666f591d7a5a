package config

import (
	"bytes"
	"encoding/json"
	"errors"
)

type document struct {
	Version      string          `json:"version"`
	Created      string          `json:"created"`
	Device       string          `json:"device"`
	LastModified json.RawMessage `json:"lastModified"`
	Layers       json.RawMessage `json:"layers"`
	Display      *Display        `json:"display"`
	CurrentLayer *int            `json:"currentLayer"`
	Limits       *Limits         `json:"limits"`
}

// Parse decodes a configuration in either the canonical list shape
// or the legacy mapping shape. The result is not validated.
func Parse(data []byte) (*Config, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	cfg := &Config{
		Version:      doc.Version,
		Created:      doc.Created,
		Device:       doc.Device,
		LastModified: rawString(doc.LastModified),
		Display:      Display{Mode: DisplayLayer, Enabled: true},
		CurrentLayer: 1,
	}
	if doc.Display != nil {
		cfg.Display = *doc.Display
	}
	if doc.CurrentLayer != nil {
		cfg.CurrentLayer = *doc.CurrentLayer
	}
	if doc.Limits != nil {
		cfg.Limits = *doc.Limits
	}

	layers := bytes.TrimSpace(doc.Layers)
	if len(layers) == 0 || bytes.Equal(layers, []byte("null")) {
		return cfg, nil
	}
	switch layers[0] {
	case '[':
		if err := json.Unmarshal(layers, &cfg.Layers); err != nil {
			return nil, &ParseError{Err: err}
		}
	case '{':
		if err := json.Unmarshal(layers, &cfg.Legacy); err != nil {
			return nil, &ParseError{Err: err}
		}
	default:
		return nil, &ParseError{Err: errors.New("layers must be a list or an object")}
	}
	return cfg, nil
}

// rawString keeps string values as-is and drops anything else,
// the timestamp format is owned by the desktop application.
func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// Marshal encodes the canonical shape as compact JSON. The legacy
// shape is never emitted.
func Marshal(cfg *Config) ([]byte, error) {
	out := *cfg
	if out.Layers == nil {
		out.Layers = []Layer{}
	}
	return json.Marshal(&out)
}

// Load parses and validates data in one step.
func Load(data []byte) (*Config, error) {
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Validate(cfg)
}
