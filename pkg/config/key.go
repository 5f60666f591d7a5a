package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// KeyKind tells which variant a Key holds.
type KeyKind int

// Key variants.
const (
	KeyNone KeyKind = iota
	KeyText
	KeyChord
	KeyCode
)

// Key is the "key" field of a button: a text string, an ordered chord
// of key names, or a raw HID keycode (only found in old exports).
type Key struct {
	kind  KeyKind
	text  string
	chord []string
	code  int
}

// TextKey creates a text key.
func TextKey(s string) Key { return Key{kind: KeyText, text: s} }

// ChordKey creates a chord of key names pressed together.
func ChordKey(names ...string) Key {
	return Key{kind: KeyChord, chord: append([]string(nil), names...)}
}

// CodeKey creates a raw keycode key.
func CodeKey(code int) Key { return Key{kind: KeyCode, code: code} }

// Kind returns the variant.
func (k Key) Kind() KeyKind { return k.kind }

// Text returns the text of a KeyText.
func (k Key) Text() string { return k.text }

// Chord returns the key names of a KeyChord.
func (k Key) Chord() []string { return k.chord }

// Code returns the keycode of a KeyCode.
func (k Key) Code() int { return k.code }

// IsZero reports whether no key is set.
func (k Key) IsZero() bool { return k.kind == KeyNone }

func (k Key) clone() Key {
	if k.chord != nil {
		k.chord = append([]string(nil), k.chord...)
	}
	return k
}

// String formats the key for logs.
func (k Key) String() string {
	switch k.kind {
	case KeyText:
		return fmt.Sprintf("%q", k.text)
	case KeyChord:
		return "[" + strings.Join(k.chord, "+") + "]"
	case KeyCode:
		return fmt.Sprintf("#%d", k.code)
	}
	return "<none>"
}

// MarshalJSON emits the same shape the key was read from.
func (k Key) MarshalJSON() ([]byte, error) {
	switch k.kind {
	case KeyText:
		return json.Marshal(k.text)
	case KeyChord:
		return json.Marshal(k.chord)
	case KeyCode:
		return json.Marshal(k.code)
	}
	return []byte(`""`), nil
}

// UnmarshalJSON accepts a string, an array of strings, an integer or null.
func (k *Key) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*k = Key{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = TextKey(s)
	case '[':
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return fmt.Errorf("key chord must be a list of key names: %w", err)
		}
		*k = Key{kind: KeyChord, chord: names}
	default:
		var code json.Number
		if err := json.Unmarshal(data, &code); err != nil {
			return fmt.Errorf("key must be a string, list or integer: %w", err)
		}
		n, err := code.Int64()
		if err != nil {
			return fmt.Errorf("key code %s is not an integer", code)
		}
		*k = CodeKey(int(n))
	}
	return nil
}
