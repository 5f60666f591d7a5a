// Package hid emits keyboard output as USB HID boot keyboard reports.
package hid

import (
	"fmt"
	"strings"
)

// Keycode is a usage ID of the HID keyboard page.
type Keycode byte

// Keycodes.
const (
	KeyA Keycode = 0x04 + iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	Key0
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeySpace
	KeyMinus
	KeyEqual
	KeyLeftBracket
	KeyRightBracket
	KeyBackslash
	keyNonUSHash
	KeySemicolon
	KeyQuote
	KeyGrave
	KeyComma
	KeyPeriod
	KeySlash
	KeyCapsLock
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyPrintScreen
	KeyScrollLock
	KeyPause
	KeyInsert
	KeyHome
	KeyPageUp
	KeyDelete
	KeyEnd
	KeyPageDown
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
)

// Media keys of the keyboard page.
const (
	KeyMute       Keycode = 0x7f
	KeyVolumeUp   Keycode = 0x80
	KeyVolumeDown Keycode = 0x81
)

// Modifier keys.
const (
	KeyLeftCtrl Keycode = 0xe0 + iota
	KeyLeftShift
	KeyLeftAlt
	KeyLeftGUI
	KeyRightCtrl
	KeyRightShift
	KeyRightAlt
	KeyRightGUI
)

// IsModifier reports whether the key is reported in the modifier byte.
func (k Keycode) IsModifier() bool {
	return k >= KeyLeftCtrl && k <= KeyRightGUI
}

func (k Keycode) String() string {
	for name, code := range keyNames {
		if code == k {
			return name
		}
	}
	return fmt.Sprintf("0x%02x", byte(k))
}

var keyNames = map[string]Keycode{
	"SPACE":     KeySpace,
	"SHIFT":     KeyLeftShift,
	"CTRL":      KeyLeftCtrl,
	"ALT":       KeyLeftAlt,
	"WIN":       KeyLeftGUI,
	"TAB":       KeyTab,
	"ENTER":     KeyEnter,
	"ESC":       KeyEscape,
	"BACKSPACE": KeyBackspace,
	"DELETE":    KeyDelete,
	"INSERT":    KeyInsert,
	"HOME":      KeyHome,
	"END":       KeyEnd,
	"PAGEUP":    KeyPageUp,
	"PAGEDOWN":  KeyPageDown,
	"UP":        KeyUp,
	"DOWN":      KeyDown,
	"LEFT":      KeyLeft,
	"RIGHT":     KeyRight,
}

var keyAliases = map[string]string{
	"CONTROL": "CTRL",
	"CMD":     "WIN",
	"GUI":     "WIN",
	"RETURN":  "ENTER",
	"ESCAPE":  "ESC",
	"DEL":     "DELETE",
}

func init() {
	for i := 0; i < 26; i++ {
		keyNames[string(rune('A'+i))] = KeyA + Keycode(i)
	}
	keyNames["0"] = Key0
	for i := 1; i <= 9; i++ {
		keyNames[string(rune('0'+i))] = Key1 + Keycode(i-1)
	}
	for i := 1; i <= 12; i++ {
		keyNames[fmt.Sprintf("F%d", i)] = KeyF1 + Keycode(i-1)
	}
}

// Lookup finds the keycode of a key name, ignoring case.
func Lookup(name string) (Keycode, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if alias, ok := keyAliases[name]; ok {
		name = alias
	}
	code, ok := keyNames[name]
	return code, ok
}

// LookupAll maps key names to keycodes and drops unknown names.
func LookupAll(names []string) (codes []Keycode, unknown []string) {
	for _, name := range names {
		if code, ok := Lookup(name); ok {
			codes = append(codes, code)
		} else {
			unknown = append(unknown, name)
		}
	}
	return
}
