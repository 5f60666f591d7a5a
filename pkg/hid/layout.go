package hid

import (
	"fmt"
	"strings"
)

// keyNonUSBackslash is the extra key next to left shift on ISO boards.
const keyNonUSBackslash Keycode = 0x64

// UnsupportedRuneError is returned when a layout cannot type a rune.
type UnsupportedRuneError struct {
	Layout string
	Rune   rune
}

// Error implements error.
func (e *UnsupportedRuneError) Error() string {
	return fmt.Sprintf("layout %s cannot type %q", e.Layout, e.Rune)
}

// Layout maps characters to the keys typing them on a host keyboard
// layout.
type Layout struct {
	name string
	keys map[rune][]Keycode
}

// Name returns the layout name.
func (l *Layout) Name() string {
	return l.name
}

// Keys returns the keys typing r.
func (l *Layout) Keys(r rune) ([]Keycode, bool) {
	codes, ok := l.keys[r]
	return codes, ok
}

// Type taps the keys of every character in text. It stops at the
// first character the layout cannot type.
func (l *Layout) Type(kb Keyboard, text string) error {
	for _, r := range text {
		codes, ok := l.keys[r]
		if !ok {
			return &UnsupportedRuneError{Layout: l.name, Rune: r}
		}
		if err := Tap(kb, codes...); err != nil {
			return err
		}
	}
	return nil
}

// LayoutByName finds a layout by its name, "us" or "de".
func LayoutByName(name string) (*Layout, error) {
	switch strings.ToLower(name) {
	case "", "us":
		return USLayout, nil
	case "de":
		return DELayout, nil
	}
	return nil, fmt.Errorf("unknown keyboard layout %q", name)
}

type layoutBuilder map[rune][]Keycode

func (b layoutBuilder) key(r rune, codes ...Keycode) layoutBuilder {
	b[r] = codes
	return b
}

// pairs binds plain[i] to codes[i] and shifted[i] to shift+codes[i].
// A space leaves the character unbound.
func (b layoutBuilder) pairs(plain, shifted string, codes ...Keycode) layoutBuilder {
	p, s := []rune(plain), []rune(shifted)
	for i, code := range codes {
		if i < len(p) && p[i] != ' ' {
			b[p[i]] = []Keycode{code}
		}
		if i < len(s) && s[i] != ' ' {
			b[s[i]] = []Keycode{KeyLeftShift, code}
		}
	}
	return b
}

func (b layoutBuilder) letters(order string) layoutBuilder {
	for i, r := range order {
		code := KeyA + Keycode(i)
		b[r] = []Keycode{code}
		b[r-'a'+'A'] = []Keycode{KeyLeftShift, code}
	}
	return b
}

func (b layoutBuilder) common() layoutBuilder {
	return b.key(' ', KeySpace).key('\n', KeyEnter).key('\t', KeyTab)
}

var digitKeys = []Keycode{Key1, Key2, Key3, Key4, Key5, Key6, Key7, Key8, Key9, Key0}

// USLayout is the US English layout.
var USLayout = &Layout{
	name: "us",
	keys: layoutBuilder{}.
		common().
		letters("abcdefghijklmnopqrstuvwxyz").
		pairs("1234567890", "!@#$%^&*()", digitKeys...).
		pairs("-=[]\\;',./`", "_+{}|:\"<>?~",
			KeyMinus, KeyEqual, KeyLeftBracket, KeyRightBracket, KeyBackslash,
			KeySemicolon, KeyQuote, KeyComma, KeyPeriod, KeySlash, KeyGrave),
}

// DELayout is the German layout.
var DELayout = &Layout{
	name: "de",
	keys: layoutBuilder{}.
		common().
		letters("abcdefghijklmnopqrstuvwxzy").
		pairs("1234567890", "!\"§$%&/()=", digitKeys...).
		pairs("ßü+öä#,.-< ", "?Ü*ÖÄ';:_>°",
			KeyMinus, KeyLeftBracket, KeyRightBracket, KeySemicolon, KeyQuote,
			keyNonUSHash, KeyComma, KeyPeriod, KeySlash, keyNonUSBackslash, KeyGrave).
		key('@', KeyRightAlt, KeyQ).
		key('€', KeyRightAlt, KeyE).
		key('{', KeyRightAlt, Key7).
		key('[', KeyRightAlt, Key8).
		key(']', KeyRightAlt, Key9).
		key('}', KeyRightAlt, Key0).
		key('\\', KeyRightAlt, KeyMinus).
		key('~', KeyRightAlt, KeyRightBracket).
		key('|', KeyRightAlt, keyNonUSBackslash),
}
