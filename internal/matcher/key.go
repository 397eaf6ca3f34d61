// Package matcher turns keystrokes into a typed position for the active verse.
package matcher

import (
	"unicode"
	"unicode/utf8"
)

// Key is a single printable character, KeyBackspace or KeyEnter.
type Key string

const (
	KeyBackspace Key = "Backspace"
	KeyEnter     Key = "Enter"
	KeySpace     Key = " "
)

// ParseKey validates a raw key code. Anything other than a single printable
// rune, Backspace or Enter is rejected.
func ParseKey(raw string) (Key, bool) {
	switch Key(raw) {
	case KeyBackspace, KeyEnter:
		return Key(raw), true
	}
	if utf8.RuneCountInString(raw) != 1 {
		return "", false
	}
	r, _ := utf8.DecodeRuneInString(raw)
	if r == utf8.RuneError || !unicode.IsPrint(r) {
		return "", false
	}
	return Key(raw), true
}

// Rune returns the character of a printable key.
func (k Key) Rune() rune {
	r, _ := utf8.DecodeRuneInString(string(k))
	return r
}
