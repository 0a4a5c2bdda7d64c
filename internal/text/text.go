// Package text provides a UTF-8 aware cursor over an input string.
//
// All offsets are byte offsets into the wrapped string. Matching code never
// indexes the string directly; it advances exclusively through CharAt and
// Next so that multi-byte characters are always consumed whole.
package text

import (
	"strings"
	"unicode/utf8"
)

// Text wraps an input string for character-wise traversal.
type Text struct {
	s string
}

// New returns a Text over s.
func New(s string) Text {
	return Text{s: s}
}

// String returns the wrapped string.
func (t Text) String() string {
	return t.s
}

// Len returns the length of the input in bytes.
func (t Text) Len() int {
	return len(t.s)
}

// CharAt returns the character starting at byte offset off.
//
// It reports false when off is out of range or lies strictly inside the
// encoding of a multi-byte character. Invalid UTF-8 bytes decode as
// utf8.RuneError with a width of one byte.
func (t Text) CharAt(off int) (rune, bool) {
	if off < 0 || off >= len(t.s) {
		return 0, false
	}
	if !t.isBoundary(off) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(t.s[off:])
	return r, true
}

// IsEnd reports whether no character starts at off.
func (t Text) IsEnd(off int) bool {
	_, ok := t.CharAt(off)
	return !ok
}

// Next returns the offset immediately after the character at off.
//
// The caller must only call Next when CharAt(off) reports a character;
// Next panics otherwise.
func (t Text) Next(off int) int {
	if _, ok := t.CharAt(off); !ok {
		panic("text: Next called at offset without a character")
	}
	_, w := utf8.DecodeRuneInString(t.s[off:])
	return off + w
}

// Slice returns the input between start and end. Out-of-range bounds
// yield the empty string.
func (t Text) Slice(start, end int) string {
	if start < 0 || end > len(t.s) || start > end {
		return ""
	}
	return t.s[start:end]
}

// HasPrefixAt reports whether the input starting at off begins with s.
func (t Text) HasPrefixAt(off int, s string) bool {
	if off < 0 || off > len(t.s) {
		return false
	}
	return strings.HasPrefix(t.s[off:], s)
}

// isBoundary reports whether off is not inside a valid multi-byte sequence.
func (t Text) isBoundary(off int) bool {
	if utf8.RuneStart(t.s[off]) {
		return true
	}
	// A continuation byte is a boundary only when no valid encoding that
	// starts at most three bytes earlier covers it.
	for back := 1; back <= utf8.UTFMax-1 && off-back >= 0; back++ {
		start := off - back
		if !utf8.RuneStart(t.s[start]) {
			continue
		}
		r, w := utf8.DecodeRuneInString(t.s[start:])
		if r == utf8.RuneError && w == 1 {
			return true
		}
		return start+w <= off
	}
	return true
}
