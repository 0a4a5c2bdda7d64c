// Package prog defines the bytecode executed by the matching VM.
//
// A Program is a flat, immutable sequence of instructions. Control transfer
// instructions (Jump, Split) carry absolute instruction indices. Group
// markers and back-references carry 1-based group numbers.
package prog

import (
	"fmt"
	"strings"
	"unicode"
)

// Op identifies the kind of an instruction and determines which Inst fields
// are meaningful.
type Op uint8

const (
	// OpChar matches exactly Inst.Rune.
	OpChar Op = iota

	// OpAnyChar matches any single character.
	OpAnyChar

	// OpStart asserts the input offset is 0. Zero-width.
	OpStart

	// OpEnd asserts no character remains. Zero-width.
	OpEnd

	// OpMatch terminates execution successfully.
	OpMatch

	// OpJump transfers control to Inst.X.
	OpJump

	// OpSplit tries Inst.X first and Inst.Y on failure.
	OpSplit

	// OpCharClass matches a character against Inst.Class.
	OpCharClass

	// OpDigit matches an ASCII decimal digit.
	OpDigit

	// OpWord matches a word character: letter, number or underscore.
	OpWord

	// OpGroupBegin records the start offset of group Inst.N.
	OpGroupBegin

	// OpGroupEnd records the end offset of group Inst.N.
	OpGroupEnd

	// OpRef matches the text captured by group Inst.N.
	OpRef
)

// String returns a human-readable representation of the Op.
func (o Op) String() string {
	switch o {
	case OpChar:
		return "Char"
	case OpAnyChar:
		return "AnyChar"
	case OpStart:
		return "Start"
	case OpEnd:
		return "End"
	case OpMatch:
		return "Match"
	case OpJump:
		return "Jump"
	case OpSplit:
		return "Split"
	case OpCharClass:
		return "CharClass"
	case OpDigit:
		return "Digit"
	case OpWord:
		return "Word"
	case OpGroupBegin:
		return "GroupBegin"
	case OpGroupEnd:
		return "GroupEnd"
	case OpRef:
		return "Ref"
	default:
		return fmt.Sprintf("Unknown(%d)", o)
	}
}

// Inst is a single bytecode instruction.
type Inst struct {
	Op Op

	// Rune is the literal for OpChar.
	Rune rune

	// X is the target of OpJump and the preferred target of OpSplit.
	X int

	// Y is the alternative target of OpSplit.
	Y int

	// N is the group number for OpGroupBegin, OpGroupEnd and OpRef.
	N int

	// Class is the set for OpCharClass.
	Class *CharClass
}

// Char returns an OpChar instruction for r.
func Char(r rune) Inst { return Inst{Op: OpChar, Rune: r} }

// Jump returns an OpJump instruction to target.
func Jump(target int) Inst { return Inst{Op: OpJump, X: target} }

// Split returns an OpSplit instruction preferring x over y.
func Split(x, y int) Inst { return Inst{Op: OpSplit, X: x, Y: y} }

// GroupBegin returns an OpGroupBegin instruction for group n.
func GroupBegin(n int) Inst { return Inst{Op: OpGroupBegin, N: n} }

// GroupEnd returns an OpGroupEnd instruction for group n.
func GroupEnd(n int) Inst { return Inst{Op: OpGroupEnd, N: n} }

// Ref returns an OpRef instruction for group n.
func Ref(n int) Inst { return Inst{Op: OpRef, N: n} }

// Op-only instructions.
var (
	AnyChar = Inst{Op: OpAnyChar}
	Start   = Inst{Op: OpStart}
	End     = Inst{Op: OpEnd}
	Match   = Inst{Op: OpMatch}
	Digit   = Inst{Op: OpDigit}
	Word    = Inst{Op: OpWord}
)

// Consumes reports whether the instruction consumes exactly one character.
// These are the instructions accepted by Matches.
func (i Inst) Consumes() bool {
	switch i.Op {
	case OpChar, OpAnyChar, OpCharClass, OpDigit, OpWord:
		return true
	}
	return false
}

// Matches reports whether the instruction accepts the single character r.
//
// Zero-width and control instructions never accept a character; the VM
// handles them structurally.
func (i Inst) Matches(r rune) bool {
	switch i.Op {
	case OpChar:
		return i.Rune == r
	case OpAnyChar:
		return true
	case OpCharClass:
		return i.Class != nil && i.Class.Matches(r)
	case OpDigit:
		return IsDigit(r)
	case OpWord:
		return IsWord(r)
	}
	return false
}

// IsDigit reports whether r is an ASCII decimal digit.
func IsDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// IsWord reports whether r is a letter, a number or an underscore.
func IsWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// String returns a disassembly of the instruction.
func (i Inst) String() string {
	switch i.Op {
	case OpChar:
		return fmt.Sprintf("char %q", i.Rune)
	case OpAnyChar:
		return "any"
	case OpStart:
		return "start"
	case OpEnd:
		return "end"
	case OpMatch:
		return "match"
	case OpJump:
		return fmt.Sprintf("jmp %d", i.X)
	case OpSplit:
		return fmt.Sprintf("split %d, %d", i.X, i.Y)
	case OpCharClass:
		return "class " + i.Class.String()
	case OpDigit:
		return "digit"
	case OpWord:
		return "word"
	case OpGroupBegin:
		return fmt.Sprintf("group %d begin", i.N)
	case OpGroupEnd:
		return fmt.Sprintf("group %d end", i.N)
	case OpRef:
		return fmt.Sprintf("ref %d", i.N)
	}
	return "?"
}

// RuneRange is an inclusive range of characters.
type RuneRange struct {
	Lo, Hi rune
}

// CharClass is a bracketed character set.
//
// Ranges is sorted and non-overlapping. Digit and Word add the \d and \w
// sets when those escapes appear inside the brackets.
type CharClass struct {
	Negated bool
	Ranges  []RuneRange
	Digit   bool
	Word    bool
}

// Matches reports whether r is accepted by the class.
func (c *CharClass) Matches(r rune) bool {
	return c.contains(r) != c.Negated
}

func (c *CharClass) contains(r rune) bool {
	if c.Digit && IsDigit(r) {
		return true
	}
	if c.Word && IsWord(r) {
		return true
	}
	lo, hi := 0, len(c.Ranges)
	for lo < hi {
		m := int(uint(lo+hi) >> 1)
		switch rr := c.Ranges[m]; {
		case r < rr.Lo:
			hi = m
		case r > rr.Hi:
			lo = m + 1
		default:
			return true
		}
	}
	return false
}

// String renders the class in bracket syntax.
func (c *CharClass) String() string {
	if c == nil {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	if c.Negated {
		sb.WriteByte('^')
	}
	if c.Digit {
		sb.WriteString(`\d`)
	}
	if c.Word {
		sb.WriteString(`\w`)
	}
	for _, rr := range c.Ranges {
		sb.WriteRune(rr.Lo)
		if rr.Hi != rr.Lo {
			if rr.Hi > rr.Lo+1 {
				sb.WriteByte('-')
			}
			sb.WriteRune(rr.Hi)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
