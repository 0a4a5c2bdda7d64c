package compiler

import (
	"errors"
	"fmt"
)

// Compilation error kinds. Every error returned by Compile wraps exactly one
// of these; use errors.Is to classify.
var (
	// ErrUnknownEscape indicates a backslash followed by an unsupported character.
	ErrUnknownEscape = errors.New("unknown escape")

	// ErrIncompletedEscape indicates the pattern ends right after a backslash.
	ErrIncompletedEscape = errors.New("incomplete escape")

	// ErrUnclosedCharClass indicates a '[' without a matching ']'.
	ErrUnclosedCharClass = errors.New("unclosed character class")

	// ErrUnclosedGroup indicates a '(' without a matching ')'.
	ErrUnclosedGroup = errors.New("unclosed group")

	// ErrMisplacedAnchor indicates '$' followed by further pattern characters.
	ErrMisplacedAnchor = errors.New("misplaced anchor")

	// ErrInvalidQuantifier indicates a malformed or out of range {m,n}.
	ErrInvalidQuantifier = errors.New("invalid quantifier")

	// ErrPatch indicates a backpatch target could not be resolved. It is an
	// internal invariant violation, never a property of the pattern.
	ErrPatch = errors.New("backpatch resolution failed")

	// ErrGroupNumMiss indicates a ')' with no open group.
	ErrGroupNumMiss = errors.New("group number stack underflow")
)

// Error describes where and why compilation failed.
type Error struct {
	// Kind is one of the Err* sentinels.
	Kind error

	// Pos is the byte offset in the pattern where the error was detected.
	Pos int

	// Char is the offending character for ErrUnknownEscape.
	Char rune

	// Detail is optional extra context.
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if errors.Is(e.Kind, ErrUnknownEscape) {
		msg = fmt.Sprintf("%s '\\%c'", msg, e.Char)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Pos < 0 {
		return msg
	}
	return fmt.Sprintf("%s at position %d", msg, e.Pos)
}

// Unwrap returns the error kind
func (e *Error) Unwrap() error {
	return e.Kind
}
