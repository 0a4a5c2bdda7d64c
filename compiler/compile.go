// Package compiler turns a pattern string into a prog.Program.
//
// The compiler is a single recursive-descent pass that emits instructions
// directly into a flat buffer. Quantifiers and alternation are lowered to
// Split and Jump instructions with absolute targets; targets that are not
// known at emission time are resolved later through a backpatch worklist.
//
// Grammar:
//
//	alt        := expr ('|' expr)*
//	expr       := term*
//	term       := (group | atom) quantifier?
//	group      := '(' alt ')'
//	atom       := literal | '.' | '\' escape | '[' class ']' | '^' | '$'
//	quantifier := '*' | '+' | '?' | '{' m (',' n?)? '}'
package compiler

import (
	"go.uber.org/zap"

	"github.com/coregx/brex/prog"
)

// Options controls compilation limits.
type Options struct {
	// MaxRepeat caps the bounds accepted in {m,n}.
	// Default: 1000
	MaxRepeat int
}

// DefaultOptions returns the default compilation options.
func DefaultOptions() Options {
	return Options{
		MaxRepeat: 1000,
	}
}

// Compile compiles pattern with the default options.
//
// Compilation is all-or-nothing: the first error aborts and no partial
// program is returned.
func Compile(pattern string) (*prog.Program, error) {
	return CompileWithOptions(pattern, DefaultOptions())
}

// CompileWithOptions compiles pattern with the given options.
func CompileWithOptions(pattern string, opts Options) (*prog.Program, error) {
	if opts.MaxRepeat <= 0 {
		opts.MaxRepeat = DefaultOptions().MaxRepeat
	}

	p := newParser(pattern, opts)
	insts, err := p.compile()
	if err != nil {
		Logger().Debug("compile failed",
			zap.String("pattern", pattern),
			zap.Error(err))
		return nil, err
	}

	program := &prog.Program{
		Insts:     insts,
		NumGroups: p.nextGroup - 1,
		Pattern:   pattern,
	}
	if err := program.Validate(); err != nil {
		return nil, &Error{Kind: ErrPatch, Pos: -1, Detail: err.Error()}
	}

	Logger().Debug("compiled pattern",
		zap.String("pattern", pattern),
		zap.Int("insts", program.Len()),
		zap.Int("groups", program.NumGroups),
		zap.Bool("anchored", program.Anchored()))
	return program, nil
}

// MustCompile is like Compile but panics if the pattern cannot be compiled.
func MustCompile(pattern string) *prog.Program {
	p, err := Compile(pattern)
	if err != nil {
		panic("compiler: Compile(`" + pattern + "`): " + err.Error())
	}
	return p
}
