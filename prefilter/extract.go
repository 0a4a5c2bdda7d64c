package prefilter

import (
	"bytes"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/coregx/brex/internal/sparse"
	"github.com/coregx/brex/prog"
)

// DefaultMaxLiterals is the largest literal set Extract builds by default.
const DefaultMaxLiterals = 16

// maxLiteralLen caps the length of a single extracted literal in bytes.
const maxLiteralLen = 32

// Literals is a set of byte strings at least one of which starts every
// match of a program.
type Literals struct {
	// Lits holds the literals, sorted and with no element a prefix of
	// another.
	Lits [][]byte

	// Complete is true when the program matches exactly the single literal
	// and nothing else, so that finding the literal is finding the match.
	Complete bool
}

// Len returns the number of literals.
func (l Literals) Len() int {
	return len(l.Lits)
}

// IsEmpty reports whether no usable literals were extracted.
func (l Literals) IsEmpty() bool {
	return len(l.Lits) == 0
}

type partial struct {
	lit []byte
	pc  int
}

// Extract walks p from its entry point and collects the literal prefixes
// that every match must start with.
//
// The walk follows forward jumps, splits and group markers without
// consuming input and extends a literal through each Char instruction it
// reaches. A backward edge, any other instruction, or the length cap ends
// the literal. If some path can reach
// a non-literal instruction with an empty prefix, or the set would exceed
// maxLiterals, Extract returns an empty set: a prefilter would then have to
// report every offset as a candidate.
func Extract(p *prog.Program, maxLiterals int) Literals {
	if p.Len() == 0 || maxLiterals <= 0 {
		return Literals{}
	}

	var (
		out     [][]byte
		work    = []partial{{pc: p.Entry()}}
		seen    = make(map[string]struct{})
		closure = sparse.New(p.Len())
	)
	for len(work) > 0 {
		pt := work[len(work)-1]
		work = work[:len(work)-1]

		closure.Clear()
		epsilonClosure(p, pt.pc, closure)
		for _, pc := range closure.Values() {
			inst := p.Insts[pc]
			if isEpsilon(inst.Op) && !backward(inst, pc) {
				continue
			}
			if inst.Op == prog.OpChar && inst.Rune != utf8.RuneError && len(pt.lit) < maxLiteralLen {
				lit := utf8.AppendRune(bytes.Clone(pt.lit), inst.Rune)
				key := strconv.Itoa(pc+1) + ":" + string(lit)
				if _, dup := seen[key]; !dup {
					seen[key] = struct{}{}
					work = append(work, partial{lit: lit, pc: pc + 1})
				}
			} else {
				if len(pt.lit) == 0 {
					return Literals{}
				}
				out = append(out, pt.lit)
			}
			if len(out)+len(work) > maxLiterals {
				return Literals{}
			}
		}
	}

	lits := minimize(out)
	if len(lits) == 0 || len(lits) > maxLiterals {
		return Literals{}
	}
	whole, ok := literalOf(p)
	return Literals{Lits: lits, Complete: ok && len(lits) == 1 && bytes.Equal(whole, lits[0])}
}

func isEpsilon(op prog.Op) bool {
	switch op {
	case prog.OpJump, prog.OpSplit, prog.OpGroupBegin, prog.OpGroupEnd:
		return true
	}
	return false
}

// backward reports whether inst has a control edge to itself or an earlier
// instruction, which closes a loop.
func backward(inst prog.Inst, pc int) bool {
	switch inst.Op {
	case prog.OpJump:
		return inst.X <= pc
	case prog.OpSplit:
		return inst.X <= pc || inst.Y <= pc
	}
	return false
}

// epsilonClosure adds to set every instruction reachable from pc without
// consuming input. Zero-width assertions and backward edges are not
// followed.
func epsilonClosure(p *prog.Program, pc int, set *sparse.Set) {
	stack := []int{pc}
	for len(stack) > 0 {
		pc := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !set.Insert(pc) {
			continue
		}
		inst := p.Insts[pc]
		if backward(inst, pc) {
			continue
		}
		switch inst.Op {
		case prog.OpJump:
			stack = append(stack, inst.X)
		case prog.OpSplit:
			// Push Y first so that X is explored first.
			stack = append(stack, inst.Y, inst.X)
		case prog.OpGroupBegin, prog.OpGroupEnd:
			stack = append(stack, pc+1)
		}
	}
}

// minimize sorts and deduplicates lits and drops every literal that has
// another literal as a prefix: wherever it occurs, the shorter one does too.
func minimize(lits [][]byte) [][]byte {
	sort.Slice(lits, func(i, j int) bool {
		return bytes.Compare(lits[i], lits[j]) < 0
	})
	out := lits[:0]
	for _, lit := range lits {
		if n := len(out); n > 0 && bytes.HasPrefix(lit, out[n-1]) {
			continue
		}
		out = append(out, lit)
	}
	return out
}

// literalOf returns the text matched by p when p is an unanchored
// sequence of Char instructions followed by Match.
func literalOf(p *prog.Program) ([]byte, bool) {
	if p.NumGroups != 0 || p.Anchored() {
		return nil, false
	}
	var lit []byte
	for i, inst := range p.Insts {
		switch {
		case inst.Op == prog.OpMatch:
			return lit, i == p.Len()-1 && i > 0
		case inst.Op != prog.OpChar || inst.Rune == utf8.RuneError:
			return nil, false
		}
		lit = utf8.AppendRune(lit, inst.Rune)
	}
	return nil, false
}
