package prog

import (
	"fmt"
	"strings"
)

// Program is a compiled pattern.
//
// A Program is immutable after compilation and safe for concurrent use.
// The instruction sequence always ends in exactly one OpMatch.
type Program struct {
	// Insts is the instruction sequence.
	Insts []Inst

	// NumGroups is the number of capturing groups.
	NumGroups int

	// Pattern is the source pattern.
	Pattern string
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Insts)
}

// Anchored reports whether the first instruction is OpStart, which limits
// the only valid match start to offset 0.
func (p *Program) Anchored() bool {
	return len(p.Insts) > 0 && p.Insts[0].Op == OpStart
}

// Entry returns the instruction index where execution begins. For anchored
// programs the leading OpStart is checked once by the driver and skipped.
func (p *Program) Entry() int {
	if p.Anchored() {
		return 1
	}
	return 0
}

// Validate checks the structural invariants of the program: every jump and
// split target is in range, the sequence ends in a single OpMatch, and
// group markers are well nested.
func (p *Program) Validate() error {
	n := len(p.Insts)
	if n == 0 || p.Insts[n-1].Op != OpMatch {
		return fmt.Errorf("prog: program does not end in match")
	}

	var open []int
	for pc, inst := range p.Insts {
		switch inst.Op {
		case OpMatch:
			if pc != n-1 {
				return fmt.Errorf("prog: match at %d is not the final instruction", pc)
			}
		case OpJump:
			if inst.X < 0 || inst.X >= n {
				return fmt.Errorf("prog: jump at %d targets %d, out of range", pc, inst.X)
			}
		case OpSplit:
			if inst.X < 0 || inst.X >= n || inst.Y < 0 || inst.Y >= n {
				return fmt.Errorf("prog: split at %d targets %d, %d, out of range", pc, inst.X, inst.Y)
			}
		case OpGroupBegin:
			open = append(open, inst.N)
		case OpGroupEnd:
			if len(open) == 0 || open[len(open)-1] != inst.N {
				return fmt.Errorf("prog: group %d end at %d is not well nested", inst.N, pc)
			}
			open = open[:len(open)-1]
		case OpCharClass:
			if inst.Class == nil {
				return fmt.Errorf("prog: class at %d has no set", pc)
			}
		}
	}
	if len(open) != 0 {
		return fmt.Errorf("prog: group %d is never closed", open[len(open)-1])
	}
	return nil
}

// String returns a disassembly listing, one instruction per line.
func (p *Program) String() string {
	var sb strings.Builder
	for pc, inst := range p.Insts {
		fmt.Fprintf(&sb, "%4d  %s\n", pc, inst)
	}
	return sb.String()
}
