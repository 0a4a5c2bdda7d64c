// Package vm executes compiled programs with a backtracking interpreter.
//
// The interpreter walks the instruction sequence against the input, trying
// the first target of every Split before the second. Instead of native
// recursion it keeps an explicit stack of pending jobs: choice points that
// resume a thread at (pc, offset), and undo records that restore a capture
// slot or loop mark. Popping past an undo record rolls the capture table
// back to its state at the matching choice point, so a capture recorded on
// an abandoned path is never visible to a back-reference on another path.
package vm

import (
	"errors"
	"sync"

	"github.com/coregx/brex/internal/text"
	"github.com/coregx/brex/prog"
)

// ErrStepLimit is reported by ExecBudget when an attempt executes more
// instructions than Config.MaxSteps allows.
var ErrStepLimit = errors.New("vm: step limit exceeded")

// Config controls interpreter limits.
type Config struct {
	// MaxSteps bounds the number of instructions executed by one attempt.
	// Zero means unlimited.
	MaxSteps int
}

type jobKind uint8

const (
	jobRun jobKind = iota
	jobRestoreCap
	jobRestoreLoop
)

type job struct {
	kind jobKind
	pc   int // pc for jobRun, slot index for restore jobs
	off  int // offset for jobRun, previous value for restore jobs
}

// state is the per-search mutable state. It is pooled and must not be
// shared between goroutines.
type state struct {
	stack []job

	// caps holds two slots per group: start and end offsets, -1 when unset.
	// Pair 0 is the overall match.
	caps []int

	// loops holds, per instruction, the offset at which a Split was last
	// entered on the current path, or -1.
	loops []int
}

func (s *state) reset() {
	s.stack = s.stack[:0]
	for i := range s.caps {
		s.caps[i] = -1
	}
	for i := range s.loops {
		s.loops[i] = -1
	}
}

// Backtracker executes a Program.
//
// A Backtracker is safe for concurrent use: every call takes its own state
// from an internal pool.
type Backtracker struct {
	prog     *prog.Program
	maxSteps int
	pool     sync.Pool
}

// New returns a Backtracker for p with no step limit.
func New(p *prog.Program) *Backtracker {
	return NewWithConfig(p, Config{})
}

// NewWithConfig returns a Backtracker for p with the given limits.
func NewWithConfig(p *prog.Program, cfg Config) *Backtracker {
	b := &Backtracker{prog: p, maxSteps: cfg.MaxSteps}
	slots := b.NumSlots()
	n := p.Len()
	b.pool.New = func() any {
		return &state{
			stack: make([]job, 0, 32),
			caps:  make([]int, slots),
			loops: make([]int, n),
		}
	}
	return b
}

// Program returns the program being executed.
func (b *Backtracker) Program() *prog.Program {
	return b.prog
}

// NumSlots returns the capture table size: two slots for the overall match
// plus two per group.
func (b *Backtracker) NumSlots() int {
	return 2 * (b.prog.NumGroups + 1)
}

// Run reports whether the program matches input at byte offset start.
// Execution begins at instruction 0, so a leading Start assertion is
// checked against start.
func (b *Backtracker) Run(input string, start int) bool {
	_, ok := b.Exec(input, 0, start, nil)
	return ok
}

// Exec runs the program from instruction pc at byte offset start. On
// success it returns the end offset of the match and, when caps is
// non-nil, copies the capture table into it. An exceeded step limit is
// reported as no match.
func (b *Backtracker) Exec(input string, pc, start int, caps []int) (int, bool) {
	end, ok, _ := b.ExecBudget(input, pc, start, caps)
	return end, ok
}

// ExecBudget is like Exec but reports ErrStepLimit when the attempt was
// abandoned because it exceeded Config.MaxSteps.
func (b *Backtracker) ExecBudget(input string, pc, start int, caps []int) (int, bool, error) {
	if b.prog.Len() == 0 {
		// A degenerate program matches trivially.
		return start, true, nil
	}
	if pc < 0 || pc >= b.prog.Len() {
		return -1, false, nil
	}

	s := b.pool.Get().(*state)
	defer b.pool.Put(s)
	s.reset()

	end, ok, err := b.exec(s, text.New(input), pc, start)
	if ok {
		s.caps[0], s.caps[1] = start, end
		copy(caps, s.caps)
	}
	return end, ok, err
}

// IsMatch reports whether the program matches anywhere in input.
//
// An anchored program is run once at offset 0, starting after its leading
// Start instruction. Otherwise every character offset is tried in order,
// including the end of input, until one succeeds.
func (b *Backtracker) IsMatch(input string) bool {
	if b.prog.Len() == 0 {
		return true
	}
	if b.prog.Anchored() {
		_, ok := b.Exec(input, b.prog.Entry(), 0, nil)
		return ok
	}

	t := text.New(input)
	for off := 0; ; off = t.Next(off) {
		if _, ok := b.Exec(input, 0, off, nil); ok {
			return true
		}
		if t.IsEnd(off) {
			return false
		}
	}
}

func (s *state) push(kind jobKind, pc, off int) {
	s.stack = append(s.stack, job{kind: kind, pc: pc, off: off})
}

// exec is the interpreter loop.
//
//nolint:gocyclo,cyclop // complexity is inherent to instruction dispatch
func (b *Backtracker) exec(s *state, t text.Text, pc, off int) (int, bool, error) {
	insts := b.prog.Insts
	steps := 0

	s.push(jobRun, pc, off)
	for len(s.stack) > 0 {
		j := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		switch j.kind {
		case jobRestoreCap:
			s.caps[j.pc] = j.off
			continue
		case jobRestoreLoop:
			s.loops[j.pc] = j.off
			continue
		}

		pc, off = j.pc, j.off
	thread:
		for {
			steps++
			if b.maxSteps > 0 && steps > b.maxSteps {
				return -1, false, ErrStepLimit
			}

			inst := &insts[pc]
			switch inst.Op {
			case prog.OpMatch:
				return off, true, nil

			case prog.OpChar, prog.OpAnyChar, prog.OpCharClass, prog.OpDigit, prog.OpWord:
				r, ok := t.CharAt(off)
				if !ok || !inst.Matches(r) {
					break thread
				}
				pc++
				off = t.Next(off)

			case prog.OpStart:
				if off != 0 {
					break thread
				}
				pc++

			case prog.OpEnd:
				if !t.IsEnd(off) {
					break thread
				}
				pc++

			case prog.OpJump:
				pc = inst.X

			case prog.OpSplit:
				if s.loops[pc] == off {
					// Re-entered without consuming input since the last
					// visit on this path: only the exit remains.
					pc = inst.Y
					continue
				}
				s.push(jobRestoreLoop, pc, s.loops[pc])
				s.loops[pc] = off
				s.push(jobRun, inst.Y, off)
				pc = inst.X

			case prog.OpGroupBegin:
				lo, hi := 2*inst.N, 2*inst.N+1
				if hi >= len(s.caps) {
					break thread
				}
				s.push(jobRestoreCap, lo, s.caps[lo])
				s.push(jobRestoreCap, hi, s.caps[hi])
				s.caps[lo], s.caps[hi] = off, -1
				pc++

			case prog.OpGroupEnd:
				hi := 2*inst.N + 1
				if hi >= len(s.caps) {
					break thread
				}
				s.push(jobRestoreCap, hi, s.caps[hi])
				s.caps[hi] = off
				pc++

			case prog.OpRef:
				lo, hi := 2*inst.N, 2*inst.N+1
				if inst.N <= 0 || hi >= len(s.caps) || s.caps[lo] < 0 || s.caps[hi] < 0 {
					break thread
				}
				captured := t.Slice(s.caps[lo], s.caps[hi])
				if !t.HasPrefixAt(off, captured) {
					break thread
				}
				off += len(captured)
				pc++

			default:
				break thread
			}
		}
	}
	return -1, false, nil
}
