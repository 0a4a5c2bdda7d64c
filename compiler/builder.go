package compiler

import (
	"github.com/coregx/brex/prog"
)

// unresolved marks a jump or split target that is still on the worklist.
const unresolved = -1

// builder accumulates instructions into an append-only buffer and tracks
// the targets that are not known yet.
//
// Every Split or Jump emitted with an open target is pushed on the worklist
// by its instruction index. patch pops the most recent entry and writes the
// now-known absolute address into the open field: Y for Split, X for Jump.
type builder struct {
	insts   []prog.Inst
	pending []int
}

func newBuilder() *builder {
	return &builder{insts: make([]prog.Inst, 0, 16)}
}

// pc returns the index the next emitted instruction will occupy.
func (b *builder) pc() int {
	return len(b.insts)
}

// emit appends an instruction and returns its index.
func (b *builder) emit(inst prog.Inst) int {
	b.insts = append(b.insts, inst)
	return len(b.insts) - 1
}

// emitSplit appends a Split preferring the next instruction, with the
// alternative left open on the worklist.
func (b *builder) emitSplit() int {
	pc := b.emit(prog.Split(b.pc()+1, unresolved))
	b.pending = append(b.pending, pc)
	return pc
}

// deferPatch puts an already emitted instruction on the worklist.
func (b *builder) deferPatch(pc int) {
	b.pending = append(b.pending, pc)
}

// patch resolves the most recently deferred target to target.
func (b *builder) patch(target int) error {
	if len(b.pending) == 0 {
		return &Error{Kind: ErrPatch, Pos: -1, Detail: "worklist is empty"}
	}
	pc := b.pending[len(b.pending)-1]
	b.pending = b.pending[:len(b.pending)-1]

	inst := &b.insts[pc]
	switch {
	case inst.Op == prog.OpSplit && inst.Y == unresolved:
		inst.Y = target
	case inst.Op == prog.OpJump && inst.X == unresolved:
		inst.X = target
	default:
		return &Error{Kind: ErrPatch, Pos: -1, Detail: "instruction " + inst.String() + " has no open target"}
	}
	return nil
}

// fragment is a run of instructions whose targets are relative to the
// start of the run.
type fragment []prog.Inst

// cut removes insts[start:] from the buffer and returns it as a fragment.
// A fragment must be self-contained: cutting across a pending worklist
// entry is an internal error.
func (b *builder) cut(start int) (fragment, error) {
	for _, pc := range b.pending {
		if pc >= start {
			return nil, &Error{Kind: ErrPatch, Pos: -1, Detail: "fragment owns an unresolved target"}
		}
	}
	frag := make(fragment, len(b.insts)-start)
	copy(frag, b.insts[start:])
	relocate(frag, -start)
	b.insts = b.insts[:start]
	return frag, nil
}

// splice appends a copy of frag relocated to the current pc.
func (b *builder) splice(frag fragment) {
	base := b.pc()
	b.insts = append(b.insts, frag...)
	relocate(b.insts[base:], base)
}

func relocate(insts []prog.Inst, delta int) {
	for i := range insts {
		switch insts[i].Op {
		case prog.OpJump:
			insts[i].X += delta
		case prog.OpSplit:
			insts[i].X += delta
			insts[i].Y += delta
		}
	}
}

// star emits frag as a greedy zero-or-more loop:
//
//	L:  split L+1, L2
//	    <frag>
//	    jmp L
//	L2:
func (b *builder) star(frag fragment) error {
	loop := b.emitSplit()
	b.splice(frag)
	b.emit(prog.Jump(loop))
	return b.patch(b.pc())
}

// quest emits frag as a greedy zero-or-one choice:
//
//	L:  split L+1, L2
//	    <frag>
//	L2:
func (b *builder) quest(frag fragment) error {
	b.emitSplit()
	b.splice(frag)
	return b.patch(b.pc())
}
