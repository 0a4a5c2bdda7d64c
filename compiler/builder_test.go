package compiler

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/brex/prog"
)

func TestBuilderPatchEmptyWorklist(t *testing.T) {
	b := newBuilder()
	b.emit(prog.Char('a'))
	if err := b.patch(1); !errors.Is(err, ErrPatch) {
		t.Fatalf("patch on empty worklist = %v, want ErrPatch", err)
	}
}

func TestBuilderPatchResolvesInLIFOOrder(t *testing.T) {
	b := newBuilder()
	b.emitSplit()                               // 0
	b.emit(prog.Char('a'))                      // 1
	b.deferPatch(b.emit(prog.Jump(unresolved))) // 2
	b.emit(prog.Char('b'))                      // 3

	if err := b.patch(4); err != nil { // jump
		t.Fatal(err)
	}
	if err := b.patch(3); err != nil { // split
		t.Fatal(err)
	}

	want := []prog.Inst{prog.Split(1, 3), prog.Char('a'), prog.Jump(4), prog.Char('b')}
	if diff := cmp.Diff(want, b.insts); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderPatchRejectsResolvedInstruction(t *testing.T) {
	b := newBuilder()
	b.deferPatch(b.emit(prog.Char('a')))
	if err := b.patch(1); !errors.Is(err, ErrPatch) {
		t.Fatalf("patch of a char = %v, want ErrPatch", err)
	}
}

func TestBuilderCutRejectsPendingTargets(t *testing.T) {
	b := newBuilder()
	b.emit(prog.Char('a'))
	b.emitSplit()
	if _, err := b.cut(1); !errors.Is(err, ErrPatch) {
		t.Fatalf("cut across pending split = %v, want ErrPatch", err)
	}
}

func TestBuilderCutAndSpliceRelocate(t *testing.T) {
	b := newBuilder()
	b.emit(prog.Char('x'))
	// a*: split 2, 4; a; jmp 1
	b.emit(prog.Split(2, 4))
	b.emit(prog.Char('a'))
	b.emit(prog.Jump(1))

	frag, err := b.cut(1)
	if err != nil {
		t.Fatal(err)
	}
	wantFrag := fragment{prog.Split(1, 3), prog.Char('a'), prog.Jump(0)}
	if diff := cmp.Diff(wantFrag, frag); diff != "" {
		t.Fatalf("fragment mismatch (-want +got):\n%s", diff)
	}
	if b.pc() != 1 {
		t.Fatalf("pc after cut = %d, want 1", b.pc())
	}

	b.emit(prog.Char('y'))
	b.splice(frag)
	want := []prog.Inst{prog.Char('x'), prog.Char('y'), prog.Split(3, 5), prog.Char('a'), prog.Jump(2)}
	if diff := cmp.Diff(want, b.insts); diff != "" {
		t.Errorf("spliced instructions mismatch (-want +got):\n%s", diff)
	}

	// The fragment itself is not modified by splicing.
	if diff := cmp.Diff(wantFrag, frag); diff != "" {
		t.Errorf("fragment changed after splice (-want +got):\n%s", diff)
	}
}
