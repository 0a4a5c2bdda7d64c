package meta

import (
	"github.com/coregx/brex/prefilter"
	"github.com/coregx/brex/prog"
)

// Strategy is the search policy an Engine uses to find match start offsets.
//
// Every strategy produces the same results; they differ only in how many
// offsets reach the VM.
type Strategy int

const (
	// UseBacktrack runs the VM at every character offset from 0 through
	// the end of input, stopping at the first success.
	UseBacktrack Strategy = iota

	// UseAnchored runs the VM once at offset 0, starting after the leading
	// Start instruction. Selected when the program begins with '^'.
	UseAnchored

	// UseLiteral finds the match with the prefilter alone. Selected when
	// the pattern is a single literal with no groups.
	UseLiteral

	// UseCharScan tests each character with the program's only consuming
	// instruction. Selected for patterns such as `\d`, `.` or `[a-z]`.
	UseCharScan

	// UsePrefilter runs the VM only at offsets where a required literal
	// occurs.
	UsePrefilter
)

// String returns a human-readable representation of the Strategy.
func (s Strategy) String() string {
	switch s {
	case UseBacktrack:
		return "Backtrack"
	case UseAnchored:
		return "Anchored"
	case UseLiteral:
		return "Literal"
	case UseCharScan:
		return "CharScan"
	case UsePrefilter:
		return "Prefilter"
	default:
		return "Unknown"
	}
}

// SelectStrategy chooses the search policy for p given its prefilter,
// which may be nil.
//
// Selection order:
//  1. Anchored program → UseAnchored
//  2. Complete literal prefilter → UseLiteral
//  3. One consuming instruction then Match → UseCharScan
//  4. Any prefilter → UsePrefilter
//  5. Otherwise → UseBacktrack
func SelectStrategy(p *prog.Program, pf prefilter.Prefilter, config Config) Strategy {
	if p.Anchored() {
		return UseAnchored
	}
	if pf != nil && pf.IsComplete() {
		return UseLiteral
	}
	if config.EnableCharScan && isCharScan(p) {
		return UseCharScan
	}
	if pf != nil {
		return UsePrefilter
	}
	return UseBacktrack
}

// isCharScan reports whether p is a single consuming instruction followed
// by Match.
func isCharScan(p *prog.Program) bool {
	return p.Len() == 2 && p.Insts[0].Consumes() && p.Insts[1].Op == prog.OpMatch
}
