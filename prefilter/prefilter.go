// Package prefilter provides fast candidate filtering for pattern search
// using literals extracted from a compiled program.
//
// A prefilter quickly rejects offsets in the haystack that cannot start a
// match, so the backtracking VM only runs where one of the required
// literals occurs. The strategy depends on the extracted set:
//   - Single literal → Memmem (substring search)
//   - Several literals → AhoCorasick (multi-pattern automaton)
//
// Example usage:
//
//	lits := prefilter.Extract(p, prefilter.DefaultMaxLiterals)
//	pf := prefilter.New(lits)
//	if pf != nil {
//	    pos := pf.Find(haystack, 0)
//	}
package prefilter

import (
	"bytes"

	"github.com/coregx/ahocorasick"
)

// Prefilter finds candidate match positions before the full engine runs.
type Prefilter interface {
	// Find returns the index of the first candidate at or after start, or
	// -1 if there is none. A candidate is a position where one of the
	// literals occurs; it is a match only if IsComplete is true.
	Find(haystack []byte, start int) int

	// IsComplete reports whether a candidate is guaranteed to be a match
	// of length LiteralLen.
	IsComplete() bool

	// LiteralLen returns the length of the literal when IsComplete is true
	// and 0 otherwise.
	LiteralLen() int

	// Len returns the number of literals searched for.
	Len() int
}

// New builds the prefilter for lits. It returns nil when lits is empty or
// no prefilter can be built, in which case every offset is a candidate.
func New(lits Literals) Prefilter {
	switch lits.Len() {
	case 0:
		return nil
	case 1:
		return newMemmem(lits.Lits[0], lits.Complete)
	default:
		return newAhoCorasick(lits.Lits)
	}
}

// Memmem searches for a single literal.
type Memmem struct {
	needle   []byte
	complete bool
}

func newMemmem(needle []byte, complete bool) *Memmem {
	return &Memmem{needle: bytes.Clone(needle), complete: complete}
}

// Find implements Prefilter.
func (m *Memmem) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	idx := bytes.Index(haystack[start:], m.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// IsComplete implements Prefilter.
func (m *Memmem) IsComplete() bool {
	return m.complete
}

// LiteralLen implements Prefilter.
func (m *Memmem) LiteralLen() int {
	if m.complete {
		return len(m.needle)
	}
	return 0
}

// Len implements Prefilter.
func (m *Memmem) Len() int {
	return 1
}

// AhoCorasick searches for any of several literals at once.
type AhoCorasick struct {
	auto    *ahocorasick.Automaton
	n       int
	longest int
}

func newAhoCorasick(lits [][]byte) Prefilter {
	builder := ahocorasick.NewBuilder()
	for _, lit := range lits {
		builder.AddPattern(lit)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	longest := 0
	for _, lit := range lits {
		longest = max(longest, len(lit))
	}
	return &AhoCorasick{auto: auto, n: len(lits), longest: longest}
}

// Find implements Prefilter.
//
// The automaton stops at the occurrence that ends first, which is not the
// leftmost one when a short literal ends inside a longer one ("bc" inside
// "abcd"). Any occurrence starting further left ends at or after m.End, so
// it starts within longest bytes of m.End and is looked for there.
func (a *AhoCorasick) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	m := a.auto.Find(haystack, start)
	if m == nil {
		return -1
	}
	for p := max(start, m.End-a.longest); p < m.Start; p++ {
		window := haystack[:min(len(haystack), p+a.longest)]
		if a.auto.FindAt(window, p) != nil {
			return p
		}
	}
	return m.Start
}

// IsComplete implements Prefilter. A multi-literal set is never complete.
func (a *AhoCorasick) IsComplete() bool {
	return false
}

// LiteralLen implements Prefilter.
func (a *AhoCorasick) LiteralLen() int {
	return 0
}

// Len implements Prefilter.
func (a *AhoCorasick) Len() int {
	return a.n
}
