package prefilter

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/brex/compiler"
	"github.com/coregx/brex/vm"
)

func litStrings(l Literals) []string {
	if l.IsEmpty() {
		return nil
	}
	out := make([]string, len(l.Lits))
	for i, lit := range l.Lits {
		out[i] = string(lit)
	}
	return out
}

func TestExtract(t *testing.T) {
	long := strings.Repeat("x", 40)

	tests := []struct {
		pattern  string
		want     []string
		complete bool
	}{
		{"hello", []string{"hello"}, true},
		{"日本", []string{"日本"}, true},
		{"^hello", []string{"hello"}, false},
		{"abc$", []string{"abc"}, false},
		{"a.c", []string{"a"}, false},
		{"foo|bar", []string{"bar", "foo"}, false},
		{"(foo|bar)baz", []string{"barbaz", "foobaz"}, false},
		{"ab*c", []string{"ab", "ac"}, false},
		{"a+b", []string{"aa", "ab"}, false},
		{"x*abc", []string{"abc", "x"}, false},
		{"(ab)*c", []string{"ab", "c"}, false},
		{"ab|abc", []string{"ab"}, false},
		{"colou?r", []string{"color", "colour"}, false},
		{"(a|)b", []string{"ab", "b"}, false},
		{long, []string{long[:maxLiteralLen]}, false},

		// No literal every match must start with.
		{"", nil, false},
		{"a*", nil, false},
		{".abc", nil, false},
		{`\d+x`, nil, false},
		{"a|.", nil, false},
		{"[ab]c", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			lits := Extract(compiler.MustCompile(tt.pattern), DefaultMaxLiterals)
			if diff := cmp.Diff(tt.want, litStrings(lits)); diff != "" {
				t.Errorf("literals mismatch (-want +got):\n%s", diff)
			}
			if lits.Complete != tt.complete {
				t.Errorf("Complete = %v, want %v", lits.Complete, tt.complete)
			}
		})
	}
}

func TestExtractRespectsMaxLiterals(t *testing.T) {
	branches := make([]string, 17)
	for i := range branches {
		branches[i] = string(rune('a' + i))
	}
	p := compiler.MustCompile(strings.Join(branches, "|"))

	if lits := Extract(p, 16); !lits.IsEmpty() {
		t.Errorf("Extract with limit 16 = %v, want empty", litStrings(lits))
	}
	if lits := Extract(p, 32); lits.Len() != 17 {
		t.Errorf("Extract with limit 32 found %d literals, want 17", lits.Len())
	}
}

func TestExtractSkipsReplacementChar(t *testing.T) {
	// An invalid byte in the pattern compiles to a char that matches any
	// invalid byte in the input, which no literal can express.
	if lits := Extract(compiler.MustCompile("\xffa"), DefaultMaxLiterals); !lits.IsEmpty() {
		t.Errorf("Extract = %v, want empty", litStrings(lits))
	}
}

func TestNew(t *testing.T) {
	if pf := New(Literals{}); pf != nil {
		t.Errorf("New(empty) = %T, want nil", pf)
	}

	pf := New(Literals{Lits: [][]byte{[]byte("hello")}, Complete: true})
	if _, ok := pf.(*Memmem); !ok {
		t.Fatalf("single literal: got %T, want *Memmem", pf)
	}
	if !pf.IsComplete() || pf.LiteralLen() != 5 || pf.Len() != 1 {
		t.Errorf("Memmem: complete=%v len=%d n=%d", pf.IsComplete(), pf.LiteralLen(), pf.Len())
	}

	pf = New(Literals{Lits: [][]byte{[]byte("bar"), []byte("foo")}})
	if _, ok := pf.(*AhoCorasick); !ok {
		t.Fatalf("two literals: got %T, want *AhoCorasick", pf)
	}
	if pf.IsComplete() || pf.LiteralLen() != 0 || pf.Len() != 2 {
		t.Errorf("AhoCorasick: complete=%v len=%d n=%d", pf.IsComplete(), pf.LiteralLen(), pf.Len())
	}
}

func TestMemmemFind(t *testing.T) {
	pf := New(Literals{Lits: [][]byte{[]byte("hello")}})
	haystack := []byte("foo hello bar hello")

	tests := []struct {
		start int
		want  int
	}{
		{0, 4},
		{4, 4},
		{5, 14},
		{15, -1},
		{-1, -1},
		{len(haystack), -1},
		{100, -1},
	}
	for _, tt := range tests {
		if got := pf.Find(haystack, tt.start); got != tt.want {
			t.Errorf("Find(%d) = %d, want %d", tt.start, got, tt.want)
		}
	}
}

func TestAhoCorasickFind(t *testing.T) {
	pf := New(Literals{Lits: [][]byte{[]byte("bar"), []byte("foo")}})
	haystack := []byte("xxbarfoo")

	tests := []struct {
		start int
		want  int
	}{
		{0, 2},
		{2, 2},
		{3, 5},
		{6, -1},
		{len(haystack), -1},
	}
	for _, tt := range tests {
		if got := pf.Find(haystack, tt.start); got != tt.want {
			t.Errorf("Find(%d) = %d, want %d", tt.start, got, tt.want)
		}
	}
}

// TestAhoCorasickFindOverlapping covers a short literal that ends inside a
// longer one starting further left.
func TestAhoCorasickFindOverlapping(t *testing.T) {
	tests := []struct {
		lits     []string
		haystack string
		start    int
		want     int
	}{
		{[]string{"abcd", "bc"}, "abcd", 0, 0},
		{[]string{"abcd", "bc"}, "xxabcd", 0, 2},
		{[]string{"abcd", "bc"}, "abcd", 1, 1},
		{[]string{"abcd", "bc"}, "abcx", 0, 1},
		{[]string{"hello world", "lo"}, "say hello world", 0, 4},
		{[]string{"hello world", "lo"}, "say hello there", 0, 7},
		{[]string{"abc", "bcd", "cd"}, "zabcd", 0, 1},
		{[]string{"abcde", "bcd", "c"}, "abcde", 2, 2},
	}

	for _, tt := range tests {
		lits := make([][]byte, len(tt.lits))
		for i, l := range tt.lits {
			lits[i] = []byte(l)
		}
		pf := New(Literals{Lits: lits})
		if got := pf.Find([]byte(tt.haystack), tt.start); got != tt.want {
			t.Errorf("%q in %q from %d: Find = %d, want %d", tt.lits, tt.haystack, tt.start, got, tt.want)
		}
	}
}

// TestCandidatesCoverMatches checks the prefilter contract: every offset
// where the program matches is reported as a candidate.
func TestCandidatesCoverMatches(t *testing.T) {
	patterns := []string{
		"hello", "foo|bar", "(foo|bar)baz", "ab*c", "a+b", "x*abc",
		"colou?r", "(ab)*c", `(a|b)x\1`, "日本", `abcd|bc\d`,
		`(hello world|lo\d)`,
	}
	inputs := []string{
		"", "hello world", "foobarbaz", "ac abc abbbc", "aab ab b",
		"xxabc abc", "color colour", "axa bxb", "日本語 日本", "abcd",
		"xxabcd bc1", "say hello world",
	}

	for _, pattern := range patterns {
		p := compiler.MustCompile(pattern)
		pf := New(Extract(p, DefaultMaxLiterals))
		if pf == nil {
			t.Errorf("%q: no prefilter", pattern)
			continue
		}
		bt := vm.New(p)
		for _, input := range inputs {
			h := []byte(input)
			next := -1 // leftmost match offset at or after off
			for off := len(input); off >= 0; off-- {
				if bt.Run(input, off) {
					next = off
					if pf.Find(h, off) != off {
						t.Errorf("%q on %q: match at %d is not a candidate", pattern, input, off)
					}
				}
				// A search from off must not skip past the next match.
				if got := pf.Find(h, off); next != -1 && (got == -1 || got > next) {
					t.Errorf("%q on %q: Find(%d) = %d skips the match at %d", pattern, input, off, got, next)
				}
			}
		}
	}
}
