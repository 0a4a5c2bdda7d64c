// Package brex provides a backtracking regular expression engine for Go.
//
// Patterns are compiled into a flat instruction program and executed by a
// backtracking VM. The dialect supports literals, '.', anchors '^' and '$',
// character classes, the shorthands \d and \w, groups, alternation, the
// quantifiers * + ? and {m,n}, and back-references \1 to \9.
//
// Basic usage:
//
//	re, err := brex.Compile(`(\w+) \1`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(re.MatchString("hello hello")) // true
//
// Matching is leftmost-first: the earliest start offset wins, and at each
// choice point the first alternative and the longest repetition are tried
// first. Because of back-references, matching is not guaranteed to run in
// polynomial time; Config.MaxSteps bounds the work done per start offset.
package brex

import (
	"errors"

	"github.com/coregx/brex/internal/conv"
	"github.com/coregx/brex/meta"
	"github.com/coregx/brex/prog"
)

// Regex represents a compiled regular expression.
//
// A Regex is safe to use concurrently from multiple goroutines.
//
// Example:
//
//	re := brex.MustCompile(`hello`)
//	if re.Match([]byte("hello world")) {
//	    println("matched!")
//	}
type Regex struct {
	engine  *meta.Engine
	pattern string
}

// CompileError represents a pattern compilation error.
type CompileError struct {
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return "brex: error parsing `" + e.Pattern + "`: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// Compile compiles a regular expression pattern.
//
// Returns a *CompileError if the pattern is invalid; use errors.Is with the
// compiler package's Err* kinds to classify it.
//
// Example:
//
//	re, err := brex.Compile(`\d{3}-\d{4}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, meta.DefaultConfig())
}

// MustCompile compiles a regular expression pattern and panics if it fails.
//
// Example:
//
//	var wordPair = brex.MustCompile(`(\w+) \1`)
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("brex: Compile(`" + pattern + "`): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles a pattern with custom configuration.
//
// An invalid configuration is reported as a *meta.ConfigError.
//
// Example:
//
//	config := brex.DefaultConfig()
//	config.MaxSteps = 100000 // give up on pathological inputs
//	re, err := brex.CompileWithConfig(`(a*)*b`, config)
func CompileWithConfig(pattern string, config meta.Config) (*Regex, error) {
	engine, err := meta.CompileWithConfig(pattern, config)
	if err != nil {
		var cfgErr *meta.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		return nil, &CompileError{Pattern: pattern, Err: err}
	}

	return &Regex{
		engine:  engine,
		pattern: pattern,
	}, nil
}

// DefaultConfig returns the default configuration for compilation.
func DefaultConfig() meta.Config {
	return meta.DefaultConfig()
}

// MatchString reports whether the string s contains any match of pattern.
func MatchString(pattern, s string) (bool, error) {
	re, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}

// QuoteMeta returns a string that escapes all metacharacters inside the
// argument text; the returned string is a pattern matching the literal
// text.
//
// Example:
//
//	escaped := brex.QuoteMeta("1+1=2?")
//	// escaped = `1\+1=2\?`
func QuoteMeta(s string) string {
	const special = `\.+*?()|[]{}^$-`

	n := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, len(s)+n)
	j := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			buf[j] = '\\'
			j++
		}
		buf[j] = s[i]
		j++
	}
	return string(buf)
}

func isSpecial(c byte, special string) bool {
	for i := 0; i < len(special); i++ {
		if c == special[i] {
			return true
		}
	}
	return false
}

// Match reports whether the byte slice b contains any match of the pattern.
func (r *Regex) Match(b []byte) bool {
	return r.engine.IsMatch(conv.BytesToString(b))
}

// MatchString reports whether the string s contains any match of the pattern.
func (r *Regex) MatchString(s string) bool {
	return r.engine.IsMatch(s)
}

// Find returns a slice holding the text of the leftmost match in b.
// A return value of nil indicates no match.
func (r *Regex) Find(b []byte) []byte {
	m := r.engine.Find(conv.BytesToString(b))
	if m == nil {
		return nil
	}
	return b[m.Start():m.End():m.End()]
}

// FindString returns a string holding the text of the leftmost match in s.
// If there is no match, the return value is an empty string, but it will
// also be empty if the pattern successfully matches an empty string. Use
// FindStringIndex if it is necessary to distinguish these cases.
func (r *Regex) FindString(s string) string {
	m := r.engine.Find(s)
	if m == nil {
		return ""
	}
	return m.String()
}

// FindIndex returns a two-element slice of integers defining the location
// of the leftmost match in b. A return value of nil indicates no match.
func (r *Regex) FindIndex(b []byte) []int {
	return r.FindStringIndex(conv.BytesToString(b))
}

// FindStringIndex returns a two-element slice of integers defining the
// location of the leftmost match in s. A return value of nil indicates no
// match.
func (r *Regex) FindStringIndex(s string) []int {
	m := r.engine.Find(s)
	if m == nil {
		return nil
	}
	return []int{m.Start(), m.End()}
}

// FindStringSubmatchIndex returns a slice holding the index pairs of the
// leftmost match and its groups. Pair 0 is the whole match and pair n is
// group n; a group that did not participate has the pair -1, -1. A return
// value of nil indicates no match.
func (r *Regex) FindStringSubmatchIndex(s string) []int {
	m := r.engine.FindSubmatch(s)
	if m == nil {
		return nil
	}
	return m.Slots()
}

// FindSubmatchIndex is like FindStringSubmatchIndex for a byte slice.
func (r *Regex) FindSubmatchIndex(b []byte) []int {
	return r.FindStringSubmatchIndex(conv.BytesToString(b))
}

// FindStringSubmatch returns a slice of strings holding the text of the
// leftmost match and its groups. A group that did not participate is "".
// A return value of nil indicates no match.
func (r *Regex) FindStringSubmatch(s string) []string {
	m := r.engine.FindSubmatch(s)
	if m == nil {
		return nil
	}
	out := make([]string, m.NumGroups())
	for i := range out {
		out[i] = m.Group(i)
	}
	return out
}

// FindSubmatch returns a slice of byte slices holding the text of the
// leftmost match and its groups. A group that did not participate is nil.
// A return value of nil indicates no match.
func (r *Regex) FindSubmatch(b []byte) [][]byte {
	m := r.engine.FindSubmatch(conv.BytesToString(b))
	if m == nil {
		return nil
	}
	out := make([][]byte, m.NumGroups())
	for i := range out {
		if idx := m.GroupIndex(i); idx != nil {
			out[i] = b[idx[0]:idx[1]:idx[1]]
		}
	}
	return out
}

// NumSubexp returns the number of parenthesized groups in the pattern.
func (r *Regex) NumSubexp() int {
	return r.engine.NumGroups()
}

// String returns the source text used to compile the regular expression.
func (r *Regex) String() string {
	return r.pattern
}

// Program returns the compiled instruction program.
func (r *Regex) Program() *prog.Program {
	return r.engine.Program()
}

// Strategy returns the search strategy selected for the pattern.
func (r *Regex) Strategy() meta.Strategy {
	return r.engine.Strategy()
}

// Stats returns the execution statistics of the underlying engine.
func (r *Regex) Stats() meta.Stats {
	return r.engine.Stats()
}
