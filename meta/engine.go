// Package meta implements the search driver that turns a compiled program
// into a match over a whole input.
//
// The VM answers one question: does the program match starting at this
// offset? The driver decides which offsets to ask about. An anchored
// program is tried once at offset 0; otherwise the driver tries offsets
// from left to right, including the end of input, and the first success is
// the leftmost match. Literals extracted from the program let the driver
// skip offsets where no match can start.
package meta

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/coregx/brex/compiler"
	"github.com/coregx/brex/internal/conv"
	"github.com/coregx/brex/internal/text"
	"github.com/coregx/brex/prefilter"
	"github.com/coregx/brex/prog"
	"github.com/coregx/brex/vm"
)

// Engine couples a compiled program with its search strategy.
//
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	prog      *prog.Program
	bt        *vm.Backtracker
	prefilter prefilter.Prefilter
	strategy  Strategy
	config    Config
	stats     Stats
}

// Stats tracks execution statistics for performance analysis.
type Stats struct {
	// Searches counts top-level searches.
	Searches uint64

	// VMRuns counts VM attempts at a single offset.
	VMRuns uint64

	// PrefilterCandidates counts offsets reported by the prefilter.
	PrefilterCandidates uint64

	// PrefilterConfirms counts candidates confirmed as matches by the VM.
	PrefilterConfirms uint64

	// StepLimitHits counts VM attempts abandoned at Config.MaxSteps.
	StepLimitHits uint64
}

// Compile compiles pattern with the default configuration.
func Compile(pattern string) (*Engine, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// CompileWithConfig compiles pattern with the given configuration.
// An invalid configuration is reported as a *ConfigError before the
// pattern is parsed.
func CompileWithConfig(pattern string, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	p, err := compiler.CompileWithOptions(pattern, compiler.Options{MaxRepeat: config.MaxRepeat})
	if err != nil {
		return nil, err
	}
	return newEngine(p, config), nil
}

// NewEngine builds an engine for an already compiled program.
func NewEngine(p *prog.Program, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newEngine(p, config), nil
}

// newEngine expects a validated config.
func newEngine(p *prog.Program, config Config) *Engine {
	var pf prefilter.Prefilter
	if config.EnablePrefilter {
		pf = prefilter.New(prefilter.Extract(p, config.MaxLiterals))
	}

	e := &Engine{
		prog:      p,
		bt:        vm.NewWithConfig(p, vm.Config{MaxSteps: config.MaxSteps}),
		prefilter: pf,
		strategy:  SelectStrategy(p, pf, config),
		config:    config,
	}

	fields := []zap.Field{
		zap.String("pattern", p.Pattern),
		zap.Stringer("strategy", e.strategy),
	}
	if pf != nil {
		fields = append(fields, zap.Int("literals", pf.Len()))
	}
	Logger().Debug("engine ready", fields...)
	return e
}

// Strategy returns the search strategy in use.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Program returns the compiled program.
func (e *Engine) Program() *prog.Program {
	return e.prog
}

// NumGroups returns the number of capturing groups in the pattern.
func (e *Engine) NumGroups() int {
	return e.prog.NumGroups
}

// Stats returns a snapshot of the execution statistics.
func (e *Engine) Stats() Stats {
	return Stats{
		Searches:            atomic.LoadUint64(&e.stats.Searches),
		VMRuns:              atomic.LoadUint64(&e.stats.VMRuns),
		PrefilterCandidates: atomic.LoadUint64(&e.stats.PrefilterCandidates),
		PrefilterConfirms:   atomic.LoadUint64(&e.stats.PrefilterConfirms),
		StepLimitHits:       atomic.LoadUint64(&e.stats.StepLimitHits),
	}
}

// ResetStats resets execution statistics to zero.
func (e *Engine) ResetStats() {
	atomic.StoreUint64(&e.stats.Searches, 0)
	atomic.StoreUint64(&e.stats.VMRuns, 0)
	atomic.StoreUint64(&e.stats.PrefilterCandidates, 0)
	atomic.StoreUint64(&e.stats.PrefilterConfirms, 0)
	atomic.StoreUint64(&e.stats.StepLimitHits, 0)
}

// IsMatch reports whether the pattern matches anywhere in input.
func (e *Engine) IsMatch(input string) bool {
	_, _, ok := e.search(input, nil)
	return ok
}

// Find returns the leftmost match in input, or nil if there is none.
//
// Among matches starting at the same offset, the one reached by the
// leftmost-first alternative at every choice point wins; quantifiers are
// greedy.
func (e *Engine) Find(input string) *Match {
	start, end, ok := e.search(input, nil)
	if !ok {
		return nil
	}
	return NewMatch(start, end, input)
}

// FindSubmatch returns the leftmost match in input with the spans of its
// groups, or nil if there is none.
func (e *Engine) FindSubmatch(input string) *MatchWithCaptures {
	slots := make([]int, e.bt.NumSlots())
	for i := range slots {
		slots[i] = -1
	}
	start, end, ok := e.search(input, slots)
	if !ok {
		return nil
	}
	return &MatchWithCaptures{
		Match: Match{start: start, end: end, input: input},
		slots: slots,
	}
}

// searchCounters accumulates the statistics of one search; they are
// published once at the end to keep atomics out of the offset loop.
type searchCounters struct {
	vmRuns     uint64
	candidates uint64
	confirms   uint64
	stepLimits uint64
}

func (e *Engine) publish(c *searchCounters) {
	atomic.AddUint64(&e.stats.Searches, 1)
	if c.vmRuns != 0 {
		atomic.AddUint64(&e.stats.VMRuns, c.vmRuns)
	}
	if c.candidates != 0 {
		atomic.AddUint64(&e.stats.PrefilterCandidates, c.candidates)
		atomic.AddUint64(&e.stats.PrefilterConfirms, c.confirms)
	}
	if c.stepLimits != 0 {
		atomic.AddUint64(&e.stats.StepLimitHits, c.stepLimits)
	}
}

// search returns the span of the leftmost match. When slots is non-nil it
// receives the capture table of that match.
func (e *Engine) search(input string, slots []int) (int, int, bool) {
	var c searchCounters
	defer e.publish(&c)

	switch e.strategy {
	case UseLiteral:
		return e.searchLiteral(input, slots)
	case UseAnchored:
		end, ok := e.exec(&c, input, e.prog.Entry(), 0, slots)
		return 0, end, ok
	case UseCharScan:
		return e.searchCharScan(input, slots)
	case UsePrefilter:
		return e.searchPrefilter(&c, input, slots)
	default:
		return e.searchBacktrack(&c, input, slots)
	}
}

// exec runs one VM attempt at offset start.
func (e *Engine) exec(c *searchCounters, input string, pc, start int, slots []int) (int, bool) {
	c.vmRuns++
	end, ok, err := e.bt.ExecBudget(input, pc, start, slots)
	if errors.Is(err, vm.ErrStepLimit) {
		c.stepLimits++
		Logger().Debug("step limit exceeded",
			zap.String("pattern", e.prog.Pattern),
			zap.Int("offset", start),
			zap.Int("max_steps", e.config.MaxSteps))
	}
	return end, ok
}

func (e *Engine) searchBacktrack(c *searchCounters, input string, slots []int) (int, int, bool) {
	t := text.New(input)
	for off := 0; ; off = t.Next(off) {
		if end, ok := e.exec(c, input, 0, off, slots); ok {
			return off, end, true
		}
		if t.IsEnd(off) {
			return -1, -1, false
		}
	}
}

// searchPrefilter verifies prefilter candidates in increasing order. Every
// match starts with a non-empty literal, so offsets the prefilter skips,
// including the end of input, cannot match.
func (e *Engine) searchPrefilter(c *searchCounters, input string, slots []int) (int, int, bool) {
	haystack := conv.StringToBytes(input)
	for at := 0; ; {
		pos := e.prefilter.Find(haystack, at)
		if pos < 0 {
			return -1, -1, false
		}
		c.candidates++
		if end, ok := e.exec(c, input, 0, pos, slots); ok {
			c.confirms++
			return pos, end, true
		}
		at = pos + 1
	}
}

func (e *Engine) searchLiteral(input string, slots []int) (int, int, bool) {
	pos := e.prefilter.Find(conv.StringToBytes(input), 0)
	if pos < 0 {
		return -1, -1, false
	}
	end := pos + e.prefilter.LiteralLen()
	setSpan(slots, pos, end)
	return pos, end, true
}

func (e *Engine) searchCharScan(input string, slots []int) (int, int, bool) {
	inst := e.prog.Insts[0]
	t := text.New(input)
	for off := 0; !t.IsEnd(off); off = t.Next(off) {
		if r, ok := t.CharAt(off); ok && inst.Matches(r) {
			end := t.Next(off)
			setSpan(slots, off, end)
			return off, end, true
		}
	}
	return -1, -1, false
}

func setSpan(slots []int, start, end int) {
	if len(slots) >= 2 {
		slots[0], slots[1] = start, end
	}
}
