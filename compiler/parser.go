package compiler

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/coregx/brex/prog"
)

// metaEscapes are the characters that may be escaped to stand for themselves.
const metaEscapes = `\.+*?()|[]{}^$-`

// unbounded is the upper bound of {m,}.
const unbounded = -1

// parser holds the state of a single compilation.
type parser struct {
	pattern string
	pos     int
	opts    Options
	b       *builder

	// groups is the stack of open group numbers. A number is pushed on '('
	// and popped on the matching ')'.
	groups    []int
	nextGroup int
}

func newParser(pattern string, opts Options) *parser {
	return &parser{
		pattern:   pattern,
		opts:      opts,
		b:         newBuilder(),
		nextGroup: 1,
	}
}

func (p *parser) peek() (rune, bool) {
	if p.pos >= len(p.pattern) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(p.pattern[p.pos:])
	return r, true
}

func (p *parser) next() (rune, bool) {
	if p.pos >= len(p.pattern) {
		return 0, false
	}
	r, w := utf8.DecodeRuneInString(p.pattern[p.pos:])
	p.pos += w
	return r, true
}

func (p *parser) errorAt(kind error, pos int, detail string) error {
	return &Error{Kind: kind, Pos: pos, Detail: detail}
}

func (p *parser) pushGroup() int {
	n := p.nextGroup
	p.nextGroup++
	p.groups = append(p.groups, n)
	return n
}

func (p *parser) popGroup() (int, error) {
	if len(p.groups) == 0 {
		return 0, p.errorAt(ErrGroupNumMiss, p.pos, "')' without matching '('")
	}
	n := p.groups[len(p.groups)-1]
	p.groups = p.groups[:len(p.groups)-1]
	return n, nil
}

// compile parses the whole pattern and returns the finished instruction
// sequence, terminated by a single Match.
func (p *parser) compile() ([]prog.Inst, error) {
	if err := p.parseAlt(); err != nil {
		return nil, err
	}
	if p.pos < len(p.pattern) {
		// parseAlt only stops early on ')'; at top level it has no opener.
		if _, err := p.popGroup(); err != nil {
			return nil, err
		}
		return nil, p.errorAt(ErrPatch, p.pos, "parser stopped before end of pattern")
	}
	if len(p.b.pending) != 0 {
		return nil, p.errorAt(ErrPatch, -1, strconv.Itoa(len(p.b.pending))+" unresolved targets")
	}
	p.b.emit(prog.Match)
	return p.b.insts, nil
}

// parseAlt parses expr ('|' expr)*. Each branch but the last is rewritten
// as
//
//	    split L1, L2
//	L1: <branch>
//	    jmp END
//	L2: <next branch>
//
// and all the trailing jumps are patched to END once the last branch is done.
func (p *parser) parseAlt() error {
	branchStart := p.b.pc()
	jumps := 0

	for {
		if err := p.parseExpr(); err != nil {
			return err
		}
		if r, ok := p.peek(); !ok || r != '|' {
			break
		}
		p.next()

		frag, err := p.b.cut(branchStart)
		if err != nil {
			return err
		}
		p.b.emitSplit()
		p.b.splice(frag)
		jmp := p.b.emit(prog.Jump(unresolved))
		if err := p.b.patch(p.b.pc()); err != nil {
			return err
		}
		p.b.deferPatch(jmp)
		jumps++
		branchStart = p.b.pc()
	}

	end := p.b.pc()
	for ; jumps > 0; jumps-- {
		if err := p.b.patch(end); err != nil {
			return err
		}
	}
	return nil
}

// parseExpr parses term* up to the end of the pattern, '|' or ')'.
func (p *parser) parseExpr() error {
	for {
		r, ok := p.peek()
		if !ok || r == '|' || r == ')' {
			return nil
		}
		if err := p.parseTerm(); err != nil {
			return err
		}
	}
}

func (p *parser) parseTerm() error {
	start := p.b.pc()
	if r, _ := p.peek(); r == '(' {
		if err := p.parseGroup(); err != nil {
			return err
		}
	} else if err := p.parseAtom(); err != nil {
		return err
	}
	return p.parseQuantifier(start)
}

// parseGroup emits GroupBegin(n), the alternation body and GroupEnd(n).
func (p *parser) parseGroup() error {
	open := p.pos
	p.next() // '('
	n := p.pushGroup()
	p.b.emit(prog.GroupBegin(n))

	if err := p.parseAlt(); err != nil {
		return err
	}
	if _, ok := p.next(); !ok {
		return p.errorAt(ErrUnclosedGroup, open, "missing ')'")
	}

	closed, err := p.popGroup()
	if err != nil {
		return err
	}
	p.b.emit(prog.GroupEnd(closed))
	return nil
}

func (p *parser) parseAtom() error {
	pos := p.pos
	r, _ := p.next()

	switch r {
	case '.':
		p.b.emit(prog.AnyChar)
	case '^':
		p.b.emit(prog.Start)
	case '$':
		p.b.emit(prog.End)
		if p.pos < len(p.pattern) {
			return p.errorAt(ErrMisplacedAnchor, p.pos, "'$' must end the pattern")
		}
	case '\\':
		return p.parseEscape(pos)
	case '[':
		return p.parseClass(pos)
	default:
		p.b.emit(prog.Char(r))
	}
	return nil
}

func (p *parser) parseEscape(pos int) error {
	r, ok := p.next()
	if !ok {
		return p.errorAt(ErrIncompletedEscape, pos, "")
	}

	switch {
	case r == 'd':
		p.b.emit(prog.Digit)
	case r == 'w':
		p.b.emit(prog.Word)
	case '1' <= r && r <= '9':
		p.b.emit(prog.Ref(int(r - '0')))
	case strings.ContainsRune(metaEscapes, r):
		p.b.emit(prog.Char(r))
	default:
		return &Error{Kind: ErrUnknownEscape, Pos: pos, Char: r}
	}
	return nil
}

// parseClass parses the body of [...] into a single CharClass instruction.
func (p *parser) parseClass(open int) error {
	negated := false
	if r, ok := p.peek(); ok && r == '^' {
		p.next()
		negated = true
	}
	cb := prog.NewClassBuilder(negated)

	for {
		pos := p.pos
		r, ok := p.next()
		if !ok {
			return p.errorAt(ErrUnclosedCharClass, open, "missing ']'")
		}

		switch {
		case r == ']':
			p.b.emit(prog.Inst{Op: prog.OpCharClass, Class: cb.Build()})
			return nil

		case r == '\\':
			e, ok := p.next()
			if !ok {
				return p.errorAt(ErrIncompletedEscape, pos, "")
			}
			switch {
			case e == 'd':
				cb.AddDigit()
			case e == 'w':
				cb.AddWord()
			case strings.ContainsRune(metaEscapes, e):
				cb.AddRune(e)
			default:
				return &Error{Kind: ErrUnknownEscape, Pos: pos, Char: e}
			}

		case isASCIIAlnum(r) && p.rangeFollows():
			p.next() // '-'
			end, _ := p.next()
			addRange(cb, r, end)

		default:
			cb.AddRune(r)
		}
	}
}

// rangeFollows reports whether the pattern continues with '-' and an ASCII
// alphanumeric range end.
func (p *parser) rangeFollows() bool {
	rest := p.pattern[p.pos:]
	return len(rest) >= 2 && rest[0] == '-' && isASCIIAlnum(rune(rest[1]))
}

// addRange adds start-end to the class when both ends are of the same kind
// (digit, lower case or upper case letter) and ordered. Otherwise the three
// characters are added literally.
func addRange(cb *prog.ClassBuilder, start, end rune) {
	sameKind := isDigit(start) && isDigit(end) ||
		isLower(start) && isLower(end) ||
		isUpper(start) && isUpper(end)
	if sameKind && start <= end {
		cb.AddRange(start, end)
		return
	}
	cb.AddRune(start)
	cb.AddRune('-')
	cb.AddRune(end)
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }
func isLower(r rune) bool { return 'a' <= r && r <= 'z' }
func isUpper(r rune) bool { return 'A' <= r && r <= 'Z' }

func isASCIIAlnum(r rune) bool {
	return isDigit(r) || isLower(r) || isUpper(r)
}

// parseQuantifier applies a trailing quantifier to the instructions emitted
// since start.
func (p *parser) parseQuantifier(start int) error {
	r, ok := p.peek()
	if !ok {
		return nil
	}

	switch r {
	case '*', '+', '?':
		p.next()
		frag, err := p.b.cut(start)
		if err != nil {
			return err
		}
		switch r {
		case '*':
			return p.b.star(frag)
		case '+':
			p.b.splice(frag)
			return p.b.star(frag)
		default:
			return p.b.quest(frag)
		}

	case '{':
		lo, hi, err := p.parseRepeat()
		if err != nil {
			return err
		}
		frag, err := p.b.cut(start)
		if err != nil {
			return err
		}
		for i := 0; i < lo; i++ {
			p.b.splice(frag)
		}
		if hi == unbounded {
			return p.b.star(frag)
		}
		for i := lo; i < hi; i++ {
			if err := p.b.quest(frag); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseRepeat parses {m}, {m,} or {m,n} and returns the bounds; hi is
// unbounded for {m,}.
func (p *parser) parseRepeat() (lo, hi int, err error) {
	open := p.pos
	p.next() // '{'

	var body strings.Builder
	for {
		r, ok := p.next()
		if !ok {
			return 0, 0, p.errorAt(ErrInvalidQuantifier, open, "missing '}'")
		}
		if r == '}' {
			break
		}
		if !isDigit(r) && r != ',' {
			return 0, 0, p.errorAt(ErrInvalidQuantifier, open, "unexpected "+strconv.QuoteRune(r))
		}
		body.WriteRune(r)
	}

	parts := strings.Split(body.String(), ",")
	if len(parts) > 2 {
		return 0, 0, p.errorAt(ErrInvalidQuantifier, open, "too many bounds")
	}
	if lo, err = p.parseBound(parts[0], open); err != nil {
		return 0, 0, err
	}
	switch {
	case len(parts) == 1:
		hi = lo
	case parts[1] == "":
		hi = unbounded
	default:
		if hi, err = p.parseBound(parts[1], open); err != nil {
			return 0, 0, err
		}
		if lo > hi {
			return 0, 0, p.errorAt(ErrInvalidQuantifier, open,
				"min "+strconv.Itoa(lo)+" exceeds max "+strconv.Itoa(hi))
		}
	}
	return lo, hi, nil
}

func (p *parser) parseBound(s string, open int) (int, error) {
	if s == "" {
		return 0, p.errorAt(ErrInvalidQuantifier, open, "missing bound")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, p.errorAt(ErrInvalidQuantifier, open, "bad bound "+strconv.Quote(s))
	}
	if n > p.opts.MaxRepeat {
		return 0, p.errorAt(ErrInvalidQuantifier, open,
			"bound "+strconv.Itoa(n)+" exceeds limit "+strconv.Itoa(p.opts.MaxRepeat))
	}
	return n, nil
}
