package prog

import "sort"

// ClassBuilder accumulates characters and ranges for a CharClass.
type ClassBuilder struct {
	negated bool
	digit   bool
	word    bool
	ranges  []RuneRange
}

// NewClassBuilder returns an empty builder.
func NewClassBuilder(negated bool) *ClassBuilder {
	return &ClassBuilder{negated: negated}
}

// AddRune adds a single character.
func (b *ClassBuilder) AddRune(r rune) {
	b.ranges = append(b.ranges, RuneRange{Lo: r, Hi: r})
}

// AddRange adds the inclusive range [lo, hi]. Empty ranges are ignored.
func (b *ClassBuilder) AddRange(lo, hi rune) {
	if lo > hi {
		return
	}
	b.ranges = append(b.ranges, RuneRange{Lo: lo, Hi: hi})
}

// AddDigit adds the \d set.
func (b *ClassBuilder) AddDigit() {
	b.digit = true
}

// AddWord adds the \w set.
func (b *ClassBuilder) AddWord() {
	b.word = true
}

// Build returns the class with its ranges sorted and merged.
func (b *ClassBuilder) Build() *CharClass {
	ranges := make([]RuneRange, len(b.ranges))
	copy(ranges, b.ranges)
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].Lo != ranges[j].Lo {
			return ranges[i].Lo < ranges[j].Lo
		}
		return ranges[i].Hi < ranges[j].Hi
	})

	merged := ranges[:0]
	for _, rr := range ranges {
		if n := len(merged); n > 0 && rr.Lo <= merged[n-1].Hi+1 {
			if rr.Hi > merged[n-1].Hi {
				merged[n-1].Hi = rr.Hi
			}
			continue
		}
		merged = append(merged, rr)
	}

	return &CharClass{
		Negated: b.negated,
		Ranges:  merged,
		Digit:   b.digit,
		Word:    b.word,
	}
}
