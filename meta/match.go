package meta

// Match represents a successful match: a byte range of the input.
type Match struct {
	start int
	end   int
	input string
}

// NewMatch creates a Match for input[start:end].
func NewMatch(start, end int, input string) *Match {
	return &Match{
		start: start,
		end:   end,
		input: input,
	}
}

// Start returns the byte offset where the match begins.
func (m *Match) Start() int {
	return m.start
}

// End returns the byte offset just past the match.
func (m *Match) End() int {
	return m.end
}

// Len returns the length of the match in bytes.
func (m *Match) Len() int {
	return m.end - m.start
}

// String returns the matched text.
func (m *Match) String() string {
	if m.start < 0 || m.end > len(m.input) || m.start > m.end {
		return ""
	}
	return m.input[m.start:m.end]
}

// IsEmpty reports whether the match has zero length.
func (m *Match) IsEmpty() bool {
	return m.start == m.end
}

// MatchWithCaptures is a match together with the spans of its groups.
type MatchWithCaptures struct {
	Match

	// slots holds start and end offsets per group, -1 when the group did
	// not participate. Pair 0 is the overall match.
	slots []int
}

// NumGroups returns the number of groups, including group 0.
func (m *MatchWithCaptures) NumGroups() int {
	return len(m.slots) / 2
}

// GroupIndex returns the [start, end] offsets of group i, or nil when the
// group did not participate or i is out of range.
func (m *MatchWithCaptures) GroupIndex(i int) []int {
	if i < 0 || 2*i+1 >= len(m.slots) {
		return nil
	}
	start, end := m.slots[2*i], m.slots[2*i+1]
	if start < 0 || end < 0 {
		return nil
	}
	return []int{start, end}
}

// Group returns the text of group i, or "" when it did not participate.
func (m *MatchWithCaptures) Group(i int) string {
	idx := m.GroupIndex(i)
	if idx == nil {
		return ""
	}
	return m.input[idx[0]:idx[1]]
}

// Slots returns a copy of the raw slot table.
func (m *MatchWithCaptures) Slots() []int {
	out := make([]int, len(m.slots))
	copy(out, m.slots)
	return out
}
