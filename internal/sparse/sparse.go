// Package sparse provides a sparse set of instruction indices.
//
// A sparse set supports O(1) insertion, membership testing and clearing
// while keeping a dense list of its elements in insertion order. It is used
// to walk the zero-width closure of a program position without visiting an
// instruction twice.
package sparse

// Set is a set of ints in the range [0, capacity).
type Set struct {
	sparse []int // value -> index in dense
	dense  []int
}

// New creates a set that can hold values in [0, capacity).
func New(capacity int) *Set {
	return &Set{
		sparse: make([]int, capacity),
		dense:  make([]int, 0, capacity),
	}
}

// Insert adds v to the set and reports whether it was newly added.
// Values outside [0, capacity) are ignored.
func (s *Set) Insert(v int) bool {
	if v < 0 || v >= len(s.sparse) || s.Contains(v) {
		return false
	}
	s.sparse[v] = len(s.dense)
	s.dense = append(s.dense, v)
	return true
}

// Contains reports whether v is in the set.
func (s *Set) Contains(v int) bool {
	if v < 0 || v >= len(s.sparse) {
		return false
	}
	i := s.sparse[v]
	return i < len(s.dense) && s.dense[i] == v
}

// Clear removes all elements in O(1).
func (s *Set) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of elements.
func (s *Set) Len() int {
	return len(s.dense)
}

// Values returns the elements in insertion order. The slice is valid until
// the next mutation.
func (s *Set) Values() []int {
	return s.dense
}
