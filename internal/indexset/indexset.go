// Package indexset provides the record index sets the query engine combines
// with boolean set algebra. Sets are backed by Roaring bitmaps.
package indexset

import (
	"iter"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// Set is a set of record indices in [0, N) for some collection of size N.
// The zero value is not usable; construct with New, Range or Of.
//
// Binary operations return new sets and never modify their operands.
type Set struct {
	rb *roaring.Bitmap
}

// New returns an empty set.
func New() *Set {
	return &Set{rb: roaring.New()}
}

// Range returns the universal set [0, n).
func Range(n int) *Set {
	s := New()
	if n > 0 {
		s.rb.AddRange(0, uint64(n))
	}
	return s
}

// Of returns a set holding the given indices. Negative indices are ignored.
func Of(indices ...int) *Set {
	s := New()
	for _, i := range indices {
		s.Add(i)
	}
	return s
}

// Add inserts index i.
func (s *Set) Add(i int) {
	if i < 0 {
		return
	}
	s.rb.Add(uint32(i))
}

// Contains reports whether i is in the set.
func (s *Set) Contains(i int) bool {
	if i < 0 {
		return false
	}
	return s.rb.Contains(uint32(i))
}

// Len returns the cardinality of the set.
func (s *Set) Len() int {
	return int(s.rb.GetCardinality())
}

// IsEmpty reports whether the set has no members.
func (s *Set) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Clone returns a deep copy.
func (s *Set) Clone() *Set {
	return &Set{rb: s.rb.Clone()}
}

// And returns the intersection of s and other.
func (s *Set) And(other *Set) *Set {
	return &Set{rb: roaring.And(s.rb, other.rb)}
}

// Or returns the union of s and other.
func (s *Set) Or(other *Set) *Set {
	return &Set{rb: roaring.Or(s.rb, other.rb)}
}

// AndNot returns the members of s that are not in other.
func (s *Set) AndNot(other *Set) *Set {
	return &Set{rb: roaring.AndNot(s.rb, other.rb)}
}

// Equal reports whether both sets hold the same members.
func (s *Set) Equal(other *Set) bool {
	return s.rb.Equals(other.rb)
}

// All iterates the members in ascending order.
func (s *Set) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// Slice returns the members in ascending order.
func (s *Set) Slice() []int {
	arr := s.rb.ToArray()
	out := make([]int, len(arr))
	for i, v := range arr {
		out[i] = int(v)
	}
	return out
}

// Filter returns the members of s for which keep returns true.
func (s *Set) Filter(keep func(int) bool) *Set {
	out := New()
	for i := range s.All() {
		if keep(i) {
			out.Add(i)
		}
	}
	return out
}

// String renders the set as {0, 2, 5}.
func (s *Set) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for i := range s.All() {
		if !first {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(i))
		first = false
	}
	b.WriteByte('}')
	return b.String()
}

// Intersect returns the intersection of all sets. With no arguments it
// returns an empty set.
func Intersect(sets ...*Set) *Set {
	if len(sets) == 0 {
		return New()
	}
	out := sets[0].Clone()
	for _, s := range sets[1:] {
		out.rb.And(s.rb)
	}
	return out
}

// Union returns the union of all sets.
func Union(sets ...*Set) *Set {
	out := New()
	for _, s := range sets {
		out.rb.Or(s.rb)
	}
	return out
}
