package indexset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRange(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{0, []int{}},
		{1, []int{0}},
		{4, []int{0, 1, 2, 3}},
		{-3, []int{}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Range(tt.n).Slice()); diff != "" {
			t.Errorf("Range(%d) mismatch (-want +got):\n%s", tt.n, diff)
		}
	}
}

func TestSetAlgebra(t *testing.T) {
	a := Of(0, 1, 2)
	b := Of(1, 2, 3)

	if diff := cmp.Diff([]int{1, 2}, a.And(b).Slice()); diff != "" {
		t.Errorf("And mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, a.Or(b).Slice()); diff != "" {
		t.Errorf("Or mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, a.AndNot(b).Slice()); diff != "" {
		t.Errorf("AndNot mismatch (-want +got):\n%s", diff)
	}

	// Operands are left untouched.
	if diff := cmp.Diff([]int{0, 1, 2}, a.Slice()); diff != "" {
		t.Errorf("operand modified (-want +got):\n%s", diff)
	}
}

func TestIntersectUnion(t *testing.T) {
	a, b, c := Of(1, 2, 3, 4), Of(2, 3, 4), Of(3, 4, 9)

	if got := Intersect(a, b, c); !got.Equal(Of(3, 4)) {
		t.Errorf("Intersect = %v, want {3, 4}", got)
	}
	if got := Union(a, c); !got.Equal(Of(1, 2, 3, 4, 9)) {
		t.Errorf("Union = %v, want {1, 2, 3, 4, 9}", got)
	}
	if !Intersect().IsEmpty() {
		t.Error("Intersect() should be empty")
	}
	if !a.Equal(Of(1, 2, 3, 4)) {
		t.Errorf("Intersect modified its first operand: %v", a)
	}
}

func TestFilterAndString(t *testing.T) {
	s := Range(6).Filter(func(i int) bool { return i%2 == 0 })
	if got := s.String(); got != "{0, 2, 4}" {
		t.Errorf("String() = %q, want {0, 2, 4}", got)
	}
	if s.Len() != 3 || !s.Contains(4) || s.Contains(5) || s.Contains(-1) {
		t.Errorf("unexpected membership for %v", s)
	}
}
