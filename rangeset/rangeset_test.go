package rangeset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(s *Set) []uint64 {
	var out []uint64
	for it := s.Begin(); !it.Done(); it.Next() {
		out = append(out, it.Value())
	}
	return out
}

func TestInsertSingletons(t *testing.T) {
	s := Empty()
	for _, id := range []uint64{5, 1, 3, 2, 4} {
		s.Insert(id)
	}
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, collect(s))
	assert.Equal(t, uint64(5), s.Size())
	// all merged into a single canonical range
	require.Len(t, s.Ranges(), 1)
	assert.Equal(t, Range{Lo: 1, Hi: 5}, s.Ranges()[0])
}

func TestInsertNoOpOnDuplicate(t *testing.T) {
	s := Empty()
	s.Insert(3)
	changed := s.Insert(3)
	assert.False(t, changed)
	assert.Equal(t, uint64(1), s.Size())
}

func TestInsertJoinsGap(t *testing.T) {
	s := Empty()
	s.Insert(1)
	s.Insert(3)
	require.Len(t, s.Ranges(), 2)
	s.Insert(2)
	require.Len(t, s.Ranges(), 1)
	assert.Equal(t, Range{Lo: 1, Hi: 3}, s.Ranges()[0])
}

func TestContains(t *testing.T) {
	s := Empty()
	s.Insert(1)
	s.Insert(2)
	s.Insert(10)
	assert.True(t, s.Contains(1))
	assert.True(t, s.Contains(2))
	assert.False(t, s.Contains(3))
	assert.True(t, s.Contains(10))
	assert.False(t, s.Contains(11))
}

func TestEraseBoundaryAndInterior(t *testing.T) {
	s := Empty()
	s.InsertRange(1, 10)

	require.True(t, s.Erase(1))
	assert.Equal(t, Range{Lo: 2, Hi: 10}, s.Ranges()[0])

	require.True(t, s.Erase(10))
	assert.Equal(t, Range{Lo: 2, Hi: 9}, s.Ranges()[0])

	require.True(t, s.Erase(5))
	require.Len(t, s.Ranges(), 2)
	assert.Equal(t, Range{Lo: 2, Hi: 4}, s.Ranges()[0])
	assert.Equal(t, Range{Lo: 6, Hi: 9}, s.Ranges()[1])

	assert.False(t, s.Erase(100))
}

func TestCanonicalizationNoAdjacentOrOverlap(t *testing.T) {
	s := Empty()
	ids := []uint64{9, 1, 5, 2, 8, 3, 7, 4, 6, 0}
	for _, id := range ids {
		s.Insert(id)
	}
	ranges := s.Ranges()
	for i := 1; i < len(ranges); i++ {
		assert.True(t, ranges[i].Lo > ranges[i-1].Hi+1, "ranges %v must not be adjacent or overlapping", ranges)
	}
}

func TestIntersect(t *testing.T) {
	a := FromRanges([]Range{{1, 5}, {10, 20}})
	b := FromRanges([]Range{{3, 12}, {18, 25}})
	got := Intersect(a, b)
	assert.Equal(t, []Range{{3, 5}, {10, 12}, {18, 20}}, got.Ranges())
	assert.Equal(t, uint64(3+3+3), got.Size())
}

func TestIntersectEmpty(t *testing.T) {
	a := FromRanges([]Range{{1, 5}})
	b := FromRanges([]Range{{10, 20}})
	got := Intersect(a, b)
	assert.True(t, got.IsEmpty())
}

func TestWeightedFastAddConsolidate(t *testing.T) {
	w := NewWeightedSet()
	w.FastAdd(1, 2)
	w.FastAdd(2, 2)
	w.FastAdd(3, 5)
	w.Consolidate()

	require.Len(t, w.Ranges(), 2)
	assert.Equal(t, Range{Lo: 1, Hi: 2}, w.Ranges()[0])
	assert.Equal(t, Range{Lo: 3, Hi: 3}, w.Ranges()[1])
	assert.Equal(t, float64(2), w.Weight(1))
	assert.Equal(t, float64(2), w.Weight(2))
	assert.Equal(t, float64(5), w.Weight(3))
}

func TestWeightedFastAddDuplicateSums(t *testing.T) {
	w := NewWeightedSet()
	w.FastAdd(5, 1)
	w.FastAdd(5, 1)
	assert.Equal(t, float64(2), w.Weight(5))

	// summing back down to 1 drops the weight-map entry, but Weight
	// still reports 1 either way.
	w.FastAdd(5, -1)
	assert.Equal(t, float64(1), w.Weight(5))
}

func TestConsolidateIdempotent(t *testing.T) {
	w := NewWeightedSet()
	w.FastAdd(1, 3)
	w.FastAdd(2, 3)
	w.FastAdd(4, 1)
	w.Consolidate()
	first := append([]Range(nil), w.Ranges()...)
	w.Consolidate()
	assert.Equal(t, first, w.Ranges())
}

func TestPushSortedExtendsMatchingWeight(t *testing.T) {
	w := NewWeightedSet()
	w.PushSorted(1, 2)
	w.PushSorted(2, 2)
	w.PushSorted(3, 5)
	require.Len(t, w.Ranges(), 2)
	assert.Equal(t, Range{Lo: 1, Hi: 2}, w.Ranges()[0])
	assert.Equal(t, float64(2), w.Weight(1))
	assert.Equal(t, float64(5), w.Weight(3))
}
