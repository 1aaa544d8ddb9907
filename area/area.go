// Package area implements the Area and PathIterator: a cross-product
// of per-dimension Ranged Sets, with lazy row-major (last-dimension-
// fastest) enumeration of its constituent tuples.
package area

import "github.com/grailbio/stoap/rangeset"

// All is the marker id denoting "every legal id of this dimension"
// when building an Area from per-dimension id lists. It is never
// itself a legal element id.
const All = ^uint64(0)

// Area is a per-dimension vector of Ranged Sets. Its cardinality is
// the product of the per-dimension cardinalities.
type Area struct {
	dims []*rangeset.Set
}

// NewEmpty returns an area of n dimensions, each with an empty set.
func NewEmpty(n int) *Area {
	dims := make([]*rangeset.Set, n)
	for i := range dims {
		dims[i] = rangeset.Empty()
	}
	return &Area{dims: dims}
}

// NewSinglePath returns a one-tuple area: one id per dimension.
func NewSinglePath(tuple []uint64) *Area {
	dims := make([]*rangeset.Set, len(tuple))
	for i, id := range tuple {
		s := rangeset.Empty()
		s.Insert(id)
		dims[i] = s
	}
	return &Area{dims: dims}
}

// NewFromLists builds an area from one id list per dimension.
// maxIDs[i] bounds dimension i's legal range, used to resolve the
// singleton list [All] to that dimension's full range.
func NewFromLists(maxIDs []uint64, lists [][]uint64) *Area {
	dims := make([]*rangeset.Set, len(lists))
	for i, list := range lists {
		if len(list) == 1 && list[0] == All {
			dims[i] = rangeset.FromRanges([]rangeset.Range{{Lo: 0, Hi: maxIDs[i]}})
			continue
		}
		s := rangeset.Empty()
		for _, id := range list {
			s.Insert(id)
		}
		dims[i] = s
	}
	return &Area{dims: dims}
}

// Copy returns a deep-enough copy (the per-dimension sets are
// rebuilt, never shared) suitable for independent mutation.
func (a *Area) Copy() *Area {
	dims := make([]*rangeset.Set, len(a.dims))
	for i, d := range a.dims {
		dims[i] = rangeset.FromRanges(d.Ranges())
	}
	return &Area{dims: dims}
}

// DimCount returns the number of dimensions.
func (a *Area) DimCount() int { return len(a.dims) }

// Dim returns dimension i's Ranged Set.
func (a *Area) Dim(i int) *rangeset.Set { return a.dims[i] }

// SetDim replaces dimension i's Ranged Set.
func (a *Area) SetDim(i int, s *rangeset.Set) { a.dims[i] = s }

// Size returns the product of per-dimension cardinalities, or 0 if
// any dimension's set is empty.
func (a *Area) Size() uint64 {
	if len(a.dims) == 0 {
		return 0
	}
	size := uint64(1)
	for _, d := range a.dims {
		if d.IsEmpty() {
			return 0
		}
		size *= d.Size()
	}
	return size
}

// Contains reports whether tuple (one id per dimension) lies in the
// area.
func (a *Area) Contains(tuple []uint64) bool {
	if len(tuple) != len(a.dims) {
		return false
	}
	for i, id := range tuple {
		if !a.dims[i].Contains(id) {
			return false
		}
	}
	return true
}

// Intersect returns the element-wise intersection of a and b, and
// false if any dimension intersects to empty. It intersects
// per-dimension Ranged Sets directly rather than enumerating tuples
// pairwise.
func Intersect(a, b *Area) (*Area, bool) {
	if len(a.dims) != len(b.dims) {
		return nil, false
	}
	dims := make([]*rangeset.Set, len(a.dims))
	for i := range a.dims {
		dims[i] = rangeset.Intersect(a.dims[i], b.dims[i])
		if dims[i].IsEmpty() {
			return nil, false
		}
	}
	return &Area{dims: dims}, true
}

// PathIterator enumerates every tuple in an Area in row-major order,
// last dimension varying fastest.
type PathIterator struct {
	area  *Area
	iters []*rangeset.Iterator
	tuple []uint64
	done  bool
}

// PathBegin returns an iterator positioned at the area's first tuple,
// or a done iterator if any dimension is empty.
func (a *Area) PathBegin() *PathIterator {
	it := &PathIterator{area: a, iters: make([]*rangeset.Iterator, len(a.dims)), tuple: make([]uint64, len(a.dims))}
	for i, d := range a.dims {
		sub := d.Begin()
		if sub.Done() {
			it.done = true
			return it
		}
		it.iters[i] = sub
		it.tuple[i] = sub.Value()
	}
	return it
}

// Done reports whether the iterator has advanced past the last tuple.
func (it *PathIterator) Done() bool { return it.done }

// Value returns the current tuple. The returned slice is reused by
// subsequent calls to Next; callers that need to retain it should
// copy it.
func (it *PathIterator) Value() []uint64 { return it.tuple }

// Next advances the iterator to the next tuple in row-major order.
func (it *PathIterator) Next() {
	if it.done {
		return
	}
	for i := len(it.iters) - 1; i >= 0; i-- {
		it.iters[i].Next()
		if !it.iters[i].Done() {
			it.tuple[i] = it.iters[i].Value()
			return
		}
		it.iters[i] = it.area.dims[i].Begin()
		it.tuple[i] = it.iters[i].Value()
	}
	it.done = true
}
