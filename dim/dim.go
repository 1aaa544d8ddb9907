// Package dim implements the dimension hierarchy model: elements,
// their weighted parent/child relations, base-descendant expansion,
// and the derived topology metrics (level, depth, indent).
package dim

import (
	"strings"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/stoap/errs"
	"github.com/grailbio/stoap/rangeset"
)

// Kind distinguishes a leaf (base) element from an internal
// (consolidated) one.
type Kind int

const (
	// Base elements hold stored values directly; they have no
	// children.
	Base Kind = iota
	// Consolidated elements roll up one or more weighted children.
	Consolidated
)

// Element is a single member of a Dimension.
type Element struct {
	ID       uint32
	Name     string
	Position int
	Kind     Kind

	Level  int
	Depth  int
	Indent int
}

// ChildEdge is one (child, weight) entry in a parent's ordered child
// list.
type ChildEdge struct {
	Child  uint32
	Weight float64
}

// nameEntry chains same-bucket names the way a hash-then-compare
// lookup does on collision, rather than relying on Go's built-in map
// hashing for the case-insensitive comparison.
type nameEntry struct {
	lower string
	elem  *Element
	next  *nameEntry
}

// Dimension owns a set of elements and their hierarchy.
type Dimension struct {
	ID   uint32
	Name string

	byID       []*Element // dense vector, indexed by Element.ID
	byPosition []*Element
	nameBuckets map[uint64]*nameEntry

	children map[uint32][]ChildEdge // ordered
	parents  map[uint32][]uint32    // ordered
	roots    []uint32

	dimPos  uint
	dimMask uint64

	topo       []*Element
	topoErr    error
	topoBuilt  bool
	expandMemo map[uint32]*rangeset.WeightedSet
	expanding  map[uint32]bool
}

// New creates an empty dimension able to hold element ids up to
// maxID (inclusive); elements are added with AddElement.
func New(id uint32, name string, maxID uint32) *Dimension {
	return &Dimension{
		ID:          id,
		Name:        name,
		byID:        make([]*Element, int(maxID)+1),
		nameBuckets: make(map[uint64]*nameEntry),
		children:    make(map[uint32][]ChildEdge),
		parents:     make(map[uint32][]uint32),
		expandMemo:  make(map[uint32]*rangeset.WeightedSet),
	}
}

// AddElement registers e in the dimension, indexing it by id,
// name, and position.
func (d *Dimension) AddElement(e *Element) {
	if int(e.ID) >= len(d.byID) {
		grown := make([]*Element, int(e.ID)+1)
		copy(grown, d.byID)
		d.byID = grown
	}
	d.byID[e.ID] = e

	for int(e.Position) >= len(d.byPosition) {
		d.byPosition = append(d.byPosition, nil)
	}
	d.byPosition[e.Position] = e

	lower := strings.ToLower(e.Name)
	h := farm.Hash64([]byte(lower))
	d.nameBuckets[h] = &nameEntry{lower: lower, elem: e, next: d.nameBuckets[h]}

	d.topoBuilt = false
}

// AddChild records that parent has child with the given edge weight,
// appended to parent's ordered child list, and child's ordered
// parent list.
func (d *Dimension) AddChild(parent, child uint32, weight float64) {
	d.children[parent] = append(d.children[parent], ChildEdge{Child: child, Weight: weight})
	d.parents[child] = append(d.parents[child], parent)
	d.topoBuilt = false
}

// SetKeyLayout records this dimension's bit offset and mask within
// the cube's packed key, computed once after load by the codec.
func (d *Dimension) SetKeyLayout(pos uint, mask uint64) {
	d.dimPos = pos
	d.dimMask = mask
}

// KeyLayout returns the dimension's (dimPos, dimMask).
func (d *Dimension) KeyLayout() (pos uint, mask uint64) { return d.dimPos, d.dimMask }

// LookupByID returns the element with the given id, or nil if absent.
func (d *Dimension) LookupByID(id uint32) *Element {
	if int(id) >= len(d.byID) {
		return nil
	}
	return d.byID[id]
}

// LookupByName returns the element with the given name
// (case-insensitive), or nil if absent.
func (d *Dimension) LookupByName(name string) *Element {
	lower := strings.ToLower(name)
	h := farm.Hash64([]byte(lower))
	for e := d.nameBuckets[h]; e != nil; e = e.next {
		if e.lower == lower {
			return e.elem
		}
	}
	return nil
}

// LookupByPosition returns the element at the given position, or nil
// if absent.
func (d *Dimension) LookupByPosition(pos int) *Element {
	if pos < 0 || pos >= len(d.byPosition) {
		return nil
	}
	return d.byPosition[pos]
}

// Elements returns every element in id order, skipping unset slots.
func (d *Dimension) Elements() []*Element {
	out := make([]*Element, 0, len(d.byID))
	for _, e := range d.byID {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Children returns id's ordered (child, weight) list.
func (d *Dimension) Children(id uint32) []ChildEdge { return d.children[id] }

// Parents returns id's ordered parent list.
func (d *Dimension) Parents(id uint32) []uint32 { return d.parents[id] }

// Roots returns every element with no parents, in id order, the same
// list children(none) denotes in the component design.
func (d *Dimension) Roots() []uint32 {
	var roots []uint32
	for _, e := range d.byID {
		if e == nil {
			continue
		}
		if len(d.parents[e.ID]) == 0 {
			roots = append(roots, e.ID)
		}
	}
	return roots
}

// MaxID returns the highest legal element id in this dimension.
func (d *Dimension) MaxID() uint32 { return uint32(len(d.byID) - 1) }

// ExpandBase returns element's base-descendant set: itself (weight 1)
// if it has no children, otherwise the weighted union of its
// children's expansions, scaled by edge weight and consolidated.
// Whether an element is a leaf is decided by its child list, not its
// declared Kind — a loaded element whose kind says "base" but which
// still carries a child list expands through those children, since
// the child list is the one the loader actually wired up.
func (d *Dimension) ExpandBase(id uint32) (*rangeset.WeightedSet, error) {
	if ws, ok := d.expandMemo[id]; ok {
		return ws, nil
	}
	if d.expanding == nil {
		d.expanding = make(map[uint32]bool)
	}
	if d.expanding[id] {
		return nil, errs.New(errs.Internal, "dim: cyclic hierarchy detected at element %d in dimension %q", id, d.Name)
	}
	e := d.LookupByID(id)
	if e == nil {
		return nil, errs.New(errs.InvalidCoordinates, "dim: unknown element id %d in dimension %q", id, d.Name)
	}

	edges := d.children[id]
	if len(edges) == 0 {
		ws := rangeset.NewWeightedSet()
		ws.FastAdd(uint64(id), 1)
		ws.Consolidate()
		d.expandMemo[id] = ws
		return ws, nil
	}

	d.expanding[id] = true
	ws := rangeset.NewWeightedSet()
	for _, edge := range edges {
		childWS, err := d.ExpandBase(edge.Child)
		if err != nil {
			delete(d.expanding, id)
			return nil, err
		}
		ws.AddWeighted(childWS, edge.Weight)
	}
	delete(d.expanding, id)
	ws.Consolidate()

	d.expandMemo[id] = ws
	return ws, nil
}

// TopoOrder returns elements in an order where every parent precedes
// every child, computed lazily and cached (dimensions are immutable
// after load).
func (d *Dimension) TopoOrder() ([]*Element, error) {
	if d.topoBuilt {
		return d.topo, d.topoErr
	}
	order, err := d.computeTopoOrder()
	d.topo, d.topoErr = order, err
	d.topoBuilt = true
	return d.topo, d.topoErr
}

func (d *Dimension) computeTopoOrder() ([]*Element, error) {
	indegree := make(map[uint32]int)
	for _, e := range d.byID {
		if e != nil {
			indegree[e.ID] = len(d.parents[e.ID])
		}
	}
	var queue []uint32
	for _, e := range d.byID {
		if e != nil && indegree[e.ID] == 0 {
			queue = append(queue, e.ID)
		}
	}
	var order []*Element
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, d.LookupByID(id))
		for _, edge := range d.children[id] {
			indegree[edge.Child]--
			if indegree[edge.Child] == 0 {
				queue = append(queue, edge.Child)
			}
		}
	}
	total := 0
	for _, e := range d.byID {
		if e != nil {
			total++
		}
	}
	if len(order) != total {
		return nil, errs.New(errs.Internal, "dim: cyclic hierarchy in dimension %q", d.Name)
	}
	return order, nil
}

// ComputeTopology fills in Level, Depth, and Indent on every element
// from a single reverse pass (level, children-first) and forward pass
// (depth/indent, parents-first) over TopoOrder.
func (d *Dimension) ComputeTopology() error {
	order, err := d.TopoOrder()
	if err != nil {
		return err
	}
	for i := len(order) - 1; i >= 0; i-- {
		e := order[i]
		if len(d.children[e.ID]) == 0 {
			e.Level = 0
			continue
		}
		maxChild := -1
		for _, edge := range d.children[e.ID] {
			if c := d.LookupByID(edge.Child); c != nil && c.Level > maxChild {
				maxChild = c.Level
			}
		}
		e.Level = maxChild + 1
	}
	for _, e := range order {
		parents := d.parents[e.ID]
		if len(parents) == 0 {
			e.Depth = 0
			e.Indent = 1
			continue
		}
		maxDepth := -1
		for _, pid := range parents {
			if p := d.LookupByID(pid); p != nil && p.Depth > maxDepth {
				maxDepth = p.Depth
			}
		}
		e.Depth = maxDepth + 1
		first := d.LookupByID(parents[0])
		e.Indent = first.Indent + 1
	}
	return nil
}

// MaxDepth returns the greatest Depth of any element.
func (d *Dimension) MaxDepth() int {
	max := 0
	for _, e := range d.byID {
		if e != nil && e.Depth > max {
			max = e.Depth
		}
	}
	return max
}
