// Package result implements Result Assembly: formatting a single
// cell, a list of cells, or a whole area by reading either base
// storage (for all-base paths) or result storage (for everything
// else), with found/not-found reported distinctly from zero.
package result

import (
	"strconv"
	"strings"

	"github.com/grailbio/stoap/area"
	"github.com/grailbio/stoap/key"
	"github.com/grailbio/stoap/storage"
)

// Path is a cell's tuple of per-dimension element ids, in cube order.
type Path struct {
	IDs []uint64
}

// String renders the path as "id,id,...,id", the pipe-protocol's
// uniform rendering regardless of whether the tuple mixes base and
// consolidated elements.
func (p Path) String() string {
	parts := make([]string, len(p.IDs))
	for i, id := range p.IDs {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ",")
}

// Cell is one assembled query result.
type Cell struct {
	Path  Path
	Found bool
	Value float64
}

// IsBaseFunc reports whether dimension dimIdx's element id is a base
// (non-consolidated) element.
type IsBaseFunc func(dimIdx int, id uint64) bool

// Assembler reads cells out of base and result storage, choosing
// between them per-path.
type Assembler struct {
	codec  *key.Codec
	base   *storage.Storage
	result *storage.Storage
	isBase IsBaseFunc
}

// NewAssembler builds an Assembler over the given codec and storages.
// result may be nil when assembling single-base-cell queries that
// never need it.
func NewAssembler(codec *key.Codec, base, result *storage.Storage, isBase IsBaseFunc) *Assembler {
	return &Assembler{codec: codec, base: base, result: result, isBase: isBase}
}

// Cell assembles the result for a single tuple: every element base
// reads base storage, otherwise result storage.
func (a *Assembler) Cell(tuple []uint64) (Cell, error) {
	allBase := true
	for i, id := range tuple {
		if !a.isBase(i, id) {
			allBase = false
			break
		}
	}
	k, err := a.codec.Encode(tuple)
	if err != nil {
		return Cell{}, err
	}
	var v float64
	var found bool
	if allBase {
		v, found = a.base.Get(k)
	} else if a.result != nil {
		v, found = a.result.Get(k)
	}
	return Cell{Path: Path{IDs: append([]uint64(nil), tuple...)}, Found: found, Value: v}, nil
}

// Paths assembles a cell per tuple, preserving order.
func (a *Assembler) Paths(tuples [][]uint64) ([]Cell, error) {
	cells := make([]Cell, 0, len(tuples))
	for _, tuple := range tuples {
		c, err := a.Cell(tuple)
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, nil
}

// Area assembles every cell in the area's path iteration, in the
// area's last-dim-fastest order.
func (a *Assembler) Area(ar *area.Area) ([]Cell, error) {
	cells := make([]Cell, 0, ar.Size())
	for it := ar.PathBegin(); !it.Done(); it.Next() {
		c, err := a.Cell(it.Value())
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, nil
}
