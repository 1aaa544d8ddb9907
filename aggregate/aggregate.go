// Package aggregate implements the AggregationProcessor: it expands
// a target area into its covering source area and per-dimension
// AggregationMaps, then scatters weighted contributions from every
// relevant base cell into a freshly allocated result storage.
package aggregate

import (
	"github.com/grailbio/stoap/aggmap"
	"github.com/grailbio/stoap/area"
	"github.com/grailbio/stoap/dim"
	"github.com/grailbio/stoap/key"
	"github.com/grailbio/stoap/rangeset"
	"github.com/grailbio/stoap/storage"
)

// TargetStrategyMaxSize gates the target-based strategy: it is used
// only when the target area is this small or smaller (and the source
// area is no bigger than the base storage). This threshold has no
// principled derivation; it is carried forward as a named, tunable
// constant rather than a buried magic number.
const TargetStrategyMaxSize = 60

// Processor drives aggregation for one cube: its ordered dimensions,
// key codec, and base storage.
type Processor struct {
	dims  []*dim.Dimension
	codec *key.Codec
	base  *storage.Storage
}

// New returns a Processor over the given dimensions (in cube key
// order), codec, and base storage.
func New(dims []*dim.Dimension, codec *key.Codec, base *storage.Storage) *Processor {
	return &Processor{dims: dims, codec: codec, base: base}
}

// Run aggregates target, returning a result storage pre-sized to
// target.Size() holding every scattered contribution.
func (p *Processor) Run(target *area.Area) (*storage.Storage, error) {
	n := target.DimCount()
	maps := make([]*aggmap.Map, n)
	srcArea := area.NewEmpty(n)

	for d := 0; d < n; d++ {
		m := aggmap.New()
		srcSet := rangeset.Empty()
		for it := target.Dim(d).Begin(); !it.Done(); it.Next() {
			targetID := it.Value()
			bases, err := p.dims[d].ExpandBase(uint32(targetID))
			if err != nil {
				return nil, err
			}
			m.BuildBaseToParentMap(targetID, bases)
			for bit := bases.Begin(); !bit.Done(); bit.Next() {
				srcSet.Insert(bit.Value())
			}
		}
		m.Compact()
		maps[d] = m
		srcArea.SetDim(d, srcSet)
	}

	result := storage.New(int(target.Size()))

	if target.Size() <= TargetStrategyMaxSize && srcArea.Size() <= uint64(p.base.Size()) {
		if err := p.runTargetBased(srcArea, maps, result); err != nil {
			return nil, err
		}
	} else if err := p.runSourceBased(maps, result); err != nil {
		return nil, err
	}
	return result, nil
}

// runSourceBased is the always-correct strategy: scan every base
// storage entry, discard ones with no real source mapping in some
// dimension, and scatter the rest.
func (p *Processor) runSourceBased(maps []*aggmap.Map, result *storage.Storage) error {
	n := p.codec.NumFields()
	ids := make([]uint64, n)
	var firstErr error
	p.base.Each(func(k uint64, v float64) {
		if firstErr != nil {
			return
		}
		p.codec.Decode(k, ids)
		for d := 0; d < n; d++ {
			if !maps[d].HasSource(ids[d]) {
				return
			}
		}
		if err := p.aggregateCell(k, v, maps, result); err != nil {
			firstErr = err
		}
	})
	return firstErr
}

// runTargetBased is the optimization: iterate the (small) source area
// directly, probing base storage, rather than scanning all of base
// storage. Selected by the caller when target.Size() <= TargetStrategyMaxSize
// and the source area is no larger than base storage itself.
func (p *Processor) runTargetBased(srcArea *area.Area, maps []*aggmap.Map, result *storage.Storage) error {
	for it := srcArea.PathBegin(); !it.Done(); it.Next() {
		k, err := p.codec.Encode(it.Value())
		if err != nil {
			return err
		}
		v, ok := p.base.Get(k)
		if !ok {
			continue
		}
		if err := p.aggregateCell(k, v, maps, result); err != nil {
			return err
		}
	}
	return nil
}

// aggregateCell scatters value (the base cell at key k) into every
// target cell it contributes to, across all per-dimension targets'
// cross product.
func (p *Processor) aggregateCell(k uint64, value float64, maps []*aggmap.Map, result *storage.Storage) error {
	n := len(maps)
	ids := p.codec.DecodeNew(k)

	readers := make([]*aggmap.TargetReader, n)
	parentKey := make([]uint64, n)
	scale := value
	var multiDims []int

	for d := 0; d < n; d++ {
		r, err := maps[d].GetTargets(ids[d])
		if err != nil {
			return err
		}
		readers[d] = r
		parentKey[d] = r.Value()
		if r.Size() == 1 {
			scale *= r.Weight()
		} else {
			multiDims = append(multiDims, d)
		}
	}

	emit := func() error {
		k2, err := p.codec.Encode(parentKey)
		if err != nil {
			return err
		}
		w := scale
		for _, d := range multiDims {
			w *= readers[d].Weight()
		}
		result.Add(k2, w)
		return nil
	}

	if err := emit(); err != nil {
		return err
	}

	for {
		advanced := false
		for i := len(multiDims) - 1; i >= 0; i-- {
			d := multiDims[i]
			readers[d].Next()
			if !readers[d].Done() {
				parentKey[d] = readers[d].Value()
				advanced = true
				break
			}
			readers[d].Reset()
			parentKey[d] = readers[d].Value()
		}
		if !advanced {
			return nil
		}
		if err := emit(); err != nil {
			return err
		}
	}
}
