// Package cube wires the dimension model, key codec, and storage into
// the queryable unit the rest of the engine operates on: a Cube
// belonging to an immutable Environment.
//
// The original source exposes this wiring as a process-wide singleton
// (AggrEnv::instance). Per the design notes, that is deliberately not
// reproduced here: Environment is an explicit, immutable value passed
// through the call chain, not a hidden global.
package cube

import (
	"math"

	"github.com/minio/highwayhash"

	"github.com/grailbio/stoap/aggregate"
	"github.com/grailbio/stoap/area"
	"github.com/grailbio/stoap/dim"
	"github.com/grailbio/stoap/errs"
	"github.com/grailbio/stoap/key"
	"github.com/grailbio/stoap/result"
	"github.com/grailbio/stoap/storage"
)

// Cube is one cube: an ordered list of dimensions (order fixes the
// key layout), a name, and base-value storage.
type Cube struct {
	ID     uint64
	Name   string
	Dims   []*dim.Dimension
	Codec  *key.Codec
	Base   *storage.Storage
	maxIDs []uint64
}

// New builds a Cube over dims in key order. dims must already have
// had ComputeTopology called.
func New(id uint64, name string, dims []*dim.Dimension, base *storage.Storage) (*Cube, error) {
	maxIDs := make([]uint64, len(dims))
	for i, d := range dims {
		maxIDs[i] = uint64(d.MaxID())
	}
	codec, err := key.NewCodec(maxIDs)
	if err != nil {
		return nil, err
	}
	for i, d := range dims {
		f := codec.Field(i)
		d.SetKeyLayout(f.Pos, f.Mask)
	}
	return &Cube{ID: id, Name: name, Dims: dims, Codec: codec, Base: base, maxIDs: maxIDs}, nil
}

// MaxIDs returns the per-dimension maximum legal element id, in cube
// order — the bound NewArea uses to resolve area.All.
func (c *Cube) MaxIDs() []uint64 { return append([]uint64(nil), c.maxIDs...) }

// IsBase reports whether dimension dimIdx's element id is base
// (non-consolidated).
func (c *Cube) IsBase(dimIdx int, id uint64) bool {
	e := c.Dims[dimIdx].LookupByID(uint32(id))
	return e != nil && e.Kind == dim.Base
}

// NewArea builds an area over this cube's dimensions from one id list
// per dimension, resolving area.All against each dimension's max id.
func (c *Cube) NewArea(lists [][]uint64) (*area.Area, error) {
	if len(lists) != len(c.Dims) {
		return nil, errs.New(errs.InvalidCoordinates, "cube: wrong number of dimension lists: got %d, want %d", len(lists), len(c.Dims))
	}
	return area.NewFromLists(c.maxIDs, lists), nil
}

// Query resolves target into result cells. A target area of exactly
// one all-base cell is a direct storage lookup: no aggregation runs.
// Everything else is handed to the aggregation processor.
func (c *Cube) Query(target *area.Area) ([]result.Cell, error) {
	if target.Size() == 0 {
		return nil, nil
	}
	if target.Size() == 1 {
		it := target.PathBegin()
		tuple := it.Value()
		allBase := true
		for i, id := range tuple {
			if !c.IsBase(i, id) {
				allBase = false
				break
			}
		}
		if allBase {
			asm := result.NewAssembler(c.Codec, c.Base, nil, c.IsBase)
			cell, err := asm.Cell(tuple)
			if err != nil {
				return nil, err
			}
			return []result.Cell{cell}, nil
		}
	}

	proc := aggregate.New(c.Dims, c.Codec, c.Base)
	resultStorage, err := proc.Run(target)
	if err != nil {
		return nil, err
	}
	asm := result.NewAssembler(c.Codec, c.Base, resultStorage, c.IsBase)
	return asm.Area(target)
}

// Checksum summarizes base storage as a fixed-size digest, in the
// storage's own deterministic iteration order — used by the "info
// storage" command and to spot-check that repeated loads of an
// unchanged database produce bit-identical cubes.
func (c *Cube) Checksum() [highwayhash.Size]byte {
	var buf []byte
	var tmp [16]byte
	c.Base.Each(func(k uint64, v float64) {
		for i := 0; i < 8; i++ {
			tmp[i] = byte(k >> (8 * uint(i)))
		}
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			tmp[8+i] = byte(bits >> (8 * uint(i)))
		}
		buf = append(buf, tmp[:]...)
	})
	var zeroKey [32]byte
	return highwayhash.Sum(buf, zeroKey[:])
}
