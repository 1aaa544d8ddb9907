package cube

import (
	"github.com/grailbio/stoap/dim"
	"github.com/grailbio/stoap/errs"
)

// Environment is the immutable, shared lookup of every loaded
// dimension and cube — the read-only global the original source
// exposed as AggrEnv::instance, here passed explicitly instead of as
// a hidden package-level singleton.
type Environment struct {
	Dimensions map[uint32]*dim.Dimension
	Cubes      map[uint64]*Cube
}

// NewEnvironment builds an Environment from already-loaded dimensions
// and cubes.
func NewEnvironment(dimensions map[uint32]*dim.Dimension, cubes map[uint64]*Cube) *Environment {
	return &Environment{Dimensions: dimensions, Cubes: cubes}
}

// Dimension looks up a dimension by id.
func (e *Environment) Dimension(id uint32) (*dim.Dimension, error) {
	d, ok := e.Dimensions[id]
	if !ok {
		return nil, errs.New(errs.InvalidCoordinates, "environment: unknown dimension id %d", id)
	}
	return d, nil
}

// Cube looks up a cube by id.
func (e *Environment) Cube(id uint64) (*Cube, error) {
	c, ok := e.Cubes[id]
	if !ok {
		return nil, errs.New(errs.InvalidCoordinates, "environment: unknown cube id %d", id)
	}
	return c, nil
}
