package cube

import (
	"testing"

	"github.com/grailbio/stoap/dim"
	"github.com/grailbio/stoap/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleCube(t *testing.T) *Cube {
	t.Helper()
	d0 := dim.New(0, "D0", 2)
	d0.AddElement(&dim.Element{ID: 0, Name: "b0", Position: 0, Kind: dim.Base})
	d0.AddElement(&dim.Element{ID: 1, Name: "b1", Position: 1, Kind: dim.Base})
	d0.AddElement(&dim.Element{ID: 2, Name: "c0", Position: 2, Kind: dim.Consolidated})
	d0.AddChild(2, 0, 1)
	d0.AddChild(2, 1, 2)
	require.NoError(t, d0.ComputeTopology())

	d1 := dim.New(1, "D1", 1)
	d1.AddElement(&dim.Element{ID: 0, Name: "x0", Position: 0, Kind: dim.Base})
	d1.AddElement(&dim.Element{ID: 1, Name: "x1", Position: 1, Kind: dim.Base})
	require.NoError(t, d1.ComputeTopology())

	base := storage.New(8)
	c, err := New(1, "C", []*dim.Dimension{d0, d1}, base)
	require.NoError(t, err)

	set := func(a, b uint64, v float64) {
		k, err := c.Codec.Encode([]uint64{a, b})
		require.NoError(t, err)
		base.Set(k, v)
	}
	set(0, 0, 10)
	set(0, 1, 20)
	set(1, 0, 3)
	set(1, 1, 4)
	return c
}

func TestQuerySingleBaseCellSkipsAggregation(t *testing.T) {
	c := buildSampleCube(t)
	area, err := c.NewArea([][]uint64{{0}, {0}})
	require.NoError(t, err)
	cells, err := c.Query(area)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.True(t, cells[0].Found)
	assert.Equal(t, float64(10), cells[0].Value)
}

func TestQueryConsolidatedCell(t *testing.T) {
	c := buildSampleCube(t)
	area, err := c.NewArea([][]uint64{{2}, {0}})
	require.NoError(t, err)
	cells, err := c.Query(area)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.True(t, cells[0].Found)
	assert.Equal(t, float64(16), cells[0].Value)
}

func TestChecksumDeterministic(t *testing.T) {
	c := buildSampleCube(t)
	first := c.Checksum()
	second := c.Checksum()
	assert.Equal(t, first, second)
}

func TestEnvironmentLookup(t *testing.T) {
	c := buildSampleCube(t)
	env := NewEnvironment(map[uint32]*dim.Dimension{0: c.Dims[0], 1: c.Dims[1]}, map[uint64]*Cube{1: c})

	got, err := env.Cube(1)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	_, err = env.Cube(99)
	assert.Error(t, err)
}
