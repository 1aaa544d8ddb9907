package dim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSample builds D0 = {b0:BASE, b1:BASE, c0:CONSOLIDATED} where c0
// has children {b0:1, b1:2}, matching the end-to-end scenario.
func buildSample(t *testing.T) *Dimension {
	t.Helper()
	d := New(0, "D0", 2)
	d.AddElement(&Element{ID: 0, Name: "b0", Position: 0, Kind: Base})
	d.AddElement(&Element{ID: 1, Name: "b1", Position: 1, Kind: Base})
	d.AddElement(&Element{ID: 2, Name: "c0", Position: 2, Kind: Consolidated})
	d.AddChild(2, 0, 1)
	d.AddChild(2, 1, 2)
	require.NoError(t, d.ComputeTopology())
	return d
}

func TestLookups(t *testing.T) {
	d := buildSample(t)
	assert.Equal(t, "b0", d.LookupByID(0).Name)
	assert.Equal(t, uint32(1), d.LookupByName("B1").ID)
	assert.Equal(t, "c0", d.LookupByPosition(2).Name)
	assert.Nil(t, d.LookupByID(99))
	assert.Nil(t, d.LookupByName("nope"))
}

func TestExpandBaseOfBaseElement(t *testing.T) {
	d := buildSample(t)
	ws, err := d.ExpandBase(0)
	require.NoError(t, err)
	assert.True(t, ws.Contains(0))
	assert.Equal(t, float64(1), ws.Weight(0))
	assert.Equal(t, uint64(1), ws.Size())
}

func TestExpandBaseOfConsolidated(t *testing.T) {
	d := buildSample(t)
	ws, err := d.ExpandBase(2)
	require.NoError(t, err)
	assert.True(t, ws.Contains(0))
	assert.True(t, ws.Contains(1))
	assert.Equal(t, float64(1), ws.Weight(0))
	assert.Equal(t, float64(2), ws.Weight(1))
}

func TestExpandBaseChildListWinsOverKind(t *testing.T) {
	d := New(0, "D0", 2)
	d.AddElement(&Element{ID: 0, Name: "b0", Position: 0, Kind: Base})
	d.AddElement(&Element{ID: 1, Name: "b1", Position: 1, Kind: Base})
	// c0 is declared Base despite carrying a child list.
	d.AddElement(&Element{ID: 2, Name: "c0", Position: 2, Kind: Base})
	d.AddChild(2, 0, 1)
	d.AddChild(2, 1, 2)
	require.NoError(t, d.ComputeTopology())

	ws, err := d.ExpandBase(2)
	require.NoError(t, err)
	assert.True(t, ws.Contains(0))
	assert.True(t, ws.Contains(1))
	assert.Equal(t, float64(1), ws.Weight(0))
	assert.Equal(t, float64(2), ws.Weight(1))
}

func TestExpandBaseCycleIsInternalError(t *testing.T) {
	d := New(0, "cyclic", 1)
	d.AddElement(&Element{ID: 0, Name: "a", Position: 0, Kind: Consolidated})
	d.AddElement(&Element{ID: 1, Name: "b", Position: 1, Kind: Consolidated})
	d.AddChild(0, 1, 1)
	d.AddChild(1, 0, 1)

	_, err := d.ExpandBase(0)
	require.Error(t, err)
}

func TestTopoOrderParentsBeforeChildren(t *testing.T) {
	d := buildSample(t)
	order, err := d.TopoOrder()
	require.NoError(t, err)
	pos := make(map[uint32]int)
	for i, e := range order {
		pos[e.ID] = i
	}
	assert.Less(t, pos[2], pos[0])
	assert.Less(t, pos[2], pos[1])
}

func TestLevelDepthIndent(t *testing.T) {
	d := buildSample(t)
	require.NoError(t, d.ComputeTopology())
	assert.Equal(t, 0, d.LookupByID(0).Level)
	assert.Equal(t, 0, d.LookupByID(1).Level)
	assert.Equal(t, 1, d.LookupByID(2).Level)

	assert.Equal(t, 0, d.LookupByID(2).Depth)
	assert.Equal(t, 1, d.LookupByID(0).Depth)
	assert.Equal(t, 1, d.LookupByID(1).Depth)

	assert.Equal(t, 1, d.LookupByID(2).Indent)
	assert.Equal(t, 2, d.LookupByID(0).Indent)
}

func TestRoots(t *testing.T) {
	d := buildSample(t)
	assert.Equal(t, []uint32{2}, d.Roots())
}
