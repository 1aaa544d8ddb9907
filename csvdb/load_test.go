package csvdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/stoap/dim"
)

// writeSampleDB lays out the two-dimensional sample database used
// throughout the engine's tests: D0 = {b0,b1:BASE, c0:CONSOLIDATED
// over b0:1,b1:2}, D1 = {x0,x1:BASE}, cube C with base values
// (b0,x0)=10 (b0,x1)=20 (b1,x0)=3 (b1,x1)=4.
func writeSampleDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	database := `[DATABASE]
2
[DIMENSIONS]
0;D0
1;D1
[CUBES]
1;C;0,1;1
[DIMENSION 0]
0;0;0;3
[ELEMENTS DIMENSION 0]
0;b0;0;1;0;1;0;2;;
1;b1;1;1;0;1;0;2;;
2;c0;2;4;1;0;1;;0,1;1,2
[DIMENSION 1]
0;0;0;2
[ELEMENTS DIMENSION 1]
0;x0;0;1;0;1;0;;;
1;x1;1;1;0;1;0;;;
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "database.csv"), []byte(database), 0o644))

	cubeCSV := `[CUBE]
1;C
[NUMERIC]
0,0;10
0,1;20
1,0;3
1,1;4
2,0;999
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "database_CUBE_1.csv"), []byte(cubeCSV), 0o644))
	return dir
}

func TestLoadBuildsEnvironment(t *testing.T) {
	dir := writeSampleDB(t)
	env, report, err := Load(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 1, report.SkippedConsolidatedTuples)

	c, err := env.Cube(1)
	require.NoError(t, err)

	area, err := c.NewArea([][]uint64{{2}, {0}})
	require.NoError(t, err)
	cells, err := c.Query(area)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.True(t, cells[0].Found)
	assert.Equal(t, float64(16), cells[0].Value)
}

func TestLoadSkipsStringElements(t *testing.T) {
	dir := t.TempDir()
	database := `[DIMENSIONS]
0;D0
[CUBES]
1;C;0;1
[ELEMENTS DIMENSION 0]
0;b0;0;1;0;1;0;;;
1;label;1;2;0;1;0;;;
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "database.csv"), []byte(database), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "database_CUBE_1.csv"), []byte("[NUMERIC]\n0;1\n"), 0o644))

	_, report, err := Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SkippedStringElements)
}

func TestLoadReconcilesKindAgainstChildList(t *testing.T) {
	dir := t.TempDir()
	// c0 is declared kind=1 (base, field 4 below) despite wiring
	// children 0 and 1; the child list must still win.
	database := `[DIMENSIONS]
0;D0
1;D1
[CUBES]
1;C;0,1;1
[ELEMENTS DIMENSION 0]
0;b0;0;1;0;1;0;2;;
1;b1;1;1;0;1;0;2;;
2;c0;2;1;1;0;1;;0,1;1,2
[ELEMENTS DIMENSION 1]
0;x0;0;1;0;1;0;;;
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "database.csv"), []byte(database), 0o644))
	cubeCSV := "[NUMERIC]\n0,0;10\n1,0;3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "database_CUBE_1.csv"), []byte(cubeCSV), 0o644))

	env, _, err := Load(context.Background(), dir)
	require.NoError(t, err)

	d, err := env.Dimension(0)
	require.NoError(t, err)
	assert.Equal(t, dim.Consolidated, d.LookupByID(2).Kind)

	c, err := env.Cube(1)
	require.NoError(t, err)
	area, err := c.NewArea([][]uint64{{2}, {0}})
	require.NoError(t, err)
	cells, err := c.Query(area)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.True(t, cells[0].Found)
	assert.Equal(t, float64(16), cells[0].Value)
}

func TestLoadSkipsUnknownChildEdge(t *testing.T) {
	dir := t.TempDir()
	database := `[DIMENSIONS]
0;D0
[CUBES]
1;C;0;1
[ELEMENTS DIMENSION 0]
0;b0;0;1;0;1;0;;;
1;c0;1;4;1;0;1;;0,9;1,1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "database.csv"), []byte(database), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "database_CUBE_1.csv"), []byte("[NUMERIC]\n0;1\n"), 0o644))

	_, report, err := Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SkippedUnknownEdges)
}
