package tetmesh

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/juanDcuatindioyN/ECG-Project/mesh/meshgen"
	"github.com/juanDcuatindioyN/ECG-Project/mesh/writers"
	"github.com/juanDcuatindioyN/ECG-Project/poisson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func writeCube(t *testing.T, n int) string {
	t.Helper()
	m, err := meshgen.Cube(n, r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "cube.vtk")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, writers.WriteLegacyVTK(f, m, nil, nil))
	return path
}

func TestNewTetMesh(t *testing.T) {
	tm, err := NewTetMesh(writeCube(t, 3))
	require.NoError(t, err)
	fmt.Printf("%s", tm.String())

	st := tm.Stats()
	assert.Equal(t, 64, st.NumNodes)
	assert.Equal(t, 162, st.NumElements)
	assert.Equal(t, 12*9, st.NumSurfaceFaces)
	assert.InDelta(t, 8.0, st.Volume, 1e-12)
	assert.Equal(t, r3.Vec{X: 2, Y: 2, Z: 2}, st.Dimensions)
	assert.Equal(t, r3.Vec{}, st.Center)
	assert.Equal(t, 0, st.NumDegenerate)
	assert.True(t, strings.Contains(tm.String(), "Number of elements: 162"))
	assert.True(t, strings.Contains(tm.String(), "Spatial dimension: 3"))

	_, err = NewTetMesh(filepath.Join(t.TempDir(), "missing.vtk"))
	assert.Error(t, err)
}

func TestTetMesh_Solves(t *testing.T) {
	tm, err := NewTetMesh(writeCube(t, 4))
	require.NoError(t, err)
	cfg := poisson.DefaultConfig()

	// Both entry points can run at once on the shared mesh
	var (
		wg    sync.WaitGroup
		point *poisson.PointSourceResult
		cond  *poisson.ConductivityResult
		errP  error
		errC  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		point, errP = tm.SolvePointSource([]poisson.Source{{Position: r3.Vec{X: 0.1, Y: -0.2}, Charge: 1}}, cfg)
	}()
	go func() {
		defer wg.Done()
		cond, errC = tm.SolveConductivity(-0.9, 0.9, cfg)
	}()
	wg.Wait()
	require.NoError(t, errP)
	require.NoError(t, errC)

	vals, err := tm.SurfaceValues(point.Field)
	require.NoError(t, err)
	require.Len(t, vals, len(tm.Surface))
	for _, v := range vals {
		assert.Equal(t, 0.0, v)
	}

	vals, err = tm.SurfaceValues(cond.Field)
	require.NoError(t, err)
	for i, f := range tm.Surface {
		z := tm.Vertices[f[0]].Z
		if z == 1 && tm.Vertices[f[1]].Z == 1 && tm.Vertices[f[2]].Z == 1 {
			assert.Equal(t, 1.0, vals[i])
		}
	}
	// Uniform conductivity between flat caps gives a linear potential
	for i, v := range tm.Vertices {
		assert.InDelta(t, (v.Z+1)/2, cond.Field[i], 1e-8)
	}
}
