package mesh_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/juanDcuatindioyN/ECG-Project/mesh"
	"github.com/juanDcuatindioyN/ECG-Project/mesh/meshgen"
	"github.com/juanDcuatindioyN/ECG-Project/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestBoundaryFaces_Cube(t *testing.T) {
	for _, n := range []int{1, 2, 3} {
		m, err := meshgen.Cube(n, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
		require.NoError(t, err)

		faces, err := mesh.BoundaryFaces(m)
		require.NoError(t, err)

		// Six sides, n² cells per side, two triangles per cell
		if len(faces) != 12*n*n {
			t.Errorf("n=%d: expected %d boundary faces, got %d", n, 12*n*n, len(faces))
		}

		// Every boundary face lies on the cube surface
		for _, f := range faces {
			onSide := false
			for axis := 0; axis < 3; axis++ {
				for _, side := range []float64{0, 1} {
					all := true
					for _, v := range f {
						if coord(m.Vertices[v], axis) != side {
							all = false
						}
					}
					onSide = onSide || all
				}
			}
			assert.True(t, onSide, "face %v is not on the cube surface", f)
		}
	}
}

func TestFaces(t *testing.T) {
	for _, n := range []int{1, 2} {
		m, err := meshgen.Cube(n, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
		require.NoError(t, err)

		faces, err := mesh.Faces(m)
		require.NoError(t, err)

		// Every tet face counted once, interior faces shared by two tets
		assert.Len(t, faces, (4*6*n*n*n+12*n*n)/2)
		seen := make(map[mesh.Face]bool, len(faces))
		for _, f := range faces {
			assert.True(t, f[0] < f[1] && f[1] < f[2], "face %v is not sorted", f)
			assert.False(t, seen[f], "face %v repeated", f)
			seen[f] = true
		}

		boundary, err := mesh.BoundaryFaces(m)
		require.NoError(t, err)
		for _, f := range boundary {
			key := f
			sort.Ints(key[:])
			assert.True(t, seen[key], "boundary face %v missing", f)
		}
	}
}

func coord(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func TestBoundaryFaces_BelongToExactlyOneTet(t *testing.T) {
	m, err := meshgen.Ball(6, 1)
	require.NoError(t, err)

	faces, err := mesh.BoundaryFaces(m)
	require.NoError(t, err)
	require.NotEmpty(t, faces)

	owners := make(map[utils.FaceKey]int)
	for _, tet := range m.EtoV {
		for _, lf := range utils.TetFaces {
			owners[utils.NewFaceKey(tet[lf[0]], tet[lf[1]], tet[lf[2]])]++
		}
	}
	for _, f := range faces {
		assert.Equal(t, 1, owners[utils.NewFaceKey(f[0], f[1], f[2])])
	}

	boundary := 0
	for _, c := range owners {
		if c == 1 {
			boundary++
		}
	}
	assert.Equal(t, boundary, len(faces))

	// Deterministic across repeated runs
	again, err := mesh.BoundaryFaces(m)
	require.NoError(t, err)
	assert.Equal(t, faces, again)
}

func TestBoundaryFaces_KeepsLocalOrdering(t *testing.T) {
	verts := []r3.Vec{{X: 0}, {X: 1}, {Y: 1}, {Z: 1}}
	m, err := mesh.New(verts, [][4]int{{3, 1, 0, 2}})
	require.NoError(t, err)

	faces, err := mesh.BoundaryFaces(m)
	require.NoError(t, err)
	assert.Equal(t, []mesh.Face{{3, 1, 0}, {3, 1, 2}, {3, 0, 2}, {1, 0, 2}}, faces)
}

func TestBoundaryFaces_NonManifold(t *testing.T) {
	verts := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}, {Z: -1}, {X: 1, Y: 1, Z: 1}}
	m, err := mesh.New(verts, [][4]int{{0, 1, 2, 3}, {0, 1, 2, 4}, {0, 1, 2, 5}})
	require.NoError(t, err)

	_, err = mesh.BoundaryFaces(m)
	assert.True(t, errors.Is(err, mesh.ErrNonManifold))
}

func TestExtractSurface(t *testing.T) {
	m, err := meshgen.Cube(1, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)

	t.Run("FaceCounting", func(t *testing.T) {
		faces, err := mesh.ExtractSurface(mesh.NewMetadata(), m)
		require.NoError(t, err)
		assert.Len(t, faces, 12)
	})

	t.Run("PrefersExplicitTriangles", func(t *testing.T) {
		md := mesh.NewMetadata()
		md.SurfaceTris = []mesh.Face{{0, 1, 3}, {0, 3, 2}}
		faces, err := mesh.ExtractSurface(md, m)
		require.NoError(t, err)
		assert.Equal(t, md.SurfaceTris, faces)
	})

	t.Run("ExplicitOutOfRange", func(t *testing.T) {
		md := mesh.NewMetadata()
		md.SurfaceTris = []mesh.Face{{0, 1, 99}}
		_, err := mesh.ExtractSurface(md, m)
		assert.True(t, errors.Is(err, mesh.ErrInvalidMesh))
	})
}

func TestBoundaryNodesAndFaceValues(t *testing.T) {
	faces := []mesh.Face{{2, 0, 1}, {1, 2, 3}}
	assert.Equal(t, []int{0, 1, 2, 3}, mesh.BoundaryNodes(faces))

	vals, err := mesh.FaceValues(faces, []float64{0, 3, 6, 9})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 6}, vals, 1e-15)

	_, err = mesh.FaceValues(faces, []float64{0, 1})
	assert.Error(t, err)
}
