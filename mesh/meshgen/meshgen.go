// Package meshgen builds small structured tetrahedral meshes used as fixtures
// and demo inputs.
package meshgen

import (
	"fmt"

	"github.com/juanDcuatindioyN/ECG-Project/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// kuhnTets are the six tetrahedra of a unit cell sharing the 0-7 diagonal.
// Corner i of a cell sits at offset (i&1, (i>>1)&1, (i>>2)&1).
var kuhnTets = [6][4]int{
	{0, 1, 3, 7},
	{0, 1, 5, 7},
	{0, 2, 3, 7},
	{0, 2, 6, 7},
	{0, 4, 5, 7},
	{0, 4, 6, 7},
}

// grid returns the nodes of an (n+1)^3 lattice spanning [lo,hi] and the
// Kuhn tetrahedra of its n^3 cells. All cells share one split orientation,
// so the result is conforming.
func grid(n int, lo, hi r3.Vec) ([]r3.Vec, [][4]int) {
	np := n + 1
	node := func(i, j, k int) int { return i + j*np + k*np*np }

	verts := make([]r3.Vec, 0, np*np*np)
	for k := 0; k < np; k++ {
		for j := 0; j < np; j++ {
			for i := 0; i < np; i++ {
				verts = append(verts, r3.Vec{
					X: lo.X + (hi.X-lo.X)*float64(i)/float64(n),
					Y: lo.Y + (hi.Y-lo.Y)*float64(j)/float64(n),
					Z: lo.Z + (hi.Z-lo.Z)*float64(k)/float64(n),
				})
			}
		}
	}

	tets := make([][4]int, 0, 6*n*n*n)
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				var corner [8]int
				for c := 0; c < 8; c++ {
					corner[c] = node(i+(c&1), j+((c>>1)&1), k+((c>>2)&1))
				}
				for _, kt := range kuhnTets {
					tets = append(tets, [4]int{corner[kt[0]], corner[kt[1]], corner[kt[2]], corner[kt[3]]})
				}
			}
		}
	}
	return verts, tets
}

// Cube returns an n×n×n cell box between lo and hi split into 6n³ tetrahedra
func Cube(n int, lo, hi r3.Vec) (*mesh.Mesh, error) {
	if n < 1 {
		return nil, fmt.Errorf("cube needs at least one cell per axis, got %d", n)
	}
	verts, tets := grid(n, lo, hi)
	return mesh.New(verts, tets)
}

// Ball returns the tetrahedra of an n-cell lattice over [-radius,radius]³ whose
// four nodes all lie inside the ball, with unused nodes removed. The mesh is a
// subset of the ball, so every point inside it has norm <= radius.
func Ball(n int, radius float64) (*mesh.Mesh, error) {
	if n < 2 {
		return nil, fmt.Errorf("ball needs at least two cells per axis, got %d", n)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("ball radius must be positive, got %g", radius)
	}
	lo := r3.Vec{X: -radius, Y: -radius, Z: -radius}
	hi := r3.Vec{X: radius, Y: radius, Z: radius}
	verts, tets := grid(n, lo, hi)

	limit := radius * (1 + 1e-12)
	kept := tets[:0]
	for _, tet := range tets {
		inside := true
		for _, v := range tet {
			if r3.Norm(verts[v]) > limit {
				inside = false
				break
			}
		}
		if inside {
			kept = append(kept, tet)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("ball with %d cells per axis has no interior tetrahedra", n)
	}

	verts, kept, _, _ = mesh.Compact(verts, kept)
	return mesh.New(verts, kept)
}
