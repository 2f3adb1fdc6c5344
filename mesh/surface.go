package mesh

import (
	"fmt"
	"sort"

	"github.com/juanDcuatindioyN/ECG-Project/utils"
)

// ErrNonManifold is returned when a face is shared by three or more tetrahedra
var ErrNonManifold = utils.ErrNonManifold

// Face is a boundary triangle given by three node indices
type Face [3]int

// ExtractSurface returns the boundary triangles of the mesh. Explicit surface
// triangles carried by the file are preferred over face counting.
func ExtractSurface(md *Metadata, m *Mesh) ([]Face, error) {
	if md != nil && len(md.SurfaceTris) > 0 {
		for i, f := range md.SurfaceTris {
			for _, v := range f {
				if v < 0 || v >= m.NumVertices {
					return nil, fmt.Errorf("%w: surface triangle %d references node %d out of range",
						ErrInvalidMesh, i, v)
				}
			}
		}
		out := make([]Face, len(md.SurfaceTris))
		copy(out, md.SurfaceTris)
		return out, nil
	}
	return BoundaryFaces(m)
}

// BoundaryFaces returns every face that belongs to exactly one tetrahedron, in
// element order, keeping the element's local vertex ordering.
func BoundaryFaces(m *Mesh) ([]Face, error) {
	fc, err := utils.NewFaceConnector(m.EtoV)
	if err != nil {
		return nil, err
	}
	faces := make([]Face, 0, fc.NumBoundaryFaces)
	for k := 0; k < fc.K; k++ {
		for f := 0; f < utils.Nfaces; f++ {
			if fc.IsBoundary(k, f) {
				faces = append(faces, Face(fc.FaceVertices(k, f)))
			}
		}
	}
	return faces, nil
}

// Faces returns every unique face of the mesh, interior and boundary, in
// first-seen order with sorted vertex indices.
func Faces(m *Mesh) ([]Face, error) {
	fc, err := utils.NewFaceConnector(m.EtoV)
	if err != nil {
		return nil, err
	}
	faces := make([]Face, len(fc.Keys))
	for i, key := range fc.Keys {
		faces[i] = Face(key)
	}
	return faces, nil
}

// BoundaryNodes returns the sorted set of nodes touched by the faces
func BoundaryNodes(faces []Face) []int {
	seen := make(map[int]struct{}, len(faces))
	for _, f := range faces {
		for _, v := range f {
			seen[v] = struct{}{}
		}
	}
	nodes := make([]int, 0, len(seen))
	for v := range seen {
		nodes = append(nodes, v)
	}
	sort.Ints(nodes)
	return nodes
}

// FaceValues returns, for each face, the mean of the field at its three nodes
func FaceValues(faces []Face, field []float64) ([]float64, error) {
	out := make([]float64, len(faces))
	for i, f := range faces {
		var sum float64
		for _, v := range f {
			if v < 0 || v >= len(field) {
				return nil, fmt.Errorf("face %d references node %d, field has %d values", i, v, len(field))
			}
			sum += field[v]
		}
		out[i] = sum / 3
	}
	return out, nil
}
