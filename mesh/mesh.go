package mesh

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInvalidMesh is returned when node or element data violates the mesh invariants
	ErrInvalidMesh = errors.New("invalid mesh")
	// ErrNoTetrahedra is returned when a mesh source carries no tetrahedral cells
	ErrNoTetrahedra = errors.New("mesh has no tetrahedral cells")
)

// Mesh is a tetrahedral volume mesh. Node index is the position in Vertices.
type Mesh struct {
	Vertices []r3.Vec // Node coordinates [nvertices]
	EtoV     [][4]int // Element to vertex connectivity [nelems]

	NumElements int
	NumVertices int
}

// Metadata carries the side information a mesh file may hold besides geometry
type Metadata struct {
	SourceFile string
	Format     string

	CellData    map[string][]float64 // name -> one value per tetrahedron
	PointData   map[string][]float64 // name -> one value per node
	SurfaceTris []Face               // explicit boundary triangles, if the file has them

	DroppedNodes     int // unreferenced nodes removed during load
	DecomposedHigher int // higher order elements reduced to their corner nodes
}

// NewMetadata returns an empty Metadata with initialized maps
func NewMetadata() *Metadata {
	return &Metadata{
		CellData:  make(map[string][]float64),
		PointData: make(map[string][]float64),
	}
}

// CellArray returns the cell array whose name matches case-insensitively
func (md *Metadata) CellArray(name string) ([]float64, bool) {
	if md == nil {
		return nil, false
	}
	for n, v := range md.CellData {
		if strings.EqualFold(n, name) {
			return v, true
		}
	}
	return nil, false
}

// New validates the node and element data and returns a Mesh
func New(vertices []r3.Vec, EtoV [][4]int) (*Mesh, error) {
	if len(vertices) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 nodes, got %d", ErrInvalidMesh, len(vertices))
	}
	if len(EtoV) == 0 {
		return nil, ErrNoTetrahedra
	}
	for i, v := range vertices {
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: node %d has non-finite coordinates %v", ErrInvalidMesh, i, v)
		}
	}
	nv := len(vertices)
	for k, tet := range EtoV {
		for a := 0; a < 4; a++ {
			if tet[a] < 0 || tet[a] >= nv {
				return nil, fmt.Errorf("%w: element %d references node %d out of range [0,%d)",
					ErrInvalidMesh, k, tet[a], nv)
			}
			for b := a + 1; b < 4; b++ {
				if tet[a] == tet[b] {
					return nil, fmt.Errorf("%w: element %d repeats node %d", ErrInvalidMesh, k, tet[a])
				}
			}
		}
	}
	return &Mesh{
		Vertices:    vertices,
		EtoV:        EtoV,
		NumElements: len(EtoV),
		NumVertices: nv,
	}, nil
}

// Centroid returns the coordinate-wise mean of all nodes
func (m *Mesh) Centroid() r3.Vec {
	var sum r3.Vec
	for _, v := range m.Vertices {
		sum = r3.Add(sum, v)
	}
	return r3.Scale(1/float64(len(m.Vertices)), sum)
}

// Bounds returns the axis aligned bounding box of the nodes
func (m *Mesh) Bounds() r3.Box {
	b := r3.Box{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min = r3.Vec{X: math.Min(b.Min.X, v.X), Y: math.Min(b.Min.Y, v.Y), Z: math.Min(b.Min.Z, v.Z)}
		b.Max = r3.Vec{X: math.Max(b.Max.X, v.X), Y: math.Max(b.Max.Y, v.Y), Z: math.Max(b.Max.Z, v.Z)}
	}
	return b
}

// ElementVertices returns the coordinates of the four nodes of element k
func (m *Mesh) ElementVertices(k int) [4]r3.Vec {
	tet := m.EtoV[k]
	return [4]r3.Vec{m.Vertices[tet[0]], m.Vertices[tet[1]], m.Vertices[tet[2]], m.Vertices[tet[3]]}
}

// Compact drops nodes not referenced by any element and renumbers the rest in order.
// It returns the old-to-new index map (-1 for dropped nodes) and the number dropped.
func Compact(vertices []r3.Vec, EtoV [][4]int) ([]r3.Vec, [][4]int, []int, int) {
	used := make([]bool, len(vertices))
	for _, tet := range EtoV {
		for _, v := range tet {
			if v >= 0 && v < len(vertices) {
				used[v] = true
			}
		}
	}

	oldToNew := make([]int, len(vertices))
	kept := make([]r3.Vec, 0, len(vertices))
	for i, u := range used {
		if !u {
			oldToNew[i] = -1
			continue
		}
		oldToNew[i] = len(kept)
		kept = append(kept, vertices[i])
	}
	dropped := len(vertices) - len(kept)
	if dropped == 0 {
		return vertices, EtoV, oldToNew, 0
	}

	renumbered := make([][4]int, len(EtoV))
	for k, tet := range EtoV {
		for a, v := range tet {
			if v < 0 || v >= len(vertices) {
				renumbered[k][a] = v // left for New to reject
				continue
			}
			renumbered[k][a] = oldToNew[v]
		}
	}
	return kept, renumbered, oldToNew, dropped
}

func isFinite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
