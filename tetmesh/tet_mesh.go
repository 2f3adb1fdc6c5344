package tetmesh

import (
	"fmt"
	"sort"
	"strings"

	"github.com/juanDcuatindioyN/ECG-Project/element"
	"github.com/juanDcuatindioyN/ECG-Project/mesh"
	"github.com/juanDcuatindioyN/ECG-Project/mesh/readers"
	"github.com/juanDcuatindioyN/ECG-Project/poisson"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// TetMesh is a loaded mesh with its side data, boundary surface and element
// geometry. It is not modified after construction, so one TetMesh may serve
// concurrent solves.
type TetMesh struct {
	*mesh.Mesh
	Metadata *mesh.Metadata
	Surface  []mesh.Face
	Geometry *element.GeometricTransform
}

// MeshStats summarizes the size and extent of a mesh
type MeshStats struct {
	NumNodes        int
	NumElements     int
	NumSurfaceFaces int
	NumDegenerate   int
	DroppedNodes    int

	Bounds     r3.Box
	Center     r3.Vec
	Dimensions r3.Vec
	Volume     float64
}

// NewTetMesh reads meshfile and prepares it for solving
func NewTetMesh(meshfile string) (*TetMesh, error) {
	msh, md, err := readers.ReadMeshFile(meshfile)
	if err != nil {
		return nil, err
	}
	tm, err := NewTetMeshFromMesh(msh, md)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", meshfile, err)
	}
	return tm, nil
}

// NewTetMeshFromMesh wraps an existing mesh. md may be nil.
func NewTetMeshFromMesh(msh *mesh.Mesh, md *mesh.Metadata) (*TetMesh, error) {
	if md == nil {
		md = mesh.NewMetadata()
	}
	surface, err := mesh.ExtractSurface(md, msh)
	if err != nil {
		return nil, err
	}
	return &TetMesh{
		Mesh:     msh,
		Metadata: md,
		Surface:  surface,
		Geometry: element.NewGeometricTransform(msh),
	}, nil
}

// SolvePointSource solves the grounded point source problem on this mesh
func (t *TetMesh) SolvePointSource(sources []poisson.Source, cfg poisson.Config) (*poisson.PointSourceResult, error) {
	return poisson.SolvePointSource(t.Mesh, sources, cfg)
}

// SolveConductivity solves the two cap conductivity problem on this mesh
func (t *TetMesh) SolveConductivity(zLower, zUpper float64, cfg poisson.Config) (*poisson.ConductivityResult, error) {
	return poisson.SolveConductivity(t.Mesh, t.Metadata, zLower, zUpper, cfg)
}

// SurfaceValues returns the mean of field over each surface triangle
func (t *TetMesh) SurfaceValues(field []float64) ([]float64, error) {
	return mesh.FaceValues(t.Surface, field)
}

// Stats returns counts and extents of the mesh
func (t *TetMesh) Stats() MeshStats {
	b := t.Bounds()
	return MeshStats{
		NumNodes:        t.NumVertices,
		NumElements:     t.NumElements,
		NumSurfaceFaces: len(t.Surface),
		NumDegenerate:   t.Geometry.NumDegenerate,
		DroppedNodes:    t.Metadata.DroppedNodes,
		Bounds:          b,
		Center:          r3.Scale(0.5, r3.Add(b.Min, b.Max)),
		Dimensions:      r3.Sub(b.Max, b.Min),
		Volume:          floats.Sum(t.Geometry.Volume),
	}
}

// String returns a summary of the mesh and its geometry
func (t *TetMesh) String() string {
	var sb strings.Builder
	st := t.Stats()

	sb.WriteString("=== TetMesh Summary ===\n")
	if t.Metadata.SourceFile != "" {
		sb.WriteString(fmt.Sprintf("  Source: %s (%s)\n", t.Metadata.SourceFile, t.Metadata.Format))
	}

	props := t.Geometry.Ref.GetProperties()
	sb.WriteString("\n--- Element ---\n")
	sb.WriteString(fmt.Sprintf("  Name: %s (%s)\n", props.Name, props.ShortName))
	sb.WriteString(fmt.Sprintf("  Type: %v\n", props.Type))
	sb.WriteString(fmt.Sprintf("  Order: %d\n", props.Order))
	sb.WriteString(fmt.Sprintf("  Spatial dimension: %d\n", props.Dimensions))
	sb.WriteString(fmt.Sprintf("  Nodes per element (Np): %d\n", props.Np))

	sb.WriteString("\n--- Physical Mesh Properties ---\n")
	sb.WriteString(fmt.Sprintf("  Number of elements: %d\n", st.NumElements))
	sb.WriteString(fmt.Sprintf("  Number of vertices: %d\n", st.NumNodes))
	sb.WriteString(fmt.Sprintf("  Number of surface triangles: %d\n", st.NumSurfaceFaces))
	if st.DroppedNodes > 0 {
		sb.WriteString(fmt.Sprintf("  Unreferenced nodes dropped: %d\n", st.DroppedNodes))
	}
	if t.Metadata.DecomposedHigher > 0 {
		sb.WriteString(fmt.Sprintf("  Quadratic elements reduced to corners: %d\n", t.Metadata.DecomposedHigher))
	}
	sb.WriteString(fmt.Sprintf("  Bounds: [%.4f, %.4f] x [%.4f, %.4f] x [%.4f, %.4f]\n",
		st.Bounds.Min.X, st.Bounds.Max.X, st.Bounds.Min.Y, st.Bounds.Max.Y, st.Bounds.Min.Z, st.Bounds.Max.Z))
	sb.WriteString(fmt.Sprintf("  Center: (%.4f, %.4f, %.4f)\n", st.Center.X, st.Center.Y, st.Center.Z))
	sb.WriteString(fmt.Sprintf("  Volume: %.6g\n", st.Volume))

	sb.WriteString("\n--- Geometric Transform ---\n")
	if len(t.Geometry.J) > 0 {
		sb.WriteString(fmt.Sprintf("  Jacobian range: [%.4e, %.4e]\n", floats.Min(t.Geometry.J), floats.Max(t.Geometry.J)))
	}
	if st.NumDegenerate > 0 {
		sb.WriteString(fmt.Sprintf("  Degenerate elements: %d\n", st.NumDegenerate))
	}

	if len(t.Metadata.CellData) > 0 || len(t.Metadata.PointData) > 0 {
		sb.WriteString("\n--- Data Arrays ---\n")
		for _, name := range sortedKeys(t.Metadata.CellData) {
			sb.WriteString(fmt.Sprintf("  Cell: %s (%d values)\n", name, len(t.Metadata.CellData[name])))
		}
		for _, name := range sortedKeys(t.Metadata.PointData) {
			sb.WriteString(fmt.Sprintf("  Point: %s (%d values)\n", name, len(t.Metadata.PointData[name])))
		}
	}

	sb.WriteString("\n=======================\n")
	return sb.String()
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
