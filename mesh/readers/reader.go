package readers

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/juanDcuatindioyN/ECG-Project/mesh"
	cfdmesh "github.com/notargets/gocfd/DG3D/mesh"
	cfdreaders "github.com/notargets/gocfd/DG3D/mesh/readers"
	"github.com/notargets/gocfd/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnsupportedFormat is returned for file types or encodings that cannot be read
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// ReadMeshFile reads a tetrahedral mesh, choosing the parser from the file
// extension: .vtk is legacy ASCII VTK, .msh/.neu/.su2 are Gmsh, Gambit
// neutral and SU2.
func ReadMeshFile(filename string) (*mesh.Mesh, *mesh.Metadata, error) {
	if err := ValidateFile(filename); err != nil {
		return nil, nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".vtk":
		return ReadLegacyVTK(filename)
	default:
		return readCFD(filename)
	}
}

// ValidateFile checks that filename exists, is not empty and has a readable type
func ValidateFile(filename string) error {
	info, err := os.Stat(filename)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s is empty", filename)
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".msh", ".neu", ".su2":
		return nil
	case ".vtk":
		file, err := os.Open(filename)
		if err != nil {
			return err
		}
		defer file.Close()
		scanner := bufio.NewScanner(file)
		if !scanner.Scan() || !strings.HasPrefix(strings.ToLower(scanner.Text()), "# vtk datafile") {
			return fmt.Errorf("%w: %s lacks the legacy VTK header", ErrUnsupportedFormat, filename)
		}
		return nil
	default:
		return fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}
}

// readCFD converts a mesh read by the gocfd readers. Tetrahedra become
// elements, second order tetrahedra keep their corner nodes, and triangles
// (volume or boundary) become explicit surface triangles.
func readCFD(filename string) (*mesh.Mesh, *mesh.Metadata, error) {
	cm, err := cfdreaders.ReadMeshFile(filename)
	if err != nil {
		return nil, nil, err
	}
	md := mesh.NewMetadata()
	md.SourceFile = filename
	md.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	verts := make([]r3.Vec, len(cm.Vertices))
	for i, c := range cm.Vertices {
		var v [3]float64
		copy(v[:], c)
		verts[i] = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}

	var tets [][4]int
	var tris []mesh.Face
	for k, nodes := range cm.EtoV {
		switch cm.ElementTypes[k] {
		case utils.Tet10:
			md.DecomposedHigher++
			fallthrough
		case utils.Tet:
			if len(nodes) < 4 {
				return nil, nil, fmt.Errorf("%w: element %d has %d nodes", mesh.ErrInvalidMesh, k, len(nodes))
			}
			tets = append(tets, [4]int{nodes[0], nodes[1], nodes[2], nodes[3]})
		case utils.Triangle:
			tris = append(tris, mesh.Face{nodes[0], nodes[1], nodes[2]})
		}
	}
	tris = append(tris, boundaryTriangles(cm)...)
	if len(tets) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", filename, mesh.ErrNoTetrahedra)
	}

	m, err := finish(md, verts, tets, tris)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, md, nil
}

func boundaryTriangles(cm *cfdmesh.Mesh) []mesh.Face {
	var tris []mesh.Face
	for _, elems := range cm.BoundaryElements {
		for _, be := range elems {
			if be.ElementType == utils.Triangle && len(be.Nodes) >= 3 {
				tris = append(tris, mesh.Face{be.Nodes[0], be.Nodes[1], be.Nodes[2]})
			}
		}
	}
	return tris
}

// finish compacts unreferenced nodes, remaps point data and surface
// triangles onto the kept nodes and validates the result.
func finish(md *mesh.Metadata, verts []r3.Vec, tets [][4]int, tris []mesh.Face) (*mesh.Mesh, error) {
	nOrig := len(verts)
	verts, tets, oldToNew, dropped := mesh.Compact(verts, tets)
	md.DroppedNodes = dropped

	for name, values := range md.PointData {
		if len(values) != nOrig {
			return nil, fmt.Errorf("point array %q has %d values for %d points", name, len(values), nOrig)
		}
		if dropped == 0 {
			continue
		}
		kept := make([]float64, 0, len(verts))
		for i, v := range values {
			if oldToNew[i] >= 0 {
				kept = append(kept, v)
			}
		}
		md.PointData[name] = kept
	}

	md.SurfaceTris = md.SurfaceTris[:0]
	for _, f := range tris {
		var g mesh.Face
		ok := true
		for a, v := range f {
			if v < 0 || v >= nOrig || oldToNew[v] < 0 {
				ok = false
				break
			}
			g[a] = oldToNew[v]
		}
		if ok {
			md.SurfaceTris = append(md.SurfaceTris, g)
		}
	}
	return mesh.New(verts, tets)
}
