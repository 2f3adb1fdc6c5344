package poisson

import (
	"fmt"

	"github.com/juanDcuatindioyN/ECG-Project/locate"
	"github.com/juanDcuatindioyN/ECG-Project/mesh"
	"github.com/juanDcuatindioyN/ECG-Project/solver"
)

// PointSourceResult is the grounded field of a set of point charges
type PointSourceResult struct {
	Field    []float64
	Used     []UsedSource
	Boundary []int // nodes held at zero
}

// SolvePointSource solves -Δu = Σ q δ(x - x_s) with u = 0 on every boundary
// node. Sources outside the mesh are projected inside first; how each one
// was placed is reported in Used.
func SolvePointSource(m *mesh.Mesh, sources []Source, cfg Config) (*PointSourceResult, error) {
	for i, s := range sources {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
	}
	faces, err := mesh.BoundaryFaces(m)
	if err != nil {
		return nil, err
	}
	asm := NewAssembler(m)
	loc, err := locate.NewLocator(m, asm.Geometry)
	if err != nil {
		return nil, err
	}

	b := make([]float64, m.NumVertices)
	used := make([]UsedSource, len(sources))
	for i, s := range sources {
		pr := loc.Project(s.Position, cfg.ProjectIterations)
		if pr.Element < 0 {
			return nil, fmt.Errorf("%w: source %d at %v could not be placed in the mesh",
				ErrConfiguration, i, s.Position)
		}
		used[i] = UsedSource{Projection: pr, Charge: s.Charge}
		asm.AddPointLoad(b, pr.Element, pr.Bary, s.Charge)
		if cfg.Debug {
			fmt.Printf("Source %d: requested %v, used %v in element %d (%s)\n",
				i, pr.Requested, pr.Position, pr.Element, pr.Status)
		}
	}

	A, err := asm.Stiffness(nil)
	if err != nil {
		return nil, err
	}
	boundary := mesh.BoundaryNodes(faces)
	c := solver.Uniform(boundary, 0)
	if err = checkAnchored(m, asm.Geometry, c); err != nil {
		return nil, err
	}
	if cfg.Debug {
		fmt.Printf("Point source solve: %d nodes, %d boundary nodes, %d degenerate elements\n",
			m.NumVertices, len(boundary), asm.Geometry.NumDegenerate)
	}

	field, err := solver.SolveConstrained(A, b, c, cfg.linearSolver())
	if err != nil {
		return nil, err
	}
	return &PointSourceResult{Field: field, Used: used, Boundary: boundary}, nil
}
