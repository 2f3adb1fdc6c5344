package poisson

import (
	"fmt"
	"math"

	"github.com/juanDcuatindioyN/ECG-Project/mesh"
	"github.com/juanDcuatindioyN/ECG-Project/solver"
)

// capShrink is the fraction of the z range the thresholds move inward when
// neither cap selects a facet
const capShrink = 0.05

// CapSelection describes the Dirichlet caps a conductivity solve used
type CapSelection struct {
	Top    []int // nodes held at 1
	Bottom []int // nodes held at 0

	ZLower, ZUpper float64 // thresholds actually applied
	Adjusted       bool    // thresholds were pulled inward
}

// ConductivityResult is the potential between the two caps
type ConductivityResult struct {
	Field []float64
	Sigma []float64
	Caps  CapSelection
}

// SolveConductivity solves ∇·(σ∇u) = 0 with u = 1 on the nodes of every facet
// whose midpoint lies above zUpper and u = 0 on those of every facet whose
// midpoint lies below zLower. Interior facets count. σ comes from the "sigma"
// cell array of md, or is 1 when md has none.
func SolveConductivity(m *mesh.Mesh, md *mesh.Metadata, zLower, zUpper float64, cfg Config) (*ConductivityResult, error) {
	if math.IsNaN(zLower) || math.IsNaN(zUpper) || math.IsInf(zLower, 0) || math.IsInf(zUpper, 0) {
		return nil, fmt.Errorf("%w: thresholds must be finite, got %g and %g", ErrConfiguration, zLower, zUpper)
	}
	sigma, err := Conductivity(md, m.NumElements)
	if err != nil {
		return nil, err
	}
	faces, err := mesh.Faces(m)
	if err != nil {
		return nil, err
	}

	caps, err := SelectCaps(m, faces, zLower, zUpper)
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		fmt.Printf("Caps: %d top nodes above z=%g, %d bottom nodes below z=%g (adjusted: %v)\n",
			len(caps.Top), caps.ZUpper, len(caps.Bottom), caps.ZLower, caps.Adjusted)
	}

	asm := NewAssembler(m)
	A, err := asm.Stiffness(sigma)
	if err != nil {
		return nil, err
	}
	c := solver.Uniform(caps.Top, 1).Append(solver.Uniform(caps.Bottom, 0))
	if err = checkAnchored(m, asm.Geometry, c); err != nil {
		return nil, err
	}

	field, err := solver.SolveConstrained(A, make([]float64, m.NumVertices), c, cfg.linearSolver())
	if err != nil {
		return nil, err
	}
	return &ConductivityResult{Field: field, Sigma: sigma, Caps: caps}, nil
}

// SelectCaps picks the nodes of the facets whose midpoint z is above zUpper
// (top) or below zLower (bottom). When both sets are empty the thresholds are
// moved 5% of the z range inside the mesh extent and the selection retried
// once. A node in both sets is an error.
func SelectCaps(m *mesh.Mesh, faces []mesh.Face, zLower, zUpper float64) (CapSelection, error) {
	sel := CapSelection{ZLower: zLower, ZUpper: zUpper}
	sel.Top, sel.Bottom = capNodes(m, faces, zLower, zUpper)

	if len(sel.Top) == 0 && len(sel.Bottom) == 0 {
		ext := m.Bounds()
		dz := ext.Max.Z - ext.Min.Z
		sel.ZLower = ext.Min.Z + capShrink*dz
		sel.ZUpper = ext.Max.Z - capShrink*dz
		sel.Adjusted = true
		sel.Top, sel.Bottom = capNodes(m, faces, sel.ZLower, sel.ZUpper)
	}
	if len(sel.Top) == 0 && len(sel.Bottom) == 0 {
		return sel, fmt.Errorf("%w: no facet midpoint lies above z=%g or below z=%g",
			ErrIllPosed, sel.ZUpper, sel.ZLower)
	}

	bottom := make(map[int]bool, len(sel.Bottom))
	for _, v := range sel.Bottom {
		bottom[v] = true
	}
	var clash []int
	for _, v := range sel.Top {
		if bottom[v] {
			clash = append(clash, v)
		}
	}
	if len(clash) > 0 {
		return sel, fmt.Errorf("%w: %d nodes lie in both caps, first is node %d at %v",
			ErrDirichletConflict, len(clash), clash[0], m.Vertices[clash[0]])
	}
	return sel, nil
}

func capNodes(m *mesh.Mesh, faces []mesh.Face, zLower, zUpper float64) (top, bottom []int) {
	var upper, lower []mesh.Face
	for _, f := range faces {
		z := (m.Vertices[f[0]].Z + m.Vertices[f[1]].Z + m.Vertices[f[2]].Z) / 3
		if z > zUpper {
			upper = append(upper, f)
		}
		if z < zLower {
			lower = append(lower, f)
		}
	}
	return mesh.BoundaryNodes(upper), mesh.BoundaryNodes(lower)
}
