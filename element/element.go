package element

import "fmt"

// ElementGeometry identifies the shape of an element
type ElementGeometry uint8

const Tet ElementGeometry = 0

func (g ElementGeometry) String() string {
	if g == Tet {
		return "Tet"
	}
	return fmt.Sprintf("ElementGeometry(%d)", uint8(g))
}

// Element is a Lagrange element described in reference space
type Element interface {
	Name() string
	ShortName() string
	GeometryType() ElementGeometry
	Order() int
	Np() int  // Number of nodes (degrees of freedom) per element
	NFp() int // Number of nodes per face
	NVp() int // Number of vertex nodes
	Dimensions() int

	// Basis evaluates every nodal basis function at reference point (r,s,t)
	Basis(r, s, t float64) []float64
}
