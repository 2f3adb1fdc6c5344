package poisson

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"github.com/juanDcuatindioyN/ECG-Project/element"
	"github.com/juanDcuatindioyN/ECG-Project/mesh"
)

// Assembler builds global P1 operators for one mesh
type Assembler struct {
	Mesh     *mesh.Mesh
	Geometry *element.GeometricTransform
}

// NewAssembler computes the element geometry of m
func NewAssembler(m *mesh.Mesh) *Assembler {
	return &Assembler{Mesh: m, Geometry: element.NewGeometricTransform(m)}
}

// Stiffness assembles Σ_e σ_e V_e ∇λ_i·∇λ_j. A nil sigma means σ = 1
// everywhere. Degenerate elements contribute nothing.
func (a *Assembler) Stiffness(sigma []float64) (*sparse.CSR, error) {
	K := a.Mesh.NumElements
	if sigma != nil {
		if err := checkConductivity(sigma, K); err != nil {
			return nil, err
		}
	}
	n := a.Mesh.NumVertices
	dok := sparse.NewDOK(n, n)
	for k := 0; k < K; k++ {
		if a.Geometry.Degenerate[k] {
			continue
		}
		s := 1.0
		if sigma != nil {
			s = sigma[k]
		}
		Ke := a.Geometry.LocalStiffness(k, s)
		tet := a.Mesh.EtoV[k]
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				gi, gj := tet[i], tet[j]
				dok.Set(gi, gj, dok.At(gi, gj)+Ke.At(i, j))
			}
		}
	}
	return dok.ToCSR(), nil
}

// AddPointLoad adds the point evaluation functional of charge q located at
// barycentric coordinates bary in element elem: b_i += q λ_i.
func (a *Assembler) AddPointLoad(b []float64, elem int, bary [4]float64, q float64) {
	for i, node := range a.Mesh.EtoV[elem] {
		b[node] += q * bary[i]
	}
}

// Conductivity returns the per-element conductivity carried by md, or a
// uniform field of ones when md has no sigma array.
func Conductivity(md *mesh.Metadata, K int) ([]float64, error) {
	raw, ok := md.CellArray("sigma")
	sigma := make([]float64, K)
	if !ok {
		for k := range sigma {
			sigma[k] = 1
		}
		return sigma, nil
	}
	if err := checkConductivity(raw, K); err != nil {
		return nil, err
	}
	copy(sigma, raw)
	return sigma, nil
}

func checkConductivity(sigma []float64, K int) error {
	if len(sigma) != K {
		return fmt.Errorf("%w: sigma has %d values, mesh has %d tetrahedra", ErrConfiguration, len(sigma), K)
	}
	for k, s := range sigma {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: sigma[%d] is not finite", ErrConfiguration, k)
		}
		if s < 0 {
			return fmt.Errorf("%w: sigma[%d] = %g is negative", ErrConfiguration, k, s)
		}
	}
	return nil
}
