package element

import (
	"fmt"
	"math"

	"github.com/juanDcuatindioyN/ECG-Project/mesh"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateTol is the smallest |J| accepted relative to the cube of the
// element's longest edge
const degenerateTol = 1e-12

// GeometricTransform maps every element of a mesh from the reference simplex
// to physical space. For P1 tetrahedra the map is affine, so one set of
// metric terms per element describes it completely.
type GeometricTransform struct {
	Ref ReferenceElement

	// Origin is the physical position of local node 0, the image of (0,0,0)
	Origin []r3.Vec

	// Grad holds the physical gradients of the four barycentric basis
	// functions of each element: Grad[k][i] = ∇λ_i on element k
	Grad [][4]r3.Vec

	// J is the Jacobian determinant |∂(x,y,z)/∂(r,s,t)| = 6 × signed volume
	J      []float64
	Volume []float64

	// Degenerate marks elements whose Jacobian is (numerically) singular.
	// Their metric terms are zero and they contribute nothing to assembly.
	Degenerate    []bool
	NumDegenerate int
}

// ReferenceElement is the element description a transform is built over
type ReferenceElement interface {
	Element
	GetProperties() ElementProperties
}

// NewGeometricTransform computes metric terms for all elements of m
func NewGeometricTransform(m *mesh.Mesh) *GeometricTransform {
	K := m.NumElements
	gt := &GeometricTransform{
		Ref:        TetP1{},
		Origin:     make([]r3.Vec, K),
		Grad:       make([][4]r3.Vec, K),
		J:          make([]float64, K),
		Volume:     make([]float64, K),
		Degenerate: make([]bool, K),
	}
	for k := 0; k < K; k++ {
		if err := gt.computeElement(k, m.ElementVertices(k)); err != nil {
			gt.Degenerate[k] = true
			gt.NumDegenerate++
		}
	}
	return gt
}

// computeElement fills the metric terms of element k.
// With E = [x1-x0 | x2-x0 | x3-x0], λ_{1..3} = E⁻¹(x - x0), so ∇λ_i is row i-1
// of E⁻¹ and ∇λ_0 = -(∇λ_1 + ∇λ_2 + ∇λ_3).
func (gt *GeometricTransform) computeElement(k int, v [4]r3.Vec) error {
	gt.Origin[k] = v[0]
	e1, e2, e3 := r3.Sub(v[1], v[0]), r3.Sub(v[2], v[0]), r3.Sub(v[3], v[0])

	E := mat.NewDense(3, 3, []float64{
		e1.X, e2.X, e3.X,
		e1.Y, e2.Y, e3.Y,
		e1.Z, e2.Z, e3.Z,
	})
	J := mat.Det(E)
	gt.J[k] = J

	hmax := 0.0
	for a := 0; a < 4; a++ {
		for b := a + 1; b < 4; b++ {
			hmax = math.Max(hmax, r3.Norm(r3.Sub(v[a], v[b])))
		}
	}
	if math.Abs(J) <= degenerateTol*hmax*hmax*hmax {
		return fmt.Errorf("element %d: degenerate Jacobian %g", k, J)
	}

	var Einv mat.Dense
	if err := Einv.Inverse(E); err != nil {
		return fmt.Errorf("element %d: %w", k, err)
	}

	var g [4]r3.Vec
	for i := 1; i < 4; i++ {
		g[i] = r3.Vec{X: Einv.At(i-1, 0), Y: Einv.At(i-1, 1), Z: Einv.At(i-1, 2)}
	}
	g[0] = r3.Scale(-1, r3.Add(r3.Add(g[1], g[2]), g[3]))

	gt.Grad[k] = g
	gt.Volume[k] = math.Abs(J) / 6
	return nil
}

// Reference maps p into the reference coordinates (r,s,t) of element k
func (gt *GeometricTransform) Reference(k int, p r3.Vec) (r, s, t float64) {
	d := r3.Sub(p, gt.Origin[k])
	g := gt.Grad[k]
	return r3.Dot(g[1], d), r3.Dot(g[2], d), r3.Dot(g[3], d)
}

// Barycentric returns the barycentric coordinates of p with respect to
// element k, the reference basis evaluated at p's reference coordinates
func (gt *GeometricTransform) Barycentric(k int, p r3.Vec) [4]float64 {
	var lam [4]float64
	copy(lam[:], gt.Ref.Basis(gt.Reference(k, p)))
	return lam
}

// Contains reports whether p lies in element k, allowing each barycentric
// coordinate to undershoot zero by tol. Degenerate elements contain nothing.
func (gt *GeometricTransform) Contains(k int, p r3.Vec, tol float64) ([4]float64, bool) {
	if gt.Degenerate[k] {
		return [4]float64{}, false
	}
	lam := gt.Barycentric(k, p)
	for _, l := range lam {
		if l < -tol {
			return lam, false
		}
	}
	return lam, true
}

// LocalStiffness returns the 4×4 P1 stiffness matrix σ V ∇λ_i·∇λ_j of element k
func (gt *GeometricTransform) LocalStiffness(k int, sigma float64) *mat.SymDense {
	K := mat.NewSymDense(4, nil)
	if gt.Degenerate[k] {
		return K
	}
	G := mat.NewDense(4, 3, nil)
	for i, g := range gt.Grad[k] {
		G.Set(i, 0, g.X)
		G.Set(i, 1, g.Y)
		G.Set(i, 2, g.Z)
	}
	K.SymOuterK(sigma*gt.Volume[k], G)
	return K
}

// TotalVolume returns the summed volume of all non-degenerate elements
func (gt *GeometricTransform) TotalVolume() float64 {
	var vol float64
	for _, v := range gt.Volume {
		vol += v
	}
	return vol
}
