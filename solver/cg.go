package solver

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
)

// CG is a Jacobi preconditioned conjugate gradient solver. Zero values pick
// defaults: Tol 1e-10 relative to |b|, MaxIter 10n + 100.
type CG struct {
	Tol     float64
	MaxIter int
}

// Solve runs preconditioned CG on A x = b starting from zero
func (cg CG) Solve(A *sparse.CSR, b []float64) ([]float64, error) {
	n, _ := A.Dims()
	if len(b) != n {
		return nil, fmt.Errorf("rhs has %d entries, matrix has %d rows", len(b), n)
	}
	tol := cg.Tol
	if tol <= 0 {
		tol = 1e-10
	}
	maxIter := cg.MaxIter
	if maxIter <= 0 {
		maxIter = 10*n + 100
	}
	invDiag := make([]float64, n)
	A.DoNonZero(func(i, j int, v float64) {
		if i == j {
			invDiag[i] += v
		}
	})
	for i, d := range invDiag {
		if !(d > 0) {
			return nil, fmt.Errorf("%w: diagonal entry %d is %g", ErrSingular, i, d)
		}
		invDiag[i] = 1 / d
	}

	x := make([]float64, n)
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		return x, nil
	}

	r := append([]float64(nil), b...)
	z := make([]float64, n)
	floats.MulTo(z, invDiag, r)
	p := append([]float64(nil), z...)
	Ap := make([]float64, n)
	rz := floats.Dot(r, z)

	for it := 1; it <= maxIter; it++ {
		mulVec(A, p, Ap)
		pAp := floats.Dot(p, Ap)
		if !(pAp > 0) {
			return nil, fmt.Errorf("%w: search direction with p·Ap = %g at iteration %d", ErrSingular, pAp, it)
		}
		alpha := rz / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, Ap)

		rnorm := floats.Norm(r, 2)
		if math.IsNaN(rnorm) {
			return nil, fmt.Errorf("%w: residual at iteration %d", ErrNonFinite, it)
		}
		if rnorm <= tol*bnorm {
			return x, nil
		}

		floats.MulTo(z, invDiag, r)
		rzNew := floats.Dot(r, z)
		beta := rzNew / rz
		rz = rzNew
		for i := range p {
			p[i] = z[i] + beta*p[i]
		}
	}
	return nil, fmt.Errorf("%w: relative residual above %g after %d iterations", ErrNotConverged, tol, maxIter)
}

// mulVec computes y = A x
func mulVec(A *sparse.CSR, x, y []float64) {
	for i := range y {
		y[i] = 0
	}
	A.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
}
