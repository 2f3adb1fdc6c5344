package solver

import (
	"errors"
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Cholesky solves by dense factorization. It suits small systems and serves
// as a reference for the iterative solver.
type Cholesky struct{}

// Solve factors the symmetric part of A and solves A x = b
func (Cholesky) Solve(A *sparse.CSR, b []float64) ([]float64, error) {
	n, _ := A.Dims()
	if len(b) != n {
		return nil, fmt.Errorf("rhs has %d entries, matrix has %d rows", len(b), n)
	}
	sym := mat.NewSymDense(n, nil)
	A.DoNonZero(func(i, j int, v float64) {
		if j >= i {
			sym.SetSym(i, j, v)
		}
	})

	var ch mat.Cholesky
	if ok := ch.Factorize(sym); !ok {
		return nil, fmt.Errorf("%w: matrix is not positive definite", ErrSingular)
	}
	var x mat.VecDense
	if err := ch.SolveVecTo(&x, mat.NewVecDense(n, append([]float64(nil), b...))); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: condition number %g", ErrSingular, float64(cond))
		}
		return nil, err
	}
	return x.RawVector().Data, nil
}
