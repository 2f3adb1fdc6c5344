package solver

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/james-bowman/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// laplace1D returns the n-node stiffness matrix of a unit spaced 1D rod
func laplace1D(n int) *sparse.CSR {
	dok := sparse.NewDOK(n, n)
	for e := 0; e < n-1; e++ {
		i, j := e, e+1
		dok.Set(i, i, dok.At(i, i)+1)
		dok.Set(j, j, dok.At(j, j)+1)
		dok.Set(i, j, dok.At(i, j)-1)
		dok.Set(j, i, dok.At(j, i)-1)
	}
	return dok.ToCSR()
}

func solvers() map[string]Solver {
	return map[string]Solver{
		"cg":       CG{Tol: 1e-12},
		"cholesky": Cholesky{},
	}
}

func TestSolveConstrained_Rod(t *testing.T) {
	n := 21
	A := laplace1D(n)
	b := make([]float64, n)
	c := Constraints{Nodes: []int{0, n - 1}, Values: []float64{0, 1}}

	for name, s := range solvers() {
		t.Run(name, func(t *testing.T) {
			x, err := SolveConstrained(A, b, c, s)
			require.NoError(t, err)
			require.Len(t, x, n)
			assert.Equal(t, 0.0, x[0])
			assert.Equal(t, 1.0, x[n-1])
			for i, v := range x {
				assert.InDelta(t, float64(i)/float64(n-1), v, 1e-9)
			}
		})
	}
}

func TestSolveConstrained_PointLoad(t *testing.T) {
	// Unit load in the middle of a rod clamped at both ends gives a tent
	n := 11
	A := laplace1D(n)
	b := make([]float64, n)
	b[5] = 1
	c := Uniform([]int{0, n - 1}, 0)

	for name, s := range solvers() {
		t.Run(name, func(t *testing.T) {
			x, err := SolveConstrained(A, b, c, s)
			require.NoError(t, err)
			assert.InDelta(t, 2.5, x[5], 1e-9)
			assert.InDelta(t, 1.5, x[7], 1e-9)
			assert.InDelta(t, 0.5, x[1], 1e-9)
		})
	}
}

func TestCGMatchesCholesky(t *testing.T) {
	// Random sparse SPD matrix: weighted graph Laplacian plus a small shift
	rnd := rand.New(rand.NewSource(7))
	n := 40
	dok := sparse.NewDOK(n, n)
	for i := 0; i < n; i++ {
		dok.Set(i, i, dok.At(i, i)+0.01)
		for k := 0; k < 3; k++ {
			j := rnd.Intn(n)
			if j == i {
				continue
			}
			w := 0.5 + rnd.Float64()
			dok.Set(i, i, dok.At(i, i)+w)
			dok.Set(j, j, dok.At(j, j)+w)
			dok.Set(i, j, dok.At(i, j)-w)
			dok.Set(j, i, dok.At(j, i)-w)
		}
	}
	A := dok.ToCSR()
	b := make([]float64, n)
	for i := range b {
		b[i] = rnd.NormFloat64()
	}
	c := Constraints{Nodes: []int{3, 17}, Values: []float64{1.5, -0.5}}

	xcg, err := SolveConstrained(A, b, c, CG{Tol: 1e-13})
	require.NoError(t, err)
	xch, err := SolveConstrained(A, b, c, Cholesky{})
	require.NoError(t, err)
	assert.InDeltaSlice(t, xch, xcg, 1e-8)
}

func TestSolveConstrained_Errors(t *testing.T) {
	A := laplace1D(5)
	b := make([]float64, 5)

	t.Run("no constraints", func(t *testing.T) {
		_, err := SolveConstrained(A, b, Constraints{}, CG{})
		assert.ErrorIs(t, err, ErrSingular)
	})
	t.Run("rhs length", func(t *testing.T) {
		_, err := SolveConstrained(A, b[:3], Uniform([]int{0}, 0), CG{})
		assert.Error(t, err)
	})
	t.Run("node out of range", func(t *testing.T) {
		_, err := SolveConstrained(A, b, Uniform([]int{5}, 0), CG{})
		assert.ErrorIs(t, err, ErrInvalidConstraints)
	})
	t.Run("conflicting values", func(t *testing.T) {
		c := Constraints{Nodes: []int{1, 1}, Values: []float64{0, 1}}
		_, err := SolveConstrained(A, b, c, CG{})
		assert.ErrorIs(t, err, ErrInvalidConstraints)
	})
	t.Run("all nodes fixed", func(t *testing.T) {
		nodes := []int{0, 1, 2, 3, 4}
		x, err := SolveConstrained(A, b, Uniform(nodes, 2), CG{})
		require.NoError(t, err)
		assert.Equal(t, []float64{2, 2, 2, 2, 2}, x)
	})
}

func TestSolvers_Singular(t *testing.T) {
	A := laplace1D(2)
	b := []float64{1, 0}

	_, err := CG{}.Solve(A, b)
	assert.True(t, errors.Is(err, ErrSingular), "cg: %v", err)

	_, err = Cholesky{}.Solve(A, b)
	assert.True(t, errors.Is(err, ErrSingular), "cholesky: %v", err)

	zero := sparse.NewDOK(2, 2).ToCSR()
	_, err = CG{}.Solve(zero, b)
	assert.ErrorIs(t, err, ErrSingular)
}

func TestCG_NotConverged(t *testing.T) {
	n := 50
	A := laplace1D(n)
	b := make([]float64, n)
	b[n-2] = 1
	_, err := SolveConstrained(A, b, Uniform([]int{0}, 0), CG{Tol: 1e-14, MaxIter: 1})
	assert.ErrorIs(t, err, ErrNotConverged)
}

func TestConstraintsAppend(t *testing.T) {
	c := Uniform([]int{1, 2}, 0).Append(Uniform([]int{7}, 1))
	assert.Equal(t, []int{1, 2, 7}, c.Nodes)
	assert.Equal(t, []float64{0, 0, 1}, c.Values)
	assert.NoError(t, c.Validate(8))
	assert.Error(t, c.Validate(7))
}
