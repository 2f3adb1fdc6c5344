// Package solver solves symmetric sparse systems with prescribed (Dirichlet)
// values on a subset of the unknowns.
package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
)

var (
	// ErrSingular is returned when the system has no unique solution
	ErrSingular = errors.New("singular system")
	// ErrNotConverged is returned when an iterative solver runs out of iterations
	ErrNotConverged = errors.New("solver did not converge")
	// ErrNonFinite is returned when the solution holds NaN or Inf values
	ErrNonFinite = errors.New("non-finite solution")
	// ErrInvalidConstraints is returned for malformed Dirichlet data
	ErrInvalidConstraints = errors.New("invalid constraints")
)

// Solver solves A x = b for a symmetric positive definite A
type Solver interface {
	Solve(A *sparse.CSR, b []float64) ([]float64, error)
}

// Constraints prescribes Values[i] at node Nodes[i]
type Constraints struct {
	Nodes  []int
	Values []float64
}

// Uniform returns constraints fixing every node in nodes to value
func Uniform(nodes []int, value float64) Constraints {
	c := Constraints{Nodes: append([]int(nil), nodes...), Values: make([]float64, len(nodes))}
	for i := range c.Values {
		c.Values[i] = value
	}
	return c
}

// Append adds the nodes of o to c
func (c Constraints) Append(o Constraints) Constraints {
	return Constraints{
		Nodes:  append(append([]int(nil), c.Nodes...), o.Nodes...),
		Values: append(append([]float64(nil), c.Values...), o.Values...),
	}
}

// Validate checks c against a system of n unknowns. A node may appear more
// than once only with the same value.
func (c Constraints) Validate(n int) error {
	if len(c.Nodes) != len(c.Values) {
		return fmt.Errorf("%w: %d nodes, %d values", ErrInvalidConstraints, len(c.Nodes), len(c.Values))
	}
	seen := make(map[int]float64, len(c.Nodes))
	for i, node := range c.Nodes {
		v := c.Values[i]
		if node < 0 || node >= n {
			return fmt.Errorf("%w: node %d out of range [0,%d)", ErrInvalidConstraints, node, n)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: node %d has non-finite value %g", ErrInvalidConstraints, node, v)
		}
		if prev, ok := seen[node]; ok && prev != v {
			return fmt.Errorf("%w: node %d prescribed both %g and %g", ErrInvalidConstraints, node, prev, v)
		}
		seen[node] = v
	}
	return nil
}

// SolveConstrained solves A x = b with x fixed on the constrained nodes.
// Constrained rows and columns are eliminated, the reduced system over the
// free nodes is solved with s, and prescribed values are copied verbatim.
func SolveConstrained(A *sparse.CSR, b []float64, c Constraints, s Solver) ([]float64, error) {
	n, nc := A.Dims()
	if n != nc {
		return nil, fmt.Errorf("matrix must be square, got %dx%d", n, nc)
	}
	if len(b) != n {
		return nil, fmt.Errorf("rhs has %d entries, matrix has %d rows", len(b), n)
	}
	if err := c.Validate(n); err != nil {
		return nil, err
	}
	if len(c.Nodes) == 0 {
		return nil, fmt.Errorf("%w: no prescribed values", ErrSingular)
	}

	x := make([]float64, n)
	fixed := make([]bool, n)
	for i, node := range c.Nodes {
		fixed[node] = true
		x[node] = c.Values[i]
	}

	// Map free nodes to reduced indices
	reduced := make([]int, n)
	var free []int
	for i := 0; i < n; i++ {
		if fixed[i] {
			reduced[i] = -1
			continue
		}
		reduced[i] = len(free)
		free = append(free, i)
	}
	if len(free) == 0 {
		return x, nil
	}

	nf := len(free)
	rhs := make([]float64, nf)
	for r, i := range free {
		rhs[r] = b[i]
	}
	Ar := sparse.NewDOK(nf, nf)
	A.DoNonZero(func(i, j int, v float64) {
		ri := reduced[i]
		if ri < 0 {
			return
		}
		if rj := reduced[j]; rj >= 0 {
			Ar.Set(ri, rj, Ar.At(ri, rj)+v)
		} else {
			rhs[ri] -= v * x[j]
		}
	})

	xf, err := s.Solve(Ar.ToCSR(), rhs)
	if err != nil {
		return nil, err
	}
	for r, i := range free {
		x[i] = xf[r]
	}
	if bad := nonFinite(x); len(bad) > 0 {
		return nil, fmt.Errorf("%w: %d entries, first at node %d", ErrNonFinite, len(bad), bad[0])
	}
	return x, nil
}

func nonFinite(x []float64) []int {
	var bad []int
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, i)
		}
	}
	return bad
}
