// Package poisson assembles and solves the P1 finite element Poisson problem
// on a tetrahedral mesh, either driven by point sources with a grounded
// boundary or by a conductivity field between two Dirichlet caps.
package poisson

import (
	"errors"
	"fmt"

	"github.com/juanDcuatindioyN/ECG-Project/locate"
	"github.com/juanDcuatindioyN/ECG-Project/solver"
)

var (
	// ErrConfiguration is returned for invalid caller input detected before assembly
	ErrConfiguration = errors.New("invalid configuration")
	// ErrIllPosed is returned when no Dirichlet node can be found
	ErrIllPosed = errors.New("ill-posed problem")
	// ErrDirichletConflict is returned when a node falls in both caps. It
	// matches ErrIllPosed under errors.Is.
	ErrDirichletConflict = fmt.Errorf("%w: conflicting Dirichlet values", ErrIllPosed)
)

// Config holds the numerical knobs of a solve. Physical parameters (sources,
// thresholds) are passed to the entry points directly.
type Config struct {
	Solver            solver.Solver
	ProjectIterations int
	Debug             bool
}

// DefaultConfig uses conjugate gradients and 25 bisection steps
func DefaultConfig() Config {
	return Config{
		Solver:            solver.CG{Tol: 1e-10},
		ProjectIterations: locate.DefaultProjectIterations,
	}
}

func (c Config) linearSolver() solver.Solver {
	if c.Solver == nil {
		return solver.CG{Tol: 1e-10}
	}
	return c.Solver
}
