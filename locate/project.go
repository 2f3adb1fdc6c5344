package locate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultProjectIterations is the bisection depth used when none is given
const DefaultProjectIterations = 25

// projectBackoff moves the result back toward the anchor after bisection
const projectBackoff = 1e-6

// Status records how a source position was obtained
type Status uint8

const (
	Inside    Status = iota // requested point was already in the mesh
	Projected               // moved onto the anchor segment inside the mesh
	Fallback                // projection failed, anchor used instead
)

func (s Status) String() string {
	switch s {
	case Inside:
		return "inside"
	case Projected:
		return "projected"
	case Fallback:
		return "fallback"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Projection is the outcome of moving one point into the mesh
type Projection struct {
	Requested r3.Vec
	Position  r3.Vec
	Element   int
	Bary      [4]float64
	Status    Status
}

// ProjectInside returns p when it is inside the mesh. Otherwise it bisects the
// segment from the anchor to p for the last inside parameter and returns the
// point slightly on the anchor side of it. The result is not guaranteed to be
// inside when the segment leaves and re-enters the mesh.
func (l *Locator) ProjectInside(p r3.Vec, maxIterations int) r3.Vec {
	if l.IsInside(p) {
		return p
	}
	if maxIterations <= 0 {
		maxIterations = DefaultProjectIterations
	}
	a := l.anchor
	d := r3.Sub(p, a)
	lo, hi := 0.0, 1.0
	for i := 0; i < maxIterations; i++ {
		mid := 0.5 * (lo + hi)
		if l.IsInside(r3.Add(a, r3.Scale(mid, d))) {
			lo = mid
		} else {
			hi = mid
		}
	}
	t := math.Max(lo-projectBackoff, 0)
	return r3.Add(a, r3.Scale(t, d))
}

// Project moves p into the mesh and reports where it ended up. Non-finite
// input and projections that still miss the mesh fall back to the anchor.
func (l *Locator) Project(p r3.Vec, maxIterations int) Projection {
	pr := Projection{Requested: p, Element: -1}
	if k, lam, ok := l.Locate(p); ok {
		pr.Position, pr.Element, pr.Bary, pr.Status = p, k, lam, Inside
		return pr
	}
	if isFinite(p) {
		q := l.ProjectInside(p, maxIterations)
		if k, lam, ok := l.Locate(q); ok {
			pr.Position, pr.Element, pr.Bary, pr.Status = q, k, lam, Projected
			return pr
		}
	}
	pr.Position, pr.Status = l.anchor, Fallback
	pr.Element, pr.Bary, _ = l.Locate(l.anchor)
	return pr
}
