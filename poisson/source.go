package poisson

import (
	"fmt"
	"math"

	"github.com/juanDcuatindioyN/ECG-Project/locate"
	"gonum.org/v1/gonum/spatial/r3"
)

// Source is a point charge at a requested position, possibly outside the mesh
type Source struct {
	Position r3.Vec
	Charge   float64
}

// UsedSource records where a source was actually applied
type UsedSource struct {
	locate.Projection
	Charge float64
}

// NewSources pairs positions with charges. Counts must match and every value
// must be finite.
func NewSources(positions []r3.Vec, charges []float64) ([]Source, error) {
	if len(positions) != len(charges) {
		return nil, fmt.Errorf("%w: %d sources but %d charges", ErrConfiguration, len(positions), len(charges))
	}
	sources := make([]Source, len(positions))
	for i := range positions {
		sources[i] = Source{Position: positions[i], Charge: charges[i]}
		if err := sources[i].validate(); err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
	}
	return sources, nil
}

func (s Source) validate() error {
	p := s.Position
	for _, v := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite position %v", ErrConfiguration, p)
		}
	}
	if math.IsNaN(s.Charge) || math.IsInf(s.Charge, 0) {
		return fmt.Errorf("%w: non-finite charge %g", ErrConfiguration, s.Charge)
	}
	return nil
}
