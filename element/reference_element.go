package element

// ElementProperties contains metadata describing an element type
type ElementProperties struct {
	Name       string          // Full descriptive name (e.g., "Lagrange Tetrahedron Order 1")
	ShortName  string          // Abbreviated name (e.g., "Tet1")
	Type       ElementGeometry // Element shape
	Order      int             // Polynomial order
	Np         int             // Total number of nodes in element
	NFp        int             // Number of nodes per face
	NVp        int             // Number of vertex nodes
	NFaces     int             // Number of faces in each element
	NEdges     int             // Number of edges in each element
	Dimensions int             // Spatial dimension
}

// TetP1 is the linear Lagrange tetrahedron on the unit reference simplex
// with vertices (0,0,0), (1,0,0), (0,1,0), (0,0,1). Its basis functions are
// the barycentric coordinates of the point.
type TetP1 struct{}

var _ Element = TetP1{}

func (TetP1) Name() string                  { return "Lagrange Tetrahedron Order 1" }
func (TetP1) ShortName() string             { return "Tet1" }
func (TetP1) GeometryType() ElementGeometry { return Tet }
func (TetP1) Order() int                    { return 1 }
func (TetP1) Np() int                       { return 4 }
func (TetP1) NFp() int                      { return 3 }
func (TetP1) NVp() int                      { return 4 }
func (TetP1) Dimensions() int               { return 3 }

// Basis returns the four barycentric coordinates of reference point (r,s,t)
func (TetP1) Basis(r, s, t float64) []float64 {
	return []float64{1 - r - s - t, r, s, t}
}

// GetProperties returns element metadata
func (e TetP1) GetProperties() ElementProperties {
	return ElementProperties{
		Name:       e.Name(),
		ShortName:  e.ShortName(),
		Type:       e.GeometryType(),
		Order:      e.Order(),
		Np:         e.Np(),
		NFp:        e.NFp(),
		NVp:        e.NVp(),
		NFaces:     4,
		NEdges:     6,
		Dimensions: e.Dimensions(),
	}
}
