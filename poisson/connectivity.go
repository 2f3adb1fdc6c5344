package poisson

import (
	"fmt"

	"github.com/juanDcuatindioyN/ECG-Project/element"
	"github.com/juanDcuatindioyN/ECG-Project/mesh"
	"github.com/juanDcuatindioyN/ECG-Project/solver"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// checkAnchored verifies that every connected piece of the mesh holds at
// least one constrained node. Without one the reduced system is singular.
func checkAnchored(m *mesh.Mesh, gt *element.GeometricTransform, c solver.Constraints) error {
	g := simple.NewUndirectedGraph()
	for k, tet := range m.EtoV {
		if gt.Degenerate[k] {
			continue
		}
		for a := 0; a < 4; a++ {
			for b := a + 1; b < 4; b++ {
				g.SetEdge(simple.Edge{F: simple.Node(tet[a]), T: simple.Node(tet[b])})
			}
		}
	}

	fixed := make(map[int64]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		fixed[int64(n)] = true
	}
	for _, comp := range topo.ConnectedComponents(g) {
		anchored := false
		for _, n := range comp {
			if fixed[n.ID()] {
				anchored = true
				break
			}
		}
		if !anchored {
			return fmt.Errorf("%w: mesh component of %d nodes has no Dirichlet node", solver.ErrSingular, len(comp))
		}
	}
	return nil
}
