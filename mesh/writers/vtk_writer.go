// Package writers saves meshes and nodal fields for external viewers
package writers

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/juanDcuatindioyN/ECG-Project/mesh"
)

// WriteLegacyVTK writes m as an ASCII legacy VTK unstructured grid. Surface
// triangles are appended after the tetrahedra as triangle cells, and each
// field becomes a POINT_DATA scalar array.
func WriteLegacyVTK(w io.Writer, m *mesh.Mesh, surface []mesh.Face, fields map[string][]float64) error {
	names := make([]string, 0, len(fields))
	for name, values := range fields {
		if len(values) != m.NumVertices {
			return fmt.Errorf("field %q has %d values, mesh has %d nodes", name, len(values), m.NumVertices)
		}
		if name == "" || strings.ContainsAny(name, " \t\n") {
			return fmt.Errorf("field name %q must be a single word", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\n")
	fmt.Fprintf(bw, "tetrahedral mesh %d nodes %d elements\n", m.NumVertices, m.NumElements)
	fmt.Fprintf(bw, "ASCII\nDATASET UNSTRUCTURED_GRID\n")

	fmt.Fprintf(bw, "POINTS %d double\n", m.NumVertices)
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "%.17g %.17g %.17g\n", v.X, v.Y, v.Z)
	}

	ncells := m.NumElements + len(surface)
	fmt.Fprintf(bw, "CELLS %d %d\n", ncells, 5*m.NumElements+4*len(surface))
	for _, tet := range m.EtoV {
		fmt.Fprintf(bw, "4 %d %d %d %d\n", tet[0], tet[1], tet[2], tet[3])
	}
	for _, f := range surface {
		fmt.Fprintf(bw, "3 %d %d %d\n", f[0], f[1], f[2])
	}
	fmt.Fprintf(bw, "CELL_TYPES %d\n", ncells)
	for k := 0; k < m.NumElements; k++ {
		fmt.Fprintln(bw, 10)
	}
	for range surface {
		fmt.Fprintln(bw, 5)
	}

	if len(names) > 0 {
		fmt.Fprintf(bw, "POINT_DATA %d\n", m.NumVertices)
		for _, name := range names {
			fmt.Fprintf(bw, "SCALARS %s double 1\nLOOKUP_TABLE default\n", name)
			for _, v := range fields[name] {
				fmt.Fprintf(bw, "%.17g\n", v)
			}
		}
	}
	return bw.Flush()
}
