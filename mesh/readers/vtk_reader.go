package readers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/juanDcuatindioyN/ECG-Project/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// VTK cell type codes
const (
	vtkTriangle          = 5
	vtkTetra             = 10
	vtkQuadraticTriangle = 22
	vtkQuadraticTetra    = 24
)

// ReadLegacyVTK reads an ASCII legacy VTK unstructured grid
func ReadLegacyVTK(filename string) (*mesh.Mesh, *mesh.Metadata, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	m, md, err := DecodeLegacyVTK(file)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}
	md.SourceFile = filename
	return m, md, nil
}

// DecodeLegacyVTK parses a legacy VTK stream. Tetrahedra and the corner
// nodes of quadratic tetrahedra form the mesh; triangles are kept as
// explicit surface triangles. Cell arrays are restricted to the tetrahedra.
func DecodeLegacyVTK(r io.Reader) (*mesh.Mesh, *mesh.Metadata, error) {
	g, err := parseVTK(r)
	if err != nil {
		return nil, nil, err
	}
	md := mesh.NewMetadata()
	md.Format = "vtk"

	var (
		tets    [][4]int
		tris    []mesh.Face
		tetCell []int
	)
	for c, nodes := range g.cells {
		switch g.types[c] {
		case vtkQuadraticTetra:
			md.DecomposedHigher++
			fallthrough
		case vtkTetra:
			if len(nodes) < 4 {
				return nil, nil, fmt.Errorf("%w: cell %d has %d nodes", mesh.ErrInvalidMesh, c, len(nodes))
			}
			tets = append(tets, [4]int{nodes[0], nodes[1], nodes[2], nodes[3]})
			tetCell = append(tetCell, c)
		case vtkTriangle, vtkQuadraticTriangle:
			if len(nodes) < 3 {
				return nil, nil, fmt.Errorf("%w: cell %d has %d nodes", mesh.ErrInvalidMesh, c, len(nodes))
			}
			tris = append(tris, mesh.Face{nodes[0], nodes[1], nodes[2]})
		}
	}
	if len(tets) == 0 {
		return nil, nil, mesh.ErrNoTetrahedra
	}

	for name, values := range g.cellData {
		if len(values) != len(g.cells) {
			return nil, nil, fmt.Errorf("cell array %q has %d values for %d cells", name, len(values), len(g.cells))
		}
		tv := make([]float64, len(tetCell))
		for k, c := range tetCell {
			tv[k] = values[c]
		}
		md.CellData[name] = tv
	}
	for name, values := range g.pointData {
		md.PointData[name] = values
	}

	m, err := finish(md, g.points, tets, tris)
	if err != nil {
		return nil, nil, err
	}
	return m, md, nil
}

// vtkGrid is the raw content of a legacy unstructured grid file
type vtkGrid struct {
	points    []r3.Vec
	cells     [][]int
	types     []int
	cellData  map[string][]float64
	pointData map[string][]float64
}

// vtkTokens walks the whitespace separated tokens following the header and
// remembers which of them open a new line
type vtkTokens struct {
	scanner *bufio.Scanner
	pending bool // a newline was skipped since the last token

	peeked     string
	peekedLine bool
	hasPeek    bool
	newLine    bool // the last token returned by next opened a line
}

func newVTKTokens(r io.Reader) *vtkTokens {
	t := &vtkTokens{scanner: bufio.NewScanner(r)}
	t.scanner.Split(t.splitWords)
	return t
}

// splitWords is bufio.ScanWords over ASCII whitespace that leaves the
// delimiter in place so a newline ending a token is seen before the next one
func (t *vtkTokens) splitWords(data []byte, atEOF bool) (int, []byte, error) {
	start := 0
	for ; start < len(data) && isSpace(data[start]); start++ {
		if data[start] == '\n' {
			t.pending = true
		}
	}
	for i := start; i < len(data); i++ {
		if isSpace(data[i]) {
			return i, data[start:i], nil
		}
	}
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func (t *vtkTokens) next() (string, error) {
	if t.hasPeek {
		t.hasPeek = false
		t.newLine = t.peekedLine
		return t.peeked, nil
	}
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	t.newLine, t.pending = t.pending, false
	return t.scanner.Text(), nil
}

func (t *vtkTokens) peek() (string, bool) {
	if !t.hasPeek {
		tok, err := t.next()
		if err != nil {
			return "", false
		}
		t.peeked, t.peekedLine, t.hasPeek = tok, t.newLine, true
	}
	return t.peeked, true
}

// peekSameLine is peek restricted to a token on the line already being read
func (t *vtkTokens) peekSameLine() (string, bool) {
	tok, ok := t.peek()
	if !ok || t.peekedLine {
		return "", false
	}
	return tok, true
}

func (t *vtkTokens) nextInt() (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, unexpected(err)
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", tok)
	}
	return v, nil
}

// nextCount reads a size from a section header
func (t *vtkTokens) nextCount() (int, error) {
	v, err := t.nextInt()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: negative count %d", mesh.ErrInvalidMesh, v)
	}
	return v, nil
}

func (t *vtkTokens) nextFloat() (float64, error) {
	tok, err := t.next()
	if err != nil {
		return 0, unexpected(err)
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", tok)
	}
	return v, nil
}

// maxPrealloc bounds the capacity reserved from a header count before the
// values behind it have been read
const maxPrealloc = 1 << 16

func (t *vtkTokens) floats(n int) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative count %d", mesh.ErrInvalidMesh, n)
	}
	out := make([]float64, 0, min(n, maxPrealloc))
	for len(out) < n {
		v, err := t.nextFloat()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *vtkTokens) ints(n int) ([]int, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative count %d", mesh.ErrInvalidMesh, n)
	}
	out := make([]int, 0, min(n, maxPrealloc))
	for len(out) < n {
		v, err := t.nextInt()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *vtkTokens) skip(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative count %d", mesh.ErrInvalidMesh, n)
	}
	for i := 0; i < n; i++ {
		if _, err := t.next(); err != nil {
			return unexpected(err)
		}
	}
	return nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// sectionKeywords start a new block of the file
var sectionKeywords = map[string]bool{
	"POINTS": true, "CELLS": true, "CELL_TYPES": true, "CELL_DATA": true,
	"POINT_DATA": true, "SCALARS": true, "FIELD": true, "VECTORS": true,
	"NORMALS": true, "TENSORS": true, "METADATA": true,
}

func parseVTK(r io.Reader) (*vtkGrid, error) {
	br := bufio.NewReader(r)
	header := make([]string, 3)
	for i := range header {
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, fmt.Errorf("reading header: %w", unexpected(err))
		}
		header[i] = strings.TrimSpace(line)
	}
	if !strings.HasPrefix(strings.ToLower(header[0]), "# vtk datafile") {
		return nil, fmt.Errorf("%w: missing legacy VTK header", ErrUnsupportedFormat)
	}
	switch strings.ToUpper(header[2]) {
	case "ASCII":
	case "BINARY":
		return nil, fmt.Errorf("%w: binary legacy VTK", ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: unknown encoding %q", ErrUnsupportedFormat, header[2])
	}

	t := newVTKTokens(br)
	g := &vtkGrid{
		cellData:  make(map[string][]float64),
		pointData: make(map[string][]float64),
	}

	// data points at the attribute map of the current CELL_DATA / POINT_DATA block
	var (
		data  map[string][]float64
		count int
	)
	for {
		tok, err := t.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch strings.ToUpper(tok) {
		case "DATASET":
			kind, err := t.next()
			if err != nil {
				return nil, unexpected(err)
			}
			if !strings.EqualFold(kind, "UNSTRUCTURED_GRID") {
				return nil, fmt.Errorf("%w: dataset %s", ErrUnsupportedFormat, kind)
			}
		case "POINTS":
			n, err := t.nextCount()
			if err != nil {
				return nil, fmt.Errorf("POINTS: %w", err)
			}
			if err = t.skip(1); err != nil { // data type
				return nil, err
			}
			xyz, err := t.floats(3 * n)
			if err != nil {
				return nil, fmt.Errorf("POINTS: %w", err)
			}
			g.points = make([]r3.Vec, len(xyz)/3)
			for i := range g.points {
				g.points[i] = r3.Vec{X: xyz[3*i], Y: xyz[3*i+1], Z: xyz[3*i+2]}
			}
		case "CELLS":
			if err := parseCells(t, g); err != nil {
				return nil, fmt.Errorf("CELLS: %w", err)
			}
		case "CELL_TYPES":
			n, err := t.nextCount()
			if err != nil {
				return nil, fmt.Errorf("CELL_TYPES: %w", err)
			}
			if g.types, err = t.ints(n); err != nil {
				return nil, fmt.Errorf("CELL_TYPES: %w", err)
			}
		case "CELL_DATA":
			if count, err = t.nextCount(); err != nil {
				return nil, fmt.Errorf("CELL_DATA: %w", err)
			}
			data = g.cellData
		case "POINT_DATA":
			if count, err = t.nextCount(); err != nil {
				return nil, fmt.Errorf("POINT_DATA: %w", err)
			}
			data = g.pointData
		case "SCALARS":
			if data == nil {
				return nil, fmt.Errorf("SCALARS outside CELL_DATA or POINT_DATA")
			}
			if err := parseScalars(t, data, count); err != nil {
				return nil, fmt.Errorf("SCALARS: %w", err)
			}
		case "FIELD":
			target := data
			if target == nil {
				// Dataset level field data has no per-entity meaning here
				target = make(map[string][]float64)
			}
			if err := parseField(t, target); err != nil {
				return nil, fmt.Errorf("FIELD: %w", err)
			}
		case "VECTORS", "NORMALS", "TENSORS":
			if data == nil {
				return nil, fmt.Errorf("%s outside CELL_DATA or POINT_DATA", tok)
			}
			width := 3
			if strings.EqualFold(tok, "TENSORS") {
				width = 9
			}
			if err := t.skip(2 + width*count); err != nil {
				return nil, fmt.Errorf("%s: %w", tok, err)
			}
		case "METADATA":
			for {
				next, ok := t.peek()
				if !ok || sectionKeywords[strings.ToUpper(next)] {
					break
				}
				t.next()
			}
		default:
			return nil, fmt.Errorf("unexpected token %q", tok)
		}
	}

	if len(g.cells) != len(g.types) {
		return nil, fmt.Errorf("%w: %d cells but %d cell types", mesh.ErrInvalidMesh, len(g.cells), len(g.types))
	}
	for c, nodes := range g.cells {
		for _, v := range nodes {
			if v < 0 || v >= len(g.points) {
				return nil, fmt.Errorf("%w: cell %d references point %d out of range [0,%d)",
					mesh.ErrInvalidMesh, c, v, len(g.points))
			}
		}
	}
	return g, nil
}

// parseCells reads either the classic "CELLS n size" list of counted node
// lists or the 5.x OFFSETS / CONNECTIVITY pair.
func parseCells(t *vtkTokens, g *vtkGrid) error {
	n, err := t.nextCount()
	if err != nil {
		return err
	}
	size, err := t.nextCount()
	if err != nil {
		return err
	}

	if next, ok := t.peek(); ok && strings.EqualFold(next, "OFFSETS") {
		if err = t.skip(2); err != nil { // OFFSETS <type>
			return err
		}
		offsets, err := t.ints(n)
		if err != nil {
			return fmt.Errorf("OFFSETS: %w", err)
		}
		if kw, err := t.next(); err != nil || !strings.EqualFold(kw, "CONNECTIVITY") {
			return fmt.Errorf("expected CONNECTIVITY after OFFSETS")
		}
		if err = t.skip(1); err != nil {
			return err
		}
		conn, err := t.ints(size)
		if err != nil {
			return fmt.Errorf("CONNECTIVITY: %w", err)
		}
		if n == 0 {
			return nil
		}
		g.cells = make([][]int, n-1)
		for c := range g.cells {
			lo, hi := offsets[c], offsets[c+1]
			if lo < 0 || hi < lo || hi > len(conn) {
				return fmt.Errorf("%w: bad offsets %d..%d for cell %d", mesh.ErrInvalidMesh, lo, hi, c)
			}
			g.cells[c] = conn[lo:hi]
		}
		return nil
	}

	g.cells = make([][]int, 0, min(n, maxPrealloc))
	read := 0
	for c := 0; c < n; c++ {
		np, err := t.nextCount()
		if err != nil {
			return fmt.Errorf("cell %d: %w", c, err)
		}
		nodes, err := t.ints(np)
		if err != nil {
			return err
		}
		g.cells = append(g.cells, nodes)
		read += np + 1
	}
	if read != size {
		return fmt.Errorf("%w: cell list holds %d entries, header says %d", mesh.ErrInvalidMesh, read, size)
	}
	return nil
}

// parseScalars reads "SCALARS name type [ncomp]" with an optional lookup table.
// ncomp is only taken from the header line itself.
func parseScalars(t *vtkTokens, data map[string][]float64, count int) error {
	name, err := t.next()
	if err != nil {
		return unexpected(err)
	}
	if err = t.skip(1); err != nil { // data type
		return err
	}
	ncomp := 1
	if next, ok := t.peekSameLine(); ok {
		v, err := strconv.Atoi(next)
		if err != nil {
			return fmt.Errorf("%s: invalid component count %q", name, next)
		}
		if v < 1 {
			return fmt.Errorf("%w: %s has %d components", mesh.ErrInvalidMesh, name, v)
		}
		t.next()
		ncomp = v
	}
	if next, ok := t.peek(); ok && strings.EqualFold(next, "LOOKUP_TABLE") {
		if err = t.skip(2); err != nil {
			return err
		}
	}
	values, err := t.floats(ncomp * count)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if ncomp == 1 {
		data[name] = values
	}
	return nil
}

// parseField reads "FIELD name narrays" followed by narrays arrays of the
// form "name ncomp ntuples type values...". Only single component arrays are
// kept.
func parseField(t *vtkTokens, data map[string][]float64) error {
	if err := t.skip(1); err != nil {
		return err
	}
	narrays, err := t.nextCount()
	if err != nil {
		return err
	}
	for a := 0; a < narrays; a++ {
		name, err := t.next()
		if err != nil {
			return unexpected(err)
		}
		ncomp, err := t.nextCount()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		ntuples, err := t.nextCount()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err = t.skip(1); err != nil {
			return err
		}
		values, err := t.floats(ncomp * ntuples)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if ncomp == 1 {
			data[name] = values
		}
	}
	return nil
}
