// Package locate finds the tetrahedron containing a point and moves source
// points that fall outside the mesh back into its interior.
package locate

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/juanDcuatindioyN/ECG-Project/element"
	"github.com/juanDcuatindioyN/ECG-Project/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// BaryTol is how far below zero a barycentric coordinate may fall while
	// the point still counts as inside
	BaryTol = 1e-9

	// R-tree branching limits
	treeMinChildren = 25
	treeMaxChildren = 50
)

// tetBox is the R-tree entry for one element
type tetBox struct {
	elem int
	rect *rtreego.Rect
}

var _ rtreego.Spatial = (*tetBox)(nil)

func (b *tetBox) Bounds() *rtreego.Rect { return b.rect }

// Locator answers point-in-mesh queries for one mesh
type Locator struct {
	m    *mesh.Mesh
	gt   *element.GeometricTransform
	tree *rtreego.Rtree

	anchor r3.Vec
}

// NewLocator indexes the bounding box of every non-degenerate element of m.
// gt must have been built from the same mesh.
func NewLocator(m *mesh.Mesh, gt *element.GeometricTransform) (*Locator, error) {
	if len(gt.Volume) != m.NumElements {
		return nil, fmt.Errorf("geometry has %d elements, mesh has %d", len(gt.Volume), m.NumElements)
	}
	ext := m.Bounds()
	span := r3.Norm(r3.Sub(ext.Max, ext.Min))
	pad := math.Max(span*1e-9, 1e-12)

	objs := make([]rtreego.Spatial, 0, m.NumElements)
	for k := 0; k < m.NumElements; k++ {
		if gt.Degenerate[k] {
			continue
		}
		rect, err := elementRect(m.ElementVertices(k), pad)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", k, err)
		}
		objs = append(objs, &tetBox{elem: k, rect: rect})
	}

	l := &Locator{
		m:    m,
		gt:   gt,
		tree: rtreego.NewTree(3, treeMinChildren, treeMaxChildren, objs...),
	}
	l.anchor = m.Vertices[0]
	if c := m.Centroid(); l.IsInside(c) {
		l.anchor = c
	}
	return l, nil
}

func elementRect(v [4]r3.Vec, pad float64) (*rtreego.Rect, error) {
	lo, hi := v[0], v[0]
	for _, p := range v[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return rtreego.NewRect(
		rtreego.Point{lo.X - pad, lo.Y - pad, lo.Z - pad},
		[]float64{hi.X - lo.X + 2*pad, hi.Y - lo.Y + 2*pad, hi.Z - lo.Z + 2*pad},
	)
}

// Locate returns the lowest numbered element containing p with its
// barycentric coordinates. ok is false when no element contains p.
func (l *Locator) Locate(p r3.Vec) (elem int, bary [4]float64, ok bool) {
	if !isFinite(p) {
		return -1, bary, false
	}
	hits := l.tree.SearchIntersect(rtreego.Point{p.X, p.Y, p.Z}.ToRect(BaryTol))
	elem = -1
	for _, h := range hits {
		k := h.(*tetBox).elem
		if elem >= 0 && k > elem {
			continue
		}
		if lam, in := l.gt.Contains(k, p, BaryTol); in {
			elem, bary = k, lam
		}
	}
	return elem, bary, elem >= 0
}

// IsInside reports whether some element contains p
func (l *Locator) IsInside(p r3.Vec) bool {
	_, _, ok := l.Locate(p)
	return ok
}

// Anchor is the interior reference point used for projection: the node
// centroid when it lies in the mesh, node 0 otherwise.
func (l *Locator) Anchor() r3.Vec { return l.anchor }

func isFinite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
