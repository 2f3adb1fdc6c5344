package utils

import (
	"errors"
	"fmt"
)

// ErrNonManifold is returned when a face is shared by more than two elements
var ErrNonManifold = errors.New("non-manifold face")

// Nfaces is the number of faces of a tetrahedron
const Nfaces = 4

// TetFaces lists the local vertex triples forming each tetrahedron face
var TetFaces = [Nfaces][3]int{
	{0, 1, 2}, // Face 0
	{0, 1, 3}, // Face 1
	{0, 2, 3}, // Face 2
	{1, 2, 3}, // Face 3
}

// FaceKey is the canonical form of a triangular face: its node indices sorted
type FaceKey [3]int

// NewFaceKey returns the canonical key of the face (a, b, c)
func NewFaceKey(a, b, c int) FaceKey {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return FaceKey{a, b, c}
}

// faceSlot records where a face was first seen
type faceSlot struct {
	elem  int
	face  int
	count int
}

// FaceConnector holds face connectivity for a tetrahedral mesh
type FaceConnector struct {
	K    int       // Total elements
	EToV [][4]int  // Element → vertices
	EToE [][4]int  // Element k, face f → neighbor element (-1 on the boundary)
	EToF [][4]int  // Element k, face f → neighbor's local face (-1 on the boundary)
	Keys []FaceKey // Unique faces in first-seen order

	NumBoundaryFaces int
	NumInteriorFaces int
}

// NewFaceConnector builds element-to-element and element-to-face tables.
// A face seen once is boundary, twice is interior; three or more is an error.
func NewFaceConnector(EToV [][4]int) (*FaceConnector, error) {
	K := len(EToV)
	if K == 0 {
		return nil, fmt.Errorf("invalid dimensions: K=%d", K)
	}

	fc := &FaceConnector{
		K:    K,
		EToV: EToV,
		EToE: make([][4]int, K),
		EToF: make([][4]int, K),
	}
	for k := 0; k < K; k++ {
		fc.EToE[k] = [4]int{-1, -1, -1, -1}
		fc.EToF[k] = [4]int{-1, -1, -1, -1}
	}

	faceMap := make(map[FaceKey]*faceSlot, 2*K+4)
	for k := 0; k < K; k++ {
		for f := 0; f < Nfaces; f++ {
			key := fc.FaceKey(k, f)
			slot, found := faceMap[key]
			if !found {
				faceMap[key] = &faceSlot{elem: k, face: f, count: 1}
				fc.Keys = append(fc.Keys, key)
				continue
			}
			slot.count++
			if slot.count > 2 {
				return nil, fmt.Errorf("%w: face %v appears in %d elements (element %d face %d)",
					ErrNonManifold, key, slot.count, k, f)
			}
			// Reciprocal connection
			fc.EToE[k][f] = slot.elem
			fc.EToF[k][f] = slot.face
			fc.EToE[slot.elem][slot.face] = k
			fc.EToF[slot.elem][slot.face] = f
		}
	}

	for _, key := range fc.Keys {
		if faceMap[key].count == 1 {
			fc.NumBoundaryFaces++
		} else {
			fc.NumInteriorFaces++
		}
	}

	return fc, nil
}

// FaceKey returns the canonical key of face f of element k
func (fc *FaceConnector) FaceKey(k, f int) FaceKey {
	v := fc.FaceVertices(k, f)
	return NewFaceKey(v[0], v[1], v[2])
}

// FaceVertices returns the node indices of face f of element k in local order
func (fc *FaceConnector) FaceVertices(k, f int) [3]int {
	lv := TetFaces[f]
	ev := fc.EToV[k]
	return [3]int{ev[lv[0]], ev[lv[1]], ev[lv[2]]}
}

// IsBoundary reports whether face f of element k has no neighbor
func (fc *FaceConnector) IsBoundary(k, f int) bool {
	return fc.EToE[k][f] < 0
}

// Verify checks reciprocity and face-count conservation
func (fc *FaceConnector) Verify() error {
	for k := 0; k < fc.K; k++ {
		for f := 0; f < Nfaces; f++ {
			nk, nf := fc.EToE[k][f], fc.EToF[k][f]
			if nk < 0 {
				continue
			}
			if nk >= fc.K || nf < 0 || nf >= Nfaces {
				return fmt.Errorf("element %d face %d: neighbor (%d,%d) out of range", k, f, nk, nf)
			}
			if fc.EToE[nk][nf] != k || fc.EToF[nk][nf] != f {
				return fmt.Errorf("element %d face %d: neighbor (%d,%d) does not point back", k, f, nk, nf)
			}
			if fc.FaceKey(k, f) != fc.FaceKey(nk, nf) {
				return fmt.Errorf("element %d face %d: neighbor face has different vertices", k, f)
			}
		}
	}

	// Every face slot is either boundary or half of an interior pair
	if total := fc.NumBoundaryFaces + 2*fc.NumInteriorFaces; total != fc.K*Nfaces {
		return fmt.Errorf("conservation error: %d face slots counted, expected %d", total, fc.K*Nfaces)
	}
	return nil
}
