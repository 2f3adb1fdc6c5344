// Package tetmesh holds a loaded tetrahedral mesh together with the data
// derived from it once: the boundary surface and the P1 element geometry.
package tetmesh
