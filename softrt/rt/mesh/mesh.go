package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrEmptyMesh       = errors.New("mesh has no vertices")
	ErrNotTriangles    = errors.New("index count is not a multiple of 3")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNormalCount     = errors.New("normal count does not match vertex count")
)

// Mesh is local-space triangle geometry. It is never mutated after New, so a
// single instance may be read by any number of draws at once.
type Mesh struct {
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	indices   []uint32
}

// New validates the buffers and takes ownership of them.
func New(positions, normals []mgl32.Vec3, indices []uint32) (*Mesh, error) {
	if len(positions) == 0 {
		return nil, ErrEmptyMesh
	}
	if len(normals) != len(positions) {
		return nil, fmt.Errorf("%w: %d normals for %d vertices", ErrNormalCount, len(normals), len(positions))
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices", ErrNotTriangles, len(indices))
	}
	n := uint32(len(positions))
	for i, idx := range indices {
		if idx >= n {
			return nil, fmt.Errorf("%w: index %d at position %d, vertex count %d", ErrIndexOutOfRange, idx, i, n)
		}
	}
	return &Mesh{positions: positions, normals: normals, indices: indices}, nil
}

func (m *Mesh) VertexCount() int   { return len(m.positions) }
func (m *Mesh) TriangleCount() int { return len(m.indices) / 3 }

func (m *Mesh) Position(i int) mgl32.Vec3 { return m.positions[i] }
func (m *Mesh) Normal(i int) mgl32.Vec3   { return m.normals[i] }

// Indices returns the triangle index list. Callers must not modify it.
func (m *Mesh) Indices() []uint32 { return m.indices }

// Triangle returns the three vertex indices of face i.
func (m *Mesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.indices[3*i], m.indices[3*i+1], m.indices[3*i+2]}
}

// Bounds returns the local-space axis-aligned box.
func (m *Mesh) Bounds() [2]mgl32.Vec3 {
	lo, hi := m.positions[0], m.positions[0]
	for _, p := range m.positions[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return [2]mgl32.Vec3{lo, hi}
}

// computeNormals accumulates unnormalized face normals (area weighted) into
// each referenced vertex and normalizes the sums.
func computeNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	for f := 0; f+2 < len(indices); f += 3 {
		a, b, c := indices[f], indices[f+1], indices[f+2]
		n := positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a]))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i, n := range normals {
		if l := n.Len(); l > 0 {
			normals[i] = n.Mul(1 / l)
		}
	}
	return normals
}
