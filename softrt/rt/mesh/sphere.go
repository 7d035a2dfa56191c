package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UVSphere builds a unit sphere with single-vertex poles. It has
// (stacks-1)*slices+2 vertices and 2*slices*(stacks-1) triangles, so
// UVSphere(16, 32) gives 482 vertices and 960 faces.
//
// Faces wind clockwise as seen from outside the sphere, which is the winding
// that lands with positive signed area in y-down screen space.
func UVSphere(stacks, slices int) (*Mesh, error) {
	if stacks < 2 || slices < 3 {
		return nil, fmt.Errorf("uv sphere needs stacks >= 2 and slices >= 3, got %d/%d", stacks, slices)
	}

	rings := stacks - 1
	positions := make([]mgl32.Vec3, 0, rings*slices+2)
	positions = append(positions, mgl32.Vec3{0, 1, 0})
	for i := 1; i <= rings; i++ {
		phi := math.Pi * float64(i) / float64(stacks)
		sp, cp := math.Sincos(phi)
		for j := 0; j < slices; j++ {
			theta := 2 * math.Pi * float64(j) / float64(slices)
			st, ct := math.Sincos(theta)
			positions = append(positions, mgl32.Vec3{float32(sp * ct), float32(cp), float32(sp * st)})
		}
	}
	positions = append(positions, mgl32.Vec3{0, -1, 0})

	north := uint32(0)
	south := uint32(len(positions) - 1)
	ring := func(i, j int) uint32 {
		return uint32(1 + i*slices + j%slices)
	}

	indices := make([]uint32, 0, 6*slices*rings)
	for j := 0; j < slices; j++ {
		indices = append(indices, north, ring(0, j), ring(0, j+1))
	}
	for i := 0; i < rings-1; i++ {
		for j := 0; j < slices; j++ {
			a, b := ring(i, j), ring(i, j+1)
			c, d := ring(i+1, j), ring(i+1, j+1)
			indices = append(indices, a, c, d, a, d, b)
		}
	}
	for j := 0; j < slices; j++ {
		indices = append(indices, ring(rings-1, j), south, ring(rings-1, j+1))
	}

	// On a unit sphere the outward normal is the position itself.
	normals := make([]mgl32.Vec3, len(positions))
	copy(normals, positions)

	return New(positions, normals, indices)
}
