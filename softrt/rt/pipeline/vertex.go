package pipeline

import (
	"github.com/gekko3d/orrery/softrt/rt/core"
	"github.com/gekko3d/orrery/softrt/rt/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// Transforms are the four matrices a vertex passes through, applied in field
// order.
type Transforms struct {
	Model      core.Matrix4
	View       core.Matrix4
	Projection core.Matrix4
	Viewport   core.Matrix4
}

// TransformedVertex is a vertex after the vertex stage. Screen holds pixel x/y
// and depth in [0,1]; attributes are carried for interpolation.
type TransformedVertex struct {
	Screen mgl32.Vec3
	// InvW is 1/w_clip, used to interpolate attributes perspective-correctly.
	InvW   float32
	ClipW  float32
	Normal mgl32.Vec3
	World  mgl32.Vec3
	Color  mgl32.Vec3
	// Visible is false when the vertex is on or behind the eye plane and has
	// no screen position.
	Visible bool
}

// ShadeVertex runs one vertex through Model, View, Projection (with the
// perspective divide) and Viewport. The normal goes through Model only.
func ShadeVertex(pos, normal, color mgl32.Vec3, t *Transforms) TransformedVertex {
	world := t.Model.TransformPoint4(pos).Vec3()
	eye := t.View.TransformPoint4(world).Vec3()
	return project(world, t.Projection.TransformPoint4(eye), normal, color, t.Model, t.Viewport)
}

// TransformVertices shades every vertex of m into dst, reusing its storage.
// Projection and View are composed once per call.
func TransformVertices(m *mesh.Mesh, color mgl32.Vec3, t *Transforms, dst []TransformedVertex) []TransformedVertex {
	dst = dst[:0]
	viewProj := t.Projection.Mul(t.View)
	for i := 0; i < m.VertexCount(); i++ {
		world := t.Model.TransformPoint4(m.Position(i)).Vec3()
		dst = append(dst, project(world, viewProj.TransformPoint4(world), m.Normal(i), color, t.Model, t.Viewport))
	}
	return dst
}

func project(world mgl32.Vec3, clip mgl32.Vec4, normal, color mgl32.Vec3, model, viewport core.Matrix4) TransformedVertex {
	v := TransformedVertex{
		World:  world,
		ClipW:  clip.W(),
		Normal: core.NormalizeOr(model.TransformDirection(normal), core.Up),
		Color:  color,
	}
	if v.ClipW <= core.WEpsilon {
		return v
	}
	v.InvW = 1 / v.ClipW
	ndc := clip.Vec3().Mul(v.InvW)
	v.Screen = viewport.TransformPoint4(ndc).Vec3()
	v.Visible = true
	return v
}
