package orrery

import (
	"fmt"
	"math"

	"github.com/gekko3d/orrery/softrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	pitchLimit = math.Pi/2 - 0.1

	minZoomDistance = 10
	maxZoomDistance = 1000

	// Keep-out radii, as multiples of a body's radius.
	minDistanceFactor = 2.5
	collisionFactor   = 1.5
	pushOutFactor     = 1.6

	sunWarpDistance      = 80
	overviewWarpDistance = 400
)

// Camera orbits Target at Distance. Yaw and Pitch place the eye on that
// sphere; while a warp is animating the eye is driven directly instead.
type Camera struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3

	Yaw      float32
	Pitch    float32
	Distance float32

	RotationSpeed float32
	ZoomSpeed     float32
	PanSpeed      float32
	MoveSpeed     float32
	WarpDuration  float32

	warping      bool
	warpFrom     mgl32.Vec3
	warpTo       mgl32.Vec3
	warpProgress float32
}

func NewCamera(cfg CameraConfig) *Camera {
	c := &Camera{
		Eye:           cfg.Eye,
		Target:        cfg.Target,
		Up:            core.Up,
		RotationSpeed: cfg.RotationSpeed,
		ZoomSpeed:     cfg.ZoomSpeed,
		PanSpeed:      cfg.PanSpeed,
		MoveSpeed:     cfg.MoveSpeed,
		WarpDuration:  cfg.WarpDuration,
	}
	if c.Eye == c.Target {
		c.Eye = c.Target.Add(mgl32.Vec3{0, 0, minZoomDistance})
	}
	c.syncAngles()
	return c
}

// syncAngles derives the orbit parameters from Eye and Target.
func (c *Camera) syncAngles() {
	off := c.Eye.Sub(c.Target)
	c.Distance = off.Len()
	dir := core.NormalizeOr(off, mgl32.Vec3{0, 0, 1})
	c.Yaw = float32(math.Atan2(float64(dir[2]), float64(dir[0])))
	c.Pitch = mgl32.Clamp(float32(math.Asin(float64(dir[1]))), -pitchLimit, pitchLimit)
}

func (c *Camera) orbitEye() mgl32.Vec3 {
	sy, cy := math.Sincos(float64(c.Yaw))
	sp, cp := math.Sincos(float64(c.Pitch))
	return c.Target.Add(mgl32.Vec3{
		c.Distance * float32(cy*cp),
		c.Distance * float32(sp),
		c.Distance * float32(sy*cp),
	})
}

// Update advances a running warp and re-derives the eye from the orbit.
func (c *Camera) Update(dt float32) {
	if c.warping {
		if c.WarpDuration > 0 {
			c.warpProgress += dt / c.WarpDuration
		} else {
			c.warpProgress = 1
		}
		if c.warpProgress < 1 {
			c.Eye = core.Lerp3(c.warpFrom, c.warpTo, core.SmoothStep(c.warpProgress))
			return
		}
		c.warpProgress = 1
		c.warping = false
		c.Eye = c.warpTo
		c.syncAngles()
	}
	c.Eye = c.orbitEye()
}

func (c *Camera) View() core.Matrix4 {
	return core.LookAt(c.Eye, c.Target, c.Up)
}

func (c *Camera) Warping() bool         { return c.warping }
func (c *Camera) WarpProgress() float32 { return c.warpProgress }
func (c *Camera) Forward() mgl32.Vec3   { return core.NormalizeOr(c.Target.Sub(c.Eye), mgl32.Vec3{0, 0, -1}) }
func (c *Camera) Right() mgl32.Vec3     { return core.NormalizeOr(c.Forward().Cross(c.Up), mgl32.Vec3{1, 0, 0}) }
func (c *Camera) ScreenUp() mgl32.Vec3  { return core.NormalizeOr(c.Right().Cross(c.Forward()), c.Up) }
func (c *Camera) Position() mgl32.Vec3  { return c.Eye }
func (c *Camera) LookingAt() mgl32.Vec3 { return c.Target }

// SetTarget is ignored while a warp runs.
func (c *Camera) SetTarget(t mgl32.Vec3) {
	if !c.warping {
		c.Target = t
	}
}

// Rotate turns the eye around the target. Deltas are in seconds of key
// hold or normalized mouse travel.
func (c *Camera) Rotate(dx, dy float32) {
	if c.warping {
		return
	}
	c.Yaw -= dx * c.RotationSpeed
	c.Pitch = mgl32.Clamp(c.Pitch+dy*c.RotationSpeed, -pitchLimit, pitchLimit)
}

func (c *Camera) Zoom(delta float32) {
	if c.warping {
		return
	}
	c.Distance = mgl32.Clamp(c.Distance-delta*c.ZoomSpeed, minZoomDistance, maxZoomDistance)
}

// Pan slides the target across the view plane, faster when zoomed out.
func (c *Camera) Pan(dx, dy float32) {
	if c.warping {
		return
	}
	amount := c.PanSpeed * c.Distance * 0.001
	c.Target = c.Target.Add(c.Right().Mul(dx * amount)).Add(c.ScreenUp().Mul(dy * amount))
}

// Move flies the target along the view axes for dt seconds.
func (c *Camera) Move(forward, right, up, dt float32) {
	if c.warping {
		return
	}
	step := c.MoveSpeed * dt
	d := c.Forward().Mul(forward * step).
		Add(c.Right().Mul(right * step)).
		Add(c.ScreenUp().Mul(up * step))
	c.Target = c.Target.Add(d)
}

func (c *Camera) startWarp(target, eye mgl32.Vec3, distance float32) {
	if c.warping {
		return
	}
	c.warpFrom = c.Eye
	c.warpTo = eye
	c.Target = target
	c.Distance = distance
	c.warpProgress = 0
	c.warping = true
}

// bodyView is the eye position used to frame body b.
func bodyView(b *Body) (eye mgl32.Vec3, distance float32) {
	const angle = 0.5
	distance = b.Radius*4 + 20
	off := mgl32.Vec3{
		distance * float32(math.Cos(angle)),
		distance * 0.3,
		distance * float32(math.Sin(angle)),
	}
	return b.Position.Add(off), distance
}

// WarpTo animates the camera to a diagonal view of b. It does nothing while
// another warp runs.
func (c *Camera) WarpTo(b *Body) {
	eye, d := bodyView(b)
	c.startWarp(b.Position, eye, d)
}

// JumpTo frames b immediately, cancelling any warp.
func (c *Camera) JumpTo(b *Body) {
	c.Eye, _ = bodyView(b)
	c.Target = b.Position
	c.warping = false
	c.warpProgress = 0
	c.syncAngles()
}

func (c *Camera) WarpToSun(sun mgl32.Vec3) {
	d := float32(sunWarpDistance)
	c.startWarp(sun, sun.Add(mgl32.Vec3{d, d * 0.4, d * 0.6}), d)
}

func (c *Camera) WarpToOverview() {
	d := float32(overviewWarpDistance)
	c.startWarp(mgl32.Vec3{}, mgl32.Vec3{0, d * 0.8, d * 0.6}, d)
}

// EnforceMinimumDistance pushes the eye out of the keep-out sphere of the
// nearest body: max(10, 2.5 radii) from its centre.
func (c *Camera) EnforceMinimumDistance(bodies []Body) {
	if c.warping || len(bodies) == 0 {
		return
	}
	nearest, best := -1, float32(math.Inf(1))
	for i := range bodies {
		if d := c.Eye.Sub(bodies[i].Position).Len(); d < best {
			nearest, best = i, d
		}
	}
	b := &bodies[nearest]
	limit := max(float32(minZoomDistance), b.Radius*minDistanceFactor)
	if best >= limit {
		return
	}
	dir := core.NormalizeOr(c.Eye.Sub(b.Position), core.Up)
	c.Eye = b.Position.Add(dir.Mul(limit))
	c.syncAngles()
}

func (c *Camera) collides(b *Body) bool {
	return c.Eye.Sub(b.Position).Len() < b.Radius*collisionFactor
}

// CollisionStatus names the first body the eye is inside the buffer of.
func (c *Camera) CollisionStatus(bodies []Body) (string, bool) {
	for i := range bodies {
		if c.collides(&bodies[i]) {
			return fmt.Sprintf("Near %s", bodies[i].Name), true
		}
	}
	return "", false
}

// AvoidCollision moves the eye clear of every body it has entered. A target
// buried in that body is moved out too so the view stays meaningful.
func (c *Camera) AvoidCollision(bodies []Body) {
	moved := false
	for i := range bodies {
		b := &bodies[i]
		if !c.collides(b) {
			continue
		}
		dir := core.NormalizeOr(c.Eye.Sub(b.Position), core.Up)
		c.Eye = b.Position.Add(dir.Mul(b.Radius * pushOutFactor))
		if c.Target.Sub(b.Position).Len() < b.Radius*1.2 {
			c.Target = b.Position.Add(dir.Mul(b.Radius * 2))
		}
		moved = true
	}
	if moved {
		c.syncAngles()
	}
}
