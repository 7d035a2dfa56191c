package orrery

import (
	"fmt"
	"image/color"
	"math"
	"slices"

	"github.com/gekko3d/orrery/softrt/rt/core"
	"github.com/gekko3d/orrery/softrt/rt/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

type BodyKind int

const (
	Star BodyKind = iota
	Planet
	Moon
)

func (k BodyKind) String() string {
	switch k {
	case Star:
		return "star"
	case Planet:
		return "planet"
	case Moon:
		return "moon"
	}
	return fmt.Sprintf("BodyKind(%d)", int(k))
}

func parseBodyKind(s string) (BodyKind, error) {
	switch s {
	case "star":
		return Star, nil
	case "planet":
		return Planet, nil
	case "moon":
		return Moon, nil
	}
	return 0, fmt.Errorf("%w: body kind %q", ErrInvalidConfig, s)
}

const (
	minTimeScale = 0.1
	maxTimeScale = 10

	// orbitRate converts configured orbit speeds to radians per second.
	orbitRate = 0.1
)

type Rings struct {
	Inner, Outer float32
	Color        color.RGBA
}

type Body struct {
	Name     string
	Kind     BodyKind
	Radius   float32
	Color    color.RGBA
	Emissive bool

	OrbitRadius float32
	OrbitSpeed  float32
	// OrbitAngle is in radians, measured from +X toward +Z.
	OrbitAngle float32
	// Inclination tilts the orbit plane about the X axis, in radians.
	Inclination float32

	RotationSpeed float32
	RotationAngle float32

	// Parent indexes the body this one orbits, or -1.
	Parent int
	Rings  *Rings
	Mesh   mesh.MeshId

	Position mgl32.Vec3
}

// SolarSystem owns the bodies and moves them over time. Parents always
// precede their satellites in the body list.
type SolarSystem struct {
	bodies    []Body
	timeScale float32
	orbiting  bool
	star      int
}

func NewSolarSystem(cfg SceneConfig, sphere mesh.MeshId) (*SolarSystem, error) {
	defs := cfg.Bodies
	if len(defs) == 0 {
		defs = DefaultBodies()
	}
	if errs := validateBodies(defs); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errs[0])
	}

	s := &SolarSystem{orbiting: cfg.Orbiting, star: -1}
	s.SetTimeScale(cfg.TimeScale)

	index := make(map[string]int, len(defs))
	for i, d := range defs {
		kind, err := parseBodyKind(d.Kind)
		if err != nil {
			return nil, err
		}
		b := Body{
			Name:          d.Name,
			Kind:          kind,
			Radius:        d.Radius,
			Color:         d.Color.RGBA(),
			Emissive:      kind == Star,
			OrbitRadius:   d.OrbitRadius,
			OrbitSpeed:    d.OrbitSpeed,
			OrbitAngle:    mgl32.DegToRad(d.OrbitAngle),
			Inclination:   d.Inclination,
			RotationSpeed: d.RotationSpeed,
			Parent:        -1,
			Mesh:          sphere,
		}
		switch kind {
		case Star:
			s.star = i
		case Planet:
			b.Parent = s.star
		case Moon:
			b.Parent = index[d.Parent]
		}
		if d.Rings != nil {
			b.Rings = &Rings{Inner: d.Rings.Inner, Outer: d.Rings.Outer, Color: d.Rings.Color.RGBA()}
		}
		index[d.Name] = i
		s.bodies = append(s.bodies, b)
	}
	s.place()
	return s, nil
}

// orbitOffset is the position on an orbit of radius r at angle a, relative
// to its centre.
func orbitOffset(r, a, inclination float32) mgl32.Vec3 {
	sa, ca := float32(math.Sin(float64(a))), float32(math.Cos(float64(a)))
	si, ci := float32(math.Sin(float64(inclination))), float32(math.Cos(float64(inclination)))
	return mgl32.Vec3{r * ca, r * sa * si, r * sa * ci}
}

func (s *SolarSystem) center(b *Body) mgl32.Vec3 {
	if b.Parent < 0 {
		return mgl32.Vec3{}
	}
	return s.bodies[b.Parent].Position
}

// place recomputes positions in list order so moons see their parent's
// position for this step.
func (s *SolarSystem) place() {
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.Kind == Star {
			b.Position = mgl32.Vec3{}
			continue
		}
		b.Position = s.center(b).Add(orbitOffset(b.OrbitRadius, b.OrbitAngle, b.Inclination))
	}
}

// Update advances spin, and orbits when orbiting is on, by dt seconds of
// scaled time.
func (s *SolarSystem) Update(dt float32) {
	dt *= s.timeScale
	for i := range s.bodies {
		b := &s.bodies[i]
		b.RotationAngle = wrapAngle(b.RotationAngle + b.RotationSpeed*dt)
		if s.orbiting && b.Kind != Star {
			b.OrbitAngle = wrapAngle(b.OrbitAngle + b.OrbitSpeed*orbitRate*dt)
		}
	}
	if s.orbiting {
		s.place()
	}
}

func wrapAngle(a float32) float32 {
	const twoPi = 2 * math.Pi
	if a >= twoPi || a < 0 {
		a = float32(math.Mod(float64(a), twoPi))
		if a < 0 {
			a += twoPi
		}
	}
	return a
}

func (s *SolarSystem) SetTimeScale(scale float32) {
	s.timeScale = mgl32.Clamp(scale, minTimeScale, maxTimeScale)
}

func (s *SolarSystem) TimeScale() float32  { return s.timeScale }
func (s *SolarSystem) SetOrbiting(on bool) { s.orbiting = on }
func (s *SolarSystem) Orbiting() bool      { return s.orbiting }
func (s *SolarSystem) Len() int            { return len(s.bodies) }
func (s *SolarSystem) Body(i int) *Body    { return &s.bodies[i] }
func (s *SolarSystem) Bodies() []Body      { return s.bodies }
func (s *SolarSystem) StarIndex() int      { return s.star }
func (s *SolarSystem) Planets() []int      { return s.indicesOf(Planet) }
func (s *SolarSystem) Moons() []int        { return s.indicesOf(Moon) }

// Find returns the index of the named body, or -1.
func (s *SolarSystem) Find(name string) int {
	return slices.IndexFunc(s.bodies, func(b Body) bool { return b.Name == name })
}

func (s *SolarSystem) StarPosition() mgl32.Vec3 {
	if s.star < 0 {
		return mgl32.Vec3{}
	}
	return s.bodies[s.star].Position
}

func (s *SolarSystem) indicesOf(kind BodyKind) []int {
	var out []int
	for i := range s.bodies {
		if s.bodies[i].Kind == kind {
			out = append(out, i)
		}
	}
	return out
}

// ModelMatrix places body i in the world: translate, spin about Y, scale
// the unit sphere to the body's radius.
func (s *SolarSystem) ModelMatrix(i int) core.Matrix4 {
	b := &s.bodies[i]
	return core.Translation(b.Position[0], b.Position[1], b.Position[2]).
		Mul(core.RotationY(b.RotationAngle)).
		Mul(core.Scale(b.Radius, b.Radius, b.Radius))
}

// SortedByDistance returns body indices ordered far to near from eye. Ties
// keep list order.
func (s *SolarSystem) SortedByDistance(eye mgl32.Vec3) []int {
	order := make([]int, len(s.bodies))
	dist := make([]float32, len(s.bodies))
	for i := range s.bodies {
		order[i] = i
		dist[i] = s.bodies[i].Position.Sub(eye).Len()
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case dist[a] > dist[b]:
			return -1
		case dist[a] < dist[b]:
			return 1
		}
		return 0
	})
	return order
}

// Closest returns the index of the body whose centre is nearest pos, or -1
// for an empty system.
func (s *SolarSystem) Closest(pos mgl32.Vec3) int {
	best, bestDist := -1, float32(math.Inf(1))
	for i := range s.bodies {
		if d := s.bodies[i].Position.Sub(pos).Len(); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Bounds covers every body and the full sweep of every orbit.
func (s *SolarSystem) Bounds() (lo, hi mgl32.Vec3) {
	inf := float32(math.Inf(1))
	lo = mgl32.Vec3{inf, inf, inf}
	hi = lo.Mul(-1)
	grow := func(c mgl32.Vec3, r float32) {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], c[k]-r)
			hi[k] = max(hi[k], c[k]+r)
		}
	}
	for i := range s.bodies {
		b := &s.bodies[i]
		grow(b.Position, b.Radius)
		if b.Parent >= 0 {
			grow(s.center(b), b.OrbitRadius+b.Radius)
		}
	}
	return lo, hi
}

// OrbitPoints samples n points around body i's current orbit. Bodies that
// orbit nothing return nil.
func (s *SolarSystem) OrbitPoints(i, n int) []mgl32.Vec3 {
	b := &s.bodies[i]
	if b.Parent < 0 || b.OrbitRadius <= 0 || n < 3 {
		return nil
	}
	c := s.center(b)
	pts := make([]mgl32.Vec3, n)
	for k := range pts {
		a := 2 * math.Pi * float32(k) / float32(n)
		pts[k] = c.Add(orbitOffset(b.OrbitRadius, a, b.Inclination))
	}
	return pts
}
