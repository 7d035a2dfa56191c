package orrery

import (
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"time"

	"github.com/gekko3d/orrery/softrt/rt/core"
	"github.com/gekko3d/orrery/softrt/rt/framebuffer"
	"github.com/gekko3d/orrery/softrt/rt/mesh"
	"github.com/gekko3d/orrery/softrt/rt/pipeline"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
)

const (
	starMinDistance = 800
	starDepth       = 200
	// Stars at least this bright get a glow cross.
	starGlowBrightness = 0.7

	// Orbit segments are kept when an endpoint lands within this many
	// pixels of the screen.
	orbitMargin = 30
	ringBands   = 4
)

var (
	gradientInner = color.RGBA{5, 3, 15, 255}
	gradientOuter = color.RGBA{25, 12, 47, 255}
	hudColor      = color.RGBA{255, 255, 255, 255}
	hudWarnColor  = color.RGBA{255, 220, 0, 255}
)

// FrameStats sums the pipeline work of one frame plus what the renderer
// decided around it.
type FrameStats struct {
	pipeline.Stats
	// Drawn bodies went through the pipeline; Skipped were too small on
	// screen or had no mesh.
	Drawn, Skipped int
	Stars          int
	OrbitSegments  int
	Elapsed        time.Duration
}

type star struct {
	pos        mgl32.Vec3
	brightness float32
}

// Renderer turns a SolarSystem seen from a Camera into pixels. It owns one
// pipeline and is not safe for concurrent frames.
type Renderer struct {
	cfg  Config
	pipe *pipeline.Pipeline
	lib  *mesh.Library
	log  Logger
	face font.Face

	stars      []star
	showOrbits bool
	hud        bool
	last       FrameStats
}

func NewRenderer(cfg Config, lib *mesh.Library, log Logger) (*Renderer, error) {
	log = orNop(log)
	pc, err := cfg.PipelineConfig()
	if err != nil {
		return nil, err
	}
	pipe, err := pipeline.New(pc)
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	r := &Renderer{
		cfg:        cfg,
		pipe:       pipe,
		lib:        lib,
		log:        log,
		face:       framebuffer.DefaultFace,
		showOrbits: cfg.Render.ShowOrbits,
		hud:        cfg.Render.HUD,
	}
	if cfg.Render.HUD && cfg.Render.FontPath != "" {
		face, err := framebuffer.LoadFace(cfg.Render.FontPath, cfg.Render.FontSize)
		if err != nil {
			log.Warnf("HUD font %s: %v, using the built-in face", cfg.Render.FontPath, err)
		} else {
			r.face = face
		}
	}
	r.stars = generateStars(cfg.Render.Stars, cfg.Render.StarSeed)
	log.Debugf("renderer %dx%d, %d stars, workers %d", pc.Width, pc.Height, len(r.stars), pipe.Config().Workers)
	return r, nil
}

// generateStars scatters n stars in a shell around the origin. The same
// seed always yields the same sky.
func generateStars(n int, seed int64) []star {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	stars := make([]star, n)
	for i := range stars {
		theta := rng.Float64() * 2 * math.Pi
		phi := rng.Float64() * math.Pi
		d := starMinDistance + rng.Float64()*starDepth
		stars[i] = star{
			pos: mgl32.Vec3{
				float32(d * math.Sin(phi) * math.Cos(theta)),
				float32(d * math.Cos(phi)),
				float32(d * math.Sin(phi) * math.Sin(theta)),
			},
			brightness: float32((i*73)%100) / 100,
		}
	}
	return stars
}

func (r *Renderer) Pipeline() *pipeline.Pipeline { return r.pipe }
func (r *Renderer) ShowOrbits() bool             { return r.showOrbits }
func (r *Renderer) ToggleOrbits()                { r.showOrbits = !r.showOrbits }
func (r *Renderer) ToggleHUD()                   { r.hud = !r.hud }
func (r *Renderer) LastFrame() FrameStats        { return r.last }

// NewBuffer allocates a pixel buffer matching the render size.
func (r *Renderer) NewBuffer() (*framebuffer.PixelBuffer, error) {
	return framebuffer.New(r.cfg.Render.Width, r.cfg.Render.Height)
}

// projector maps world points to pixel x/y plus depth.
type projector struct {
	viewProj core.Matrix4
	viewport core.Matrix4
}

func (p projector) screen(world mgl32.Vec3) (mgl32.Vec3, bool) {
	clip := p.viewProj.TransformPoint4(world)
	w := clip.W()
	if w <= core.WEpsilon {
		return mgl32.Vec3{}, false
	}
	return p.viewport.TransformPoint4(clip.Vec3().Mul(1 / w)).Vec3(), true
}

// RenderFrame draws one complete frame into buf: background, stars, bodies
// far to near, orbit lines and the HUD.
func (r *Renderer) RenderFrame(buf *framebuffer.PixelBuffer, sys *SolarSystem, cam *Camera) FrameStats {
	start := time.Now()
	var st FrameStats

	view := cam.View()
	proj := projector{viewProj: r.pipe.Projection().Mul(view), viewport: r.pipe.Viewport()}

	buf.ClearDepth()
	buf.FillRadialGradient(gradientInner, gradientOuter)
	st.Stars = r.drawStars(buf, proj)

	lighting := r.pipe.Lighting()
	lighting.Eye = cam.Eye
	if lighting.Kind == pipeline.Point {
		lighting.Position = sys.StarPosition()
	}

	for _, i := range sys.SortedByDistance(cam.Eye) {
		b := sys.Body(i)
		if r.drawBody(buf, sys, i, view, cam.Eye, &lighting, &st) {
			st.Drawn++
		} else {
			st.Skipped++
			r.log.Debugf("skip %s", b.Name)
		}
	}

	if r.showOrbits {
		st.OrbitSegments = r.drawOrbits(buf, sys, proj)
	}
	st.Elapsed = time.Since(start)
	if r.hud {
		r.drawHUD(buf, sys, cam, &st)
	}

	r.last = st
	r.log.Debugf("frame: %d bodies, %d tris, %d fragments in %s", st.Drawn, st.Triangles, st.Fragments, st.Elapsed)
	return st
}

// apparentRadius estimates the on-screen radius in pixels of a sphere of
// radius rad seen from distance d.
func (r *Renderer) apparentRadius(rad, d float32) float32 {
	if d <= 0 {
		return float32(math.Inf(1))
	}
	return rad * float32(r.cfg.Render.Width) / (d * 2)
}

func (r *Renderer) drawBody(buf *framebuffer.PixelBuffer, sys *SolarSystem, i int, view core.Matrix4, eye mgl32.Vec3, l *pipeline.Lighting, st *FrameStats) bool {
	b := sys.Body(i)
	d := b.Position.Sub(eye).Len()
	if r.apparentRadius(b.Radius, d) < r.cfg.Render.MinApparentRadius {
		return false
	}
	m, ok := r.lib.Get(b.Mesh)
	if !ok {
		return false
	}
	st.Add(r.pipe.Draw(buf, pipeline.DrawCall{
		Mesh:     m,
		Model:    sys.ModelMatrix(i),
		View:     view,
		Color:    b.Color,
		Emissive: b.Emissive,
		Distance: d,
		Lighting: l,
	}))
	return true
}

func (r *Renderer) drawStars(buf *framebuffer.PixelBuffer, proj projector) int {
	n := 0
	for _, s := range r.stars {
		p, ok := proj.screen(s.pos)
		if !ok || p[0] < 0 || p[1] < 0 {
			continue
		}
		x, y := int(p[0]), int(p[1])
		if !buf.InBounds(x, y) {
			continue
		}
		c := color.RGBA{
			R: uint8(200 + s.brightness*55),
			G: uint8(200 + s.brightness*55),
			B: uint8(220 + s.brightness*35),
			A: 255,
		}
		size := 1
		if s.brightness > starGlowBrightness {
			size = 2
		}
		buf.DrawPoint(x, y, size, c)
		n++
	}
	return n
}

// drawOrbits traces every orbit and ring as depth-tested line segments.
func (r *Renderer) drawOrbits(buf *framebuffer.PixelBuffer, sys *SolarSystem, proj projector) int {
	segments := 0
	for i := 0; i < sys.Len(); i++ {
		b := sys.Body(i)
		if pts := sys.OrbitPoints(i, r.cfg.Render.OrbitSegments); pts != nil {
			segments += r.drawLoop(buf, proj, pts, scaleColor(b.Color, 0.5*160/255))
		}
		if b.Rings == nil {
			continue
		}
		ringColor := scaleColor(b.Rings.Color, float32(b.Rings.Color.A)/255)
		for k := 0; k < ringBands; k++ {
			rad := b.Rings.Inner + (b.Rings.Outer-b.Rings.Inner)*float32(k)/float32(ringBands-1)
			segments += r.drawLoop(buf, proj, ringPoints(b.Position, rad, r.cfg.Render.OrbitSegments), ringColor)
		}
	}
	return segments
}

func ringPoints(center mgl32.Vec3, radius float32, n int) []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, n)
	for k := range pts {
		s, c := math.Sincos(2 * math.Pi * float64(k) / float64(n))
		pts[k] = center.Add(mgl32.Vec3{radius * float32(c), 0, radius * float32(s)})
	}
	return pts
}

// drawLoop joins pts into a closed polyline and returns how many segments
// were drawn. Segments with an endpoint behind the eye, or with both ends
// far off screen, are skipped.
func (r *Renderer) drawLoop(buf *framebuffer.PixelBuffer, proj projector, pts []mgl32.Vec3, c color.RGBA) int {
	onScreen := func(p mgl32.Vec3) bool {
		return p[0] >= -orbitMargin && p[1] >= -orbitMargin &&
			p[0] < float32(buf.Width()+orbitMargin) && p[1] < float32(buf.Height()+orbitMargin)
	}
	drawn := 0
	for k := range pts {
		a, okA := proj.screen(pts[k])
		b, okB := proj.screen(pts[(k+1)%len(pts)])
		if !okA || !okB || !(onScreen(a) || onScreen(b)) {
			continue
		}
		buf.DrawLineDepth(int(a[0]), int(a[1]), int(b[0]), int(b[1]), (a[2]+b[2])/2, c)
		drawn++
	}
	return drawn
}

func scaleColor(c color.RGBA, f float32) color.RGBA {
	s := func(v uint8) uint8 { return uint8(mgl32.Clamp(float32(v)*f, 0, 255)) }
	return color.RGBA{s(c.R), s(c.G), s(c.B), 255}
}

func (r *Renderer) drawHUD(buf *framebuffer.PixelBuffer, sys *SolarSystem, cam *Camera, st *FrameStats) {
	lh := framebuffer.LineHeight(r.face)
	x, y := 10, 10+lh
	line := func(c color.RGBA, format string, args ...any) {
		buf.DrawText(r.face, x, y, fmt.Sprintf(format, args...), c)
		y += lh + 4
	}

	orbits := "OFF"
	if r.showOrbits {
		orbits = "ON"
	}
	line(hudColor, "Solar System Simulator")
	line(hudColor, "Orbits: %s  Time x%.1f", orbits, sys.TimeScale())
	line(hudColor, "Bodies %d/%d  Tris %d  Frags %d  %.1f ms", st.Drawn, sys.Len(), st.Triangles, st.Fragments, float64(st.Elapsed.Microseconds())/1000)
	if cam.Warping() {
		line(hudWarnColor, "WARPING... %.1f%%", cam.WarpProgress()*100)
	}
	if status, near := cam.CollisionStatus(sys.Bodies()); near {
		line(hudWarnColor, "%s", status)
	}
}
