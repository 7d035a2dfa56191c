package pipeline

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/gekko3d/orrery/softrt/rt/core"
	"github.com/gekko3d/orrery/softrt/rt/framebuffer"
	"github.com/gekko3d/orrery/softrt/rt/mesh"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidConfig = errors.New("invalid pipeline config")

// maxStride is the coarsest LOD stride. Tiles are kept a multiple of it so a
// filled stride block never straddles two tiles.
const maxStride = 8

const DefaultTileSize = 64

// Config is fixed at construction; nothing in it changes between frames.
type Config struct {
	Width, Height int
	// FovY is the vertical field of view in radians.
	FovY      float32
	Near, Far float32

	// LODThresholds are the camera distances at which sampling stride steps
	// from 1 to 2, 2 to 4 and 4 to 8.
	LODThresholds [3]float32

	Lighting       Lighting
	Winding        Winding
	DegenerateArea float32

	// DepthTest off switches to painter's ordering of each draw's triangles.
	DepthTest bool
	// FillStride paints the whole stride x stride block of every coarse
	// sample instead of a single pixel.
	FillStride bool

	// Workers > 1 rasterizes horizontal tiles of TileSize rows in parallel.
	Workers  int
	TileSize int
}

func DefaultConfig() Config {
	return Config{
		Width:          1200,
		Height:         800,
		FovY:           mgl32.DegToRad(45),
		Near:           0.1,
		Far:            1000,
		LODThresholds:  [3]float32{150, 300, 600},
		Lighting:       DefaultLighting(),
		Winding:        FrontClockwise,
		DegenerateArea: DefaultDegenerateArea,
		DepthTest:      true,
		Workers:        1,
		TileSize:       DefaultTileSize,
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("buffer size %dx%d", c.Width, c.Height))
	}
	t := c.LODThresholds
	if !(t[0] > 0 && t[0] < t[1] && t[1] < t[2]) {
		errs = append(errs, fmt.Errorf("lod thresholds %v must be positive and ascending", t))
	}
	if c.Lighting.Ambient < 0 || c.Lighting.Diffuse < 0 {
		errs = append(errs, fmt.Errorf("negative light intensity (ambient %.3f, diffuse %.3f)", c.Lighting.Ambient, c.Lighting.Diffuse))
	}
	if c.Winding < FrontClockwise || c.Winding > CullNone {
		errs = append(errs, fmt.Errorf("winding %v", c.Winding))
	}
	if c.Workers < 0 || c.TileSize < 0 {
		errs = append(errs, fmt.Errorf("workers %d / tile size %d", c.Workers, c.TileSize))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// DrawCall is one mesh instance to render.
type DrawCall struct {
	Mesh     *mesh.Mesh
	Model    core.Matrix4
	View     core.Matrix4
	Color    color.RGBA
	Emissive bool
	// Distance from the camera, used to pick the LOD stride.
	Distance float32
	// Stride overrides the distance-derived stride when > 0.
	Stride int
	// Lighting overrides the configured lighting when non-nil.
	Lighting *Lighting
}

// Stats describes the work one Draw performed.
type Stats struct {
	Vertices  int
	Triangles int
	Culled    CullStats
	Fragments int
	Written   int
	Stride    int
}

func (s *Stats) Add(o Stats) {
	s.Vertices += o.Vertices
	s.Triangles += o.Triangles
	s.Culled.add(o.Culled)
	s.Fragments += o.Fragments
	s.Written += o.Written
}

// Pipeline runs draws through the vertex, assembly, raster and fragment
// stages. It keeps scratch buffers between draws, so one Pipeline must not
// be used by two goroutines at once.
type Pipeline struct {
	cfg        Config
	projection core.Matrix4
	viewport   core.Matrix4

	verts []TransformedVertex
	tris  []Triangle
}

func New(cfg Config) (*Pipeline, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	proj, err := core.Perspective(cfg.FovY, float32(cfg.Width)/float32(cfg.Height), cfg.Near, cfg.Far)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.TileSize == 0 {
		cfg.TileSize = DefaultTileSize
	}
	cfg.TileSize = alignUp(cfg.TileSize, maxStride)
	if cfg.DegenerateArea <= 0 {
		cfg.DegenerateArea = DefaultDegenerateArea
	}

	return &Pipeline{
		cfg:        cfg,
		projection: proj,
		viewport:   core.Viewport(0, 0, float32(cfg.Width), float32(cfg.Height)),
	}, nil
}

func (p *Pipeline) Config() Config              { return p.cfg }
func (p *Pipeline) Projection() core.Matrix4    { return p.projection }
func (p *Pipeline) Viewport() core.Matrix4      { return p.viewport }
func (p *Pipeline) Lighting() Lighting          { return p.cfg.Lighting }
func (p *Pipeline) Stride(distance float32) int { return LODStride(distance, p.cfg.LODThresholds) }

// Draw renders call into buf and reports what it did. Geometry that cannot
// be drawn (behind the eye, off screen, degenerate, back-facing) is dropped
// and counted; it is never an error.
func (p *Pipeline) Draw(buf *framebuffer.PixelBuffer, call DrawCall) Stats {
	st := Stats{Vertices: call.Mesh.VertexCount()}

	t := Transforms{Model: call.Model, View: call.View, Projection: p.projection, Viewport: p.viewport}
	p.verts = TransformVertices(call.Mesh, FromRGBA(call.Color), &t, p.verts)

	opts := AssembleOptions{
		Width:          p.cfg.Width,
		Height:         p.cfg.Height,
		Winding:        p.cfg.Winding,
		DegenerateArea: p.cfg.DegenerateArea,
	}
	p.tris = Assemble(call.Mesh.Indices(), p.verts, opts, call.Emissive, p.tris[:0], &st.Culled)
	st.Triangles = len(p.tris)
	if len(p.tris) == 0 {
		return st
	}
	if !p.cfg.DepthTest {
		SortBackToFront(p.tris)
	}

	st.Stride = call.Stride
	if st.Stride <= 0 {
		st.Stride = p.Stride(call.Distance)
	}
	lighting := &p.cfg.Lighting
	if call.Lighting != nil {
		lighting = call.Lighting
	}

	clip := Rect{MaxX: min(p.cfg.Width, buf.Width()), MaxY: min(p.cfg.Height, buf.Height())}
	if p.cfg.Workers <= 1 || clip.MaxY <= p.cfg.TileSize {
		st.Fragments, st.Written = p.rasterRegion(buf, st.Stride, lighting, clip)
		return st
	}
	st.Fragments, st.Written = p.rasterTiles(buf, st.Stride, lighting, clip)
	return st
}

// rasterTiles splits clip into horizontal bands and rasterizes every
// triangle into each band on its own goroutine. Each band sees the
// triangles in the same order as a single pass would, and bands share no
// pixels, so the result is identical to rasterRegion over all of clip.
func (p *Pipeline) rasterTiles(buf *framebuffer.PixelBuffer, stride int, l *Lighting, clip Rect) (fragments, written int) {
	tile := p.cfg.TileSize
	bands := (clip.MaxY - clip.MinY + tile - 1) / tile
	counts := make([][2]int, bands)

	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)
	for i := 0; i < bands; i++ {
		region := Rect{
			MinX: clip.MinX,
			MinY: clip.MinY + i*tile,
			MaxX: clip.MaxX,
			MaxY: min(clip.MinY+(i+1)*tile, clip.MaxY),
		}
		g.Go(func() error {
			f, w := p.rasterRegion(buf, stride, l, region)
			counts[i] = [2]int{f, w}
			return nil
		})
	}
	// Band workers never fail.
	_ = g.Wait()

	for _, c := range counts {
		fragments += c[0]
		written += c[1]
	}
	return fragments, written
}

func (p *Pipeline) rasterRegion(buf *framebuffer.PixelBuffer, stride int, l *Lighting, clip Rect) (fragments, written int) {
	for i := range p.tris {
		for frag := range Rasterize(&p.tris[i], stride, clip) {
			fragments++
			written += p.writeSample(buf, &frag, l, clip)
		}
	}
	return fragments, written
}

// writeSample writes one rasterized sample, expanding it to its stride block
// when FillStride is on. Every covered pixel is depth-tested on its own.
func (p *Pipeline) writeSample(buf *framebuffer.PixelBuffer, frag *Fragment, l *Lighting, clip Rect) int {
	if !p.cfg.FillStride || frag.Stride <= 1 {
		if p.write(buf, frag, l) {
			return 1
		}
		return 0
	}

	n := 0
	c := Shade(frag, l)
	x1 := min(frag.X+frag.Stride, clip.MaxX)
	y1 := min(frag.Y+frag.Stride, clip.MaxY)
	for y := frag.Y; y < y1; y++ {
		for x := frag.X; x < x1; x++ {
			if p.cfg.DepthTest && !buf.DepthTest(x, y, frag.Depth) {
				continue
			}
			buf.Set(x, y, c, frag.Depth)
			n++
		}
	}
	return n
}

func (p *Pipeline) write(buf *framebuffer.PixelBuffer, frag *Fragment, l *Lighting) bool {
	if p.cfg.DepthTest {
		return WriteFragment(buf, frag, l)
	}
	buf.Set(frag.X, frag.Y, Shade(frag, l), frag.Depth)
	return true
}
