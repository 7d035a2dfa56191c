package orrery

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/gekko3d/orrery/softrt/rt/pipeline"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the on-disk description of a run. Fields left out of a YAML
// file keep their DefaultConfig values.
type Config struct {
	Render   RenderConfig   `yaml:"render"`
	Lighting LightingConfig `yaml:"lighting"`
	Scene    SceneConfig    `yaml:"scene"`
	Camera   CameraConfig   `yaml:"camera"`
}

type RenderConfig struct {
	Width      int       `yaml:"width"`
	Height     int       `yaml:"height"`
	FovDegrees float32   `yaml:"fovDegrees"`
	Near       float32   `yaml:"near"`
	Far        float32   `yaml:"far"`
	LOD        []float32 `yaml:"lodThresholds,flow"`

	Workers    int    `yaml:"workers"`
	TileSize   int    `yaml:"tileSize,omitempty"`
	FillStride bool   `yaml:"fillStride"`
	DepthTest  bool   `yaml:"depthTest"`
	Winding    string `yaml:"winding"`

	// Bodies smaller than this many pixels on screen are skipped.
	MinApparentRadius float32 `yaml:"minApparentRadius"`

	ShowOrbits    bool  `yaml:"showOrbits"`
	OrbitSegments int   `yaml:"orbitSegments"`
	Stars         int   `yaml:"stars"`
	StarSeed      int64 `yaml:"starSeed"`

	HUD      bool    `yaml:"hud"`
	FontPath string  `yaml:"fontPath,omitempty"`
	FontSize float64 `yaml:"fontSize,omitempty"`
}

type LightingConfig struct {
	Ambient   float32    `yaml:"ambient"`
	Diffuse   float32    `yaml:"diffuse"`
	Kind      string     `yaml:"kind"`
	Direction [3]float32 `yaml:"direction,flow"`
	Color     RGBA       `yaml:"color"`
	Specular  float32    `yaml:"specular,omitempty"`
	Shininess float32    `yaml:"shininess,omitempty"`
}

type SceneConfig struct {
	TimeScale    float32      `yaml:"timeScale"`
	Orbiting     bool         `yaml:"orbiting"`
	SphereStacks int          `yaml:"sphereStacks"`
	SphereSlices int          `yaml:"sphereSlices"`
	MeshPath     string       `yaml:"meshPath,omitempty"`
	Bodies       []BodyConfig `yaml:"bodies"`
}

type BodyConfig struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Parent string `yaml:"parent,omitempty"`

	Radius        float32 `yaml:"radius"`
	Color         RGBA    `yaml:"color"`
	OrbitRadius   float32 `yaml:"orbitRadius,omitempty"`
	OrbitSpeed    float32 `yaml:"orbitSpeed,omitempty"`
	OrbitAngle    float32 `yaml:"orbitAngleDegrees,omitempty"`
	Inclination   float32 `yaml:"inclination,omitempty"`
	RotationSpeed float32 `yaml:"rotationSpeed,omitempty"`

	Rings *RingConfig `yaml:"rings,omitempty"`
}

type RingConfig struct {
	Inner float32 `yaml:"inner"`
	Outer float32 `yaml:"outer"`
	Color RGBA    `yaml:"color"`
}

type CameraConfig struct {
	Eye           [3]float32 `yaml:"eye,flow"`
	Target        [3]float32 `yaml:"target,flow"`
	WarpDuration  float32    `yaml:"warpDuration"`
	RotationSpeed float32    `yaml:"rotationSpeed"`
	ZoomSpeed     float32    `yaml:"zoomSpeed"`
	PanSpeed      float32    `yaml:"panSpeed"`
	MoveSpeed     float32    `yaml:"moveSpeed"`
}

func DefaultConfig() Config {
	return Config{
		Render: RenderConfig{
			Width:             1200,
			Height:            800,
			FovDegrees:        45,
			Near:              0.1,
			Far:               1000,
			LOD:               []float32{150, 300, 600},
			Workers:           1,
			FillStride:        true,
			DepthTest:         true,
			Winding:           pipeline.FrontClockwise.String(),
			MinApparentRadius: 0.3,
			ShowOrbits:        true,
			OrbitSegments:     120,
			Stars:             1500,
			StarSeed:          1,
			HUD:               true,
		},
		Lighting: LightingConfig{
			Ambient:   0.3,
			Diffuse:   0.7,
			Kind:      pipeline.Point.String(),
			Direction: [3]float32{-1, -1, -1},
			Color:     RGBA{255, 255, 255, 255},
			Shininess: 32,
		},
		Scene: SceneConfig{
			TimeScale:    1,
			SphereStacks: 16,
			SphereSlices: 32,
			Bodies:       DefaultBodies(),
		},
		Camera: CameraConfig{
			Eye:           [3]float32{0, 50, 100},
			WarpDuration:  2,
			RotationSpeed: 2,
			ZoomSpeed:     50,
			PanSpeed:      30,
			MoveSpeed:     100,
		},
	}
}

// DefaultBodies is the stock system: one star, five planets, three moons.
func DefaultBodies() []BodyConfig {
	return []BodyConfig{
		{Name: "Sol", Kind: "star", Radius: 15, Color: RGBA{255, 255, 0, 255}, RotationSpeed: 0.5},
		{Name: "Pyrion", Kind: "planet", Radius: 3, Color: RGBA{210, 105, 30, 255}, OrbitRadius: 40, OrbitSpeed: 2, Inclination: 0.1, RotationSpeed: 3},
		{Name: "Verdania", Kind: "planet", Radius: 5, Color: RGBA{34, 139, 34, 255}, OrbitRadius: 70, OrbitSpeed: 1.5, OrbitAngle: 72, Inclination: 0.05, RotationSpeed: 2},
		{Name: "Luna Verde", Kind: "moon", Parent: "Verdania", Radius: 1.5, Color: RGBA{192, 192, 192, 255}, OrbitRadius: 12, OrbitSpeed: 8, OrbitAngle: 45, RotationSpeed: 1},
		{
			Name: "Gigantus", Kind: "planet", Radius: 8, Color: RGBA{255, 200, 50, 255}, OrbitRadius: 120, OrbitSpeed: 1, OrbitAngle: 144, Inclination: 0.15, RotationSpeed: 1.5,
			Rings: &RingConfig{Inner: 10, Outer: 15, Color: RGBA{220, 220, 180, 120}},
		},
		{Name: "Titan Dorado", Kind: "moon", Parent: "Gigantus", Radius: 2, Color: RGBA{255, 140, 0, 255}, OrbitRadius: 20, OrbitSpeed: 4, OrbitAngle: 45, RotationSpeed: 2},
		{Name: "Io Menor", Kind: "moon", Parent: "Gigantus", Radius: 1, Color: RGBA{220, 20, 60, 255}, OrbitRadius: 25, OrbitSpeed: 3, OrbitAngle: 45, RotationSpeed: 3},
		{Name: "Glacialis", Kind: "planet", Radius: 6, Color: RGBA{135, 206, 250, 255}, OrbitRadius: 180, OrbitSpeed: 0.7, OrbitAngle: 216, Inclination: 0.2, RotationSpeed: 1},
		{Name: "Plutonix", Kind: "planet", Radius: 2.5, Color: RGBA{186, 85, 211, 255}, OrbitRadius: 250, OrbitSpeed: 0.4, OrbitAngle: 288, Inclination: 0.3, RotationSpeed: 0.8},
	}
}

func (c *Config) normalize() {
	r := &c.Render
	if r.Workers == 0 {
		r.Workers = 1
	}
	if r.OrbitSegments == 0 {
		r.OrbitSegments = 120
	}
	if r.HUD && r.FontPath != "" && r.FontSize == 0 {
		r.FontSize = 14
	}
	if c.Lighting.Kind == "" {
		c.Lighting.Kind = pipeline.Directional.String()
	}
	if c.Scene.TimeScale == 0 {
		c.Scene.TimeScale = 1
	}
	if c.Camera.WarpDuration == 0 {
		c.Camera.WarpDuration = 2
	}
	for i := range c.Scene.Bodies {
		c.Scene.Bodies[i].Kind = strings.ToLower(c.Scene.Bodies[i].Kind)
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	r := c.Render
	if r.Width <= 0 || r.Height <= 0 {
		errs = append(errs, fmt.Errorf("render size %dx%d", r.Width, r.Height))
	}
	if r.FovDegrees <= 0 || r.FovDegrees >= 180 {
		errs = append(errs, fmt.Errorf("fovDegrees %.2f outside (0, 180)", r.FovDegrees))
	}
	if r.Near <= 0 || r.Far <= r.Near {
		errs = append(errs, fmt.Errorf("clip planes near %.3f far %.3f", r.Near, r.Far))
	}
	if len(r.LOD) != 3 {
		errs = append(errs, fmt.Errorf("lodThresholds needs 3 values, got %d", len(r.LOD)))
	}
	if r.Stars < 0 || r.OrbitSegments < 3 {
		errs = append(errs, fmt.Errorf("stars %d / orbitSegments %d", r.Stars, r.OrbitSegments))
	}
	if _, err := pipeline.ParseWinding(r.Winding); err != nil {
		errs = append(errs, err)
	}
	if _, err := pipeline.ParseLightKind(c.Lighting.Kind); err != nil {
		errs = append(errs, err)
	}
	if mgl32.Vec3(c.Lighting.Direction).Len() == 0 {
		errs = append(errs, errors.New("lighting direction is zero"))
	}
	if c.Lighting.Ambient < 0 || c.Lighting.Diffuse < 0 || c.Lighting.Specular < 0 {
		errs = append(errs, fmt.Errorf("negative light intensity (ambient %.2f, diffuse %.2f)", c.Lighting.Ambient, c.Lighting.Diffuse))
	}
	if c.Scene.SphereStacks < 2 || c.Scene.SphereSlices < 3 {
		errs = append(errs, fmt.Errorf("sphere tessellation %dx%d", c.Scene.SphereStacks, c.Scene.SphereSlices))
	}
	if c.Camera.WarpDuration < 0 {
		errs = append(errs, fmt.Errorf("warpDuration %.2f", c.Camera.WarpDuration))
	}
	errs = append(errs, validateBodies(c.Scene.Bodies)...)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func validateBodies(bodies []BodyConfig) []error {
	var errs []error
	seen := make(map[string]string, len(bodies))
	stars := 0
	for i, b := range bodies {
		if b.Name == "" {
			errs = append(errs, fmt.Errorf("body %d has no name", i))
			continue
		}
		if _, dup := seen[b.Name]; dup {
			errs = append(errs, fmt.Errorf("body %q listed twice", b.Name))
		}
		if b.Radius <= 0 {
			errs = append(errs, fmt.Errorf("body %q radius %.2f", b.Name, b.Radius))
		}
		switch b.Kind {
		case "star":
			stars++
		case "planet":
		case "moon":
			kind, ok := seen[b.Parent]
			if !ok || kind == "moon" {
				errs = append(errs, fmt.Errorf("moon %q needs an earlier star or planet as parent, got %q", b.Name, b.Parent))
			}
		default:
			errs = append(errs, fmt.Errorf("body %q kind %q", b.Name, b.Kind))
		}
		if b.Rings != nil && !(b.Rings.Inner > 0 && b.Rings.Inner < b.Rings.Outer) {
			errs = append(errs, fmt.Errorf("body %q rings %.2f..%.2f", b.Name, b.Rings.Inner, b.Rings.Outer))
		}
		seen[b.Name] = b.Kind
	}
	if len(bodies) > 0 && stars != 1 {
		errs = append(errs, fmt.Errorf("want exactly one star, got %d", stars))
	}
	return errs
}

// LoadConfig reads path over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WriteConfig writes cfg as YAML to path, e.g. to seed an editable file.
func WriteConfig(path string, cfg Config) error {
	cfg.normalize()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// PipelineConfig converts the render and lighting sections. The config must
// have passed Validate.
func (c *Config) PipelineConfig() (pipeline.Config, error) {
	winding, err := pipeline.ParseWinding(c.Render.Winding)
	if err != nil {
		return pipeline.Config{}, err
	}
	kind, err := pipeline.ParseLightKind(c.Lighting.Kind)
	if err != nil {
		return pipeline.Config{}, err
	}
	if len(c.Render.LOD) != 3 {
		return pipeline.Config{}, fmt.Errorf("%w: lodThresholds needs 3 values", ErrInvalidConfig)
	}

	pc := pipeline.DefaultConfig()
	pc.Width, pc.Height = c.Render.Width, c.Render.Height
	pc.FovY = mgl32.DegToRad(c.Render.FovDegrees)
	pc.Near, pc.Far = c.Render.Near, c.Render.Far
	pc.LODThresholds = [3]float32{c.Render.LOD[0], c.Render.LOD[1], c.Render.LOD[2]}
	pc.Winding = winding
	pc.DepthTest = c.Render.DepthTest
	pc.FillStride = c.Render.FillStride
	pc.Workers = c.Render.Workers
	pc.TileSize = c.Render.TileSize

	l := &pc.Lighting
	l.Ambient = c.Lighting.Ambient
	l.Diffuse = c.Lighting.Diffuse
	l.Kind = kind
	l.Direction = mgl32.Vec3(c.Lighting.Direction).Normalize()
	l.Color = pipeline.FromRGBA(c.Lighting.Color.RGBA())
	l.Specular = c.Lighting.Specular
	l.Shininess = c.Lighting.Shininess
	return pc, nil
}

// RGBA is a color written in YAML as [r, g, b], [r, g, b, a] or "#rrggbb[aa]".
type RGBA [4]uint8

func (c RGBA) RGBA() color.RGBA { return color.RGBA{c[0], c[1], c[2], c[3]} }

func (c *RGBA) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return c.parseHex(node.Value)
	case yaml.SequenceNode:
		var parts []int
		if err := node.Decode(&parts); err != nil {
			return err
		}
		if len(parts) != 3 && len(parts) != 4 {
			return fmt.Errorf("line %d: color needs 3 or 4 components, got %d", node.Line, len(parts))
		}
		*c = RGBA{0, 0, 0, 255}
		for i, p := range parts {
			if p < 0 || p > 255 {
				return fmt.Errorf("line %d: color component %d out of range", node.Line, p)
			}
			c[i] = uint8(p)
		}
		return nil
	}
	return fmt.Errorf("line %d: color must be a list or hex string", node.Line)
}

func (c *RGBA) parseHex(s string) error {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 && len(h) != 8 {
		return fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return fmt.Errorf("color %q: %w", s, err)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	*c = RGBA{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}
	return nil
}

func (c RGBA) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range c {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(int(v))})
	}
	return node, nil
}
