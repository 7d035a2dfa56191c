package orrery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/orrery/softrt/rt/pipeline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	pc, err := cfg.PipelineConfig()
	require.NoError(t, err)
	assert.Equal(t, 1200, pc.Width)
	assert.Equal(t, 800, pc.Height)
	assert.InDelta(t, mgl32.DegToRad(45), pc.FovY, 1e-6)
	assert.Equal(t, [3]float32{150, 300, 600}, pc.LODThresholds)
	assert.Equal(t, pipeline.FrontClockwise, pc.Winding)
	assert.Equal(t, pipeline.Point, pc.Lighting.Kind)
	assert.InDelta(t, 0.3, pc.Lighting.Ambient, 1e-6)
	assert.InDelta(t, 0.7, pc.Lighting.Diffuse, 1e-6)
	assert.InDelta(t, 1, pc.Lighting.Direction.Len(), 1e-5)
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
render:
  width: 640
  height: 360
  winding: ccw
  workers: 4
  lodThresholds: [100, 200, 400]
lighting:
  kind: directional
  color: "#ffcc00"
scene:
  orbiting: true
`))
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Render.Width)
	assert.Equal(t, float32(45), cfg.Render.FovDegrees, "unset fields keep defaults")
	assert.Equal(t, []float32{100, 200, 400}, cfg.Render.LOD)
	assert.Equal(t, RGBA{255, 204, 0, 255}, cfg.Lighting.Color)
	assert.True(t, cfg.Scene.Orbiting)
	assert.Len(t, cfg.Scene.Bodies, len(DefaultBodies()))

	pc, err := cfg.PipelineConfig()
	require.NoError(t, err)
	assert.Equal(t, pipeline.FrontCounterClockwise, pc.Winding)
	assert.Equal(t, 4, pc.Workers)
	assert.Equal(t, pipeline.Directional, pc.Lighting.Kind)
}

func TestParseConfigBodiesReplaceDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
scene:
  bodies:
    - {name: Sun, kind: Star, radius: 10, color: [255, 255, 200]}
    - {name: Rock, kind: planet, radius: 2, color: [90, 90, 90, 255], orbitRadius: 30}
    - {name: Pebble, kind: moon, parent: Rock, radius: 0.5, color: "#808080", orbitRadius: 4}
`))
	require.NoError(t, err)
	require.Len(t, cfg.Scene.Bodies, 3)
	assert.Equal(t, "star", cfg.Scene.Bodies[0].Kind)
	assert.Equal(t, RGBA{255, 255, 200, 255}, cfg.Scene.Bodies[0].Color)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.Width = 0
	cfg.Render.Far = 0.01
	cfg.Render.Winding = "sideways"
	cfg.Lighting.Direction = [3]float32{}
	cfg.Scene.Bodies = append(cfg.Scene.Bodies, BodyConfig{Name: "Ghost", Kind: "moon", Parent: "Nowhere", Radius: 1})

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	for _, want := range []string{"render size", "clip planes", "sideways", "direction is zero", "Ghost"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestValidateBodies(t *testing.T) {
	star := BodyConfig{Name: "S", Kind: "star", Radius: 5}
	cases := []struct {
		name   string
		bodies []BodyConfig
	}{
		{"no star", []BodyConfig{{Name: "P", Kind: "planet", Radius: 1}}},
		{"two stars", []BodyConfig{star, {Name: "T", Kind: "star", Radius: 1}}},
		{"duplicate name", []BodyConfig{star, {Name: "S", Kind: "planet", Radius: 1}}},
		{"zero radius", []BodyConfig{star, {Name: "P", Kind: "planet"}}},
		{"unknown kind", []BodyConfig{star, {Name: "C", Kind: "comet", Radius: 1}}},
		{"moon before parent", []BodyConfig{star, {Name: "M", Kind: "moon", Parent: "P", Radius: 1}, {Name: "P", Kind: "planet", Radius: 1}}},
		{"moon of moon", []BodyConfig{star, {Name: "P", Kind: "planet", Radius: 1}, {Name: "M", Kind: "moon", Parent: "P", Radius: 1}, {Name: "N", Kind: "moon", Parent: "M", Radius: 1}}},
		{"inverted rings", []BodyConfig{star, {Name: "P", Kind: "planet", Radius: 1, Rings: &RingConfig{Inner: 5, Outer: 2}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotEmpty(t, validateBodies(tc.bodies))
		})
	}
	assert.Empty(t, validateBodies(DefaultBodies()))
}

func TestParseConfigErrors(t *testing.T) {
	cases := map[string]string{
		"syntax":           "render: [",
		"short color":      "lighting: {color: [1, 2]}",
		"color range":      "lighting: {color: [1, 2, 300]}",
		"bad hex":          "lighting: {color: '#12'}",
		"two lod values":   "render: {lodThresholds: [1, 2]}",
		"unknown lighting": "lighting: {kind: spot}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orrery.yaml")
	want := DefaultConfig()
	want.Render.Workers = 3
	want.Lighting.Color = RGBA{10, 20, 30, 255}
	require.NoError(t, WriteConfig(path, want))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
