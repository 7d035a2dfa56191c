// Package session bundles the scene, camera and renderer that the window
// app and the headless batch run share.
package session

import (
	"fmt"

	"github.com/gekko3d/orrery"
	"github.com/gekko3d/orrery/softrt/rt/framebuffer"
	"github.com/gekko3d/orrery/softrt/rt/mesh"
)

const (
	scopeUpdate = "update"
	scopeRaster = "raster"

	// Multiplier applied by the time-scale keys.
	timeStep = 1.5
)

// Input is the held-key state sampled once per frame. Axes are in -1..1
// and scaled by dt; PanX and PanY are mouse travel since the last frame.
type Input struct {
	Forward, Right, Up float32
	Yaw, Pitch         float32
	Zoom               float32
	PanX, PanY         float32
}

type Session struct {
	Config   orrery.Config
	Meshes   *mesh.Library
	System   *orrery.SolarSystem
	Camera   *orrery.Camera
	Renderer *orrery.Renderer
	Profiler *Profiler
	Frame    *framebuffer.PixelBuffer

	log orrery.Logger
}

// New builds a session from a validated config. Bodies share one mesh: the
// OBJ at Scene.MeshPath when set, else a generated UV sphere.
func New(cfg orrery.Config, log orrery.Logger) (*Session, error) {
	if log == nil {
		log = orrery.NewNopLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	body, err := loadBodyMesh(cfg.Scene)
	if err != nil {
		return nil, err
	}
	lib := mesh.NewLibrary()
	id := lib.Add("body", body)
	log.Debugf("body mesh: %d vertices, %d triangles", body.VertexCount(), body.TriangleCount())

	sys, err := orrery.NewSolarSystem(cfg.Scene, id)
	if err != nil {
		return nil, err
	}
	r, err := orrery.NewRenderer(cfg, lib, log)
	if err != nil {
		return nil, err
	}
	frame, err := r.NewBuffer()
	if err != nil {
		return nil, err
	}

	return &Session{
		Config:   cfg,
		Meshes:   lib,
		System:   sys,
		Camera:   orrery.NewCamera(cfg.Camera),
		Renderer: r,
		Profiler: NewProfiler(),
		Frame:    frame,
		log:      log,
	}, nil
}

func loadBodyMesh(cfg orrery.SceneConfig) (*mesh.Mesh, error) {
	if cfg.MeshPath != "" {
		m, err := mesh.LoadOBJFile(cfg.MeshPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load body mesh: %w", err)
		}
		return m, nil
	}
	return mesh.UVSphere(cfg.SphereStacks, cfg.SphereSlices)
}

// Step advances the simulation by dt seconds and applies held input. The
// camera is pushed out of any body it ends up inside.
func (s *Session) Step(dt float32, in Input) {
	s.Profiler.BeginScope(scopeUpdate)
	defer s.Profiler.EndScope(scopeUpdate)

	s.System.Update(dt)
	cam := s.Camera
	if in.Yaw != 0 || in.Pitch != 0 {
		cam.Rotate(in.Yaw*dt, in.Pitch*dt)
	}
	if in.Zoom != 0 {
		cam.Zoom(in.Zoom * dt)
	}
	if in.PanX != 0 || in.PanY != 0 {
		cam.Pan(in.PanX, in.PanY)
	}
	if in.Forward != 0 || in.Right != 0 || in.Up != 0 {
		cam.Move(in.Forward, in.Right, in.Up, dt)
	}
	cam.Update(dt)
	cam.EnforceMinimumDistance(s.System.Bodies())
	cam.AvoidCollision(s.System.Bodies())
}

// Render draws the current state into Frame.
func (s *Session) Render() orrery.FrameStats {
	s.Profiler.BeginScope(scopeRaster)
	st := s.Renderer.RenderFrame(s.Frame, s.System, s.Camera)
	s.Profiler.EndScope(scopeRaster)
	s.Profiler.RecordFrame(st)
	return st
}

// WarpToPlanet flies to the n-th planet, counting from 1 in scene order.
// With jump set the camera lands immediately.
func (s *Session) WarpToPlanet(n int, jump bool) bool {
	planets := s.System.Planets()
	if n < 1 || n > len(planets) {
		return false
	}
	b := s.System.Body(planets[n-1])
	if jump {
		s.Camera.JumpTo(b)
	} else {
		s.Camera.WarpTo(b)
	}
	s.log.Debugf("warp to %s", b.Name)
	return true
}

func (s *Session) WarpToSun()      { s.Camera.WarpToSun(s.System.StarPosition()) }
func (s *Session) WarpToOverview() { s.Camera.WarpToOverview() }
func (s *Session) ToggleOrbits()   { s.Renderer.ToggleOrbits() }
func (s *Session) ToggleHUD()      { s.Renderer.ToggleHUD() }

func (s *Session) ToggleOrbiting() {
	s.System.SetOrbiting(!s.System.Orbiting())
}

// FasterTime and SlowerTime step the time scale; SetTimeScale clamps.
func (s *Session) FasterTime() { s.System.SetTimeScale(s.System.TimeScale() * timeStep) }
func (s *Session) SlowerTime() { s.System.SetTimeScale(s.System.TimeScale() / timeStep) }
