package app

import (
	"github.com/gekko3d/orrery/softrt/rt/session"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Mouse travel in pixels is scaled down before it pans the camera.
const panSensitivity = 0.5

// HandleKey runs one-shot commands on key press:
//
//	1-5       warp to a planet (shift jumps without animation)
//	0 / 9     sun / overview
//	O H P     orbits, HUD, orbital motion
//	[ ]       slower / faster time
//	Escape    quit
func (a *App) HandleKey(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	s := a.Session
	switch {
	case key >= glfw.Key1 && key <= glfw.Key5:
		s.WarpToPlanet(int(key-glfw.Key0), mods&glfw.ModShift != 0)
	case key == glfw.Key0:
		s.WarpToSun()
	case key == glfw.Key9:
		s.WarpToOverview()
	case key == glfw.KeyO:
		s.ToggleOrbits()
	case key == glfw.KeyH:
		s.ToggleHUD()
	case key == glfw.KeyP:
		s.ToggleOrbiting()
	case key == glfw.KeyLeftBracket:
		s.SlowerTime()
	case key == glfw.KeyRightBracket:
		s.FasterTime()
	case key == glfw.KeyEscape:
		a.Window.SetShouldClose(true)
	}
}

// HandleMouseButton starts and stops a pan drag with the left button.
func (a *App) HandleMouseButton(button glfw.MouseButton, action glfw.Action) {
	if button != glfw.MouseButtonLeft {
		return
	}
	a.Dragging = action == glfw.Press
	a.MouseX, a.MouseY = a.Window.GetCursorPos()
}

func (a *App) HandleCursor(x, y float64) {
	if a.Dragging {
		a.panX -= float32(x-a.MouseX) * panSensitivity
		a.panY += float32(y-a.MouseY) * panSensitivity
	}
	a.MouseX, a.MouseY = x, y
}

// HandleScroll zooms; one wheel notch counts as a tenth of a second of
// holding the zoom key.
func (a *App) HandleScroll(yoff float64) {
	a.Session.Camera.Zoom(float32(yoff) * 0.1)
}

// pollInput samples held keys: WASD and Q/E fly, arrows orbit, +/- zoom.
func (a *App) pollInput() session.Input {
	var in session.Input
	in.Forward = a.axis(glfw.KeyW, glfw.KeyS)
	in.Right = a.axis(glfw.KeyD, glfw.KeyA)
	in.Up = a.axis(glfw.KeyE, glfw.KeyQ)
	in.Yaw = a.axis(glfw.KeyRight, glfw.KeyLeft)
	in.Pitch = a.axis(glfw.KeyUp, glfw.KeyDown)
	in.Zoom = a.axis(glfw.KeyEqual, glfw.KeyMinus) + a.axis(glfw.KeyKPAdd, glfw.KeyKPSubtract)
	return in
}

func (a *App) axis(pos, neg glfw.Key) float32 {
	var v float32
	if a.Window.GetKey(pos) == glfw.Press {
		v++
	}
	if a.Window.GetKey(neg) == glfw.Press {
		v--
	}
	return v
}
