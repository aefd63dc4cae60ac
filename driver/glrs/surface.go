// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package glrs

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// window is the part of *sdl.Window that surfaces use.
type window interface {
	GLCreateContext() (sdl.GLContext, error)
	GLMakeCurrent(sdl.GLContext) error
	GLGetDrawableSize() (int32, int32)
	GLSwap()
	Show()
	Hide()
	Destroy() error
}

// surface implements engine.Surface.
type surface struct {
	rs      *RenderSystem
	win     window
	foreign bool
	vsync   bool
	visible bool
}

// Size returns the drawable size, which differs from the
// window size on high density displays.
func (s *surface) Size() (width, height int) {
	if s.win == nil {
		return 0, 0
	}
	w, h := s.win.GLGetDrawableSize()
	return int(w), int(h)
}

// SetVisible shows or hides the window. Windows adopted
// from a native handle are left as they are.
func (s *surface) SetVisible(visible bool) {
	if s.win == nil || s.foreign || visible == s.visible {
		return
	}
	if visible {
		s.win.Show()
	} else {
		s.win.Hide()
	}
	s.visible = visible
}

func (s *surface) Swap() error {
	if s.win == nil {
		return fmt.Errorf("glrs: swap on destroyed surface")
	}
	s.win.GLSwap()
	return nil
}

// Destroy destroys the window of s. GL objects are freed
// before the last surface goes, while the context can
// still be made current.
func (s *surface) Destroy() {
	if s.win == nil {
		return
	}
	if len(s.rs.surfaces) == 1 && s.rs.surfaces[0] == s {
		s.rs.releaseGL(s)
	}
	s.release()
	s.rs.removeSurface(s)
}

// release destroys the SDL window. For adopted windows
// SDL only detaches from the native window.
func (s *surface) release() {
	if s.win == nil {
		return
	}
	if err := s.win.Destroy(); err != nil {
		s.rs.log.Warn("cannot destroy window", "err", err)
	}
	s.win = nil
}
