// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"fmt"
	"sort"
)

// RenderWindow is a render target bound to a window.
type RenderWindow struct {
	name       string
	width      int
	height     int
	fullscreen bool
	params     WindowParams
	surface    Surface
	visible    bool
	viewports  []*Viewport
}

// Name returns the name of w.
func (w *RenderWindow) Name() string { return w.name }

// Width returns the width of w in pixels.
func (w *RenderWindow) Width() int {
	if w.surface != nil {
		if wd, _ := w.surface.Size(); wd > 0 {
			return wd
		}
	}
	return w.width
}

// Height returns the height of w in pixels.
func (w *RenderWindow) Height() int {
	if w.surface != nil {
		if _, ht := w.surface.Size(); ht > 0 {
			return ht
		}
	}
	return w.height
}

// IsFullscreen reports whether w was created fullscreen.
func (w *RenderWindow) IsFullscreen() bool { return w.fullscreen }

// Params returns the parsed creation parameters of w.
func (w *RenderWindow) Params() WindowParams { return w.params }

// Surface returns the render system's target for w.
func (w *RenderWindow) Surface() Surface { return w.surface }

// SetVisible shows or hides w. Hidden windows are not
// rendered.
func (w *RenderWindow) SetVisible(visible bool) {
	w.visible = visible
	if w.surface != nil {
		w.surface.SetVisible(visible)
	}
}

// IsVisible reports whether w is visible.
func (w *RenderWindow) IsVisible() bool { return w.visible }

// AddViewport adds a viewport covering the whole of w,
// at z-order 0, rendered from cam.
func (w *RenderWindow) AddViewport(cam *Camera) (*Viewport, error) {
	return w.AddViewportRect(cam, 0, 0, 0, 1, 1)
}

// AddViewportRect adds a viewport at the given z-order.
// The rectangle is relative to the window size, with
// values in the range [0, 1].
// Viewports are drawn in increasing z-order; no two
// viewports of a window may share a z-order.
func (w *RenderWindow) AddViewportRect(cam *Camera, zOrder int, left, top, width, height float32) (*Viewport, error) {
	if w.surface == nil {
		return nil, ErrClosed
	}
	for _, vp := range w.viewports {
		if vp.zOrder == zOrder {
			return nil, fmt.Errorf("%w: viewport z-order %d", ErrDuplicateName, zOrder)
		}
	}
	if left < 0 || top < 0 || width <= 0 || height <= 0 || left+width > 1 || top+height > 1 {
		return nil, fmt.Errorf("engine: viewport rectangle out of range")
	}
	vp := &Viewport{
		target:     w,
		camera:     cam,
		zOrder:     zOrder,
		left:       left,
		top:        top,
		width:      width,
		height:     height,
		background: Black,
		clear:      true,
	}
	w.viewports = append(w.viewports, vp)
	sort.SliceStable(w.viewports, func(i, j int) bool {
		return w.viewports[i].zOrder < w.viewports[j].zOrder
	})
	if cam != nil && cam.autoAspect {
		cam.SetAspectRatio(float32(vp.ActualWidth()) / float32(vp.ActualHeight()))
	}
	return vp, nil
}

// RemoveViewport removes the viewport at zOrder.
func (w *RenderWindow) RemoveViewport(zOrder int) {
	for i, vp := range w.viewports {
		if vp.zOrder == zOrder {
			w.viewports = append(w.viewports[:i], w.viewports[i+1:]...)
			vp.target = nil
			return
		}
	}
}

// Viewports returns the viewports of w in z-order.
func (w *RenderWindow) Viewports() []*Viewport {
	return append([]*Viewport(nil), w.viewports...)
}

func (w *RenderWindow) destroy() {
	for _, vp := range w.viewports {
		vp.target = nil
	}
	w.viewports = nil
	if w.surface != nil {
		w.surface.Destroy()
		w.surface = nil
	}
}

// Viewport is a region of a render target showing what a
// camera sees.
type Viewport struct {
	target     *RenderWindow
	camera     *Camera
	zOrder     int
	left       float32
	top        float32
	width      float32
	height     float32
	background Colour
	clear      bool
}

// Camera returns the camera of vp.
func (vp *Viewport) Camera() *Camera { return vp.camera }

// SetCamera changes the camera of vp.
func (vp *Viewport) SetCamera(cam *Camera) { vp.camera = cam }

// Target returns the window of vp, or nil once removed.
func (vp *Viewport) Target() *RenderWindow { return vp.target }

// ZOrder returns the z-order of vp.
func (vp *Viewport) ZOrder() int { return vp.zOrder }

// SetBackgroundColour sets the colour vp is cleared to.
// Default is Black.
func (vp *Viewport) SetBackgroundColour(c Colour) { vp.background = c }

// BackgroundColour returns the clear colour of vp.
func (vp *Viewport) BackgroundColour() Colour { return vp.background }

// SetClearEveryFrame sets whether vp is cleared before
// drawing. Default is true.
func (vp *Viewport) SetClearEveryFrame(clear bool) { vp.clear = clear }

// ClearEveryFrame reports whether vp is cleared before
// drawing.
func (vp *Viewport) ClearEveryFrame() bool { return vp.clear }

// ActualLeft returns the left edge of vp in pixels.
func (vp *Viewport) ActualLeft() int { return vp.px(vp.left, true) }

// ActualTop returns the top edge of vp in pixels.
func (vp *Viewport) ActualTop() int { return vp.px(vp.top, false) }

// ActualWidth returns the width of vp in pixels.
func (vp *Viewport) ActualWidth() int { return vp.px(vp.width, true) }

// ActualHeight returns the height of vp in pixels.
func (vp *Viewport) ActualHeight() int { return vp.px(vp.height, false) }

func (vp *Viewport) px(rel float32, horizontal bool) int {
	if vp.target == nil {
		return 0
	}
	size := vp.target.Height()
	if horizontal {
		size = vp.target.Width()
	}
	return int(rel*float32(size) + 0.5)
}
