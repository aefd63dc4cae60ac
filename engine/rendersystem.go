// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderSystem is the interface that a rendering backend
// implements. A Root drives exactly one RenderSystem,
// selected by name.
// Calls are made from the thread that owns the Root.
type RenderSystem interface {
	// Name returns the name used to select the render
	// system. It must not cause the system to be
	// initialised.
	Name() string

	// Init initialises the render system. It must not
	// create a window.
	Init() error

	// NewWindow creates a render target bound to a
	// window. See ParseWindowParams for the parameters
	// that every render system understands.
	NewWindow(name string, width, height int, fullscreen bool, params NameValuePairList) (Surface, error)

	// Draw renders f into s. Draw does not present;
	// the Root calls Surface.Swap once every viewport
	// of the window was drawn.
	Draw(s Surface, f *Frame) error

	// Shutdown releases everything the render system
	// created. Shutting down a render system that was
	// not initialised has no effect.
	Shutdown()
}

// Surface is the interface of a render system's window
// target.
type Surface interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)

	// SetVisible shows or hides the target.
	SetVisible(visible bool)

	// Swap presents the rendered frame.
	Swap() error

	// Destroy releases the target. It does not destroy
	// a parent window owned by someone else.
	Destroy()
}

// NameValuePairList holds the miscellaneous parameters
// of a render window.
type NameValuePairList map[string]string

// Window parameter keys.
const (
	ParamTitle        = "title"
	ParamFSAA         = "FSAA"
	ParamVSync        = "vsync"
	ParamParentWindow = "parentWindowHandle"
)

// WindowParams are the parsed common window parameters.
type WindowParams struct {
	// Title of the window.
	Title string

	// Anti-aliasing sample count. 0 disables it.
	FSAA int

	// Whether buffer swaps wait for vertical sync.
	VSync bool

	// Native handle of the window to render into.
	// Zero means that the render system must create
	// its own window.
	ParentWindow uintptr
}

// ParseWindowParams parses the keys of params that every
// render system recognises. Unknown keys are ignored.
// The parent window handle is decimal; the X11 form
// "display:screen:window" is accepted as well.
func ParseWindowParams(params NameValuePairList) (WindowParams, error) {
	var wp WindowParams
	for k, v := range params {
		switch k {
		case ParamTitle:
			wp.Title = v
		case ParamFSAA:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n < 0 {
				return WindowParams{}, fmt.Errorf("engine: bad %s value %q", k, v)
			}
			wp.FSAA = n
		case ParamVSync:
			b, err := parseBool(v)
			if err != nil {
				return WindowParams{}, fmt.Errorf("engine: bad %s value %q", k, v)
			}
			wp.VSync = b
		case ParamParentWindow:
			s := strings.TrimSpace(v)
			if i := strings.LastIndexByte(s, ':'); i >= 0 {
				s = s[i+1:]
			}
			h, err := strconv.ParseUint(s, 10, 64)
			if err != nil || h == 0 {
				return WindowParams{}, fmt.Errorf("engine: bad %s value %q", k, v)
			}
			wp.ParentWindow = uintptr(h)
		}
	}
	return wp, nil
}

// parseBool accepts the spellings used in settings files.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, strconv.ErrSyntax
}
