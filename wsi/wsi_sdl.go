// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build !nosdl

package wsi

import (
	"errors"
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	openSystem = openSDL
}

var errWindowClosed = errors.New("wsi: window closed")

// sdlSystem implements System on top of SDL2.
type sdlSystem struct {
	registry
	closed   bool
	platform Platform
}

// openSDL initializes SDL's video subsystem.
func openSDL() (System, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, err
	}
	return &sdlSystem{}, nil
}

func (s *sdlSystem) NewWindow(width, height int, title string) (Window, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.count >= MaxWindows {
		return nil, ErrTooManyWindows
	}
	w, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_OPENGL)
	if err != nil {
		return nil, err
	}
	id, err := w.GetID()
	if err != nil {
		w.Destroy()
		return nil, err
	}
	win := &windowSDL{
		sys:    s,
		win:    w,
		id:     id,
		width:  width,
		height: height,
		title:  title,
	}
	if err := s.add(win); err != nil {
		w.Destroy()
		return nil, err
	}
	if info, err := w.GetWMInfo(); err == nil {
		s.platform = subsystemPlatform(info.Subsystem)
	}
	return win, nil
}

func (s *sdlSystem) Poll() (Event, bool) {
	if s.closed {
		return Event{}, false
	}
	ev := sdl.PollEvent()
	if ev == nil {
		return Event{}, false
	}
	return translateSDL(ev), true
}

func (s *sdlSystem) Windows() []Window { return s.list() }

// Platform returns the window system of the last window
// created, or the build's default before any window.
func (s *sdlSystem) Platform() Platform {
	if s.platform != None {
		return s.platform
	}
	return defaultPlatform
}

func (s *sdlSystem) Quit() {
	if s.closed {
		return
	}
	for _, w := range s.list() {
		w.Close()
	}
	sdl.Quit()
	s.closed = true
}

// translateSDL maps an SDL event onto the coarse
// event types that wsi reports.
func translateSDL(ev sdl.Event) Event {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_CLOSE:
			return Event{Type: EventWindowClose, Window: e.WindowID}
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			return Event{Type: EventResize, Window: e.WindowID}
		}
		return Event{Type: EventOther, Window: e.WindowID}
	case *sdl.KeyboardEvent:
		return Event{Type: EventKey, Window: e.WindowID}
	case *sdl.MouseMotionEvent:
		return Event{Type: EventPointer, Window: e.WindowID}
	case *sdl.MouseButtonEvent:
		return Event{Type: EventPointer, Window: e.WindowID}
	case *sdl.MouseWheelEvent:
		return Event{Type: EventPointer, Window: e.WindowID}
	}
	return Event{Type: EventOther}
}

// windowSDL implements Window.
type windowSDL struct {
	sys    *sdlSystem
	win    *sdl.Window
	id     uint32
	width  int
	height int
	title  string
}

func (w *windowSDL) Handle() (NativeHandle, error) {
	if w.win == nil {
		return NativeHandle{}, errWindowClosed
	}
	info, err := w.win.GetWMInfo()
	if err != nil {
		return NativeHandle{}, fmt.Errorf("wsi: couldn't get WM info: %w", err)
	}
	return nativeHandle(info)
}

func (w *windowSDL) Close() error {
	if w.win == nil {
		return nil
	}
	err := w.win.Destroy()
	w.win = nil
	w.sys.remove(w)
	return err
}

func (w *windowSDL) ID() uint32    { return w.id }
func (w *windowSDL) Width() int    { return w.width }
func (w *windowSDL) Height() int   { return w.height }
func (w *windowSDL) Title() string { return w.title }

// subsystemPlatform maps an SDL window system to a
// Platform. Subsystems wsi does not know map to None.
func subsystemPlatform(subsystem uint32) Platform {
	switch subsystem {
	case sdl.SYSWM_X11:
		return X11
	case sdl.SYSWM_WAYLAND:
		return Wayland
	case sdl.SYSWM_WINDOWS:
		return Win32
	case sdl.SYSWM_COCOA:
		return Cocoa
	}
	return None
}

// subsystemName names the window system SDL reports.
func subsystemName(info *sdl.SysWMInfo) string {
	switch info.Subsystem {
	case sdl.SYSWM_WINDOWS:
		return "windows"
	case sdl.SYSWM_X11:
		return "x11"
	case sdl.SYSWM_DIRECTFB:
		return "directfb"
	case sdl.SYSWM_COCOA:
		return "cocoa"
	case sdl.SYSWM_UIKIT:
		return "uikit"
	case sdl.SYSWM_WAYLAND:
		return "wayland"
	case sdl.SYSWM_ANDROID:
		return "android"
	}
	return fmt.Sprintf("unknown (%d)", info.Subsystem)
}
