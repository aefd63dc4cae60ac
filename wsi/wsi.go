// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package wsi provides window system integration (WSI)
// for the renderer.
// A System owns the platform's video subsystem and the
// windows created through it. Windows expose a typed
// native handle so that a render system can bind its
// render target to a window it does not own.
// Because a system need not have a window system, WSI
// is conditionally supported.
package wsi

import (
	"errors"
	"fmt"
)

// Window is the interface that defines a drawable window.
// The purpose of a window is to provide a surface into
// which a GPU can draw.
type Window interface {
	// Handle returns the platform-specific handle of
	// the window.
	Handle() (NativeHandle, error)

	// ID returns the identifier that events use to
	// refer to the window.
	ID() uint32

	// Close closes the window.
	Close() error

	// Width returns the window's width.
	Width() int

	// Height returns the window's height.
	Height() int

	// Title returns the window's title.
	Title() string
}

// System is the interface that defines a window system.
// A System is not safe for concurrent use; it must be
// driven from the thread that opened it.
type System interface {
	// NewWindow creates a new visible window.
	NewWindow(width, height int, title string) (Window, error)

	// Poll removes at most one event from the queue.
	// It does not block. ok is false when the queue
	// was empty.
	Poll() (ev Event, ok bool)

	// Windows returns all open windows.
	Windows() []Window

	// Platform identifies the window system in use.
	Platform() Platform

	// Quit closes any remaining windows and shuts the
	// window system down.
	Quit()
}

// The maximum number of windows that can exist at any
// given time.
const MaxWindows = 16

// ErrTooManyWindows means that MaxWindows windows are
// already open.
var ErrTooManyWindows = errors.New("wsi: too many windows")

// ErrClosed means that the System was already shut down.
var ErrClosed = errors.New("wsi: system closed")

// Open initializes the window system available to this
// build. When no backend is compiled in, it returns a
// System whose Platform is None.
func Open() (System, error) {
	if openSystem == nil {
		return newDummy(), nil
	}
	sys, err := openSystem()
	if err != nil {
		return nil, fmt.Errorf("wsi: %w", err)
	}
	return sys, nil
}

// openSystem is set by backends from init.
var openSystem func() (System, error)

// registry tracks open windows on behalf of a System.
// Implementations embed it and call add/remove from
// NewWindow and Window.Close.
type registry struct {
	count int
	wins  [MaxWindows]Window
}

func (r *registry) add(win Window) error {
	if r.count >= MaxWindows {
		return ErrTooManyWindows
	}
	for i := range r.wins {
		if r.wins[i] == nil {
			r.wins[i] = win
			r.count++
			break
		}
	}
	return nil
}

// remove must be called by implementations on
// Window.Close. Note that win must be comparable.
func (r *registry) remove(win Window) {
	for i := range r.wins {
		if r.wins[i] == win {
			r.wins[i] = nil
			r.count--
			return
		}
	}
}

func (r *registry) list() []Window {
	if r.count == 0 {
		return nil
	}
	wins := make([]Window, 0, r.count)
	for i := range r.wins {
		if r.wins[i] != nil {
			wins = append(wins, r.wins[i])
		}
	}
	return wins
}

// EventType is the type of window system events.
type EventType int

// Event types.
const (
	EventNone EventType = iota
	// The application was asked to quit.
	EventQuit
	// A window was asked to close.
	EventWindowClose
	EventResize
	EventKey
	EventPointer
	EventOther
)

var eventNames = [...]string{
	EventNone:        "none",
	EventQuit:        "quit",
	EventWindowClose: "window-close",
	EventResize:      "resize",
	EventKey:         "key",
	EventPointer:     "pointer",
	EventOther:       "other",
}

func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventNames) {
		return fmt.Sprintf("EventType(%d)", int(t))
	}
	return eventNames[t]
}

// Event is a window system event.
type Event struct {
	Type EventType
	// Window is the ID of the window the event refers
	// to, or zero.
	Window uint32
}

// Platform identifies an underlying platform used to
// implement wsi.
type Platform int

// Platforms.
const (
	// None means that wsi is not available.
	// In this case, calls to NewWindow will
	// always fail, and calls to Poll will
	// report no events.
	None Platform = iota
	X11
	Wayland
	Win32
	Cocoa
)

func (p Platform) String() string {
	switch p {
	case None:
		return "none"
	case X11:
		return "x11"
	case Wayland:
		return "wayland"
	case Win32:
		return "win32"
	case Cocoa:
		return "cocoa"
	}
	return fmt.Sprintf("Platform(%d)", int(p))
}
