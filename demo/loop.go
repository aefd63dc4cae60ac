// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package demo

import (
	"github.com/frostogre/frost/wsi"
)

// State is the state of a Loop.
type State int

// Loop states.
const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// ShouldStop reports whether ev asks the loop to stop.
// Closing a window is the per-window form of quitting.
func ShouldStop(ev wsi.Event) bool {
	return ev.Type == wsi.EventQuit || ev.Type == wsi.EventWindowClose
}

// Renderer renders one frame, blocking until it was
// submitted.
type Renderer interface {
	RenderOneFrame() error
}

// Poller removes at most one pending event without
// blocking.
type Poller interface {
	Poll() (ev wsi.Event, ok bool)
}

// Loop renders frames until a quit event arrives.
type Loop struct {
	Renderer Renderer
	Poller   Poller

	state  State
	frames int
}

// Run runs the loop. Each iteration renders one frame,
// then polls one event; events other than quit are
// discarded. Run returns the number of frames rendered,
// and the error that stopped rendering, if any.
func (l *Loop) Run() (frames int, err error) {
	l.state = Running
	for l.state == Running {
		if err := l.Renderer.RenderOneFrame(); err != nil {
			l.state = Stopped
			return l.frames, err
		}
		l.frames++
		if ev, ok := l.Poller.Poll(); ok && ShouldStop(ev) {
			l.state = Stopped
		}
	}
	return l.frames, nil
}

// State returns the current state of l.
func (l *Loop) State() State { return l.state }

// Frames returns the number of frames rendered by l.
func (l *Loop) Frames() int { return l.frames }
