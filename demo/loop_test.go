// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package demo

import (
	"errors"
	"testing"

	"github.com/frostogre/frost/wsi"
)

// script is a Renderer and Poller that replays a queue of
// poll results. A nil entry polls nothing.
type script struct {
	events  []*wsi.Event
	polls   int
	renders int
	failAt  int
	log     []string
}

func (s *script) RenderOneFrame() error {
	s.renders++
	s.log = append(s.log, "render")
	if s.failAt > 0 && s.renders == s.failAt {
		return errors.New("render failed")
	}
	return nil
}

func (s *script) Poll() (wsi.Event, bool) {
	s.polls++
	s.log = append(s.log, "poll")
	if len(s.events) == 0 {
		return wsi.Event{}, false
	}
	ev := s.events[0]
	s.events = s.events[1:]
	if ev == nil {
		return wsi.Event{}, false
	}
	return *ev, true
}

func TestShouldStop(t *testing.T) {
	for _, x := range [...]struct {
		typ  wsi.EventType
		want bool
	}{
		{wsi.EventNone, false},
		{wsi.EventQuit, true},
		{wsi.EventWindowClose, true},
		{wsi.EventResize, false},
		{wsi.EventKey, false},
		{wsi.EventPointer, false},
		{wsi.EventOther, false},
	} {
		if s := ShouldStop(wsi.Event{Type: x.typ}); s != x.want {
			t.Fatalf("ShouldStop(%v)\nhave %t\nwant %t", x.typ, s, x.want)
		}
	}
}

func TestLoop(t *testing.T) {
	s := &script{events: []*wsi.Event{
		nil,
		{Type: wsi.EventKey},
		{Type: wsi.EventResize, Window: 1},
		nil,
		{Type: wsi.EventQuit},
		{Type: wsi.EventKey},
	}}
	l := &Loop{Renderer: s, Poller: s}
	if st := l.State(); st != Stopped {
		t.Fatalf("Loop.State (new)\nhave %v\nwant %v", st, Stopped)
	}
	n, err := l.Run()
	if err != nil {
		t.Fatalf("Loop.Run: %v", err)
	}
	if n != 5 || s.renders != 5 || s.polls != 5 {
		t.Fatalf("Loop.Run: frames, renders, polls\nhave %d, %d, %d\nwant 5, 5, 5", n, s.renders, s.polls)
	}
	if len(s.events) != 1 {
		t.Fatalf("Loop.Run: events left\nhave %d\nwant 1", len(s.events))
	}
	if st := l.State(); st != Stopped {
		t.Fatalf("Loop.State (after Run)\nhave %v\nwant %v", st, Stopped)
	}
	// One render, then one poll, per iteration.
	for i, ev := range s.log {
		want := "render"
		if i%2 == 1 {
			want = "poll"
		}
		if ev != want {
			t.Fatalf("Loop.Run: call %d\nhave %s\nwant %s", i, ev, want)
		}
	}
}

func TestLoopWindowClose(t *testing.T) {
	s := &script{events: []*wsi.Event{{Type: wsi.EventWindowClose, Window: 3}}}
	l := &Loop{Renderer: s, Poller: s}
	if n, err := l.Run(); n != 1 || err != nil {
		t.Fatalf("Loop.Run\nhave %d, %v\nwant 1, nil", n, err)
	}
}

func TestLoopRenderError(t *testing.T) {
	s := &script{failAt: 3}
	l := &Loop{Renderer: s, Poller: s}
	n, err := l.Run()
	if err == nil {
		t.Fatal("Loop.Run: unexpected success")
	}
	if n != 2 || s.polls != 2 {
		t.Fatalf("Loop.Run (render error): frames, polls\nhave %d, %d\nwant 2, 2", n, s.polls)
	}
	if st := l.State(); st != Stopped {
		t.Fatalf("Loop.State (render error)\nhave %v\nwant %v", st, Stopped)
	}
}
