// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"errors"
)

var errMissing = errors.New("wsi: no wsi implementation")

// dummy is the System used when no backend is available.
type dummy struct{ closed bool }

func newDummy() *dummy { return &dummy{} }

func (d *dummy) NewWindow(int, int, string) (Window, error) {
	if d.closed {
		return nil, ErrClosed
	}
	return nil, errMissing
}

func (*dummy) Poll() (Event, bool) { return Event{}, false }
func (*dummy) Windows() []Window   { return nil }
func (*dummy) Platform() Platform  { return None }
func (d *dummy) Quit()             { d.closed = true }
