// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build !nosdl && unix && !darwin

package wsi

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/veandco/go-sdl2/sdl"
)

const defaultPlatform = X11

func nativeHandle(info *sdl.SysWMInfo) (NativeHandle, error) {
	if info.Subsystem != sdl.SYSWM_X11 {
		return NativeHandle{}, &UnsupportedError{Subsystem: subsystemName(info)}
	}
	h := NativeHandle{Platform: X11, Value: uintptr(info.GetX11Info().Window)}
	if err := checkX11(h); err != nil {
		return NativeHandle{}, err
	}
	return h, nil
}

// checkX11 confirms that h names a live window on the
// display in $DISPLAY.
func checkX11(h NativeHandle) error {
	if !h.Valid() {
		return errBadHandle
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("wsi: x11 connection: %w", err)
	}
	defer conn.Close()
	if _, err := xproto.GetGeometry(conn, xproto.Drawable(h.Value)).Reply(); err != nil {
		return fmt.Errorf("wsi: x11 window %s: %w", h, err)
	}
	return nil
}
