// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build !nosdl

package wsi

import (
	"github.com/veandco/go-sdl2/sdl"
)

const defaultPlatform = Cocoa

func nativeHandle(info *sdl.SysWMInfo) (NativeHandle, error) {
	if info.Subsystem != sdl.SYSWM_COCOA {
		return NativeHandle{}, &UnsupportedError{Subsystem: subsystemName(info)}
	}
	h := NativeHandle{Platform: Cocoa, Value: uintptr(info.GetCocoaInfo().Window)}
	if !h.Valid() {
		return NativeHandle{}, errBadHandle
	}
	return h, nil
}
