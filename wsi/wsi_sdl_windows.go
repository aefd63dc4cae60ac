// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build !nosdl

package wsi

import (
	"github.com/veandco/go-sdl2/sdl"
)

const defaultPlatform = Win32

func nativeHandle(info *sdl.SysWMInfo) (NativeHandle, error) {
	if info.Subsystem != sdl.SYSWM_WINDOWS {
		return NativeHandle{}, &UnsupportedError{Subsystem: subsystemName(info)}
	}
	h := NativeHandle{Platform: Win32, Value: uintptr(info.GetWindowsInfo().Window)}
	if !h.Valid() {
		return NativeHandle{}, errBadHandle
	}
	return h, nil
}
