// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build !nosdl && !unix && !windows

package wsi

import (
	"github.com/veandco/go-sdl2/sdl"
)

const defaultPlatform = None

func nativeHandle(info *sdl.SysWMInfo) (NativeHandle, error) {
	return NativeHandle{}, &UnsupportedError{Subsystem: subsystemName(info)}
}
