// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"errors"
	"strconv"
)

// NativeHandle is the platform identifier of a window,
// e.g. an X11 window ID or a Win32 HWND.
type NativeHandle struct {
	Platform Platform
	Value    uintptr
}

// String returns the decimal form of the handle value,
// which is the form render systems accept in window
// parameters.
func (h NativeHandle) String() string {
	return strconv.FormatUint(uint64(h.Value), 10)
}

// Valid reports whether h refers to a window.
func (h NativeHandle) Valid() bool { return h.Value != 0 }

var errBadHandle = errors.New("wsi: malformed native handle")

// ParseHandle parses the decimal form produced by
// NativeHandle.String.
func ParseHandle(s string) (uintptr, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, errBadHandle
	}
	return uintptr(v), nil
}

// UnsupportedError is returned by Window.Handle when the
// window system backing the window cannot provide a handle
// the running platform knows how to use.
type UnsupportedError struct {
	// Subsystem names the window system reported by
	// the video layer.
	Subsystem string
}

func (e *UnsupportedError) Error() string {
	return "wsi: unsupported window system: " + e.Subsystem
}
