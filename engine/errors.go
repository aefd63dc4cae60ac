// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"fmt"
)

// ErrPluginNotFound means that no registered plugin
// matches the path given to Root.LoadPlugin.
var ErrPluginNotFound = errors.New("engine: plugin not found")

// ErrRenderSystemNotFound means that no installed render
// system has the requested name.
var ErrRenderSystemNotFound = errors.New("engine: render system not found")

// ErrNoRenderSystem means that Initialise was called
// before a render system was selected.
var ErrNoRenderSystem = errors.New("engine: no render system selected")

// ErrNotInitialised means that the operation requires
// prior initialisation (of the Root or of a resource
// group).
var ErrNotInitialised = errors.New("engine: not initialised")

// ErrClosed means that the Root was closed.
var ErrClosed = errors.New("engine: root closed")

// ErrDuplicateName means that an object of the same kind
// and name already exists.
var ErrDuplicateName = errors.New("engine: duplicate name")

// ErrFileNotFound means that no resource location holds
// the requested file.
var ErrFileNotFound = errors.New("engine: file not found")

// ErrUnknownArchive means that a resource location type
// is not supported.
var ErrUnknownArchive = errors.New("engine: unknown archive type")

// ErrMaterialNotFound means that a material name is not
// defined by any parsed script.
var ErrMaterialNotFound = errors.New("engine: material not found")

// ErrUnsupportedMesh means that no mesh codec handles the
// file's extension.
var ErrUnsupportedMesh = errors.New("engine: unsupported mesh format")

// ErrBadMesh means that a mesh file is malformed.
var ErrBadMesh = errors.New("engine: malformed mesh")

// Scene graph errors.
var (
	ErrHasParent = errors.New("engine: node already has a parent")
	ErrCycle     = errors.New("engine: node would become its own ancestor")
	ErrNotChild  = errors.New("engine: node is not a child")
	ErrAttached  = errors.New("engine: object already attached")
)

// ScriptError reports a malformed script statement.
type ScriptError struct {
	File string
	Line int
	Msg  string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("engine: %s:%d: %s", e.File, e.Line, e.Msg)
}

func wrapName(err error, name string) error {
	return fmt.Errorf("%w: %q", err, name)
}
