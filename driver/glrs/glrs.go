// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package glrs implements the engine's OpenGL render
// system on top of an OpenGL 3.3 core context created
// through SDL.
//
// Importing the package registers the "RenderSystem_GL"
// plugin:
//
//	import _ "github.com/frostogre/frost/driver/glrs"
//
// Loading the plugin into an engine.Root makes the
// "OpenGL Rendering Subsystem" available for selection.
package glrs

import (
	"github.com/frostogre/frost/engine"
)

// PluginName is the name that loads the plugin.
const PluginName = "RenderSystem_GL"

// Plugin implements engine.Plugin.
type Plugin struct{}

func init() {
	engine.Register(Plugin{})
}

// Name returns PluginName.
func (Plugin) Name() string { return PluginName }

// Install adds a new render system to r.
func (Plugin) Install(r *engine.Root) error {
	r.AddRenderSystem(newRenderSystem(r))
	return nil
}

// Uninstall does nothing. The Root shuts down the render
// system before uninstalling plugins.
func (Plugin) Uninstall(*engine.Root) {}
