// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package engine implements a small scene-graph renderer.
//
// A Root is the composition root of the engine: it loads
// plugins, selects a RenderSystem, owns render windows,
// scene managers and the resource managers, and renders
// frames on request. Nothing is global except the plugin
// registry, which plugin packages fill from init.
package engine

const (
	// GLRenderSystemName is the name under which the
	// OpenGL render system registers itself.
	GLRenderSystemName = "OpenGL Rendering Subsystem"

	// DefaultGroup is the resource group used when none
	// is given.
	DefaultGroup = "General"

	// DefaultPluginDir is the directory that plugin paths
	// are resolved against when Config.PluginDir is empty.
	DefaultPluginDir = "."

	autoWindowName   = "Render Window"
	autoWindowWidth  = 640
	autoWindowHeight = 480
)

// Config is used to configure a Root.
// The zero value describes an engine that reads nothing
// from disk and writes no log file.
type Config struct {
	// File listing plugins to load on creation, one
	// "Plugin=name" per line. A "PluginFolder=dir" line
	// overrides PluginDir.
	//
	// Default is "" (load nothing).
	PluginFile string

	// File holding saved settings, one "key=value" per
	// line. The "Render System" key selects the render
	// system used by Initialise when none was set.
	//
	// Default is "".
	ConfigFile string

	// File to write the engine log to.
	//
	// Default is "" (use the package Logger).
	LogFile string

	// Directory that relative plugin paths name.
	//
	// Default is DefaultPluginDir.
	PluginDir string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{PluginDir: DefaultPluginDir}
}
