// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package demo implements the frost-ogre demo: it opens
// a window, binds the engine's OpenGL render system to
// it, builds a scene and renders until asked to quit.
package demo

import (
	"fmt"

	"github.com/frostogre/frost/engine"
)

// Scene selects the scene that the demo builds.
type Scene int

// Scenes.
const (
	// SceneFull is a shadowed scene with a light, an
	// animated character and a textured ground plane.
	SceneFull Scene = iota
	// SceneMinimal is a camera looking at nothing over
	// a red background.
	SceneMinimal
)

func (s Scene) String() string {
	switch s {
	case SceneFull:
		return "full"
	case SceneMinimal:
		return "minimal"
	}
	return fmt.Sprintf("Scene(%d)", int(s))
}

// ParseScene parses the String form of a Scene.
func ParseScene(s string) (Scene, error) {
	switch s {
	case "full":
		return SceneFull, nil
	case "minimal":
		return SceneMinimal, nil
	}
	return 0, fmt.Errorf("demo: unknown scene %q", s)
}

// Config is used to configure the demo.
type Config struct {
	// Title of the window.
	//
	// Default is "frost-ogre".
	Title string

	// Size of the window in pixels.
	//
	// Default is 640x480.
	Width, Height int

	// Scene to build.
	//
	// Default is SceneFull.
	Scene Scene

	// Plugins to load, in order.
	//
	// Default is {"RenderSystem_GL"}.
	Plugins []string

	// Name of the render system to select.
	//
	// Default is engine.GLRenderSystemName.
	RenderSystem string

	// Directory that relative plugin paths name.
	//
	// Default is engine.DefaultPluginDir.
	PluginDir string

	// Anti-aliasing level passed to the render window.
	//
	// Default is 0 (disabled).
	FSAA int

	// Whether the render window waits for vertical
	// sync.
	//
	// Default is false.
	VSync bool

	// Alternative asset directories. Each holds the
	// meshes and materials sub-directories; missing
	// ones are skipped.
	//
	// Default is {"../assets", "assets"}.
	AssetRoots []string

	// Engine log file.
	//
	// Default is "" (no file).
	LogFile string
}

// Default values.
const (
	DefaultTitle  = "frost-ogre"
	DefaultWidth  = 640
	DefaultHeight = 480
	GLPlugin      = "RenderSystem_GL"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Title:        DefaultTitle,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Scene:        SceneFull,
		Plugins:      []string{GLPlugin},
		RenderSystem: engine.GLRenderSystemName,
		PluginDir:    engine.DefaultPluginDir,
		AssetRoots:   []string{"../assets", "assets"},
	}
}
