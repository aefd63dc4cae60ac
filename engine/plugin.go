// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"path/filepath"
	"strings"
	"sync"
)

// Plugin is the interface that provides methods for
// installing optional functionality into a Root.
// A plugin must keep no per-Root state outside of what
// it hands to the Root, so that one registered value can
// serve any number of roots.
type Plugin interface {
	// Name returns the name of the plugin, which is
	// also the base name of the path that loads it.
	Name() string

	// Install adds the plugin's functionality to r,
	// typically by calling r.AddRenderSystem.
	Install(r *Root) error

	// Uninstall is called when r is closed, in reverse
	// load order.
	Uninstall(r *Root)
}

// Plugins returns the registered Plugins.
// Client code imports specific plugin packages, which
// register themselves from init. As such, plugins that
// do not register themselves on init will not be found
// by Root.LoadPlugin.
func Plugins() []Plugin {
	mu.Lock()
	defer mu.Unlock()
	p := make([]Plugin, len(plugins))
	copy(p, plugins)
	return p
}

// Register registers a Plugin.
// Plugin implementations are expected to call Register
// exactly once, from an init function.
// If a plugin with the same name has already been
// registered, it will be replaced by p.
func Register(p Plugin) {
	mu.Lock()
	defer mu.Unlock()
	for i := range plugins {
		if plugins[i].Name() == p.Name() {
			plugins[i] = p
			Logger().Warn("plugin replaced", "name", p.Name())
			return
		}
	}
	plugins = append(plugins, p)
	Logger().Debug("plugin registered", "name", p.Name())
}

// lookupPlugin returns the registered plugin with the
// given name, or nil.
func lookupPlugin(name string) Plugin {
	mu.Lock()
	defer mu.Unlock()
	for _, p := range plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// Variables used for plugin registration.
var (
	mu      sync.Mutex
	plugins = make([]Plugin, 0, 2)
)

// pluginName reduces a plugin path to the name that
// plugins register with: the base name without shared
// library extension, "lib" prefix or debug suffix.
func pluginName(path string) string {
	name := filepath.Base(filepath.ToSlash(path))
	for _, ext := range [...]string{".so", ".dll", ".dylib"} {
		if strings.HasSuffix(name, ext) {
			name = strings.TrimSuffix(name, ext)
			name = strings.TrimPrefix(name, "lib")
			break
		}
	}
	return strings.TrimSuffix(name, "_d")
}
