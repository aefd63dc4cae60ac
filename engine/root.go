// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Root owns every engine object created through it.
// Its lifetime spans from NewRoot to Close; closing it
// destroys scene managers, render windows, the render
// system and the installed plugins, in that order.
// A Root is not safe for concurrent use.
type Root struct {
	cfg     Config
	log     *slog.Logger
	logFile *os.File
	saved   map[string]string

	plugins []Plugin
	systems []RenderSystem
	active  RenderSystem
	ready   bool
	closed  bool

	windows []*RenderWindow
	scenes  []*SceneManager

	groups    *ResourceGroupManager
	materials *MaterialManager
	textures  *TextureManager
	meshes    *MeshManager

	frames uint64
}

// Option configures a Root.
type Option func(*Root)

// WithLogger makes the Root log to l instead of the
// package Logger. It is ignored when Config.LogFile
// is set.
func WithLogger(l *slog.Logger) Option {
	return func(r *Root) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRoot creates a Root configured by cfg.
func NewRoot(cfg Config, opts ...Option) (*Root, error) {
	if cfg.PluginDir == "" {
		cfg.PluginDir = DefaultPluginDir
	}
	r := &Root{cfg: cfg, log: Logger()}
	for _, opt := range opts {
		opt(r)
	}
	if cfg.LogFile != "" {
		f, err := os.Create(cfg.LogFile)
		if err != nil {
			return nil, fmt.Errorf("engine: opening log: %w", err)
		}
		r.logFile = f
		r.log = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	r.materials = newMaterialManager(r.log)
	r.groups = newResourceGroupManager(r.log, r.materials)
	r.textures = newTextureManager(r.groups)
	r.meshes = newMeshManager(r.groups)

	if cfg.ConfigFile != "" {
		kv, err := readSettings(cfg.ConfigFile)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.saved = make(map[string]string, len(kv))
		for _, p := range kv {
			r.saved[p[0]] = p[1]
		}
	}
	if cfg.PluginFile != "" {
		if err := r.loadPluginFile(cfg.PluginFile); err != nil {
			r.Close()
			return nil, err
		}
	}
	r.log.Info("root created")
	return r, nil
}

func (r *Root) loadPluginFile(path string) error {
	kv, err := readSettings(path)
	if err != nil {
		return err
	}
	dir := r.cfg.PluginDir
	for _, p := range kv {
		switch p[0] {
		case "PluginFolder":
			dir = p[1]
		case "Plugin":
			if err := r.LoadPlugin(filepath.Join(dir, p[1])); err != nil {
				return err
			}
		}
	}
	return nil
}

// readSettings reads "key=value" lines, skipping blank
// lines and lines starting with '#'.
func readSettings(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	defer f.Close()
	return parseSettings(f, path)
}

func parseSettings(rd io.Reader, name string) ([][2]string, error) {
	var kv [][2]string
	sc := bufio.NewScanner(rd)
	for line := 1; sc.Scan(); line++ {
		s := strings.TrimSpace(sc.Text())
		if s == "" || s[0] == '#' || s[0] == '[' {
			continue
		}
		k, v, ok := strings.Cut(s, "=")
		if !ok {
			return nil, &ScriptError{File: name, Line: line, Msg: "expected key=value"}
		}
		kv = append(kv, [2]string{strings.TrimSpace(k), strings.TrimSpace(v)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("engine: reading %s: %w", name, err)
	}
	return kv, nil
}

// LoadPlugin installs the registered plugin named by
// path. Relative paths are taken relative to the plugin
// directory; only the base name selects the plugin.
// Loading an already loaded plugin does nothing.
func (r *Root) LoadPlugin(path string) error {
	if r.closed {
		return ErrClosed
	}
	name := pluginName(path)
	for _, p := range r.plugins {
		if p.Name() == name {
			return nil
		}
	}
	p := lookupPlugin(name)
	if p == nil {
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.cfg.PluginDir, path)
		}
		return fmt.Errorf("%w: %s", ErrPluginNotFound, path)
	}
	if err := p.Install(r); err != nil {
		return fmt.Errorf("engine: installing plugin %s: %w", name, err)
	}
	r.plugins = append(r.plugins, p)
	r.log.Info("plugin installed", "name", name)
	return nil
}

// InstalledPlugins returns the plugins installed in r,
// in load order.
func (r *Root) InstalledPlugins() []Plugin {
	return append([]Plugin(nil), r.plugins...)
}

// AddRenderSystem makes rs selectable through r.
// Plugins call it from Install.
func (r *Root) AddRenderSystem(rs RenderSystem) {
	r.systems = append(r.systems, rs)
	r.log.Debug("render system available", "name", rs.Name())
}

// RenderSystems returns the render systems available.
func (r *Root) RenderSystems() []RenderSystem {
	return append([]RenderSystem(nil), r.systems...)
}

// RenderSystemByName returns the available render system
// whose name is exactly name.
func (r *Root) RenderSystemByName(name string) (RenderSystem, error) {
	for _, rs := range r.systems {
		if rs.Name() == name {
			return rs, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrRenderSystemNotFound, name)
}

// SetRenderSystem selects the render system used by
// Initialise. rs must be available through r.
func (r *Root) SetRenderSystem(rs RenderSystem) error {
	if r.closed {
		return ErrClosed
	}
	if rs == nil {
		return ErrNoRenderSystem
	}
	if r.ready && rs != r.active {
		return fmt.Errorf("engine: render system already initialised: %s", r.active.Name())
	}
	for _, x := range r.systems {
		if x == rs {
			r.active = rs
			r.log.Info("render system selected", "name", rs.Name())
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrRenderSystemNotFound, rs.Name())
}

// RenderSystem returns the selected render system, or
// nil.
func (r *Root) RenderSystem() RenderSystem { return r.active }

// Initialise initialises the selected render system.
// If no render system was selected, the one named by the
// saved settings is used. When autoCreateWindow is true,
// a default render window is created as well; otherwise
// the engine creates no window of its own.
func (r *Root) Initialise(autoCreateWindow bool) error {
	if r.closed {
		return ErrClosed
	}
	if r.ready {
		return nil
	}
	if r.active == nil {
		name, ok := r.saved["Render System"]
		if !ok {
			return ErrNoRenderSystem
		}
		rs, err := r.RenderSystemByName(name)
		if err != nil {
			return err
		}
		r.active = rs
	}
	if err := r.active.Init(); err != nil {
		return fmt.Errorf("engine: initialising %s: %w", r.active.Name(), err)
	}
	r.ready = true
	r.log.Info("root initialised", "renderSystem", r.active.Name(), "autoWindow", autoCreateWindow)
	if autoCreateWindow {
		if _, err := r.CreateRenderWindow(autoWindowName, autoWindowWidth, autoWindowHeight, false, nil); err != nil {
			return err
		}
	}
	return nil
}

// Initialised reports whether Initialise succeeded.
func (r *Root) Initialised() bool { return r.ready }

// CreateRenderWindow creates a render window through the
// selected render system. See ParseWindowParams for the
// recognised params.
func (r *Root) CreateRenderWindow(name string, width, height int, fullscreen bool, params NameValuePairList) (*RenderWindow, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if !r.ready {
		return nil, ErrNotInitialised
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("engine: invalid window size %dx%d", width, height)
	}
	for _, w := range r.windows {
		if w.name == name {
			return nil, fmt.Errorf("%w: render window %q", ErrDuplicateName, name)
		}
	}
	wp, err := ParseWindowParams(params)
	if err != nil {
		return nil, err
	}
	s, err := r.active.NewWindow(name, width, height, fullscreen, params)
	if err != nil {
		return nil, fmt.Errorf("engine: creating render window %q: %w", name, err)
	}
	w := &RenderWindow{
		name:       name,
		width:      width,
		height:     height,
		fullscreen: fullscreen,
		params:     wp,
		surface:    s,
		visible:    true,
	}
	r.windows = append(r.windows, w)
	r.log.Info("render window created", "name", name, "width", width, "height", height,
		"fsaa", wp.FSAA, "vsync", wp.VSync, "parent", wp.ParentWindow)
	return w, nil
}

// RenderWindows returns the render windows of r.
func (r *Root) RenderWindows() []*RenderWindow {
	return append([]*RenderWindow(nil), r.windows...)
}

// DestroyRenderWindow destroys w.
func (r *Root) DestroyRenderWindow(w *RenderWindow) {
	for i, x := range r.windows {
		if x == w {
			r.windows = append(r.windows[:i], r.windows[i+1:]...)
			w.destroy()
			return
		}
	}
}

// CreateSceneManager creates a scene manager. An empty
// name is replaced by a generated one.
func (r *Root) CreateSceneManager(typ SceneType, name string) (*SceneManager, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if typ != SceneGeneric {
		return nil, fmt.Errorf("engine: unsupported scene type %d", typ)
	}
	if name == "" {
		name = fmt.Sprintf("SceneManagerInstance%d", len(r.scenes)+1)
	}
	for _, sm := range r.scenes {
		if sm.name == name {
			return nil, fmt.Errorf("%w: scene manager %q", ErrDuplicateName, name)
		}
	}
	sm := newSceneManager(r, name)
	r.scenes = append(r.scenes, sm)
	r.log.Debug("scene manager created", "name", name)
	return sm, nil
}

// SceneManagers returns the scene managers of r.
func (r *Root) SceneManagers() []*SceneManager {
	return append([]*SceneManager(nil), r.scenes...)
}

// RenderOneFrame renders every viewport of every visible
// render window and presents the windows. It blocks
// until the frames were submitted.
func (r *Root) RenderOneFrame() error {
	if r.closed {
		return ErrClosed
	}
	if !r.ready {
		return ErrNotInitialised
	}
	for _, w := range r.windows {
		if !w.visible {
			continue
		}
		for _, vp := range w.Viewports() {
			cam := vp.camera
			if cam == nil || cam.mgr == nil {
				continue
			}
			if err := r.active.Draw(w.surface, cam.mgr.Collect(vp)); err != nil {
				return fmt.Errorf("engine: rendering %q: %w", w.name, err)
			}
		}
		if err := w.surface.Swap(); err != nil {
			return fmt.Errorf("engine: presenting %q: %w", w.name, err)
		}
	}
	r.frames++
	return nil
}

// FrameCount returns the number of frames rendered.
func (r *Root) FrameCount() uint64 { return r.frames }

// ResourceGroups returns the resource group manager.
func (r *Root) ResourceGroups() *ResourceGroupManager { return r.groups }

// Materials returns the material manager.
func (r *Root) Materials() *MaterialManager { return r.materials }

// Textures returns the texture manager.
func (r *Root) Textures() *TextureManager { return r.textures }

// Meshes returns the mesh manager.
func (r *Root) Meshes() *MeshManager { return r.meshes }

// Log returns the logger of r.
func (r *Root) Log() *slog.Logger { return r.log }

// Close destroys everything r owns. Closing a closed
// Root has no effect.
func (r *Root) Close() {
	if r.closed {
		return
	}
	r.closed = true
	for i := len(r.scenes) - 1; i >= 0; i-- {
		r.scenes[i].clear()
	}
	r.scenes = nil
	for i := len(r.windows) - 1; i >= 0; i-- {
		r.windows[i].destroy()
	}
	r.windows = nil
	if r.ready {
		r.active.Shutdown()
		r.ready = false
	}
	r.active = nil
	for i := len(r.plugins) - 1; i >= 0; i-- {
		r.plugins[i].Uninstall(r)
		r.log.Info("plugin uninstalled", "name", r.plugins[i].Name())
	}
	r.plugins = nil
	r.systems = nil
	r.groups.close()
	r.log.Info("root closed", "frames", r.frames)
	if r.logFile != nil {
		r.logFile.Close()
		r.logFile = nil
	}
}
