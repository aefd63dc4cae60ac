// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package demo

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/frostogre/frost/engine"
	"github.com/frostogre/frost/wsi"
)

// WindowError means that the OS window could not be
// created. No engine state exists when it is returned.
type WindowError struct {
	Err error
}

func (e *WindowError) Error() string { return "Could not create window: " + e.Err.Error() }

func (e *WindowError) Unwrap() error { return e.Err }

// ErrNotBootstrapped means that an App method ran before
// Bootstrap succeeded.
var ErrNotBootstrapped = errors.New("demo: engine not bootstrapped")

// App owns the window system, the OS window and the
// engine root of one demo run.
type App struct {
	cfg Config
	log *slog.Logger

	sys wsi.System
	win wsi.Window

	root   *engine.Root
	target *engine.RenderWindow
	scene  *engine.SceneManager
}

// NewApp creates an App configured by cfg. A nil log
// uses engine.Logger.
func NewApp(cfg Config, log *slog.Logger) *App {
	if log == nil {
		log = engine.Logger()
	}
	return &App{cfg: cfg, log: log}
}

// OpenWindow opens the window system and creates the OS
// window. Any failure is a *WindowError.
func (a *App) OpenWindow(open func() (wsi.System, error)) error {
	sys, err := open()
	if err != nil {
		return &WindowError{err}
	}
	a.sys = sys
	win, err := sys.NewWindow(a.cfg.Width, a.cfg.Height, a.cfg.Title)
	if err != nil {
		return &WindowError{err}
	}
	a.win = win
	a.log.Info("window created", "title", a.cfg.Title, "width", a.cfg.Width,
		"height", a.cfg.Height, "platform", sys.Platform())
	return nil
}

// Bootstrap creates the engine root and binds a render
// window to the OS window. The engine creates no window
// of its own.
func (a *App) Bootstrap() error {
	if a.win == nil {
		return errors.New("demo: no window")
	}
	h, err := a.win.Handle()
	if err != nil {
		return err
	}
	root, err := engine.NewRoot(engine.Config{
		PluginDir: a.cfg.PluginDir,
		LogFile:   a.cfg.LogFile,
	}, engine.WithLogger(a.log))
	if err != nil {
		return err
	}
	a.root = root
	for _, p := range a.cfg.Plugins {
		if err := root.LoadPlugin(p); err != nil {
			return err
		}
	}
	rs, err := root.RenderSystemByName(a.cfg.RenderSystem)
	if err != nil {
		return err
	}
	if err := root.SetRenderSystem(rs); err != nil {
		return err
	}
	if err := root.Initialise(false); err != nil {
		return err
	}
	params := engine.NameValuePairList{
		engine.ParamTitle:        a.cfg.Title,
		engine.ParamFSAA:         strconv.Itoa(a.cfg.FSAA),
		engine.ParamVSync:        strconv.FormatBool(a.cfg.VSync),
		engine.ParamParentWindow: h.String(),
	}
	w, err := root.CreateRenderWindow(a.cfg.Title, a.cfg.Width, a.cfg.Height, false, params)
	if err != nil {
		return err
	}
	w.SetVisible(true)
	a.target = w
	return nil
}

// SetupScene builds the configured scene.
func (a *App) SetupScene() error {
	if a.target == nil {
		return ErrNotBootstrapped
	}
	switch a.cfg.Scene {
	case SceneFull:
		return a.setupFull()
	case SceneMinimal:
		return a.setupMinimal()
	}
	return fmt.Errorf("demo: unknown scene %v", a.cfg.Scene)
}

// Run renders until the window system reports a quit.
func (a *App) Run() (frames int, err error) {
	if a.target == nil {
		return 0, ErrNotBootstrapped
	}
	l := &Loop{Renderer: a.root, Poller: a.sys}
	frames, err = l.Run()
	a.log.Info("render loop stopped", "frames", frames, "err", err)
	return
}

// Root returns the engine root, or nil.
func (a *App) Root() *engine.Root { return a.root }

// SceneManager returns the scene manager created by
// SetupScene, or nil.
func (a *App) SceneManager() *engine.SceneManager { return a.scene }

// Close releases the engine root, then destroys the OS
// window and quits the window system. The root goes
// first since its render window borrows the OS window.
// Close can be called at any point and more than once.
func (a *App) Close() {
	if a.root != nil {
		a.root.Close()
		a.root = nil
		a.target = nil
		a.scene = nil
	}
	if a.win != nil {
		if err := a.win.Close(); err != nil {
			a.log.Warn("cannot close window", "err", err)
		}
		a.win = nil
	}
	if a.sys != nil {
		a.sys.Quit()
		a.sys = nil
	}
}
