// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Command frost-ogre opens a window, renders a small
// shadowed scene into it with the OpenGL render system
// and exits when the window is closed.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	_ "github.com/frostogre/frost/driver/glrs"

	"github.com/frostogre/frost/demo"
	"github.com/frostogre/frost/engine"
)

// SDL and GL calls must come from the main thread.
func init() { runtime.LockOSThread() }

func main() {
	cfg := demo.DefaultConfig()
	var (
		scene   = flag.String("scene", cfg.Scene.String(), "scene to build (full or minimal)")
		fsaa    = flag.Int("fsaa", cfg.FSAA, "anti-aliasing level, 0 disables it")
		vsync   = flag.Bool("vsync", cfg.VSync, "wait for vertical sync")
		plugins = flag.String("plugin-dir", cfg.PluginDir, "plugin directory")
		assets  = flag.String("assets", strings.Join(cfg.AssetRoots, ","), "comma-separated asset directories")
		logFile = flag.String("log", "", "write the engine log to this file")
		verbose = flag.Bool("v", false, "log debug messages")
	)
	flag.Parse()

	s, err := demo.ParseScene(*scene)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(demo.ExitFatal)
	}
	cfg.Scene = s
	cfg.FSAA = *fsaa
	cfg.VSync = *vsync
	cfg.PluginDir = *plugins
	cfg.AssetRoots = nil
	for _, a := range strings.Split(*assets, ",") {
		if a = strings.TrimSpace(a); a != "" {
			cfg.AssetRoots = append(cfg.AssetRoots, a)
		}
	}
	cfg.LogFile = *logFile

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	engine.SetLogger(log)

	os.Exit(demo.Main(cfg, demo.Deps{Log: log}))
}
