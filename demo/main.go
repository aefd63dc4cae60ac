// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package demo

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/frostogre/frost/wsi"
)

// Exit codes returned by Main.
const (
	ExitOK     = 0
	ExitWindow = 1
	ExitFatal  = 2
)

// Deps are the outside systems that Main uses.
// Nil fields select the real ones.
type Deps struct {
	// OpenWindowSystem opens the window system.
	// Default is wsi.Open.
	OpenWindowSystem func() (wsi.System, error)

	// Stdout receives the window creation failure
	// message. Default is os.Stdout.
	Stdout io.Writer

	// Log receives the demo and engine logs.
	// Default is engine.Logger().
	Log *slog.Logger
}

// Main runs the demo once and returns the process exit
// code. Whatever was created is torn down before it
// returns, whichever way the run ends.
func Main(cfg Config, deps Deps) int {
	open := deps.OpenWindowSystem
	if open == nil {
		open = wsi.Open
	}
	stdout := deps.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	app := NewApp(cfg, deps.Log)
	defer app.Close()

	if err := app.OpenWindow(open); err != nil {
		fmt.Fprintln(stdout, err)
		return ExitWindow
	}
	if err := app.Bootstrap(); err != nil {
		var uerr *wsi.UnsupportedError
		if errors.As(err, &uerr) {
			app.log.Error("unexpected window system", "subsystem", uerr.Subsystem)
		} else {
			app.log.Error("engine bootstrap failed", "err", err)
		}
		return ExitFatal
	}
	if err := app.SetupScene(); err != nil {
		app.log.Error("scene setup failed", "scene", cfg.Scene, "err", err)
		return ExitFatal
	}
	if _, err := app.Run(); err != nil {
		app.log.Error("rendering failed", "err", err)
		return ExitFatal
	}
	return ExitOK
}
