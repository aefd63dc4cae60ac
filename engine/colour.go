// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Colour is a linear RGBA colour.
type Colour struct {
	R, G, B, A float32
}

// Common colours.
var (
	White = Colour{1, 1, 1, 1}
	Black = Colour{0, 0, 0, 1}
	Red   = Colour{1, 0, 0, 1}
)

// RGB creates an opaque colour.
func RGB(r, g, b float32) Colour { return Colour{r, g, b, 1} }

// Vec3 returns the RGB components of c.
func (c Colour) Vec3() mgl32.Vec3 { return mgl32.Vec3{c.R, c.G, c.B} }

// Vec4 returns the RGBA components of c.
func (c Colour) Vec4() mgl32.Vec4 { return mgl32.Vec4{c.R, c.G, c.B, c.A} }
