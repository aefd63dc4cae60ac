// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Frame is what a render system draws for one viewport:
// camera transforms, lighting, shadow setup and the list
// of renderables. Frames are rebuilt every time a
// viewport is rendered.
type Frame struct {
	// Viewport rectangle in pixels, origin at the
	// top-left corner of the target.
	X, Y, Width, Height int

	// Size of the target in pixels.
	TargetWidth, TargetHeight int

	Clear      bool
	Background Colour

	View           mgl32.Mat4
	Projection     mgl32.Mat4
	CameraPosition mgl32.Vec3

	Ambient Colour
	Lights  []FrameLight
	Items   []Renderable
	Shadow  ShadowSetup
}

// FrameLight is a light in world space.
type FrameLight struct {
	Type        LightType
	Direction   mgl32.Vec3
	Position    mgl32.Vec3
	Diffuse     Colour
	Specular    Colour
	Range       float32
	CastShadows bool
}

// Renderable is a sub-mesh placed in world space.
type Renderable struct {
	World          mgl32.Mat4
	Mesh           *Mesh
	SubMesh        int
	Material       *Material
	CastShadows    bool
	ReceiveShadows bool
}

// Vertices returns the vertex data of the renderable.
func (r *Renderable) Vertices() *VertexData {
	return r.Mesh.Vertices(r.SubMesh)
}

// ShadowSetup describes the shadow pass of a frame.
// Technique is ShadowNone when the frame has no shadows.
type ShadowSetup struct {
	Technique   ShadowTechnique
	TextureSize int
	Colour      Colour
	// Index into Frame.Lights of the light that casts.
	Light int
	// World-to-clip transform of the shadow camera.
	LightViewProj mgl32.Mat4
}

// Collect builds the frame that vp shows of the scene.
// Only visible objects attached below the root node are
// included.
func (sm *SceneManager) Collect(vp *Viewport) *Frame {
	f := &Frame{
		X:          vp.ActualLeft(),
		Y:          vp.ActualTop(),
		Width:      vp.ActualWidth(),
		Height:     vp.ActualHeight(),
		Clear:      vp.clear,
		Background: vp.background,
		View:       mgl32.Ident4(),
		Projection: mgl32.Ident4(),
		Ambient:    sm.ambient,
	}
	if t := vp.target; t != nil {
		f.TargetWidth, f.TargetHeight = t.Width(), t.Height()
	}
	if cam := vp.camera; cam != nil {
		f.View = cam.ViewMatrix()
		f.Projection = cam.ProjectionMatrix()
		f.CameraPosition = cam.DerivedPosition()
	}
	for _, l := range sm.sortedLights() {
		f.Lights = append(f.Lights, FrameLight{
			Type:        l.typ,
			Direction:   l.DerivedDirection(),
			Position:    l.DerivedPosition(),
			Diffuse:     l.diffuse,
			Specular:    l.specular,
			Range:       l.rng,
			CastShadows: l.CastShadows(),
		})
	}
	var bounds AABB
	for _, e := range sm.sortedEntities() {
		world := e.node.WorldMatrix()
		for i := range e.mesh.SubMeshes {
			m := e.subMaterial(i)
			f.Items = append(f.Items, Renderable{
				World:          world,
				Mesh:           e.mesh,
				SubMesh:        i,
				Material:       m,
				CastShadows:    e.CastShadows(),
				ReceiveShadows: m.ReceiveShadows,
			})
		}
		bounds = bounds.Merge(e.mesh.Bounds.Transform(world))
	}
	f.Shadow = sm.shadowSetup(f, bounds)
	return f
}

// shadowSetup fits an orthographic shadow camera around
// bounds for the first directional light that casts
// shadows. Point lights do not cast texture shadows.
func (sm *SceneManager) shadowSetup(f *Frame, bounds AABB) ShadowSetup {
	if sm.shadow == ShadowNone || bounds.IsNull() {
		return ShadowSetup{}
	}
	li := -1
	for i, l := range f.Lights {
		if l.Type == LightDirectional && l.CastShadows {
			li = i
			break
		}
	}
	if li < 0 {
		return ShadowSetup{}
	}
	center := bounds.Center()
	radius := bounds.Max.Sub(bounds.Min).Len() / 2
	if sm.shadowFar > 0 && radius > sm.shadowFar {
		radius = sm.shadowFar
	}
	if radius <= 0 {
		return ShadowSetup{}
	}
	dir := f.Lights[li].Direction
	up := UnitY
	if math.Abs(float64(dir.Dot(up))) > 0.99 {
		up = UnitZ
	}
	eye := center.Sub(dir.Mul(2 * radius))
	view := mgl32.LookAtV(eye, center, up)
	proj := mgl32.Ortho(-radius, radius, -radius, radius, radius/2, 3.5*radius)
	return ShadowSetup{
		Technique:     sm.shadow,
		TextureSize:   sm.shadowSize,
		Colour:        sm.shadowColour,
		Light:         li,
		LightViewProj: proj.Mul4(view),
	}
}
