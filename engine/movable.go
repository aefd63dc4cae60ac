// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MovableObject is the interface of objects that can be
// attached to a SceneNode: cameras, lights and entities.
// A movable object is placed by the node it is attached
// to, but owned by the scene manager that created it.
type MovableObject interface {
	// Name returns the name of the object.
	Name() string

	// ParentSceneNode returns the node the object is
	// attached to, or nil.
	ParentSceneNode() *SceneNode

	// IsVisible reports whether the object is drawn.
	IsVisible() bool

	base() *movable
}

// movable is embedded by every MovableObject.
type movable struct {
	name   string
	mgr    *SceneManager
	node   *SceneNode
	hidden bool
	noCast bool
}

func (m *movable) Name() string                { return m.name }
func (m *movable) ParentSceneNode() *SceneNode { return m.node }
func (m *movable) IsVisible() bool             { return !m.hidden }
func (m *movable) base() *movable              { return m }

// SetVisible sets whether the object is drawn.
func (m *movable) SetVisible(visible bool) { m.hidden = !visible }

// SetCastShadows sets whether the object casts shadows.
// Default is true.
func (m *movable) SetCastShadows(cast bool) { m.noCast = !cast }

// CastShadows reports whether the object casts shadows.
func (m *movable) CastShadows() bool { return !m.noCast }

// inScene reports whether the object is attached to a
// node reachable from the scene root.
func (m *movable) inScene() bool {
	return m.node != nil && m.node.inScene()
}

// Camera defines a perspective viewpoint.
// A camera looks down the negative Z axis of the node it
// is attached to.
type Camera struct {
	movable
	fovY       float32
	near       float32
	far        float32
	aspect     float32
	autoAspect bool
}

const (
	dflFOVy   = math.Pi / 4
	dflNear   = 100
	dflFar    = 100000
	dflAspect = 4.0 / 3.0
)

// SetFOVy sets the vertical field of view in radians.
// Values outside (0, π) are ignored.
func (c *Camera) SetFOVy(rad float32) {
	if rad > 0 && rad < math.Pi {
		c.fovY = rad
	}
}

// FOVy returns the vertical field of view in radians.
func (c *Camera) FOVy() float32 { return c.fovY }

// SetNearClipDistance sets the near clip plane distance.
// Non-positive values are ignored.
// Default is 100.
func (c *Camera) SetNearClipDistance(d float32) {
	if d > 0 {
		c.near = d
	}
}

// NearClipDistance returns the near clip plane distance.
func (c *Camera) NearClipDistance() float32 { return c.near }

// SetFarClipDistance sets the far clip plane distance.
// Zero means an infinite far plane.
// Default is 100000.
func (c *Camera) SetFarClipDistance(d float32) {
	if d >= 0 {
		c.far = d
	}
}

// FarClipDistance returns the far clip plane distance.
func (c *Camera) FarClipDistance() float32 { return c.far }

// SetAspectRatio sets the width/height ratio.
// Non-positive values are ignored.
func (c *Camera) SetAspectRatio(r float32) {
	if r > 0 && !math.IsInf(float64(r), 0) {
		c.aspect = r
	}
}

// AspectRatio returns the width/height ratio.
func (c *Camera) AspectRatio() float32 { return c.aspect }

// SetAutoAspectRatio makes viewports created for c update
// its aspect ratio to their own.
func (c *Camera) SetAutoAspectRatio(auto bool) { c.autoAspect = auto }

// ViewMatrix returns the world-to-camera transform.
// Node scale does not affect the view.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	if c.node == nil {
		return mgl32.Ident4()
	}
	p := c.node.WorldPosition()
	q := c.node.WorldOrientation().Inverse()
	t := mgl32.Translate3D(-p[0], -p[1], -p[2])
	return q.Mat4().Mul4(t)
}

// ProjectionMatrix returns the camera-to-clip transform.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	if c.far == 0 {
		f := 1 / float32(math.Tan(float64(c.fovY)/2))
		return mgl32.Mat4{
			f / c.aspect, 0, 0, 0,
			0, f, 0, 0,
			0, 0, -1, -1,
			0, 0, -2 * c.near, 0,
		}
	}
	return mgl32.Perspective(c.fovY, c.aspect, c.near, c.far)
}

// DerivedPosition returns the camera position in world
// space.
func (c *Camera) DerivedPosition() mgl32.Vec3 {
	if c.node == nil {
		return mgl32.Vec3{}
	}
	return c.node.WorldPosition()
}

// DerivedDirection returns the world-space direction the
// camera looks at.
func (c *Camera) DerivedDirection() mgl32.Vec3 {
	if c.node == nil {
		return mgl32.Vec3{0, 0, -1}
	}
	return c.node.WorldOrientation().Rotate(mgl32.Vec3{0, 0, -1})
}

// LightType is the type of light sources.
type LightType int

// Light types.
const (
	// Emits in a single direction from infinitely far.
	LightDirectional LightType = iota
	// Emits in all directions from a position.
	LightPoint
)

// Light defines a light source.
type Light struct {
	movable
	typ       LightType
	direction mgl32.Vec3
	position  mgl32.Vec3
	diffuse   Colour
	specular  Colour
	rng       float32
}

// SetType sets the type of l. Default is LightPoint.
func (l *Light) SetType(t LightType) { l.typ = t }

// Type returns the type of l.
func (l *Light) Type() LightType { return l.typ }

// SetDirection sets the direction of l relative to its
// node. d is normalised; the zero vector is ignored.
// Only applies to directional lights.
func (l *Light) SetDirection(d mgl32.Vec3) {
	if d.Len() > 0 {
		l.direction = d.Normalize()
	}
}

// Direction returns the direction of l relative to its
// node.
func (l *Light) Direction() mgl32.Vec3 { return l.direction }

// SetPosition sets the position of l relative to its
// node. Only applies to point lights.
func (l *Light) SetPosition(p mgl32.Vec3) { l.position = p }

// Position returns the position of l relative to its
// node.
func (l *Light) Position() mgl32.Vec3 { return l.position }

// SetDiffuseColour sets the diffuse colour of l.
// Default is White.
func (l *Light) SetDiffuseColour(c Colour) { l.diffuse = c }

// DiffuseColour returns the diffuse colour of l.
func (l *Light) DiffuseColour() Colour { return l.diffuse }

// SetSpecularColour sets the specular colour of l.
// Default is Black.
func (l *Light) SetSpecularColour(c Colour) { l.specular = c }

// SpecularColour returns the specular colour of l.
func (l *Light) SpecularColour() Colour { return l.specular }

// SetRange sets the falloff range of a point light.
// Default is 100000.
func (l *Light) SetRange(r float32) {
	if r > 0 {
		l.rng = r
	}
}

// Range returns the falloff range of l.
func (l *Light) Range() float32 { return l.rng }

// DerivedDirection returns the world-space direction of
// l.
func (l *Light) DerivedDirection() mgl32.Vec3 {
	if l.node == nil {
		return l.direction
	}
	return l.node.WorldOrientation().Rotate(l.direction).Normalize()
}

// DerivedPosition returns the world-space position of l.
func (l *Light) DerivedPosition() mgl32.Vec3 {
	if l.node == nil {
		return l.position
	}
	return l.node.WorldMatrix().Mul4x1(l.position.Vec4(1)).Vec3()
}

// Entity is an instance of a mesh in the scene.
type Entity struct {
	movable
	mesh     *Mesh
	material *Material
	subMats  []*Material
}

// Mesh returns the mesh of e.
func (e *Entity) Mesh() *Mesh { return e.mesh }

// SetMaterialName makes every sub-mesh of e use the named
// material instead of the one the mesh names.
func (e *Entity) SetMaterialName(name string) error {
	m, ok := e.mgr.owner.materials.ByName(name)
	if !ok {
		return wrapName(ErrMaterialNotFound, name)
	}
	e.material = m
	return nil
}

// Material returns the material override of e, or nil.
func (e *Entity) Material() *Material { return e.material }

// subMaterial returns the material used to draw the i-th
// sub-mesh of e.
func (e *Entity) subMaterial(i int) *Material {
	if e.material != nil {
		return e.material
	}
	return e.subMats[i]
}

// resolveMaterials looks up the materials named by the
// mesh. Unknown names fall back to the default material.
func (e *Entity) resolveMaterials() {
	mats := e.mgr.owner.materials
	e.subMats = make([]*Material, len(e.mesh.SubMeshes))
	for i, sm := range e.mesh.SubMeshes {
		m, ok := mats.ByName(sm.MaterialName)
		if !ok {
			e.mgr.owner.log.Warn("material not found, using default",
				"entity", e.name, "material", sm.MaterialName)
			m = mats.Default()
		}
		e.subMats[i] = m
	}
}

// WorldBounds returns the axis-aligned bounds of e in
// world space.
func (e *Entity) WorldBounds() AABB {
	if e.node == nil {
		return e.mesh.Bounds
	}
	return e.mesh.Bounds.Transform(e.node.WorldMatrix())
}
