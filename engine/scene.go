// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"fmt"
	"log/slog"
	"sort"
)

// SceneType is the type of scene managers.
type SceneType int

// Scene types.
const (
	// SceneGeneric organises the scene as a plain node
	// tree without spatial partitioning.
	SceneGeneric SceneType = iota
)

// ShadowTechnique selects how shadows are produced.
type ShadowTechnique int

// Shadow techniques.
const (
	ShadowNone ShadowTechnique = iota
	ShadowStencilModulative
	ShadowStencilAdditive
	ShadowTextureModulative
	ShadowTextureAdditive
)

// IsTexture reports whether t renders shadow maps.
func (t ShadowTechnique) IsTexture() bool {
	return t == ShadowTextureModulative || t == ShadowTextureAdditive
}

// IsModulative reports whether t darkens shadowed areas
// by the shadow colour after lighting.
func (t ShadowTechnique) IsModulative() bool {
	return t == ShadowStencilModulative || t == ShadowTextureModulative
}

func (t ShadowTechnique) String() string {
	switch t {
	case ShadowNone:
		return "none"
	case ShadowStencilModulative:
		return "stencil-modulative"
	case ShadowStencilAdditive:
		return "stencil-additive"
	case ShadowTextureModulative:
		return "texture-modulative"
	case ShadowTextureAdditive:
		return "texture-additive"
	}
	return fmt.Sprintf("ShadowTechnique(%d)", int(t))
}

const (
	dflShadowTextureSize = 512
	dflShadowFarDistance = 0
)

var dflShadowColour = Colour{0.25, 0.25, 0.25, 1}

// SceneManager owns a scene graph and the objects placed
// in it. Nodes, cameras, lights and entities are named;
// names are unique per kind within a scene manager.
type SceneManager struct {
	name  string
	owner *Root
	log   *slog.Logger
	root  *SceneNode

	nodes    map[string]*SceneNode
	cameras  map[string]*Camera
	lights   map[string]*Light
	entities map[string]*Entity
	unnamed  int

	ambient      Colour
	shadow       ShadowTechnique
	shadowSize   int
	shadowColour Colour
	shadowFar    float32
}

func newSceneManager(owner *Root, name string) *SceneManager {
	sm := &SceneManager{
		name:         name,
		owner:        owner,
		log:          owner.log.With("sceneManager", name),
		nodes:        make(map[string]*SceneNode),
		cameras:      make(map[string]*Camera),
		lights:       make(map[string]*Light),
		entities:     make(map[string]*Entity),
		ambient:      Black,
		shadowSize:   dflShadowTextureSize,
		shadowColour: dflShadowColour,
		shadowFar:    dflShadowFarDistance,
	}
	sm.root = newSceneNode(sm, "SceneRoot")
	return sm
}

// Name returns the name of sm.
func (sm *SceneManager) Name() string { return sm.name }

// RootSceneNode returns the root of the scene graph.
// Only objects attached to the root or to one of its
// descendants are rendered.
func (sm *SceneManager) RootSceneNode() *SceneNode { return sm.root }

func (sm *SceneManager) genName(prefix string) string {
	sm.unnamed++
	return fmt.Sprintf("%s%d", prefix, sm.unnamed)
}

// CreateSceneNode creates a node that is not part of the
// scene graph until added as a child of a node in it.
// An empty name is replaced by a generated one.
func (sm *SceneManager) CreateSceneNode(name string) (*SceneNode, error) {
	if name == "" {
		name = sm.genName("Unnamed_")
	}
	if _, dup := sm.nodes[name]; dup || name == sm.root.name {
		return nil, wrapName(ErrDuplicateName, name)
	}
	n := newSceneNode(sm, name)
	sm.nodes[name] = n
	return n, nil
}

// SceneNode returns the node with the given name.
func (sm *SceneManager) SceneNode(name string) (*SceneNode, bool) {
	n, ok := sm.nodes[name]
	return n, ok
}

// DestroySceneNode detaches n from the graph and from its
// objects, and forgets it. Its children become orphans.
func (sm *SceneManager) DestroySceneNode(n *SceneNode) {
	if n == sm.root || sm.nodes[n.name] != n {
		return
	}
	for _, c := range n.Children() {
		c.unlink()
	}
	n.unlink()
	n.DetachAllObjects()
	delete(sm.nodes, n.name)
}

// CreateCamera creates a camera with default settings:
// 45° vertical field of view, 4:3 aspect ratio, near
// and far clip distances of 100 and 100000.
func (sm *SceneManager) CreateCamera(name string) (*Camera, error) {
	if name == "" {
		name = sm.genName("Camera")
	}
	if _, dup := sm.cameras[name]; dup {
		return nil, wrapName(ErrDuplicateName, name)
	}
	c := &Camera{
		movable: movable{name: name, mgr: sm},
		fovY:    dflFOVy,
		near:    dflNear,
		far:     dflFar,
		aspect:  dflAspect,
	}
	sm.cameras[name] = c
	sm.log.Debug("camera created", "name", name)
	return c, nil
}

// Camera returns the camera with the given name.
func (sm *SceneManager) Camera(name string) (*Camera, bool) {
	c, ok := sm.cameras[name]
	return c, ok
}

// DestroyCamera detaches and forgets c.
func (sm *SceneManager) DestroyCamera(c *Camera) {
	if sm.cameras[c.name] != c {
		return
	}
	if c.node != nil {
		c.node.DetachObject(c)
	}
	delete(sm.cameras, c.name)
}

// CreateLight creates a white point light.
func (sm *SceneManager) CreateLight(name string) (*Light, error) {
	if name == "" {
		name = sm.genName("Light")
	}
	if _, dup := sm.lights[name]; dup {
		return nil, wrapName(ErrDuplicateName, name)
	}
	l := &Light{
		movable:   movable{name: name, mgr: sm},
		typ:       LightPoint,
		direction: UnitZ.Mul(-1),
		diffuse:   White,
		specular:  Black,
		rng:       100000,
	}
	sm.lights[name] = l
	sm.log.Debug("light created", "name", name)
	return l, nil
}

// Light returns the light with the given name.
func (sm *SceneManager) Light(name string) (*Light, bool) {
	l, ok := sm.lights[name]
	return l, ok
}

// DestroyLight detaches and forgets l.
func (sm *SceneManager) DestroyLight(l *Light) {
	if sm.lights[l.name] != l {
		return
	}
	if l.node != nil {
		l.node.DetachObject(l)
	}
	delete(sm.lights, l.name)
}

// CreateEntity creates an entity of the named mesh. The
// mesh is loaded from the resource groups unless it
// already exists, which requires the groups to be
// initialised; a missing or malformed mesh is an error.
func (sm *SceneManager) CreateEntity(name, mesh string) (*Entity, error) {
	if name == "" {
		name = sm.genName("Entity")
	}
	if _, dup := sm.entities[name]; dup {
		return nil, wrapName(ErrDuplicateName, name)
	}
	m, err := sm.owner.meshes.Load(mesh, "")
	if err != nil {
		return nil, fmt.Errorf("engine: creating entity %q: %w", name, err)
	}
	e := &Entity{
		movable: movable{name: name, mgr: sm},
		mesh:    m,
	}
	e.resolveMaterials()
	sm.entities[name] = e
	sm.log.Debug("entity created", "name", name, "mesh", mesh, "subMeshes", len(m.SubMeshes))
	return e, nil
}

// Entity returns the entity with the given name.
func (sm *SceneManager) Entity(name string) (*Entity, bool) {
	e, ok := sm.entities[name]
	return e, ok
}

// DestroyEntity detaches and forgets e.
func (sm *SceneManager) DestroyEntity(e *Entity) {
	if sm.entities[e.name] != e {
		return
	}
	if e.node != nil {
		e.node.DetachObject(e)
	}
	delete(sm.entities, e.name)
}

// SetAmbientLight sets the ambient light of the scene.
// Default is Black.
func (sm *SceneManager) SetAmbientLight(c Colour) { sm.ambient = c }

// AmbientLight returns the ambient light of the scene.
func (sm *SceneManager) AmbientLight() Colour { return sm.ambient }

// SetShadowTechnique sets the shadow technique.
// Default is ShadowNone.
func (sm *SceneManager) SetShadowTechnique(t ShadowTechnique) {
	sm.shadow = t
	sm.log.Debug("shadow technique", "technique", t)
}

// ShadowTechnique returns the shadow technique.
func (sm *SceneManager) ShadowTechnique() ShadowTechnique { return sm.shadow }

// SetShadowTextureSize sets the width and height of the
// shadow textures. Non-positive values are ignored.
// Default is 512.
func (sm *SceneManager) SetShadowTextureSize(size int) {
	if size > 0 {
		sm.shadowSize = size
	}
}

// ShadowTextureSize returns the size of shadow textures.
func (sm *SceneManager) ShadowTextureSize() int { return sm.shadowSize }

// SetShadowColour sets the colour modulative shadows
// multiply shadowed areas by.
// Default is (0.25, 0.25, 0.25).
func (sm *SceneManager) SetShadowColour(c Colour) { sm.shadowColour = c }

// ShadowColour returns the shadow colour.
func (sm *SceneManager) ShadowColour() Colour { return sm.shadowColour }

// SetShadowFarDistance limits the distance from the
// camera at which shadows are rendered. Zero means no
// limit.
func (sm *SceneManager) SetShadowFarDistance(d float32) {
	if d >= 0 {
		sm.shadowFar = d
	}
}

// ShadowFarDistance returns the shadow far distance.
func (sm *SceneManager) ShadowFarDistance() float32 { return sm.shadowFar }

// ClearScene destroys every object and node but the root.
func (sm *SceneManager) ClearScene() {
	for _, n := range sm.nodes {
		n.DetachAllObjects()
		n.unlink()
		n.sub = nil
	}
	sm.root.DetachAllObjects()
	sm.root.sub = nil
	sm.nodes = make(map[string]*SceneNode)
	sm.cameras = make(map[string]*Camera)
	sm.lights = make(map[string]*Light)
	sm.entities = make(map[string]*Entity)
}

func (sm *SceneManager) clear() {
	sm.ClearScene()
	sm.log.Debug("scene manager destroyed")
}

// sortedLights returns the lights in the scene, ordered
// by name so frames are deterministic.
func (sm *SceneManager) sortedLights() []*Light {
	ls := make([]*Light, 0, len(sm.lights))
	for _, l := range sm.lights {
		if l.IsVisible() && l.inScene() {
			ls = append(ls, l)
		}
	}
	sort.Slice(ls, func(i, j int) bool { return ls[i].name < ls[j].name })
	return ls
}

// sortedEntities returns the visible entities in the
// scene, ordered by name.
func (sm *SceneManager) sortedEntities() []*Entity {
	es := make([]*Entity, 0, len(sm.entities))
	for _, e := range sm.entities {
		if e.IsVisible() && e.inScene() {
			es = append(es, e)
		}
	}
	sort.Slice(es, func(i, j int) bool { return es[i].name < es[j].name })
	return es
}
