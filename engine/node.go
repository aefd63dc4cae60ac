// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// TransformSpace selects the frame a transform is
// relative to.
type TransformSpace int

// Transform spaces.
const (
	// Relative to the node itself.
	Local TransformSpace = iota
	// Relative to the node's parent.
	Parent
	// Relative to the scene root.
	World
)

// Common axes.
var (
	UnitX = mgl32.Vec3{1, 0, 0}
	UnitY = mgl32.Vec3{0, 1, 0}
	UnitZ = mgl32.Vec3{0, 0, 1}
)

// Near reports whether a and b are no farther apart than
// eps. Unlike mgl32's ApproxEqualThreshold, the tolerance
// is absolute even when a component is zero.
func Near(a, b mgl32.Vec3, eps float32) bool { return a.Sub(b).Len() <= eps }

// SceneNode represents a single node in a scene graph.
// Nodes have at most one immediate ancestor and an
// arbitrary number of immediate descendants. A node
// carries a local transform and the movable objects
// attached to it.
type SceneNode struct {
	// Siblings form a doubly linked list. The prev field
	// of the first immediate descendant refers to the
	// immediate ancestor.
	next *SceneNode
	prev *SceneNode
	sub  *SceneNode

	name    string
	mgr     *SceneManager
	pos     mgl32.Vec3
	rot     mgl32.Quat
	scale   mgl32.Vec3
	objects []MovableObject
}

func newSceneNode(mgr *SceneManager, name string) *SceneNode {
	return &SceneNode{
		name:  name,
		mgr:   mgr,
		rot:   mgl32.QuatIdent(),
		scale: mgl32.Vec3{1, 1, 1},
	}
}

// Name returns the name of n.
func (n *SceneNode) Name() string { return n.name }

// Creator returns the scene manager that created n.
func (n *SceneNode) Creator() *SceneManager { return n.mgr }

// Parent returns the immediate ancestor of n, or nil.
func (n *SceneNode) Parent() *SceneNode {
	for c := n; c.prev != nil; c = c.prev {
		if c.prev.sub == c {
			return c.prev
		}
	}
	return nil
}

// isAncestorOf reports whether n is an ancestor of x.
func (n *SceneNode) isAncestorOf(x *SceneNode) bool {
	for p := x.Parent(); p != nil; p = p.Parent() {
		if p == n {
			return true
		}
	}
	return false
}

// AddChild makes sub an immediate descendant of n.
// sub must not have a parent and must not be n or an
// ancestor of n.
func (n *SceneNode) AddChild(sub *SceneNode) error {
	switch {
	case sub.Parent() != nil:
		return fmt.Errorf("%w: %q", ErrHasParent, sub.name)
	case sub == n || sub.isAncestorOf(n):
		return fmt.Errorf("%w: %q", ErrCycle, sub.name)
	}
	n.insert(sub)
	return nil
}

// insert links sub as the first immediate descendant
// of n.
func (n *SceneNode) insert(sub *SceneNode) {
	sub.next = n.sub
	sub.prev = n
	if n.sub != nil {
		n.sub.prev = sub
	}
	n.sub = sub
}

// RemoveChild detaches the immediate descendant sub from
// n. The subtree rooted at sub is kept intact.
func (n *SceneNode) RemoveChild(sub *SceneNode) error {
	if sub.Parent() != n {
		return fmt.Errorf("%w: %q", ErrNotChild, sub.name)
	}
	sub.unlink()
	return nil
}

// unlink removes n from its immediate ancestor.
func (n *SceneNode) unlink() {
	if n.prev == nil {
		return
	}
	if n.prev.sub == n {
		n.prev.sub = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	n.prev = nil
	n.next = nil
}

// CreateChildSceneNode creates a node positioned at pos
// and adds it as immediate descendant of n.
// An empty name is replaced by a generated one.
func (n *SceneNode) CreateChildSceneNode(name string, pos mgl32.Vec3) (*SceneNode, error) {
	sub, err := n.mgr.CreateSceneNode(name)
	if err != nil {
		return nil, err
	}
	sub.pos = pos
	n.insert(sub)
	return sub, nil
}

// Children returns the immediate descendants of n, most
// recently added first.
func (n *SceneNode) Children() []*SceneNode {
	var s []*SceneNode
	for c := n.sub; c != nil; c = c.next {
		s = append(s, c)
	}
	return s
}

// ForEach calls f for each descendant of node n.
// Ancestors are processed first.
// The scene graph must not be changed until this
// method returns.
func (n *SceneNode) ForEach(f func(*SceneNode)) {
	if n.sub == nil {
		return
	}
	que := []*SceneNode{n.sub}
	for len(que) > 0 {
		for nd := que[0]; nd != nil; nd = nd.next {
			f(nd)
			if sub := nd.sub; sub != nil {
				que = append(que, sub)
			}
		}
		que = que[1:]
	}
}

// SetPosition sets the position of n relative to its
// parent.
func (n *SceneNode) SetPosition(p mgl32.Vec3) { n.pos = p }

// Position returns the position of n relative to its
// parent.
func (n *SceneNode) Position() mgl32.Vec3 { return n.pos }

// Translate moves n by d, expressed in ts.
func (n *SceneNode) Translate(d mgl32.Vec3, ts TransformSpace) {
	switch ts {
	case Local:
		d = n.rot.Rotate(d)
	case World:
		if p := n.Parent(); p != nil {
			d = p.WorldOrientation().Inverse().Rotate(d)
			s := p.worldScale()
			d = mgl32.Vec3{d[0] / s[0], d[1] / s[1], d[2] / s[2]}
		}
	}
	n.pos = n.pos.Add(d)
}

// SetOrientation sets the orientation of n relative to
// its parent.
func (n *SceneNode) SetOrientation(q mgl32.Quat) { n.rot = q.Normalize() }

// Orientation returns the orientation of n relative to
// its parent.
func (n *SceneNode) Orientation() mgl32.Quat { return n.rot }

// Rotate rotates n by angle radians about axis, which
// is expressed in ts.
func (n *SceneNode) Rotate(axis mgl32.Vec3, angle float32, ts TransformSpace) {
	q := mgl32.QuatRotate(angle, axis.Normalize())
	switch ts {
	case Local:
		n.rot = n.rot.Mul(q)
	case Parent:
		n.rot = q.Mul(n.rot)
	case World:
		w := n.WorldOrientation()
		n.rot = n.rot.Mul(w.Inverse()).Mul(q).Mul(w)
	}
	n.rot = n.rot.Normalize()
}

// Yaw rotates n about its local Y axis.
func (n *SceneNode) Yaw(angle float32) { n.Rotate(UnitY, angle, Local) }

// Pitch rotates n about its local X axis.
func (n *SceneNode) Pitch(angle float32) { n.Rotate(UnitX, angle, Local) }

// Roll rotates n about its local Z axis.
func (n *SceneNode) Roll(angle float32) { n.Rotate(UnitZ, angle, Local) }

// SetScale sets the scale of n relative to its parent.
func (n *SceneNode) SetScale(s mgl32.Vec3) { n.scale = s }

// Scale returns the scale of n relative to its parent.
func (n *SceneNode) Scale() mgl32.Vec3 { return n.scale }

// LocalMatrix returns the transform of n relative to its
// parent (translation * rotation * scale).
func (n *SceneNode) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.pos[0], n.pos[1], n.pos[2])
	s := mgl32.Scale3D(n.scale[0], n.scale[1], n.scale[2])
	return t.Mul4(n.rot.Mat4()).Mul4(s)
}

// WorldMatrix returns the transform of n relative to the
// scene root. It is derived on every call.
func (n *SceneNode) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.Parent(); p != nil; p = p.Parent() {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition returns the position of n relative to the
// scene root.
func (n *SceneNode) WorldPosition() mgl32.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}

// WorldOrientation returns the orientation of n relative
// to the scene root.
func (n *SceneNode) WorldOrientation() mgl32.Quat {
	q := n.rot
	for p := n.Parent(); p != nil; p = p.Parent() {
		q = p.rot.Mul(q)
	}
	return q
}

func (n *SceneNode) worldScale() mgl32.Vec3 {
	s := n.scale
	for p := n.Parent(); p != nil; p = p.Parent() {
		s = mgl32.Vec3{s[0] * p.scale[0], s[1] * p.scale[1], s[2] * p.scale[2]}
	}
	return s
}

// AttachObject attaches obj to n. An object can be
// attached to one node at a time.
func (n *SceneNode) AttachObject(obj MovableObject) error {
	if obj.ParentSceneNode() != nil {
		return fmt.Errorf("%w: %q", ErrAttached, obj.Name())
	}
	obj.base().node = n
	n.objects = append(n.objects, obj)
	return nil
}

// DetachObject detaches obj from n.
func (n *SceneNode) DetachObject(obj MovableObject) {
	for i, x := range n.objects {
		if x == obj {
			n.objects = append(n.objects[:i], n.objects[i+1:]...)
			obj.base().node = nil
			return
		}
	}
}

// DetachAllObjects detaches every object attached to n.
func (n *SceneNode) DetachAllObjects() {
	for _, obj := range n.objects {
		obj.base().node = nil
	}
	n.objects = nil
}

// AttachedObjects returns the objects attached to n.
func (n *SceneNode) AttachedObjects() []MovableObject {
	return append([]MovableObject(nil), n.objects...)
}

// inScene reports whether n is the scene root or one of
// its descendants.
func (n *SceneNode) inScene() bool {
	root := n.mgr.root
	return n == root || root.isAncestorOf(n)
}
