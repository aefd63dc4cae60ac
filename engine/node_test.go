// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestScene(t *testing.T) *SceneManager {
	t.Helper()
	r, err := NewRoot(Config{})
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	t.Cleanup(r.Close)
	sm, err := r.CreateSceneManager(SceneGeneric, "test")
	if err != nil {
		t.Fatalf("Root.CreateSceneManager: %v", err)
	}
	return sm
}

func vecNear(a, b mgl32.Vec3) bool { return Near(a, b, 1e-4) }

func TestNodeTree(t *testing.T) {
	sm := newTestScene(t)
	root := sm.RootSceneNode()
	a, err := root.CreateChildSceneNode("a", mgl32.Vec3{})
	if err != nil {
		t.Fatalf("SceneNode.CreateChildSceneNode: %v", err)
	}
	b, _ := root.CreateChildSceneNode("b", mgl32.Vec3{})
	c, _ := a.CreateChildSceneNode("c", mgl32.Vec3{})
	d, _ := sm.CreateSceneNode("d")

	if p := c.Parent(); p != a {
		t.Fatalf("SceneNode.Parent\nhave %v\nwant %v", p, a)
	}
	if p := b.Parent(); p != root {
		t.Fatalf("SceneNode.Parent\nhave %v\nwant %v", p, root)
	}
	if p := d.Parent(); p != nil {
		t.Fatalf("SceneNode.Parent (orphan)\nhave %v\nwant nil", p)
	}
	if _, err := root.CreateChildSceneNode("a", mgl32.Vec3{}); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("SceneNode.CreateChildSceneNode (dup)\nhave %v\nwant %v", err, ErrDuplicateName)
	}

	var names []string
	root.ForEach(func(n *SceneNode) { names = append(names, n.Name()) })
	// Breadth-first, most recent sibling first.
	if want := []string{"b", "a", "c"}; len(names) != 3 || names[0] != want[0] || names[1] != want[1] || names[2] != want[2] {
		t.Fatalf("SceneNode.ForEach\nhave %v\nwant %v", names, want)
	}

	if err := a.AddChild(b); !errors.Is(err, ErrHasParent) {
		t.Fatalf("SceneNode.AddChild (has parent)\nhave %v\nwant %v", err, ErrHasParent)
	}
	if err := root.RemoveChild(c); !errors.Is(err, ErrNotChild) {
		t.Fatalf("SceneNode.RemoveChild (grandchild)\nhave %v\nwant %v", err, ErrNotChild)
	}
	if err := root.RemoveChild(a); err != nil {
		t.Fatalf("SceneNode.RemoveChild: %v", err)
	}
	if err := c.AddChild(a); !errors.Is(err, ErrCycle) {
		t.Fatalf("SceneNode.AddChild (cycle)\nhave %v\nwant %v", err, ErrCycle)
	}
	if err := a.AddChild(a); !errors.Is(err, ErrCycle) {
		t.Fatalf("SceneNode.AddChild (self)\nhave %v\nwant %v", err, ErrCycle)
	}
	// The removed subtree stays intact.
	if p := c.Parent(); p != a {
		t.Fatalf("SceneNode.Parent after RemoveChild\nhave %v\nwant %v", p, a)
	}
	if c.inScene() {
		t.Fatal("SceneNode.inScene: detached subtree reported in scene")
	}
	if err := d.AddChild(a); err != nil {
		t.Fatalf("SceneNode.AddChild: %v", err)
	}
	if err := b.AddChild(d); err != nil {
		t.Fatalf("SceneNode.AddChild: %v", err)
	}
	if !c.inScene() {
		t.Fatal("SceneNode.inScene: reattached subtree not in scene")
	}

	sm.DestroySceneNode(d)
	if _, ok := sm.SceneNode("d"); ok {
		t.Fatal("SceneManager.DestroySceneNode: node still known")
	}
	if a.Parent() != nil || len(b.Children()) != 0 {
		t.Fatal("SceneManager.DestroySceneNode: node still linked")
	}
}

func TestNodeTransform(t *testing.T) {
	sm := newTestScene(t)
	root := sm.RootSceneNode()
	n, _ := root.CreateChildSceneNode("n", mgl32.Vec3{10, 0, 0})
	c, _ := n.CreateChildSceneNode("c", mgl32.Vec3{0, 0, -5})

	if p := c.WorldPosition(); !vecNear(p, mgl32.Vec3{10, 0, -5}) {
		t.Fatalf("SceneNode.WorldPosition\nhave %v\nwant [10 0 -5]", p)
	}
	n.Yaw(math.Pi / 2)
	// -Z rotated 90° about +Y is -X.
	if p := c.WorldPosition(); !vecNear(p, mgl32.Vec3{5, 0, 0}) {
		t.Fatalf("SceneNode.WorldPosition after Yaw\nhave %v\nwant [5 0 0]", p)
	}
	c.Translate(mgl32.Vec3{0, 0, -1}, Local)
	if p := c.Position(); !vecNear(p, mgl32.Vec3{0, 0, -6}) {
		t.Fatalf("SceneNode.Translate (local)\nhave %v\nwant [0 0 -6]", p)
	}
	c.Translate(mgl32.Vec3{1, 0, 0}, World)
	if p := c.WorldPosition(); !vecNear(p, mgl32.Vec3{5, 0, 0}) {
		t.Fatalf("SceneNode.Translate (world)\nhave %v\nwant [5 0 0]", p)
	}
	n.SetScale(mgl32.Vec3{2, 2, 2})
	if p := c.WorldPosition(); !vecNear(p, mgl32.Vec3{}) {
		t.Fatalf("SceneNode.WorldPosition after SetScale\nhave %v\nwant [0 0 0]", p)
	}
	n.SetOrientation(mgl32.QuatIdent())
	n.Pitch(-math.Pi / 6)
	fwd := n.WorldOrientation().Rotate(mgl32.Vec3{0, 0, -1})
	want := mgl32.Vec3{0, -0.5, -float32(math.Sqrt(3)) / 2}
	if !vecNear(fwd, want) {
		t.Fatalf("SceneNode.Pitch\nhave %v\nwant %v", fwd, want)
	}
}

func TestAttachObject(t *testing.T) {
	sm := newTestScene(t)
	a, _ := sm.RootSceneNode().CreateChildSceneNode("a", mgl32.Vec3{})
	b, _ := sm.RootSceneNode().CreateChildSceneNode("b", mgl32.Vec3{})
	cam, _ := sm.CreateCamera("cam")
	if err := a.AttachObject(cam); err != nil {
		t.Fatalf("SceneNode.AttachObject: %v", err)
	}
	if err := b.AttachObject(cam); !errors.Is(err, ErrAttached) {
		t.Fatalf("SceneNode.AttachObject (attached)\nhave %v\nwant %v", err, ErrAttached)
	}
	if cam.ParentSceneNode() != a {
		t.Fatalf("Camera.ParentSceneNode\nhave %v\nwant %v", cam.ParentSceneNode(), a)
	}
	a.DetachObject(cam)
	if cam.ParentSceneNode() != nil || len(a.AttachedObjects()) != 0 {
		t.Fatal("SceneNode.DetachObject: object still attached")
	}
	if err := b.AttachObject(cam); err != nil {
		t.Fatalf("SceneNode.AttachObject: %v", err)
	}
	sm.DestroyCamera(cam)
	if len(b.AttachedObjects()) != 0 {
		t.Fatal("SceneManager.DestroyCamera: camera still attached")
	}
}

func TestCamera(t *testing.T) {
	sm := newTestScene(t)
	cam, err := sm.CreateCamera("PlayerCam")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sm.CreateCamera("PlayerCam"); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("SceneManager.CreateCamera (dup)\nhave %v\nwant %v", err, ErrDuplicateName)
	}
	if cam.NearClipDistance() != 100 || cam.FarClipDistance() != 100000 {
		t.Fatalf("Camera clip defaults\nhave %v, %v\nwant 100, 100000", cam.NearClipDistance(), cam.FarClipDistance())
	}
	cam.SetNearClipDistance(5)
	cam.SetFarClipDistance(1500)
	cam.SetNearClipDistance(-1)
	if cam.NearClipDistance() != 5 || cam.FarClipDistance() != 1500 {
		t.Fatalf("Camera clip\nhave %v, %v\nwant 5, 1500", cam.NearClipDistance(), cam.FarClipDistance())
	}
	n, _ := sm.RootSceneNode().CreateChildSceneNode("CameraNode", mgl32.Vec3{0, 300, 500})
	n.AttachObject(cam)
	if p := cam.DerivedPosition(); !vecNear(p, mgl32.Vec3{0, 300, 500}) {
		t.Fatalf("Camera.DerivedPosition\nhave %v\nwant [0 300 500]", p)
	}
	// The camera position maps to the view space origin.
	v := cam.ViewMatrix().Mul4x1(mgl32.Vec4{0, 300, 500, 1}).Vec3()
	if !vecNear(v, mgl32.Vec3{}) {
		t.Fatalf("Camera.ViewMatrix * position\nhave %v\nwant [0 0 0]", v)
	}
	cam.SetFarClipDistance(0)
	p := cam.ProjectionMatrix()
	if p[11] != -1 || p[10] != -1 {
		t.Fatalf("Camera.ProjectionMatrix (infinite)\nhave %v", p)
	}
}

func TestLight(t *testing.T) {
	sm := newTestScene(t)
	l, err := sm.CreateLight("MainLight")
	if err != nil {
		t.Fatal(err)
	}
	if l.Type() != LightPoint || l.DiffuseColour() != White {
		t.Fatalf("Light defaults\nhave %v, %v\nwant %v, %v", l.Type(), l.DiffuseColour(), LightPoint, White)
	}
	l.SetType(LightDirectional)
	l.SetDirection(mgl32.Vec3{0.55, -0.3, 0.75})
	if d := l.Direction(); math.Abs(float64(d.Len())-1) > 1e-5 {
		t.Fatalf("Light.Direction not normalised: %v", d)
	}
	l.SetDirection(mgl32.Vec3{})
	if d := l.Direction(); d.Len() == 0 {
		t.Fatal("Light.SetDirection: zero vector accepted")
	}
	if l.inScene() {
		t.Fatal("Light.inScene: unattached light reported in scene")
	}
	sm.RootSceneNode().AttachObject(l)
	if !l.inScene() {
		t.Fatal("Light.inScene: light attached to root not in scene")
	}
}

func TestNear(t *testing.T) {
	for _, x := range [...]struct {
		a, b mgl32.Vec3
		eps  float32
		want bool
	}{
		{mgl32.Vec3{4.9999995, 0, 5.9604645e-07}, mgl32.Vec3{5, 0, 0}, 1e-4, true},
		{mgl32.Vec3{-1, 0, 8.742278e-08}, mgl32.Vec3{-1, 0, 0}, 1e-5, true},
		{mgl32.Vec3{0, 0, 1e-3}, mgl32.Vec3{}, 1e-4, false},
		{mgl32.Vec3{300, 0, 0}, mgl32.Vec3{300.1, 0, 0}, 1e-4, false},
	} {
		if have := Near(x.a, x.b, x.eps); have != x.want {
			t.Fatalf("Near(%v, %v, %v)\nhave %t\nwant %t", x.a, x.b, x.eps, have, x.want)
		}
	}
}
