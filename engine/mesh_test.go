// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// quadMesh returns a unit quad in the XZ plane, facing +Y,
// drawn by two sub-meshes: one using shared vertices and
// one with its own.
func quadMesh() *Mesh {
	shared := &VertexData{
		Count:     4,
		Positions: []mgl32.Vec3{{-1, 0, 1}, {1, 0, 1}, {1, 0, -1}, {-1, 0, -1}},
		Normals:   []mgl32.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		UVs:       []mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}},
	}
	own := &VertexData{
		Count:     3,
		Positions: []mgl32.Vec3{{0, 2, 0}, {1, 2, 0}, {0, 3, 0}},
	}
	return &Mesh{
		Shared: shared,
		SubMeshes: []*SubMesh{
			{MaterialName: "Quad/Top", Indices: []uint32{0, 1, 2, 0, 2, 3}, Operation: TriangleList},
			{MaterialName: "Quad/Tri", Vertices: own, Indices: []uint32{0, 1, 2}, Operation: TriangleList},
		},
		Skeleton: "quad.skeleton",
	}
}

// writeMesh encodes m into dir/name.
func writeMesh(t *testing.T, dir, name string, m *Mesh) {
	t.Helper()
	var buf bytes.Buffer
	if err := EncodeMesh(&buf, m); err != nil {
		t.Fatalf("EncodeMesh: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMeshCodec(t *testing.T) {
	m := quadMesh()
	var buf bytes.Buffer
	if err := EncodeMesh(&buf, m); err != nil {
		t.Fatalf("EncodeMesh: %v", err)
	}
	d, err := DecodeMesh(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeMesh: %v", err)
	}
	if !reflect.DeepEqual(d.Shared, m.Shared) {
		t.Fatalf("DecodeMesh: Shared\nhave %+v\nwant %+v", d.Shared, m.Shared)
	}
	if len(d.SubMeshes) != 2 {
		t.Fatalf("DecodeMesh: len(SubMeshes)\nhave %d\nwant 2", len(d.SubMeshes))
	}
	for i, sm := range d.SubMeshes {
		want := m.SubMeshes[i]
		if sm.MaterialName != want.MaterialName || sm.Operation != want.Operation ||
			!reflect.DeepEqual(sm.Indices, want.Indices) || !reflect.DeepEqual(sm.Vertices, want.Vertices) {
			t.Fatalf("DecodeMesh: SubMeshes[%d]\nhave %+v\nwant %+v", i, sm, want)
		}
	}
	if d.Skeleton != m.Skeleton {
		t.Fatalf("DecodeMesh: Skeleton\nhave %q\nwant %q", d.Skeleton, m.Skeleton)
	}
	want := NewAABB(mgl32.Vec3{-1, 0, -1}, mgl32.Vec3{1, 3, 1})
	if d.Bounds != want {
		t.Fatalf("DecodeMesh: Bounds\nhave %+v\nwant %+v", d.Bounds, want)
	}
	if v := d.Vertices(1); v != d.SubMeshes[1].Vertices {
		t.Fatal("Mesh.Vertices: dedicated geometry not used")
	}
	if v := d.Vertices(0); v != d.Shared {
		t.Fatal("Mesh.Vertices: shared geometry not used")
	}
}

func TestMeshCodecWideIndices(t *testing.T) {
	const n = 70000
	v := &VertexData{Count: n, Positions: make([]mgl32.Vec3, n)}
	for i := range v.Positions {
		v.Positions[i] = mgl32.Vec3{float32(i), 0, 0}
	}
	m := &Mesh{SubMeshes: []*SubMesh{{
		MaterialName: "Wide",
		Vertices:     v,
		Indices:      []uint32{0, n / 2, n - 1},
		Operation:    TriangleList,
	}}}
	var buf bytes.Buffer
	if err := EncodeMesh(&buf, m); err != nil {
		t.Fatal(err)
	}
	d, err := DecodeMesh(&buf)
	if err != nil {
		t.Fatalf("DecodeMesh: %v", err)
	}
	if x := d.SubMeshes[0].Indices; !reflect.DeepEqual(x, m.SubMeshes[0].Indices) {
		t.Fatalf("DecodeMesh: Indices\nhave %v\nwant %v", x, m.SubMeshes[0].Indices)
	}
	if b := d.Bounds; b.Max[0] != n-1 {
		t.Fatalf("DecodeMesh: Bounds.Max\nhave %v\nwant [%d 0 0]", b.Max, n-1)
	}
}

func TestDecodeMeshErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeMesh(&buf, quadMesh()); err != nil {
		t.Fatal(err)
	}
	good := buf.Bytes()

	bad := append([]byte(nil), good...)
	bad[0] = 0xff
	trunc := good[:len(good)-7]
	version := append([]byte{0x00, 0x10}, "[Other]\n"...)
	empty := append([]byte{0x00, 0x10}, meshVersion+"\n"...)

	var oob bytes.Buffer
	m := quadMesh()
	m.SubMeshes[1].Indices = []uint32{0, 1, 3}
	if err := EncodeMesh(&oob, m); err != nil {
		t.Fatal(err)
	}

	for _, x := range [...]struct {
		name string
		data []byte
	}{
		{"no header", nil},
		{"bad header", bad},
		{"truncated", trunc},
		{"version", version},
		{"no mesh", empty},
		{"index out of range", oob.Bytes()},
	} {
		if _, err := DecodeMesh(bytes.NewReader(x.data)); !errors.Is(err, ErrBadMesh) {
			t.Fatalf("DecodeMesh (%s)\nhave %v\nwant %v", x.name, err, ErrBadMesh)
		}
	}

	if err := EncodeMesh(&buf, &Mesh{SubMeshes: []*SubMesh{{}}}); err != errMeshNoVertices {
		t.Fatalf("EncodeMesh (no vertices)\nhave %v\nwant %v", err, errMeshNoVertices)
	}
}

func TestAABB(t *testing.T) {
	var b AABB
	if !b.IsNull() {
		t.Fatal("AABB: zero value is not null")
	}
	c := NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	if x := b.Merge(c); x != c {
		t.Fatalf("AABB.Merge (null)\nhave %+v\nwant %+v", x, c)
	}
	if x := c.Merge(b); x != c {
		t.Fatalf("AABB.Merge (with null)\nhave %+v\nwant %+v", x, c)
	}
	d := NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{3, 2, 1})
	want := NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{3, 2, 1})
	if x := c.Merge(d); x != want {
		t.Fatalf("AABB.Merge\nhave %+v\nwant %+v", x, want)
	}
	m := mgl32.Translate3D(10, 0, 0).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(90)))
	x := d.Transform(m)
	want = NewAABB(mgl32.Vec3{10, 0, -3}, mgl32.Vec3{11, 2, 0})
	if !vecNear(x.Min, want.Min) || !vecNear(x.Max, want.Max) {
		t.Fatalf("AABB.Transform\nhave %+v\nwant %+v", x, want)
	}
	if !b.Transform(m).IsNull() {
		t.Fatal("AABB.Transform: null box became non-null")
	}
	if ctr := d.Center(); ctr != (mgl32.Vec3{1.5, 1, 0.5}) {
		t.Fatalf("AABB.Center\nhave %v\nwant [1.5 1 0.5]", ctr)
	}
}

func TestCreatePlane(t *testing.T) {
	r, err := NewRoot(Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	desc := &PlaneDesc{
		Plane:        Plane{Normal: UnitY},
		Width:        500,
		Height:       500,
		XSegments:    32,
		YSegments:    32,
		Normals:      true,
		TexCoordSets: 1,
		UTile:        5,
		VTile:        5,
		Up:           UnitZ,
	}
	m, err := r.Meshes().CreatePlane("ground", DefaultGroup, desc)
	if err != nil {
		t.Fatalf("MeshManager.CreatePlane: %v", err)
	}
	v := m.Vertices(0)
	if v.Count != 33*33 || len(v.Positions) != v.Count || len(v.Normals) != v.Count || len(v.UVs) != v.Count {
		t.Fatalf("MeshManager.CreatePlane: vertex count\nhave %d (%d/%d/%d)\nwant %d",
			v.Count, len(v.Positions), len(v.Normals), len(v.UVs), 33*33)
	}
	if n := len(m.SubMeshes[0].Indices); n != 32*32*6 {
		t.Fatalf("MeshManager.CreatePlane: index count\nhave %d\nwant %d", n, 32*32*6)
	}
	for i, n := range v.Normals {
		if n != UnitY {
			t.Fatalf("MeshManager.CreatePlane: Normals[%d]\nhave %v\nwant %v", i, n, UnitY)
		}
	}
	if !vecNear(m.Bounds.Min, mgl32.Vec3{-250, 0, -250}) || !vecNear(m.Bounds.Max, mgl32.Vec3{250, 0, 250}) {
		t.Fatalf("MeshManager.CreatePlane: Bounds\nhave %+v", m.Bounds)
	}
	if uv := v.UVs[0]; uv != (mgl32.Vec2{0, 1}) {
		t.Fatalf("MeshManager.CreatePlane: UVs[0]\nhave %v\nwant [0 1]", uv)
	}
	if uv := v.UVs[v.Count-1]; !uv.ApproxEqual(mgl32.Vec2{5, -4}) {
		t.Fatalf("MeshManager.CreatePlane: UVs[last]\nhave %v\nwant [5 -4]", uv)
	}
	// Triangles face the plane normal.
	idx := m.SubMeshes[0].Indices
	for i := 0; i < len(idx); i += 3 {
		a, b, c := v.Positions[idx[i]], v.Positions[idx[i+1]], v.Positions[idx[i+2]]
		if n := b.Sub(a).Cross(c.Sub(a)); n.Dot(UnitY) <= 0 {
			t.Fatalf("MeshManager.CreatePlane: triangle %d faces %v", i/3, n)
		}
	}
	if x, ok := r.Meshes().ByName("ground"); !ok || x != m {
		t.Fatal("MeshManager.ByName: plane not found")
	}
	if _, err := r.Meshes().CreatePlane("ground", DefaultGroup, desc); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("MeshManager.CreatePlane (dup)\nhave %v\nwant %v", err, ErrDuplicateName)
	}
	desc.Up = UnitY
	if _, err := r.Meshes().CreatePlane("bad", DefaultGroup, desc); err != errParallelUp {
		t.Fatalf("MeshManager.CreatePlane (parallel up)\nhave %v\nwant %v", err, errParallelUp)
	}
}

func TestMeshLoad(t *testing.T) {
	dir := t.TempDir()
	writeMesh(t, dir, "quad.mesh", quadMesh())
	r, err := NewRoot(Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	mm := r.Meshes()
	if _, err := mm.Load("quad.mesh", ""); !errors.Is(err, ErrNotInitialised) {
		t.Fatalf("MeshManager.Load (not initialised)\nhave %v\nwant %v", err, ErrNotInitialised)
	}
	rg := r.ResourceGroups()
	if err := rg.AddResourceLocation(dir, LocationFileSystem, ""); err != nil {
		t.Fatal(err)
	}
	if err := rg.InitialiseAllResourceGroups(); err != nil {
		t.Fatal(err)
	}
	m, err := mm.Load("quad.mesh", "")
	if err != nil {
		t.Fatalf("MeshManager.Load: %v", err)
	}
	if m.Name != "quad.mesh" || len(m.SubMeshes) != 2 {
		t.Fatalf("MeshManager.Load\nhave %q with %d sub-meshes\nwant %q with 2", m.Name, len(m.SubMeshes), "quad.mesh")
	}
	if x, _ := mm.Load("quad.mesh", DefaultGroup); x != m {
		t.Fatal("MeshManager.Load: mesh not cached")
	}
	if _, err := mm.Load("missing.mesh", ""); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("MeshManager.Load (missing)\nhave %v\nwant %v", err, ErrFileNotFound)
	}
	if _, err := mm.Load("quad.obj", ""); !errors.Is(err, ErrUnsupportedMesh) {
		t.Fatalf("MeshManager.Load (obj)\nhave %v\nwant %v", err, ErrUnsupportedMesh)
	}
	mm.Remove("quad.mesh")
	if _, ok := mm.ByName("quad.mesh"); ok {
		t.Fatal("MeshManager.Remove: mesh still known")
	}
}
