// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexData holds de-interleaved vertex attributes.
// Normals and UVs are either nil or hold one entry per
// vertex.
type VertexData struct {
	Count     int
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
}

// OperationType is the primitive topology of a sub-mesh.
type OperationType int

// Operation types.
const (
	PointList     OperationType = 1
	LineList      OperationType = 2
	LineStrip     OperationType = 3
	TriangleList  OperationType = 4
	TriangleStrip OperationType = 5
	TriangleFan   OperationType = 6
)

// SubMesh is a part of a mesh drawn with one material.
type SubMesh struct {
	MaterialName string
	// Vertices is nil when the sub-mesh uses the
	// mesh's shared vertices.
	Vertices  *VertexData
	Indices   []uint32
	Operation OperationType
}

// Mesh is a geometry resource.
type Mesh struct {
	Name      string
	Group     string
	Shared    *VertexData
	SubMeshes []*SubMesh
	Bounds    AABB
	// Name of the skeleton the mesh is linked to, if any.
	// Skeletal animation is not applied.
	Skeleton string
}

// Vertices returns the vertex data used by the i-th
// sub-mesh.
func (m *Mesh) Vertices(i int) *VertexData {
	if v := m.SubMeshes[i].Vertices; v != nil {
		return v
	}
	return m.Shared
}

// computeBounds sets m.Bounds from the vertex positions.
func (m *Mesh) computeBounds() {
	var b AABB
	add := func(v *VertexData) {
		if v == nil {
			return
		}
		for _, p := range v.Positions {
			b = b.Merge(AABB{Min: p, Max: p, valid: true})
		}
	}
	add(m.Shared)
	for _, sm := range m.SubMeshes {
		add(sm.Vertices)
	}
	m.Bounds = b
}

// AABB is an axis-aligned bounding box.
// The zero value is the null box.
type AABB struct {
	Min, Max mgl32.Vec3
	valid    bool
}

// NewAABB creates a box from its corners.
func NewAABB(min, max mgl32.Vec3) AABB {
	return AABB{Min: min, Max: max, valid: true}
}

// IsNull reports whether b contains nothing.
func (b AABB) IsNull() bool { return !b.valid }

// Center returns the center of b.
func (b AABB) Center() mgl32.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

// Merge returns the smallest box containing b and c.
func (b AABB) Merge(c AABB) AABB {
	switch {
	case !c.valid:
		return b
	case !b.valid:
		return c
	}
	for i := range 3 {
		b.Min[i] = min(b.Min[i], c.Min[i])
		b.Max[i] = max(b.Max[i], c.Max[i])
	}
	return b
}

// Transform returns the box containing the corners of b
// transformed by m.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	if !b.valid {
		return b
	}
	var r AABB
	for i := range 8 {
		c := mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&4 != 0 {
			c[2] = b.Max[2]
		}
		p := m.Mul4x1(c.Vec4(1)).Vec3()
		r = r.Merge(AABB{Min: p, Max: p, valid: true})
	}
	return r
}

// MeshManager loads and caches meshes.
type MeshManager struct {
	groups *ResourceGroupManager
	meshes map[string]*Mesh
}

func newMeshManager(groups *ResourceGroupManager) *MeshManager {
	return &MeshManager{groups: groups, meshes: make(map[string]*Mesh)}
}

// ByName returns a loaded or created mesh.
func (mm *MeshManager) ByName(name string) (*Mesh, bool) {
	m, ok := mm.meshes[name]
	return m, ok
}

// Load returns the named mesh, decoding it from the
// resource group on first use. An empty group searches
// every group. The file extension selects the decoder.
func (mm *MeshManager) Load(name, group string) (*Mesh, error) {
	if m, ok := mm.meshes[name]; ok {
		return m, nil
	}
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".mesh", ".gltf", ".glb":
	default:
		return nil, wrapName(ErrUnsupportedMesh, name)
	}
	rc, err := mm.groups.Open(name, group)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var m *Mesh
	if ext == ".mesh" {
		m, err = DecodeMesh(rc)
	} else {
		m, err = decodeGLTF(rc, func(uri string) ([]byte, error) {
			return mm.readRelated(name, uri, group)
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, name)
	}
	m.Name = name
	m.Group = group
	mm.meshes[name] = m
	return m, nil
}

// readRelated reads the file that uri names relative to
// the resource name.
func (mm *MeshManager) readRelated(name, uri, group string) ([]byte, error) {
	rc, err := mm.groups.Open(path.Join(path.Dir(name), uri), group)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Remove forgets the named mesh. Entities using it keep
// their reference.
func (mm *MeshManager) Remove(name string) { delete(mm.meshes, name) }

// Plane is the plane n·p + d = 0.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// PlaneDesc describes a plane mesh.
type PlaneDesc struct {
	Plane         Plane
	Width, Height float32
	XSegments     int
	YSegments     int
	Normals       bool
	TexCoordSets  int
	UTile, VTile  float32
	// Up is the direction of the plane's local Y axis.
	// It must not be parallel to the plane normal.
	Up mgl32.Vec3
}

var errParallelUp = errors.New("engine: plane up vector is parallel to the normal")

// CreatePlane creates a flat, subdivided plane mesh that
// faces along the plane normal, centered at the point of
// the plane closest to the origin.
func (mm *MeshManager) CreatePlane(name, group string, desc *PlaneDesc) (*Mesh, error) {
	if _, dup := mm.meshes[name]; dup {
		return nil, wrapName(ErrDuplicateName, name)
	}
	if desc.Width <= 0 || desc.Height <= 0 || desc.XSegments < 1 || desc.YSegments < 1 {
		return nil, fmt.Errorf("engine: invalid plane %q", name)
	}
	z := desc.Plane.Normal.Normalize()
	y := desc.Up.Normalize()
	x := y.Cross(z)
	if x.Len() < 1e-6 || math.IsNaN(float64(x.Len())) {
		return nil, errParallelUp
	}
	x = x.Normalize()
	y = z.Cross(x)
	rot := mgl32.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), mgl32.Vec4{0, 0, 0, 1})
	t := desc.Plane.Normal.Normalize().Mul(-desc.Plane.D)
	xform := mgl32.Translate3D(t[0], t[1], t[2]).Mul4(rot)

	nx, ny := desc.XSegments, desc.YSegments
	vw := nx + 1
	v := &VertexData{Count: vw * (ny + 1)}
	xSpace := desc.Width / float32(nx)
	ySpace := desc.Height / float32(ny)
	halfW, halfH := desc.Width/2, desc.Height/2
	xTex := desc.UTile / float32(nx)
	yTex := desc.VTile / float32(ny)
	v.Positions = make([]mgl32.Vec3, 0, v.Count)
	if desc.Normals {
		v.Normals = make([]mgl32.Vec3, 0, v.Count)
	}
	if desc.TexCoordSets > 0 {
		v.UVs = make([]mgl32.Vec2, 0, v.Count)
	}
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			p := mgl32.Vec4{float32(i)*xSpace - halfW, float32(j)*ySpace - halfH, 0, 1}
			v.Positions = append(v.Positions, xform.Mul4x1(p).Vec3())
			if desc.Normals {
				v.Normals = append(v.Normals, z)
			}
			if desc.TexCoordSets > 0 {
				v.UVs = append(v.UVs, mgl32.Vec2{float32(i) * xTex, 1 - float32(j)*yTex})
			}
		}
	}
	idx := make([]uint32, 0, nx*ny*6)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a := uint32(j*vw + i)
			b := a + 1
			c := a + uint32(vw) + 1
			d := a + uint32(vw)
			// Counter-clockwise when seen from the
			// side the normal points to.
			idx = append(idx, a, b, c, a, c, d)
		}
	}
	m := &Mesh{
		Name:  name,
		Group: group,
		SubMeshes: []*SubMesh{{
			MaterialName: DefaultMaterial,
			Vertices:     v,
			Indices:      idx,
			Operation:    TriangleList,
		}},
	}
	m.computeBounds()
	mm.meshes[name] = m
	return m, nil
}
