// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package glrs

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/frostogre/frost/engine"
)

// vertexFloats is the number of floats in an interleaved
// vertex: position, normal and texture coordinates.
const vertexFloats = 3 + 3 + 2

// vertexStride is the size of an interleaved vertex in
// bytes.
const vertexStride = vertexFloats * 4

// interleave packs v into the layout the programs read.
// Missing normals point up and missing texture
// coordinates are zero.
func interleave(v *engine.VertexData) []float32 {
	b := make([]float32, 0, v.Count*vertexFloats)
	for i := range v.Count {
		p := v.Positions[i]
		n := mgl32.Vec3{0, 1, 0}
		if i < len(v.Normals) {
			n = v.Normals[i]
		}
		var t mgl32.Vec2
		if i < len(v.UVs) {
			t = v.UVs[i]
		}
		b = append(b, p[0], p[1], p[2], n[0], n[1], n[2], t[0], t[1])
	}
	return b
}

// primitive returns the GL primitive of op.
func primitive(op engine.OperationType) (uint32, error) {
	switch op {
	case engine.PointList:
		return gl.POINTS, nil
	case engine.LineList:
		return gl.LINES, nil
	case engine.LineStrip:
		return gl.LINE_STRIP, nil
	case engine.TriangleList:
		return gl.TRIANGLES, nil
	case engine.TriangleStrip:
		return gl.TRIANGLE_STRIP, nil
	case engine.TriangleFan:
		return gl.TRIANGLE_FAN, nil
	}
	return 0, fmt.Errorf("glrs: invalid operation type %d", op)
}

// gpuVertices is the vertex buffer of a VertexData.
type gpuVertices struct {
	vbo   uint32
	count int
}

func newGPUVertices(v *engine.VertexData) (*gpuVertices, error) {
	if v.Count == 0 || len(v.Positions) < v.Count {
		return nil, errors.New("glrs: vertex data without positions")
	}
	data := interleave(v)
	g := &gpuVertices{count: v.Count}
	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return g, nil
}

func (g *gpuVertices) delete() {
	if g.vbo != 0 {
		gl.DeleteBuffers(1, &g.vbo)
		g.vbo = 0
	}
}

// gpuMesh is the vertex array of a sub-mesh. Sub-meshes
// that share geometry share the vertex buffer.
type gpuMesh struct {
	vao     uint32
	ebo     uint32
	mode    uint32
	count   int32
	indexed bool
}

func newGPUMesh(sm *engine.SubMesh, v *gpuVertices) (*gpuMesh, error) {
	mode, err := primitive(sm.Operation)
	if err != nil {
		return nil, err
	}
	m := &gpuMesh{mode: mode}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, v.vbo)
	gl.EnableVertexAttribArray(attrPosition)
	gl.VertexAttribPointerWithOffset(attrPosition, 3, gl.FLOAT, false, vertexStride, 0)
	gl.EnableVertexAttribArray(attrNormal)
	gl.VertexAttribPointerWithOffset(attrNormal, 3, gl.FLOAT, false, vertexStride, 3*4)
	gl.EnableVertexAttribArray(attrTexCoord)
	gl.VertexAttribPointerWithOffset(attrTexCoord, 2, gl.FLOAT, false, vertexStride, 6*4)
	if len(sm.Indices) > 0 {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(sm.Indices)*4, gl.Ptr(sm.Indices), gl.STATIC_DRAW)
		m.count = int32(len(sm.Indices))
		m.indexed = true
	} else {
		m.count = int32(v.count)
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return m, nil
}

func (m *gpuMesh) draw() {
	gl.BindVertexArray(m.vao)
	if m.indexed {
		gl.DrawElements(m.mode, m.count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(m.mode, 0, m.count)
	}
}

func (m *gpuMesh) delete() {
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
}

// mesh returns the GL objects of the renderable,
// uploading them on first use.
func (rs *RenderSystem) mesh(it *engine.Renderable) (*gpuMesh, error) {
	sm := it.Mesh.SubMeshes[it.SubMesh]
	if m, ok := rs.meshes[sm]; ok {
		return m, nil
	}
	vd := it.Vertices()
	if vd == nil {
		return nil, fmt.Errorf("glrs: mesh %q has no vertex data for sub-mesh %d", it.Mesh.Name, it.SubMesh)
	}
	v, ok := rs.vertices[vd]
	if !ok {
		var err error
		if v, err = newGPUVertices(vd); err != nil {
			return nil, fmt.Errorf("%w (mesh %q)", err, it.Mesh.Name)
		}
		rs.vertices[vd] = v
	}
	m, err := newGPUMesh(sm, v)
	if err != nil {
		return nil, err
	}
	rs.meshes[sm] = m
	return m, nil
}
