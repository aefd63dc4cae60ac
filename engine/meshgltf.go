// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/frostogre/frost/gltf"
)

// gltfOperations maps glTF primitive modes to operation
// types. LINE_LOOP has no equivalent.
var gltfOperations = [...]OperationType{
	gltf.POINTS:         PointList,
	gltf.LINES:          LineList,
	gltf.LINE_LOOP:      0,
	gltf.LINE_STRIP:     LineStrip,
	gltf.TRIANGLES:      TriangleList,
	gltf.TRIANGLE_STRIP: TriangleStrip,
	gltf.TRIANGLE_FAN:   TriangleFan,
}

// decodeGLTF decodes every mesh of a glTF asset into one
// Mesh, with a sub-mesh per primitive. Node transforms
// are not applied. open reads external buffers.
func decodeGLTF(rd io.Reader, open func(uri string) ([]byte, error)) (*Mesh, error) {
	f, bin, err := gltf.Decode(rd)
	if err != nil {
		return nil, err
	}
	bufs, err := f.LoadBuffers(bin, open)
	if err != nil {
		return nil, err
	}
	m := &Mesh{}
	for i := range f.Meshes {
		for j := range f.Meshes[i].Primitives {
			sm, err := gltfSubMesh(f, &f.Meshes[i].Primitives[j], bufs)
			if err != nil {
				return nil, fmt.Errorf("%w (mesh %d, primitive %d)", err, i, j)
			}
			m.SubMeshes = append(m.SubMeshes, sm)
		}
	}
	if len(m.SubMeshes) == 0 {
		return nil, errMeshNoVertices
	}
	m.computeBounds()
	return m, nil
}

func gltfSubMesh(f *gltf.GLTF, p *gltf.Primitive, bufs [][]byte) (*SubMesh, error) {
	op := gltfOperations[p.PrimitiveMode()]
	if op == 0 {
		return nil, fmt.Errorf("engine: unsupported glTF primitive mode %d", p.PrimitiveMode())
	}
	pos, err := gltfVec3(f, p.Attributes[gltf.POSITION], bufs)
	if err != nil {
		return nil, err
	}
	v := &VertexData{Count: len(pos), Positions: pos}
	if a, ok := p.Attributes[gltf.NORMAL]; ok {
		if v.Normals, err = gltfVec3(f, a, bufs); err != nil {
			return nil, err
		}
	}
	if a, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		d, n, err := f.Floats(a, bufs)
		if err != nil {
			return nil, err
		}
		if n != 2 {
			return nil, fmt.Errorf("engine: glTF TEXCOORD_0 has %d components", n)
		}
		v.UVs = make([]mgl32.Vec2, len(d)/2)
		for i := range v.UVs {
			v.UVs[i] = mgl32.Vec2{d[2*i], d[2*i+1]}
		}
	}
	if len(v.Normals) != 0 && len(v.Normals) != v.Count || len(v.UVs) != 0 && len(v.UVs) != v.Count {
		return nil, fmt.Errorf("engine: glTF attribute counts differ")
	}
	sm := &SubMesh{Vertices: v, Operation: op}
	if p.Material != nil {
		sm.MaterialName = f.Materials[*p.Material].Name
	}
	if p.Indices != nil {
		if sm.Indices, err = f.Indices(*p.Indices, bufs); err != nil {
			return nil, err
		}
		for _, x := range sm.Indices {
			if int(x) >= v.Count {
				return nil, fmt.Errorf("engine: glTF index %d out of range", x)
			}
		}
	}
	return sm, nil
}

func gltfVec3(f *gltf.GLTF, a int64, bufs [][]byte) ([]mgl32.Vec3, error) {
	d, n, err := f.Floats(a, bufs)
	if err != nil {
		return nil, err
	}
	if n != 3 {
		return nil, fmt.Errorf("engine: glTF accessor %d has %d components, want 3", a, n)
	}
	v := make([]mgl32.Vec3, len(d)/3)
	for i := range v {
		v[i] = mgl32.Vec3{d[3*i], d[3*i+1], d[3*i+2]}
	}
	return v, nil
}
