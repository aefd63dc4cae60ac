// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package gltf decodes the geometry of glTF 2.0 assets.
//
// Only the objects needed to rebuild meshes are kept:
// buffers, buffer views, accessors, meshes and material
// names. Everything else in the file is ignored.
package gltf

import (
	"bytes"
	"encoding/json"
	"io"
)

// Root glTF object.
type GLTF struct {
	ExtensionsRequired []string `json:"extensionsRequired,omitempty"`
	Asset              struct {
		Generator  string `json:"generator,omitempty"`
		Version    string `json:"version"`
		MinVersion string `json:"minVersion,omitempty"`
	} `json:"asset"`
	Accessors   []Accessor   `json:"accessors,omitempty"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Meshes      []Mesh       `json:"meshes,omitempty"`
}

// glTF.accessors' element.
type Accessor struct {
	BufferView    *int64    `json:"bufferView,omitempty"`
	ByteOffset    int64     `json:"byteOffset,omitempty"` // Default is 0.
	ComponentType int64     `json:"componentType"`
	Normalized    bool      `json:"normalized,omitempty"`
	Count         int64     `json:"count"`
	Type          string    `json:"type"`
	Max           []float32 `json:"max,omitempty"`
	Min           []float32 `json:"min,omitempty"`
	Sparse        any       `json:"sparse,omitempty"`
	Name          string    `json:"name,omitempty"`
}

// accessor.*.componentType values.
const (
	BYTE           = 5120
	UNSIGNED_BYTE  = 5121
	SHORT          = 5122
	UNSIGNED_SHORT = 5123
	UNSIGNED_INT   = 5125
	FLOAT          = 5126
)

// accessor.type values.
const (
	SCALAR = "SCALAR"
	VEC2   = "VEC2"
	VEC3   = "VEC3"
	VEC4   = "VEC4"
	MAT2   = "MAT2"
	MAT3   = "MAT3"
	MAT4   = "MAT4"
)

// glTF.buffers' element.
type Buffer struct {
	URI        string `json:"uri,omitempty"` // Empty for the GLB binary chunk.
	ByteLength int64  `json:"byteLength"`
	Name       string `json:"name,omitempty"`
}

// glTF.bufferViews' element.
type BufferView struct {
	Buffer     int64  `json:"buffer"`
	ByteOffset int64  `json:"byteOffset,omitempty"` // Default is 0.
	ByteLength int64  `json:"byteLength"`
	ByteStride int64  `json:"byteStride,omitempty"` // 0 for tightly packed.
	Target     int64  `json:"target,omitempty"`     // 0 for no hint.
	Name       string `json:"name,omitempty"`
}

// bufferView.target values.
const (
	ARRAY_BUFFER = iota + 34962
	ELEMENT_ARRAY_BUFFER
)

// glTF.materials' element.
// Only the name and the face culling mode are used.
type Material struct {
	DoubleSided bool   `json:"doubleSided,omitempty"` // Default is false.
	Name        string `json:"name,omitempty"`
}

// glTF.meshes' element.
type Mesh struct {
	Primitives []Primitive `json:"primitives"`
	Name       string      `json:"name,omitempty"`
}

// mesh.primitives' element.
type Primitive struct {
	Attributes map[string]int64 `json:"attributes"`
	Indices    *int64           `json:"indices,omitempty"`
	Material   *int64           `json:"material,omitempty"`
	Mode       *int64           `json:"mode,omitempty"` // Default is 4.
}

// mesh.primitive.attributes keys.
const (
	POSITION   = "POSITION"
	NORMAL     = "NORMAL"
	TEXCOORD_0 = "TEXCOORD_0"
)

// mesh.primitive.mode values.
const (
	POINTS = iota
	LINES
	LINE_LOOP
	LINE_STRIP
	TRIANGLES
	TRIANGLE_STRIP
	TRIANGLE_FAN
)

// PrimitiveMode returns the mode of p, applying the
// default.
func (p *Primitive) PrimitiveMode() int64 {
	if p.Mode == nil {
		return TRIANGLES
	}
	return *p.Mode
}

// Decode decodes a glTF asset from r, which may hold
// either JSON or a GLB container. For GLB, bin is the
// content of the binary chunk, if any.
func Decode(r io.Reader) (f *GLTF, bin []byte, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return
	}
	js := b
	if IsGLB(b) {
		if js, bin, err = splitGLB(b); err != nil {
			return
		}
	}
	f = new(GLTF)
	if err = json.NewDecoder(bytes.NewReader(js)).Decode(f); err != nil {
		return nil, nil, newErr("malformed JSON: " + err.Error())
	}
	if err = f.Check(); err != nil {
		return nil, nil, err
	}
	return
}

// Encode encodes f as JSON into w.
func Encode(w io.Writer, f *GLTF) error {
	return json.NewEncoder(w).Encode(f)
}
