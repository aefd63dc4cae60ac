// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"errors"
	"strings"
)

func newErr(reason string) error {
	return errors.New("gltf: " + reason)
}

// Check checks that f is valid glTF that this package
// can decode.
func (f *GLTF) Check() error {
	if !strings.HasPrefix(f.Asset.Version, "2.") {
		return newErr("unsupported asset version " + f.Asset.Version)
	}
	if len(f.ExtensionsRequired) > 0 {
		return newErr("unsupported required extension " + f.ExtensionsRequired[0])
	}
	for i := range f.Buffers {
		if f.Buffers[i].ByteLength < 1 {
			return newErr("invalid Buffer.ByteLength value")
		}
	}
	for i := range f.BufferViews {
		if err := f.BufferViews[i].Check(f); err != nil {
			return err
		}
	}
	for i := range f.Accessors {
		if err := f.Accessors[i].Check(f); err != nil {
			return err
		}
	}
	for i := range f.Meshes {
		if err := f.Meshes[i].Check(f); err != nil {
			return err
		}
	}
	return nil
}

// Check checks that v is valid glTF.bufferViews' element.
func (v *BufferView) Check(gltf *GLTF) error {
	if v.Buffer < 0 || v.Buffer >= int64(len(gltf.Buffers)) {
		return newErr("invalid BufferView.Buffer index")
	}
	if v.ByteOffset < 0 || v.ByteLength < 1 || v.ByteOffset+v.ByteLength > gltf.Buffers[v.Buffer].ByteLength {
		return newErr("invalid BufferView byte range")
	}
	if v.ByteStride != 0 && (v.ByteStride < 4 || v.ByteStride > 252 || v.ByteStride%4 != 0) {
		return newErr("invalid BufferView.ByteStride value")
	}
	return nil
}

// Check checks that a is valid glTF.accessors' element.
func (a *Accessor) Check(gltf *GLTF) error {
	if a.BufferView != nil {
		idx := *a.BufferView
		if idx < 0 || idx >= int64(len(gltf.BufferViews)) {
			return newErr("invalid Accessor.BufferView index")
		}
	}
	if a.ByteOffset < 0 {
		return newErr("invalid Accessor.ByteOffset value")
	}
	if componentSize(a.ComponentType) == 0 {
		return newErr("invalid Accessor.ComponentType value")
	}
	if a.Count < 1 {
		return newErr("invalid Accessor.Count value")
	}
	if typeComponents(a.Type) == 0 {
		return newErr("invalid Accessor.Type value")
	}
	if a.Sparse != nil {
		return newErr("sparse accessors are not supported")
	}
	return nil
}

// Check checks that m is valid glTF.meshes' element.
func (m *Mesh) Check(gltf *GLTF) error {
	if len(m.Primitives) == 0 {
		return newErr("mesh has no primitives")
	}
	n := int64(len(gltf.Accessors))
	for _, p := range m.Primitives {
		if _, ok := p.Attributes[POSITION]; !ok {
			return newErr("primitive has no POSITION attribute")
		}
		for _, a := range p.Attributes {
			if a < 0 || a >= n {
				return newErr("invalid Primitive.Attributes index")
			}
		}
		if p.Indices != nil && (*p.Indices < 0 || *p.Indices >= n) {
			return newErr("invalid Primitive.Indices index")
		}
		if p.Material != nil && (*p.Material < 0 || *p.Material >= int64(len(gltf.Materials))) {
			return newErr("invalid Primitive.Material index")
		}
		if mode := p.PrimitiveMode(); mode < POINTS || mode > TRIANGLE_FAN {
			return newErr("invalid Primitive.Mode value")
		}
	}
	return nil
}
