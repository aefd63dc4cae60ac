// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"net/url"
	"strings"
)

func componentSize(typ int64) int {
	switch typ {
	case BYTE, UNSIGNED_BYTE:
		return 1
	case SHORT, UNSIGNED_SHORT:
		return 2
	case UNSIGNED_INT, FLOAT:
		return 4
	}
	return 0
}

func typeComponents(typ string) int {
	switch typ {
	case SCALAR:
		return 1
	case VEC2:
		return 2
	case VEC3:
		return 3
	case VEC4, MAT2:
		return 4
	case MAT3:
		return 9
	case MAT4:
		return 16
	}
	return 0
}

// LoadBuffers returns the data of every buffer of f.
// Buffers without URI refer to bin, the GLB binary chunk.
// Data URIs are decoded in place; any other URI is read
// through open.
func (f *GLTF) LoadBuffers(bin []byte, open func(uri string) ([]byte, error)) ([][]byte, error) {
	bufs := make([][]byte, len(f.Buffers))
	for i, b := range f.Buffers {
		var data []byte
		var err error
		switch {
		case b.URI == "":
			if bin == nil {
				return nil, newErr(fmt.Sprintf("buffer %d refers to a missing GLB chunk", i))
			}
			data = bin
		case strings.HasPrefix(b.URI, "data:"):
			k := strings.Index(b.URI, ";base64,")
			if k < 0 {
				return nil, newErr(fmt.Sprintf("buffer %d: unsupported data URI", i))
			}
			if data, err = base64.StdEncoding.DecodeString(b.URI[k+len(";base64,"):]); err != nil {
				return nil, newErr(fmt.Sprintf("buffer %d: %v", i, err))
			}
		default:
			uri, err := url.PathUnescape(b.URI)
			if err != nil {
				return nil, newErr(fmt.Sprintf("buffer %d: %v", i, err))
			}
			if data, err = open(uri); err != nil {
				return nil, err
			}
		}
		if int64(len(data)) < b.ByteLength {
			return nil, newErr(fmt.Sprintf("buffer %d is shorter than its byteLength", i))
		}
		bufs[i] = data[:b.ByteLength]
	}
	return bufs, nil
}

// element returns the bytes addressed by the i-th
// accessor, and the distance between its elements.
// src is nil for accessors without buffer view, which
// hold zeros.
func (f *GLTF) elements(i int64, bufs [][]byte) (a *Accessor, src []byte, stride int, err error) {
	if i < 0 || i >= int64(len(f.Accessors)) {
		return nil, nil, 0, newErr("invalid accessor index")
	}
	a = &f.Accessors[i]
	size := componentSize(a.ComponentType) * typeComponents(a.Type)
	if a.BufferView == nil {
		return a, nil, size, nil
	}
	v := &f.BufferViews[*a.BufferView]
	if v.Buffer >= int64(len(bufs)) {
		return nil, nil, 0, newErr("accessor buffer not loaded")
	}
	view := bufs[v.Buffer][v.ByteOffset : v.ByteOffset+v.ByteLength]
	stride = size
	if v.ByteStride != 0 {
		stride = int(v.ByteStride)
	}
	end := a.ByteOffset + int64(stride)*(a.Count-1) + int64(size)
	if end > int64(len(view)) {
		return nil, nil, 0, newErr(fmt.Sprintf("accessor %d overflows its buffer view", i))
	}
	return a, view[a.ByteOffset:end], stride, nil
}

// Floats returns the elements of the i-th accessor as
// float32 values, n per element. Normalized integer
// components are mapped to [0, 1] or [-1, 1].
func (f *GLTF) Floats(i int64, bufs [][]byte) (data []float32, n int, err error) {
	a, src, stride, err := f.elements(i, bufs)
	if err != nil {
		return nil, 0, err
	}
	n = typeComponents(a.Type)
	data = make([]float32, int(a.Count)*n)
	if src == nil {
		return data, n, nil
	}
	cs := componentSize(a.ComponentType)
	for e := range int(a.Count) {
		p := src[e*stride:]
		for c := range n {
			data[e*n+c] = component(p[c*cs:], a.ComponentType, a.Normalized)
		}
	}
	return data, n, nil
}

func component(b []byte, typ int64, norm bool) float32 {
	var v, scale float32
	switch typ {
	case FLOAT:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case BYTE:
		v, scale = float32(int8(b[0])), 127
	case UNSIGNED_BYTE:
		v, scale = float32(b[0]), 255
	case SHORT:
		v, scale = float32(int16(binary.LittleEndian.Uint16(b))), 32767
	case UNSIGNED_SHORT:
		v, scale = float32(binary.LittleEndian.Uint16(b)), 65535
	case UNSIGNED_INT:
		return float32(binary.LittleEndian.Uint32(b))
	}
	if !norm {
		return v
	}
	return float32(math.Max(float64(v/scale), -1))
}

// Indices returns the elements of the i-th accessor,
// which must be a scalar of unsigned integers.
func (f *GLTF) Indices(i int64, bufs [][]byte) ([]uint32, error) {
	a, src, stride, err := f.elements(i, bufs)
	if err != nil {
		return nil, err
	}
	if a.Type != SCALAR {
		return nil, newErr("index accessor is not SCALAR")
	}
	idx := make([]uint32, a.Count)
	if src == nil {
		return idx, nil
	}
	for e := range idx {
		p := src[e*stride:]
		switch a.ComponentType {
		case UNSIGNED_BYTE:
			idx[e] = uint32(p[0])
		case UNSIGNED_SHORT:
			idx[e] = uint32(binary.LittleEndian.Uint16(p))
		case UNSIGNED_INT:
			idx[e] = binary.LittleEndian.Uint32(p)
		default:
			return nil, newErr("invalid index component type")
		}
	}
	return idx, nil
}
