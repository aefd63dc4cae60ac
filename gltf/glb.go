// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"bytes"
	"encoding/binary"
	"io"
)

// GLB header.
type glbHeader [3]uint32

// Indices in glbHeader.
const (
	headerMagic   = 0
	headerVersion = 1
	headerLength  = 2
)

// GLB chunk.
type glbChunk [2]uint32

// Indices in glbChunk.
const (
	chunkLength = 0
	chunkType   = 1
	// Then payload.
)

const (
	// glbHeader[headerMagic].
	magic = 0x46546c67

	// glbChunk[chunkType].
	typeJSON = 0x4e4f534a
	typeBIN  = 0x004e4942
)

const (
	headerSize = 12
	chunkSize  = 8
)

// IsGLB returns whether b starts with a binary glTF
// (version 2) header.
func IsGLB(b []byte) bool {
	if len(b) < headerSize {
		return false
	}
	return binary.LittleEndian.Uint32(b) == magic && binary.LittleEndian.Uint32(b[4:]) == 2
}

// splitGLB returns the JSON and BIN chunks of the GLB
// blob b. bin is nil when the blob has no BIN chunk.
func splitGLB(b []byte) (js, bin []byte, err error) {
	var h glbHeader
	binary.Read(bytes.NewReader(b), binary.LittleEndian, h[:])
	switch {
	case int64(h[headerLength]) > int64(len(b)):
		return nil, nil, newErr("truncated GLB blob")
	case h[headerLength] < headerSize:
		return nil, nil, newErr("invalid GLB length")
	}
	b = b[headerSize:h[headerLength]]
	for len(b) > 0 {
		if len(b) < chunkSize {
			return nil, nil, newErr("invalid GLB chunk")
		}
		var c glbChunk
		c[chunkLength] = binary.LittleEndian.Uint32(b)
		c[chunkType] = binary.LittleEndian.Uint32(b[4:])
		n := int64(c[chunkLength])
		if n > int64(len(b)-chunkSize) {
			return nil, nil, newErr("invalid GLB chunk")
		}
		data := b[chunkSize : chunkSize+n]
		switch c[chunkType] {
		case typeJSON:
			if js == nil {
				js = data
			}
		case typeBIN:
			if js == nil {
				return nil, nil, newErr("GLB BIN chunk precedes JSON chunk")
			}
			if bin == nil {
				bin = data
			}
		}
		b = b[chunkSize+n:]
	}
	if len(js) == 0 {
		return nil, nil, newErr("GLB blob has no JSON chunk")
	}
	return
}

// EncodeGLB writes f and bin into w as a GLB blob.
// Chunks are padded to 4-byte boundaries as required.
func EncodeGLB(w io.Writer, f *GLTF, bin []byte) error {
	var js bytes.Buffer
	if err := Encode(&js, f); err != nil {
		return err
	}
	for js.Len()%4 != 0 {
		js.WriteByte(' ')
	}
	pad := (4 - len(bin)%4) % 4
	n := headerSize + chunkSize + js.Len()
	if bin != nil {
		n += chunkSize + len(bin) + pad
	}
	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, glbHeader{magic, 2, uint32(n)})
	binary.Write(&out, binary.LittleEndian, glbChunk{uint32(js.Len()), typeJSON})
	out.Write(js.Bytes())
	if bin != nil {
		binary.Write(&out, binary.LittleEndian, glbChunk{uint32(len(bin) + pad), typeBIN})
		out.Write(bin)
		out.Write(make([]byte, pad))
	}
	_, err := w.Write(out.Bytes())
	return err
}
