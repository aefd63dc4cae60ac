// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Chunk identifiers of the binary mesh format.
const (
	chunkHeader           = 0x1000
	chunkMesh             = 0x3000
	chunkSubMesh          = 0x4000
	chunkSubMeshOperation = 0x4010
	chunkGeometry         = 0x5000
	chunkVertexDecl       = 0x5100
	chunkVertexElement    = 0x5110
	chunkVertexBuffer     = 0x5200
	chunkVertexBufferData = 0x5210
	chunkSkeletonLink     = 0x6000
	chunkBounds           = 0x9000

	chunkOverhead = 6
)

// meshVersion is the version written by EncodeMesh.
const meshVersion = "[MeshSerializer_v1.8]"

// Vertex element types and semantics.
const (
	vetFloat1 = 0
	vetFloat2 = 1
	vetFloat3 = 2
	vetFloat4 = 3

	vesPosition = 1
	vesNormal   = 4
	vesTexCoord = 7
)

type meshReader struct {
	buf   *bytes.Reader
	order binary.ByteOrder
	err   error
}

func (r *meshReader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s", ErrBadMesh, fmt.Sprintf(format, args...))
	}
}

func (r *meshReader) read(p []byte) {
	if r.err != nil {
		return
	}
	if _, err := io.ReadFull(r.buf, p); err != nil {
		r.fail("unexpected end of data")
	}
}

func (r *meshReader) u16() uint16 {
	var b [2]byte
	r.read(b[:])
	return r.order.Uint16(b[:])
}

func (r *meshReader) u32() uint32 {
	var b [4]byte
	r.read(b[:])
	return r.order.Uint32(b[:])
}

func (r *meshReader) f32() float32 { return math.Float32frombits(r.u32()) }

func (r *meshReader) bool() bool {
	var b [1]byte
	r.read(b[:])
	return b[0] != 0
}

// str reads a string terminated by a line feed.
func (r *meshReader) str() string {
	var sb strings.Builder
	for r.err == nil {
		c, err := r.buf.ReadByte()
		if err != nil {
			r.fail("unterminated string")
			break
		}
		if c == '\n' {
			break
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func (r *meshReader) pos() int64 { return r.buf.Size() - int64(r.buf.Len()) }

// chunk reads a chunk header and returns the chunk id and
// the offset at which the chunk ends.
func (r *meshReader) chunk() (uint16, int64) {
	id := r.u16()
	n := r.u32()
	end := r.pos() + int64(n) - chunkOverhead
	if n < chunkOverhead || end > r.buf.Size() {
		r.fail("chunk %#x has bad length %d", id, n)
	}
	return id, end
}

func (r *meshReader) seek(off int64) {
	if r.err == nil {
		r.buf.Seek(off, io.SeekStart)
	}
}

// more reports whether a chunk header fits before end.
func (r *meshReader) more(end int64) bool {
	return r.err == nil && r.pos()+chunkOverhead <= end
}

// DecodeMesh decodes a mesh in the binary chunked format.
// Shared and dedicated geometry are supported, as are 16
// and 32-bit indices. Positions, normals and the first
// texture coordinate set are read; other vertex elements
// and unknown chunks are skipped. Either byte order is
// accepted.
func DecodeMesh(rd io.Reader) (*Mesh, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("engine: reading mesh: %w", err)
	}
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: no header", ErrBadMesh)
	}
	r := &meshReader{buf: bytes.NewReader(data)}
	switch {
	case binary.LittleEndian.Uint16(data) == chunkHeader:
		r.order = binary.LittleEndian
	case binary.BigEndian.Uint16(data) == chunkHeader:
		r.order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: no header", ErrBadMesh)
	}
	r.u16()
	if v := r.str(); !strings.HasPrefix(v, "[MeshSerializer_v") {
		return nil, fmt.Errorf("%w: unknown version %q", ErrBadMesh, v)
	}
	var m *Mesh
	for r.more(r.buf.Size()) {
		id, end := r.chunk()
		if id == chunkMesh && m == nil {
			m = r.mesh(end)
		}
		r.seek(end)
	}
	if r.err != nil {
		return nil, r.err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: no mesh chunk", ErrBadMesh)
	}
	for i, sm := range m.SubMeshes {
		v := m.Vertices(i)
		if v == nil {
			return nil, fmt.Errorf("%w: sub-mesh %d has no vertices", ErrBadMesh, i)
		}
		for _, x := range sm.Indices {
			if int(x) >= v.Count {
				return nil, fmt.Errorf("%w: sub-mesh %d index %d out of range", ErrBadMesh, i, x)
			}
		}
	}
	if m.Bounds.IsNull() {
		m.computeBounds()
	}
	return m, nil
}

func (r *meshReader) mesh(end int64) *Mesh {
	m := &Mesh{}
	r.bool() // Skeletally animated.
	for r.more(end) {
		id, cend := r.chunk()
		switch id {
		case chunkGeometry:
			m.Shared = r.geometry(cend)
		case chunkSubMesh:
			m.SubMeshes = append(m.SubMeshes, r.subMesh(cend))
		case chunkSkeletonLink:
			m.Skeleton = r.str()
		case chunkBounds:
			var min, max mgl32.Vec3
			for i := range 3 {
				min[i] = r.f32()
			}
			for i := range 3 {
				max[i] = r.f32()
			}
			r.f32() // Radius.
			m.Bounds = NewAABB(min, max)
		}
		r.seek(cend)
	}
	return m
}

func (r *meshReader) subMesh(end int64) *SubMesh {
	sm := &SubMesh{Operation: TriangleList}
	sm.MaterialName = r.str()
	shared := r.bool()
	n := r.u32()
	wide := r.bool()
	size := int64(n) * 2
	if wide {
		size *= 2
	}
	if r.pos()+size > end {
		r.fail("index count %d exceeds sub-mesh", n)
		return sm
	}
	sm.Indices = make([]uint32, n)
	for i := range sm.Indices {
		if wide {
			sm.Indices[i] = r.u32()
		} else {
			sm.Indices[i] = uint32(r.u16())
		}
	}
	for r.more(end) {
		id, cend := r.chunk()
		switch id {
		case chunkGeometry:
			if !shared {
				sm.Vertices = r.geometry(cend)
			}
		case chunkSubMeshOperation:
			sm.Operation = OperationType(r.u16())
		}
		r.seek(cend)
	}
	if !shared && sm.Vertices == nil {
		r.fail("sub-mesh %q has no geometry", sm.MaterialName)
	}
	return sm
}

type vertexElement struct {
	source, typ, semantic, offset, index uint16
}

func (r *meshReader) geometry(end int64) *VertexData {
	count := int(r.u32())
	var elems []vertexElement
	buffers := make(map[uint16][]byte)
	strides := make(map[uint16]int)
	for r.more(end) {
		id, cend := r.chunk()
		switch id {
		case chunkVertexDecl:
			for r.more(cend) {
				eid, eend := r.chunk()
				if eid == chunkVertexElement {
					elems = append(elems, vertexElement{r.u16(), r.u16(), r.u16(), r.u16(), r.u16()})
				}
				r.seek(eend)
			}
		case chunkVertexBuffer:
			bind := r.u16()
			stride := int(r.u16())
			for r.more(cend) {
				bid, bend := r.chunk()
				if bid == chunkVertexBufferData {
					n := stride * count
					if r.pos()+int64(n) > bend {
						r.fail("vertex buffer %d is too short", bind)
						break
					}
					b := make([]byte, n)
					r.read(b)
					buffers[bind] = b
					strides[bind] = stride
				}
				r.seek(bend)
			}
		}
		r.seek(cend)
	}
	if r.err != nil {
		return nil
	}
	v := &VertexData{Count: count}
	floats := func(e vertexElement, want int) [][4]float32 {
		b, ok := buffers[e.source]
		if !ok {
			r.fail("vertex element refers to missing buffer %d", e.source)
			return nil
		}
		stride := strides[e.source]
		if int(e.offset)+want*4 > stride {
			r.fail("vertex element exceeds stride")
			return nil
		}
		out := make([][4]float32, count)
		for i := range count {
			p := b[i*stride+int(e.offset):]
			for j := range want {
				out[i][j] = math.Float32frombits(r.order.Uint32(p[j*4:]))
			}
		}
		return out
	}
	for _, e := range elems {
		switch {
		case e.semantic == vesPosition && e.typ == vetFloat3:
			f := floats(e, 3)
			if f == nil {
				return nil
			}
			v.Positions = make([]mgl32.Vec3, count)
			for i := range f {
				v.Positions[i] = mgl32.Vec3{f[i][0], f[i][1], f[i][2]}
			}
		case e.semantic == vesNormal && e.typ == vetFloat3:
			f := floats(e, 3)
			if f == nil {
				return nil
			}
			v.Normals = make([]mgl32.Vec3, count)
			for i := range f {
				v.Normals[i] = mgl32.Vec3{f[i][0], f[i][1], f[i][2]}
			}
		case e.semantic == vesTexCoord && e.index == 0 && e.typ == vetFloat2:
			f := floats(e, 2)
			if f == nil {
				return nil
			}
			v.UVs = make([]mgl32.Vec2, count)
			for i := range f {
				v.UVs[i] = mgl32.Vec2{f[i][0], f[i][1]}
			}
		}
	}
	if v.Positions == nil {
		r.fail("geometry has no float3 positions")
		return nil
	}
	return v
}

// errMeshNoVertices means that EncodeMesh was given a
// mesh without vertex data.
var errMeshNoVertices = errors.New("engine: mesh has no vertices")

// chunkWriter buffers a chunk so its length can be
// written before its body.
type chunkWriter struct {
	bytes.Buffer
}

func (c *chunkWriter) u16(v uint16)  { binary.Write(c, binary.LittleEndian, v) }
func (c *chunkWriter) u32(v uint32)  { binary.Write(c, binary.LittleEndian, v) }
func (c *chunkWriter) f32(v float32) { binary.Write(c, binary.LittleEndian, v) }

func (c *chunkWriter) str(s string) {
	c.WriteString(s)
	c.WriteByte('\n')
}

func (c *chunkWriter) bool(b bool) {
	if b {
		c.WriteByte(1)
	} else {
		c.WriteByte(0)
	}
}

// chunk appends a chunk of the given id with the body
// that f writes.
func (c *chunkWriter) chunk(id uint16, f func(*chunkWriter)) {
	var body chunkWriter
	f(&body)
	c.u16(id)
	c.u32(uint32(body.Len() + chunkOverhead))
	c.Write(body.Bytes())
}

// EncodeMesh writes m in the binary chunked format, in
// little-endian byte order. Vertex attributes are
// interleaved in a single buffer.
func EncodeMesh(w io.Writer, m *Mesh) error {
	if m.Shared == nil {
		for _, sm := range m.SubMeshes {
			if sm.Vertices == nil {
				return errMeshNoVertices
			}
		}
	}
	var out chunkWriter
	out.u16(chunkHeader)
	out.str(meshVersion)
	out.chunk(chunkMesh, func(c *chunkWriter) {
		c.bool(m.Skeleton != "")
		if m.Shared != nil {
			c.chunk(chunkGeometry, func(c *chunkWriter) { writeGeometry(c, m.Shared) })
		}
		for _, sm := range m.SubMeshes {
			c.chunk(chunkSubMesh, func(c *chunkWriter) { writeSubMesh(c, sm) })
		}
		if m.Skeleton != "" {
			c.chunk(chunkSkeletonLink, func(c *chunkWriter) { c.str(m.Skeleton) })
		}
		b := m.Bounds
		if b.IsNull() {
			mc := *m
			mc.computeBounds()
			b = mc.Bounds
		}
		if !b.IsNull() {
			c.chunk(chunkBounds, func(c *chunkWriter) {
				for _, x := range b.Min {
					c.f32(x)
				}
				for _, x := range b.Max {
					c.f32(x)
				}
				c.f32(b.Max.Sub(b.Min).Len() / 2)
			})
		}
	})
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(out.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

func writeSubMesh(c *chunkWriter, sm *SubMesh) {
	c.str(sm.MaterialName)
	c.bool(sm.Vertices == nil)
	c.u32(uint32(len(sm.Indices)))
	wide := false
	for _, x := range sm.Indices {
		if x > math.MaxUint16 {
			wide = true
			break
		}
	}
	c.bool(wide)
	for _, x := range sm.Indices {
		if wide {
			c.u32(x)
		} else {
			c.u16(uint16(x))
		}
	}
	if sm.Vertices != nil {
		c.chunk(chunkGeometry, func(c *chunkWriter) { writeGeometry(c, sm.Vertices) })
	}
	op := sm.Operation
	if op == 0 {
		op = TriangleList
	}
	c.chunk(chunkSubMeshOperation, func(c *chunkWriter) { c.u16(uint16(op)) })
}

func writeGeometry(c *chunkWriter, v *VertexData) {
	c.u32(uint32(v.Count))
	type elem struct {
		typ, semantic uint16
		size          int
	}
	elems := []elem{{vetFloat3, vesPosition, 12}}
	if v.Normals != nil {
		elems = append(elems, elem{vetFloat3, vesNormal, 12})
	}
	if v.UVs != nil {
		elems = append(elems, elem{vetFloat2, vesTexCoord, 8})
	}
	stride := 0
	c.chunk(chunkVertexDecl, func(c *chunkWriter) {
		for _, e := range elems {
			c.chunk(chunkVertexElement, func(c *chunkWriter) {
				c.u16(0)
				c.u16(e.typ)
				c.u16(e.semantic)
				c.u16(uint16(stride))
				c.u16(0)
			})
			stride += e.size
		}
	})
	c.chunk(chunkVertexBuffer, func(c *chunkWriter) {
		c.u16(0)
		c.u16(uint16(stride))
		c.chunk(chunkVertexBufferData, func(c *chunkWriter) {
			for i := range v.Count {
				for _, x := range v.Positions[i] {
					c.f32(x)
				}
				if v.Normals != nil {
					for _, x := range v.Normals[i] {
						c.f32(x)
					}
				}
				if v.UVs != nil {
					for _, x := range v.UVs[i] {
						c.f32(x)
					}
				}
			}
		})
	})
}
