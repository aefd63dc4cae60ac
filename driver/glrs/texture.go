// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package glrs

import (
	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/frostogre/frost/engine"
)

// gpuTexture is a 2D texture with mipmaps.
type gpuTexture struct {
	id uint32
}

func newGPUTexture(width, height int, pix []uint8) *gpuTexture {
	t := &gpuTexture{}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t
}

// newSolidTexture creates a 1x1 texture that untextured
// materials sample.
func newSolidTexture(r, g, b, a uint8) *gpuTexture {
	return newGPUTexture(1, 1, []uint8{r, g, b, a})
}

// bind binds t to the diffuse unit, clamping or repeating
// texture coordinates.
func (t *gpuTexture) bind(clamp bool) {
	gl.ActiveTexture(gl.TEXTURE0 + unitDiffuse)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	wrap := int32(gl.REPEAT)
	if clamp {
		wrap = gl.CLAMP_TO_EDGE
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
}

func (t *gpuTexture) delete() {
	if t == nil || t.id == 0 {
		return
	}
	gl.DeleteTextures(1, &t.id)
	t.id = 0
}

// texture returns the texture of m, uploading it on first
// use. Materials whose texture cannot be loaded are drawn
// untextured; the failure is logged once.
func (rs *RenderSystem) texture(m *engine.Material) *gpuTexture {
	if m.Texture == "" {
		return rs.white
	}
	if t, ok := rs.textures[m.Texture]; ok {
		if t == nil {
			return rs.white
		}
		return t
	}
	tex, err := rs.root.Textures().Load(m.Texture, m.Group)
	if err != nil {
		rs.log.Warn("cannot load texture", "material", m.Name, "texture", m.Texture, "err", err)
		rs.textures[m.Texture] = nil
		return rs.white
	}
	img := tex.Image
	t := newGPUTexture(img.Rect.Dx(), img.Rect.Dy(), img.Pix)
	rs.textures[m.Texture] = t
	return t
}
