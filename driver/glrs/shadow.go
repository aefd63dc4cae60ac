// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package glrs

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/frostogre/frost/engine"
)

// shadowBias maps clip coordinates into texture space.
var shadowBias = mgl32.Translate3D(0.5, 0.5, 0.5).Mul4(mgl32.Scale3D(0.5, 0.5, 0.5))

// shadowProjection returns the transform from world space
// to shadow map coordinates.
func shadowProjection(s *engine.ShadowSetup) mgl32.Mat4 {
	return shadowBias.Mul4(s.LightViewProj)
}

// shadowMap is a depth-only framebuffer.
type shadowMap struct {
	fbo  uint32
	tex  uint32
	size int
}

func newShadowMap(size int) (*shadowMap, error) {
	m := &shadowMap{size: size}
	gl.GenTextures(1, &m.tex)
	gl.BindTexture(gl.TEXTURE_2D, m.tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, int32(size), int32(size), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &m.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, m.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, m.tex, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		m.delete()
		return nil, fmt.Errorf("glrs: shadow framebuffer incomplete (0x%x)", status)
	}
	return m, nil
}

func (m *shadowMap) delete() {
	if m.fbo != 0 {
		gl.DeleteFramebuffers(1, &m.fbo)
		m.fbo = 0
	}
	if m.tex != 0 {
		gl.DeleteTextures(1, &m.tex)
		m.tex = 0
	}
}

// renderShadowMap renders the depth of the shadow casters
// of f as seen from the shadow camera. The map is
// recreated when the texture size changes.
func (rs *RenderSystem) renderShadowMap(f *engine.Frame) error {
	size := f.Shadow.TextureSize
	if rs.shadow == nil || rs.shadow.size != size {
		if rs.shadow != nil {
			rs.shadow.delete()
			rs.shadow = nil
		}
		m, err := newShadowMap(size)
		if err != nil {
			return err
		}
		rs.shadow = m
		rs.log.Debug("shadow map created", "size", size)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, rs.shadow.fbo)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(size), int32(size))
	gl.Scissor(0, 0, int32(size), int32(size))
	gl.DepthMask(true)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(2, 4)
	defer gl.Disable(gl.POLYGON_OFFSET_FILL)

	rs.depth.use()
	vp := f.Shadow.LightViewProj
	gl.UniformMatrix4fv(rs.depth.loc("viewProj"), 1, false, &vp[0])
	for i := range f.Items {
		it := &f.Items[i]
		if !it.CastShadows {
			continue
		}
		m, err := rs.mesh(it)
		if err != nil {
			return err
		}
		if m.mode != gl.TRIANGLES && m.mode != gl.TRIANGLE_STRIP && m.mode != gl.TRIANGLE_FAN {
			continue
		}
		w := it.World
		gl.UniformMatrix4fv(rs.depth.loc("world"), 1, false, &w[0])
		m.draw()
	}
	return nil
}
