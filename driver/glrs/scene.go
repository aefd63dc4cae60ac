// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package glrs

import (
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/frostogre/frost/engine"
)

// viewportRect converts the viewport of f, whose origin
// is the top-left corner, to GL window coordinates.
func viewportRect(f *engine.Frame, targetHeight int) (x, y, width, height int32) {
	return int32(f.X), int32(targetHeight - f.Y - f.Height), int32(f.Width), int32(f.Height)
}

// modulate multiplies the RGB components of a and b.
func modulate(a, b engine.Colour) mgl32.Vec3 {
	return mgl32.Vec3{a.R * b.R, a.G * b.G, a.B * b.B}
}

// lightData holds the light uniforms of the lit program.
type lightData struct {
	count    int32
	pos      [maxLights * 4]float32
	diffuse  [maxLights * 3]float32
	specular [maxLights * 3]float32
	rng      [maxLights]float32
}

// newLightData packs up to maxLights lights. Directional
// lights store their direction with w set to zero.
func newLightData(lights []engine.FrameLight) *lightData {
	d := &lightData{}
	for i, l := range lights {
		if i == maxLights {
			break
		}
		v := l.Position.Vec4(1)
		if l.Type == engine.LightDirectional {
			v = l.Direction.Vec4(0)
		}
		copy(d.pos[i*4:], v[:])
		dif, spe := l.Diffuse.Vec3(), l.Specular.Vec3()
		copy(d.diffuse[i*3:], dif[:])
		copy(d.specular[i*3:], spe[:])
		d.rng[i] = l.Range
		d.count++
	}
	return d
}

// renderScene draws the items of f into s.
func (rs *RenderSystem) renderScene(s *surface, f *engine.Frame, shadows bool) error {
	th := f.TargetHeight
	if th == 0 {
		_, th = s.Size()
	}
	x, y, w, h := viewportRect(f, th)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(x, y, w, h)
	gl.Scissor(x, y, w, h)
	if f.Clear {
		c := f.Background
		gl.ClearColor(c.R, c.G, c.B, c.A)
		gl.DepthMask(true)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	}

	p := rs.lit
	p.use()
	viewProj := f.Projection.Mul4(f.View)
	gl.UniformMatrix4fv(p.loc("viewProj"), 1, false, &viewProj[0])
	gl.Uniform3fv(p.loc("cameraPos"), 1, &f.CameraPosition[0])
	ld := newLightData(f.Lights)
	gl.Uniform1i(p.loc("lightCount"), ld.count)
	gl.Uniform4fv(p.loc("lightPos"), maxLights, &ld.pos[0])
	gl.Uniform3fv(p.loc("lightDiffuse"), maxLights, &ld.diffuse[0])
	gl.Uniform3fv(p.loc("lightSpecular"), maxLights, &ld.specular[0])
	gl.Uniform1fv(p.loc("lightRange"), maxLights, &ld.rng[0])
	gl.Uniform1i(p.loc("tex"), unitDiffuse)
	gl.Uniform1i(p.loc("shadowTex"), unitShadow)

	mode := int32(shadowOff)
	if shadows && rs.shadow != nil {
		mode = shadowAdditive
		if f.Shadow.Technique.IsModulative() {
			mode = shadowModulative
		}
		sp := shadowProjection(&f.Shadow)
		gl.UniformMatrix4fv(p.loc("shadowProj"), 1, false, &sp[0])
		sc := f.Shadow.Colour.Vec3()
		gl.Uniform3fv(p.loc("shadowColour"), 1, &sc[0])
		gl.Uniform1i(p.loc("shadowLight"), int32(f.Shadow.Light))
		gl.ActiveTexture(gl.TEXTURE0 + unitShadow)
		gl.BindTexture(gl.TEXTURE_2D, rs.shadow.tex)
	}

	for i := range f.Items {
		it := &f.Items[i]
		m, err := rs.mesh(it)
		if err != nil {
			return err
		}
		mat := it.Material
		if mat.CullBack {
			gl.Enable(gl.CULL_FACE)
			gl.CullFace(gl.BACK)
		} else {
			gl.Disable(gl.CULL_FACE)
		}
		world := it.World
		nm := world.Mat3().Inv().Transpose()
		gl.UniformMatrix4fv(p.loc("world"), 1, false, &world[0])
		gl.UniformMatrix3fv(p.loc("normalMatrix"), 1, false, &nm[0])
		scale := mat.TextureScale
		gl.Uniform2fv(p.loc("uvScale"), 1, &scale[0])
		amb := modulate(f.Ambient, mat.Ambient)
		gl.Uniform3fv(p.loc("ambient"), 1, &amb[0])
		dif := mat.Diffuse.Vec4()
		gl.Uniform4fv(p.loc("diffuse"), 1, &dif[0])
		spe := mat.Specular.Vec3()
		gl.Uniform3fv(p.loc("specular"), 1, &spe[0])
		emi := mat.Emissive.Vec3()
		gl.Uniform3fv(p.loc("emissive"), 1, &emi[0])
		gl.Uniform1f(p.loc("shininess"), mat.Shininess)
		gl.Uniform1i(p.loc("lighting"), boolInt(mat.Lighting))
		// Casters do not receive texture shadows.
		if it.ReceiveShadows && !it.CastShadows {
			gl.Uniform1i(p.loc("shadowMode"), mode)
		} else {
			gl.Uniform1i(p.loc("shadowMode"), shadowOff)
		}
		rs.texture(mat).bind(mat.TextureClamp)
		m.draw()
	}
	gl.BindVertexArray(0)
	return nil
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
