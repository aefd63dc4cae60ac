// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package glrs

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/frostogre/frost/engine"
)

// hintForeignWindowGL makes SDL prepare windows created
// from native handles for OpenGL.
const hintForeignWindowGL = "SDL_VIDEO_FOREIGN_WINDOW_OPENGL"

const (
	glMajor = 3
	glMinor = 3
)

// ErrNotInitialised means that a method that requires an
// initialised render system was called before Init.
var ErrNotInitialised = errors.New("glrs: render system not initialised")

// RenderSystem implements engine.RenderSystem.
// All methods must be called from the thread that called
// Init.
type RenderSystem struct {
	root *engine.Root
	log  *slog.Logger

	ready    bool
	ctx      sdl.GLContext
	glInit   bool
	surfaces []*surface

	lit    *program
	depth  *program
	shadow *shadowMap

	meshes   map[*engine.SubMesh]*gpuMesh
	vertices map[*engine.VertexData]*gpuVertices
	textures map[string]*gpuTexture
	white    *gpuTexture
}

func newRenderSystem(r *engine.Root) *RenderSystem {
	return &RenderSystem{
		root: r,
		log:  r.Log().With("renderSystem", engine.GLRenderSystemName),
	}
}

// Name returns engine.GLRenderSystemName.
func (rs *RenderSystem) Name() string { return engine.GLRenderSystemName }

// Init initialises the SDL video subsystem and sets the
// attributes of the contexts to create. It creates no
// window and no context.
func (rs *RenderSystem) Init() error {
	if rs.ready {
		return nil
	}
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("glrs: %w", err)
	}
	attrs := [...]struct {
		attr  sdl.GLattr
		value int
	}{
		{sdl.GL_CONTEXT_MAJOR_VERSION, glMajor},
		{sdl.GL_CONTEXT_MINOR_VERSION, glMinor},
		{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
		{sdl.GL_DOUBLEBUFFER, 1},
		{sdl.GL_DEPTH_SIZE, 24},
	}
	for _, a := range attrs {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			sdl.QuitSubSystem(sdl.INIT_VIDEO)
			return fmt.Errorf("glrs: setting GL attribute %d: %w", a.attr, err)
		}
	}
	rs.meshes = make(map[*engine.SubMesh]*gpuMesh)
	rs.vertices = make(map[*engine.VertexData]*gpuVertices)
	rs.textures = make(map[string]*gpuTexture)
	rs.ready = true
	rs.log.Info("render system initialised", "gl", fmt.Sprintf("%d.%d core", glMajor, glMinor))
	return nil
}

// NewWindow creates a render target. When params name a
// parent window handle, the target renders into that
// native window instead of creating one.
func (rs *RenderSystem) NewWindow(name string, width, height int, fullscreen bool, params engine.NameValuePairList) (engine.Surface, error) {
	if !rs.ready {
		return nil, ErrNotInitialised
	}
	wp, err := engine.ParseWindowParams(params)
	if err != nil {
		return nil, err
	}
	if wp.Title == "" {
		wp.Title = name
	}
	samples := fsaaSamples(wp.FSAA)
	sdl.GLSetAttribute(sdl.GL_MULTISAMPLEBUFFERS, min(samples, 1))
	sdl.GLSetAttribute(sdl.GL_MULTISAMPLESAMPLES, samples)

	var win *sdl.Window
	if wp.ParentWindow != 0 {
		sdl.SetHint(hintForeignWindowGL, "1")
		win, err = sdl.CreateWindowFrom(unsafe.Pointer(wp.ParentWindow))
		if err != nil {
			return nil, fmt.Errorf("glrs: adopting window %d: %w", wp.ParentWindow, err)
		}
	} else {
		flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_SHOWN)
		if fullscreen {
			flags |= sdl.WINDOW_FULLSCREEN
		}
		win, err = sdl.CreateWindow(wp.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
			int32(width), int32(height), flags)
		if err != nil {
			return nil, fmt.Errorf("glrs: %w", err)
		}
	}
	s := &surface{rs: rs, win: win, foreign: wp.ParentWindow != 0, vsync: wp.VSync, visible: true}
	if err := rs.bindContext(s); err != nil {
		win.Destroy()
		return nil, err
	}
	rs.surfaces = append(rs.surfaces, s)
	w, h := s.Size()
	rs.log.Info("surface created", "name", name, "width", w, "height", h,
		"foreign", s.foreign, "samples", samples, "vsync", wp.VSync)
	return s, nil
}

// fsaaSamples maps the FSAA parameter to a sample count
// SDL accepts: 0, or a power of two up to 16.
func fsaaSamples(fsaa int) int {
	if fsaa <= 1 {
		return 0
	}
	n := 2
	for n*2 <= fsaa && n < 16 {
		n *= 2
	}
	return n
}

// bindContext makes the shared context current on s,
// creating the context and the GL objects that do not
// depend on a surface on first use.
func (rs *RenderSystem) bindContext(s *surface) error {
	if rs.ctx == nil {
		ctx, err := s.win.GLCreateContext()
		if err != nil {
			return fmt.Errorf("glrs: creating context: %w", err)
		}
		rs.ctx = ctx
	}
	if err := s.win.GLMakeCurrent(rs.ctx); err != nil {
		return fmt.Errorf("glrs: binding context: %w", err)
	}
	if !rs.glInit {
		if err := rs.initGL(); err != nil {
			return err
		}
	}
	interval := 0
	if s.vsync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		rs.log.Warn("cannot set swap interval", "interval", interval, "err", err)
	}
	return nil
}

func (rs *RenderSystem) initGL() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("glrs: loading GL: %w", err)
	}
	rs.log.Info("GL context",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	var err error
	if rs.lit, err = newProgram(litVertexShader, litFragmentShader, litUniforms); err != nil {
		return err
	}
	if rs.depth, err = newProgram(depthVertexShader, depthFragmentShader, depthUniforms); err != nil {
		rs.lit.delete()
		rs.lit = nil
		return err
	}
	rs.white = newSolidTexture(255, 255, 255, 255)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.SCISSOR_TEST)
	rs.glInit = true
	return nil
}

// Draw renders f into s.
func (rs *RenderSystem) Draw(es engine.Surface, f *engine.Frame) error {
	if !rs.ready || !rs.glInit {
		return ErrNotInitialised
	}
	s, ok := es.(*surface)
	if !ok || s.rs != rs {
		return errors.New("glrs: surface was not created by this render system")
	}
	if err := s.win.GLMakeCurrent(rs.ctx); err != nil {
		return fmt.Errorf("glrs: binding context: %w", err)
	}
	shadows := f.Shadow.Technique.IsTexture() && f.Shadow.TextureSize > 0
	if shadows {
		if err := rs.renderShadowMap(f); err != nil {
			return err
		}
	}
	return rs.renderScene(s, f, shadows)
}

// Shutdown destroys every GL object, the context and the
// surfaces that were not destroyed yet.
func (rs *RenderSystem) Shutdown() {
	if !rs.ready {
		return
	}
	if len(rs.surfaces) > 0 {
		rs.releaseGL(rs.surfaces[0])
	}
	for _, s := range rs.surfaces {
		s.release()
	}
	rs.surfaces = nil
	rs.glInit = false
	if rs.ctx != nil {
		sdl.GLDeleteContext(rs.ctx)
		rs.ctx = nil
	}
	rs.meshes = nil
	rs.vertices = nil
	rs.textures = nil
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
	rs.ready = false
	rs.log.Info("render system shut down")
}

// releaseGL deletes every GL object with the context
// current on s. Nothing is deleted if the context cannot
// be bound, since GL calls would have no target.
func (rs *RenderSystem) releaseGL(s *surface) {
	if !rs.glInit {
		return
	}
	if err := s.win.GLMakeCurrent(rs.ctx); err != nil {
		rs.log.Warn("cannot bind context to release GL objects", "err", err)
	} else {
		for _, m := range rs.meshes {
			m.delete()
		}
		for _, v := range rs.vertices {
			v.delete()
		}
		for _, t := range rs.textures {
			t.delete()
		}
		rs.white.delete()
		if rs.shadow != nil {
			rs.shadow.delete()
		}
		rs.lit.delete()
		rs.depth.delete()
	}
	rs.shadow = nil
	rs.white = nil
	rs.lit = nil
	rs.depth = nil
	clear(rs.meshes)
	clear(rs.vertices)
	clear(rs.textures)
	rs.glInit = false
	rs.log.Debug("GL objects released")
}

func (rs *RenderSystem) removeSurface(s *surface) {
	for i, x := range rs.surfaces {
		if x == s {
			rs.surfaces = append(rs.surfaces[:i], rs.surfaces[i+1:]...)
			return
		}
	}
}
