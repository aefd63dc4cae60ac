// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeSurface records what a render system does to it.
type fakeSurface struct {
	w, h      int
	visible   bool
	swaps     int
	destroyed bool
	frames    []*Frame
}

func (s *fakeSurface) Size() (int, int)  { return s.w, s.h }
func (s *fakeSurface) SetVisible(v bool) { s.visible = v }
func (s *fakeSurface) Destroy()          { s.destroyed = true }

func (s *fakeSurface) Swap() error {
	s.swaps++
	return nil
}

// fakeSystem is a render system that draws nothing.
type fakeSystem struct {
	name     string
	initErr  error
	winErr   error
	inited   bool
	shutdown bool
	surfaces []*fakeSurface
	params   []NameValuePairList
	events   *[]string
}

func (fs *fakeSystem) Name() string { return fs.name }

func (fs *fakeSystem) Init() error {
	if fs.initErr != nil {
		return fs.initErr
	}
	fs.inited = true
	fs.record("init")
	return nil
}

func (fs *fakeSystem) NewWindow(name string, w, h int, full bool, params NameValuePairList) (Surface, error) {
	if fs.winErr != nil {
		return nil, fs.winErr
	}
	s := &fakeSurface{w: w, h: h, visible: true}
	fs.surfaces = append(fs.surfaces, s)
	fs.params = append(fs.params, params)
	fs.record("window " + name)
	return s, nil
}

func (fs *fakeSystem) Draw(s Surface, f *Frame) error {
	sf := s.(*fakeSurface)
	sf.frames = append(sf.frames, f)
	return nil
}

func (fs *fakeSystem) Shutdown() {
	fs.shutdown = true
	fs.record("shutdown")
}

func (fs *fakeSystem) record(ev string) {
	if fs.events != nil {
		*fs.events = append(*fs.events, ev)
	}
}

// fakePlugin installs its render systems.
type fakePlugin struct {
	name    string
	systems []RenderSystem
	events  *[]string
}

func (p *fakePlugin) Name() string { return p.name }

func (p *fakePlugin) Install(r *Root) error {
	for _, rs := range p.systems {
		r.AddRenderSystem(rs)
	}
	if p.events != nil {
		*p.events = append(*p.events, "install "+p.name)
	}
	return nil
}

func (p *fakePlugin) Uninstall(r *Root) {
	if p.events != nil {
		*p.events = append(*p.events, "uninstall "+p.name)
	}
}

// newTestRoot creates a Root with a fake GL render system
// selected and initialised.
func newTestRoot(t *testing.T) (*Root, *fakeSystem) {
	t.Helper()
	rs := &fakeSystem{name: GLRenderSystemName}
	Register(&fakePlugin{name: "RenderSystem_Test", systems: []RenderSystem{rs}})
	r, err := NewRoot(DefaultConfig())
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	t.Cleanup(r.Close)
	if err := r.LoadPlugin("RenderSystem_Test"); err != nil {
		t.Fatalf("Root.LoadPlugin: %v", err)
	}
	if err := r.SetRenderSystem(rs); err != nil {
		t.Fatalf("Root.SetRenderSystem: %v", err)
	}
	if err := r.Initialise(false); err != nil {
		t.Fatalf("Root.Initialise: %v", err)
	}
	return r, rs
}

func TestPluginName(t *testing.T) {
	for _, x := range [...]struct {
		path, want string
	}{
		{"RenderSystem_GL", "RenderSystem_GL"},
		{"./RenderSystem_GL", "RenderSystem_GL"},
		{"/usr/lib/OGRE/RenderSystem_GL.so", "RenderSystem_GL"},
		{"libRenderSystem_GL.so", "RenderSystem_GL"},
		{"RenderSystem_GL_d.dll", "RenderSystem_GL"},
		{"lib/RenderSystem_GL.dylib", "RenderSystem_GL"},
	} {
		if s := pluginName(x.path); s != x.want {
			t.Fatalf("pluginName(%q)\nhave %q\nwant %q", x.path, s, x.want)
		}
	}
}

func TestLoadPlugin(t *testing.T) {
	var events []string
	rs := &fakeSystem{name: "Fake", events: &events}
	Register(&fakePlugin{name: "Plugin_Fake", systems: []RenderSystem{rs}, events: &events})

	r, err := NewRoot(Config{})
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	defer r.Close()

	err = r.LoadPlugin("Plugin_Missing")
	if !errors.Is(err, ErrPluginNotFound) {
		t.Fatalf("Root.LoadPlugin (missing)\nhave %v\nwant %v", err, ErrPluginNotFound)
	}
	if !strings.Contains(err.Error(), "Plugin_Missing") {
		t.Fatalf("Root.LoadPlugin (missing): error does not name the plugin: %v", err)
	}
	if err := r.LoadPlugin("./Plugin_Fake"); err != nil {
		t.Fatalf("Root.LoadPlugin: %v", err)
	}
	// Loading twice is a no-op.
	if err := r.LoadPlugin("Plugin_Fake.so"); err != nil {
		t.Fatalf("Root.LoadPlugin (again): %v", err)
	}
	if n := len(r.InstalledPlugins()); n != 1 {
		t.Fatalf("len(Root.InstalledPlugins())\nhave %d\nwant 1", n)
	}
	if n := len(r.RenderSystems()); n != 1 {
		t.Fatalf("len(Root.RenderSystems())\nhave %d\nwant 1", n)
	}
	if _, err := r.RenderSystemByName("Other"); !errors.Is(err, ErrRenderSystemNotFound) {
		t.Fatalf("Root.RenderSystemByName\nhave %v\nwant %v", err, ErrRenderSystemNotFound)
	}
	x, err := r.RenderSystemByName("Fake")
	if err != nil || x != RenderSystem(rs) {
		t.Fatalf("Root.RenderSystemByName\nhave %v, %v\nwant %v, nil", x, err, rs)
	}
}

func TestInitialise(t *testing.T) {
	rs := &fakeSystem{name: "Init"}
	Register(&fakePlugin{name: "Plugin_Init", systems: []RenderSystem{rs}})
	r, err := NewRoot(Config{})
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	defer r.Close()

	if err := r.Initialise(false); err != ErrNoRenderSystem {
		t.Fatalf("Root.Initialise (no system)\nhave %v\nwant %v", err, ErrNoRenderSystem)
	}
	if _, err := r.CreateRenderWindow("w", 640, 480, false, nil); err != ErrNotInitialised {
		t.Fatalf("Root.CreateRenderWindow (not initialised)\nhave %v\nwant %v", err, ErrNotInitialised)
	}
	if err := r.SetRenderSystem(rs); !errors.Is(err, ErrRenderSystemNotFound) {
		t.Fatalf("Root.SetRenderSystem (not installed)\nhave %v\nwant %v", err, ErrRenderSystemNotFound)
	}
	if err := r.LoadPlugin("Plugin_Init"); err != nil {
		t.Fatalf("Root.LoadPlugin: %v", err)
	}
	if err := r.SetRenderSystem(rs); err != nil {
		t.Fatalf("Root.SetRenderSystem: %v", err)
	}
	if err := r.Initialise(false); err != nil {
		t.Fatalf("Root.Initialise: %v", err)
	}
	if !rs.inited || !r.Initialised() {
		t.Fatal("Root.Initialise: render system not initialised")
	}
	if n := len(r.RenderWindows()); n != 0 {
		t.Fatalf("Root.Initialise(false): created %d window(s)", n)
	}
}

func TestInitialiseAutoWindow(t *testing.T) {
	rs := &fakeSystem{name: "Auto"}
	Register(&fakePlugin{name: "Plugin_Auto", systems: []RenderSystem{rs}})
	dir := t.TempDir()
	cfg := filepath.Join(dir, "ogre.cfg")
	plugins := filepath.Join(dir, "plugins.cfg")
	if err := os.WriteFile(cfg, []byte("# saved\nRender System=Auto\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(plugins, []byte("[Plugins]\nPluginFolder=.\nPlugin=Plugin_Auto\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := NewRoot(Config{PluginFile: plugins, ConfigFile: cfg})
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	defer r.Close()
	if err := r.Initialise(true); err != nil {
		t.Fatalf("Root.Initialise: %v", err)
	}
	if r.RenderSystem() != RenderSystem(rs) {
		t.Fatalf("Root.RenderSystem\nhave %v\nwant %v", r.RenderSystem(), rs)
	}
	wins := r.RenderWindows()
	if len(wins) != 1 {
		t.Fatalf("len(Root.RenderWindows())\nhave %d\nwant 1", len(wins))
	}
	if w, h := wins[0].Width(), wins[0].Height(); w != 640 || h != 480 {
		t.Fatalf("auto window size\nhave %dx%d\nwant 640x480", w, h)
	}
}

func TestNewRootBadFiles(t *testing.T) {
	if _, err := NewRoot(Config{ConfigFile: filepath.Join(t.TempDir(), "none.cfg")}); err == nil {
		t.Fatal("NewRoot: unexpected success with missing config file")
	}
	bad := filepath.Join(t.TempDir(), "bad.cfg")
	if err := os.WriteFile(bad, []byte("no separator\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var serr *ScriptError
	if _, err := NewRoot(Config{ConfigFile: bad}); !errors.As(err, &serr) || serr.Line != 1 {
		t.Fatalf("NewRoot (malformed config)\nhave %v\nwant *ScriptError at line 1", err)
	}
}

func TestCreateRenderWindow(t *testing.T) {
	r, rs := newTestRoot(t)
	params := NameValuePairList{
		ParamTitle:        "frost-ogre",
		ParamFSAA:         "0",
		ParamVSync:        "false",
		ParamParentWindow: "1234",
	}
	w, err := r.CreateRenderWindow("Main", 640, 480, false, params)
	if err != nil {
		t.Fatalf("Root.CreateRenderWindow: %v", err)
	}
	want := WindowParams{Title: "frost-ogre", ParentWindow: 1234}
	if wp := w.Params(); wp != want {
		t.Fatalf("RenderWindow.Params\nhave %+v\nwant %+v", wp, want)
	}
	if rs.params[0][ParamParentWindow] != "1234" {
		t.Fatalf("params passed to render system\nhave %v\nwant %v", rs.params[0], params)
	}
	if _, err := r.CreateRenderWindow("Main", 640, 480, false, nil); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("Root.CreateRenderWindow (duplicate)\nhave %v\nwant %v", err, ErrDuplicateName)
	}
	if _, err := r.CreateRenderWindow("Bad", 640, 480, false, NameValuePairList{ParamFSAA: "x"}); err == nil {
		t.Fatal("Root.CreateRenderWindow (bad FSAA): unexpected success")
	}
	rs.winErr = errors.New("no display")
	if _, err := r.CreateRenderWindow("Fail", 640, 480, false, nil); !errors.Is(err, rs.winErr) {
		t.Fatalf("Root.CreateRenderWindow (failure)\nhave %v\nwant %v", err, rs.winErr)
	}
	if n := len(r.RenderWindows()); n != 1 {
		t.Fatalf("len(Root.RenderWindows())\nhave %d\nwant 1", n)
	}
	r.DestroyRenderWindow(w)
	if !rs.surfaces[0].destroyed {
		t.Fatal("Root.DestroyRenderWindow: surface not destroyed")
	}
}

func TestRenderOneFrame(t *testing.T) {
	r, rs := newTestRoot(t)
	w, err := r.CreateRenderWindow("Main", 640, 480, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	sm, err := r.CreateSceneManager(SceneGeneric, "")
	if err != nil {
		t.Fatal(err)
	}
	cam, _ := sm.CreateCamera("cam")
	if _, err := w.AddViewport(cam); err != nil {
		t.Fatal(err)
	}
	for i := range 3 {
		if err := r.RenderOneFrame(); err != nil {
			t.Fatalf("Root.RenderOneFrame #%d: %v", i, err)
		}
	}
	s := rs.surfaces[0]
	if s.swaps != 3 || len(s.frames) != 3 {
		t.Fatalf("after 3 frames\nhave %d swaps, %d draws\nwant 3, 3", s.swaps, len(s.frames))
	}
	if n := r.FrameCount(); n != 3 {
		t.Fatalf("Root.FrameCount\nhave %d\nwant 3", n)
	}
	w.SetVisible(false)
	if err := r.RenderOneFrame(); err != nil {
		t.Fatal(err)
	}
	if s.swaps != 3 {
		t.Fatal("Root.RenderOneFrame: hidden window was presented")
	}
}

func TestClose(t *testing.T) {
	var events []string
	rs := &fakeSystem{name: "Close", events: &events}
	Register(&fakePlugin{name: "Plugin_Close", systems: []RenderSystem{rs}, events: &events})
	Register(&fakePlugin{name: "Plugin_Close2", events: &events})
	r, err := NewRoot(Config{})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range [...]string{"Plugin_Close", "Plugin_Close2"} {
		if err := r.LoadPlugin(p); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.SetRenderSystem(rs); err != nil {
		t.Fatal(err)
	}
	if err := r.Initialise(false); err != nil {
		t.Fatal(err)
	}
	if _, err := r.CreateRenderWindow("W", 32, 32, false, nil); err != nil {
		t.Fatal(err)
	}
	r.Close()
	r.Close()
	want := []string{
		"install Plugin_Close",
		"install Plugin_Close2",
		"init",
		"window W",
		"shutdown",
		"uninstall Plugin_Close2",
		"uninstall Plugin_Close",
	}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Fatalf("Root lifecycle\nhave %v\nwant %v", events, want)
	}
	if !rs.surfaces[0].destroyed {
		t.Fatal("Root.Close: window not destroyed")
	}
	if err := r.Initialise(false); err != ErrClosed {
		t.Fatalf("Root.Initialise (closed)\nhave %v\nwant %v", err, ErrClosed)
	}
	if err := r.RenderOneFrame(); err != ErrClosed {
		t.Fatalf("Root.RenderOneFrame (closed)\nhave %v\nwant %v", err, ErrClosed)
	}
}

func TestParseWindowParams(t *testing.T) {
	wp, err := ParseWindowParams(NameValuePairList{
		ParamTitle:        "t",
		ParamFSAA:         "4",
		ParamVSync:        "yes",
		ParamParentWindow: "0:0:77",
		"unknown":         "ignored",
	})
	if err != nil {
		t.Fatalf("ParseWindowParams: %v", err)
	}
	want := WindowParams{Title: "t", FSAA: 4, VSync: true, ParentWindow: 77}
	if wp != want {
		t.Fatalf("ParseWindowParams\nhave %+v\nwant %+v", wp, want)
	}
	for _, p := range []NameValuePairList{
		{ParamFSAA: "-1"},
		{ParamVSync: "maybe"},
		{ParamParentWindow: "0"},
		{ParamParentWindow: "abc"},
	} {
		if _, err := ParseWindowParams(p); err == nil {
			t.Fatalf("ParseWindowParams(%v): unexpected success", p)
		}
	}
}
