// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"log/slog"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Built-in materials.
const (
	// DefaultMaterial is used by geometry that names no
	// material or an unknown one.
	DefaultMaterial = "BaseWhite"

	// UnlitMaterial is like DefaultMaterial but ignores
	// lighting.
	UnlitMaterial = "BaseWhiteNoLighting"
)

// Material defines the surface properties of geometry.
// Only the first pass of the first technique of a
// scripted material is kept.
type Material struct {
	Name  string
	Group string

	Ambient   Colour
	Diffuse   Colour
	Specular  Colour
	Emissive  Colour
	Shininess float32

	// Whether lights affect the surface. When false, the
	// surface is drawn with its diffuse colour.
	Lighting bool

	// Whether shadows are cast onto the surface.
	ReceiveShadows bool

	// Whether back faces are culled.
	CullBack bool

	// Name of the texture of the first texture unit,
	// or empty.
	Texture string

	// Scale applied to texture coordinates. Texture
	// coordinates are divided by it.
	TextureScale mgl32.Vec2

	// Whether texture coordinates are clamped instead of
	// wrapped.
	TextureClamp bool
}

// newMaterial returns a material with default pass
// properties.
func newMaterial(name, group string) *Material {
	return &Material{
		Name:           name,
		Group:          group,
		Ambient:        White,
		Diffuse:        White,
		Specular:       Black,
		Emissive:       Black,
		Lighting:       true,
		ReceiveShadows: true,
		CullBack:       true,
		TextureScale:   mgl32.Vec2{1, 1},
	}
}

// clone copies m under a new name.
func (m *Material) clone(name, group string) *Material {
	c := *m
	c.Name = name
	c.Group = group
	return &c
}

// MaterialManager holds the materials that scripts and
// code define. Names are global across resource groups.
type MaterialManager struct {
	log  *slog.Logger
	mats map[string]*Material
}

func newMaterialManager(log *slog.Logger) *MaterialManager {
	mm := &MaterialManager{log: log, mats: make(map[string]*Material)}
	mm.mats[DefaultMaterial] = newMaterial(DefaultMaterial, DefaultGroup)
	unlit := newMaterial(UnlitMaterial, DefaultGroup)
	unlit.Lighting = false
	mm.mats[UnlitMaterial] = unlit
	return mm
}

// ByName returns the named material.
func (mm *MaterialManager) ByName(name string) (*Material, bool) {
	m, ok := mm.mats[name]
	return m, ok
}

// Default returns DefaultMaterial.
func (mm *MaterialManager) Default() *Material { return mm.mats[DefaultMaterial] }

// Create creates a material with default properties.
func (mm *MaterialManager) Create(name, group string) (*Material, error) {
	if _, dup := mm.mats[name]; dup {
		return nil, wrapName(ErrDuplicateName, name)
	}
	m := newMaterial(name, group)
	mm.mats[name] = m
	return m, nil
}

// Names returns the names of every material, sorted.
func (mm *MaterialManager) Names() []string {
	s := make([]string, 0, len(mm.mats))
	for k := range mm.mats {
		s = append(s, k)
	}
	sort.Strings(s)
	return s
}

// add stores a scripted material. A later definition
// replaces an earlier one.
func (mm *MaterialManager) add(m *Material) {
	if _, dup := mm.mats[m.Name]; dup {
		mm.log.Warn("material redefined", "name", m.Name, "group", m.Group)
	}
	mm.mats[m.Name] = m
}
