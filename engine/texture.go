// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxTextureSize is the largest texture dimension kept.
// Larger images are scaled down on load.
const MaxTextureSize = 4096

// Texture is a decoded 2D image in 8-bit RGBA with
// non-premultiplied alpha.
type Texture struct {
	Name  string
	Group string
	Image *image.NRGBA
}

// Width returns the width of t in pixels.
func (t *Texture) Width() int { return t.Image.Rect.Dx() }

// Height returns the height of t in pixels.
func (t *Texture) Height() int { return t.Image.Rect.Dy() }

// TextureManager loads and caches textures.
type TextureManager struct {
	groups   *ResourceGroupManager
	textures map[string]*Texture
}

func newTextureManager(groups *ResourceGroupManager) *TextureManager {
	return &TextureManager{groups: groups, textures: make(map[string]*Texture)}
}

// Load returns the named texture, decoding it from the
// resource group on first use. An empty group searches
// every group.
func (tm *TextureManager) Load(name, group string) (*Texture, error) {
	if t, ok := tm.textures[name]; ok {
		return t, nil
	}
	rc, err := tm.groups.Open(name, group)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	src, format, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("engine: decoding texture %q: %w", name, err)
	}
	t := &Texture{Name: name, Group: group, Image: toNRGBA(src)}
	tm.textures[name] = t
	tm.groups.log.Debug("texture loaded", "name", name, "format", format,
		"width", t.Width(), "height", t.Height())
	return t, nil
}

// Add stores img as a texture named name.
func (tm *TextureManager) Add(name string, img image.Image) (*Texture, error) {
	if _, dup := tm.textures[name]; dup {
		return nil, wrapName(ErrDuplicateName, name)
	}
	t := &Texture{Name: name, Image: toNRGBA(img)}
	tm.textures[name] = t
	return t, nil
}

// Remove forgets the named texture.
func (tm *TextureManager) Remove(name string) { delete(tm.textures, name) }

// toNRGBA converts src to NRGBA with its origin at (0, 0),
// scaling it down to fit MaxTextureSize.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > MaxTextureSize || h > MaxTextureSize {
		if w >= h {
			w, h = MaxTextureSize, max(1, h*MaxTextureSize/w)
		} else {
			w, h = max(1, w*MaxTextureSize/h), MaxTextureSize
		}
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Rect, src, b, draw.Src, nil)
		return dst
	}
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Copy(dst, image.Point{}, src, b, draw.Src, nil)
	return dst
}
