// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 255, 255})
		}
	}
	return img
}

func TestTextureLoad(t *testing.T) {
	dir := t.TempDir()
	img := testImage(4, 2)
	for name, enc := range map[string]func(*os.File) error{
		"tex.png": func(f *os.File) error { return png.Encode(f, img) },
		"tex.bmp": func(f *os.File) error { return bmp.Encode(f, img) },
	} {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if err := enc(f); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}
	writeFile(t, filepath.Join(dir, "junk.png"), "not an image")

	r, err := NewRoot(Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	rg := r.ResourceGroups()
	if err := rg.AddResourceLocation(dir, LocationFileSystem, ""); err != nil {
		t.Fatal(err)
	}
	if err := rg.InitialiseAllResourceGroups(); err != nil {
		t.Fatal(err)
	}
	tm := r.Textures()
	for _, name := range [...]string{"tex.png", "tex.bmp"} {
		tex, err := tm.Load(name, "")
		if err != nil {
			t.Fatalf("TextureManager.Load(%q): %v", name, err)
		}
		if tex.Width() != 4 || tex.Height() != 2 {
			t.Fatalf("TextureManager.Load(%q): size\nhave %dx%d\nwant 4x2", name, tex.Width(), tex.Height())
		}
		if c := tex.Image.NRGBAAt(3, 1); c != (color.NRGBA{3, 1, 255, 255}) {
			t.Fatalf("TextureManager.Load(%q): pixel (3, 1)\nhave %v\nwant {3 1 255 255}", name, c)
		}
		if x, _ := tm.Load(name, ""); x != tex {
			t.Fatalf("TextureManager.Load(%q): texture not cached", name)
		}
	}
	if _, err := tm.Load("junk.png", ""); err == nil {
		t.Fatal("TextureManager.Load (junk): unexpected success")
	}
	if _, err := tm.Load("none.png", ""); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("TextureManager.Load (missing)\nhave %v\nwant %v", err, ErrFileNotFound)
	}
}

func TestToNRGBA(t *testing.T) {
	src := testImage(8, 8).SubImage(image.Rect(2, 2, 6, 4))
	n := toNRGBA(src)
	if n.Rect != image.Rect(0, 0, 4, 2) {
		t.Fatalf("toNRGBA: Rect\nhave %v\nwant %v", n.Rect, image.Rect(0, 0, 4, 2))
	}
	if c := n.NRGBAAt(0, 0); c != (color.NRGBA{2, 2, 255, 255}) {
		t.Fatalf("toNRGBA: pixel (0, 0)\nhave %v\nwant {2 2 255 255}", c)
	}
	big := image.NewNRGBA(image.Rect(0, 0, MaxTextureSize+904, 10))
	n = toNRGBA(big)
	if w, h := n.Rect.Dx(), n.Rect.Dy(); w != MaxTextureSize || h != 8 {
		t.Fatalf("toNRGBA (large)\nhave %dx%d\nwant %dx8", w, h, MaxTextureSize)
	}
	if x := toNRGBA(n); x != n {
		t.Fatal("toNRGBA: NRGBA image was copied")
	}
}

func TestTextureAdd(t *testing.T) {
	r, err := NewRoot(Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	tm := r.Textures()
	if _, err := tm.Add("gen", testImage(2, 2)); err != nil {
		t.Fatalf("TextureManager.Add: %v", err)
	}
	if _, err := tm.Add("gen", testImage(2, 2)); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("TextureManager.Add (dup)\nhave %v\nwant %v", err, ErrDuplicateName)
	}
	tm.Remove("gen")
	if _, err := tm.Add("gen", testImage(1, 1)); err != nil {
		t.Fatalf("TextureManager.Add after Remove: %v", err)
	}
}
