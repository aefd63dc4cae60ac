// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package demo

import (
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/frostogre/frost/engine"
)

// Asset sub-directories registered under each asset root.
var assetDirs = [...]string{
	"meshes",
	"materials",
	"materials/scripts",
	"materials/textures",
}

// Names used by the full scene.
const (
	PlayerMesh     = "ninja.mesh"
	GroundMesh     = "ground"
	GroundMaterial = "Ogre/Terrain"
)

func (a *App) setupMinimal() error {
	sm, err := a.root.CreateSceneManager(engine.SceneGeneric, "")
	if err != nil {
		return err
	}
	a.scene = sm
	cam, err := sm.CreateCamera("cam")
	if err != nil {
		return err
	}
	vp, err := a.target.AddViewport(cam)
	if err != nil {
		return err
	}
	vp.SetBackgroundColour(engine.Red)
	return nil
}

func (a *App) setupFull() error {
	rg := a.root.ResourceGroups()
	for _, root := range a.cfg.AssetRoots {
		for _, dir := range assetDirs {
			if err := rg.AddResourceLocation(filepath.Join(root, filepath.FromSlash(dir)), engine.LocationFileSystem, engine.DefaultGroup); err != nil {
				return err
			}
		}
	}
	if err := rg.InitialiseAllResourceGroups(); err != nil {
		return err
	}

	sm, err := a.root.CreateSceneManager(engine.SceneGeneric, "")
	if err != nil {
		return err
	}
	a.scene = sm
	sm.SetShadowTechnique(engine.ShadowTextureModulative)
	sm.SetShadowTextureSize(1024)
	sm.SetAmbientLight(engine.RGB(0.5, 0.5, 0.5))
	root := sm.RootSceneNode()

	light, err := sm.CreateLight("MainLight")
	if err != nil {
		return err
	}
	light.SetType(engine.LightDirectional)
	light.SetDirection(mgl32.Vec3{0.55, -0.3, 0.75}.Normalize())
	light.SetDiffuseColour(engine.White)
	light.SetSpecularColour(engine.RGB(0.25, 0.25, 0))
	if err := root.AttachObject(light); err != nil {
		return err
	}

	player, err := root.CreateChildSceneNode("PlayerNode", mgl32.Vec3{})
	if err != nil {
		return err
	}
	player.Yaw(mgl32.DegToRad(180))
	ninja, err := sm.CreateEntity("Ninja", PlayerMesh)
	if err != nil {
		return err
	}
	ninja.SetCastShadows(true)
	if err := player.AttachObject(ninja); err != nil {
		return err
	}

	cam, err := sm.CreateCamera("PlayerCam")
	if err != nil {
		return err
	}
	camNode, err := root.CreateChildSceneNode("CameraNode", mgl32.Vec3{0, 300, 500})
	if err != nil {
		return err
	}
	camNode.Pitch(mgl32.DegToRad(-30))
	if err := camNode.AttachObject(cam); err != nil {
		return err
	}
	cam.SetNearClipDistance(5)
	cam.SetFarClipDistance(1500)

	vp, err := a.target.AddViewport(cam)
	if err != nil {
		return err
	}
	vp.SetBackgroundColour(engine.Black)
	cam.SetAspectRatio(float32(vp.ActualWidth()) / float32(vp.ActualHeight()))

	if _, err := a.root.Meshes().CreatePlane(GroundMesh, engine.DefaultGroup, &engine.PlaneDesc{
		Plane:        engine.Plane{Normal: engine.UnitY},
		Width:        500,
		Height:       500,
		XSegments:    32,
		YSegments:    32,
		Normals:      true,
		TexCoordSets: 1,
		UTile:        5,
		VTile:        5,
		Up:           engine.UnitZ,
	}); err != nil {
		return err
	}
	ground, err := sm.CreateEntity("GroundEntity", GroundMesh)
	if err != nil {
		return err
	}
	if err := ground.SetMaterialName(GroundMaterial); err != nil {
		return err
	}
	ground.SetCastShadows(false)
	groundNode, err := root.CreateChildSceneNode("GroundNode", mgl32.Vec3{})
	if err != nil {
		return err
	}
	if err := groundNode.AttachObject(ground); err != nil {
		return err
	}
	a.log.Info("scene ready", "scene", sm.Name(), "shadows", sm.ShadowTechnique())
	return nil
}
