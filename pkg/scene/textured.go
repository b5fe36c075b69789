package scene

import (
	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/loaders"
	"github.com/df07/go-gi-shading/pkg/material"
)

// NewTexturedScene shows image textures mapped by UV on a floor, a sphere
// and an upright panel. The panel shows assets.Texture when set and a
// checkerboard otherwise.
func NewTexturedScene(info SceneInfo, assets Assets) (*Scene, error) {
	s := newScene(info, lookFrom(core.NewVec3(0, 2, 8), core.NewVec3(0, 1, 0), 45))

	var picture material.ColorSource
	if assets.Texture != "" {
		tex, err := loaders.LoadTexture(assets.Texture, assets.MaxTextureSize)
		if err != nil {
			return nil, err
		}
		tex.Bilinear = true
		picture = tex
	} else {
		picture = material.NewCheckerboardTexture(256, 256, 32, core.NewVec3(0.9, 0.9, 0.9), core.NewVec3(0.2, 0.2, 0.8))
	}

	floor := material.NewLambertian(core.Splat(1))
	floor.Name = "floor"
	floor.Texture = material.NewCheckerboardTexture(512, 512, 32, core.NewVec3(0.8, 0.8, 0.8), core.NewVec3(0.3, 0.3, 0.3))
	s.AddGround(core.Vec3{}, 12, 24, floor)

	ball := material.NewMaterial("gradient", core.Splat(1))
	ball.Texture = material.NewGradientTexture(256, 256, core.NewVec3(1, 0.3, 0.1), core.NewVec3(0.1, 0.3, 1))
	ball.Specular = 0.3
	s.AddSphere("ball", core.NewVec3(-1.6, 1, 0.5), 1, ball)

	panel := material.NewLambertian(core.Splat(1))
	panel.Name = "picture"
	panel.Texture = picture
	s.Geometry.AddMesh(geometry.NewQuadMesh("panel", core.NewVec3(0.2, 0.2, -0.5), core.NewVec3(2.4, 0, 0), core.NewVec3(0, 2.4, 0), panel))

	s.AddAreaLight(core.NewVec3(0, 5, 4), core.NewVec3(0, -1, -0.6), 2, core.Splat(1), 1.5)
	return s, nil
}
