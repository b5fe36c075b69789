package scene

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/lights"
	"github.com/df07/go-gi-shading/pkg/material"
)

// NewTranslucentScene creates a skin like sphere lit by a spot from behind
// and a dim hemi fill from the front. Light bleeding through the rim comes
// from the scatter tree.
func NewTranslucentScene(info SceneInfo, _ Assets) (*Scene, error) {
	s := newScene(info, lookFrom(core.NewVec3(0, 1.6, 6), core.NewVec3(0, 1, 0), 35))
	s.World.Horizon = core.NewVec3(0.1, 0.1, 0.12)
	s.World.Zenith = core.NewVec3(0.05, 0.05, 0.08)

	floor := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	floor.Name = "floor"
	s.AddGround(core.Vec3{}, 10, 20, floor)

	skin := material.NewMaterial("skin", core.NewVec3(0.9, 0.7, 0.6))
	skin.Specular = 0.2
	skin.Hardness = 30
	skin.SSSColor = core.NewVec3(0.9, 0.6, 0.5)
	skin.SSSRadius = core.NewVec3(3.67, 1.37, 0.68)
	skin.SSSScale = 0.1
	skin.SSSError = 0.05
	skin.SSSIOR = 1.3
	skin.SSSFront = 1.5
	skin.SSSBack = 2
	skin.Mode |= material.ModeSubsurface
	s.AddSphere("ball", core.NewVec3(0, 1, 0), 1, skin)

	back := lights.NewSpotLamp(core.NewVec3(0, 2.5, -4), core.NewVec3(0, -0.3, 1), core.NewVec3(1, 0.9, 0.8), 2, math.Pi/4, 0.2)
	back.Distance = 5
	s.Geometry.AddLamp(back)

	fill := lights.NewHemiLamp(core.NewVec3(0, -0.5, -1), core.NewVec3(0.6, 0.7, 1), 0.3)
	fill.Shadow = lights.ShadowNone
	s.Geometry.AddLamp(fill)

	return s, nil
}
