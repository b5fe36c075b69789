package scene

import (
	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/lights"
	"github.com/df07/go-gi-shading/pkg/material"
)

// NewGlassScene creates glass and mirror spheres on a checker floor. The
// floor pattern is seen through refraction and in reflections, and shadow
// rays pass through the glass.
func NewGlassScene(info SceneInfo, _ Assets) (*Scene, error) {
	s := newScene(info, lookFrom(core.NewVec3(0, 3, 7), core.NewVec3(0, 0.8, 0), 40))

	floor := material.NewLambertian(core.Splat(1))
	floor.Name = "checker"
	floor.Texture = material.NewCheckerTexture(1, core.NewVec3(0.9, 0.9, 0.85), core.NewVec3(0.15, 0.15, 0.2))
	floor.TexCoords = material.TexCoordGlobal
	s.AddGround(core.Vec3{}, 16, 32, floor)

	glass := material.NewGlass(1.5)
	s.AddSphere("glass", core.NewVec3(-1.2, 1, 0), 1, glass)

	tinted := material.NewGlass(1.33)
	tinted.Name = "tinted"
	tinted.Color = core.NewVec3(0.6, 0.8, 1)
	tinted.Filter = 0.8
	s.AddSphere("tinted", core.NewVec3(1.4, 0.6, 1), 0.6, tinted)

	mirror := material.NewMirror(core.NewVec3(0.9, 0.85, 0.7), 0.8)
	s.AddSphere("mirror", core.NewVec3(1, 1, -1.6), 1, mirror)

	sun := lights.NewSunLamp(core.NewVec3(-0.4, -1, -0.5), core.NewVec3(1, 0.95, 0.9), 1)
	sun.TransparentShadow = true
	s.Geometry.AddLamp(sun)

	return s, nil
}
