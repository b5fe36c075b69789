package scene

import (
	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/material"
)

// NewOccluderScene creates a sphere resting on a floor under a square
// area light. The floor darkens around the contact point where the sphere
// hides most of the sky.
func NewOccluderScene(info SceneInfo, _ Assets) (*Scene, error) {
	s := newScene(info, lookFrom(core.NewVec3(0, 2.5, 7), core.NewVec3(0, 0.8, 0), 40))

	floor := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.8))
	floor.Name = "floor"
	ball := material.NewMaterial("ball", core.NewVec3(0.8, 0.3, 0.2))
	ball.Hardness = 80

	s.AddGround(core.Vec3{}, 12, 24, floor)
	s.AddSphere("ball", core.NewVec3(0, 1, 0), 1, ball)
	s.AddAreaLight(core.NewVec3(1.5, 5, 1), core.NewVec3(-0.3, -1, -0.2), 2, core.Splat(1), 1.5)

	return s, nil
}
