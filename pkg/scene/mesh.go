package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/loaders"
	"github.com/df07/go-gi-shading/pkg/material"
)

// meshHeight is the height a loaded mesh is scaled to
const meshHeight = 2.0

// NewMeshScene loads assets.Mesh and stands it on a floor, scaled to a
// fixed height whatever units the file uses
func NewMeshScene(info SceneInfo, assets Assets) (*Scene, error) {
	if assets.Mesh == "" {
		return nil, fmt.Errorf("%w: the mesh scene needs a PLY file", ErrMissingAsset)
	}

	base := strings.TrimSuffix(filepath.Base(assets.Mesh), filepath.Ext(assets.Mesh))
	info.Name = titleCase(base)

	s := newScene(info, lookFrom(core.NewVec3(0, 2.2, 6), core.NewVec3(0, 1, 0), 40))

	clay := material.NewMaterial("clay", core.NewVec3(0.75, 0.6, 0.45))
	clay.Specular = 0.25
	mesh, err := loaders.LoadPLY(assets.Mesh, base, clay)
	if err != nil {
		return nil, err
	}
	transform, err := fitTransform(mesh, meshHeight)
	if err != nil {
		return nil, err
	}
	s.Geometry.AddInstance(mesh, transform)

	floor := material.NewLambertian(core.NewVec3(0.7, 0.7, 0.7))
	floor.Name = "floor"
	s.AddGround(core.Vec3{}, 12, 24, floor)
	s.AddAreaLight(core.NewVec3(2, 6, 3), core.NewVec3(-0.3, -1, -0.5), 2.5, core.Splat(1), 1.5)

	return s, nil
}

// fitTransform scales mesh uniformly to the given height and moves it so
// that it stands on y=0 centered on the Y axis
func fitTransform(mesh *geometry.Mesh, height float64) (mgl64.Mat4, error) {
	if len(mesh.Vertices) == 0 {
		return mgl64.Ident4(), fmt.Errorf("%w: mesh %q has no vertices", ErrMissingAsset, mesh.Name)
	}
	box := core.NewAABBFromPoints(mesh.Vertices...)
	size := box.Max.Subtract(box.Min)
	if size.Y <= 0 {
		size.Y = max(size.X, size.Z)
	}
	if size.Y <= 0 {
		return mgl64.Ident4(), fmt.Errorf("%w: mesh %q has no extent", ErrMissingAsset, mesh.Name)
	}

	scale := height / size.Y
	cx := (box.Min.X + box.Max.X) / 2
	cz := (box.Min.Z + box.Max.Z) / 2
	return mgl64.Scale3D(scale, scale, scale).
		Mul4(mgl64.Translate3D(-cx, -box.Min.Y, -cz)), nil
}
