package scene

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/lights"
	"github.com/df07/go-gi-shading/pkg/material"
	"github.com/df07/go-gi-shading/pkg/renderer"
	"github.com/df07/go-gi-shading/pkg/shading"
)

var (
	ErrUnknownScene = errors.New("scene: unknown scene")
	ErrMissingAsset = errors.New("scene: missing asset")
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name        string
	Description string
	Geometry    *geometry.Scene
	Camera      renderer.CameraConfig
	World       shading.World
}

// Assets names the files a scene may load. Scenes that can fall back to
// procedural stand-ins do so for empty fields.
type Assets struct {
	Mesh           string // PLY file
	Texture        string // PNG or JPEG file
	MaxTextureSize int    // 0 keeps the image size
}

func newScene(info SceneInfo, camera renderer.CameraConfig) *Scene {
	return &Scene{
		Name:        info.Name,
		Description: info.Description,
		Geometry:    geometry.NewScene(),
		Camera:      camera,
		World:       shading.DefaultWorld(),
	}
}

// lookFrom is a camera with a Y up vector
func lookFrom(center, lookAt core.Vec3, vfov float64) renderer.CameraConfig {
	return renderer.CameraConfig{
		Center: center,
		LookAt: lookAt,
		Up:     core.NewVec3(0, 1, 0),
		VFov:   vfov,
	}
}

// AddGround adds a square grid floor of the given size centered at center.
// The grid keeps the occlusion tree's faces small near the objects on it.
func (s *Scene) AddGround(center core.Vec3, size float64, divisions int, mat *material.Material) *geometry.Instance {
	mesh := geometry.NewGridMesh("ground", size, divisions, mat)
	return s.Geometry.AddInstance(mesh, mgl64.Translate3D(center.X, center.Y, center.Z))
}

// AddSphere adds a sphere mesh
func (s *Scene) AddSphere(name string, center core.Vec3, radius float64, mat *material.Material) *geometry.Instance {
	return s.Geometry.AddMesh(geometry.NewSphereMesh(name, center, radius, 32, 16, false, mat))
}

// AddAreaLight adds a square area lamp at pos shining along dir
func (s *Scene) AddAreaLight(pos, dir core.Vec3, size float64, color core.Vec3, energy float64) *lights.Lamp {
	u := core.NewVec3(1, 0, 0)
	if d := dir.Normalize(); d.X > 0.9 || d.X < -0.9 {
		u = core.NewVec3(0, 0, 1)
	}
	lamp := lights.NewAreaLamp(pos, dir, u, size, size, color, energy, 3)
	lamp.Dither = true
	s.Geometry.AddLamp(lamp)
	return lamp
}

// FaceCount returns the number of faces over all instances
func (s *Scene) FaceCount() int {
	count := 0
	for _, in := range s.Geometry.Instances {
		count += len(in.Mesh.Faces)
	}
	return count
}
