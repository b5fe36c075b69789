package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/material"
)

// cornellScale maps the classic 555 unit box to scene units
const cornellScale = 0.01

// NewCornellScene creates a classic Cornell box scene with quad walls and
// area lighting. Walls face into the box.
func NewCornellScene(info SceneInfo, _ Assets) (*Scene, error) {
	s := newScene(info, lookFrom(core.NewVec3(2.78, 2.78, -8), core.NewVec3(2.78, 2.78, 0), 40))
	// Black background
	s.World.Horizon = core.Vec3{}
	s.World.Zenith = core.Vec3{}

	// Create materials
	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	white.Name = "white"
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	red.Name = "red"
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))
	green.Name = "green"

	// Cornell box dimensions (standard 555x555x555 units)
	boxSize := 555.0
	box := mgl64.Scale3D(cornellScale, cornellScale, cornellScale)

	wall := func(name string, corner, u, v core.Vec3, mat *material.Material) {
		s.Geometry.AddInstance(subdivide(geometry.NewQuadMesh(name, corner, u, v, mat), 8), box)
	}
	// Floor - XZ plane at y=0
	wall("floor", core.Vec3{}, core.NewVec3(0, 0, boxSize), core.NewVec3(boxSize, 0, 0), white)
	// Ceiling - XZ plane at y=boxSize
	wall("ceiling", core.NewVec3(0, boxSize, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), white)
	// Back wall - XY plane at z=boxSize
	wall("back", core.NewVec3(0, 0, boxSize), core.NewVec3(0, boxSize, 0), core.NewVec3(boxSize, 0, 0), white)
	// Left wall (red) - YZ plane at x=0
	wall("left", core.Vec3{}, core.NewVec3(0, boxSize, 0), core.NewVec3(0, 0, boxSize), red)
	// Right wall (green) - YZ plane at x=boxSize
	wall("right", core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), core.NewVec3(0, boxSize, 0), green)

	// Left sphere (smaller, mirror)
	mirror := material.NewMirror(core.NewVec3(0.8, 0.8, 0.9), 0.9)
	s.AddSphere("mirror", core.NewVec3(1.85, 0.825, 1.69), 0.825, mirror)
	// Right sphere (larger, glass)
	s.AddSphere("glass", core.NewVec3(3.70, 0.90, 3.51), 0.90, material.NewGlass(1.5))

	// Ceiling light just below the ceiling
	lamp := s.AddAreaLight(core.NewVec3(2.775, 5.54, 2.775), core.NewVec3(0, -1, 0), 1.3, core.NewVec3(1, 0.95, 0.85), 3)
	lamp.Distance = 3

	return s, nil
}

// subdivide splits every quad of mesh into n x n quads. The occlusion tree
// approximates each face by a disc, so large walls need smaller faces.
func subdivide(mesh *geometry.Mesh, n int) *geometry.Mesh {
	out := geometry.NewMesh(mesh.Name, mesh.Materials[0])
	for _, face := range mesh.Faces {
		if len(face) != 4 {
			continue
		}
		p0, p1, p3 := mesh.Vertices[face[0]], mesh.Vertices[face[1]], mesh.Vertices[face[3]]
		u, v := p1.Subtract(p0), p3.Subtract(p0)
		base := len(out.Vertices)
		for j := 0; j <= n; j++ {
			for i := 0; i <= n; i++ {
				fu, fv := float64(i)/float64(n), float64(j)/float64(n)
				out.AddVertex(p0.Add(u.Multiply(fu)).Add(v.Multiply(fv)))
				out.UVs = append(out.UVs, core.NewVec2(fu, fv))
			}
		}
		row := n + 1
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				a := base + j*row + i
				out.Faces = append(out.Faces, []int{a, a + 1, a + row + 1, a + row})
			}
		}
	}
	return out
}
