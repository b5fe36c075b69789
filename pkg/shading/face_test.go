package shading

import (
	"sync"
	"testing"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/material"
)

// firstFace returns the first face of mesh name
func firstFace(t *testing.T, scene *geometry.Scene, m *material.Material) *geometry.Face {
	t.Helper()
	var face *geometry.Face
	scene.ForEachFace(func(f *geometry.Face) {
		if face == nil && f.Material == m {
			face = f
		}
	})
	if face == nil {
		t.Fatal("Expected the scene to hold a face with the material")
	}
	return face
}

func TestFaceLight(t *testing.T) {
	blocker := func() *geometry.Mesh {
		return geometry.NewQuadMesh("blocker", core.NewVec3(-0.9, 1, -0.8), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), diffuseWhite())
	}

	tests := []struct {
		name      string
		emit      float64
		withBlock bool
		expected  float64
	}{
		{"lit", 0, false, 1},
		{"shadowed", 0, true, 0},
		{"emitting", 0.5, false, 1.5},
		{"emitting in shadow", 0.5, true, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			floor := diffuseWhite()
			floor.Emit = tt.emit
			var extra []*geometry.Mesh
			if tt.withBlock {
				extra = append(extra, blocker())
			}
			scene := floorScene(t, floor, extra...)
			scene.AddLamp(overheadLamp())
			rc, _ := newContext(t, scene)

			light := FaceLight(rc)
			got := light(firstFace(t, scene, floor), core.NewVec3(0.3, 0, 0.2), core.NewVec3(0, 1, 0))
			if !vecNear(got, core.Splat(tt.expected), 1e-9) {
				t.Errorf("Expected face light %f, got %v", tt.expected, got)
			}
		})
	}
}

func TestFaceLight_Concurrent(t *testing.T) {
	floor := diffuseWhite()
	scene := floorScene(t, floor)
	scene.AddLamp(overheadLamp())
	rc, _ := newContext(t, scene)
	light := FaceLight(rc)
	face := firstFace(t, scene, floor)

	const goroutines = 8
	results := make([]core.Vec3, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				results[i] = light(face, core.NewVec3(0.3, 0, 0.2), core.NewVec3(0, 1, 0))
			}
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if !vecNear(got, core.Splat(1), 1e-9) {
			t.Errorf("Expected goroutine %d to see face light 1, got %v", i, got)
		}
	}
}
