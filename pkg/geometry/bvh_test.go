package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/lights"
	"github.com/df07/go-gi-shading/pkg/material"
)

// randomDirection returns a uniformly distributed unit vector
func randomDirection(rng *rand.Rand) core.Vec3 {
	z := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	r := math.Sqrt(1 - z*z)
	return core.NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

func randomScene(t *testing.T, count int, rng *rand.Rand) *Scene {
	t.Helper()
	mesh := NewMesh("soup", material.NewLambertian(core.Splat(0.5)))
	for i := 0; i < count; i++ {
		c := core.NewVec3(rng.Float64()*10-5, rng.Float64()*10-5, rng.Float64()*10-5)
		base := len(mesh.Vertices)
		for k := 0; k < 3; k++ {
			mesh.AddVertex(c.Add(core.NewVec3(rng.Float64()-0.5, rng.Float64()-0.5, rng.Float64()-0.5)))
		}
		if err := mesh.AddFace(base, base+1, base+2); err != nil {
			t.Fatalf("AddFace failed: %v", err)
		}
	}
	scene := NewScene()
	scene.AddMesh(mesh)
	if err := scene.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	return scene
}

func bruteForce(scene *Scene, ray core.Ray, exclude FaceRef) (Hit, bool) {
	var best Hit
	found := false
	closest := math.Inf(1)
	scene.ForEachFace(func(f *Face) {
		if f.Ref == exclude {
			return
		}
		if d, u, v, second, ok := f.Intersect(ray, 0, closest); ok && d > 0 {
			closest = d
			best = Hit{Face: f, U: u, V: v, Second: second, Distance: d}
			found = true
		}
	})
	return best, found
}

func TestBVH_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	scene := randomScene(t, 300, rng)
	bvh := scene.Intersector()

	hits := 0
	for i := 0; i < 500; i++ {
		origin := core.NewVec3(rng.Float64()*20-10, rng.Float64()*20-10, rng.Float64()*20-10)
		dir := randomDirection(rng)
		ray := core.NewRay(origin, dir)

		got, ok := bvh.Intersect(ray, math.Inf(1), NoFace, HitNearest)
		want, wantOK := bruteForce(scene, ray, NoFace)
		if ok != wantOK {
			t.Fatalf("Ray %d: BVH hit=%v, brute force hit=%v", i, ok, wantOK)
		}
		if !ok {
			continue
		}
		hits++
		if got.Face != want.Face || math.Abs(got.Distance-want.Distance) > 1e-9 {
			t.Fatalf("Ray %d: BVH hit %v at %f, brute force %v at %f",
				i, got.Face.Ref, got.Distance, want.Face.Ref, want.Distance)
		}

		// the excluded face is skipped and the next one found instead
		next, nextOK := bvh.Intersect(ray, math.Inf(1), got.Face.Ref, HitNearest)
		wantNext, wantNextOK := bruteForce(scene, ray, got.Face.Ref)
		if nextOK != wantNextOK || (nextOK && next.Face != wantNext.Face) {
			t.Fatalf("Ray %d: exclusion mismatch", i)
		}
	}
	if hits == 0 {
		t.Fatal("Expected some rays to hit the soup")
	}

	stats := bvh.Stats()
	if stats.TotalFaces != 300 {
		t.Errorf("Expected 300 faces in leaves, got %d", stats.TotalFaces)
	}
	if stats.LeafNodes < 300/leafThreshold {
		t.Errorf("Expected at least %d leaves, got %d", 300/leafThreshold, stats.LeafNodes)
	}
}

func TestBVH_Modes(t *testing.T) {
	blocker := material.NewLambertian(core.Splat(1))
	ghost := material.NewLambertian(core.Splat(1))
	ghost.Mode &^= material.ModeCastShadow | material.ModeTraceable

	scene := NewScene()
	// ghost quad at y=1 facing up, blocker quad at y=2 facing down
	scene.AddMesh(NewQuadMesh("ghost", core.NewVec3(-1, 1, 1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, -2), ghost))
	scene.AddMesh(NewQuadMesh("blocker", core.NewVec3(-1, 2, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), blocker))
	if err := scene.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	bvh := scene.Intersector()
	up := core.NewRay(core.NewVec3(0.3, 0, 0.1), core.NewVec3(0, 1, 0))

	tests := []struct {
		name string
		mode HitMode
		want string
	}{
		{"nearest", HitNearest, "ghost"},
		{"skip backfaces", HitSkipBackfaces, "blocker"},
		{"traceable", HitTraceable, "blocker"},
		{"shadow", HitShadow, "blocker"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := bvh.Intersect(up, math.Inf(1), NoFace, tt.mode)
			if !ok {
				t.Fatal("Expected a hit")
			}
			if got := scene.Instances[hit.Face.Ref.Instance].Mesh.Name; got != tt.want {
				t.Errorf("Expected to hit %s, got %s", tt.want, got)
			}
		})
	}

	if !bvh.IntersectAny(up, 3, NoFace) {
		t.Error("Expected the blocker to shadow the ray")
	}
	if bvh.IntersectAny(up, 1.5, NoFace) {
		t.Error("Expected the ghost not to cast shadows")
	}
}

func TestScene_LightsFor(t *testing.T) {
	plain := material.NewLambertian(core.Splat(1))
	grouped := material.NewLambertian(core.Splat(1))
	grouped.LightGroup = "key"
	grouped.LightGroupExclusive = true

	scene := NewScene()
	scene.AddMesh(NewQuadMesh("a", core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), plain))
	scene.AddMesh(NewQuadMesh("b", core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), grouped))

	fill := lights.NewPointLamp(core.NewVec3(0, 5, 0), core.Splat(1), 1)
	key := lights.NewPointLamp(core.NewVec3(5, 5, 0), core.Splat(1), 1)
	key.Group = "key"
	scene.AddLamp(fill)
	scene.AddLamp(key)
	if err := scene.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	if got := scene.LightsFor(grouped); len(got) != 1 || got[0] != key {
		t.Errorf("Expected only the key lamp for the grouped material, got %d lamps", len(got))
	}
	if got := scene.LightsFor(plain); len(got) != 1 || got[0] != fill {
		t.Errorf("Expected the exclusive group to be hidden from other materials, got %d lamps", len(got))
	}
}
