package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/material"
)

func TestFace_AreaNormalCenter(t *testing.T) {
	mat := material.NewLambertian(core.Splat(0.5))
	tests := []struct {
		name   string
		verts  []core.Vec3
		area   float64
		normal core.Vec3
		center core.Vec3
	}{
		{
			name:   "triangle",
			verts:  []core.Vec3{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 0, Y: 2, Z: 0}},
			area:   2,
			normal: core.NewVec3(0, 0, 1),
			center: core.NewVec3(2.0/3.0, 2.0/3.0, 0),
		},
		{
			name:   "quad",
			verts:  []core.Vec3{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 3}, {X: 2, Y: 0, Z: 3}, {X: 2, Y: 0, Z: 0}},
			area:   6,
			normal: core.NewVec3(0, 1, 0),
			center: core.NewVec3(1, 0, 1.5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFace(FaceRef{}, tt.verts, mat)
			if math.Abs(f.Area()-tt.area) > 1e-12 {
				t.Errorf("Expected area %f, got %f", tt.area, f.Area())
			}
			if f.Normal.Subtract(tt.normal).Length() > 1e-12 {
				t.Errorf("Expected normal %v, got %v", tt.normal, f.Normal)
			}
			if f.Center().Subtract(tt.center).Length() > 1e-12 {
				t.Errorf("Expected center %v, got %v", tt.center, f.Center())
			}
		})
	}
}

func TestFace_IntersectQuad(t *testing.T) {
	quad := newFace(FaceRef{}, []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(0, 1, 0),
	}, nil)

	tests := []struct {
		name   string
		origin core.Vec3
		hit    bool
		second bool
	}{
		{"first triangle", core.NewVec3(0.8, 0.2, 1), true, false},
		{"second triangle", core.NewVec3(0.2, 0.8, 1), true, true},
		{"outside", core.NewVec3(1.5, 0.5, 1), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.origin, core.NewVec3(0, 0, -1))
			dist, u, v, second, ok := quad.Intersect(ray, 0, math.Inf(1))
			if ok != tt.hit {
				t.Fatalf("Expected hit=%v, got %v", tt.hit, ok)
			}
			if !ok {
				return
			}
			if second != tt.second {
				t.Errorf("Expected second=%v, got %v", tt.second, second)
			}
			if math.Abs(dist-1) > 1e-12 {
				t.Errorf("Expected distance 1, got %f", dist)
			}
			p := quad.Point(u, v, second)
			want := core.NewVec3(tt.origin.X, tt.origin.Y, 0)
			if p.Subtract(want).Length() > 1e-9 {
				t.Errorf("Barycentric point %v does not match hit %v", p, want)
			}
		})
	}
}

func TestSphereMesh_ClosedAndOriented(t *testing.T) {
	for _, inward := range []bool{false, true} {
		mesh := NewSphereMesh("sphere", core.Vec3{}, 2, 32, 16, inward, nil)
		if err := mesh.Validate(); err != nil {
			t.Fatalf("Unexpected validation error: %v", err)
		}

		scene := NewScene()
		scene.AddMesh(mesh)
		if err := scene.Finalize(); err != nil {
			t.Fatalf("Finalize failed: %v", err)
		}

		total := 0.0
		scene.ForEachFace(func(f *Face) {
			total += f.Area()
			outward := f.Center().Normalize()
			if inward {
				outward = outward.Negate()
			}
			if f.Normal.Dot(outward) < 0.9 {
				t.Fatalf("inward=%v: face %v normal %v not oriented", inward, f.Ref, f.Normal)
			}
		})

		// polyhedral area approaches 4*pi*r^2 from below
		sphere := 4 * math.Pi * 4
		if total > sphere || total < 0.97*sphere {
			t.Errorf("inward=%v: total area %f, expected close to %f", inward, total, sphere)
		}
		if got := scene.NumFaces(); got != 32*16 {
			t.Errorf("Expected %d faces, got %d", 32*16, got)
		}
	}
}

func TestInstance_Transform(t *testing.T) {
	mesh := NewQuadMesh("quad", core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, 0, -1), nil)
	transform := mgl64.Translate3D(0, 3, 0).Mul4(mgl64.Scale3D(2, 1, 2))

	scene := NewScene()
	in := scene.AddInstance(mesh, transform)
	if err := scene.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	f := scene.Face(FaceRef{Instance: int32(in.ID), Index: 0})
	if f == nil {
		t.Fatal("Expected face for reference")
	}
	if math.Abs(f.Area()-4) > 1e-12 {
		t.Errorf("Expected scaled area 4, got %f", f.Area())
	}
	if f.V[0].Subtract(core.NewVec3(0, 3, 0)).Length() > 1e-12 {
		t.Errorf("Expected translated corner, got %v", f.V[0])
	}
	if f.Normal.Subtract(core.NewVec3(0, 1, 0)).Length() > 1e-12 {
		t.Errorf("Expected +Y normal, got %v", f.Normal)
	}

	n := in.TransformNormal(core.NewVec3(1, 1, 0).Normalize())
	expected := core.NewVec3(0.5, 1, 0).Normalize()
	if n.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected inverse transpose normal %v, got %v", expected, n)
	}
	if scene.InstanceTransform(in.ID) != transform {
		t.Error("Expected InstanceTransform to return the instance matrix")
	}
}

func TestInstance_MirrorKeepsOutwardNormals(t *testing.T) {
	mesh := NewSphereMesh("sphere", core.Vec3{}, 1, 8, 4, false, nil)
	scene := NewScene()
	scene.AddInstance(mesh, mgl64.Scale3D(-1, 1, 1))
	if err := scene.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	scene.ForEachFace(func(f *Face) {
		if f.Normal.Dot(f.Center()) <= 0 {
			t.Fatalf("Mirrored face %v points inward", f.Ref)
		}
	})
}

func TestMesh_Validate(t *testing.T) {
	mesh := NewMesh("broken", nil)
	mesh.AddVertex(core.Vec3{})
	mesh.AddVertex(core.NewVec3(1, 0, 0))

	if err := mesh.AddFace(0, 1); !errors.Is(err, ErrInvalidFace) {
		t.Errorf("Expected ErrInvalidFace, got %v", err)
	}
	if err := mesh.AddFace(0, 1, 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
	}

	mesh.Faces = append(mesh.Faces, []int{0, 1, 2})
	scene := NewScene()
	scene.AddMesh(mesh)
	if err := scene.Finalize(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Expected Finalize to reject the mesh, got %v", err)
	}
}
