package geometry

import (
	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/material"
)

// FaceRef identifies one face of one instance
type FaceRef struct {
	Instance int32
	Index    int32
}

// NoFace is the zero reference used when nothing should be excluded
var NoFace = FaceRef{Instance: -1, Index: -1}

// Valid reports whether the reference points at a face
func (r FaceRef) Valid() bool {
	return r.Instance >= 0 && r.Index >= 0
}

// Face is a world-space triangle or quad
type Face struct {
	Ref      FaceRef
	V        [4]core.Vec3 // vertices, counter-clockwise seen from the front
	N        [4]core.Vec3 // vertex normals
	UV       [4]core.Vec2
	Count    int  // 3 or 4
	Smooth   bool // interpolate vertex normals
	HasUV    bool
	Normal   core.Vec3 // geometric normal
	Material *material.Material

	area   float64
	center core.Vec3
	bbox   core.AABB
}

// newFace computes the cached normal, area, center and bounds. Quads are
// treated as the two triangles (0,1,2) and (0,2,3).
func newFace(ref FaceRef, verts []core.Vec3, mat *material.Material) Face {
	f := Face{Ref: ref, Count: len(verts), Material: mat}
	copy(f.V[:], verts)

	e1 := f.V[1].Subtract(f.V[0])
	e2 := f.V[2].Subtract(f.V[0])
	cross := e1.Cross(e2)
	f.area = 0.5 * cross.Length()
	if f.Count == 4 {
		e3 := f.V[3].Subtract(f.V[0])
		second := e2.Cross(e3)
		f.area += 0.5 * second.Length()
		cross = cross.Add(second)
	}
	f.Normal = cross.Normalize()

	sum := core.Vec3{}
	for i := 0; i < f.Count; i++ {
		sum = sum.Add(f.V[i])
		f.N[i] = f.Normal
	}
	f.center = sum.Multiply(1 / float64(f.Count))
	f.bbox = core.NewAABBFromPoints(f.V[:f.Count]...)
	return f
}

// Vertices returns the face corners
func (f *Face) Vertices() []core.Vec3 {
	return f.V[:f.Count]
}

// Area returns the surface area of the face
func (f *Face) Area() float64 {
	return f.area
}

// Center returns the vertex average
func (f *Face) Center() core.Vec3 {
	return f.center
}

// BoundingBox returns the axis-aligned bounds of the face
func (f *Face) BoundingBox() core.AABB {
	return f.bbox
}

// IsQuad reports whether the face has four corners
func (f *Face) IsQuad() bool {
	return f.Count == 4
}

// Corners returns the vertex indices of the triangle a hit landed in
func Corners(second bool) [3]int {
	if second {
		return [3]int{0, 2, 3}
	}
	return [3]int{0, 1, 2}
}

// Point returns the position for barycentric u, v in the given sub-triangle
func (f *Face) Point(u, v float64, second bool) core.Vec3 {
	c := Corners(second)
	w := 1 - u - v
	return f.V[c[0]].Multiply(w).Add(f.V[c[1]].Multiply(u)).Add(f.V[c[2]].Multiply(v))
}

// SmoothNormal interpolates the vertex normals, falling back to the
// geometric normal for flat faces
func (f *Face) SmoothNormal(u, v float64, second bool) core.Vec3 {
	if !f.Smooth {
		return f.Normal
	}
	c := Corners(second)
	w := 1 - u - v
	return f.N[c[0]].Multiply(w).Add(f.N[c[1]].Multiply(u)).Add(f.N[c[2]].Multiply(v)).Normalize()
}

// TexCoord interpolates the vertex UVs. Faces without UVs use the
// barycentric coordinates themselves.
func (f *Face) TexCoord(u, v float64, second bool) core.Vec2 {
	if !f.HasUV {
		return core.NewVec2(u, v)
	}
	c := Corners(second)
	w := 1 - u - v
	return f.UV[c[0]].Multiply(w).Add(f.UV[c[1]].Multiply(u)).Add(f.UV[c[2]].Multiply(v))
}

// Intersect tests the ray against the face with the Möller-Trumbore
// algorithm. For quads the second triangle is tried when the first misses.
func (f *Face) Intersect(ray core.Ray, tMin, tMax float64) (t, u, v float64, second, ok bool) {
	t, u, v, ok = intersectTriangle(ray, f.V[0], f.V[1], f.V[2], tMin, tMax)
	if ok || f.Count < 4 {
		return t, u, v, false, ok
	}
	t, u, v, ok = intersectTriangle(ray, f.V[0], f.V[2], f.V[3], tMin, tMax)
	return t, u, v, true, ok
}

func intersectTriangle(ray core.Ray, v0, v1, v2 core.Vec3, tMin, tMax float64) (float64, float64, float64, bool) {
	const epsilon = 1e-12

	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// ray parallel to the triangle plane
	if a > -epsilon && a < epsilon {
		return 0, 0, 0, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, 0, 0, false
	}

	t := f * edge2.Dot(q)
	if t < tMin || t > tMax {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
