package geometry

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/material"
)

// HitMode selects which faces a ray may stop at
type HitMode int

const (
	// HitNearest returns the closest face in front of the ray
	HitNearest HitMode = iota
	// HitSkipBackfaces ignores faces whose normal points along the ray
	HitSkipBackfaces
	// HitTraceable ignores faces whose material is invisible to traced rays
	HitTraceable
	// HitShadow ignores faces whose material does not cast shadows
	HitShadow
)

// Hit describes a ray-face intersection
type Hit struct {
	Face     *Face
	U, V     float64 // barycentric coordinates inside the hit triangle
	Second   bool    // hit the second triangle of a quad
	Distance float64 // ray parameter of the hit
}

// bvhNode represents a node in the bounding volume hierarchy
type bvhNode struct {
	bounds core.AABB
	left   *bvhNode
	right  *bvhNode
	faces  []int32 // leaf face indices, nil for internal nodes
}

// BVH accelerates ray queries against the world-space faces of a scene
type BVH struct {
	root  *bvhNode
	faces []Face
}

// leafThreshold: if we have this many or fewer faces, store them in a leaf node
const leafThreshold = 8

// NewBVH builds a hierarchy over faces. The slice is referenced, not copied.
func NewBVH(faces []Face) *BVH {
	b := &BVH{faces: faces}
	if len(faces) == 0 {
		return b
	}
	indices := make([]int32, len(faces))
	for i := range indices {
		indices[i] = int32(i)
	}
	b.root = b.build(indices)
	return b
}

// build recursively splits the longest axis at its midpoint
func (b *BVH) build(indices []int32) *bvhNode {
	bounds := core.EmptyAABB()
	centroids := core.EmptyAABB()
	for _, i := range indices {
		bounds = bounds.Union(b.faces[i].BoundingBox())
		centroids = centroids.Extend(b.faces[i].Center())
	}

	if len(indices) <= leafThreshold {
		return &bvhNode{bounds: bounds, faces: indices}
	}

	axis := centroids.LongestAxis()
	lo, hi := centroids.Min.Index(axis), centroids.Max.Index(axis)
	if hi <= lo {
		return &bvhNode{bounds: bounds, faces: indices}
	}
	split := (lo + hi) * 0.5

	// partition in place
	l, r := 0, len(indices)-1
	for l <= r {
		if b.faces[indices[l]].Center().Index(axis) < split {
			l++
		} else {
			indices[l], indices[r] = indices[r], indices[l]
			r--
		}
	}

	if l == 0 || l == len(indices) {
		return &bvhNode{bounds: bounds, faces: indices}
	}

	return &bvhNode{
		bounds: bounds,
		left:   b.build(indices[:l]),
		right:  b.build(indices[l:]),
	}
}

// Bounds returns the bounding box of all faces
func (b *BVH) Bounds() core.AABB {
	if b.root == nil {
		return core.EmptyAABB()
	}
	return b.root.bounds
}

func accepts(f *Face, ray core.Ray, mode HitMode) bool {
	switch mode {
	case HitSkipBackfaces:
		return f.Normal.Dot(ray.Direction) < 0
	case HitTraceable:
		return f.Material == nil || f.Material.Has(material.ModeTraceable)
	case HitShadow:
		return f.Material == nil || f.Material.Has(material.ModeCastShadow)
	default:
		return true
	}
}

// Intersect returns the nearest face hit by the ray within maxDist,
// ignoring the excluded face
func (b *BVH) Intersect(ray core.Ray, maxDist float64, exclude FaceRef, mode HitMode) (Hit, bool) {
	var hit Hit
	if b.root == nil {
		return hit, false
	}
	found := false
	closest := maxDist
	b.intersectNode(b.root, ray, exclude, mode, &closest, &hit, &found, false)
	return hit, found
}

// IntersectAny reports whether any shadow-casting face blocks the ray
// before maxDist
func (b *BVH) IntersectAny(ray core.Ray, maxDist float64, exclude FaceRef) bool {
	if b.root == nil {
		return false
	}
	var hit Hit
	found := false
	closest := maxDist
	b.intersectNode(b.root, ray, exclude, HitShadow, &closest, &hit, &found, true)
	return found
}

func (b *BVH) intersectNode(node *bvhNode, ray core.Ray, exclude FaceRef, mode HitMode, closest *float64, hit *Hit, found *bool, anyHit bool) {
	if !node.bounds.Hit(ray, 0, *closest) {
		return
	}

	if node.faces != nil {
		for _, i := range node.faces {
			f := &b.faces[i]
			if f.Ref == exclude || !accepts(f, ray, mode) {
				continue
			}
			t, u, v, second, ok := f.Intersect(ray, 0, *closest)
			if !ok || t <= 0 {
				continue
			}
			*closest = t
			*hit = Hit{Face: f, U: u, V: v, Second: second, Distance: t}
			*found = true
			if anyHit {
				return
			}
		}
		return
	}

	b.intersectNode(node.left, ray, exclude, mode, closest, hit, found, anyHit)
	if anyHit && *found {
		return
	}
	b.intersectNode(node.right, ray, exclude, mode, closest, hit, found, anyHit)
}

// BVHStats describes the shape of a built hierarchy
type BVHStats struct {
	TotalNodes int
	LeafNodes  int
	MaxDepth   int
	AvgDepth   float64
	TotalFaces int
}

// Stats walks the hierarchy and collects node counts and depths
func (b *BVH) Stats() BVHStats {
	var stats BVHStats
	if b.root == nil {
		return stats
	}
	collectStats(b.root, 0, &stats)
	if stats.LeafNodes > 0 {
		stats.AvgDepth /= float64(stats.LeafNodes)
	}
	return stats
}

func collectStats(node *bvhNode, depth int, stats *BVHStats) {
	stats.TotalNodes++
	stats.MaxDepth = max(stats.MaxDepth, depth)

	if node.faces != nil {
		stats.LeafNodes++
		stats.TotalFaces += len(node.faces)
		stats.AvgDepth += float64(depth)
		return
	}
	collectStats(node.left, depth+1, stats)
	collectStats(node.right, depth+1, stats)
}

// rayEpsilon offsets secondary ray origins off the surface they leave
const rayEpsilon = 1e-6

// OffsetOrigin nudges p along n, away from the side the direction points
// to, so a secondary ray does not hit the surface it starts on
func OffsetOrigin(p, n, dir core.Vec3) core.Vec3 {
	scale := rayEpsilon * max(1, math.Abs(p.X), math.Abs(p.Y), math.Abs(p.Z))
	if n.Dot(dir) < 0 {
		return p.AddScaled(n, -scale)
	}
	return p.AddScaled(n, scale)
}
