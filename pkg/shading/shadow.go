package shading

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/lights"
	"github.com/df07/go-gi-shading/pkg/material"
)

// minTransmission ends a transparent shadow ray once it is this dark
const minTransmission = 1e-4

// RayShadow traces shadow rays from p toward the lamp and returns the
// fraction of its light that gets through, 1 being fully lit. Area lamps
// and point or spot lamps with a soft size average one ray per jitter
// sample; other lamps trace a single ray. x and y pick the dithered copy
// of the jitter table.
func RayShadow(rc *RenderContext, tc *ThreadContext, x, y int, p, n core.Vec3, exclude geometry.FaceRef, lamp *lights.Lamp) core.Vec3 {
	if lamp.Type == lights.LampSun {
		dir := lamp.Direction.Negate()
		return transmission(rc, tc, p, n, dir, math.Inf(1), exclude, lamp.TransparentShadow)
	}

	offsets := lamp.Jitter(x, y)
	if len(offsets) == 0 {
		return shadowTo(rc, tc, p, n, lamp.Position, exclude, lamp.TransparentShadow)
	}

	var sum core.Vec3
	for _, off := range offsets {
		target := lamp.SamplePosition(off, p)
		sum = sum.Add(shadowTo(rc, tc, p, n, target, exclude, lamp.TransparentShadow))
	}
	return sum.Multiply(1 / float64(len(offsets)))
}

func shadowTo(rc *RenderContext, tc *ThreadContext, p, n, target core.Vec3, exclude geometry.FaceRef, transparent bool) core.Vec3 {
	d := target.Subtract(p)
	dist := d.Length()
	if dist == 0 {
		return core.Splat(1)
	}
	return transmission(rc, tc, p, n, d.Multiply(1/dist), dist, exclude, transparent)
}

// transmission follows a shadow ray. Opaque casters block it; with
// transparent shadows, transmissive surfaces tint and dim it and the ray
// continues behind them up to ShadowDepth surfaces.
func transmission(rc *RenderContext, tc *ThreadContext, p, n, dir core.Vec3, maxDist float64, exclude geometry.FaceRef, transparent bool) core.Vec3 {
	bvh := rc.Scene.Intersector()
	origin := geometry.OffsetOrigin(p, n, dir)
	ray := core.NewRay(origin, dir)
	tc.Stats.ShadowRays++

	if !transparent {
		if bvh.IntersectAny(ray, maxDist, exclude) {
			return core.Vec3{}
		}
		return core.Splat(1)
	}

	tr := core.Splat(1)
	for crossed := 0; ; crossed++ {
		hit, ok := bvh.Intersect(ray, maxDist, exclude, geometry.HitShadow)
		if !ok {
			return tr
		}
		m := hit.Face.Material
		if crossed >= rc.ShadowDepth || m == nil || !m.Has(material.ModeRayTransparent) || m.Alpha >= 1 {
			return core.Vec3{}
		}

		filter := core.Splat(1).Lerp(m.Color, m.Filter)
		tr = tr.MultiplyVec(filter).Multiply(1 - m.Alpha)
		if tr.MaxComponent() < minTransmission {
			return core.Vec3{}
		}

		ray = core.NewRay(ray.At(hit.Distance), dir)
		maxDist -= hit.Distance
		exclude = hit.Face.Ref
		tc.Stats.ShadowRays++
	}
}
