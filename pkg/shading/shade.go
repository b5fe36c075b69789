package shading

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/material"
	"github.com/df07/go-gi-shading/pkg/occlusion"
)

// aoOffset lifts occlusion lookups off the shaded face
const aoOffset = 1e-5

// ShadeSample shades the camera ray for pixel x, y. A miss yields the sky
// with zero alpha.
func ShadeSample(rc *RenderContext, tc *ThreadContext, x, y int, ray core.Ray) ShadeResult {
	tc.Stats.Samples++
	hit, ok := rc.Scene.Intersector().Intersect(ray, math.Inf(1), geometry.NoFace, geometry.HitTraceable)
	if !ok {
		return ShadeResult{Combined: rc.World.Sky(ray.Direction), Z: math.Inf(1)}
	}

	var res ShadeResult
	if err := NewShadeInput(rc, tc, x, y).run(ray, hit, &res); err != nil {
		return ShadeResult{Combined: rc.World.Sky(ray.Direction), Z: math.Inf(1)}
	}
	return res
}

// CacheSample computes the occlusion sample for pixel x, y and stores it
// in the worker's cache. Renderers call it on the cache grid before
// shading a tile so later pixels can interpolate.
func CacheSample(rc *RenderContext, tc *ThreadContext, x, y int, ray core.Ray) {
	if rc.Occlusion == nil || !rc.UseOcclusionCache {
		return
	}
	hit, ok := rc.Scene.Intersector().Intersect(ray, math.Inf(1), geometry.NoFace, geometry.HitTraceable)
	if !ok {
		return
	}
	s := NewShadeInput(rc, tc, x, y)
	if s.SetGeometry(ray, hit) != nil || s.SetNormals() != nil {
		return
	}
	p := s.P.AddScaled(s.N, aoOffset)
	tc.Stats.AOLookups++
	tc.Cache.Store(x, y, p, s.N, rc.Occlusion.Sample(tc.Stack, s.Face.Ref, p, s.N, rc.World.Sky))
}

// ambient looks up occlusion, environment and indirect light at s. Camera
// samples go through the worker's screen space cache; deeper samples
// always do a full lookup.
func ambient(s *ShadeInput) occlusion.Sample {
	rc, tc := s.rc, s.tc
	p := s.P.AddScaled(s.N, aoOffset)

	useCache := rc.UseOcclusionCache && s.Depth == 0 && tc.Cache != nil
	if useCache {
		if cached, ok := tc.Cache.Lookup(s.X, s.Y, p, s.N); ok {
			tc.Stats.CacheHits++
			return cached
		}
	}

	tc.Stats.AOLookups++
	sample := rc.Occlusion.Sample(tc.Stack, s.Face.Ref, p, s.N, rc.World.Sky)
	if useCache && tc.Cache.IsGridPoint(s.X, s.Y) {
		tc.Cache.Store(s.X, s.Y, p, s.N, sample)
	}
	return sample
}

// shadeMaterial is the built in lighting loop: ambient and environment
// light, every lamp, subsurface scattering, then mirror and transmission
func shadeMaterial(s *ShadeInput, res *ShadeResult) {
	rc := s.rc
	m := s.Material

	res.Hit = true
	res.Normal = s.N
	res.Z = s.Distance
	res.Alpha = m.Alpha

	if m.Has(material.ModeShadeless) {
		res.Combined = s.Color
		res.Diff = s.Color
		res.Shad = s.Color
		return
	}

	base := s.Color.Multiply(m.Reflect)
	res.Emit = s.Color.Multiply(m.Emit)

	ao := 1.0
	if rc.Occlusion != nil && s.tc.Stack != nil {
		sample := ambient(s)
		ao = sample.AO
		res.Env = sample.Env.MultiplyVec(base).Multiply(m.Ambient * rc.World.EnvEnergy)
		res.Indirect = sample.Indirect.MultiplyVec(base).Multiply(rc.World.IndirectEnergy)
	} else {
		res.Env = rc.World.Ambient.MultiplyVec(base).Multiply(m.Ambient)
	}
	res.AO = core.Splat(ao)

	for _, lamp := range rc.Scene.LightsFor(m) {
		ShadeOneLight(s, lamp, res)
	}

	if rc.Occlusion != nil && rc.Passes.Has(PassAO) {
		applyOcclusion(rc.World, ao, base, res)
	}

	if m.Has(material.ModeOnlyShadow) {
		onlyShadow(res)
		return
	}

	if m.Has(material.ModeSubsurface) {
		if tree := rc.Scatter[m]; tree != nil {
			s.tc.Stats.ScatterHits++
			res.SSS = tree.Sample(s.P)
			if rc.Passes.Has(PassSubsurface) {
				res.Shad = res.SSS
				res.Diff = res.SSS
			}
		}
	}

	mirror := traceMirror(s, res)
	opacity := traceTransmission(s, res)
	if opacity >= 1 && m.Has(material.ModeRayTransparent) {
		res.Alpha = 1
	}
	res.combine(rc.Passes, mirror, opacity)
}

// applyOcclusion folds the visibility into the diffuse light
func applyOcclusion(w World, ao float64, base core.Vec3, res *ShadeResult) {
	switch w.AOMode {
	case AOAdd:
		add := base.Multiply(w.AOEnergy * ao)
		res.Diff = res.Diff.Add(add)
		res.Shad = res.Shad.Add(add)
	case AOSubtract:
		sub := base.Multiply(w.AOEnergy * (1 - ao))
		res.Diff = res.Diff.Subtract(sub).MaxVec(core.Vec3{})
		res.Shad = res.Shad.Subtract(sub).MaxVec(core.Vec3{})
	default:
		f := 1 - w.AOEnergy*(1-ao)
		res.Diff = res.Diff.Multiply(f)
		res.Shad = res.Shad.Multiply(f)
	}
}

// onlyShadow turns the sample into a shadow catcher: black, with alpha
// set to how much light the shadows removed
func onlyShadow(res *ShadeResult) {
	lit := res.Diff.Sum()
	shad := res.Shad.Sum()
	res.Alpha = 0
	if lit > 0 {
		res.Alpha = core.Clamp01(1 - shad/lit)
	}
	res.Combined = core.Vec3{}
}
