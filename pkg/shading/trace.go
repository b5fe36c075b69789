package shading

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/material"
)

// TraceRay shades whatever ray hits, one recursion level below s. A miss
// returns the sky with zero alpha and an infinite distance.
func TraceRay(s *ShadeInput, ray core.Ray, transmission bool) (ShadeResult, float64) {
	rc := s.rc
	s.tc.Stats.Rays++

	exclude := geometry.NoFace
	if s.Face != nil {
		exclude = s.Face.Ref
	}
	hit, ok := rc.Scene.Intersector().Intersect(ray, math.Inf(1), exclude, geometry.HitTraceable)
	if !ok {
		return ShadeResult{Combined: rc.World.Sky(ray.Direction), Z: math.Inf(1)}, math.Inf(1)
	}

	var res ShadeResult
	if err := s.nested(transmission).run(ray, hit, &res); err != nil {
		return ShadeResult{Combined: rc.World.Sky(ray.Direction), Z: math.Inf(1)}, math.Inf(1)
	}
	return res, hit.Distance
}

// canMirror reports whether s may spawn another mirror ray
func canMirror(s *ShadeInput) bool {
	return s.MirrorDepth < min(s.Material.RayDepth, s.rc.RayDepth)
}

// canTransmit reports whether s may spawn another transmission ray
func canTransmit(s *ShadeInput) bool {
	return s.TransDepth < min(s.Material.TransDepth, s.rc.RayDepthTransmission)
}

// traceMirror fills res.Refl with the mirrored light weighted by the
// Fresnel adjusted mirror amount, and returns that amount
func traceMirror(s *ShadeInput, res *ShadeResult) float64 {
	m := s.Material
	if !m.Has(material.ModeRayMirror) || m.RayMirror <= 0 || !canMirror(s) {
		return 0
	}
	fac := m.RayMirror * m.FresnelMirrorFactor(s.View, s.N)
	if fac <= 0 {
		return 0
	}

	dir := s.Reflect
	if dir.IsZero() {
		dir = material.Reflect(s.View, s.N)
	}
	ray := core.NewRay(geometry.OffsetOrigin(s.P, s.N, dir), dir)
	traced, _ := TraceRay(s, ray, false)
	res.Refl = traced.Combined.MultiplyVec(m.MirrorColor).Multiply(fac)
	return fac
}

// traceTransmission fills res.Refr with the light coming through the
// surface, tinted by the filter color and weighted by 1-opacity. It
// returns the opacity after Fresnel, specular and distance adjustments.
func traceTransmission(s *ShadeInput, res *ShadeResult) float64 {
	m := s.Material
	opacity := m.Alpha
	if !m.Has(material.ModeRayTransparent) {
		return 1
	}
	if m.FresnelTransp != 0 {
		opacity *= m.FresnelTranspFactor(s.View, s.N)
	}
	if m.SpecTransparent > 0 {
		t := min(res.Spec.MaxComponent()*m.SpecTransparent, 1)
		opacity = (1-t)*opacity + t
	}
	if opacity >= 1 || !canTransmit(s) {
		return 1
	}

	// entering through the front divides by the index, leaving multiplies
	eta := m.IOR
	if !s.Flipped && m.IOR > 0 {
		eta = 1 / m.IOR
	}
	dir, ok := material.Refract(s.View, s.N, eta)
	if !ok {
		dir = material.Reflect(s.View, s.N)
	}

	ray := core.NewRay(geometry.OffsetOrigin(s.P, s.N, dir), dir)
	traced, dist := TraceRay(s, ray, true)
	if !s.Flipped {
		opacity = ShadeByTransmission(m, opacity, dist)
	}

	filter := core.Splat(1).Lerp(s.Color, m.Filter)
	res.Refr = traced.Combined.MultiplyVec(filter).Multiply(1 - opacity)
	res.Alpha = opacity + (1-opacity)*traced.Alpha
	return opacity
}

// ShadeByTransmission makes a transmissive material more opaque the
// farther light travels inside it. dist is the distance to the surface
// where the refracted ray leaves; beyond TxLimit the material is opaque.
func ShadeByTransmission(m *material.Material, opacity, dist float64) float64 {
	if m.TxLimit <= 0 {
		return opacity
	}
	p := 1.0
	if dist < m.TxLimit {
		p = dist / m.TxLimit
		if m.TxFalloff != 1 && m.TxFalloff > 0 {
			p = math.Pow(p, m.TxFalloff)
		}
	}
	return opacity + (1-opacity)*p
}
