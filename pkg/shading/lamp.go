package shading

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/lights"
	"github.com/df07/go-gi-shading/pkg/material"
)

// irradiance returns the lamp's incidence factor at the sample: the cosine
// for point like lamps, a wrapped cosine for hemi lamps and the form
// factor for area lamps. With tangent shading the cosine is measured
// against the tangent instead.
func irradiance(s *ShadeInput, lamp *lights.Lamp, n, lv core.Vec3, tangent bool) float64 {
	if tangent {
		t := s.Tangent.Dot(lv)
		return math.Sqrt(max(1-t*t, 0))
	}
	switch lamp.Type {
	case lights.LampHemi:
		return 0.5*n.Dot(lv) + 0.5
	case lights.LampArea:
		return lamp.AreaEnergy(s.P, n)
	default:
		return n.Dot(lv)
	}
}

// ShadeOneLight adds the light of one lamp to res: diffuse with and
// without shadow, and the specular highlight. Lamps flagged shadow only
// remove light where they are blocked instead of adding any.
func ShadeOneLight(s *ShadeInput, lamp *lights.Lamp, res *ShadeResult) {
	m := s.Material
	if !lamp.Lights(s.Layer) || !lamp.Lights(s.rc.Layer) {
		return
	}
	receives := m.Has(material.ModeReceiveShadow) && lamp.CastsShadow()
	if lamp.ShadowOnly && !receives {
		return
	}

	lv, dist, fac := lamp.Visibility(s.P)
	if fac == 0 {
		return
	}

	n := s.N
	v := s.View.Negate()
	tangent := m.Has(material.ModeTangentShading) && !s.Tangent.IsZero()

	is := irradiance(s, lamp, n, lv, tangent)
	var diff, back, spec float64
	if is > 0 {
		diff = max(m.Diffuse(is, n, lv, v), 0)
		if m.Specular > 0 && !lamp.NoSpecular && !lamp.ShadowOnly {
			hn := n
			if tangent {
				hn = s.Tangent
			}
			spec = max(m.Highlight(hn, lv, v, tangent), 0)
		}
	} else if m.Translucency > 0 && !tangent {
		// light arriving from behind shines through
		back = m.Translucency * max(irradiance(s, lamp, n.Negate(), lv, false), 0)
	}
	if diff == 0 && back == 0 && spec == 0 {
		return
	}

	shadow := core.Splat(1)
	if receives {
		sn := n
		if back > 0 {
			sn = n.Negate()
		}
		shadow = lampShadow(s, lamp, sn, lv, dist)
	}

	intensity := lamp.Intensity().Multiply(fac)
	base := s.Color.Multiply(m.Reflect)

	if lamp.ShadowOnly {
		blocked := core.Splat(1).Subtract(shadow)
		res.Shad = res.Shad.Subtract(base.MultiplyVec(intensity).MultiplyVec(blocked).Multiply(diff + back))
		return
	}

	if !lamp.NoDiffuse {
		lit := base.MultiplyVec(intensity).Multiply(diff + back)
		res.Diff = res.Diff.Add(lit)
		res.Shad = res.Shad.Add(lit.MultiplyVec(shadow))
	}
	if spec > 0 {
		col := m.SpecColor.Multiply(m.Specular * spec).MultiplyVec(intensity)
		res.Spec = res.Spec.Add(col.MultiplyVec(shadow))
	}
}

// lampShadow returns the fraction of the lamp's light reaching the sample,
// from the lamp's shadow buffer or by tracing shadow rays
func lampShadow(s *ShadeInput, lamp *lights.Lamp, n, lv core.Vec3, dist float64) core.Vec3 {
	switch lamp.Shadow {
	case lights.ShadowBuffer:
		if lamp.ShadowMap == nil {
			return core.Splat(1)
		}
		return core.Splat(core.Clamp01(lamp.ShadowMap.Shadow(s.P, n)))
	case lights.ShadowRay:
		return RayShadow(s.rc, s.tc, s.X, s.Y, s.P, n, s.Face.Ref, lamp)
	default:
		return core.Splat(1)
	}
}
