package material

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
)

// All BRDF helpers take unit vectors pointing away from the surface: n is the
// shading normal, l points toward the light and v toward the viewer.

// safeAcos clamps its input so rounding noise never yields NaN
func safeAcos(x float64) float64 {
	if x <= -1 {
		return math.Pi
	}
	if x >= 1 {
		return 0
	}
	return math.Acos(x)
}

// safeSqrt returns 0 for negative inputs
func safeSqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Sqrt(x)
}

// OrenNayar evaluates the Oren-Nayar rough diffuse model. nl is the incoming
// irradiance factor, which for area lights is the integrated form factor
// rather than the plain dot product.
func OrenNayar(nl float64, n, l, v core.Vec3, rough float64) float64 {
	nv := max(n.Dot(v), 0)
	realnl := n.Dot(l)
	if realnl <= 0 || nl < 0 {
		return 0
	}

	litA := safeAcos(realnl)
	viewA := safeAcos(nv)

	litB := l.Subtract(n.Multiply(realnl)).Normalize()
	viewB := v.Subtract(n.Multiply(nv)).Normalize()
	t := max(litB.Dot(viewB), 0)

	a, b := viewA, litA
	if litA > viewA {
		a, b = litA, viewA
	}

	r2 := rough * rough
	A := 1 - 0.5*(r2/(r2+0.33))
	B := 0.45 * (r2 / (r2 + 0.09))

	// nl may exceed a true cosine for huge area lights; keep tan finite
	b *= 0.95
	return nl * (A + B*t*math.Sin(a)*math.Tan(b))
}

// Toon produces a hard-edged diffuse band of angular size with a linear
// transition of width smooth.
func Toon(n, l core.Vec3, size, smooth float64) float64 {
	return toonBand(safeAcos(n.Dot(l)), size, smooth)
}

func toonBand(angle, size, smooth float64) float64 {
	switch {
	case angle < size:
		return 1
	case angle >= size+smooth || smooth == 0:
		return 0
	default:
		return 1 - (angle-size)/smooth
	}
}

// Minnaert darkens (darkness > 1) or brightens the limb of a diffuse surface
func Minnaert(nl float64, n, v core.Vec3, darkness float64) float64 {
	if nl <= 0 {
		return 0
	}
	nv := max(n.Dot(v), 0)
	if darkness <= 1 {
		return nl * math.Pow(max(nv*nl, 0.1), darkness-1)
	}
	return nl * math.Pow(1.001-nv, darkness-1)
}

// FresnelDiffuse uses the Fresnel falloff curve as a diffuse term
func FresnelDiffuse(n, l core.Vec3, grad, fac float64) float64 {
	return FresnelFactor(l, n, grad, fac)
}

// Diffuse evaluates the material's selected diffuse model. is is the
// light's irradiance factor (dot product or area-light form factor).
func (m *Material) Diffuse(is float64, n, l, v core.Vec3) float64 {
	switch m.DiffuseShader {
	case DiffuseOrenNayar:
		return OrenNayar(is, n, l, v, m.Roughness)
	case DiffuseToon:
		return Toon(n, l, m.ToonDiffSize, m.ToonDiffSmooth)
	case DiffuseMinnaert:
		return Minnaert(is, n, v, m.Darkness)
	case DiffuseFresnel:
		return FresnelDiffuse(n, l, m.FresnelDiffI, m.FresnelDiff)
	default:
		return is
	}
}
