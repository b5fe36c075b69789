package material

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
)

// halfway returns the normalized half vector between l and v
func halfway(l, v core.Vec3) core.Vec3 {
	return l.Add(v).Normalize()
}

// tangentDot converts a dot product with a tangent into the equivalent dot
// product with the closest normal in the plane perpendicular to it.
func tangentDot(d float64, tangent bool) float64 {
	if tangent {
		return safeSqrt(1 - d*d)
	}
	return d
}

// specPower raises a positive cosine to the hardness exponent
func specPower(inp float64, hard int) float64 {
	if inp <= 0 {
		return 0
	}
	return math.Pow(inp, float64(hard))
}

// Phong computes the classic half-vector Phong highlight
func Phong(n, l, v core.Vec3, hard int, tangent bool) float64 {
	h := halfway(l, v)
	nh := tangentDot(h.Dot(n), tangent)
	if nh <= 0 {
		return 0
	}
	return specPower(nh, hard)
}

// CookTorrance is the simplified CookTorrance highlight: a Phong lobe
// divided by the view cosine.
func CookTorrance(n, l, v core.Vec3, hard int, tangent bool) float64 {
	h := halfway(l, v)
	nh := h.Dot(n)
	if tangent {
		nh = tangentDot(nh, true)
	} else if nh < 0 {
		return 0
	}

	nv := n.Dot(v)
	if tangent {
		nv = tangentDot(nv, true)
	} else if nv < 0 {
		nv = 0
	}

	return specPower(nh, hard) / (0.1 + nv)
}

// Blinn evaluates Blinn's microfacet model with a Gaussian facet
// distribution. refrac is the index of refraction used for the Fresnel term
// and hardness is remapped to a slope spread.
func Blinn(n, l, v core.Vec3, refrac float64, hardness float64, tangent bool) float64 {
	if refrac < 1 || hardness == 0 {
		return 0
	}

	var spread float64
	if hardness < 100 {
		spread = math.Sqrt(1 / hardness)
	} else {
		spread = 10 / hardness
	}

	h := halfway(l, v)
	nh := h.Dot(n)
	if tangent {
		nh = tangentDot(nh, true)
	} else if nh < 0 {
		return 0
	}

	nv := tangentDot(n.Dot(v), tangent)
	if nv <= 0.01 {
		nv = 0.01
	}

	nl := tangentDot(n.Dot(l), tangent)
	if nl <= 0.01 {
		return 0
	}

	vh := v.Dot(h)
	if vh <= 0 {
		vh = 0.01
	}

	// geometric attenuation
	g := min(1, (2*nh*nv)/vh, (2*nh*nl)/vh)

	p := math.Sqrt(refrac*refrac + vh*vh - 1)
	f := ((p - vh) * (p - vh)) / ((p + vh) * (p + vh)) *
		(1 + ((vh*(p+vh)-1)*(vh*(p+vh)-1))/((vh*(p-vh)+1)*(vh*(p-vh)+1)))
	ang := safeAcos(nh)

	return max(f*g*math.Exp(-(ang*ang)/(2*spread*spread)), 0)
}

// ToonSpecular is a hard-edged highlight band around the reflection direction
func ToonSpecular(n, l, v core.Vec3, size, smooth float64, tangent bool) float64 {
	h := halfway(l, v)
	nh := tangentDot(h.Dot(n), tangent)
	return toonBand(safeAcos(nh), size, smooth)
}

// WardIso evaluates Ward's isotropic Gaussian highlight with rms slope
func WardIso(n, l, v core.Vec3, rms float64, tangent bool) float64 {
	h := halfway(l, v)

	nh := tangentDot(h.Dot(n), tangent)
	if nh <= 0 {
		nh = 0.001
	}
	nv := tangentDot(n.Dot(v), tangent)
	if nv <= 0 {
		nv = 0.001
	}
	nl := tangentDot(n.Dot(l), tangent)
	if nl <= 0 {
		nl = 0.001
	}

	angle := math.Tan(safeAcos(nh))
	alpha := max(rms, 0.001)

	return nl * (1 / (4 * math.Pi * alpha * alpha)) * (math.Exp(-(angle*angle)/(alpha*alpha)) / math.Sqrt(nv*nl))
}

// Highlight evaluates the material's selected specular model
func (m *Material) Highlight(n, l, v core.Vec3, tangent bool) float64 {
	switch m.SpecularShader {
	case SpecularPhong:
		return Phong(n, l, v, m.Hardness, tangent)
	case SpecularBlinn:
		return Blinn(n, l, v, m.SpecIOR, float64(m.Hardness), tangent)
	case SpecularToon:
		return ToonSpecular(n, l, v, m.ToonSpecSize, m.ToonSpecSmooth, tangent)
	case SpecularWardIso:
		return WardIso(n, l, v, m.RMS, tangent)
	default:
		return CookTorrance(n, l, v, m.Hardness, tangent)
	}
}
