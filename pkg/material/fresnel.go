package material

import (
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
)

// Reflect calculates the reflection of a direction d off a surface with normal n
func Reflect(d, n core.Vec3) core.Vec3 {
	return d.Subtract(n.Multiply(2 * d.Dot(n)))
}

// Refract bends the travelling direction d (unit length) through a surface
// with normal n facing against d, using Snell's law with eta = n1/n2.
// Returns false on total internal reflection.
func Refract(d, n core.Vec3, eta float64) (core.Vec3, bool) {
	cosTheta := math.Min(-d.Dot(n), 1.0)
	sinTheta2 := 1 - cosTheta*cosTheta
	if eta*eta*sinTheta2 > 1 {
		return core.Vec3{}, false
	}
	rOutPerp := d.Add(n.Multiply(cosTheta)).Multiply(eta)
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel).Normalize(), true
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

// FresnelFactor is the artist-controlled Fresnel curve: 1 at grazing angles,
// falling toward normal incidence. grad (the blend, >= 1) sets how fast it
// falls and fac is the curve exponent. A zero fac disables the effect.
func FresnelFactor(view, n core.Vec3, grad, fac float64) float64 {
	if fac == 0 {
		return 1
	}
	t := 1 + math.Abs(view.Dot(n))
	return core.Clamp01(grad + (1-grad)*math.Pow(t, fac))
}

// FresnelMirrorFactor maps the mirror Fresnel settings to a reflection weight
func (m *Material) FresnelMirrorFactor(view, n core.Vec3) float64 {
	return FresnelFactor(view, n, m.FresnelMirrorI, m.FresnelMirror)
}

// FresnelTranspFactor maps the transparency Fresnel settings to an
// opacity factor: 0 means fully transmitting.
func (m *Material) FresnelTranspFactor(view, n core.Vec3) float64 {
	return FresnelFactor(view, n, m.FresnelTranspI, m.FresnelTransp)
}
