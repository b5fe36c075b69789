package occlusion

import "github.com/df07/go-gi-shading/pkg/core"

// SH holds second order spherical harmonic coefficients
type SH [9]float64

// shFromDisc projects a cosine lobe around unit normal n, scaled by area,
// onto the spherical harmonic basis
func shFromDisc(n core.Vec3, area float64) SH {
	x, y, z := n.X, n.Y, n.Z
	return SH{
		0.282095 * area,
		0.488603 * y * area,
		0.488603 * z * area,
		0.488603 * x * area,
		1.092548 * x * y * area,
		1.092548 * y * z * area,
		0.315392 * (3*z*z - 1) * area,
		1.092548 * x * z * area,
		0.546274 * (x*x - y*y) * area,
	}
}

func (sh *SH) add(other *SH) {
	for i := range sh {
		sh[i] += other[i]
	}
}

func (sh *SH) scale(f float64) {
	for i := range sh {
		sh[i] *= f
	}
}

// eval returns the irradiance the harmonics emit along unit direction v
func (sh *SH) eval(v core.Vec3) float64 {
	const (
		c1 = 0.429043
		c2 = 0.511664
		c3 = 0.743125
		c4 = 0.886227
		c5 = 0.247708
	)
	x, y, z := v.X, v.Y, v.Z
	return c1*sh[8]*(x*x-y*y) +
		c3*sh[6]*z*z +
		c4*sh[0] -
		c5*sh[6] +
		2*c1*(sh[4]*x*y+sh[7]*x*z+sh[5]*y*z) +
		2*c2*(sh[3]*x+sh[1]*y+sh[2]*z)
}
