package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/material"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	// Convert hue from degrees to radians
	hRad := h * math.Pi / 180.0

	// Convert from OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// Convert from OKLAB to linear RGB
	// Using simplified approximation for OKLAB to RGB conversion
	// This is not perfectly accurate but good enough for our purposes

	// First convert to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	// Cube the values
	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// Convert LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	// Clamp to [0, 1] range
	r = math.Max(0, math.Min(1, r))
	g = math.Max(0, math.Min(1, g))
	blue = math.Max(0, math.Min(1, blue))

	return core.NewVec3(r, g, blue)
}

var (
	gridDiffuse = []material.DiffuseShader{
		material.DiffuseLambert, material.DiffuseOrenNayar, material.DiffuseToon,
		material.DiffuseMinnaert, material.DiffuseFresnel,
	}
	gridSpecular = []material.SpecularShader{
		material.SpecularCookTorrance, material.SpecularPhong, material.SpecularBlinn,
		material.SpecularToon, material.SpecularWardIso,
	}
)

// NewSphereGridScene creates a grid of spheres, one row per diffuse shader
// and one column per specular shader. Hue varies along the columns.
func NewSphereGridScene(info SceneInfo, _ Assets) (*Scene, error) {
	rows, cols := len(gridDiffuse), len(gridSpecular)
	spacing := 1.2
	radius := 0.45
	cx := spacing * float64(cols-1) / 2
	cz := spacing * float64(rows-1) / 2

	s := newScene(info, lookFrom(core.NewVec3(cx, 5, cz+7), core.NewVec3(cx, 0.3, cz), 40))

	ground := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	ground.Name = "ground"
	s.AddGround(core.NewVec3(cx, 0, cz), 14, 28, ground)

	for i, diff := range gridDiffuse {
		for j, spec := range gridSpecular {
			hue := float64(j) / float64(cols) * 360
			m := material.NewMaterial(fmt.Sprintf("sphere-%d-%d", i, j), oklchToRGB(0.7, 0.15, hue))
			m.DiffuseShader = diff
			m.SpecularShader = spec
			m.Specular = 0.6
			m.Roughness = 0.8
			m.Hardness = 60
			center := core.NewVec3(float64(j)*spacing, radius, float64(i)*spacing)
			s.AddSphere(m.Name, center, radius, m)
		}
	}

	s.AddAreaLight(core.NewVec3(cx+3, 8, cz+4), core.NewVec3(-0.3, -1, -0.4), 3, core.NewVec3(1, 0.97, 0.9), 1.5)
	return s, nil
}
