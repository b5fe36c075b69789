package material

import (
	"github.com/df07/go-gi-shading/pkg/core"
)

// TexCoordSource selects which coordinates drive a material's color texture
type TexCoordSource int

const (
	TexCoordUV     TexCoordSource = iota // face UVs, barycentric when the mesh has none
	TexCoordObject                       // object space position
	TexCoordGlobal                       // world space position
	TexCoordWindow                       // screen position in [0, 1]
)

// ColorSource provides a spatially varying diffuse color
type ColorSource interface {
	// Evaluate returns the color at texture coordinate uv and the 3D
	// coordinate p picked by the material's TexCoordSource
	Evaluate(uv core.Vec2, p core.Vec3) core.Vec3
}

// SolidColor is a uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a uniform color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the color regardless of position
func (s *SolidColor) Evaluate(core.Vec2, core.Vec3) core.Vec3 {
	return s.Color
}

// ColorAt returns the diffuse color at the given coordinates. Without a
// texture this is Color; with one the texture is blended over Color by
// TextureBlend.
func (m *Material) ColorAt(uv core.Vec2, p core.Vec3) core.Vec3 {
	if m.Texture == nil {
		return m.Color
	}
	tex := m.Texture.Evaluate(uv, p)
	if m.TextureBlend >= 1 {
		return tex
	}
	return m.Color.Lerp(tex, m.TextureBlend)
}
