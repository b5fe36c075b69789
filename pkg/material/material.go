package material

import (
	"github.com/df07/go-gi-shading/pkg/core"
)

// DiffuseShader selects the diffuse BRDF
type DiffuseShader int

const (
	DiffuseLambert DiffuseShader = iota
	DiffuseOrenNayar
	DiffuseToon
	DiffuseMinnaert
	DiffuseFresnel
)

// SpecularShader selects the specular BRDF
type SpecularShader int

const (
	SpecularCookTorrance SpecularShader = iota
	SpecularPhong
	SpecularBlinn
	SpecularToon
	SpecularWardIso
)

// Mode is a bitmask of material behaviour flags
type Mode uint32

const (
	ModeShadeless     Mode = 1 << iota // emit color only, no lighting
	ModeReceiveShadow                  // lights cast shadows onto this material
	ModeTangentShading                 // shade with the tangent instead of the normal (strands, ribbons)
	ModeRayMirror                      // recursive mirror reflection
	ModeRayTransparent                 // recursive refraction
	ModeOnlyShadow                     // render shadow only, used for shadow catchers
	ModeTraceable                      // visible to traced rays
	ModeSubsurface                     // subsurface scattering from a scatter tree
	ModeApproxOcclusion                // participates in the occlusion tree
	ModeCastShadow                     // blocks shadow rays
)

// Material holds the shading parameters for a surface
type Material struct {
	Name string

	Color     core.Vec3 // diffuse color
	SpecColor core.Vec3
	Reflect   float64 // diffuse intensity
	Specular  float64 // specular intensity
	Emit      float64
	Ambient   float64
	Alpha     float64
	Hardness  int

	Texture      ColorSource // optional color texture
	TextureBlend float64     // how much the texture replaces Color
	TexCoords    TexCoordSource

	DiffuseShader  DiffuseShader
	SpecularShader SpecularShader

	Roughness      float64 // Oren-Nayar
	Darkness       float64 // Minnaert
	FresnelDiff    float64
	FresnelDiffI   float64
	ToonDiffSize   float64 // radians
	ToonDiffSmooth float64
	ToonSpecSize   float64
	ToonSpecSmooth float64
	SpecIOR        float64 // Blinn refraction index
	RMS            float64 // Ward isotropic slope

	MirrorColor    core.Vec3
	RayMirror      float64
	FresnelMirror  float64
	FresnelMirrorI float64
	RayDepth       int

	IOR             float64
	FresnelTransp   float64
	FresnelTranspI  float64
	TransDepth      int
	Filter          float64 // how much the material color tints transmitted light
	TxLimit         float64 // distance at which transmission is fully absorbed, 0 disables
	TxFalloff       float64 // exponent of the transmission distance curve
	SpecTransparent float64 // how much specular highlights make transparent surfaces opaque

	Translucency float64

	SSSColor    core.Vec3
	SSSRadius   core.Vec3 // mean free path per channel, in scene units times SSSScale
	SSSIOR      float64
	SSSColorFac float64
	SSSFront    float64
	SSSBack     float64
	SSSError    float64
	SSSScale    float64

	LightGroup          string // restrict lighting to the named lamp group
	LightGroupExclusive bool

	Mode Mode
}

// NewMaterial creates a material with the same defaults as a freshly added
// material in a scene: white Lambert diffuse with CookTorrance highlights.
func NewMaterial(name string, color core.Vec3) *Material {
	return &Material{
		Name:           name,
		Color:          color,
		SpecColor:      core.Splat(1),
		TextureBlend:   1.0,
		MirrorColor:    core.Splat(1),
		Reflect:        0.8,
		Specular:       0.5,
		Ambient:        1.0,
		Alpha:          1.0,
		Hardness:       50,
		Roughness:      0.5,
		Darkness:       1.0,
		ToonDiffSize:   0.5,
		ToonDiffSmooth: 0.1,
		ToonSpecSize:   0.5,
		ToonSpecSmooth: 0.1,
		SpecIOR:        4.0,
		RMS:            0.1,
		FresnelMirrorI: 1.25,
		FresnelTranspI: 1.25,
		RayDepth:       2,
		TransDepth:     2,
		IOR:            1.0,
		TxFalloff:      1.0,
		SSSColor:       core.NewVec3(0.8, 0.8, 0.8),
		SSSRadius:      core.NewVec3(1.0, 1.0, 1.0),
		SSSIOR:         1.3,
		SSSColorFac:    1.0,
		SSSFront:       1.0,
		SSSBack:        1.0,
		SSSError:       0.05,
		SSSScale:       0.1,
		Mode:           ModeReceiveShadow | ModeTraceable | ModeCastShadow | ModeApproxOcclusion,
	}
}

// NewLambertian creates a plain diffuse material without highlights
func NewLambertian(color core.Vec3) *Material {
	m := NewMaterial("lambert", color)
	m.Specular = 0
	return m
}

// NewMirror creates a fully reflective material
func NewMirror(color core.Vec3, amount float64) *Material {
	m := NewMaterial("mirror", color)
	m.RayMirror = amount
	m.MirrorColor = color
	m.Mode |= ModeRayMirror
	return m
}

// NewGlass creates a refractive material with the given index of refraction
func NewGlass(ior float64) *Material {
	m := NewMaterial("glass", core.Splat(1))
	m.IOR = ior
	m.Alpha = 0
	m.SpecTransparent = 1
	m.FresnelTransp = 1
	m.FresnelMirror = 4
	m.RayMirror = 1
	m.Mode |= ModeRayTransparent | ModeRayMirror
	m.Mode &^= ModeApproxOcclusion
	return m
}

// Has reports whether all bits in flag are set
func (m *Material) Has(flag Mode) bool {
	return m.Mode&flag == flag
}
