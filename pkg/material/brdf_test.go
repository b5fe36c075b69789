package material

import (
	"math"
	"testing"

	"github.com/df07/go-gi-shading/pkg/core"
)

func TestDiffuseModels(t *testing.T) {
	const tolerance = 1e-9
	n := core.NewVec3(0, 0, 1)
	l := core.NewVec3(1, 0, 1).Normalize()
	v := core.NewVec3(-0.3, 0.2, 1).Normalize()
	nl := n.Dot(l)

	t.Run("Lambert passes irradiance through", func(t *testing.T) {
		m := NewMaterial("m", core.Splat(1))
		if got := m.Diffuse(nl, n, l, v); math.Abs(got-nl) > tolerance {
			t.Errorf("Expected %f, got %f", nl, got)
		}
	})

	t.Run("Oren-Nayar with zero roughness is Lambert", func(t *testing.T) {
		if got := OrenNayar(nl, n, l, v, 0); math.Abs(got-nl) > tolerance {
			t.Errorf("Expected %f, got %f", nl, got)
		}
	})

	t.Run("Oren-Nayar rejects light from below", func(t *testing.T) {
		below := core.NewVec3(0, 1, -1).Normalize()
		if got := OrenNayar(0.5, n, below, v, 0.5); got != 0 {
			t.Errorf("Expected 0, got %f", got)
		}
	})

	t.Run("Minnaert with unit darkness is Lambert", func(t *testing.T) {
		if got := Minnaert(nl, n, v, 1); math.Abs(got-nl) > tolerance {
			t.Errorf("Expected %f, got %f", nl, got)
		}
	})

	t.Run("Fresnel diffuse disabled returns one", func(t *testing.T) {
		if got := FresnelDiffuse(n, l, 1.25, 0); got != 1 {
			t.Errorf("Expected 1, got %f", got)
		}
	})
}

func TestToonBands(t *testing.T) {
	n := core.NewVec3(0, 0, 1)
	tests := []struct {
		name     string
		angle    float64
		expected float64
	}{
		{"Inside band", 0.2, 1},
		{"In transition", 0.55, 0.5},
		{"Outside band", 1.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := core.NewVec3(math.Sin(tt.angle), 0, math.Cos(tt.angle))
			if got := Toon(n, l, 0.5, 0.1); math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestSpecularModels(t *testing.T) {
	n := core.NewVec3(0, 0, 1)
	l := core.NewVec3(1, 0, 1).Normalize()
	mirror := core.NewVec3(-1, 0, 1).Normalize()
	offPeak := core.NewVec3(-1, 0.8, 0.6).Normalize()

	shaders := []SpecularShader{SpecularCookTorrance, SpecularPhong, SpecularBlinn, SpecularToon, SpecularWardIso}
	for _, shader := range shaders {
		m := NewMaterial("spec", core.Splat(1))
		m.SpecularShader = shader
		m.Hardness = 20

		peak := m.Highlight(n, l, mirror, false)
		off := m.Highlight(n, l, offPeak, false)
		if peak <= 0 {
			t.Errorf("shader %d: expected positive highlight at mirror direction, got %f", shader, peak)
		}
		if off > peak {
			t.Errorf("shader %d: off-peak highlight %f exceeds peak %f", shader, off, peak)
		}
		if math.IsNaN(peak) || math.IsNaN(off) {
			t.Errorf("shader %d: NaN highlight", shader)
		}
	}

	if got := Phong(n, l, mirror, 20, false); math.Abs(got-1) > 1e-9 {
		t.Errorf("Expected Phong peak of 1, got %f", got)
	}
	if got := Blinn(n, l, mirror, 0.5, 20, false); got != 0 {
		t.Errorf("Expected Blinn to reject refraction index < 1, got %f", got)
	}
}

func TestSpecular_TangentMode(t *testing.T) {
	// With the tangent perpendicular to the half vector the highlight peaks
	tangent := core.NewVec3(0, 1, 0)
	l := core.NewVec3(1, 0, 1).Normalize()
	v := core.NewVec3(-1, 0, 1).Normalize()

	if got := Phong(tangent, l, v, 10, true); math.Abs(got-1) > 1e-9 {
		t.Errorf("Expected tangent Phong peak of 1, got %f", got)
	}
}

func TestFresnelFactor(t *testing.T) {
	n := core.NewVec3(0, 0, 1)

	grazing := FresnelFactor(core.NewVec3(1, 0, 0), n, 1.25, 1)
	if math.Abs(grazing-1) > 1e-9 {
		t.Errorf("Expected full reflection at grazing angle, got %f", grazing)
	}

	head := FresnelFactor(core.NewVec3(0, 0, -1), n, 1.25, 1)
	if math.Abs(head-0.75) > 1e-9 {
		t.Errorf("Expected 0.75 at normal incidence, got %f", head)
	}

	if FresnelFactor(core.NewVec3(0, 0, -1), n, 1.25, 0) != 1 {
		t.Error("Expected disabled Fresnel to return 1")
	}
}

func TestRefract(t *testing.T) {
	n := core.NewVec3(0, 1, 0)

	straight, ok := Refract(core.NewVec3(0, -1, 0), n, 1/1.5)
	if !ok || straight.Subtract(core.NewVec3(0, -1, 0)).Length() > 1e-9 {
		t.Errorf("Expected head-on ray to pass straight, got %v (ok=%v)", straight, ok)
	}

	// Leaving glass at a shallow angle must totally reflect
	shallow := core.NewVec3(1, -0.2, 0).Normalize()
	if _, ok := Refract(shallow, n, 1.5); ok {
		t.Error("Expected total internal reflection")
	}

	if r := Reflectance(1, 1); math.Abs(r) > 1e-9 {
		t.Errorf("Expected no reflectance for matched indices, got %f", r)
	}
}
