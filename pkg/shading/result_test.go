package shading

import (
	"testing"

	"github.com/df07/go-gi-shading/pkg/core"
)

func passesResult() ShadeResult {
	return ShadeResult{
		Diff:     core.Splat(1),
		Shad:     core.Splat(0.5),
		Env:      core.Splat(0.1),
		Indirect: core.Splat(0.2),
		Emit:     core.Splat(0.3),
		Spec:     core.Splat(0.05),
		Refl:     core.Splat(0.4),
		Refr:     core.Splat(0.6),
	}
}

func TestShadeResult_Combine(t *testing.T) {
	tests := []struct {
		name    string
		flags   Pass
		mirror  float64
		opacity float64
		want    float64
	}{
		{"all passes", PassAll, 0, 1, 1.15},
		{"unshadowed", PassAll &^ PassShadow, 0, 1, 1.65},
		{"diffuse only", PassDiffuse | PassShadow, 0, 1, 0.5},
		{"no diffuse", PassAll &^ PassDiffuse, 0, 1, 0.65},
		{"half mirror", PassAll, 0.5, 1, 1.0},
		{"mirror pass off", PassAll &^ PassReflection, 0.5, 1, 1.15},
		{"quarter opaque", PassAll, 0, 0.25, 0.8875},
		{"refraction pass off", PassAll &^ PassRefraction, 0, 0.25, 1.15},
		{"mirror and refraction", PassAll, 0.5, 0.5, 1.1},
		{"nothing", 0, 0.5, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := passesResult()
			r.combine(tt.flags, tt.mirror, tt.opacity)
			if !vecNear(r.Combined, core.Splat(tt.want), 1e-12) {
				t.Errorf("Combined = %v, want %f", r.Combined, tt.want)
			}
		})
	}
}

func TestShadeResult_CombineClampsNegativeLight(t *testing.T) {
	r := ShadeResult{Shad: core.Splat(-1), Spec: core.Splat(0.25)}
	r.combine(PassAll, 0, 1)
	if !vecNear(r.Combined, core.Splat(0.25), 1e-12) {
		t.Errorf("Expected negative shadow light to clamp before specular, got %v", r.Combined)
	}
}

func TestShadeResult_Add(t *testing.T) {
	var avg ShadeResult
	a := passesResult()
	a.Alpha = 1
	b := ShadeResult{}

	avg.Add(&a, 0.5)
	avg.Add(&b, 0.5)

	if !vecNear(avg.Diff, core.Splat(0.5), 1e-12) || !vecNear(avg.Refr, core.Splat(0.3), 1e-12) {
		t.Errorf("Unexpected averaged passes: diff %v refr %v", avg.Diff, avg.Refr)
	}
	if avg.Alpha != 0.5 {
		t.Errorf("Expected averaged alpha 0.5, got %f", avg.Alpha)
	}
}

func TestPass_Has(t *testing.T) {
	p := PassDiffuse | PassSpecular
	if !p.Has(PassDiffuse) || !p.Has(PassDiffuse|PassSpecular) {
		t.Error("Expected set flags to be reported")
	}
	if p.Has(PassDiffuse | PassAO) {
		t.Error("Expected a partially set mask to be rejected")
	}
	if !PassAll.Has(PassSubsurface) {
		t.Error("Expected PassAll to include subsurface")
	}
}
