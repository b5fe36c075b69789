package shading

import (
	"testing"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/lights"
	"github.com/df07/go-gi-shading/pkg/material"
)

// overheadLamp is a white unit point lamp 2 above the floor hit of down()
func overheadLamp() *lights.Lamp {
	l := lights.NewPointLamp(core.NewVec3(0.3, 2, 0.2), core.Splat(1), 1)
	l.Falloff = lights.FalloffConstant
	l.Distance = 1
	return l
}

func TestShadeOneLight(t *testing.T) {
	tests := []struct {
		name     string
		lamp     func() *lights.Lamp
		material func(m *material.Material)
		layer    uint32 // render layers, 0 keeps every layer
		diff     float64
		spec     bool
	}{
		{"constant", overheadLamp, nil, 0, 1, false},
		{"inverse square", func() *lights.Lamp {
			l := overheadLamp()
			l.Falloff = lights.FalloffInvSquare
			return l
		}, nil, 0, 1.0 / 5, false},
		{"inverse linear", func() *lights.Lamp {
			l := overheadLamp()
			l.Falloff = lights.FalloffInvLinear
			return l
		}, nil, 0, 1.0 / 3, false},
		{"energy and color", func() *lights.Lamp {
			l := overheadLamp()
			l.Energy = 2
			l.Color = core.Splat(0.25)
			return l
		}, nil, 0, 0.5, false},
		{"hemi overhead", func() *lights.Lamp {
			return lights.NewHemiLamp(core.NewVec3(0, -1, 0), core.Splat(1), 1)
		}, nil, 0, 1, false},
		{"hemi sideways", func() *lights.Lamp {
			return lights.NewHemiLamp(core.NewVec3(1, 0, 0), core.Splat(1), 1)
		}, nil, 0, 0.5, false},
		{"sun at 60 degrees", func() *lights.Lamp {
			return lights.NewSunLamp(core.NewVec3(-0.8660254037844386, -0.5, 0), core.Splat(1), 1)
		}, nil, 0, 0.5, false},
		{"lamp below the surface", func() *lights.Lamp {
			l := overheadLamp()
			l.Position = core.NewVec3(0.3, -2, 0.2)
			return l
		}, nil, 0, 0, false},
		{"no diffuse", func() *lights.Lamp {
			l := overheadLamp()
			l.NoDiffuse = true
			return l
		}, nil, 0, 0, false},
		{"other render layer", func() *lights.Lamp {
			l := overheadLamp()
			l.Layer = 1
			return l
		}, nil, 2, 0, false},
		{"other object layer", func() *lights.Lamp {
			l := overheadLamp()
			l.Layer = 2
			return l
		}, nil, 0, 0, false},
		{"specular", overheadLamp, func(m *material.Material) {
			m.Specular = 0.5
		}, 0, 1, true},
		{"no specular", func() *lights.Lamp {
			l := overheadLamp()
			l.NoSpecular = true
			return l
		}, func(m *material.Material) {
			m.Specular = 0.5
		}, 0, 1, false},
		{"half reflect", overheadLamp, func(m *material.Material) {
			m.Reflect = 0.5
		}, 0, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := diffuseWhite()
			if tt.material != nil {
				tt.material(m)
			}
			lamp := tt.lamp()
			scene := floorScene(t, m)
			scene.AddLamp(lamp)
			rc, tc := newContext(t, scene)
			if tt.layer != 0 {
				rc.Layer = tt.layer
			}

			s := prepared(t, rc, tc, down(3))
			var res ShadeResult
			ShadeOneLight(s, lamp, &res)

			if !vecNear(res.Diff, core.Splat(tt.diff), 1e-9) {
				t.Errorf("Expected diffuse %f, got %v", tt.diff, res.Diff)
			}
			if !vecNear(res.Shad, res.Diff, 1e-9) {
				t.Errorf("Expected unshadowed light to match diffuse, got %v vs %v", res.Shad, res.Diff)
			}
			if got := res.Spec.MaxComponent() > 0; got != tt.spec {
				t.Errorf("Expected specular=%v, got %v", tt.spec, res.Spec)
			}
		})
	}
}

func TestShadeOneLight_Shadows(t *testing.T) {
	// an opaque blocker halfway between the floor and the lamp
	blocker := func() *geometry.Mesh {
		return geometry.NewQuadMesh("blocker", core.NewVec3(-0.9, 1, -0.8), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), diffuseWhite())
	}

	tests := []struct {
		name       string
		setup      func(l *lights.Lamp, m *material.Material)
		withBlock  bool
		diff, shad float64
	}{
		{"lit", nil, false, 1, 1},
		{"shadowed", nil, true, 1, 0},
		{"no shadow mode", func(l *lights.Lamp, m *material.Material) {
			l.Shadow = lights.ShadowNone
		}, true, 1, 1},
		{"material ignores shadows", func(l *lights.Lamp, m *material.Material) {
			m.Mode &^= material.ModeReceiveShadow
		}, true, 1, 1},
		{"shadow buffer", func(l *lights.Lamp, m *material.Material) {
			l.Shadow = lights.ShadowBuffer
			l.ShadowMap = constantShadow(0.25)
		}, false, 1, 0.25},
		{"shadow only lit", func(l *lights.Lamp, m *material.Material) {
			l.ShadowOnly = true
		}, false, 0, 0},
		{"shadow only blocked", func(l *lights.Lamp, m *material.Material) {
			l.ShadowOnly = true
		}, true, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := diffuseWhite()
			lamp := overheadLamp()
			if tt.setup != nil {
				tt.setup(lamp, m)
			}
			var extra []*geometry.Mesh
			if tt.withBlock {
				extra = append(extra, blocker())
			}
			scene := floorScene(t, m, extra...)
			scene.AddLamp(lamp)
			rc, tc := newContext(t, scene)

			s := prepared(t, rc, tc, core.NewRay(core.NewVec3(0.3, 0.5, 0.2), core.NewVec3(0, -1, 0)))
			var res ShadeResult
			ShadeOneLight(s, lamp, &res)

			if !vecNear(res.Diff, core.Splat(tt.diff), 1e-9) {
				t.Errorf("Expected diffuse %f, got %v", tt.diff, res.Diff)
			}
			if !vecNear(res.Shad, core.Splat(tt.shad), 1e-9) {
				t.Errorf("Expected shadowed diffuse %f, got %v", tt.shad, res.Shad)
			}
		})
	}
}

type constantShadow float64

func (c constantShadow) Shadow(core.Vec3, core.Vec3) float64 {
	return float64(c)
}

func TestShadeOneLight_Translucency(t *testing.T) {
	m := diffuseWhite()
	m.Translucency = 0.5
	lamp := overheadLamp()
	lamp.Position = core.NewVec3(0.3, -2, 0.2)
	lamp.Shadow = lights.ShadowNone

	scene := floorScene(t, m)
	scene.AddLamp(lamp)
	rc, tc := newContext(t, scene)

	s := prepared(t, rc, tc, down(3))
	var res ShadeResult
	ShadeOneLight(s, lamp, &res)
	if !vecNear(res.Diff, core.Splat(0.5), 1e-9) {
		t.Errorf("Expected half the light to shine through, got %v", res.Diff)
	}
}
